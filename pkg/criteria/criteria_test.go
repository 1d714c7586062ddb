package criteria

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewCatalog("id",
		Field{Name: "id", Type: TypeNumeric, Sortable: true, Filterable: true},
		Field{Name: "title", Type: TypeText, Sortable: true, Searchable: true},
		Field{Name: "content", Type: TypeText, Searchable: true},
		Field{Name: "views", Type: TypeNumeric, Sortable: true, Filterable: true},
		Field{Name: "published", Type: TypeBoolean, Filterable: true},
		Field{Name: "created_at", Type: TypeDatetime, Sortable: true, Filterable: true, Format: "2006-01-02"},
		Field{Name: "status", Type: TypeEnumerable, Filterable: true, Choices: []string{"draft", "live"}},
		Field{Name: "author.name", Type: TypeText, Filterable: true},
		Field{Name: "secret", Type: TypeText},
	)
	require.NoError(t, err)
	return cat
}

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		fields  []Field
		wantErr string
	}{
		{name: "duplicate", fields: []Field{{Name: "a", Type: TypeText}, {Name: "a", Type: TypeText}}, wantErr: "duplicate field a"},
		{name: "bad name", fields: []Field{{Name: "a; DROP", Type: TypeText}}, wantErr: "invalid field name"},
		{name: "bad column", fields: []Field{{Name: "a", Column: "a b", Type: TypeText}}, wantErr: "invalid column"},
		{name: "bad type", fields: []Field{{Name: "a", Type: "blob"}}, wantErr: "unknown type"},
		{name: "dotted path", fields: []Field{{Name: "author.name", Type: TypeText}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog("", tt.fields...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogSearchableFieldsOnlyText(t *testing.T) {
	cat, err := NewCatalog("",
		Field{Name: "title", Type: TypeText, Searchable: true},
		Field{Name: "views", Type: TypeNumeric, Searchable: true},
		Field{Name: "content", Type: TypeText, Searchable: true},
	)
	require.NoError(t, err)

	var names []string
	for _, f := range cat.SearchableFields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"title", "content"}, names)
}

func TestNewCriterionArity(t *testing.T) {
	reg := DefaultRegistry()
	tests := []struct {
		name    string
		op      Operator
		operand []any
		wantErr bool
	}{
		{name: "between two", op: OpBetween, operand: []any{1, 2}},
		{name: "between one", op: OpBetween, operand: []any{1}, wantErr: true},
		{name: "between three", op: OpBetween, operand: []any{1, 2, 3}, wantErr: true},
		{name: "not_between none", op: OpNotBetween, wantErr: true},
		{name: "is_null none", op: OpIsNull},
		{name: "is_null with value", op: OpIsNull, operand: []any{true}, wantErr: true},
		{name: "is_not_null with value", op: OpIsNotNull, operand: []any{nil}, wantErr: true},
		{name: "is_true with value", op: OpIsTrue, operand: []any{true}, wantErr: true},
		{name: "is_false with value", op: OpIsFalse, operand: []any{false}, wantErr: true},
		{name: "eq one", op: OpEq, operand: []any{"x"}},
		{name: "eq two", op: OpEq, operand: []any{"x", "y"}, wantErr: true},
		{name: "in many", op: OpIn, operand: []any{"x", "y", "z"}},
		{name: "in none", op: OpIn, wantErr: true},
		{name: "unknown", op: "like", operand: []any{"x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := reg.NewCriterion("views", tt.op, tt.operand...)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Len(t, c.Operand, len(tt.operand))
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "views", verr.Field)
			assert.Equal(t, tt.op, verr.Operator)
		})
	}
}

func TestNewCompositeRejectsEmpty(t *testing.T) {
	_, err := DefaultRegistry().NewComposite(LogicAnd)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseScenarioA(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	root, err := p.Parse([]byte(`{"and":[{"title":{"contains":"cat"}},{"views":{"gt":10}}]}`))
	require.NoError(t, err)

	assert.Equal(t, &Composite{Logic: LogicAnd, Children: []Node{
		&Criterion{Field: "title", Operator: OpContains, Operand: []any{"cat"}},
		&Criterion{Field: "views", Operator: OpGt, Operand: []any{int64(10)}},
	}}, root)
}

func TestParse(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want *Composite
	}{
		{
			name: "bare leaf wrapped in and",
			in:   `{"views":{"ge":1.5}}`,
			want: &Composite{Logic: LogicAnd, Children: []Node{
				&Criterion{Field: "views", Operator: OpGe, Operand: []any{1.5}},
			}},
		},
		{
			name: "several operators on one field",
			in:   `{"views":{"lt":5,"gt":1}}`,
			want: &Composite{Logic: LogicAnd, Children: []Node{
				&Criterion{Field: "views", Operator: OpGt, Operand: []any{int64(1)}},
				&Criterion{Field: "views", Operator: OpLt, Operand: []any{int64(5)}},
			}},
		},
		{
			name: "nested or with datetime and null checks",
			in:   `{"or":[{"created_at":{"between":["2024-03-01","2024-04-01"]}},{"and":[{"title":{"is_null":null}},{"published":{"is_true":[]}}]}]}`,
			want: &Composite{Logic: LogicOr, Children: []Node{
				&Criterion{Field: "created_at", Operator: OpBetween, Operand: []any{day, day.AddDate(0, 1, 0)}},
				&Composite{Logic: LogicAnd, Children: []Node{
					&Criterion{Field: "title", Operator: OpIsNull},
					&Criterion{Field: "published", Operator: OpIsTrue},
				}},
			}},
		},
		{
			name: "numeric strings and boolean strings are coerced",
			in:   `{"and":[{"views":{"eq":"42"}},{"published":{"eq":"false"}}]}`,
			want: &Composite{Logic: LogicAnd, Children: []Node{
				&Criterion{Field: "views", Operator: OpEq, Operand: []any{int64(42)}},
				&Criterion{Field: "published", Operator: OpEq, Operand: []any{false}},
			}},
		},
		{
			name: "in with choices and dotted path",
			in:   `{"and":[{"status":{"in":["draft","live"]}},{"author.name":{"startswith":"Jo"}}]}`,
			want: &Composite{Logic: LogicAnd, Children: []Node{
				&Criterion{Field: "status", Operator: OpIn, Operand: []any{"draft", "live"}},
				&Criterion{Field: "author.name", Operator: OpStartsWith, Operand: []any{"Jo"}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	tests := []struct {
		name   string
		in     string
		target any
	}{
		{name: "unknown field", in: `{"nope":{"eq":1}}`, target: new(*UnknownFieldError)},
		{name: "unknown field in nested group", in: `{"or":[{"title":{"eq":"a"}},{"nope":{"eq":1}}]}`, target: new(*UnknownFieldError)},
		{name: "contains on numeric", in: `{"views":{"contains":"1"}}`, target: new(*UnsupportedOperatorError)},
		{name: "gt on boolean", in: `{"published":{"gt":true}}`, target: new(*UnsupportedOperatorError)},
		{name: "not filterable", in: `{"secret":{"eq":"x"}}`, target: new(*ValidationError)},
		{name: "unknown operator", in: `{"title":{"like":"x"}}`, target: new(*ValidationError)},
		{name: "between one value", in: `{"views":{"between":[1]}}`, target: new(*ValidationError)},
		{name: "between scalar", in: `{"views":{"between":1}}`, target: new(*ValidationError)},
		{name: "not_between three values", in: `{"views":{"not_between":[1,2,3]}}`, target: new(*ValidationError)},
		{name: "is_null with value", in: `{"title":{"is_null":"x"}}`, target: new(*ValidationError)},
		{name: "is_false with value", in: `{"published":{"is_false":[true]}}`, target: new(*ValidationError)},
		{name: "is_null with object value", in: `{"title":{"is_null":{"x":1}}}`, target: new(*ValidationError)},
		{name: "bad number", in: `{"views":{"gt":"ten"}}`, target: new(*ValidationError)},
		{name: "bad datetime format", in: `{"created_at":{"gt":"01/03/2024"}}`, target: new(*ValidationError)},
		{name: "choice not allowed", in: `{"status":{"eq":"archived"}}`, target: new(*ValidationError)},
		{name: "empty or", in: `{"or":[]}`, target: new(*ValidationError)},
		{name: "or not a list", in: `{"or":{"title":{"eq":"a"}}}`, target: new(*ValidationError)},
		{name: "trailing data", in: `{"title":{"eq":"a"}} {}`, target: new(*ValidationError)},
		{name: "eq with list", in: `{"title":{"eq":["a","b"]}}`, target: new(*ValidationError)},
		{name: "eq null", in: `{"title":{"eq":null}}`, target: new(*ValidationError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T: %v", err, err)
		})
	}
}

func TestParseEmptyObjectOperand(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "is_true", in: `{"published":{"is_true":{}}}`, want: "and(published is_true)"},
		{name: "is_null", in: `{"title":{"is_null":{}}}`, want: "and(title is_null)"},
		{name: "is_not_null", in: `{"title":{"is_not_null":{}}}`, want: "and(title is_not_null)"},
		{
			name: "and with or beside it",
			in: `{"and":[{"id":{"neq":5}}],"or":[{"id":{"is_not_null":{},"in":[0,10],"not_in":[0,10],"lt":0,` +
				`"le":-1,"gt":5,"ge":6}},{"published":{"is_null": {}}}]}`,
			want: "and(and(id neq), or(and(id ge, id gt, id in, id is_not_null, id le, id lt, id not_in), published is_null))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := p.Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, String(root))

			err = Walk(root, func(c *Criterion) error {
				if spec, _ := DefaultRegistry().Lookup(c.Operator); spec.Arity == 0 {
					assert.Empty(t, c.Operand)
				}
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestByKeys(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	root, err := p.ByKeys([]string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, &Composite{Logic: LogicAnd, Children: []Node{
		&Criterion{Field: "id", Operator: OpIn, Operand: []any{int64(1), int64(2), int64(3)}},
	}}, root)

	root, err = p.ByKeys(nil)
	require.NoError(t, err)
	assert.Nil(t, root)

	_, err = p.ByKeys([]string{"one"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)

	storageOnly, err := NewCatalog("_id", Field{Name: "title", Type: TypeText, Searchable: true})
	require.NoError(t, err)
	_, err = NewParser(DefaultRegistry(), storageOnly).ByKeys([]string{"65f0c0ffee"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pks", verr.Field)
}

func TestParseValidationErrorCarriesContext(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	_, err := p.Parse([]byte(`{"views":{"between":[1]}}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "views", verr.Field)
	assert.Equal(t, OpBetween, verr.Operator)
}

func TestParseDepthLimit(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	doc := `{"title":{"eq":"a"}}`
	for i := 0; i < MaxDepth+2; i++ {
		doc = `{"and":[` + doc + `]}`
	}
	_, err := p.Parse([]byte(doc))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseWhere(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))

	t.Run("free text scenario B", func(t *testing.T) {
		root, text, err := p.ParseWhere("foo")
		require.NoError(t, err)
		assert.True(t, text)
		assert.Equal(t, &Composite{Logic: LogicOr, Children: []Node{
			&Criterion{Field: "title", Operator: OpContains, Operand: []any{"foo"}},
			&Criterion{Field: "content", Operator: OpContains, Operand: []any{"foo"}},
		}}, root)
	})

	t.Run("json that is not an object is free text", func(t *testing.T) {
		root, text, err := p.ParseWhere(`"quoted"`)
		require.NoError(t, err)
		assert.True(t, text)
		assert.Equal(t, []any{`"quoted"`}, root.Children[0].(*Criterion).Operand)
	})

	t.Run("broken json object is free text", func(t *testing.T) {
		_, text, err := p.ParseWhere(`{"title":`)
		require.NoError(t, err)
		assert.True(t, text)
	})

	t.Run("structured", func(t *testing.T) {
		root, text, err := p.ParseWhere(` {"title":{"eq":"x"}} `)
		require.NoError(t, err)
		assert.False(t, text)
		assert.Len(t, root.Children, 1)
	})

	t.Run("empty", func(t *testing.T) {
		root, _, err := p.ParseWhere("   ")
		require.NoError(t, err)
		assert.Nil(t, root)
	})

	t.Run("empty object", func(t *testing.T) {
		root, _, err := p.ParseWhere("{}")
		require.NoError(t, err)
		assert.Nil(t, root)
	})
}

func TestSearchTermWithoutSearchableFields(t *testing.T) {
	cat, err := NewCatalog("", Field{Name: "views", Type: TypeNumeric, Filterable: true})
	require.NoError(t, err)

	_, err = NewParser(DefaultRegistry(), cat).SearchTerm("foo")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWalkAndString(t *testing.T) {
	p := NewParser(DefaultRegistry(), testCatalog(t))
	root, err := p.Parse([]byte(`{"or":[{"title":{"eq":"a"}},{"and":[{"views":{"gt":1}},{"published":{"is_true":null}}]}]}`))
	require.NoError(t, err)

	var fields []string
	require.NoError(t, Walk(root, func(c *Criterion) error {
		fields = append(fields, c.Field)
		return nil
	}))
	assert.Equal(t, []string{"title", "views", "published"}, fields)
	assert.Equal(t, "or(title eq, and(views gt, published is_true))", String(root))
}
