package condition

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-admin/pkg/criteria"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BackendMemory = "memory"

// Record is a single row or document as seen by the in-memory backend.
type Record = map[string]any

// Predicate reports whether a record matches.
type Predicate func(Record) bool

// MatchAll is the predicate used when a request carries no filter.
func MatchAll(Record) bool { return true }

// MemoryCompiler lowers criteria into predicates over typed field accessors.
// Missing and null values never satisfy a comparison, mirroring SQL NULL.
type MemoryCompiler struct {
	lowering *lowering[Predicate]
}

func NewMemoryCompiler(reg *criteria.Registry) *MemoryCompiler {
	c := &MemoryCompiler{}
	c.lowering = &lowering[Predicate]{
		backend: BackendMemory,
		reg:     reg,
		leaf:    c.compileRule,
		group: func(logic criteria.Logic, children []Predicate) Predicate {
			if logic == criteria.LogicOr {
				return func(r Record) bool {
					for _, p := range children {
						if p(r) {
							return true
						}
					}
					return false
				}
			}
			return func(r Record) bool {
				for _, p := range children {
					if !p(r) {
						return false
					}
				}
				return true
			}
		},
	}
	return c
}

func (c *MemoryCompiler) Backend() string { return BackendMemory }

func (c *MemoryCompiler) Compile(node criteria.Node, cat *criteria.Catalog) (Predicate, error) {
	return c.lowering.compile(node, cat)
}

func (c *MemoryCompiler) compileRule(f criteria.Field, rule *criteria.Criterion) (Predicate, error) {
	path := f.Storage()
	get := func(r Record) any { return Lookup(r, path) }
	val := rule.Value()

	cmp := func(test func(int) bool) Predicate {
		return func(r Record) bool {
			n, ok := Compare(f, get(r), val)
			return ok && test(n)
		}
	}

	switch rule.Operator {
	case criteria.OpEq:
		return cmp(func(n int) bool { return n == 0 }), nil
	case criteria.OpNeq:
		return cmp(func(n int) bool { return n != 0 }), nil
	case criteria.OpGt:
		return cmp(func(n int) bool { return n > 0 }), nil
	case criteria.OpGe:
		return cmp(func(n int) bool { return n >= 0 }), nil
	case criteria.OpLt:
		return cmp(func(n int) bool { return n < 0 }), nil
	case criteria.OpLe:
		return cmp(func(n int) bool { return n <= 0 }), nil
	case criteria.OpIn, criteria.OpNotIn:
		negate := rule.Operator == criteria.OpNotIn
		values := rule.Operand
		return func(r Record) bool {
			actual := get(r)
			if actual == nil {
				return false
			}
			for _, v := range values {
				if n, ok := Compare(f, actual, v); ok && n == 0 {
					return !negate
				}
			}
			return negate
		}, nil
	case criteria.OpContains, criteria.OpNotContains,
		criteria.OpStartsWith, criteria.OpNotStartsWith,
		criteria.OpEndsWith, criteria.OpNotEndsWith:
		s, err := textOperand(f, rule)
		if err != nil {
			return nil, err
		}
		return textPredicate(rule.Operator, strings.ToLower(s), get), nil
	case criteria.OpBetween, criteria.OpNotBetween:
		lo, hi := rule.Bounds()
		negate := rule.Operator == criteria.OpNotBetween
		return func(r Record) bool {
			actual := get(r)
			a, ok1 := Compare(f, actual, lo)
			b, ok2 := Compare(f, actual, hi)
			if !ok1 || !ok2 {
				return false
			}
			inside := a >= 0 && b < 0
			return inside != negate
		}, nil
	case criteria.OpIsNull:
		return func(r Record) bool { return get(r) == nil }, nil
	case criteria.OpIsNotNull:
		return func(r Record) bool { return get(r) != nil }, nil
	case criteria.OpIsTrue, criteria.OpIsFalse:
		want := rule.Operator == criteria.OpIsTrue
		return func(r Record) bool {
			b, ok := get(r).(bool)
			return ok && b == want
		}, nil
	}
	return nil, &criteria.UnsupportedOperatorError{Field: f.Name, Operator: rule.Operator, ValueType: f.Type, Backend: BackendMemory}
}

func textPredicate(op criteria.Operator, needle string, get func(Record) any) Predicate {
	var test func(hay string) bool
	switch op {
	case criteria.OpContains, criteria.OpNotContains:
		test = func(hay string) bool { return strings.Contains(hay, needle) }
	case criteria.OpStartsWith, criteria.OpNotStartsWith:
		test = func(hay string) bool { return strings.HasPrefix(hay, needle) }
	default:
		test = func(hay string) bool { return strings.HasSuffix(hay, needle) }
	}
	negate := op == criteria.OpNotContains || op == criteria.OpNotStartsWith || op == criteria.OpNotEndsWith
	return func(r Record) bool {
		actual := get(r)
		if actual == nil {
			return false
		}
		return test(strings.ToLower(toText(actual))) != negate
	}
}

// Lookup resolves a dotted path through nested maps.
func Lookup(r Record, path string) any {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[part]
		case bson.M:
			cur = m[part]
		case bson.D:
			var found any
			for _, e := range m {
				if e.Key == part {
					found = e.Value
					break
				}
			}
			cur = found
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Compare orders two values of field f. ok is false when either side is null
// or the values cannot be read as the field's type.
func Compare(f criteria.Field, a, b any) (n int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	switch f.Type {
	case criteria.TypeNumeric:
		x, ok1 := toDecimal(a)
		y, ok2 := toDecimal(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		return x.Cmp(y), true
	case criteria.TypeDatetime:
		x, ok1 := toTime(f, a)
		y, ok2 := toTime(f, b)
		if !ok1 || !ok2 {
			return 0, false
		}
		return x.Compare(y), true
	case criteria.TypeBoolean:
		x, ok1 := a.(bool)
		y, ok2 := b.(bool)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return strings.Compare(toText(a), toText(b)), true
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func toTime(f criteria.Field, v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case string:
		layout := f.Format
		if layout == "" {
			layout = time.RFC3339
		}
		parsed, err := time.Parse(layout, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}
