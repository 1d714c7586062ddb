package record

import (
	"context"
	"testing"

	"go-admin/pkg/condition"
	"go-admin/pkg/criteria"
	"go-admin/pkg/pagination"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func sortKeys(keys ...pagination.SortKey) []pagination.SortKey { return keys }

var (
	viewsField = criteria.Field{Name: "views", Type: criteria.TypeNumeric, Sortable: true}
	idField    = criteria.Field{Name: "id", Type: criteria.TypeNumeric, Sortable: true}
	authorName = criteria.Field{Name: "author", Column: "author_name", Type: criteria.TypeText, Sortable: true}
)

func TestSQLProviderQueries(t *testing.T) {
	plan := pagination.Plan[sq.Sqlizer]{
		Filter: sq.Gt{"views": 10},
		Window: pagination.Window{
			Skip:  20,
			Limit: 10,
			Sort: sortKeys(
				pagination.SortKey{Field: viewsField, Direction: pagination.Desc},
				pagination.SortKey{Field: idField, Direction: pagination.Asc},
			),
		},
	}

	tests := []struct {
		name      string
		dialect   condition.Dialect
		wantFind  string
		wantCount string
	}{
		{
			name:      "postgres",
			dialect:   condition.DialectPostgres,
			wantFind:  "SELECT * FROM posts WHERE views > $1 ORDER BY views DESC, id ASC LIMIT 10 OFFSET 20",
			wantCount: "SELECT COUNT(*) FROM posts WHERE views > $1",
		},
		{
			name:      "mysql",
			dialect:   condition.DialectMySQL,
			wantFind:  "SELECT * FROM posts WHERE views > ? ORDER BY views DESC, id ASC LIMIT 10 OFFSET 20",
			wantCount: "SELECT COUNT(*) FROM posts WHERE views > ?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSQLProvider(nil, "posts", tt.dialect)

			query, args, err := p.findQuery(plan).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantFind, query)
			assert.Equal(t, []interface{}{10}, args)

			query, args, err = p.countQuery(plan.Filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, query)
			assert.Equal(t, []interface{}{10}, args)
		})
	}
}

func TestSQLProviderQueriesWithoutFilter(t *testing.T) {
	p := NewSQLProvider(nil, "posts", condition.DialectPostgres)
	plan := pagination.Plan[sq.Sqlizer]{Window: pagination.Window{
		Limit: 5,
		Sort:  sortKeys(pagination.SortKey{Field: authorName, Direction: pagination.Asc}),
	}}

	query, args, err := p.findQuery(plan).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM posts ORDER BY author_name ASC LIMIT 5 OFFSET 0", query)
	assert.Empty(t, args)

	query, _, err = p.countQuery(nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM posts", query)
}

type fakeCollection struct {
	docs        []interface{}
	countFilter interface{}
	findFilter  interface{}
	findOpts    *options.FindOptions
}

func (c *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	c.countFilter = filter
	return int64(len(c.docs)), nil
}

func (c *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	c.findFilter = filter
	c.findOpts = options.MergeFindOptions(opts...)
	return mongo.NewCursorFromDocuments(c.docs, nil, nil)
}

func TestMongoProviderScopesSoftDeletes(t *testing.T) {
	coll := &fakeCollection{}
	p := &MongoProvider{Collection: coll, Compiler: condition.NewMongoCompiler(criteria.DefaultRegistry(), "")}

	_, err := p.Count(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"deleted": bson.M{"$ne": true}}, coll.countFilter)

	filter := bson.M{"views": bson.M{"$gt": 10}}
	_, err = p.Count(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$and": []bson.M{{"deleted": bson.M{"$ne": true}}, filter}}, coll.countFilter)
}

func TestMongoProviderFind(t *testing.T) {
	oid := primitive.NewObjectID()
	coll := &fakeCollection{docs: []interface{}{
		bson.M{"_id": oid, "title": "first", "views": 3},
	}}
	p := &MongoProvider{Collection: coll, Compiler: condition.NewMongoCompiler(criteria.DefaultRegistry(), "data.")}

	plan := pagination.Plan[bson.M]{
		Filter: bson.M{},
		Window: pagination.Window{
			Skip:  5,
			Limit: 10,
			Sort: sortKeys(
				pagination.SortKey{Field: viewsField, Direction: pagination.Desc},
				pagination.SortKey{Field: criteria.Field{Name: "_id", Type: criteria.TypeText, Sortable: true}, Direction: pagination.Asc},
			),
		},
	}

	items, err := p.Find(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, oid.Hex(), items[0]["id"])
	assert.Equal(t, "first", items[0]["title"])

	require.NotNil(t, coll.findOpts)
	assert.Equal(t, int64(5), *coll.findOpts.Skip)
	assert.Equal(t, int64(10), *coll.findOpts.Limit)
	assert.Equal(t, bson.D{{Key: "data.views", Value: -1}, {Key: "_id", Value: 1}}, coll.findOpts.Sort)
}

func TestFlattenRecordKeepsExistingID(t *testing.T) {
	oid := primitive.NewObjectID()
	flat := flattenRecord(bson.M{"_id": oid, "id": 7})
	assert.Equal(t, 7, flat["id"])
	assert.Equal(t, oid, flat["_id"])
}

func TestMemoryProviderStableSort(t *testing.T) {
	rows := []Record{
		{"id": 1, "views": 5},
		{"id": 2, "views": nil},
		{"id": 3, "views": 5},
		{"id": 4, "views": 9},
		{"id": 5},
	}
	p := NewMemoryProvider(rows)

	tests := []struct {
		name string
		dir  pagination.Direction
		want []int
	}{
		{name: "asc puts nulls first", dir: pagination.Asc, want: []int{2, 5, 1, 3, 4}},
		{name: "desc keeps insertion order on ties", dir: pagination.Desc, want: []int{4, 1, 3, 2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := p.Find(context.Background(), pagination.Plan[condition.Predicate]{
				Filter: condition.MatchAll,
				Window: pagination.Window{Limit: 10, Sort: sortKeys(pagination.SortKey{Field: viewsField, Direction: tt.dir})},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(items))
		})
	}
}

func TestMemoryProviderHonoursCancellation(t *testing.T) {
	p := NewMemoryProvider([]Record{{"id": 1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Count(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
