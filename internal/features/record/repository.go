package record

import (
	"context"

	"go-admin/pkg/condition"
	"go-admin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCollection is the subset of *mongo.Collection the provider uses.
type mongoCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// MongoProvider lists documents of one collection. Soft-deleted documents
// are never visible.
type MongoProvider struct {
	Collection mongoCollection
	Compiler   *condition.MongoCompiler
}

func NewMongoProvider(coll *mongo.Collection, compiler *condition.MongoCompiler) *MongoProvider {
	return &MongoProvider{Collection: coll, Compiler: compiler}
}

func (p *MongoProvider) scoped(filter bson.M) bson.M {
	base := bson.M{"deleted": bson.M{"$ne": true}}
	if len(filter) == 0 {
		return base
	}
	return bson.M{"$and": []bson.M{base, filter}}
}

func (p *MongoProvider) Count(ctx context.Context, filter bson.M) (int64, error) {
	return p.Collection.CountDocuments(ctx, p.scoped(filter))
}

func (p *MongoProvider) Find(ctx context.Context, plan pagination.Plan[bson.M]) ([]Record, error) {
	findOptions := options.Find()
	findOptions.SetSkip(plan.Skip)
	findOptions.SetLimit(plan.Limit)
	if sort := p.sort(plan.Sort); len(sort) > 0 {
		findOptions.SetSort(sort)
	}

	cursor, err := p.Collection.Find(ctx, p.scoped(plan.Filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	results := make([]Record, len(docs))
	for i, doc := range docs {
		results[i] = flattenRecord(doc)
	}
	return results, nil
}

func (p *MongoProvider) sort(keys []pagination.SortKey) bson.D {
	sort := make(bson.D, 0, len(keys))
	for _, k := range keys {
		path := k.Field.Storage()
		if path != "_id" {
			path = p.Compiler.Path(k.Field)
		}
		dir := 1
		if k.Desc() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: path, Value: dir})
	}
	return sort
}

func flattenRecord(doc bson.M) Record {
	flat := make(Record, len(doc)+1)
	for k, v := range doc {
		flat[k] = v
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		if _, taken := flat["id"]; !taken {
			flat["id"] = oid.Hex()
		}
	}
	return flat
}
