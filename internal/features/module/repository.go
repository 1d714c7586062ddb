package module

import (
	"context"

	"go-admin/internal/config"
	"go-admin/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ModuleRepository interface {
	List(ctx context.Context) ([]Module, error)
	EnsureIndexes(ctx context.Context) error
}

type ModuleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewModuleRepository(mongodb *database.MongodbDB, cfg *config.Config) ModuleRepository {
	return &ModuleRepositoryImpl{
		Collection: mongodb.DB.Collection(cfg.ModulesCollection),
	}
}

func (r *ModuleRepositoryImpl) List(ctx context.Context) ([]Module, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []Module
	if err = cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *ModuleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
