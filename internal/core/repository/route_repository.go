package repository

import (
	"context"
	"time"

	"bustracker/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RouteRepository interface {
	Create(route *model.Route) error
	Update(code string, patch *model.RoutePatch) (int64, error)
	Delete(code string) (int64, error)
	FindByCode(code string) (*model.Route, error)
	FindAll() ([]*model.Route, error)
	CountAll() (int64, error)
}

type MongoRouteRepository struct {
	collection *mongo.Collection
}

func NewMongoRouteRepository(db *mongo.Database) *MongoRouteRepository {
	return &MongoRouteRepository{
		collection: db.Collection("routes"),
	}
}

func (r *MongoRouteRepository) Create(route *model.Route) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, route)
	return err
}

func (r *MongoRouteRepository) Update(code string, patch *model.RoutePatch) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Stops != nil {
		set["stops"] = *patch.Stops
	}
	if patch.Fare != nil {
		set["fare"] = *patch.Fare
	}
	if patch.Frequency != nil {
		set["frequency"] = *patch.Frequency
	}
	if patch.OperatingHours != nil {
		set["operatingHours"] = *patch.OperatingHours
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, model.ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (r *MongoRouteRepository) Delete(code string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRouteRepository) FindByCode(code string) (*model.Route, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var route model.Route
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&route)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &route, err
}

func (r *MongoRouteRepository) FindAll() ([]*model.Route, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var routes []*model.Route
	if err = cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *MongoRouteRepository) CountAll() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}
