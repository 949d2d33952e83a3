package repository

import (
	"context"
	"time"

	"bustracker/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BusRepository interface {
	Create(bus *model.Bus) error
	Upsert(bus *model.Bus) error
	Update(busNumber string, patch *model.BusPatch) (int64, error)
	Delete(busNumber string) (int64, error)
	FindByBusNumber(busNumber string) (*model.Bus, error)
	FindAll() ([]*model.Bus, error)
	CountAll() (int64, error)
	CountByRouteName(routeName string) (int64, error)
	CountByRouteCode(code string) (int64, error)
	CountByRoute() ([]model.RouteBusCount, error)
	CountByDepot() ([]model.DepotCount, error)
}

type MongoBusRepository struct {
	collection *mongo.Collection
}

func NewMongoBusRepository(db *mongo.Database) *MongoBusRepository {
	return &MongoBusRepository{
		collection: db.Collection("buses"),
	}
}

func (r *MongoBusRepository) Create(bus *model.Bus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, bus)
	return err
}

func (r *MongoBusRepository) Upsert(bus *model.Bus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"busId": bus.BusID},
		bson.M{"$set": bus},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoBusRepository) Update(busNumber string, patch *model.BusPatch) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if patch.RouteNumber != nil {
		set["routeNumber"] = *patch.RouteNumber
	}
	if patch.RouteName != nil {
		set["routeName"] = *patch.RouteName
	}
	if patch.Depot != nil {
		set["depot"] = *patch.Depot
	}
	if patch.DriverName != nil {
		set["driverName"] = *patch.DriverName
	}
	if patch.DriverID != nil {
		set["driverId"] = *patch.DriverID
	}
	if patch.Capacity != nil {
		set["capacity"] = *patch.Capacity
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"busNumber": busNumber}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, model.ErrNotFound
	}
	return res.ModifiedCount, nil
}

func (r *MongoBusRepository) Delete(busNumber string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"busNumber": busNumber})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoBusRepository) FindByBusNumber(busNumber string) (*model.Bus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var bus model.Bus
	err := r.collection.FindOne(ctx, bson.M{"busNumber": busNumber}).Decode(&bus)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &bus, err
}

func (r *MongoBusRepository) FindAll() ([]*model.Bus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buses []*model.Bus
	if err = cursor.All(ctx, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}

func (r *MongoBusRepository) CountAll() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoBusRepository) CountByRouteName(routeName string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"routeName": routeName})
}

// CountByRouteCode counts buses whose routeName mentions the route
// code, case-insensitively. Route references are soft, by name.
func (r *MongoBusRepository) CountByRouteCode(code string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{
		"routeName": primitive.Regex{Pattern: code, Options: "i"},
	})
}

func (r *MongoBusRepository) CountByRoute() ([]model.RouteBusCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$routeName", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Route string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	counts := make([]model.RouteBusCount, 0, len(out))
	for _, o := range out {
		route := o.Route
		if route == "" {
			route = "Unassigned"
		}
		counts = append(counts, model.RouteBusCount{Route: route, Count: o.Count})
	}
	return counts, nil
}

func (r *MongoBusRepository) CountByDepot() ([]model.DepotCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$depot", "busCount": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"busCount": -1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Depot string `bson:"_id"`
		Count int64  `bson:"busCount"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	counts := make([]model.DepotCount, 0, len(out))
	for _, o := range out {
		depot := o.Depot
		if depot == "" {
			depot = "Unknown"
		}
		counts = append(counts, model.DepotCount{Depot: depot, Count: o.Count})
	}
	return counts, nil
}
