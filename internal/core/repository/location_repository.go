package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"bustracker/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LocationRepository interface {
	Upsert(fix *model.LocationFix) error
	FindActiveSince(since time.Time) ([]*model.LocationFix, error)
	FindLatestByBusNumber(busNumber string) (*model.LocationFix, error)
	DeleteByBusID(busID string) (int64, error)
	DeleteByBusNumber(busNumber string) (int64, error)
	CountActiveBuses(since time.Time) (int64, error)
	SpeedStats(since time.Time) (model.SpeedStats, error)
	UpdatesPerHour(since time.Time) ([]model.HourlyCount, error)
	MostActiveBuses(since time.Time, limit int) ([]model.BusActivity, error)
}

type MongoLocationRepository struct {
	collection *mongo.Collection
}

func NewMongoLocationRepository(db *mongo.Database) *MongoLocationRepository {
	return &MongoLocationRepository{
		collection: db.Collection("locations"),
	}
}

// Upsert writes the current fix for a bus, overwriting any earlier one.
// Replaying the same fix is harmless: the row converges to the same state.
func (r *MongoLocationRepository) Upsert(fix *model.LocationFix) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"busId": fix.BusID},
		bson.M{"$set": fix},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransient, err)
	}
	return nil
}

func (r *MongoLocationRepository) FindActiveSince(since time.Time) ([]*model.LocationFix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"timestamp": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fixes []*model.LocationFix
	if err = cursor.All(ctx, &fixes); err != nil {
		return nil, err
	}
	return fixes, nil
}

func (r *MongoLocationRepository) FindLatestByBusNumber(busNumber string) (*model.LocationFix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.M{"timestamp": -1})
	var fix model.LocationFix
	err := r.collection.FindOne(ctx, bson.M{"busNumber": busNumber}, opts).Decode(&fix)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &fix, err
}

func (r *MongoLocationRepository) DeleteByBusID(busID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"busId": busID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoLocationRepository) DeleteByBusNumber(busNumber string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"busNumber": busNumber})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoLocationRepository) CountActiveBuses(since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$busNumber"}}},
		{{Key: "$count", Value: "count"}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Count int64 `bson:"count"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Count, nil
}

func (r *MongoLocationRepository) SpeedStats(since time.Time) (model.SpeedStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": since},
			"speed":     bson.M{"$gt": 0},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"avgSpeed": bson.M{"$avg": "$speed"},
			"maxSpeed": bson.M{"$max": "$speed"},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return model.SpeedStats{}, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		AvgSpeed float64 `bson:"avgSpeed"`
		MaxSpeed float64 `bson:"maxSpeed"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return model.SpeedStats{}, err
	}
	if len(out) == 0 {
		return model.SpeedStats{}, nil
	}
	return model.SpeedStats{
		AverageSpeed: round1(out[0].AvgSpeed),
		MaxSpeed:     round1(out[0].MaxSpeed),
	}, nil
}

func (r *MongoLocationRepository) UpdatesPerHour(since time.Time) ([]model.HourlyCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d-%H",
				"date":   "$timestamp",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		Hour  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	counts := make([]model.HourlyCount, 0, len(out))
	for _, o := range out {
		counts = append(counts, model.HourlyCount{Hour: o.Hour, Count: o.Count})
	}
	return counts, nil
}

func (r *MongoLocationRepository) MostActiveBuses(since time.Time, limit int) ([]model.BusActivity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$busNumber",
			"updateCount": bson.M{"$sum": 1},
			"avgSpeed":    bson.M{"$avg": "$speed"},
		}}},
		{{Key: "$sort", Value: bson.M{"updateCount": -1}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []struct {
		BusNumber   string  `bson:"_id"`
		UpdateCount int64   `bson:"updateCount"`
		AvgSpeed    float64 `bson:"avgSpeed"`
	}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	activity := make([]model.BusActivity, 0, len(out))
	for _, o := range out {
		activity = append(activity, model.BusActivity{
			BusNumber: o.BusNumber,
			Updates:   o.UpdateCount,
			AvgSpeed:  round1(o.AvgSpeed),
		})
	}
	return activity, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
