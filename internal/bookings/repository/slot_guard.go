package repository

import (
	"context"
	"fmt"
	"pawcare/pkg/config"
	"pawcare/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotGuardCollectionName = "Booking_slot_guards"
)

// SlotGuardRepository serializes admissions per (service, day, slot).
type SlotGuardRepository interface {
	Claim(ctx context.Context, serviceName string, day time.Time, timeSlot string) error
}

type mongoSlotGuardRepository struct {
	collection *mongo.Collection
}

func NewSlotGuardRepository(cfg *config.Config) SlotGuardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotGuardRepository{
		collection: db.Collection(SlotGuardCollectionName),
	}
}

// Claim bumps the guard's version. It must run inside the admission
// transaction: a second transaction writing the same guard fails with a
// write conflict and is retried after the first commits.
func (r *mongoSlotGuardRepository) Claim(ctx context.Context, serviceName string, day time.Time, timeSlot string) error {
	id := model.SlotGuardID(serviceName, day, timeSlot)
	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{
			"service_name": serviceName,
			"date":         day,
			"time_slot":    timeSlot,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to claim slot guard %s: %w", id, err)
	}
	return nil
}
