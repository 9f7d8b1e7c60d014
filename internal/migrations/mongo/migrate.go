package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "pawcare/internal/bookings/repository"
	"pawcare/internal/migrations/mongo/validators"
	petsrepo "pawcare/internal/pets/repository"
	"pawcare/pkg/logger"
	"pawcare/pkg/model"
)

const (
	LiveBookingIndexName = "uniq_live_booking_per_user_slot"

	SlotGuardTTLSeconds = int32(30 * 24 * 60 * 60)
)

var (
	// LiveBookingIndex rejects a second live booking by the same user for the
	// same slot. Partial filters with $in need MongoDB 6.0 or later.
	LiveBookingIndex = mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "service_name", Value: 1},
			{Key: "date", Value: 1},
			{Key: "time_slot", Value: 1},
		},
		Options: options.Index().
			SetName(LiveBookingIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": model.LiveBookingStatuses()},
			}),
	}

	BookingsIndexes = []mongo.IndexModel{
		LiveBookingIndex,
		{Keys: bson.D{
			{Key: "service_name", Value: 1},
			{Key: "date", Value: 1},
			{Key: "time_slot", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date", Value: -1},
			{Key: "time_slot", Value: 1},
		}},
	}

	SlotGuardsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(SlotGuardTTLSeconds),
		},
	}

	PetsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		bookingsrepo.CollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		bookingsrepo.SlotGuardCollectionName: {
			Indexes:   SlotGuardsIndexes,
			Validator: validators.SlotGuardValidator,
		},
		petsrepo.CollectionName: {
			Indexes:   PetsIndexes,
			Validator: validators.PetValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	created, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", created)
	return nil
}
