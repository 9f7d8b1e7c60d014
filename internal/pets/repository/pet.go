package repository

import (
	"context"
	"errors"
	"fmt"
	petserrors "pawcare/internal/pets/errors"
	"pawcare/pkg/config"
	"pawcare/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Pets"
)

type PetRepository interface {
	Create(ctx context.Context, pet *model.Pet) error
	FindByID(ctx context.Context, id string) (*model.Pet, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Pet, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Update(ctx context.Context, id, ownerID string, update *model.PetUpdate) (*model.Pet, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type mongoPetRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPetRepository(cfg *config.Config) PetRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPetRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPetRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < r.cfg.MongoOpTimeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.MongoOpTimeout)
}

func ownedFilter(id, ownerID string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", petserrors.ErrInvalidID, id)
	}
	return bson.M{"_id": objectID, "owner_id": ownerID}, nil
}

func (r *mongoPetRepository) Create(ctx context.Context, pet *model.Pet) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	pet.CreatedAt = now
	pet.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, pet)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		pet.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPetRepository) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", petserrors.ErrInvalidID, id)
	}

	var pet model.Pet
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", petserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find pet: %w", err)
	}
	return &pet, nil
}

func (r *mongoPetRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Pet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer cursor.Close(ctx)

	pets := []*model.Pet{}
	if err = cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %w", err)
	}
	return pets, nil
}

func (r *mongoPetRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count pets: %w", err)
	}
	return count, nil
}

// Update sets the non-nil fields of update on a pet the owner holds.
func (r *mongoPetRepository) Update(ctx context.Context, id, ownerID string, update *model.PetUpdate) (*model.Pet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	raw, err := bson.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pet update: %w", err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to encode pet update: %w", err)
	}
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var pet model.Pet
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", petserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	return &pet, nil
}

func (r *mongoPetRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", petserrors.ErrNotFound, id)
	}
	return nil
}
