package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "pawcare/internal/bookings/errors"
	"pawcare/pkg/config"
	mongotx "pawcare/pkg/db/mongo"
	"pawcare/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveByUserAndSlot(ctx context.Context, userID, serviceName string, start, end time.Time, timeSlot string) (*model.Booking, error)
	CountActiveBySlot(ctx context.Context, serviceName string, start, end time.Time, timeSlot string) (int64, error)
	CountActiveByTimeSlot(ctx context.Context, serviceName string, start, end time.Time) (map[string]int64, error)
	FindByUser(ctx context.Context, userID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// Inside a transaction the SessionContext is returned unchanged with a no-op
// cancel, since wrapping it would detach the operation from the session.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.IsSessionContext(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func liveStatusFilter() bson.M {
	return bson.M{"$in": model.LiveBookingStatuses()}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrDuplicateBooking
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindActiveByUserAndSlot(ctx context.Context, userID, serviceName string, start, end time.Time, timeSlot string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":      userID,
		"service_name": serviceName,
		"date":         bson.M{"$gte": start, "$lt": end},
		"time_slot":    timeSlot,
		"status":       liveStatusFilter(),
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user booking for slot: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) CountActiveBySlot(ctx context.Context, serviceName string, start, end time.Time, timeSlot string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"service_name": serviceName,
		"date":         bson.M{"$gte": start, "$lt": end},
		"time_slot":    timeSlot,
		"status":       liveStatusFilter(),
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count slot bookings: %w", err)
	}
	return count, nil
}

type slotCount struct {
	TimeSlot string `bson:"_id"`
	Count    int64  `bson:"count"`
}

// CountActiveByTimeSlot returns live booking counts keyed by time slot for a
// service and day. Slots with no bookings are absent from the map.
func (r *mongoBookingRepository) CountActiveByTimeSlot(ctx context.Context, serviceName string, start, end time.Time) (map[string]int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"service_name": serviceName,
			"date":         bson.M{"$gte": start, "$lt": end},
			"status":       liveStatusFilter(),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$time_slot",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate slot counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []slotCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode slot counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TimeSlot] = row.Count
	}
	return counts, nil
}

func userFilter(userID string, status model.BookingStatus) bson.M {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "date", Value: -1},
			{Key: "time_slot", Value: 1},
			{Key: "_id", Value: 1},
		}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, userFilter(userID, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0, limit)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, userFilter(userID, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in the expected status. A lost race returns ErrStatusChanged.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoOpTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
