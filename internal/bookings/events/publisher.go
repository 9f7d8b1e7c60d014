package events

import (
	"context"
	"pawcare/pkg/kafka"
	"pawcare/pkg/logger"
	"pawcare/pkg/middleware"
	"pawcare/pkg/model"
	"sync"
	"time"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"

	SchemaVersion = "1"
)

type BookingEvent struct {
	BookingID      string              `json:"booking_id"`
	UserID         string              `json:"user_id"`
	ServiceName    string              `json:"service_name"`
	Date           string              `json:"date"`
	TimeSlot       string              `json:"time_slot"`
	Status         model.BookingStatus `json:"status"`
	PreviousStatus model.BookingStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// Publisher announces booking lifecycle changes. Calls never block the
// caller on the broker and never fail the operation that triggered them.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus)
}

type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *model.Booking) {}

func (NopPublisher) BookingStatusChanged(context.Context, *model.Booking, model.BookingStatus) {}

type KafkaPublisher struct {
	producer kafka.Publisher
	log      *logger.Logger
	source   string
	timeout  time.Duration
	location *time.Location
	wg       sync.WaitGroup
}

func NewKafkaPublisher(producer kafka.Publisher, log *logger.Logger, timeout time.Duration, location *time.Location) *KafkaPublisher {
	if location == nil {
		location = time.UTC
	}
	return &KafkaPublisher{
		producer: producer,
		log:      log,
		source:   log.ServiceName(),
		timeout:  timeout,
		location: location,
	}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCreated, p.toEvent(booking, ""))
}

func (p *KafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus) {
	p.publish(ctx, EventBookingStatusChanged, p.toEvent(booking, from))
}

// Wait blocks until in-flight publishes finish. Used on shutdown before the
// producer is closed.
func (p *KafkaPublisher) Wait() {
	p.wg.Wait()
}

func (p *KafkaPublisher) toEvent(booking *model.Booking, from model.BookingStatus) BookingEvent {
	return BookingEvent{
		BookingID:      booking.ID,
		UserID:         booking.UserID,
		ServiceName:    booking.ServiceName,
		Date:           model.FormatDate(booking.Date, p.location),
		TimeSlot:       booking.TimeSlot,
		Status:         booking.Status,
		PreviousStatus: from,
		OccurredAt:     time.Now().UTC(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, event BookingEvent) {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event",
			"event_type", eventType,
			"booking_id", event.BookingID,
			"error", err,
		)
		return
	}

	// detached from the request so a finished response does not cancel delivery
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.producer.Publish(pubCtx, msg); err != nil {
			p.log.Warn("Failed to publish booking event",
				"event_type", eventType,
				"booking_id", event.BookingID,
				"error", err,
			)
		}
	}()
}
