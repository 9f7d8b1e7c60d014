package model

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists, per status, the statuses it may move to.
// Statuses missing from the map are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func BookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

// LiveBookingStatuses are the statuses that occupy a slot.
func LiveBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCompleted,
	}
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsLive reports whether a booking in this status counts toward slot
// capacity and the one-booking-per-user-per-slot rule.
func (s BookingStatus) IsLive() bool {
	return s.IsValid() && s != BookingStatusCancelled
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      string        `json:"user_id" bson:"user_id"`
	ServiceName string        `json:"service_name" bson:"service_name"`
	Date        time.Time     `json:"date" bson:"date"`
	TimeSlot    string        `json:"time_slot" bson:"time_slot"`
	Notes       string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Status      BookingStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

type CreateBookingRequest struct {
	ServiceName string `json:"service_name" validate:"required,service_name"`
	Date        string `json:"date" validate:"required,booking_date"`
	TimeSlot    string `json:"time_slot" validate:"required,time_slot"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
}

type SlotAvailability struct {
	TimeSlot    string      `json:"time_slot"`
	Segment     SlotSegment `json:"segment"`
	BookedCount int64       `json:"booked_count"`
	Capacity    int         `json:"capacity"`
	Available   bool        `json:"available"`
}

type DayAvailability struct {
	ServiceName    string             `json:"service_name"`
	Date           string             `json:"date"`
	Slots          []SlotAvailability `json:"slots"`
	TotalAvailable int                `json:"total_available"`
	TotalSlots     int                `json:"total_slots"`
}

type BookingPage struct {
	Bookings   []*Booking `json:"bookings"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// TotalPages returns ceil(total/limit); a non-positive limit yields zero.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
