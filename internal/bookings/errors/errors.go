package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicateBooking = errors.New("user already holds a live booking for this slot")

	ErrStatusChanged = errors.New("booking status changed concurrently")
)
