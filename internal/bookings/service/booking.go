package service

import (
	"context"
	"errors"
	"pawcare/internal/bookings/events"
	bookingserrors "pawcare/internal/bookings/errors"
	"pawcare/internal/bookings/repository"
	"pawcare/internal/bookings/validator"
	"pawcare/pkg/config"
	apperrors "pawcare/pkg/errors"
	"pawcare/pkg/metrics"
	"pawcare/pkg/model"
	"pawcare/pkg/sanitizer"
	"sync"
	"time"
)

type BookingService interface {
	GetCatalog() *model.Catalog
	GetAvailableSlots(ctx context.Context, serviceName, date string) (*model.DayAvailability, error)
	Create(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, userID, id string) (*model.Booking, error)
	GetUserBookings(ctx context.Context, userID, status string, page, limit int) (*model.BookingPage, error)
	Cancel(ctx context.Context, userID, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	guards    repository.SlotGuardRepository
	validator *validator.BookingValidator
	events    events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	guards repository.SlotGuardRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		guards:    guards,
		validator: validator,
		events:    publisher,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) location() *time.Location {
	if s.cfg.BookingLocation == nil {
		return time.UTC
	}
	return s.cfg.BookingLocation
}

func (s *bookingService) GetCatalog() *model.Catalog {
	return &model.Catalog{
		Services: model.Services(),
		Slots:    model.TimeSlots(),
		Capacity: s.cfg.MaxBookingsPerSlot,
	}
}

func (s *bookingService) GetAvailableSlots(ctx context.Context, serviceName, date string) (*model.DayAvailability, error) {
	query := &validator.SlotQuery{ServiceName: serviceName, Date: date}
	if err := s.validator.ValidateSlotQuery(query); err != nil {
		return nil, validationError(err)
	}

	day, err := model.ParseBookingDate(date, s.location())
	if err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"date": err.Error()})
	}
	start, end := model.DayRange(day, s.location())

	counts, err := s.repo.CountActiveByTimeSlot(ctx, serviceName, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings per slot",
			"service_name", serviceName,
			"date", model.FormatDate(start, s.location()),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to compute slot availability", err)
	}

	capacity := s.cfg.MaxBookingsPerSlot
	slots := model.TimeSlots()
	result := &model.DayAvailability{
		ServiceName: serviceName,
		Date:        model.FormatDate(start, s.location()),
		Slots:       make([]model.SlotAvailability, 0, len(slots)),
		TotalSlots:  len(slots),
	}
	for _, slot := range slots {
		booked := counts[slot.Label]
		available := booked < int64(capacity)
		if available {
			result.TotalAvailable++
		}
		result.Slots = append(result.Slots, model.SlotAvailability{
			TimeSlot:    slot.Label,
			Segment:     slot.Segment,
			BookedCount: booked,
			Capacity:    capacity,
			Available:   available,
		})
	}

	return result, nil
}

func (s *bookingService) Create(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("User identity is required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Request body cannot be empty")
	}

	s.sanitize(req)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.metrics.ObserveAdmission(req.ServiceName, metrics.AdmissionRejected)
		return nil, validationError(err)
	}

	day, err := model.ParseBookingDate(req.Date, s.location())
	if err != nil {
		s.metrics.ObserveAdmission(req.ServiceName, metrics.AdmissionRejected)
		return nil, apperrors.Validation("Invalid date", map[string]any{"date": err.Error()})
	}
	start, end := model.DayRange(day, s.location())
	if start.Before(model.StartOfDay(s.now(), s.location())) {
		s.metrics.ObserveAdmission(req.ServiceName, metrics.AdmissionRejected)
		return nil, apperrors.Validation("Booking date cannot be in the past", map[string]any{
			"date": "date must be today or later",
		})
	}

	booking := &model.Booking{
		UserID:      userID,
		ServiceName: req.ServiceName,
		Date:        start,
		TimeSlot:    req.TimeSlot,
		Notes:       req.Notes,
		Status:      model.BookingStatusPending,
	}
	slotDetails := map[string]any{
		"service_name": req.ServiceName,
		"date":         model.FormatDate(start, s.location()),
		"time_slot":    req.TimeSlot,
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// the driver may rerun this body; start each attempt unsaved
		booking.ID = ""

		if err := s.guards.Claim(txCtx, booking.ServiceName, start, booking.TimeSlot); err != nil {
			return err
		}

		existing, err := s.repo.FindActiveByUserAndSlot(txCtx, userID, booking.ServiceName, start, end, booking.TimeSlot)
		if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if existing != nil {
			return apperrors.DuplicateBooking(withExisting(slotDetails, existing.ID))
		}

		count, err := s.repo.CountActiveBySlot(txCtx, booking.ServiceName, start, end, booking.TimeSlot)
		if err != nil {
			return apperrors.Internal("Failed to count slot bookings", err)
		}
		if count >= int64(s.cfg.MaxBookingsPerSlot) {
			return apperrors.SlotFull(withCapacity(slotDetails, s.cfg.MaxBookingsPerSlot))
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateBooking) {
				return apperrors.DuplicateBooking(slotDetails)
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to create booking", err)
		}
		s.metrics.ObserveAdmission(booking.ServiceName, admissionResult(err))
		if apperrors.IsCode(err, apperrors.CodeInternal) {
			s.cfg.Log.Error("Failed to create booking", "user_id", userID, "error", err)
		} else {
			s.cfg.Log.Info("Booking refused", "user_id", userID, "reason", apperrors.AsAppError(err).Code)
		}
		return nil, err
	}

	s.metrics.ObserveAdmission(booking.ServiceName, metrics.AdmissionCreated)
	s.events.BookingCreated(ctx, booking)
	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"user_id", booking.UserID,
		"service_name", booking.ServiceName,
		"date", model.FormatDate(booking.Date, s.location()),
		"time_slot", booking.TimeSlot,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, userID, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID, status string, page, limit int) (*model.BookingPage, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("User identity is required")
	}
	if err := s.validator.ValidateStatusFilter(status); err != nil {
		return nil, validationError(err)
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := int64(page-1) * int64(limit)
	filter := model.BookingStatus(status)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count user bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list user bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	return &model.BookingPage{
		Bookings:   bookings,
		Total:      count,
		Page:       page,
		Limit:      limit,
		TotalPages: model.TotalPages(count, limit),
	}, nil
}

func (s *bookingService) Cancel(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, booking, model.BookingStatusCancelled)
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if update == nil {
		return nil, apperrors.InvalidInput("Request body cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, validationError(err)
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, booking, update.Status)
}

// transition applies a status change allowed by the transition table. The
// write only matches while the stored status is still the one we read.
func (s *bookingService) transition(ctx context.Context, booking *model.Booking, to model.BookingStatus) (*model.Booking, error) {
	from := booking.Status
	if !from.CanTransitionTo(to) {
		return nil, apperrors.IllegalTransition(string(from), string(to))
	}

	updated, err := s.repo.UpdateStatus(ctx, booking.ID, from, to)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking status was changed by another request").
				WithDetails(map[string]any{"id": booking.ID, "expected_status": string(from)})
		}
		s.cfg.Log.Error("Failed to update booking status", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.metrics.ObserveStatusChange(string(from), string(to))
	s.events.BookingStatusChanged(ctx, updated, from)
	s.cfg.Log.Info("Booking status changed",
		"id", updated.ID,
		"user_id", updated.UserID,
		"from", from,
		"to", to,
	)
	return updated, nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) sanitize(req *model.CreateBookingRequest) {
	req.ServiceName = sanitizer.NormalizeLabel(req.ServiceName)
	req.TimeSlot = sanitizer.TrimAndNormalize(req.TimeSlot)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
}

func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Validation failed", validationErrs.Details())
	}
	return apperrors.Validation(err.Error(), nil)
}

func admissionResult(err error) string {
	switch {
	case apperrors.IsCode(err, apperrors.CodeDuplicateBooking):
		return metrics.AdmissionDuplicate
	case apperrors.IsCode(err, apperrors.CodeSlotFull):
		return metrics.AdmissionFull
	default:
		return metrics.AdmissionError
	}
}

func withExisting(details map[string]any, existingID string) map[string]any {
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["existing_booking_id"] = existingID
	return out
}

func withCapacity(details map[string]any, capacity int) map[string]any {
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["capacity"] = capacity
	return out
}
