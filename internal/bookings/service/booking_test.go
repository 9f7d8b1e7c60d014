package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	bookingserrors "pawcare/internal/bookings/errors"
	"pawcare/internal/bookings/validator"
	"pawcare/pkg/config"
	mongotx "pawcare/pkg/db/mongo"
	apperrors "pawcare/pkg/errors"
	"pawcare/pkg/logger"
	"pawcare/pkg/metrics"
	"pawcare/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBookingRepository serializes transactions with a mutex, which is the
// guarantee the slot guard provides against MongoDB.
type memoryBookingRepository struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	bookings []*model.Booking
	nextID   int
	failFind error
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UserID == booking.UserID && b.ServiceName == booking.ServiceName &&
			b.Date.Equal(booking.Date) && b.TimeSlot == booking.TimeSlot && b.Status.IsLive() {
			return bookingserrors.ErrDuplicateBooking
		}
	}
	r.nextID++
	now := time.Now().UTC()
	booking.ID = fmt.Sprintf("%024x", r.nextID)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	stored := *booking
	r.bookings = append(r.bookings, &stored)
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(id) != 24 {
		return nil, bookingserrors.ErrInvalidID
	}
	for _, b := range r.bookings {
		if b.ID == id {
			found := *b
			return &found, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func inDay(b *model.Booking, serviceName string, start, end time.Time) bool {
	return b.ServiceName == serviceName && !b.Date.Before(start) && b.Date.Before(end) && b.Status.IsLive()
}

func (r *memoryBookingRepository) FindActiveByUserAndSlot(ctx context.Context, userID, serviceName string, start, end time.Time, timeSlot string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UserID == userID && b.TimeSlot == timeSlot && inDay(b, serviceName, start, end) {
			found := *b
			return &found, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memoryBookingRepository) CountActiveBySlot(ctx context.Context, serviceName string, start, end time.Time, timeSlot string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.TimeSlot == timeSlot && inDay(b, serviceName, start, end) {
			n++
		}
	}
	return n, nil
}

func (r *memoryBookingRepository) CountActiveByTimeSlot(ctx context.Context, serviceName string, start, end time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, b := range r.bookings {
		if inDay(b, serviceName, start, end) {
			counts[b.TimeSlot]++
		}
	}
	return counts, nil
}

func (r *memoryBookingRepository) userBookings(userID string, status model.BookingStatus) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			found := *b
			out = append(out, &found)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryBookingRepository) FindByUser(ctx context.Context, userID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	all := r.userBookings(userID, status)
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	end := offset + int64(limit)
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (r *memoryBookingRepository) CountByUser(ctx context.Context, userID string, status model.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.userBookings(userID, status))), nil
}

func (r *memoryBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			if b.Status != from {
				return nil, bookingserrors.ErrStatusChanged
			}
			b.Status = to
			b.UpdatedAt = time.Now().UTC()
			updated := *b
			return &updated, nil
		}
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx)
}

func (r *memoryBookingRepository) setStatus(id string, status model.BookingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
		}
	}
}

type countingGuards struct {
	mu     sync.Mutex
	claims map[string]int
}

func (g *countingGuards) Claim(ctx context.Context, serviceName string, day time.Time, timeSlot string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claims == nil {
		g.claims = map[string]int{}
	}
	g.claims[model.SlotGuardID(serviceName, day, timeSlot)]++
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []*model.Booking
	changed []model.BookingStatus
}

func (p *recordingPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, booking)
}

func (p *recordingPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, booking.Status)
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *bookingService
	repo      *memoryBookingRepository
	guards    *countingGuards
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard, Service: "bookings"})
	cfg := &config.Config{
		MaxBookingsPerSlot: config.DefaultMaxBookingsPerSlot,
		BookingLocation:    time.UTC,
		Log:                log,
	}
	f := &fixture{
		repo:      &memoryBookingRepository{},
		guards:    &countingGuards{},
		publisher: &recordingPublisher{},
		metrics:   metrics.New("test", prometheus.NewRegistry()),
	}
	svc := NewBookingService(f.repo, f.guards, validator.NewBookingValidator(log, time.UTC), f.publisher, f.metrics, cfg).(*bookingService)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func request(slot string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		ServiceName: model.ServiceGrooming,
		Date:        "2025-03-10",
		TimeSlot:    slot,
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestGetAvailableSlots_EmptyDay(t *testing.T) {
	f := newFixture(t)

	day, err := f.svc.GetAvailableSlots(context.Background(), model.ServiceGrooming, "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", day.Date)
	assert.Equal(t, model.ServiceGrooming, day.ServiceName)
	assert.Equal(t, 14, day.TotalSlots)
	assert.Equal(t, 14, day.TotalAvailable)
	require.Len(t, day.Slots, 14)
	for i, slot := range model.TimeSlots() {
		assert.Equal(t, slot.Label, day.Slots[i].TimeSlot)
		assert.Equal(t, slot.Segment, day.Slots[i].Segment)
		assert.Equal(t, int64(0), day.Slots[i].BookedCount)
		assert.Equal(t, 3, day.Slots[i].Capacity)
		assert.True(t, day.Slots[i].Available)
	}
}

func TestGetAvailableSlots_ReflectsBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, fmt.Sprintf("user-%d", i), request(slot))
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, "user-x", request(model.TimeSlots()[1].Label))
	require.NoError(t, err)

	day, err := f.svc.GetAvailableSlots(ctx, model.ServiceGrooming, "2025-03-10T15:04:05Z")
	require.NoError(t, err)

	assert.Equal(t, int64(3), day.Slots[0].BookedCount)
	assert.False(t, day.Slots[0].Available)
	assert.Equal(t, int64(1), day.Slots[1].BookedCount)
	assert.True(t, day.Slots[1].Available)
	assert.Equal(t, 13, day.TotalAvailable)

	other, err := f.svc.GetAvailableSlots(ctx, model.ServiceDentalCare, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 14, other.TotalAvailable)
}

func TestGetAvailableSlots_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetAvailableSlots(context.Background(), "haircut", "2025-03-10")
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.GetAvailableSlots(context.Background(), model.ServiceGrooming, "10/03/2025")
	requireCode(t, err, apperrors.CodeValidation)
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	slot := model.TimeSlots()[2].Label

	req := request(slot)
	req.Notes = "  first visit  "
	booking, err := f.svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), booking.Date)
	assert.Equal(t, "first visit", booking.Notes)
	assert.False(t, booking.CreatedAt.IsZero())

	assert.Len(t, f.publisher.created, 1)
	assert.Equal(t, 1, f.guards.claims[model.SlotGuardID(model.ServiceGrooming, booking.Date, slot)])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingAdmissions.WithLabelValues(model.ServiceGrooming, metrics.AdmissionCreated)))
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	f := newFixture(t)
	req := request(model.TimeSlots()[0].Label)
	req.Date = "2025-03-01"

	_, err := f.svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)
}

func TestCreate_PastDateRejected(t *testing.T) {
	f := newFixture(t)
	req := request(model.TimeSlots()[0].Label)
	req.Date = "2025-02-28"

	_, err := f.svc.Create(context.Background(), "user-1", req)
	requireCode(t, err, apperrors.CodeValidation)
	assert.Empty(t, f.repo.bookings)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingAdmissions.WithLabelValues(model.ServiceGrooming, metrics.AdmissionRejected)))
}

func TestCreate_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.CreateBookingRequest
	}{
		{name: "unknown service", req: &model.CreateBookingRequest{ServiceName: "haircut", Date: "2025-03-10", TimeSlot: "09:00 - 09:30"}},
		{name: "unknown slot", req: &model.CreateBookingRequest{ServiceName: model.ServiceGrooming, Date: "2025-03-10", TimeSlot: "12:00 - 12:30"}},
		{name: "bad date", req: &model.CreateBookingRequest{ServiceName: model.ServiceGrooming, Date: "tomorrow", TimeSlot: "09:00 - 09:30"}},
		{name: "missing fields", req: &model.CreateBookingRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, "user-1", tt.req)
			requireCode(t, err, apperrors.CodeValidation)
		})
	}
	assert.Empty(t, f.repo.bookings)
}

func TestCreate_RequiresUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "", request(model.TimeSlots()[0].Label))
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestCreate_DuplicateSameUserSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	first, err := f.svc.Create(ctx, "user-1", request(slot))
	require.NoError(t, err)

	req := request(slot)
	req.Date = "2025-03-10T18:30:00Z"
	_, err = f.svc.Create(ctx, "user-1", req)
	requireCode(t, err, apperrors.CodeDuplicateBooking)
	assert.Equal(t, first.ID, apperrors.AsAppError(err).Details["existing_booking_id"])
	assert.Len(t, f.repo.bookings, 1)

	_, err = f.svc.Create(ctx, "user-1", request(model.TimeSlots()[1].Label))
	assert.NoError(t, err)
}

func TestCreate_SlotFullAtCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[5].Label

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, fmt.Sprintf("user-%d", i), request(slot))
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, "user-late", request(slot))
	requireCode(t, err, apperrors.CodeSlotFull)
	assert.Equal(t, 3, apperrors.AsAppError(err).Details["capacity"])
	assert.Len(t, f.repo.bookings, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingAdmissions.WithLabelValues(model.ServiceGrooming, metrics.AdmissionFull)))
}

func TestCreate_DuplicateCheckedBeforeCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, fmt.Sprintf("user-%d", i), request(slot))
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, "user-0", request(slot))
	requireCode(t, err, apperrors.CodeDuplicateBooking)
}

func TestCreate_CancelledBookingFreesCapacityAndAllowsRebook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	var ids []string
	for i := 0; i < 3; i++ {
		b, err := f.svc.Create(ctx, fmt.Sprintf("user-%d", i), request(slot))
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	_, err := f.svc.Cancel(ctx, "user-0", ids[0])
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "user-0", request(slot))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "user-9", request(slot))
	requireCode(t, err, apperrors.CodeSlotFull)
}

func TestCreate_CompletedBookingStillCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	b, err := f.svc.Create(ctx, "user-1", request(slot))
	require.NoError(t, err)
	f.repo.setStatus(b.ID, model.BookingStatusCompleted)

	day, err := f.svc.GetAvailableSlots(ctx, model.ServiceGrooming, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), day.Slots[0].BookedCount)

	_, err = f.svc.Create(ctx, "user-1", request(slot))
	requireCode(t, err, apperrors.CodeDuplicateBooking)
}

func TestCreate_ConcurrentAdmissionsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t)
	slot := model.TimeSlots()[3].Label

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, full := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), fmt.Sprintf("user-%d", i), request(slot))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperrors.IsCode(err, apperrors.CodeSlotFull):
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, created)
	assert.Equal(t, attempts-3, full)
}

func TestCreate_InsertDuplicateKeyMapsToConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := model.TimeSlots()[0].Label

	existing := &model.Booking{
		UserID:      "user-1",
		ServiceName: model.ServiceGrooming,
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:    slot,
		Status:      model.BookingStatusPending,
	}
	require.NoError(t, f.repo.Create(ctx, existing))

	// Bypass the lookup so only the store's uniqueness rule can refuse.
	repo := &lookupBlindRepository{memoryBookingRepository: f.repo}
	f.svc.repo = repo

	_, err := f.svc.Create(ctx, "user-1", request(slot))
	requireCode(t, err, apperrors.CodeDuplicateBooking)
}

type lookupBlindRepository struct {
	*memoryBookingRepository
}

func (r *lookupBlindRepository) FindActiveByUserAndSlot(ctx context.Context, userID, serviceName string, start, end time.Time, timeSlot string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func TestGetByID_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, "user-1", request(model.TimeSlots()[0].Label))
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, "user-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.GetByID(ctx, "user-2", b.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.GetByID(ctx, "user-1", "bad")
	requireCode(t, err, apperrors.CodeInvalidInput)
}

func TestGetUserBookings_OrderingAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slots := model.TimeSlots()

	dates := []string{"2025-03-10", "2025-03-12", "2025-03-11"}
	for _, d := range dates {
		for _, i := range []int{4, 0} {
			req := request(slots[i].Label)
			req.Date = d
			_, err := f.svc.Create(ctx, "user-1", req)
			require.NoError(t, err)
		}
	}
	_, err := f.svc.Create(ctx, "user-2", request(slots[1].Label))
	require.NoError(t, err)

	page, err := f.svc.GetUserBookings(ctx, "user-1", "", 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 4, page.Limit)
	require.Len(t, page.Bookings, 4)

	assert.Equal(t, "2025-03-12", model.FormatDate(page.Bookings[0].Date, time.UTC))
	assert.Equal(t, slots[0].Label, page.Bookings[0].TimeSlot)
	assert.Equal(t, slots[4].Label, page.Bookings[1].TimeSlot)
	assert.Equal(t, "2025-03-11", model.FormatDate(page.Bookings[2].Date, time.UTC))

	second, err := f.svc.GetUserBookings(ctx, "user-1", "", 2, 4)
	require.NoError(t, err)
	require.Len(t, second.Bookings, 2)
	assert.Equal(t, "2025-03-10", model.FormatDate(second.Bookings[1].Date, time.UTC))

	beyond, err := f.svc.GetUserBookings(ctx, "user-1", "", 5, 4)
	require.NoError(t, err)
	assert.Empty(t, beyond.Bookings)
	assert.NotNil(t, beyond.Bookings)
	assert.Equal(t, int64(6), beyond.Total)
}

func TestGetUserBookings_StatusFilterAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, "user-1", request(model.TimeSlots()[0].Label))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "user-1", request(model.TimeSlots()[1].Label))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, "user-1", b.ID)
	require.NoError(t, err)

	page, err := f.svc.GetUserBookings(ctx, "user-1", "cancelled", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, config.DefaultPaginationLimit, page.Limit)

	_, err = f.svc.GetUserBookings(ctx, "user-1", "archived", 1, 10)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestGetUserBookings_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failFind = errors.New("connection reset")

	_, err := f.svc.GetUserBookings(context.Background(), "user-1", "", 1, 10)
	requireCode(t, err, apperrors.CodeInternal)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, "user-1", request(model.TimeSlots()[0].Label))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: model.BookingStatusCompleted})
	requireCode(t, err, apperrors.CodeIllegalTransition)

	updated, err := f.svc.UpdateStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: model.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	updated, err = f.svc.UpdateStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: model.BookingStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: model.BookingStatusCancelled})
	requireCode(t, err, apperrors.CodeIllegalTransition)

	_, err = f.svc.UpdateStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "archived"})
	requireCode(t, err, apperrors.CodeValidation)

	assert.Equal(t, []model.BookingStatus{model.BookingStatusConfirmed, model.BookingStatusCompleted}, f.publisher.changed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingStatusChanges.WithLabelValues("pending", "confirmed")))
}

func TestCancel_TwiceIsIllegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, "user-1", request(model.TimeSlots()[0].Label))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, "user-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, "user-1", b.ID)
	requireCode(t, err, apperrors.CodeIllegalTransition)

	_, err = f.svc.Cancel(ctx, "user-2", b.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestTransition_LostRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, "user-1", request(model.TimeSlots()[0].Label))
	require.NoError(t, err)

	stale := *b
	f.repo.setStatus(b.ID, model.BookingStatusConfirmed)

	_, err = f.svc.transition(ctx, &stale, model.BookingStatusCancelled)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestGetCatalog(t *testing.T) {
	f := newFixture(t)

	catalog := f.svc.GetCatalog()
	assert.Equal(t, model.Services(), catalog.Services)
	assert.Len(t, catalog.Slots, 14)
	assert.Equal(t, 3, catalog.Capacity)
}
