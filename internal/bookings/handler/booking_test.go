package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "pawcare/pkg/errors"
	httputil "pawcare/pkg/http"
	"pawcare/pkg/logger"
	"pawcare/pkg/middleware"
	"pawcare/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	createFunc          func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error)
	getUserBookingsFunc func(ctx context.Context, userID, status string, page, limit int) (*model.BookingPage, error)
	slotsFunc           func(ctx context.Context, serviceName, date string) (*model.DayAvailability, error)
	updateStatusFunc    func(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	cancelFunc          func(ctx context.Context, userID, id string) (*model.Booking, error)
}

func (m *mockBookingService) GetCatalog() *model.Catalog {
	return &model.Catalog{Services: model.Services(), Slots: model.TimeSlots(), Capacity: 3}
}

func (m *mockBookingService) GetAvailableSlots(ctx context.Context, serviceName, date string) (*model.DayAvailability, error) {
	if m.slotsFunc != nil {
		return m.slotsFunc(ctx, serviceName, date)
	}
	return &model.DayAvailability{}, nil
}

func (m *mockBookingService) Create(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, userID, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetUserBookings(ctx context.Context, userID, status string, page, limit int) (*model.BookingPage, error) {
	if m.getUserBookingsFunc != nil {
		return m.getUserBookingsFunc(ctx, userID, status, page, limit)
	}
	return &model.BookingPage{Bookings: []*model.Booking{}, Page: page, Limit: limit}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, userID, id string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, userID, id)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, update)
	}
	return &model.Booking{ID: id, Status: update.Status}, nil
}

func newTestServer(svc *mockBookingService) http.Handler {
	log := logger.New(logger.Config{Level: "info", Format: logger.JSON, Output: io.Discard, Service: "test"})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return middleware.UserAuth(log, PublicPaths...)(router)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreate_PassesUserAndRequest(t *testing.T) {
	var gotUser string
	var gotReq *model.CreateBookingRequest
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error) {
			gotUser, gotReq = userID, req
			return &model.Booking{ID: "65f000000000000000000001", UserID: userID, Status: model.BookingStatusPending}, nil
		},
	}

	rec := doRequest(t, newTestServer(svc), http.MethodPost, "/api/v1/bookings",
		`{"service_name":"grooming","date":"2025-03-10","time_slot":"09:00 - 09:30","notes":"hi"}`,
		map[string]string{middleware.UserIDHeader: "user-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", gotUser)
	require.NotNil(t, gotReq)
	assert.Equal(t, "grooming", gotReq.ServiceName)
	assert.Equal(t, "09:00 - 09:30", gotReq.TimeSlot)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "65f000000000000000000001", resp.Data.ID)
	assert.Equal(t, model.BookingStatusPending, resp.Data.Status)
}

func TestCreate_RequiresIdentity(t *testing.T) {
	rec := doRequest(t, newTestServer(&mockBookingService{}), http.MethodPost, "/api/v1/bookings", `{}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, rec).Code)
}

func TestCreate_InvalidBody(t *testing.T) {
	rec := doRequest(t, newTestServer(&mockBookingService{}), http.MethodPost, "/api/v1/bookings", `{not json`,
		map[string]string{middleware.UserIDHeader: "user-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestCreate_ConflictsRenderAsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "duplicate", err: apperrors.DuplicateBooking(map[string]any{"time_slot": "09:00 - 09:30"}), code: apperrors.CodeDuplicateBooking},
		{name: "full", err: apperrors.SlotFull(map[string]any{"capacity": 3}), code: apperrors.CodeSlotFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFunc: func(ctx context.Context, userID string, req *model.CreateBookingRequest) (*model.Booking, error) {
					return nil, tt.err
				},
			}
			rec := doRequest(t, newTestServer(svc), http.MethodPost, "/api/v1/bookings",
				`{"service_name":"grooming","date":"2025-03-10","time_slot":"09:00 - 09:30"}`,
				map[string]string{middleware.UserIDHeader: "user-1"})

			assert.Equal(t, http.StatusConflict, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestGetAvailableSlots_IsPublic(t *testing.T) {
	var gotService, gotDate string
	svc := &mockBookingService{
		slotsFunc: func(ctx context.Context, serviceName, date string) (*model.DayAvailability, error) {
			gotService, gotDate = serviceName, date
			return &model.DayAvailability{ServiceName: serviceName, Date: date, TotalSlots: 14, TotalAvailable: 14}, nil
		},
	}

	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/bookings/slots?service_name=grooming&date=2025-03-10", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grooming", gotService)
	assert.Equal(t, "2025-03-10", gotDate)
}

func TestGetCatalog_IsPublic(t *testing.T) {
	rec := doRequest(t, newTestServer(&mockBookingService{}), http.MethodGet, CatalogPath, "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data model.Catalog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Slots, 14)
	assert.Equal(t, 3, resp.Data.Capacity)
}

func TestGetMine_QueryParameters(t *testing.T) {
	var gotStatus string
	var gotPage, gotLimit int
	svc := &mockBookingService{
		getUserBookingsFunc: func(ctx context.Context, userID, status string, page, limit int) (*model.BookingPage, error) {
			gotStatus, gotPage, gotLimit = status, page, limit
			return &model.BookingPage{
				Bookings:   []*model.Booking{{ID: "a", Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}},
				Total:      21,
				Page:       page,
				Limit:      limit,
				TotalPages: model.TotalPages(21, limit),
			}, nil
		},
	}
	server := newTestServer(svc)
	headers := map[string]string{middleware.UserIDHeader: "user-1"}

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantPage   int
		wantLimit  int
		wantStatus string
	}{
		{name: "defaults", query: "", wantCode: http.StatusOK, wantPage: 1, wantLimit: 10},
		{name: "explicit", query: "?page=3&limit=5&status=pending", wantCode: http.StatusOK, wantPage: 3, wantLimit: 5, wantStatus: "pending"},
		{name: "limit clamped", query: "?limit=500", wantCode: http.StatusOK, wantPage: 1, wantLimit: 100},
		{name: "page zero", query: "?page=0", wantCode: http.StatusBadRequest},
		{name: "non numeric limit", query: "?limit=ten", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStatus, gotPage, gotLimit = "", 0, 0
			rec := doRequest(t, server, http.MethodGet, "/api/v1/bookings/me"+tt.query, "", headers)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantPage, gotPage)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantStatus, gotStatus)

			var resp httputil.PageResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, int64(21), resp.Total)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, model.TotalPages(21, tt.wantLimit), resp.TotalPages)
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	rec := doRequest(t, newTestServer(&mockBookingService{}), http.MethodGet, "/api/v1/bookings/id/65f000000000000000000001", "",
		map[string]string{middleware.UserIDHeader: "user-1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, rec).Code)
}

func TestCancel_UsesCaller(t *testing.T) {
	var gotUser, gotID string
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, userID, id string) (*model.Booking, error) {
			gotUser, gotID = userID, id
			return &model.Booking{ID: id, Status: model.BookingStatusCancelled}, nil
		},
	}

	rec := doRequest(t, newTestServer(svc), http.MethodPatch, "/api/v1/bookings/id/abc/cancel", "",
		map[string]string{middleware.UserIDHeader: "user-7"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", gotUser)
	assert.Equal(t, "abc", gotID)
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	server := newTestServer(&mockBookingService{})
	body := `{"status":"confirmed"}`

	rec := doRequest(t, server, http.MethodPatch, "/api/v1/admin/bookings/id/abc/status", body,
		map[string]string{middleware.UserIDHeader: "user-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, server, http.MethodPatch, "/api/v1/admin/bookings/id/abc/status", body,
		map[string]string{middleware.UserIDHeader: "staff-1", middleware.UserRoleHeader: "admin"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	svc := &mockBookingService{
		updateStatusFunc: func(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
			return nil, apperrors.IllegalTransition("cancelled", string(update.Status))
		},
	}

	rec := doRequest(t, newTestServer(svc), http.MethodPatch, "/api/v1/admin/bookings/id/abc/status", `{"status":"confirmed"}`,
		map[string]string{middleware.UserIDHeader: "staff-1", middleware.UserRoleHeader: "admin"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeIllegalTransition, resp.Code)
	assert.Equal(t, "cancelled", resp.Details["from"])
}
