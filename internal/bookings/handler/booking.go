package handler

import (
	"encoding/json"
	"net/http"

	"pawcare/internal/bookings/service"
	apperrors "pawcare/pkg/errors"
	httputil "pawcare/pkg/http"
	"pawcare/pkg/logger"
	"pawcare/pkg/middleware"
	"pawcare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	CatalogPath = "/api/v1/bookings/catalog"
	SlotsPath   = "/api/v1/bookings/slots"
)

// PublicPaths are readable without a user identity.
var PublicPaths = []string{CatalogPath, SlotsPath}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) GetCatalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.GetCatalog()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCatalog", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	day, err := h.service.GetAvailableSlots(r.Context(), query.Get("service_name"), query.Get("date"))
	if err != nil {
		h.writeError(w, "GetAvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, day); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), middleware.UserIDFrom(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	result, err := h.service.GetUserBookings(r.Context(), middleware.UserIDFrom(r.Context()), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WritePage(w, result.Bookings, result.Total, result.Page, result.Limit, result.TotalPages); err != nil {
		h.log.Error("failed to write page response", "handler", "GetMine", "operation", "WritePage", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), middleware.UserIDFrom(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Cancel(r.Context(), middleware.UserIDFrom(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(CatalogPath, h.GetCatalog)
	router.GET(SlotsPath, h.GetAvailableSlots)
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/me", h.GetMine)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/admin/bookings/id/:id/status", middleware.RequireRole(middleware.RoleAdmin, h.UpdateStatus))
}
