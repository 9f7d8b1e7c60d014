package handler

import (
	"encoding/json"
	"net/http"

	"pawcare/internal/pets/service"
	apperrors "pawcare/pkg/errors"
	httputil "pawcare/pkg/http"
	"pawcare/pkg/logger"
	"pawcare/pkg/middleware"
	"pawcare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PetHandler struct {
	service service.PetService
	log     *logger.Logger
}

func NewPetHandler(service service.PetService, log *logger.Logger) *PetHandler {
	return &PetHandler{
		service: service,
		log:     log,
	}
}

func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pet model.Pet
	if err := json.NewDecoder(r.Body).Decode(&pet); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), middleware.UserIDFrom(r.Context()), &pet); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, pet); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PetHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	pets, total, err := h.service.List(r.Context(), middleware.UserIDFrom(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, pets, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *PetHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	pet, err := h.service.GetByID(r.Context(), middleware.UserIDFrom(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, pet); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PetUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	pet, err := h.service.Update(r.Context(), middleware.UserIDFrom(r.Context()), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, pet); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), middleware.UserIDFrom(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PetHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PetHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/pets", h.Create)
	router.GET("/api/v1/pets", h.List)
	router.GET("/api/v1/pets/id/:id", h.GetByID)
	router.PATCH("/api/v1/pets/id/:id", h.Update)
	router.DELETE("/api/v1/pets/id/:id", h.Delete)
}
