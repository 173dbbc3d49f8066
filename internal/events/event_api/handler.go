package event_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-attendance/internal/events"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
	QRPNGSize    int
}

func NewHandler(eventService *events.EventService, log *logger.Logger, qrPNGSize int) *Handler {
	return &Handler{EventService: eventService, Logger: log, QRPNGSize: qrPNGSize}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/group/{groupId}", h.ListEventsByGroup)
		r.Get("/{eventId}", h.GetEvent)
		r.Put("/{eventId}", h.UpdateEvent)
		r.Delete("/{eventId}", h.DeleteEvent)
		r.Post("/{eventId}/force-open", h.ForceOpen)
		r.Post("/{eventId}/force-close", h.ForceClose)
		r.Get("/{eventId}/qr", h.EventQR)
	})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to decode request body: %v", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrTitleRequired), errors.Is(err, events.ErrEndRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created event %s with code %s", event.ID, event.CodeText))
	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ListEventsByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	list, err := h.EventService.ListEventsByGroup(r.Context(), groupID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventsByGroup: %v", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		h.respondEventError(w, "GetEvent", eventID, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		h.respondEventError(w, "UpdateEvent", eventID, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.DeleteEvent(r.Context(), eventID); err != nil {
		h.respondEventError(w, "DeleteEvent", eventID, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: deleted event %s", eventID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) ForceOpen(w http.ResponseWriter, r *http.Request) {
	h.force(w, r, h.EventService.ForceOpen)
}

func (h *Handler) ForceClose(w http.ResponseWriter, r *http.Request) {
	h.force(w, r, h.EventService.ForceClose)
}

func (h *Handler) force(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*models.Event, error)) {
	eventID := chi.URLParam(r, "eventId")

	event, err := fn(r.Context(), eventID)
	if err != nil {
		h.respondEventError(w, "ForceState", eventID, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) EventQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	png, err := h.EventService.QRCodePNG(r.Context(), eventID, h.QRPNGSize)
	if err != nil {
		h.respondEventError(w, "EventQR", eventID, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) respondEventError(w http.ResponseWriter, op, eventID string, err error) {
	if errors.Is(err, events.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	h.Logger.Error("API", fmt.Sprintf("%s: event %s: %v", op, eventID, err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
