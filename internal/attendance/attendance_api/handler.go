package attendance_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-attendance/internal/attendance"
	"ms-attendance/internal/attendance/export"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	AttendanceService *attendance.AttendanceService
	Logger            *logger.Logger
}

func NewHandler(attendanceService *attendance.AttendanceService, log *logger.Logger) *Handler {
	return &Handler{AttendanceService: attendanceService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/", h.Confirm)
		r.Get("/event/{eventId}", h.ListByEvent)
		r.Get("/event/{eventId}/export/csv", h.ExportEventCSV)
		r.Get("/event/{eventId}/export/xlsx", h.ExportEventXLSX)
		r.Get("/group/{groupId}/export/csv", h.ExportGroupCSV)
		r.Get("/group/{groupId}/export/xlsx", h.ExportGroupXLSX)
	})
}

// Confirm records one attendance for a submitted access code, from the
// form or a decoded QR scan.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.AttendanceService.Confirm(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNameRequired), errors.Is(err, attendance.ErrCodeRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, attendance.ErrEventNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, attendance.ErrEventNotOpen):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.Logger.Error("API", fmt.Sprintf("Confirm: %v", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Confirm: recorded attendance %s for event %s", resp.Attendance.ID, resp.Attendance.EventID))
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	records, err := h.AttendanceService.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.respondListError(w, "ListByEvent", err)
		return
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) ExportEventCSV(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	records, err := h.AttendanceService.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.respondListError(w, "ExportEventCSV", err)
		return
	}
	h.sendCSV(w, "event-"+eventID, records)
}

func (h *Handler) ExportEventXLSX(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	records, err := h.AttendanceService.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.respondListError(w, "ExportEventXLSX", err)
		return
	}
	h.sendXLSX(w, "event-"+eventID, records)
}

func (h *Handler) ExportGroupCSV(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	records, err := h.AttendanceService.ListByGroup(r.Context(), groupID)
	if err != nil {
		h.respondListError(w, "ExportGroupCSV", err)
		return
	}
	h.sendCSV(w, "group-"+groupID, records)
}

func (h *Handler) ExportGroupXLSX(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	records, err := h.AttendanceService.ListByGroup(r.Context(), groupID)
	if err != nil {
		h.respondListError(w, "ExportGroupXLSX", err)
		return
	}
	h.sendXLSX(w, "group-"+groupID, records)
}

func (h *Handler) sendCSV(w http.ResponseWriter, name string, records []models.AttendanceRecord) {
	filename := fmt.Sprintf("attendance-%s-%s.csv", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, records); err != nil {
		h.Logger.Error("EXPORT", fmt.Sprintf("CSV export %s: %v", name, err))
	}
}

func (h *Handler) sendXLSX(w http.ResponseWriter, name string, records []models.AttendanceRecord) {
	filename := fmt.Sprintf("attendance-%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteXLSX(w, records); err != nil {
		h.Logger.Error("EXPORT", fmt.Sprintf("XLSX export %s: %v", name, err))
	}
}

func (h *Handler) respondListError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, attendance.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, attendance.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group not found")
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
