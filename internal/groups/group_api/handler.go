package group_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-attendance/internal/groups"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	GroupService *groups.GroupService
	Logger       *logger.Logger
}

func NewHandler(groupService *groups.GroupService, log *logger.Logger) *Handler {
	return &Handler{GroupService: groupService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/event-groups", func(r chi.Router) {
		r.Post("/", h.CreateGroup)
		r.Get("/", h.ListGroups)
		r.Get("/{groupId}", h.GetGroup)
		r.Put("/{groupId}", h.UpdateGroup)
		r.Delete("/{groupId}", h.DeleteGroup)
	})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.GroupService.CreateGroup(r.Context(), req)
	if err != nil {
		if errors.Is(err, groups.ErrNameRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateGroup: %v", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.GroupService.ListGroups(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListGroups: %v", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if list == nil {
		list = []models.EventGroup{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	group, err := h.GroupService.GetGroup(r.Context(), groupID)
	if err != nil {
		h.respondGroupError(w, "GetGroup", groupID, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	var req models.GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.GroupService.UpdateGroup(r.Context(), groupID, req)
	if err != nil {
		h.respondGroupError(w, "UpdateGroup", groupID, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	if err := h.GroupService.DeleteGroup(r.Context(), groupID); err != nil {
		h.respondGroupError(w, "DeleteGroup", groupID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) respondGroupError(w http.ResponseWriter, op, groupID string, err error) {
	if errors.Is(err, groups.ErrNotFound) {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	h.Logger.Error("API", fmt.Sprintf("%s: group %s: %v", op, groupID, err))
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
