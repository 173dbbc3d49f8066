package attendance_api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ms-attendance/internal/attendance"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	participants map[string]*models.Participant
	byEmail      map[string]string
	attendances  []models.Attendance
	events       map[string]*models.Event
	codes        map[string]string
	groups       map[string]*models.EventGroup
}

func newStubStore() *stubStore {
	return &stubStore{
		participants: make(map[string]*models.Participant),
		byEmail:      make(map[string]string),
		events:       make(map[string]*models.Event),
		codes:        make(map[string]string),
		groups:       make(map[string]*models.EventGroup),
	}
}

func (s *stubStore) addEvent(event models.Event) {
	e := event
	s.events[e.ID] = &e
	s.codes[e.CodeText] = e.ID
}

func (s *stubStore) CreateParticipant(ctx context.Context, participant models.Participant) error {
	p := participant
	s.participants[p.ID] = &p
	if p.Email != "" {
		s.byEmail[p.Email] = p.ID
	}
	return nil
}

func (s *stubStore) GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s.participants[id], nil
}

func (s *stubStore) CreateAttendance(ctx context.Context, attendance models.Attendance) error {
	s.attendances = append(s.attendances, attendance)
	return nil
}

func (s *stubStore) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, a := range s.attendances {
		if a.EventID == eventID {
			out = append(out, models.AttendanceRecord{
				AttendanceID:    a.ID,
				ParticipantName: s.participants[a.ParticipantID].Name,
				EventID:         a.EventID,
				EventTitle:      s.events[a.EventID].Title,
				EventCode:       s.events[a.EventID].CodeText,
				ConfirmedAt:     a.ConfirmedAt,
			})
		}
	}
	return out, nil
}

func (s *stubStore) ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, a := range s.attendances {
		event := s.events[a.EventID]
		if event != nil && event.GroupID == groupID {
			out = append(out, models.AttendanceRecord{
				AttendanceID:    a.ID,
				ParticipantName: s.participants[a.ParticipantID].Name,
				EventID:         a.EventID,
				EventTitle:      event.Title,
				EventCode:       event.CodeText,
				ConfirmedAt:     a.ConfirmedAt,
			})
		}
	}
	return out, nil
}

func (s *stubStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (s *stubStore) GetEventByCode(ctx context.Context, code string) (*models.Event, error) {
	id, ok := s.codes[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s.events[id], nil
}

func (s *stubStore) GetGroupByID(ctx context.Context, id string) (*models.EventGroup, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func setupRouter(t *testing.T) (chi.Router, *stubStore) {
	store := newStubStore()
	service := attendance.NewAttendanceService(store, store, store, nil, nil, logger.NewLogger())
	handler := NewHandler(service, logger.NewLogger())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func addOpenEvent(store *stubStore, id, code string) {
	now := time.Now()
	store.addEvent(models.Event{
		ID:        id,
		Title:     "Event " + id,
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(10 * time.Minute),
		State:     models.StateOpen,
		CodeText:  code,
	})
}

func postConfirm(t *testing.T, r chi.Router, req models.ConfirmRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)
	return rec
}

func TestConfirmEndpoint(t *testing.T) {
	r, store := setupRouter(t)
	addOpenEvent(store, "ev-1", "AB12CD")

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Email: "ada@example.com", Code: "AB12CD"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Attendance recorded", resp.Message)
	assert.Equal(t, "ev-1", resp.Attendance.EventID)
	assert.Len(t, store.attendances, 1)
}

func TestConfirmEndpointMissingName(t *testing.T) {
	r, store := setupRouter(t)
	addOpenEvent(store, "ev-1", "AB12CD")

	rec := postConfirm(t, r, models.ConfirmRequest{Code: "AB12CD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmEndpointUnknownCode(t *testing.T) {
	r, _ := setupRouter(t)

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Code: "NOPE42"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmEndpointClosedEvent(t *testing.T) {
	r, store := setupRouter(t)
	addOpenEvent(store, "ev-1", "AB12CD")
	store.events["ev-1"].State = models.StateClosed

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Code: "AB12CD"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "event is not open for attendance", body["error"])
}

func TestListByEventEndpoint(t *testing.T) {
	r, store := setupRouter(t)
	addOpenEvent(store, "ev-1", "AB12CD")

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Code: "AB12CD"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance/event/ev-1", nil)
	list := httptest.NewRecorder()
	r.ServeHTTP(list, req)

	require.Equal(t, http.StatusOK, list.Code)

	var records []models.AttendanceRecord
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].ParticipantName)
}

func TestExportEventCSVEndpoint(t *testing.T) {
	r, store := setupRouter(t)
	addOpenEvent(store, "ev-1", "AB12CD")

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Code: "AB12CD"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance/event/ev-1/export/csv", nil)
	csvRec := httptest.NewRecorder()
	r.ServeHTTP(csvRec, req)

	require.Equal(t, http.StatusOK, csvRec.Code)
	assert.Equal(t, "text/csv", csvRec.Header().Get("Content-Type"))
	assert.Contains(t, csvRec.Header().Get("Content-Disposition"), "attendance-event-ev-1")

	lines := strings.Split(strings.TrimSpace(csvRec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Participant,Email,Event,Code,Confirmed At", lines[0])
	assert.Contains(t, lines[1], "Ada")
	assert.Contains(t, lines[1], "AB12CD")
}

func TestExportGroupXLSXEndpoint(t *testing.T) {
	r, store := setupRouter(t)
	store.groups["grp-1"] = &models.EventGroup{ID: "grp-1", Name: "Spring term"}

	now := time.Now()
	store.addEvent(models.Event{
		ID:        "ev-1",
		GroupID:   "grp-1",
		Title:     "Grouped event",
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(10 * time.Minute),
		State:     models.StateOpen,
		CodeText:  "AB12CD",
	})

	rec := postConfirm(t, r, models.ConfirmRequest{Name: "Ada", Code: "AB12CD"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance/group/grp-1/export/xlsx", nil)
	xlsxRec := httptest.NewRecorder()
	r.ServeHTTP(xlsxRec, req)

	require.Equal(t, http.StatusOK, xlsxRec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsxRec.Header().Get("Content-Type"))
	assert.Contains(t, xlsxRec.Header().Get("Content-Disposition"), "attendance-group-grp-1")
	assert.Greater(t, xlsxRec.Body.Len(), 0)
}

func TestExportUnknownGroup(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/attendance/group/missing/export/csv", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
