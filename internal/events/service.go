package events

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
	"ms-attendance/internal/qr"

	"github.com/google/uuid"
)

const (
	codeLength      = 6
	maxCodeAttempts = 5
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrTitleRequired = errors.New("title is required")
	ErrEndRequired   = errors.New("end time is required")
	ErrCodeExhausted = errors.New("could not generate a unique access code")
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventByCode(ctx context.Context, code string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByGroup(ctx context.Context, groupID string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	UpdateEventState(ctx context.Context, id, state string) error
}

type StatePublisher interface {
	PublishEventOpened(event models.Event, at time.Time) error
	PublishEventClosed(event models.Event, at time.Time) error
}

type EventService struct {
	DB       DBLayer
	Kafka    StatePublisher
	Logger   *logger.Logger
	QRAPIURL string
}

func NewEventService(db DBLayer, kafka StatePublisher, log *logger.Logger, qrAPIURL string) *EventService {
	return &EventService{DB: db, Kafka: kafka, Logger: log, QRAPIURL: qrAPIURL}
}

// CreateEvent validates the request, generates a unique access code and
// stores the event CLOSED. A code collision on the unique constraint is
// retried with a fresh code.
func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if req.EndTime.IsZero() {
		return nil, ErrEndRequired
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate access code: %w", err)
		}

		event := models.Event{
			ID:          uuid.NewString(),
			GroupID:     req.GroupID,
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			State:       models.StateClosed,
			CodeText:    code,
			CodeQRURL:   qr.ExternalURL(s.QRAPIURL, code),
			CreatedAt:   time.Now(),
		}

		if err := s.DB.CreateEvent(ctx, event); err != nil {
			if isUniqueViolation(err) {
				s.Logger.Warn("EVENTS", fmt.Sprintf("Access code collision on %s, retrying (%d/%d)", code, attempt+1, maxCodeAttempts))
				continue
			}
			return nil, err
		}
		return &event, nil
	}

	return nil, ErrCodeExhausted
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

func (s *EventService) ListEventsByGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	return s.DB.ListEventsByGroup(ctx, groupID)
}

// UpdateEvent replaces the organizer-editable fields. The access code,
// QR reference and state are never touched here.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req models.EventRequest) (*models.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) != "" {
		event.Title = req.Title
	}
	event.Description = req.Description
	event.GroupID = req.GroupID
	if !req.StartTime.IsZero() {
		event.StartTime = req.StartTime
	}
	if !req.EndTime.IsZero() {
		event.EndTime = req.EndTime
	}

	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteEvent(ctx, id)
}

// ForceOpen overrides the state outside the time-window predicate. The
// override holds for at most one scheduler interval: the next tick
// reconciles the state back whenever the window disagrees.
func (s *EventService) ForceOpen(ctx context.Context, id string) (*models.Event, error) {
	return s.forceState(ctx, id, models.StateOpen)
}

func (s *EventService) ForceClose(ctx context.Context, id string) (*models.Event, error) {
	return s.forceState(ctx, id, models.StateClosed)
}

func (s *EventService) forceState(ctx context.Context, id, state string) (*models.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.UpdateEventState(ctx, id, state); err != nil {
		return nil, fmt.Errorf("failed to force state of event %s: %w", id, err)
	}
	event.State = state

	now := time.Now()
	if !event.WindowContains(now) && state == models.StateOpen || event.WindowContains(now) && state == models.StateClosed {
		s.Logger.Warn("EVENTS", fmt.Sprintf("Forced state %s on event %s disagrees with its window, next tick will reconcile it", state, id))
	}

	var pubErr error
	if state == models.StateOpen {
		pubErr = s.Kafka.PublishEventOpened(*event, now)
	} else {
		pubErr = s.Kafka.PublishEventClosed(*event, now)
	}
	if pubErr != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish forced state change for event %s: %v", id, pubErr))
	}

	return event, nil
}

// QRCodePNG renders the event's access code as a PNG.
func (s *EventService) QRCodePNG(ctx context.Context, id string, size int) ([]byte, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return qr.EncodePNG(event.CodeText, size)
}

// randomCode derives a fixed-length uppercase code from random bytes.
func randomCode(length int) (string, error) {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)[:length]), nil
}

// isUniqueViolation matches the unique-constraint wording of both
// postgres (lib/pq) and sqlite (test driver).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
