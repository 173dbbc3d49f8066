package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrCodeRequired  = errors.New("missing event code")
	ErrEventNotFound = errors.New("event not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrEventNotOpen  = errors.New("event is not open for attendance")
)

type DBLayer interface {
	CreateParticipant(ctx context.Context, participant models.Participant) error
	GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error)
	CreateAttendance(ctx context.Context, attendance models.Attendance) error
	ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceRecord, error)
}

type EventLookup interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventByCode(ctx context.Context, code string) (*models.Event, error)
}

type GroupLookup interface {
	GetGroupByID(ctx context.Context, id string) (*models.EventGroup, error)
}

type CodeCache interface {
	GetEventID(ctx context.Context, code string) (string, error)
	SetEventID(ctx context.Context, code, eventID string) error
}

type Publisher interface {
	PublishAttendanceRecorded(att models.Attendance) error
}

type AttendanceService struct {
	DB     DBLayer
	Events EventLookup
	Groups GroupLookup
	Cache  CodeCache
	Kafka  Publisher
	Logger *logger.Logger
}

func NewAttendanceService(db DBLayer, events EventLookup, groups GroupLookup, cache CodeCache, kafka Publisher, log *logger.Logger) *AttendanceService {
	return &AttendanceService{DB: db, Events: events, Groups: groups, Cache: cache, Kafka: kafka, Logger: log}
}

// Confirm validates a submitted access code against an OPEN event and
// records one attendance row. The event-state read and the attendance
// insert are deliberately not one transaction; a confirmation racing
// the scheduler across a state flip is accepted as best effort.
func (s *AttendanceService) Confirm(ctx context.Context, req models.ConfirmRequest) (*models.ConfirmResponse, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, ErrCodeRequired
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	event, err := s.resolveEvent(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if event.State != models.StateOpen {
		return nil, ErrEventNotOpen
	}

	participant, err := s.findOrCreateParticipant(ctx, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	att := models.Attendance{
		ID:            uuid.NewString(),
		ParticipantID: participant.ID,
		EventID:       event.ID,
		ConfirmedAt:   time.Now(),
	}
	if err := s.DB.CreateAttendance(ctx, att); err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishAttendanceRecorded(att); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish attendance %s: %v", att.ID, err))
		}
	}

	return &models.ConfirmResponse{
		Message:     "Attendance recorded",
		Attendance:  &att,
		Participant: participant,
	}, nil
}

// resolveEvent maps an access code to its event, through the redis
// cache when possible. Cache failures degrade to the code query.
func (s *AttendanceService) resolveEvent(ctx context.Context, code string) (*models.Event, error) {
	if s.Cache != nil {
		eventID, err := s.Cache.GetEventID(ctx, code)
		if err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Code cache lookup failed: %v", err))
		} else if eventID != "" {
			event, err := s.Events.GetEventByID(ctx, eventID)
			if err == nil {
				return event, nil
			}
			// stale entry, fall through to the code query
		}
	}

	event, err := s.Events.GetEventByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetEventID(ctx, code, event.ID); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Code cache store failed: %v", err))
		}
	}
	return event, nil
}

// findOrCreateParticipant reuses an existing participant keyed on exact
// email equality when an email is supplied. Anonymous confirmations
// always create a fresh row, so name-only identities fragment.
func (s *AttendanceService) findOrCreateParticipant(ctx context.Context, name, email string) (*models.Participant, error) {
	if email != "" {
		existing, err := s.DB.GetParticipantByEmail(ctx, email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up participant: %w", err)
		}
	}

	participant := models.Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateParticipant(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return &participant, nil
}

func (s *AttendanceService) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	if _, err := s.Events.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return s.DB.ListByEvent(ctx, eventID)
}

func (s *AttendanceService) ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceRecord, error) {
	if _, err := s.Groups.GetGroupByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.DB.ListByGroup(ctx, groupID)
}
