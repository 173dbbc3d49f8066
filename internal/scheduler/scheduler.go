package scheduler

import (
	"context"
	"fmt"
	"time"

	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
)

// EventStore is the slice of the event store the job needs: the two
// predicate scans plus the idempotent state write.
type EventStore interface {
	EventsDueToOpen(ctx context.Context, now time.Time) ([]models.Event, error)
	EventsDueToClose(ctx context.Context, now time.Time) ([]models.Event, error)
	UpdateEventState(ctx context.Context, id, state string) error
}

type StatePublisher interface {
	PublishEventOpened(event models.Event, at time.Time) error
	PublishEventClosed(event models.Event, at time.Time) error
}

// Scheduler reconciles each event's state field with its scheduled
// window on a fixed polling cadence. State changes lag wall-clock time
// by up to one interval; an event whose window is already fully in the
// past on its first tick stays CLOSED forever, since the open pass only
// matches windows containing now.
type Scheduler struct {
	Store    EventStore
	Kafka    StatePublisher
	Logger   *logger.Logger
	Interval time.Duration

	now func() time.Time
}

func New(store EventStore, kafka StatePublisher, log *logger.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		Store:    store,
		Kafka:    kafka,
		Logger:   log,
		Interval: interval,
		now:      time.Now,
	}
}

// Start runs the tick loop until ctx is cancelled. The first tick fires
// after one full interval, matching a cron-style schedule.
func (s *Scheduler) Start(ctx context.Context) {
	s.Logger.Info("SCHEDULER", fmt.Sprintf("Event state job started, tick interval %s", s.Interval))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("SCHEDULER", "Event state job stopped")
			return
		case <-ticker.C:
			opened, closed := s.RunTick(ctx, s.now())
			if opened > 0 || closed > 0 {
				s.Logger.Info("SCHEDULER", fmt.Sprintf("Tick complete: opened %d, closed %d", opened, closed))
			}
		}
	}
}

// RunTick executes one reconciliation pass pair. Each transition is an
// independent update: a failing row is logged and skipped so one bad
// row never aborts the tick. A failing predicate scan abandons the
// whole tick; the next scheduled tick retries it. Running a tick any
// number of extra times on an unchanged table is a no-op because both
// passes read the authoritative current state before writing.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) (opened, closed int) {
	toOpen, err := s.Store.EventsDueToOpen(ctx, now)
	if err != nil {
		s.Logger.Error("SCHEDULER", fmt.Sprintf("Open scan failed, abandoning tick: %v", err))
		return 0, 0
	}
	for _, event := range toOpen {
		if err := s.Store.UpdateEventState(ctx, event.ID, models.StateOpen); err != nil {
			s.Logger.Error("SCHEDULER", fmt.Sprintf("Failed to open event %s: %v", event.ID, err))
			continue
		}
		opened++
		s.Logger.LogScheduler("OPEN", event.ID, event.Title)
		if s.Kafka != nil {
			if err := s.Kafka.PublishEventOpened(event, now); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish open of event %s: %v", event.ID, err))
			}
		}
	}

	toClose, err := s.Store.EventsDueToClose(ctx, now)
	if err != nil {
		s.Logger.Error("SCHEDULER", fmt.Sprintf("Close scan failed, abandoning tick: %v", err))
		return opened, closed
	}
	for _, event := range toClose {
		if err := s.Store.UpdateEventState(ctx, event.ID, models.StateClosed); err != nil {
			s.Logger.Error("SCHEDULER", fmt.Sprintf("Failed to close event %s: %v", event.ID, err))
			continue
		}
		closed++
		s.Logger.LogScheduler("CLOSE", event.ID, event.Title)
		if s.Kafka != nil {
			if err := s.Kafka.PublishEventClosed(event, now); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish close of event %s: %v", event.ID, err))
			}
		}
	}

	return opened, closed
}
