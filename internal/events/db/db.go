package db

import (
	"context"
	"time"

	"ms-attendance/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB

	// Timeout bounds every storage call so a wedged connection cannot
	// stall a request or a scheduler tick. Zero means no bound.
	Timeout time.Duration
}

func (d *DB) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d.Timeout)
}

// ---------------- EVENTS ----------------

// CreateEvent → insert new event
func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

// GetEventByID → fetch one event by its ID
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventByCode → fetch one event by its access code
func (d *DB) GetEventByCode(ctx context.Context, code string) (*models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("code_text = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents → all events ordered by start time
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByGroup → all events belonging to a group
func (d *DB) ListEventsByGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("group_id = ?", groupID).
		Order("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent → update organizer-editable fields
func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("group_id", "title", "description", "start_time", "end_time").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// DeleteEvent → delete an event by ID
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- STATE ----------------

// UpdateEventState sets the state field only. Setting a state the row
// already has is a no-op, which keeps concurrent schedulers benign.
func (d *DB) UpdateEventState(ctx context.Context, id, state string) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("state = ?", state).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// EventsDueToOpen → CLOSED events whose window contains now
func (d *DB) EventsDueToOpen(ctx context.Context, now time.Time) ([]models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("state = ?", models.StateClosed).
		Where("start_time <= ?", now).
		Where("end_time > ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// EventsDueToClose → OPEN events whose window has ended
func (d *DB) EventsDueToClose(ctx context.Context, now time.Time) ([]models.Event, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("state = ?", models.StateOpen).
		Where("end_time <= ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}
