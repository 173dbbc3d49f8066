package db

import (
	"context"
	"time"

	"ms-attendance/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun     *bun.DB
	Timeout time.Duration
}

func (d *DB) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d.Timeout)
}

// ---------------- PARTICIPANTS ----------------

// CreateParticipant → insert new participant
func (d *DB) CreateParticipant(ctx context.Context, participant models.Participant) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()
	_, err := d.Bun.NewInsert().Model(&participant).Exec(ctx)
	return err
}

// GetParticipantByEmail → fetch one participant by exact email
func (d *DB) GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var participant models.Participant
	err := d.Bun.NewSelect().
		Model(&participant).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// ---------------- ATTENDANCE ----------------

// CreateAttendance → insert new attendance row. No duplicate check over
// (participant, event); repeated confirmations insert repeated rows.
func (d *DB) CreateAttendance(ctx context.Context, attendance models.Attendance) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()
	_, err := d.Bun.NewInsert().Model(&attendance).Exec(ctx)
	return err
}

// ListByEvent → joined attendance rows for one event
func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.AttendanceRecord, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var records []models.AttendanceRecord
	err := d.Bun.NewSelect().
		ColumnExpr("a.id AS attendance_id").
		ColumnExpr("p.name AS participant_name").
		ColumnExpr("p.email AS participant_email").
		ColumnExpr("e.id AS event_id").
		ColumnExpr("e.title AS event_title").
		ColumnExpr("e.code_text AS event_code").
		ColumnExpr("a.confirmed_at AS confirmed_at").
		TableExpr("attendances AS a").
		Join("JOIN participants AS p ON p.id = a.participant_id").
		Join("JOIN events AS e ON e.id = a.event_id").
		Where("a.event_id = ?", eventID).
		OrderExpr("a.confirmed_at ASC").
		Scan(ctx, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByGroup → joined attendance rows across every event of a group
func (d *DB) ListByGroup(ctx context.Context, groupID string) ([]models.AttendanceRecord, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var records []models.AttendanceRecord
	err := d.Bun.NewSelect().
		ColumnExpr("a.id AS attendance_id").
		ColumnExpr("p.name AS participant_name").
		ColumnExpr("p.email AS participant_email").
		ColumnExpr("e.id AS event_id").
		ColumnExpr("e.title AS event_title").
		ColumnExpr("e.code_text AS event_code").
		ColumnExpr("a.confirmed_at AS confirmed_at").
		TableExpr("attendances AS a").
		Join("JOIN participants AS p ON p.id = a.participant_id").
		Join("JOIN events AS e ON e.id = a.event_id").
		Where("e.group_id = ?", groupID).
		OrderExpr("e.start_time ASC, a.confirmed_at ASC").
		Scan(ctx, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}
