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

// CreateGroup → insert new event group
func (d *DB) CreateGroup(ctx context.Context, group models.EventGroup) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()
	_, err := d.Bun.NewInsert().Model(&group).Exec(ctx)
	return err
}

// GetGroupByID → fetch one group by its ID
func (d *DB) GetGroupByID(ctx context.Context, id string) (*models.EventGroup, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var group models.EventGroup
	err := d.Bun.NewSelect().
		Model(&group).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups → all groups ordered by start date
func (d *DB) ListGroups(ctx context.Context) ([]models.EventGroup, error) {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	var groups []models.EventGroup
	err := d.Bun.NewSelect().
		Model(&groups).
		Order("start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateGroup → update editable fields
func (d *DB) UpdateGroup(ctx context.Context, group models.EventGroup) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	_, err := d.Bun.NewUpdate().
		Model(&group).
		Column("name", "description", "start_date", "end_date").
		Where("id = ?", group.ID).
		Exec(ctx)
	return err
}

// DeleteGroup → delete a group by ID. Events keep their group_id; the
// schema nulls it out so rows never point at a missing group.
func (d *DB) DeleteGroup(ctx context.Context, id string) error {
	ctx, cancel := d.ctx(ctx)
	defer cancel()

	_, err := d.Bun.NewDelete().
		Model((*models.EventGroup)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
