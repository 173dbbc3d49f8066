package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event states. Events are created CLOSED and the scheduler flips them
// according to their time window; force-open/close can override until
// the next tick reconciles.
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	GroupID     string    `bun:"group_id,nullzero" json:"group_id,omitempty"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	StartTime   time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime     time.Time `bun:"end_time,notnull" json:"end_time"`
	State       string    `bun:"state,notnull,default:'CLOSED'" json:"state"`
	CodeText    string    `bun:"code_text,unique,notnull" json:"code_text"`
	CodeQRURL   string    `bun:"code_qr_url,nullzero" json:"code_qr_url,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Group *EventGroup `bun:"rel:belongs-to,join:group_id=id" json:"-"`
}

// WindowContains reports whether now falls inside [StartTime, EndTime).
func (e *Event) WindowContains(now time.Time) bool {
	return !e.StartTime.After(now) && now.Before(e.EndTime)
}
