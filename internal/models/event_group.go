package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventGroup struct {
	bun.BaseModel `bun:"table:event_groups"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	StartDate   time.Time `bun:"start_date,nullzero" json:"start_date,omitempty"`
	EndDate     time.Time `bun:"end_date,nullzero" json:"end_date,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
