package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant rows are deduplicated by exact email when one is supplied
// at confirmation time; anonymous confirmations always create a new row.
type Participant struct {
	bun.BaseModel `bun:"table:participants"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,nullzero" json:"email,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
