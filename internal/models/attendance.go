package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance carries no uniqueness over (participant, event): the same
// participant may confirm the same event more than once.
type Attendance struct {
	bun.BaseModel `bun:"table:attendances"`

	ID            string    `bun:"id,pk" json:"id"`
	ParticipantID string    `bun:"participant_id,notnull" json:"participant_id"`
	EventID       string    `bun:"event_id,notnull" json:"event_id"`
	ConfirmedAt   time.Time `bun:"confirmed_at,notnull,default:current_timestamp" json:"confirmed_at"`

	Participant *Participant `bun:"rel:belongs-to,join:participant_id=id" json:"-"`
	Event       *Event       `bun:"rel:belongs-to,join:event_id=id" json:"-"`
}

// AttendanceRecord is the flat joined row returned by listings and fed
// to the export writers.
type AttendanceRecord struct {
	AttendanceID     string    `bun:"attendance_id" json:"attendance_id"`
	ParticipantName  string    `bun:"participant_name" json:"participant_name"`
	ParticipantEmail string    `bun:"participant_email" json:"participant_email,omitempty"`
	EventID          string    `bun:"event_id" json:"event_id"`
	EventTitle       string    `bun:"event_title" json:"event_title"`
	EventCode        string    `bun:"event_code" json:"event_code"`
	ConfirmedAt      time.Time `bun:"confirmed_at" json:"confirmed_at"`
}
