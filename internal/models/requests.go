package models

import "time"

type EventRequest struct {
	GroupID     string    `json:"group_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type GroupRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date,omitempty"`
	EndDate     time.Time `json:"end_date,omitempty"`
}

// ConfirmRequest is the body of POST /api/attendance, whether typed in
// by the participant or decoded from a scanned QR code.
type ConfirmRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code"`
}

type ConfirmResponse struct {
	Message     string       `json:"message"`
	Attendance  *Attendance  `json:"attendance"`
	Participant *Participant `json:"participant"`
}
