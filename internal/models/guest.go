package models

import "time"

type GuestStatus string

const (
	StatusPending   GuestStatus = "pending"
	StatusConfirmed GuestStatus = "confirmed"
	StatusCheckedIn GuestStatus = "checked-in"
)

// GuestRecord is one attendee on a single event's roster. IsCheckedIn is the
// authoritative check-in flag; Status is the display label derived from it.
type GuestRecord struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Status      GuestStatus `json:"status"`
	IsCheckedIn bool        `json:"is_checked_in"`
	TicketID    *string     `json:"ticket_id,omitempty"`
	UserID      *string     `json:"user_id,omitempty"`
	CheckedInAt *time.Time  `json:"checked_in_at,omitempty"`
	Avatar      *string     `json:"avatar,omitempty"`
}

// CheckInCapable reports whether the guest can be checked in at all: the
// remote service is addressed by ticket or by registered account, and a
// manually added guest has neither.
func (g *GuestRecord) CheckInCapable() bool {
	return g.TicketID != nil || g.UserID != nil
}
