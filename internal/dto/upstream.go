package dto

import "time"

// Raw payload shapes of the remote event-management service. The service
// speaks camelCase JSON and is inconsistent about how "checked in" is
// expressed (status string, boolean flag, or both); normalization into one
// canonical shape happens in internal/normalize.

type TicketUser struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// TicketRow is one guest ticket/RSVP row. The same shape appears in list
// responses, scan results and check-in responses.
type TicketRow struct {
	ID          string      `json:"id,omitempty"`
	Status      string      `json:"status,omitempty"`
	IsCheckedIn *bool       `json:"isCheckedIn,omitempty"`
	CheckedInAt *time.Time  `json:"checkedInAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
	User        *TicketUser `json:"user,omitempty"`
}

type TicketListResponse struct {
	Tickets []TicketRow `json:"tickets"`
	Count   int         `json:"count"`
}

// CheckInRequest addresses a check-in either by ticket or, for guests whose
// ticket does not exist yet, by account + event.
type CheckInRequest struct {
	TicketID string `json:"ticketId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	EventID  string `json:"eventId,omitempty"`
}

type UndoCheckInRequest struct {
	CheckedIn bool `json:"checkedIn"`
}

// CheckInResponse may omit Guest entirely; callers fall back to a full
// roster refresh in that case.
type CheckInResponse struct {
	Message string     `json:"message,omitempty"`
	Guest   *TicketRow `json:"guest,omitempty"`
}

type UpstreamError struct {
	Message string `json:"message"`
}

// TicketActivity is the broker-side shape of upstream ticket events
// (purchases, transfers, refunds) consumed to keep the roster fresh.
type TicketActivity struct {
	TicketID string `json:"ticketId"`
	EventID  string `json:"eventId"`
	Action   string `json:"action"`
}
