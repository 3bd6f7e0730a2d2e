package dto

import (
	"time"

	"github.com/attendly/checkin-console/internal/models"
)

type GuestResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Status      models.GuestStatus `json:"status"`
	IsCheckedIn bool               `json:"is_checked_in"`
	TicketID    *string            `json:"ticket_id,omitempty"`
	UserID      *string            `json:"user_id,omitempty"`
	CheckedInAt *time.Time         `json:"checked_in_at,omitempty"`
	Avatar      *string            `json:"avatar,omitempty"`
	CanCheckIn  bool               `json:"can_check_in"`
}

type RosterResponse struct {
	Guests []GuestResponse `json:"guests"`
	Count  int             `json:"count"`
	Error  string          `json:"error,omitempty"`
}

type AddGuestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ScanRequest struct {
	Code string `json:"code"`
}

type ScanErrorRequest struct {
	Message string `json:"message"`
}

type ScanStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type MutationsResponse struct {
	Mutations map[string]bool `json:"mutations"`
}

type ErrorResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// CheckInActivity is published to the broker after a confirmed check-in
// state change so other dashboards can update live.
type CheckInActivity struct {
	EventID   string     `json:"eventId"`
	GuestID   string     `json:"guestId"`
	TicketID  *string    `json:"ticketId,omitempty"`
	CheckedIn bool       `json:"checkedIn"`
	At        *time.Time `json:"at,omitempty"`
}

func ToGuestResponse(g *models.GuestRecord) GuestResponse {
	return GuestResponse{
		ID:          g.ID,
		Name:        g.Name,
		Email:       g.Email,
		Status:      g.Status,
		IsCheckedIn: g.IsCheckedIn,
		TicketID:    g.TicketID,
		UserID:      g.UserID,
		CheckedInAt: g.CheckedInAt,
		Avatar:      g.Avatar,
		CanCheckIn:  g.CheckInCapable(),
	}
}
