// Package gateway is the client for the remote event-management service,
// the system of record for tickets and check-in state.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/checkin-console/internal/dto"
)

// ErrUnauthorized means the bearer credential was rejected. Every call site
// applies the same policy: clear the cached token and send the operator back
// to sign-in.
var ErrUnauthorized = errors.New("credential rejected by the event service")

// RemoteError is a non-auth upstream rejection carrying the server-supplied
// message when one was present.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("event service returned status %d", e.StatusCode)
}

// NetworkError wraps a transport-level failure (no usable response).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "event service unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type EventGateway interface {
	// ListGuestTickets returns every ticket/RSVP row for the event.
	ListGuestTickets(ctx context.Context, eventID string) ([]dto.TicketRow, error)
	// SubmitCheckIn marks a guest present, addressed by ticket or by
	// account + event. An already-checked-in conflict that carries a guest
	// payload is returned as success.
	SubmitCheckIn(ctx context.Context, req dto.CheckInRequest) (*dto.CheckInResponse, error)
	// SubmitUndoCheckIn reverts a check-in; only ticket-backed guests can
	// be addressed.
	SubmitUndoCheckIn(ctx context.Context, eventID, ticketID string) (*dto.CheckInResponse, error)
}
