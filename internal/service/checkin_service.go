package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/attendly/checkin-console/internal/auth"
	"github.com/attendly/checkin-console/internal/dto"
	"github.com/attendly/checkin-console/internal/gateway"
	"github.com/attendly/checkin-console/internal/models"
	"github.com/attendly/checkin-console/internal/normalize"
	"github.com/attendly/checkin-console/internal/roster"
)

var (
	ErrGuestNotLinked     = errors.New("guest is not linked to a ticket or account")
	ErrUndoRequiresTicket = errors.New("undo check-in requires a ticket-backed guest")
	ErrMutationInFlight   = errors.New("a mutation for this guest is already in flight")
)

const genericMutationError = "could not update check-in status, please try again"

// ActivityPublisher broadcasts confirmed check-in state changes. A nil
// publisher disables broadcasting.
type ActivityPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// CheckInService is the one path that talks to the remote service for
// check-in state changes, so every update reaches the roster through a
// single merge point.
type CheckInService interface {
	Refresh(ctx context.Context) error
	CheckIn(ctx context.Context, guestID string) error
	UndoCheckIn(ctx context.Context, guestID string) error
	CheckInByTicketID(ctx context.Context, ticketID string) error
	AddManual(name, email string) models.GuestRecord
	Guests() []models.GuestRecord
	Mutations() map[string]bool
	GuestError() string
}

type checkInService struct {
	gateway   gateway.EventGateway
	store     *roster.Store
	tokens    *auth.TokenStore
	publisher ActivityPublisher
	eventID   string

	// onUnauthorized fires after the token store is cleared; the caller
	// decides what "redirect to sign-in" means in its surface.
	onUnauthorized func()

	mu       sync.Mutex
	inFlight map[string]bool
	guestErr string
}

func NewCheckInService(gw gateway.EventGateway, store *roster.Store, tokens *auth.TokenStore, publisher ActivityPublisher, eventID string, onUnauthorized func()) CheckInService {
	return &checkInService{
		gateway:        gw,
		store:          store,
		tokens:         tokens,
		publisher:      publisher,
		eventID:        eventID,
		onUnauthorized: onUnauthorized,
		inFlight:       make(map[string]bool),
	}
}

// Refresh replaces the roster wholesale from the remote service, dropping
// rows with no usable identity.
func (s *checkInService) Refresh(ctx context.Context) error {
	rows, err := s.gateway.ListGuestTickets(ctx, s.eventID)
	if err != nil {
		return s.fail(err)
	}

	guests := make([]models.GuestRecord, 0, len(rows))
	for i := range rows {
		if g := normalize.GuestTicket(&rows[i]); g != nil {
			guests = append(guests, *g)
		}
	}
	s.store.Replace(guests)
	s.setGuestError("")
	return nil
}

func (s *checkInService) CheckIn(ctx context.Context, guestID string) error {
	guest, ok := s.store.Find(guestID)
	if !ok {
		// The guest may have been dropped by a concurrent refresh; nothing
		// to do.
		return nil
	}
	if !guest.CheckInCapable() {
		s.setGuestError(ErrGuestNotLinked.Error())
		return ErrGuestNotLinked
	}
	if !s.tryLock(guestID) {
		return ErrMutationInFlight
	}
	defer s.unlock(guestID)

	req := dto.CheckInRequest{}
	if guest.TicketID != nil {
		req.TicketID = *guest.TicketID
	} else {
		req.UserID = *guest.UserID
		req.EventID = s.eventID
	}

	resp, err := s.gateway.SubmitCheckIn(ctx, req)
	if err != nil {
		return s.fail(err)
	}

	merged, err := s.fold(ctx, guestID, resp)
	if err != nil {
		return err
	}
	s.publishActivity(ctx, "guest.checked_in", merged)
	return nil
}

func (s *checkInService) UndoCheckIn(ctx context.Context, guestID string) error {
	guest, ok := s.store.Find(guestID)
	if !ok {
		return nil
	}
	if guest.TicketID == nil {
		s.setGuestError(ErrUndoRequiresTicket.Error())
		return ErrUndoRequiresTicket
	}
	if !s.tryLock(guestID) {
		return ErrMutationInFlight
	}
	defer s.unlock(guestID)

	resp, err := s.gateway.SubmitUndoCheckIn(ctx, s.eventID, *guest.TicketID)
	if err != nil {
		return s.fail(err)
	}

	merged, err := s.fold(ctx, guestID, resp)
	if err != nil {
		return err
	}
	s.publishActivity(ctx, "guest.checkin_reverted", merged)
	return nil
}

// CheckInByTicketID is the scan path: it is legal to check in a ticket not
// yet on the local roster, the merge step appends it. Errors are returned to
// the caller instead of the shared guest-error channel so the scan surface
// can render its own transient state.
func (s *checkInService) CheckInByTicketID(ctx context.Context, ticketID string) error {
	if !s.tryLock(ticketID) {
		return ErrMutationInFlight
	}
	defer s.unlock(ticketID)

	resp, err := s.gateway.SubmitCheckIn(ctx, dto.CheckInRequest{TicketID: ticketID})
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			s.expireSession()
		}
		return err
	}

	merged, err := s.fold(ctx, ticketID, resp)
	if err != nil {
		return err
	}
	s.publishActivity(ctx, "guest.checked_in", merged)
	return nil
}

func (s *checkInService) AddManual(name, email string) models.GuestRecord {
	return s.store.AddManual(name, email)
}

func (s *checkInService) Guests() []models.GuestRecord {
	return s.store.Guests()
}

func (s *checkInService) Mutations() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.inFlight))
	for id, v := range s.inFlight {
		out[id] = v
	}
	return out
}

func (s *checkInService) GuestError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guestErr
}

// fold applies a confirmed mutation result to the roster. A response
// without a guest payload triggers a full refresh instead, so the roster
// reflects server truth even when the success response is minimal.
func (s *checkInService) fold(ctx context.Context, fallbackID string, resp *dto.CheckInResponse) (*models.GuestRecord, error) {
	if resp != nil && resp.Guest != nil {
		merged := s.store.Merge(fallbackID, resp.Guest)
		s.setGuestError("")
		return merged, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	if g, ok := s.store.Find(fallbackID); ok {
		return &g, nil
	}
	return nil, nil
}

// fail maps a remote failure onto the guest-error channel and applies the
// unauthorized policy. The roster is left unchanged.
func (s *checkInService) fail(err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.expireSession()
		s.setGuestError("session expired, sign in again")
		return err
	}

	var remote *gateway.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		s.setGuestError(remote.Message)
	} else {
		s.setGuestError(genericMutationError)
	}
	return err
}

func (s *checkInService) expireSession() {
	s.tokens.Clear()
	if s.onUnauthorized != nil {
		s.onUnauthorized()
	}
}

func (s *checkInService) publishActivity(ctx context.Context, routingKey string, g *models.GuestRecord) {
	if s.publisher == nil || g == nil {
		return
	}
	activity := dto.CheckInActivity{
		EventID:   s.eventID,
		GuestID:   g.ID,
		TicketID:  g.TicketID,
		CheckedIn: g.IsCheckedIn,
		At:        g.CheckedInAt,
	}
	if err := s.publisher.Publish(ctx, routingKey, activity); err != nil {
		log.Printf("[CheckIn] publish %s failed: %v", routingKey, err)
	}
}

func (s *checkInService) tryLock(guestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[guestID] {
		return false
	}
	s.inFlight[guestID] = true
	return true
}

func (s *checkInService) unlock(guestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, guestID)
}

func (s *checkInService) setGuestError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestErr = msg
}
