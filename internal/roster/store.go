// Package roster holds the in-memory guest list for one event. All writes
// funnel through Replace, AddManual or Merge; nothing mutates a guest record
// in place from outside this package.
package roster

import (
	"sync"

	"github.com/attendly/checkin-console/internal/dto"
	"github.com/attendly/checkin-console/internal/models"
	"github.com/attendly/checkin-console/internal/normalize"
	"github.com/google/uuid"
)

type Store struct {
	mu     sync.Mutex
	guests []models.GuestRecord
}

func NewStore() *Store {
	return &Store{}
}

// Guests returns a copy of the roster in list order.
func (s *Store) Guests() []models.GuestRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GuestRecord, len(s.guests))
	copy(out, s.guests)
	return out
}

func (s *Store) Find(guestID string) (models.GuestRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.guests {
		if g.ID == guestID {
			return g, true
		}
	}
	return models.GuestRecord{}, false
}

// Replace swaps the whole roster, used after a full refresh.
func (s *Store) Replace(guests []models.GuestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests = make([]models.GuestRecord, len(guests))
	copy(s.guests, guests)
}

// AddManual appends a local-only guest with no backing ticket or account.
// Manual guests never reach the remote service and stay check-in-disabled
// until a server-side sync path exists.
func (s *Store) AddManual(name, email string) models.GuestRecord {
	g := models.GuestRecord{
		ID:     "manual-" + uuid.NewString(),
		Name:   name,
		Email:  email,
		Status: models.StatusConfirmed,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests = append(s.guests, g)
	return g
}

// Merge folds one raw upstream payload into the roster: the candidate is
// normalized (fallbackID supplies the id when the payload has none), matched
// against existing records by local id, then ticket id, then user id, and
// either overwrites the match in place or is appended. Every success path of
// the check-in coordinator goes through here, so merge semantics are the
// same no matter which operation produced the update.
func (s *Store) Merge(fallbackID string, raw *dto.TicketRow) *models.GuestRecord {
	cand := normalize.GuestTicketWithFallback(raw, fallbackID)
	if cand == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.guests {
		if matches(&s.guests[i], cand) {
			s.guests[i] = *cand
			out := s.guests[i]
			return &out
		}
	}
	s.guests = append(s.guests, *cand)
	out := *cand
	return &out
}

func matches(existing, cand *models.GuestRecord) bool {
	if existing.ID == cand.ID {
		return true
	}
	if existing.TicketID != nil && cand.TicketID != nil && *existing.TicketID == *cand.TicketID {
		return true
	}
	if existing.UserID != nil && cand.UserID != nil && *existing.UserID == *cand.UserID {
		return true
	}
	return false
}
