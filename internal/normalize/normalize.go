// Package normalize converts raw upstream ticket payloads into canonical
// guest records. The upstream vocabulary for "checked in" varies between a
// status string and a boolean flag; everything downstream trusts only the
// canonical boolean produced here.
package normalize

import (
	"time"

	"github.com/attendly/checkin-console/internal/dto"
	"github.com/attendly/checkin-console/internal/models"
	"github.com/google/uuid"
)

// GuestTicket normalizes one raw ticket/RSVP row. Returns nil when the row
// carries no usable identity (no ticket id and no derivable user).
func GuestTicket(raw *dto.TicketRow) *models.GuestRecord {
	return GuestTicketWithFallback(raw, "")
}

// GuestTicketWithFallback is GuestTicket with a caller-supplied id used when
// the payload has no identifier of its own. With no fallback either, a
// random token is synthesized so every record has some collection key, at
// the cost of cross-refresh identity for that record.
func GuestTicketWithFallback(raw *dto.TicketRow, fallbackID string) *models.GuestRecord {
	if raw == nil {
		return nil
	}
	if raw.ID == "" && !hasUsableUser(raw.User) {
		return nil
	}

	checkedIn := resolveCheckedIn(raw)

	g := &models.GuestRecord{
		ID:          resolveID(raw, fallbackID),
		Status:      resolveStatus(raw, checkedIn),
		IsCheckedIn: checkedIn,
		CheckedInAt: resolveCheckedInAt(raw, checkedIn),
	}
	if raw.ID != "" {
		ticketID := raw.ID
		g.TicketID = &ticketID
	}
	if u := raw.User; u != nil {
		g.Name = u.Name
		g.Email = u.Email
		if u.ID != "" {
			userID := u.ID
			g.UserID = &userID
		}
		if u.Avatar != "" {
			avatar := u.Avatar
			g.Avatar = &avatar
		}
	}
	return g
}

func hasUsableUser(u *dto.TicketUser) bool {
	return u != nil && (u.ID != "" || u.Email != "" || u.Name != "")
}

// resolveCheckedIn reconciles the flag and the status string: the boolean
// wins when present, otherwise the status string is trusted.
func resolveCheckedIn(raw *dto.TicketRow) bool {
	if raw.IsCheckedIn != nil {
		return *raw.IsCheckedIn
	}
	return raw.Status == string(models.StatusCheckedIn)
}

func resolveStatus(raw *dto.TicketRow, checkedIn bool) models.GuestStatus {
	if checkedIn {
		return models.StatusCheckedIn
	}
	if raw.Status == string(models.StatusPending) {
		return models.StatusPending
	}
	return models.StatusConfirmed
}

// resolveCheckedInAt keeps the isCheckedIn <=> checkedInAt invariant: a
// checked-in row without an explicit timestamp falls back to its last
// update time, then to now; a row that is not checked in gets nil.
func resolveCheckedInAt(raw *dto.TicketRow, checkedIn bool) *time.Time {
	if !checkedIn {
		return nil
	}
	if raw.CheckedInAt != nil {
		return raw.CheckedInAt
	}
	if raw.UpdatedAt != nil {
		return raw.UpdatedAt
	}
	now := time.Now().UTC()
	return &now
}

func resolveID(raw *dto.TicketRow, fallbackID string) string {
	if raw.ID != "" {
		return raw.ID
	}
	if raw.User != nil {
		if raw.User.ID != "" {
			return raw.User.ID
		}
		if raw.User.Email != "" {
			return raw.User.Email
		}
	}
	if fallbackID != "" {
		return fallbackID
	}
	return uuid.NewString()
}
