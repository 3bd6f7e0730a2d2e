// Package scanner wraps the scan-driven check-in path in a transient status
// machine: idle -> pending -> success|error -> idle. One scan is in flight
// at a time; only one physical scan can happen anyway.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrScanInFlight = errors.New("a scan is already being processed")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CheckInClient is the slice of the coordinator the adapter needs.
type CheckInClient interface {
	CheckInByTicketID(ctx context.Context, ticketID string) error
}

type Adapter struct {
	client     CheckInClient
	resetDelay time.Duration

	mu      sync.Mutex
	status  Status
	message string
	timer   *time.Timer
}

func New(client CheckInClient, resetDelay time.Duration) *Adapter {
	return &Adapter{
		client:     client,
		resetDelay: resetDelay,
		status:     StatusIdle,
	}
}

// Submit feeds one decoded ticket identifier through the check-in path.
// A scan arriving while the previous one is still pending is declined.
func (a *Adapter) Submit(ctx context.Context, code string) error {
	a.mu.Lock()
	if a.status == StatusPending {
		a.mu.Unlock()
		return ErrScanInFlight
	}
	a.stopTimer()
	a.status = StatusPending
	a.message = ""
	a.mu.Unlock()

	err := a.client.CheckInByTicketID(ctx, code)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.status = StatusError
		a.message = err.Error()
	} else {
		a.status = StatusSuccess
		a.message = fmt.Sprintf("ticket %s checked in", code)
	}
	a.scheduleReset()
	return err
}

// ReportDecodeError surfaces a camera/read failure as a transient error.
// Decode failures never retry automatically, and one arriving while a scan
// is pending is ignored.
func (a *Adapter) ReportDecodeError(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusPending {
		return
	}
	if message == "" {
		message = "could not read code"
	}
	a.status = StatusError
	a.message = message
	a.scheduleReset()
}

func (a *Adapter) State() (Status, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status, a.message
}

// scheduleReset arms the auto-reset back to idle. Callers hold a.mu.
func (a *Adapter) scheduleReset() {
	a.stopTimer()
	a.timer = time.AfterFunc(a.resetDelay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.status != StatusPending {
			a.status = StatusIdle
			a.message = ""
		}
	})
}

func (a *Adapter) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
