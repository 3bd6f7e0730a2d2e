package consumer

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

// --- Mock RosterRefresher ---

type mockRefresher struct {
	calls int
	err   error
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	m.calls++
	return m.err
}

// --- Mock Acknowledger ---

type mockAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.acked = true
	return nil
}
func (m *mockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}
func (m *mockAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

func delivery(ack *mockAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
}

// --- Tests ---

func TestHandleMessage_RefreshesAndAcks(t *testing.T) {
	refresher := &mockRefresher{}
	tc := NewTicketConsumer(refresher, "E1")
	ack := &mockAcknowledger{}

	tc.handleMessage(delivery(ack, `{"ticketId":"T1","eventId":"E1","action":"ticket.purchased"}`))

	assert.Equal(t, 1, refresher.calls)
	assert.True(t, ack.acked)
}

func TestHandleMessage_SkipsOtherEvents(t *testing.T) {
	refresher := &mockRefresher{}
	tc := NewTicketConsumer(refresher, "E1")
	ack := &mockAcknowledger{}

	tc.handleMessage(delivery(ack, `{"ticketId":"T1","eventId":"E2","action":"ticket.purchased"}`))

	assert.Zero(t, refresher.calls)
	assert.True(t, ack.acked)
}

func TestHandleMessage_BadPayloadNackedWithoutRequeue(t *testing.T) {
	refresher := &mockRefresher{}
	tc := NewTicketConsumer(refresher, "E1")
	ack := &mockAcknowledger{}

	tc.handleMessage(delivery(ack, `not-json`))

	assert.Zero(t, refresher.calls)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleMessage_RefreshFailureRequeued(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("upstream unreachable")}
	tc := NewTicketConsumer(refresher, "E1")
	ack := &mockAcknowledger{}

	tc.handleMessage(delivery(ack, `{"ticketId":"T1","eventId":"E1","action":"ticket.purchased"}`))

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}
