package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/attendly/checkin-console/internal/dto"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RosterRefresher is the slice of the check-in service the consumer needs.
type RosterRefresher interface {
	Refresh(ctx context.Context) error
}

const refreshTimeout = 10 * time.Second

// TicketConsumer listens for upstream ticket activity (purchases,
// transfers, refunds) and refreshes the roster so tickets bought elsewhere
// show up without operator action.
type TicketConsumer struct {
	svc     RosterRefresher
	eventID string
}

func NewTicketConsumer(svc RosterRefresher, eventID string) *TicketConsumer {
	return &TicketConsumer{svc: svc, eventID: eventID}
}

func (tc *TicketConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			tc.handleMessage(msg)
		}
		log.Println("[TicketConsumer] channel closed, stopping consumer")
	}()
}

func (tc *TicketConsumer) handleMessage(msg amqp.Delivery) {
	var activity dto.TicketActivity
	if err := json.Unmarshal(msg.Body, &activity); err != nil {
		log.Printf("[TicketConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	if activity.EventID != "" && activity.EventID != tc.eventID {
		// Activity for an event this console is not serving.
		msg.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := tc.svc.Refresh(ctx); err != nil {
		log.Printf("[TicketConsumer] refresh after %s failed: %v", activity.Action, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[TicketConsumer] roster refreshed after %s for ticket %s", activity.Action, activity.TicketID)
	msg.Ack(false)
}
