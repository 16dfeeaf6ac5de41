package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/adapter/queue"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

const (
	SubjectConfirmed = "reservations.confirmed"
	SubjectReminder  = "reservations.reminder"
)

// Publisher emits reservation events onto the message queue for the
// external notification service. Delivery to drivers (push, SMS,
// email) happens downstream; the engine only announces the event.
type Publisher struct {
	queue queue.MessageQueue
	log   *zap.Logger
}

func NewPublisher(mq queue.MessageQueue, log *zap.Logger) *Publisher {
	return &Publisher{queue: mq, log: log}
}

var _ ports.Notifier = (*Publisher)(nil)

func (p *Publisher) ReservationConfirmed(ctx context.Context, ev ports.ReservationEvent) error {
	return p.publish(SubjectConfirmed, ev)
}

func (p *Publisher) ReminderToggled(ctx context.Context, ev ports.ReservationEvent) error {
	return p.publish(SubjectReminder, ev)
}

func (p *Publisher) publish(subject string, ev ports.ReservationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal reservation event: %w", err)
	}
	if err := p.queue.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("reservation event published",
		zap.String("subject", subject),
		zap.String("reservation_id", ev.ReservationID),
	)
	return nil
}
