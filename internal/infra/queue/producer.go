package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Reconcile steps. Each names one best-effort sub-step of the commit stage
// that failed and should be retried out of band.
const (
	StepProfile      = "profile"
	StepRoleGrant    = "role_grant"
	StepNotification = "notification"
)

// ReconcilePayload carries everything the worker needs to replay one failed
// sub-step without touching the (already purged) staging rows.
type ReconcilePayload struct {
	JobID     string `json:"job_id"`
	Step      string `json:"step"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	RowNumber int    `json:"row_number"`

	ClubID              string   `json:"club_id"`
	Name                string   `json:"name"`
	City                string   `json:"city"`
	HomeState           string   `json:"home_state"`
	ClubRole            string   `json:"club_role"`
	SignatureTechniques []string `json:"signature_techniques"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishReconcile(ctx context.Context, payload ReconcilePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish reconcile message: %w", err)
	}
	return nil
}
