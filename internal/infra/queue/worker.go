package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/anglerclubs/roster-api/internal/entity"
)

// The worker's own view of the stores it retries against. Declared here so
// the queue package does not depend on the usecase layer.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *entity.MemberProfile) error
}

type RoleStore interface {
	Grant(ctx context.Context, grant *entity.RoleGrant) error
}

type RecoveryLinkSource interface {
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
}

type WelcomeSender interface {
	SendWelcome(to, name, recoveryLink string) error
}

// Worker drains the reconcile queue: each message is one best-effort commit
// sub-step that failed and gets one more chance here. A second failure nacks
// the message to the DLQ.
type Worker struct {
	Channel     *amqp.Channel
	Profiles    ProfileStore
	Roles       RoleStore
	Links       RecoveryLinkSource
	Mail        WelcomeSender
	RedirectURL string
}

func NewWorker(ch *amqp.Channel, profiles ProfileStore, roles RoleStore, links RecoveryLinkSource, mail WelcomeSender, redirectURL string) *Worker {
	return &Worker{
		Channel:     ch,
		Profiles:    profiles,
		Roles:       roles,
		Links:       links,
		Mail:        mail,
		RedirectURL: redirectURL,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("failed to register reconcile consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ReconcilePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[reconcile] malformed message, dropping: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("[reconcile] %s retry failed for %s (job %s): %s",
					payload.Step, payload.Email, payload.JobID, err)
				d.Nack(false, false)
			} else {
				log.Printf("[reconcile] %s backfilled for %s (job %s)",
					payload.Step, payload.Email, payload.JobID)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] reconcile worker waiting on queue '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload ReconcilePayload) error {
	switch payload.Step {
	case StepProfile:
		now := time.Now()
		return w.Profiles.Upsert(ctx, &entity.MemberProfile{
			UserID:              payload.UserID,
			ClubID:              payload.ClubID,
			Name:                payload.Name,
			City:                payload.City,
			HomeState:           payload.HomeState,
			SignatureTechniques: payload.SignatureTechniques,
			CreatedAt:           now,
			UpdatedAt:           now,
		})

	case StepRoleGrant:
		return w.Roles.Grant(ctx, &entity.RoleGrant{
			UserID: payload.UserID,
			ClubID: payload.ClubID,
			Role:   entity.ClubRole(payload.ClubRole),
			Active: true,
		})

	case StepNotification:
		link, err := w.Links.GenerateRecoveryLink(ctx, payload.Email, w.RedirectURL)
		if err != nil {
			return err
		}
		return w.Mail.SendWelcome(payload.Email, payload.Name, link)

	default:
		// Unknown step: ack it away rather than poisoning the queue.
		log.Printf("[reconcile] unknown step '%s', dropping", payload.Step)
		return nil
	}
}
