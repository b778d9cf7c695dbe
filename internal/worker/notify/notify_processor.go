package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"hrm.service/internal/core"
	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/messaging"
	"hrm.service/internal/ports/repository"
)

// NotifyProcessor delivers notification emails. It uses a circuit breaker
// so a struggling mail service does not get hammered by the retry loop.
type NotifyProcessor struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	emailService  core.EmailService
	cb            *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the notify queue. It sets up a
// circuit breaker in front of SES.
func NewProcessor(notifications repository.NotificationRepository, users repository.UserRepository, emailService core.EmailService) *NotifyProcessor {
	settings := gobreaker.Settings{
		Name:        "SES-Email",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger than 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &NotifyProcessor{
		notifications: notifications,
		users:         users,
		emailService:  emailService,
		cb:            gobreaker.NewCircuitBreaker(settings),
	}
}

// Process handles one message from the notify queue. Delivery is idempotent:
// the notification row is re-read first and already-completed sends are
// skipped, so a redelivered message never produces a second email.
func (p *NotifyProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.NotificationEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal notification event")
		return false, 0, err // Do not retry on malformed message
	}

	notification, err := p.notifications.FindByID(ctx, event.NotificationID)
	if err != nil {
		// If we can't get the record, retry after a short delay.
		return true, 10, fmt.Errorf("failed to get notification from db: %w", err)
	}
	if notification == nil {
		log.Ctx(ctx).Warn().Int64("notification_id", event.NotificationID).Msg("Notification no longer exists. Skipping.")
		return false, 0, nil
	}

	if notification.EmailStatus == model.StatusEmailCompleted {
		log.Ctx(ctx).Info().Int64("notification_id", event.NotificationID).Msg("Email already sent. Skipping.")
		return false, 0, nil
	}

	recipient, err := p.users.FindByID(ctx, notification.RecipientID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get recipient from db: %w", err)
	}
	if recipient == nil || recipient.Email == "" {
		// Nobody to deliver to; mark failed so the row stops circulating.
		p.notifications.UpdateEmailStatus(ctx, notification.ID, model.StatusEmailFailed, notification.EmailRetryCount)
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.emailService.SendNotificationEmail(ctx, recipient.Email, notification)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping email send")
		}
		newCount := notification.EmailRetryCount + 1
		p.notifications.UpdateEmailStatus(ctx, notification.ID, model.StatusEmailPending, newCount)

		delay := calculateBackoff(newCount)
		return true, delay, err
	}

	err = p.notifications.UpdateEmailStatus(ctx, notification.ID, model.StatusEmailCompleted, 0)
	return false, 0, err
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
