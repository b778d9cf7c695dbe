package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/messaging"
	"hrm.service/internal/ports/repository"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NotificationService is both the producer used by the workflows and the
// recipient-scoped consumer surface.
type NotificationService struct {
	repo     repository.NotificationRepository
	producer messaging.NotificationProducer
}

// NewNotificationService creates a new instance of the notification
// service, wiring up the outbox store and the queue producer.
func NewNotificationService(repo repository.NotificationRepository, producer messaging.NotificationProducer) *NotificationService {
	return &NotificationService{repo: repo, producer: producer}
}

// Notify appends a notification to the outbox and publishes the delivery
// event. Both steps are best-effort: any failure is logged and swallowed,
// and the caller gets nil instead of an error.
func (s *NotificationService) Notify(ctx context.Context, recipientID int64, title, message string, typ model.NotificationType,
	referenceID int64, referenceKind string, data map[string]any) *model.Notification {

	n := &model.Notification{
		RecipientID:   recipientID,
		Title:         title,
		Message:       message,
		Type:          typ,
		ReferenceID:   &referenceID,
		ReferenceKind: referenceKind,
		Data:          data,
		EmailStatus:   model.StatusEmailPending,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.repo.Create(ctx, n)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("recipient_id", recipientID).Msg("Error creating notification")
		return nil
	}
	n.ID = id

	event := messaging.NotificationEvent{
		NotificationID: id,
		RecipientID:    recipientID,
		Type:           string(typ),
		Title:          title,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.producer.PublishNotification(ctx, event); err != nil {
		// Delivery is decoupled from the outbox row; the worker never sees
		// this one, but the in-app notification still exists.
		log.Ctx(ctx).Warn().Err(err).Int64("notification_id", id).Msg("Failed to publish notification event")
	}

	return n
}

// List returns one page of the recipient's notifications, newest first,
// optionally filtered by read state.
func (s *NotificationService) List(ctx context.Context, recipientID int64, isRead *bool, page, limit int) ([]model.Notification, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	notifications, err := s.repo.FindByRecipient(ctx, recipientID, isRead, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	total, err := s.repo.CountByRecipient(ctx, recipientID, isRead)
	if err != nil {
		return nil, Pagination{}, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return notifications, Pagination{Total: total, Page: page, Limit: limit, Pages: pages}, nil
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	unread := false
	return s.repo.CountByRecipient(ctx, recipientID, &unread)
}

// Get returns a single notification, recipient-scoped.
func (s *NotificationService) Get(ctx context.Context, requestorID, id int64) (*model.Notification, error) {
	return s.findOwned(ctx, requestorID, id, "view")
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, requestorID, id int64) (*model.Notification, error) {
	n, err := s.findOwned(ctx, requestorID, id, "update")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkRead(ctx, id, now); err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

// MarkAllRead flags every unread notification of the recipient as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID int64) error {
	return s.repo.MarkAllRead(ctx, recipientID, time.Now().UTC())
}

// Delete removes one notification, recipient-scoped.
func (s *NotificationService) Delete(ctx context.Context, requestorID, id int64) error {
	if _, err := s.findOwned(ctx, requestorID, id, "delete"); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Clear removes every notification of the recipient.
func (s *NotificationService) Clear(ctx context.Context, recipientID int64) error {
	return s.repo.DeleteAllForRecipient(ctx, recipientID)
}

func (s *NotificationService) findOwned(ctx context.Context, requestorID, id int64, verb string) (*model.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, notFound("Notification not found")
	}
	if n.RecipientID != requestorID {
		return nil, forbidden("Not authorized to " + verb + " this notification")
	}
	return n, nil
}
