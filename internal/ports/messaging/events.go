package messaging

import "time"

// NotificationEvent is the JSON payload sent via SQS for the notify queue.
// The worker uses NotificationID to re-read delivery state before sending.
type NotificationEvent struct {
	EventID        string    `json:"eventId"`
	NotificationID int64     `json:"notificationId"`
	RecipientID    int64     `json:"recipientId"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	OccurredAt     time.Time `json:"occurredAt"`
}
