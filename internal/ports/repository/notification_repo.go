package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"hrm.service/internal/core/model"
)

// NotificationRepository contract
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Notification, error)
	FindByRecipient(ctx context.Context, recipientID int64, isRead *bool, limit, offset int) ([]model.Notification, error)
	CountByRecipient(ctx context.Context, recipientID int64, isRead *bool) (int, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteAllForRecipient(ctx context.Context, recipientID int64) error
	UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, retryCount int) error
}

// PostgresNotificationRepository is the concrete implementation for a PostgreSQL database.
type PostgresNotificationRepository struct {
	DB *sql.DB
}

// NewNotificationRepository create new instance
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &PostgresNotificationRepository{DB: db}
}

const notificationColumns = `id, recipient_id, title, message, type, reference_id, reference_kind,
       is_read, read_at, data, email_status, email_retry_count, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
	n := &model.Notification{}
	var refID sql.NullInt64
	var readAt sql.NullTime
	var data []byte
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type, &refID, &n.ReferenceKind,
		&n.IsRead, &readAt, &data, &n.EmailStatus, &n.EmailRetryCount, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if refID.Valid {
		n.ReferenceID = &refID.Int64
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &n.Data)
	}
	return n, nil
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *model.Notification) (int64, error) {
	var data []byte
	if n.Data != nil {
		b, err := json.Marshal(n.Data)
		if err != nil {
			return 0, err
		}
		data = b
	}

	query := `INSERT INTO notifications (recipient_id, title, message, type, reference_id, reference_kind, data, email_status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query, n.RecipientID, n.Title, n.Message, n.Type,
		nullInt(n.ReferenceID), n.ReferenceKind, data, model.StatusEmailPending).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresNotificationRepository) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *PostgresNotificationRepository) FindByRecipient(ctx context.Context, recipientID int64, isRead *bool, limit, offset int) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []any{recipientID}

	if isRead != nil {
		args = append(args, *isRead)
		query += ` AND is_read = $` + strconv.Itoa(len(args))
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *PostgresNotificationRepository) CountByRecipient(ctx context.Context, recipientID int64, isRead *bool) (int, error) {
	query := `SELECT count(*) FROM notifications WHERE recipient_id = $1`
	args := []any{recipientID}

	if isRead != nil {
		args = append(args, *isRead)
		query += ` AND is_read = $` + strconv.Itoa(len(args))
	}

	var count int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE notifications SET is_read = true, read_at = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, at, id)
	return err
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID int64, at time.Time) error {
	query := `UPDATE notifications SET is_read = true, read_at = $1 WHERE recipient_id = $2 AND is_read = false`
	_, err := r.DB.ExecContext(ctx, query, at, recipientID)
	return err
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	return err
}

func (r *PostgresNotificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	return err
}

// UpdateEmailStatus updates the delivery status and retry count for the
// notify worker.
func (r *PostgresNotificationRepository) UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, retryCount int) error {
	query := `UPDATE notifications SET email_status = $1, email_retry_count = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, id)
	return err
}
