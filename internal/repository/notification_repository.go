package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"

	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, client_id, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.ClientID,
		notification.Title,
		notification.Body,
		notification.Read,
		notification.CreatedAt,
	)
	return err
}

func (r *notificationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Notification, error) {
	query := `
		SELECT id, client_id, title, body, read, created_at
		FROM notifications
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	var notifications []*domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, clientID); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead scopes the update to the owning client so one client can never
// acknowledge another's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND client_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, id, clientID)
	return err
}
