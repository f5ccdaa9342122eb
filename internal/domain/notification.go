package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message for a client, persisted for the portal inbox and
// pushed over the realtime channel when the client is connected.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClientID  uuid.UUID `json:"client_id" db:"client_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateNotificationRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	Body     string    `json:"body" validate:"required"`
}
