package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/repository"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Pusher routes a payload to a currently-connected client, if any. The
// realtime hub implements it; tests substitute their own.
type Pusher interface {
	SendToClient(clientID uuid.UUID, payload interface{}) bool
}

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	pusher           Pusher
	log              *logrus.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	pusher Pusher,
	log *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
		log:              log,
	}
}

// Notify persists a notification and pushes it live when the client is
// connected. Persistence is the source of truth; the push is best effort.
func (s *NotificationService) Notify(ctx context.Context, clientID uuid.UUID, title, body string) error {
	notification := &domain.Notification{
		ID:        uuid.New(),
		ClientID:  clientID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return customError.WrapDatabaseError(err)
	}

	if s.pusher != nil {
		delivered := s.pusher.SendToClient(clientID, notification)
		s.log.WithFields(logrus.Fields{
			"client_id": clientID,
			"delivered": delivered,
		}).Debug("notification pushed")
	}

	return nil
}

func (s *NotificationService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, id, clientID); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}
