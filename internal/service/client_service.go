package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/repository"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ClientService struct {
	clientRepo repository.ClientRepository
	cache      repository.SummaryCache
	log        *logrus.Logger
}

func NewClientService(
	clientRepo repository.ClientRepository,
	cache repository.SummaryCache,
	log *logrus.Logger,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		cache:      cache,
		log:        log,
	}
}

// CreateClient registers a new client and generates its portal access code.
// The code is part of the response exactly once; it is the staff member's
// job to hand it to the client.
func (s *ClientService) CreateClient(ctx context.Context, req *domain.CreateClientRequest) (*domain.CreateClientResponse, error) {
	code, err := GenerateAccessCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	client := &domain.Client{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		AccessCode: code,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithField("client_id", client.ID).Info("client created")
	return &domain.CreateClientResponse{Client: client, AccessCode: code}, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapClientNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

// DeleteClient removes a client and, through the ownership cascade, all of
// its loans and their installments.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := s.cache.Invalidate(ctx, repository.DashboardKey(id.String())); err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warn("invalidating dashboard cache after client delete")
	}

	s.log.WithField("client_id", id).Info("client deleted")
	return nil
}
