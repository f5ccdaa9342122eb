package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/accounting"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/repository"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/prestaweb/api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LoanService struct {
	loanRepo        repository.LoanRepository
	installmentRepo repository.InstallmentRepository
	cache           repository.SummaryCache
	log             *logrus.Logger
	config          *config.Config
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	cache repository.SummaryCache,
	log *logrus.Logger,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		cache:           cache,
		log:             log,
		config:          cfg,
	}
}

// CreateLoan originates a loan: the loan row and its complete installment
// schedule are created together, never incrementally. The total is split
// evenly across the schedule with the last installment absorbing the
// rounding remainder.
func (s *LoanService) CreateLoan(ctx context.Context, clientID uuid.UUID, req *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	interval, ok := domain.ParseInterval(req.PaymentInterval)
	if !ok {
		return nil, customError.WrapInvalidInterval(req.PaymentInterval)
	}

	if req.Principal.IsNegative() || req.Gain.IsNegative() {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidAmount,
			"principal and gain must not be negative", customError.ErrInvalidAmount)
	}

	total := req.Principal.Add(req.Gain)
	now := time.Now()

	loan := &domain.Loan{
		ID:               uuid.New(),
		ClientID:         clientID,
		Principal:        req.Principal,
		Gain:             req.Gain,
		TotalAmount:      total,
		InstallmentCount: req.InstallmentCount,
		PaymentInterval:  interval,
		LoanDate:         utils.Midnight(req.LoanDate),
		Status:           domain.LoanStatusActive,
		TotalPaid:        decimal.Zero,
		RemainingAmount:  total,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	amounts := utils.SplitAmount(total, req.InstallmentCount)
	installments := make([]*domain.Installment, 0, req.InstallmentCount)
	for n := 1; n <= req.InstallmentCount; n++ {
		installments = append(installments, &domain.Installment{
			ID:        uuid.New(),
			LoanID:    loan.ID,
			Number:    n,
			Amount:    amounts[n-1],
			DueDate:   utils.ScheduleDate(loan.LoanDate, interval, n),
			Status:    domain.InstallmentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.loanRepo.Create(ctx, loan, installments); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, loan)
	s.log.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"client_id": clientID,
		"total":     total.String(),
	}).Info("loan created")

	return &domain.CreateLoanResponse{Loan: loan, Installments: installments}, nil
}

// GetLoan returns the bare loan record.
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// GetLoanDetail loads a loan with its installments and derived summary. The
// serialized response is cached briefly; every figure still comes from the
// accounting engine on a miss.
func (s *LoanService) GetLoanDetail(ctx context.Context, id uuid.UUID) (*domain.LoanDetailResponse, error) {
	cacheKey := repository.LoanSummaryKey(id.String())
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var detail domain.LoanDetailResponse
		if err := json.Unmarshal([]byte(cached), &detail); err == nil {
			return &detail, nil
		}
	}

	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.ListByLoan(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	detail := &domain.LoanDetailResponse{
		Loan:         loan,
		Installments: installments,
		Summary:      accounting.Summarize(loan, installments, time.Now()),
	}

	if data, err := json.Marshal(detail); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.config.GetCacheTTL()); err != nil {
			s.log.WithError(customError.WrapCacheError(err)).Warn("caching loan detail")
		}
	}

	return detail, nil
}

// ListClientLoans returns a client's loans, each with its summary.
func (s *LoanService) ListClientLoans(ctx context.Context, clientID uuid.UUID) ([]*domain.LoanOverview, error) {
	loans, err := s.loanRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	grouped, err := s.groupedInstallments(ctx, loans)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	overviews := make([]*domain.LoanOverview, 0, len(loans))
	for _, loan := range loans {
		overviews = append(overviews, &domain.LoanOverview{
			Loan:    loan,
			Summary: accounting.Summarize(loan, grouped[loan.ID.String()], now),
		})
	}
	return overviews, nil
}

// Dashboard aggregates a client's position across all its loans.
func (s *LoanService) Dashboard(ctx context.Context, clientID uuid.UUID) (*domain.DashboardResponse, error) {
	cacheKey := repository.DashboardKey(clientID.String())
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var resp domain.DashboardResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return &resp, nil
		}
	}

	loans, err := s.loanRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	grouped, err := s.groupedInstallments(ctx, loans)
	if err != nil {
		return nil, err
	}

	resp := accounting.Dashboard(loans, grouped, time.Now())

	if data, err := json.Marshal(resp); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.config.GetCacheTTL()); err != nil {
			s.log.WithError(customError.WrapCacheError(err)).Warn("caching dashboard")
		}
	}

	return resp, nil
}

// DeleteLoan removes a loan and its installments.
func (s *LoanService) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	loan, err := s.GetLoan(ctx, id)
	if err != nil {
		return err
	}

	if err := s.loanRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, loan)
	s.log.WithField("loan_id", id).Info("loan deleted")
	return nil
}

func (s *LoanService) groupedInstallments(ctx context.Context, loans []*domain.Loan) (map[string][]*domain.Installment, error) {
	ids := make([]uuid.UUID, 0, len(loans))
	for _, loan := range loans {
		ids = append(ids, loan.ID)
	}

	grouped, err := s.installmentRepo.ListByLoans(ctx, ids)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return grouped, nil
}

func (s *LoanService) invalidate(ctx context.Context, loan *domain.Loan) {
	err := s.cache.Invalidate(ctx,
		repository.LoanSummaryKey(loan.ID.String()),
		repository.DashboardKey(loan.ClientID.String()),
	)
	if err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warn("invalidating summary cache")
	}
}
