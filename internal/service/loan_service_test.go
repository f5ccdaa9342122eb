package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/mocks"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Redis.CacheTTL = "5m"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = "24h"
	return cfg
}

func newLoanService(loanRepo *mocks.MockLoanRepository, instRepo *mocks.MockInstallmentRepository, cache *mocks.MockSummaryCache) *LoanService {
	return NewLoanService(loanRepo, instRepo, cache, testLogger(), testConfig())
}

func TestCreateLoan(t *testing.T) {
	tests := []struct {
		name          string
		request       *domain.CreateLoanRequest
		expectedError bool
		errorIs       error
		validate      func(*testing.T, *domain.CreateLoanResponse)
	}{
		{
			name: "Success - monthly schedule with rounding remainder",
			request: &domain.CreateLoanRequest{
				Principal:        decimal.NewFromInt(900),
				Gain:             decimal.NewFromInt(100),
				InstallmentCount: 3,
				PaymentInterval:  "monthly",
				LoanDate:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			},
			validate: func(t *testing.T, resp *domain.CreateLoanResponse) {
				assert.True(t, resp.Loan.TotalAmount.Equal(decimal.NewFromInt(1000)))
				assert.Equal(t, domain.LoanStatusActive, resp.Loan.Status)
				assert.True(t, resp.Loan.RemainingAmount.Equal(decimal.NewFromInt(1000)))
				assert.True(t, resp.Loan.TotalPaid.IsZero())

				require.Len(t, resp.Installments, 3)
				sum := decimal.Zero
				for i, inst := range resp.Installments {
					assert.Equal(t, i+1, inst.Number)
					assert.Equal(t, domain.InstallmentStatusPending, inst.Status)
					sum = sum.Add(inst.Amount)
				}
				// 1000/3 rounds to 333.33; the last installment absorbs it.
				assert.True(t, sum.Equal(decimal.NewFromInt(1000)), "schedule sums to %s", sum)
				assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), resp.Installments[0].DueDate)
				assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), resp.Installments[2].DueDate)
			},
		},
		{
			name: "Success - legacy Spanish interval literal",
			request: &domain.CreateLoanRequest{
				Principal:        decimal.NewFromInt(700),
				InstallmentCount: 7,
				PaymentInterval:  "Semanal",
				LoanDate:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			validate: func(t *testing.T, resp *domain.CreateLoanResponse) {
				assert.Equal(t, domain.IntervalWeekly, resp.Loan.PaymentInterval)
				assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), resp.Installments[0].DueDate)
			},
		},
		{
			name: "Failure - unknown interval",
			request: &domain.CreateLoanRequest{
				Principal:        decimal.NewFromInt(100),
				InstallmentCount: 2,
				PaymentInterval:  "fortnightly-ish",
				LoanDate:         time.Now(),
			},
			expectedError: true,
			errorIs:       customError.ErrInvalidInterval,
		},
		{
			name: "Failure - negative principal",
			request: &domain.CreateLoanRequest{
				Principal:        decimal.NewFromInt(-100),
				InstallmentCount: 2,
				PaymentInterval:  "weekly",
				LoanDate:         time.Now(),
			},
			expectedError: true,
			errorIs:       customError.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loanRepo := new(mocks.MockLoanRepository)
			instRepo := new(mocks.MockInstallmentRepository)
			cache := new(mocks.MockSummaryCache)

			if !tt.expectedError {
				loanRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(installments []*domain.Installment) bool {
					return len(installments) == tt.request.InstallmentCount
				})).Return(nil)
				cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
			}

			svc := newLoanService(loanRepo, instRepo, cache)
			resp, err := svc.CreateLoan(context.Background(), uuid.New(), tt.request)

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errorIs)
				loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			tt.validate(t, resp)
			loanRepo.AssertExpectations(t)
		})
	}
}

func TestGetLoanDetailComputesSummary(t *testing.T) {
	loan := activeLoan(400, 0, 1)
	received := decimal.NewFromInt(30)
	installments := []*domain.Installment{
		{ID: uuid.New(), LoanID: loan.ID, Number: 1, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, -30), Status: domain.InstallmentStatusPaid},
		{ID: uuid.New(), LoanID: loan.ID, Number: 2, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, -10), Status: domain.InstallmentStatusPartial, IncompleteAmount: &received},
		{ID: uuid.New(), LoanID: loan.ID, Number: 3, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, 10), Status: domain.InstallmentStatusPending},
		{ID: uuid.New(), LoanID: loan.ID, Number: 4, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, 40), Status: domain.InstallmentStatusPending},
	}

	loanRepo := new(mocks.MockLoanRepository)
	instRepo := new(mocks.MockInstallmentRepository)
	cache := new(mocks.MockSummaryCache)

	cache.On("Get", mock.Anything, mock.Anything).Return("", false)
	loanRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	instRepo.On("ListByLoan", mock.Anything, loan.ID).Return(installments, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newLoanService(loanRepo, instRepo, cache)
	detail, err := svc.GetLoanDetail(context.Background(), loan.ID)

	require.NoError(t, err)
	require.NotNil(t, detail.Summary)
	assert.True(t, detail.Summary.TotalPaid.Equal(decimal.NewFromInt(130)))
	assert.True(t, detail.Summary.TotalPending.Equal(decimal.NewFromInt(270)))
	assert.Equal(t, 1, detail.Summary.InstallmentsPaid)
	assert.Equal(t, 3, detail.Summary.InstallmentsRemaining)
	assert.Len(t, detail.Summary.OutstandingInstallments, 3)
}

func TestGetLoanDetailServesFromCache(t *testing.T) {
	loan := activeLoan(400, 0, 1)
	cached := &domain.LoanDetailResponse{
		Loan:    loan,
		Summary: &domain.LoanSummary{PercentPaid: "25.00"},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	loanRepo := new(mocks.MockLoanRepository)
	instRepo := new(mocks.MockInstallmentRepository)
	cache := new(mocks.MockSummaryCache)

	cache.On("Get", mock.Anything, mock.Anything).Return(string(data), true)

	svc := newLoanService(loanRepo, instRepo, cache)
	detail, err := svc.GetLoanDetail(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, "25.00", detail.Summary.PercentPaid)
	loanRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	instRepo.AssertNotCalled(t, "ListByLoan", mock.Anything, mock.Anything)
}

func TestGetLoanDetailToleratesCacheWriteFailure(t *testing.T) {
	loan := activeLoan(400, 0, 1)
	installments := []*domain.Installment{
		{ID: uuid.New(), LoanID: loan.ID, Number: 1, Amount: decimal.NewFromInt(400), DueDate: time.Now().AddDate(0, 0, 10), Status: domain.InstallmentStatusPending},
	}

	loanRepo := new(mocks.MockLoanRepository)
	instRepo := new(mocks.MockInstallmentRepository)
	cache := new(mocks.MockSummaryCache)

	cache.On("Get", mock.Anything, mock.Anything).Return("", false)
	loanRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	instRepo.On("ListByLoan", mock.Anything, loan.ID).Return(installments, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	svc := newLoanService(loanRepo, instRepo, cache)
	detail, err := svc.GetLoanDetail(context.Background(), loan.ID)

	require.NoError(t, err)
	require.NotNil(t, detail.Summary)
	cache.AssertExpectations(t)
}

func TestWrapCacheErrorKeepsCause(t *testing.T) {
	cause := errors.New("redis: connection refused")
	wrapped := customError.WrapCacheError(cause)

	assert.Equal(t, customError.ErrCodeCacheError, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
}

func TestDashboardAggregatesLoans(t *testing.T) {
	clientID := uuid.New()
	loanA := activeLoan(400, 100, 1)
	loanA.ClientID = clientID
	loanB := activeLoan(600, 0, 1)
	loanB.ClientID = clientID

	grouped := map[string][]*domain.Installment{
		loanA.ID.String(): {
			{ID: uuid.New(), LoanID: loanA.ID, Number: 1, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, -5), Status: domain.InstallmentStatusPaid},
			{ID: uuid.New(), LoanID: loanA.ID, Number: 2, Amount: decimal.NewFromInt(100), DueDate: time.Now().AddDate(0, 0, 5), Status: domain.InstallmentStatusPending},
		},
		loanB.ID.String(): {
			{ID: uuid.New(), LoanID: loanB.ID, Number: 1, Amount: decimal.NewFromInt(300), DueDate: time.Now().AddDate(0, 0, 2), Status: domain.InstallmentStatusPending},
		},
	}

	loanRepo := new(mocks.MockLoanRepository)
	instRepo := new(mocks.MockInstallmentRepository)
	cache := new(mocks.MockSummaryCache)

	cache.On("Get", mock.Anything, mock.Anything).Return("", false)
	loanRepo.On("ListByClient", mock.Anything, clientID).Return([]*domain.Loan{loanA, loanB}, nil)
	instRepo.On("ListByLoans", mock.Anything, mock.Anything).Return(grouped, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newLoanService(loanRepo, instRepo, cache)
	resp, err := svc.Dashboard(context.Background(), clientID)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.ActiveLoans)
	assert.True(t, resp.TotalBorrowed.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.TotalOutstanding.Equal(decimal.NewFromInt(900)))
	require.NotNil(t, resp.NextDueDate)
}
