package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoan(total decimal.Decimal, count int) *domain.Loan {
	return &domain.Loan{
		ID:               uuid.New(),
		TotalAmount:      total,
		InstallmentCount: count,
		Status:           domain.LoanStatusActive,
	}
}

func inst(number int, amount int64, due time.Time, status domain.InstallmentStatus) *domain.Installment {
	return &domain.Installment{
		ID:      uuid.New(),
		Number:  number,
		Amount:  decimal.NewFromInt(amount),
		DueDate: due,
		Status:  status,
	}
}

func TestSummarizeMixedStatuses(t *testing.T) {
	// Two paid at 100, one partial with 30 of 100 received, one pending.
	loan := testLoan(decimal.NewFromInt(400), 4)
	partial := inst(3, 100, date(2025, 6, 20), domain.InstallmentStatusPartial)
	partialAmount := decimal.NewFromInt(30)
	partial.IncompleteAmount = &partialAmount

	installments := []*domain.Installment{
		inst(1, 100, date(2025, 5, 1), domain.InstallmentStatusPaid),
		inst(2, 100, date(2025, 6, 1), domain.InstallmentStatusPaid),
		partial,
		inst(4, 100, date(2025, 7, 20), domain.InstallmentStatusPending),
	}

	summary := Summarize(loan, installments, today)

	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(230)), "totalPaid = %s", summary.TotalPaid)
	assert.True(t, summary.TotalPending.Equal(decimal.NewFromInt(170)))
	assert.Equal(t, 2, summary.InstallmentsPaid)
	assert.Equal(t, 2, summary.InstallmentsRemaining)
	assert.Equal(t, "57.50", summary.PercentPaid)
	assert.False(t, summary.FullyPaid)

	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, date(2025, 7, 20), *summary.NextDueDate)

	require.Len(t, summary.OutstandingInstallments, 2)
	assert.Equal(t, 3, summary.OutstandingInstallments[0].Number)
	assert.Equal(t, string(DisplayPartial), summary.OutstandingInstallments[0].Status)
	assert.Equal(t, 4, summary.OutstandingInstallments[1].Number)
	assert.Equal(t, string(DisplayPending), summary.OutstandingInstallments[1].Status)
}

func TestSummarizeFullyPaid(t *testing.T) {
	loan := testLoan(decimal.NewFromInt(1000), 2)
	installments := []*domain.Installment{
		inst(1, 500, date(2025, 5, 1), domain.InstallmentStatusPaid),
		inst(2, 500, date(2025, 6, 1), domain.InstallmentStatusPaid),
	}

	summary := Summarize(loan, installments, today)

	assert.True(t, summary.FullyPaid)
	assert.Nil(t, summary.NextDueDate)
	assert.Empty(t, summary.OutstandingInstallments)
	assert.True(t, summary.TotalPending.IsZero())
	assert.Equal(t, "100.00", summary.PercentPaid)
	assert.Equal(t, 0, summary.InstallmentsRemaining)
}

func TestSummarizeOverduePendingIsNotNextDue(t *testing.T) {
	loan := testLoan(decimal.NewFromInt(200), 2)
	installments := []*domain.Installment{
		inst(1, 100, date(2025, 6, 1), domain.InstallmentStatusPending),
		inst(2, 100, date(2025, 7, 1), domain.InstallmentStatusPending),
	}

	summary := Summarize(loan, installments, today)

	// The past-due installment is outstanding as Overdue, but the next due
	// date points at the first installment still ahead of today.
	require.Len(t, summary.OutstandingInstallments, 2)
	assert.Equal(t, string(DisplayOverdue), summary.OutstandingInstallments[0].Status)
	assert.Equal(t, 14, summary.OutstandingInstallments[0].DaysLate)
	assert.Equal(t, 0, summary.OutstandingInstallments[1].DaysLate)
	require.NotNil(t, summary.NextDueDate)
	assert.Equal(t, date(2025, 7, 1), *summary.NextDueDate)
}

func TestSummarizeNoInstallments(t *testing.T) {
	loan := testLoan(decimal.NewFromInt(500), 0)
	summary := Summarize(loan, nil, today)

	assert.True(t, summary.TotalPaid.IsZero())
	assert.True(t, summary.TotalPending.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, summary.NextDueDate)
	assert.Empty(t, summary.OutstandingInstallments)
	assert.False(t, summary.FullyPaid)
}

func TestSummarizeZeroTotalAmount(t *testing.T) {
	loan := testLoan(decimal.Zero, 1)
	installments := []*domain.Installment{
		inst(1, 0, date(2025, 7, 1), domain.InstallmentStatusPending),
	}

	summary := Summarize(loan, installments, today)

	assert.Equal(t, "0.00", summary.PercentPaid)
	assert.True(t, summary.TotalPending.IsZero())
}

func TestSummarizeOverpaymentFloorsPendingAtZero(t *testing.T) {
	loan := testLoan(decimal.NewFromInt(150), 2)
	installments := []*domain.Installment{
		inst(1, 100, date(2025, 5, 1), domain.InstallmentStatusPaid),
		inst(2, 100, date(2025, 6, 1), domain.InstallmentStatusPaid),
	}

	summary := Summarize(loan, installments, today)
	assert.True(t, summary.TotalPending.IsZero())
}

func TestSummarizeIsIdempotent(t *testing.T) {
	loan := testLoan(decimal.NewFromInt(400), 4)
	installments := []*domain.Installment{
		inst(1, 100, date(2025, 5, 1), domain.InstallmentStatusPaid),
		inst(2, 100, date(2025, 6, 10), domain.InstallmentStatusPending),
		inst(3, 100, date(2025, 7, 1), domain.InstallmentStatusPending),
		inst(4, 100, date(2025, 8, 1), domain.InstallmentStatusPending),
	}

	first := Summarize(loan, installments, today)
	second := Summarize(loan, installments, today)
	assert.Equal(t, first, second)
}

func TestDashboard(t *testing.T) {
	loanA := testLoan(decimal.NewFromInt(400), 4)
	loanB := testLoan(decimal.NewFromInt(600), 2)

	installments := map[string][]*domain.Installment{
		loanA.ID.String(): {
			inst(1, 100, date(2025, 5, 1), domain.InstallmentStatusPaid),
			inst(2, 100, date(2025, 6, 10), domain.InstallmentStatusPending), // overdue
			inst(3, 100, date(2025, 7, 1), domain.InstallmentStatusPending),
			inst(4, 100, date(2025, 8, 1), domain.InstallmentStatusPending),
		},
		loanB.ID.String(): {
			inst(1, 300, date(2025, 6, 20), domain.InstallmentStatusPending),
			inst(2, 300, date(2025, 7, 20), domain.InstallmentStatusPending),
		},
	}

	resp := Dashboard([]*domain.Loan{loanA, loanB}, installments, today)

	assert.Equal(t, 2, resp.ActiveLoans)
	assert.True(t, resp.TotalBorrowed.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.TotalOutstanding.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 1, resp.OverdueCount)
	require.NotNil(t, resp.NextDueDate)
	assert.Equal(t, date(2025, 6, 20), *resp.NextDueDate)
	require.Len(t, resp.Loans, 2)
}
