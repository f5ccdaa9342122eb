package accounting

import (
	"time"

	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/pkg/utils"
	"github.com/shopspring/decimal"
)

// Summarize derives the full accounting view of a loan from its installments
// as of the given date. Installments must be in schedule order (by number);
// a loan with no installments yields an empty outstanding list and nil next
// due date rather than an error.
func Summarize(loan *domain.Loan, installments []*domain.Installment, today time.Time) *domain.LoanSummary {
	summary := &domain.LoanSummary{
		TotalPaid:               decimal.Zero,
		TotalPending:            decimal.Zero,
		OutstandingInstallments: []*domain.OutstandingInstallment{},
	}

	day := utils.Midnight(today)
	paidCount := 0
	var nextDue *time.Time

	for _, inst := range installments {
		status := Classify(inst, day)
		summary.TotalPaid = summary.TotalPaid.Add(inst.PaidSoFar())

		if status == DisplayPaid {
			paidCount++
			continue
		}

		summary.OutstandingInstallments = append(summary.OutstandingInstallments, &domain.OutstandingInstallment{
			Number:        inst.Number,
			EstimatedDate: utils.Midnight(inst.DueDate),
			Amount:        inst.Amount,
			Status:        string(status),
			IsPaid:        false,
			DaysLate:      Lateness(inst, day),
		})

		// Earliest pending installment that is not yet due.
		if status == DisplayPending && nextDue == nil && !utils.Midnight(inst.DueDate).Before(day) {
			due := utils.Midnight(inst.DueDate)
			nextDue = &due
		}
	}

	summary.InstallmentsPaid = paidCount
	summary.InstallmentsRemaining = loan.InstallmentCount - paidCount
	summary.NextDueDate = nextDue

	summary.TotalPending = loan.TotalAmount.Sub(summary.TotalPaid)
	if summary.TotalPending.IsNegative() {
		summary.TotalPending = decimal.Zero
	}

	summary.PercentPaid = PercentPaid(summary.TotalPaid, loan.TotalAmount)
	summary.FullyPaid = len(installments) > 0 && paidCount == len(installments)

	return summary
}

// PercentPaid formats paid/total as a percentage with two decimals. A zero
// total yields "0.00" instead of dividing by zero.
func PercentPaid(paid, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.00"
	}
	return paid.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

// Dashboard folds per-loan summaries into a client-wide position. Loans are
// summarized individually first so the same engine output backs both views.
func Dashboard(loans []*domain.Loan, installmentsByLoan map[string][]*domain.Installment, today time.Time) *domain.DashboardResponse {
	resp := &domain.DashboardResponse{
		TotalBorrowed:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		Loans:            []*domain.LoanOverview{},
	}

	for _, loan := range loans {
		summary := Summarize(loan, installmentsByLoan[loan.ID.String()], today)
		resp.Loans = append(resp.Loans, &domain.LoanOverview{Loan: loan, Summary: summary})

		resp.TotalBorrowed = resp.TotalBorrowed.Add(loan.TotalAmount)
		resp.TotalPaid = resp.TotalPaid.Add(summary.TotalPaid)
		resp.TotalOutstanding = resp.TotalOutstanding.Add(summary.TotalPending)

		if loan.Status == domain.LoanStatusActive && !summary.FullyPaid {
			resp.ActiveLoans++
		}
		for _, out := range summary.OutstandingInstallments {
			if out.Status == string(DisplayOverdue) {
				resp.OverdueCount++
			}
		}
		if summary.NextDueDate != nil {
			if resp.NextDueDate == nil || summary.NextDueDate.Before(*resp.NextDueDate) {
				resp.NextDueDate = summary.NextDueDate
			}
		}
	}

	return resp
}
