package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan is a credit extended to a client, repaid through a fixed schedule of
// installments. TotalPaid and RemainingAmount are cached aggregates kept in
// step with the installments: remaining_amount = max(0, total_amount -
// total_paid) on every mutation. Version guards concurrent payment updates
// (compare-and-swap on write).
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LegacyID         *int64          `json:"legacy_id,omitempty" db:"legacy_id"`
	ClientID         uuid.UUID       `json:"client_id" db:"client_id"`
	Principal        decimal.Decimal `json:"principal" db:"principal"`
	Gain             decimal.Decimal `json:"gain" db:"gain"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	InstallmentCount int             `json:"installment_count" db:"installment_count"`
	PaymentInterval  PaymentInterval `json:"payment_interval" db:"payment_interval"`
	LoanDate         time.Time       `json:"loan_date" db:"loan_date"`
	Status           LoanStatus      `json:"status" db:"status"`
	TotalPaid        decimal.Decimal `json:"total_paid" db:"total_paid"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	Version          int64           `json:"-" db:"version"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	Principal        decimal.Decimal `json:"principal" validate:"required"`
	Gain             decimal.Decimal `json:"gain"`
	InstallmentCount int             `json:"installment_count" validate:"required,gte=1"`
	PaymentInterval  string          `json:"payment_interval" validate:"required"`
	LoanDate         time.Time       `json:"loan_date" validate:"required"`
}

type CreateLoanResponse struct {
	Loan         *Loan          `json:"loan"`
	Installments []*Installment `json:"installments"`
}

// LoanSummary is the derived accounting view of a loan, produced exclusively
// by the accounting engine. Handlers and the frontend consume it as-is and
// never re-derive the figures.
type LoanSummary struct {
	TotalPaid               decimal.Decimal           `json:"totalPaid"`
	InstallmentsPaid        int                       `json:"installmentsPaid"`
	InstallmentsRemaining   int                       `json:"installmentsRemaining"`
	TotalPending            decimal.Decimal           `json:"totalPending"`
	NextDueDate             *time.Time                `json:"nextDueDate"`
	PercentPaid             string                    `json:"percentPaid"`
	FullyPaid               bool                      `json:"fullyPaid"`
	OutstandingInstallments []*OutstandingInstallment `json:"outstandingInstallments"`
}

// OutstandingInstallment is one not-fully-paid schedule entry in a summary.
// DaysLate is zero for entries not yet past their due date.
type OutstandingInstallment struct {
	Number        int             `json:"number"`
	EstimatedDate time.Time       `json:"estimatedDate"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	IsPaid        bool            `json:"isPaid"`
	DaysLate      int             `json:"daysLate"`
}

// LoanDetailResponse pairs a loan with its installments and summary.
type LoanDetailResponse struct {
	Loan         *Loan          `json:"loan"`
	Installments []*Installment `json:"installments"`
	Summary      *LoanSummary   `json:"summary"`
}

// LoanOverview is the per-loan row in list and dashboard responses.
type LoanOverview struct {
	Loan    *Loan        `json:"loan"`
	Summary *LoanSummary `json:"summary"`
}

// DashboardResponse aggregates a client's position across all loans.
type DashboardResponse struct {
	ActiveLoans      int             `json:"activeLoans"`
	TotalBorrowed    decimal.Decimal `json:"totalBorrowed"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	OverdueCount     int             `json:"overdueCount"`
	NextDueDate      *time.Time      `json:"nextDueDate"`
	Loans            []*LoanOverview `json:"loans"`
}
