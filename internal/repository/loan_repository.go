package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/shopspring/decimal"

	"github.com/jmoiron/sqlx"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan, installments []*domain.Installment) error {
	loanQuery := `
		INSERT INTO loans (id, legacy_id, client_id, principal, gain, total_amount, installment_count,
			payment_interval, loan_date, status, total_paid, remaining_amount, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	installmentQuery := `
		INSERT INTO installments (id, legacy_id, loan_id, number, amount, due_date, paid_date, status,
			incomplete_amount, payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, loanQuery,
		loan.ID,
		loan.LegacyID,
		loan.ClientID,
		loan.Principal,
		loan.Gain,
		loan.TotalAmount,
		loan.InstallmentCount,
		loan.PaymentInterval,
		loan.LoanDate,
		loan.Status,
		loan.TotalPaid,
		loan.RemainingAmount,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			inst.ID,
			inst.LegacyID,
			inst.LoanID,
			inst.Number,
			inst.Amount,
			inst.DueDate,
			inst.PaidDate,
			inst.Status,
			inst.IncompleteAmount,
			inst.PaymentMethod,
			inst.Notes,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, legacy_id, client_id, principal, gain, total_amount, installment_count,
			payment_interval, loan_date, status, total_paid, remaining_amount, version, created_at, updated_at
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	normalizeLoan(&loan)
	return &loan, nil
}

func (r *loanRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT id, legacy_id, client_id, principal, gain, total_amount, installment_count,
			payment_interval, loan_date, status, total_paid, remaining_amount, version, created_at, updated_at
		FROM loans
		WHERE client_id = $1
		ORDER BY loan_date
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, clientID); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		normalizeLoan(loan)
	}
	return loans, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT id, legacy_id, client_id, principal, gain, total_amount, installment_count,
			payment_interval, loan_date, status, total_paid, remaining_amount, version, created_at, updated_at
		FROM loans
		WHERE status = 'active'
		ORDER BY loan_date
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		normalizeLoan(loan)
	}
	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error {
	query := `
		UPDATE loans
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

// ApplyPaymentDelta is the single write path for the cached totals. The
// version predicate makes the read-modify-write atomic: a concurrent writer
// bumps the version first and this statement then matches zero rows.
// total_paid is clamped to [0, total_amount] and remaining_amount recomputed
// in the same statement, so the invariants hold on every commit.
func (r *loanRepository) ApplyPaymentDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal, version int64) (bool, error) {
	query := `
		UPDATE loans
		SET total_paid = LEAST(GREATEST(total_paid + $2, 0), total_amount),
			remaining_amount = GREATEST(total_amount - LEAST(GREATEST(total_paid + $2, 0), total_amount), 0),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, delta, version)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *loanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	return err
}

// normalizeLoan folds legacy status and interval literals into the canonical
// enums right at the persistence boundary.
func normalizeLoan(loan *domain.Loan) {
	if status, ok := domain.ParseLoanStatus(string(loan.Status)); ok {
		loan.Status = status
	}
	if interval, ok := domain.ParseInterval(string(loan.PaymentInterval)); ok {
		loan.PaymentInterval = interval
	}
}
