package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = `id, legacy_id, loan_id, number, amount, due_date, paid_date, status,
	incomplete_amount, payment_method, notes, created_at, updated_at`

func (r *installmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE id = $1
	`

	var inst domain.Installment
	if err := r.db.GetContext(ctx, &inst, query, id); err != nil {
		return nil, err
	}

	normalizeInstallment(&inst)
	return &inst, nil
}

func (r *installmentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY number
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, loanID); err != nil {
		return nil, err
	}

	for _, inst := range installments {
		normalizeInstallment(inst)
	}
	return installments, nil
}

func (r *installmentRepository) ListByLoans(ctx context.Context, loanIDs []uuid.UUID) (map[string][]*domain.Installment, error) {
	grouped := make(map[string][]*domain.Installment, len(loanIDs))
	if len(loanIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+installmentColumns+`
		FROM installments
		WHERE loan_id IN (?)
		ORDER BY loan_id, number
	`, loanIDs)
	if err != nil {
		return nil, err
	}

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, inst := range installments {
		normalizeInstallment(inst)
		key := inst.LoanID.String()
		grouped[key] = append(grouped[key], inst)
	}
	return grouped, nil
}

func (r *installmentRepository) Update(ctx context.Context, installment *domain.Installment) error {
	query := `
		UPDATE installments
		SET status = $2, paid_date = $3, incomplete_amount = $4, payment_method = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		installment.ID,
		installment.Status,
		installment.PaidDate,
		installment.IncompleteAmount,
		installment.PaymentMethod,
		installment.Notes,
	)
	return err
}

func (r *installmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE id = $1`, id)
	return err
}

// MarkOverdue persists the pending-to-overdue reclassification for records
// past their due date. Display classification derives the same state from
// dates, so correctness does not depend on when this runs.
func (r *installmentRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE installments
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'pending' AND due_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, utils.Midnight(asOf))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *installmentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*DueReminder, error) {
	query := `
		SELECT c.name AS client_name, c.email AS client_email,
			i.loan_id, i.number, i.amount, i.due_date
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		JOIN clients c ON c.id = l.client_id
		WHERE i.status IN ('pending', 'partial')
			AND i.due_date >= $1 AND i.due_date < $2
			AND l.status = 'active'
		ORDER BY i.due_date
	`

	var reminders []*DueReminder
	if err := r.db.SelectContext(ctx, &reminders, query, from, to); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *installmentRepository) AddAttachment(ctx context.Context, attachment *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, installment_id, storage_id, url, filename, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		attachment.ID,
		attachment.InstallmentID,
		attachment.StorageID,
		attachment.URL,
		attachment.Filename,
		attachment.UploadedAt,
	)
	return err
}

func (r *installmentRepository) ListAttachments(ctx context.Context, installmentID uuid.UUID) ([]*domain.Attachment, error) {
	query := `
		SELECT id, installment_id, storage_id, url, filename, uploaded_at
		FROM attachments
		WHERE installment_id = $1
		ORDER BY uploaded_at
	`

	var attachments []*domain.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, installmentID); err != nil {
		return nil, err
	}
	return attachments, nil
}

func normalizeInstallment(inst *domain.Installment) {
	if status, ok := domain.ParseInstallmentStatus(string(inst.Status)); ok {
		inst.Status = status
	}
}
