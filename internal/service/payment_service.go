package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/repository"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/prestaweb/api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// casRetries bounds how often a payment update re-reads the loan after
// losing the version race before giving up.
const casRetries = 3

type PaymentService struct {
	loanRepo        repository.LoanRepository
	installmentRepo repository.InstallmentRepository
	notifications   *NotificationService
	cache           repository.SummaryCache
	log             *logrus.Logger
}

func NewPaymentService(
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	notifications *NotificationService,
	cache repository.SummaryCache,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		notifications:   notifications,
		cache:           cache,
		log:             log,
	}
}

// RecordPayment applies a full or partial payment to an installment. The
// installment moves pending -> paid when the received total covers the
// amount due, pending -> partial otherwise, and the parent loan's cached
// totals are updated through the version-guarded conditional write so that
// at most one payment-amount update lands at a time per loan.
func (s *PaymentService) RecordPayment(ctx context.Context, installmentID uuid.UUID, req *domain.RecordPaymentRequest) (*domain.Installment, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidAmount,
			"payment amount must be greater than zero", customError.ErrInvalidAmount)
	}

	inst, err := s.getInstallment(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	if inst.Status == domain.InstallmentStatusPaid {
		return nil, customError.WrapInstallmentSettled(installmentID.String())
	}

	loan, err := s.loanRepo.GetByID(ctx, inst.LoanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loan.ID.String())
	}

	remaining := inst.Amount.Sub(inst.PaidSoFar())
	if req.Amount.GreaterThan(remaining) {
		return nil, customError.WrapPaymentExceedsDue(remaining.String(), req.Amount.String())
	}

	received := inst.PaidSoFar().Add(req.Amount)
	paidDate := time.Now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}
	paidDate = utils.Midnight(paidDate)
	if paidDate.After(utils.Midnight(time.Now())) {
		return nil, customError.WrapInvalidPaidDate(paidDate.Format("2006-01-02"))
	}

	snapshot := *inst
	if received.Equal(inst.Amount) {
		inst.Status = domain.InstallmentStatusPaid
		inst.PaidDate = &paidDate
		inst.IncompleteAmount = nil
	} else {
		inst.Status = domain.InstallmentStatusPartial
		inst.IncompleteAmount = &received
	}
	if req.PaymentMethod != "" {
		inst.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != "" {
		inst.Notes = req.Notes
	}

	if err := s.installmentRepo.Update(ctx, inst); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := s.applyDelta(ctx, loan, req.Amount)
	if err != nil {
		// The totals never moved, so the installment must not stay marked
		// as paid. Put it back the way it was.
		*inst = snapshot
		if revertErr := s.installmentRepo.Update(ctx, inst); revertErr != nil {
			s.log.WithError(revertErr).WithFields(logrus.Fields{
				"installment_id": inst.ID,
				"loan_id":        loan.ID,
			}).Error("reverting installment after failed totals update")
		}
		return nil, err
	}
	loan = updated

	if loan.TotalPaid.GreaterThanOrEqual(loan.TotalAmount) && loan.Status == domain.LoanStatusActive {
		if err := s.loanRepo.UpdateStatus(ctx, loan.ID, domain.LoanStatusCompleted); err != nil {
			s.log.WithError(err).WithField("loan_id", loan.ID).Error("marking loan completed")
		}
	}

	s.invalidate(ctx, loan)
	s.notifyPayment(ctx, loan, inst, req.Amount)

	s.log.WithFields(logrus.Fields{
		"installment_id": inst.ID,
		"loan_id":        loan.ID,
		"amount":         req.Amount.String(),
		"status":         inst.Status,
	}).Info("payment recorded")

	return inst, nil
}

// DeleteInstallment removes an installment and rolls the amount it had
// received back out of the parent loan's totals. A completed loan reverts
// to active when money comes back off it.
func (s *PaymentService) DeleteInstallment(ctx context.Context, installmentID uuid.UUID) error {
	inst, err := s.getInstallment(ctx, installmentID)
	if err != nil {
		return err
	}

	loan, err := s.loanRepo.GetByID(ctx, inst.LoanID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	// The totals come off first so a lost version race leaves the
	// installment untouched. If the delete itself then fails, the amount
	// goes back on.
	rollback := inst.PaidSoFar().Neg()
	if !rollback.IsZero() {
		if loan, err = s.applyDelta(ctx, loan, rollback); err != nil {
			return err
		}
	}

	if err := s.installmentRepo.Delete(ctx, installmentID); err != nil {
		if !rollback.IsZero() {
			if _, restoreErr := s.applyDelta(ctx, loan, rollback.Neg()); restoreErr != nil {
				s.log.WithError(restoreErr).WithField("loan_id", loan.ID).Error("restoring loan totals after failed installment delete")
			}
		}
		return customError.WrapDatabaseError(err)
	}

	if loan.Status == domain.LoanStatusCompleted && loan.TotalPaid.LessThan(loan.TotalAmount) {
		if err := s.loanRepo.UpdateStatus(ctx, loan.ID, domain.LoanStatusActive); err != nil {
			s.log.WithError(err).WithField("loan_id", loan.ID).Error("reopening loan")
		}
	}

	s.invalidate(ctx, loan)
	s.log.WithFields(logrus.Fields{
		"installment_id": installmentID,
		"loan_id":        loan.ID,
	}).Info("installment deleted")

	return nil
}

// AddAttachment records proof-of-payment metadata for an installment. The
// file itself was already uploaded to the external store by the caller.
func (s *PaymentService) AddAttachment(ctx context.Context, installmentID uuid.UUID, req *domain.AddAttachmentRequest) (*domain.Attachment, error) {
	if _, err := s.getInstallment(ctx, installmentID); err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		ID:            uuid.New(),
		InstallmentID: installmentID,
		StorageID:     req.StorageID,
		URL:           req.URL,
		Filename:      req.Filename,
		UploadedAt:    time.Now(),
	}

	if err := s.installmentRepo.AddAttachment(ctx, attachment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return attachment, nil
}

// ListAttachments lists proof-of-payment metadata for an installment.
func (s *PaymentService) ListAttachments(ctx context.Context, installmentID uuid.UUID) ([]*domain.Attachment, error) {
	attachments, err := s.installmentRepo.ListAttachments(ctx, installmentID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return attachments, nil
}

// applyDelta runs the version-guarded totals update, re-reading the loan and
// retrying when another writer won the race. Returns the reloaded loan.
func (s *PaymentService) applyDelta(ctx context.Context, loan *domain.Loan, delta decimal.Decimal) (*domain.Loan, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		applied, err := s.loanRepo.ApplyPaymentDelta(ctx, loan.ID, delta, loan.Version)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if applied {
			reloaded, err := s.loanRepo.GetByID(ctx, loan.ID)
			if err != nil {
				return nil, customError.WrapDatabaseError(err)
			}
			return reloaded, nil
		}

		loan, err = s.loanRepo.GetByID(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}
	return nil, customError.WrapConcurrentUpdate(loan.ID.String())
}

func (s *PaymentService) getInstallment(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	inst, err := s.installmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return inst, nil
}

func (s *PaymentService) invalidate(ctx context.Context, loan *domain.Loan) {
	err := s.cache.Invalidate(ctx,
		repository.LoanSummaryKey(loan.ID.String()),
		repository.DashboardKey(loan.ClientID.String()),
	)
	if err != nil {
		s.log.WithError(customError.WrapCacheError(err)).Warn("invalidating summary cache")
	}
}

func (s *PaymentService) notifyPayment(ctx context.Context, loan *domain.Loan, inst *domain.Installment, amount decimal.Decimal) {
	if s.notifications == nil {
		return
	}

	title := "Payment received"
	body := fmt.Sprintf("We received %s toward installment %d of your loan.", amount.StringFixed(2), inst.Number)
	if inst.Status == domain.InstallmentStatusPaid {
		body = fmt.Sprintf("Installment %d of your loan is paid in full.", inst.Number)
	}

	if err := s.notifications.Notify(ctx, loan.ClientID, title, body); err != nil {
		s.log.WithError(err).Warn("sending payment notification")
	}
}
