package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled repayment unit of a loan. Number is the
// 1-based position in the schedule; insertion order is schedule order.
// IncompleteAmount is set only while the status is partial and holds the
// amount actually received so far.
type Installment struct {
	ID               uuid.UUID         `json:"id" db:"id"`
	LegacyID         *int64            `json:"legacy_id,omitempty" db:"legacy_id"`
	LoanID           uuid.UUID         `json:"loan_id" db:"loan_id"`
	Number           int               `json:"number" db:"number"`
	Amount           decimal.Decimal   `json:"amount" db:"amount"`
	DueDate          time.Time         `json:"due_date" db:"due_date"`
	PaidDate         *time.Time        `json:"paid_date" db:"paid_date"`
	Status           InstallmentStatus `json:"status" db:"status"`
	IncompleteAmount *decimal.Decimal  `json:"incomplete_amount" db:"incomplete_amount"`
	PaymentMethod    string            `json:"payment_method" db:"payment_method"`
	Notes            string            `json:"notes" db:"notes"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// PaidSoFar returns the amount received on this installment: the full amount
// when paid, the incomplete amount when partial, zero otherwise.
func (i *Installment) PaidSoFar() decimal.Decimal {
	switch i.Status {
	case InstallmentStatusPaid:
		return i.Amount
	case InstallmentStatusPartial:
		if i.IncompleteAmount != nil {
			return *i.IncompleteAmount
		}
	}
	return decimal.Zero
}

// Attachment is proof-of-payment metadata for an installment. The file bytes
// live in an external store; only the reference is kept here.
type Attachment struct {
	ID            uuid.UUID `json:"id" db:"id"`
	InstallmentID uuid.UUID `json:"installment_id" db:"installment_id"`
	StorageID     string    `json:"storage_id" db:"storage_id"`
	URL           string    `json:"url" db:"url"`
	Filename      string    `json:"filename" db:"filename"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	PaidDate      *time.Time      `json:"paid_date"`
}

type AddAttachmentRequest struct {
	StorageID string `json:"storage_id" validate:"required"`
	URL       string `json:"url" validate:"required,url"`
	Filename  string `json:"filename" validate:"required"`
}
