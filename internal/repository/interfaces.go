package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	// Create creates a new client
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// GetByAccessCode retrieves a client by its portal access code
	GetByAccessCode(ctx context.Context, code string) (*domain.Client, error)

	// List retrieves all clients
	List(ctx context.Context) ([]*domain.Client, error)

	// Update updates a client
	Update(ctx context.Context, client *domain.Client) error

	// Delete removes a client; loans and installments cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for staff account operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a loan together with its full installment schedule in
	// one transaction
	Create(ctx context.Context, loan *domain.Loan, installments []*domain.Installment) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListByClient retrieves all loans of one client
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error)

	// ListActive retrieves all active loans (used by the scheduler)
	ListActive(ctx context.Context) ([]*domain.Loan, error)

	// UpdateStatus sets the persisted loan status
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error

	// ApplyPaymentDelta adds delta to total_paid and recomputes
	// remaining_amount in a single conditional update guarded by the loan's
	// version column. Returns false when the version did not match and the
	// caller must reload and retry.
	ApplyPaymentDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal, version int64) (bool, error)

	// Delete removes a loan; its installments cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstallmentRepository defines the interface for installment data operations
type InstallmentRepository interface {
	// GetByID retrieves an installment by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// ListByLoan retrieves a loan's installments in schedule order
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)

	// ListByLoans retrieves installments for several loans, keyed by loan id
	ListByLoans(ctx context.Context, loanIDs []uuid.UUID) (map[string][]*domain.Installment, error)

	// Update persists status, paid date, incomplete amount, method and notes
	Update(ctx context.Context, installment *domain.Installment) error

	// Delete removes an installment
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkOverdue reclassifies pending installments past their due date and
	// returns how many rows changed
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)

	// ListDueBetween lists not-fully-paid installments due inside the window
	// joined with their client, for reminder delivery
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*DueReminder, error)

	// AddAttachment stores proof-of-payment metadata
	AddAttachment(ctx context.Context, attachment *domain.Attachment) error

	// ListAttachments lists proof-of-payment metadata for an installment
	ListAttachments(ctx context.Context, installmentID uuid.UUID) ([]*domain.Attachment, error)
}

// NotificationRepository defines the interface for notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, clientID uuid.UUID) error
}

// SummaryCache caches serialized derived views (loan summaries, dashboards)
// keyed by loan or client id.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// DueReminder is one upcoming installment joined with its client, consumed by
// the reminder job.
type DueReminder struct {
	ClientName  string          `db:"client_name"`
	ClientEmail string          `db:"client_email"`
	LoanID      uuid.UUID       `db:"loan_id"`
	Number      int             `db:"number"`
	Amount      decimal.Decimal `db:"amount"`
	DueDate     time.Time       `db:"due_date"`
}
