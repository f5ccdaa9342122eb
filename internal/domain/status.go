package domain

import "strings"

// LoanStatus is the persisted lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// InstallmentStatus is the persisted state of a single installment.
// "overdue" may be written by the reclassification job, but consumers must
// treat it as derived: display classification always re-checks the due date.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusPartial InstallmentStatus = "partial"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// PaymentInterval is the spacing between scheduled installments.
type PaymentInterval string

const (
	IntervalDaily    PaymentInterval = "daily"
	IntervalWeekly   PaymentInterval = "weekly"
	IntervalBiweekly PaymentInterval = "biweekly"
	IntervalMonthly  PaymentInterval = "monthly"
)

// Legacy records carry mixed English/Spanish status literals. Everything is
// normalized to the canonical enums at the persistence boundary, never
// compared ad hoc in handlers or services.
var legacyInstallmentStatus = map[string]InstallmentStatus{
	"pending":    InstallmentStatusPending,
	"pendiente":  InstallmentStatusPending,
	"paid":       InstallmentStatusPaid,
	"pagado":     InstallmentStatusPaid,
	"completado": InstallmentStatusPaid,
	"partial":    InstallmentStatusPartial,
	"incomplete": InstallmentStatusPartial,
	"incompleto": InstallmentStatusPartial,
	"overdue":    InstallmentStatusOverdue,
	"expired":    InstallmentStatusOverdue,
	"vencido":    InstallmentStatusOverdue,
}

var legacyLoanStatus = map[string]LoanStatus{
	"active":     LoanStatusActive,
	"activo":     LoanStatusActive,
	"completed":  LoanStatusCompleted,
	"completado": LoanStatusCompleted,
	"cancelled":  LoanStatusCancelled,
	"cancelado":  LoanStatusCancelled,
}

var legacyInterval = map[string]PaymentInterval{
	"daily":     IntervalDaily,
	"diario":    IntervalDaily,
	"weekly":    IntervalWeekly,
	"semanal":   IntervalWeekly,
	"biweekly":  IntervalBiweekly,
	"quincenal": IntervalBiweekly,
	"monthly":   IntervalMonthly,
	"mensual":   IntervalMonthly,
}

// ParseInstallmentStatus maps a stored literal (canonical or legacy) to its
// canonical status. The second return is false for unknown literals.
func ParseInstallmentStatus(s string) (InstallmentStatus, bool) {
	status, ok := legacyInstallmentStatus[strings.ToLower(strings.TrimSpace(s))]
	return status, ok
}

// ParseLoanStatus maps a stored literal (canonical or legacy) to its
// canonical status.
func ParseLoanStatus(s string) (LoanStatus, bool) {
	status, ok := legacyLoanStatus[strings.ToLower(strings.TrimSpace(s))]
	return status, ok
}

// ParseInterval maps a stored literal (canonical or legacy) to its canonical
// payment interval.
func ParseInterval(s string) (PaymentInterval, bool) {
	interval, ok := legacyInterval[strings.ToLower(strings.TrimSpace(s))]
	return interval, ok
}

// IsValid reports whether the interval is one of the canonical values.
func (p PaymentInterval) IsValid() bool {
	switch p {
	case IntervalDaily, IntervalWeekly, IntervalBiweekly, IntervalMonthly:
		return true
	}
	return false
}
