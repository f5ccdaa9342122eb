package accounting

import (
	"testing"
	"time"

	"github.com/prestaweb/api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.InstallmentStatus
		dueDate  time.Time
		expected DisplayStatus
	}{
		{
			name:     "paid stays paid even past due",
			status:   domain.InstallmentStatusPaid,
			dueDate:  date(2025, 6, 1),
			expected: DisplayPaid,
		},
		{
			name:     "partial stays partial even past due",
			status:   domain.InstallmentStatusPartial,
			dueDate:  date(2025, 6, 1),
			expected: DisplayPartial,
		},
		{
			name:     "pending before due date",
			status:   domain.InstallmentStatusPending,
			dueDate:  date(2025, 7, 1),
			expected: DisplayPending,
		},
		{
			name:     "pending due today is not overdue",
			status:   domain.InstallmentStatusPending,
			dueDate:  date(2025, 6, 15),
			expected: DisplayPending,
		},
		{
			name:     "pending past due is displayed overdue",
			status:   domain.InstallmentStatusPending,
			dueDate:  date(2025, 6, 10),
			expected: DisplayOverdue,
		},
		{
			name:     "persisted overdue is kept",
			status:   domain.InstallmentStatusOverdue,
			dueDate:  date(2025, 6, 10),
			expected: DisplayOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &domain.Installment{Status: tt.status, DueDate: tt.dueDate}
			assert.Equal(t, tt.expected, Classify(inst, today))
		})
	}
}

func TestLateness(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.InstallmentStatus
		dueDate  time.Time
		paidDate *time.Time
		expected int
	}{
		{
			name:     "paid on due date is not late",
			status:   domain.InstallmentStatusPaid,
			dueDate:  date(2025, 6, 1),
			paidDate: datePtr(2025, 6, 1),
			expected: 0,
		},
		{
			name:     "paid before due date is not late",
			status:   domain.InstallmentStatusPaid,
			dueDate:  date(2025, 6, 10),
			paidDate: datePtr(2025, 6, 5),
			expected: 0,
		},
		{
			name:     "paid three days after due",
			status:   domain.InstallmentStatusPaid,
			dueDate:  date(2025, 6, 1),
			paidDate: datePtr(2025, 6, 4),
			expected: 3,
		},
		{
			name:     "paid without recorded paid date",
			status:   domain.InstallmentStatusPaid,
			dueDate:  date(2025, 6, 1),
			expected: 0,
		},
		{
			name:     "pending five days past due",
			status:   domain.InstallmentStatusPending,
			dueDate:  date(2025, 6, 10),
			expected: 5,
		},
		{
			name:     "pending not yet due",
			status:   domain.InstallmentStatusPending,
			dueDate:  date(2025, 7, 1),
			expected: 0,
		},
		{
			name:     "partial past due counts from due date",
			status:   domain.InstallmentStatusPartial,
			dueDate:  date(2025, 6, 13),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &domain.Installment{Status: tt.status, DueDate: tt.dueDate, PaidDate: tt.paidDate}
			assert.Equal(t, tt.expected, Lateness(inst, today))
		})
	}
}

func TestLatenessIgnoresTimeOfDay(t *testing.T) {
	// Due late in the evening, paid early next morning: one whole day late.
	inst := &domain.Installment{
		Status:   domain.InstallmentStatusPaid,
		DueDate:  time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC),
		PaidDate: func() *time.Time { t := time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC); return &t }(),
	}
	assert.Equal(t, 1, Lateness(inst, today))
}

func TestPercentPaid(t *testing.T) {
	assert.Equal(t, "0.00", PercentPaid(decimal.Zero, decimal.Zero))
	assert.Equal(t, "0.00", PercentPaid(decimal.NewFromInt(100), decimal.Zero))
	assert.Equal(t, "50.00", PercentPaid(decimal.NewFromInt(500), decimal.NewFromInt(1000)))
	assert.Equal(t, "33.33", PercentPaid(decimal.NewFromInt(1), decimal.NewFromInt(3)))
	assert.Equal(t, "100.00", PercentPaid(decimal.NewFromInt(1000), decimal.NewFromInt(1000)))
}
