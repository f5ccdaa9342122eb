package utils

import (
	"time"

	"github.com/prestaweb/api/internal/domain"
	"github.com/shopspring/decimal"
)

// Midnight truncates a timestamp to midnight UTC. All day-granularity
// comparisons in the accounting engine go through this so that time-of-day
// and zone offsets never influence lateness.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from one date to another, flooring
// fractional days. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// ScheduleDate returns the due date of the 1-based nth installment for a
// schedule starting at loanDate with the given interval. The first
// installment falls one interval after the loan date.
func ScheduleDate(loanDate time.Time, interval domain.PaymentInterval, n int) time.Time {
	start := Midnight(loanDate)
	switch interval {
	case domain.IntervalDaily:
		return start.AddDate(0, 0, n)
	case domain.IntervalWeekly:
		return start.AddDate(0, 0, 7*n)
	case domain.IntervalBiweekly:
		return start.AddDate(0, 0, 14*n)
	case domain.IntervalMonthly:
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, 7*n)
}

// SplitAmount divides a loan total across count installments, rounding each
// share to 2 decimal places. The last installment absorbs the rounding
// remainder so the shares always sum to the total.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}
	share := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	amounts := make([]decimal.Decimal, count)
	running := decimal.Zero
	for i := 0; i < count-1; i++ {
		amounts[i] = share
		running = running.Add(share)
	}
	amounts[count-1] = total.Sub(running)
	return amounts
}
