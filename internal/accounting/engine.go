// Package accounting derives every figure the portal shows for a loan from
// its stored installment records: display status per installment, paid and
// pending balances, schedule projection and lateness. It is the single place
// this arithmetic lives; handlers, the scheduler and the frontend all consume
// its output instead of re-deriving it.
//
// Everything here is a pure function of its inputs. The reference date is an
// explicit parameter, so identical inputs always produce identical output.
package accounting

import (
	"time"

	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/pkg/utils"
)

// DisplayStatus is the four-state classification shown to users. It is
// derived, never persisted: an installment stored as pending is displayed as
// Overdue once its due date has passed, whether or not the reclassification
// job has run.
type DisplayStatus string

const (
	DisplayPending DisplayStatus = "Pending"
	DisplayPaid    DisplayStatus = "Paid"
	DisplayPartial DisplayStatus = "Partial"
	DisplayOverdue DisplayStatus = "Overdue"
)

// Classify maps an installment's stored state and due date to its display
// status as of the given date. A stored paid or partial status wins
// regardless of dates; pending past its due date becomes Overdue.
func Classify(inst *domain.Installment, today time.Time) DisplayStatus {
	switch inst.Status {
	case domain.InstallmentStatusPaid:
		return DisplayPaid
	case domain.InstallmentStatusPartial:
		return DisplayPartial
	case domain.InstallmentStatusOverdue:
		return DisplayOverdue
	}
	if utils.Midnight(inst.DueDate).Before(utils.Midnight(today)) {
		return DisplayOverdue
	}
	return DisplayPending
}

// Lateness returns the whole days an installment is or was late, at day
// granularity. A paid installment is late by the gap between due date and
// paid date when the paid date is the later of the two; equal dates are not
// late. An unpaid installment past due is late by the gap to today. Anything
// else, including a paid installment with no recorded paid date, is 0.
func Lateness(inst *domain.Installment, today time.Time) int {
	status := Classify(inst, today)
	switch status {
	case DisplayPaid:
		if inst.PaidDate == nil {
			return 0
		}
		if d := utils.DaysBetween(inst.DueDate, *inst.PaidDate); d > 0 {
			return d
		}
		return 0
	case DisplayPartial, DisplayOverdue, DisplayPending:
		if d := utils.DaysBetween(inst.DueDate, today); d > 0 {
			return d
		}
	}
	return 0
}
