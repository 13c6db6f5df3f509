package models

import "time"

// DueStatus classifies how close a maintenance cycle is to its due point.
type DueStatus string

const (
	DueNone  DueStatus = "" // no usable schedule
	DueOK    DueStatus = "ok"
	DueSoon  DueStatus = "due_soon"
	DueToday DueStatus = "due_today" // calendar plans only
	DueOver  DueStatus = "overdue"
)

// DueInfo is the interval evaluator's output. NextDueAt is set for calendar
// plans, NextDueHours/RemainingHours for hours plans.
type DueInfo struct {
	Status         DueStatus  `json:"status,omitempty"`
	NextDueAt      *time.Time `json:"next_due_at,omitempty"`
	NextDueHours   *float64   `json:"next_due_hours,omitempty"`
	RemainingHours *float64   `json:"remaining_hours,omitempty"`
}

// EvaluateCalendarDue computes next_due = lastCompleted + interval and
// classifies it against now. lookaheadDays bounds the due_soon window.
func EvaluateCalendarDue(lastCompleted time.Time, intervalType string, intervalValue int, now time.Time, lookaheadDays int) DueInfo {
	if intervalValue < 1 {
		return DueInfo{Status: DueNone}
	}

	var nextDue time.Time
	switch intervalType {
	case IntervalDays:
		nextDue = lastCompleted.AddDate(0, 0, intervalValue)
	case IntervalWeeks:
		nextDue = lastCompleted.AddDate(0, 0, 7*intervalValue)
	case IntervalMonths:
		nextDue = lastCompleted.AddDate(0, intervalValue, 0)
	default:
		return DueInfo{Status: DueNone}
	}

	info := DueInfo{NextDueAt: &nextDue}
	switch {
	case nextDue.Before(now):
		info.Status = DueOver
	case sameDay(nextDue, now):
		info.Status = DueToday
	case !nextDue.After(now.AddDate(0, 0, lookaheadDays)):
		info.Status = DueSoon
	default:
		info.Status = DueOK
	}
	return info
}

// EvaluateHoursDue computes next_due_hours = lastCompletedHours +
// intervalHours and classifies the machine's current reading against it.
// There is no due_today in hours mode; counters have no calendar-day
// semantics.
func EvaluateHoursDue(lastCompletedHours, intervalHours, currentHours, dueSoonThreshold float64) DueInfo {
	if intervalHours <= 0 {
		return DueInfo{Status: DueNone}
	}

	nextDue := lastCompletedHours + intervalHours
	remaining := nextDue - currentHours
	info := DueInfo{NextDueHours: &nextDue, RemainingHours: &remaining}
	switch {
	case currentHours >= nextDue:
		info.Status = DueOver
	case remaining < dueSoonThreshold:
		info.Status = DueSoon
	default:
		info.Status = DueOK
	}
	return info
}

// Evaluate runs the matching evaluator for this plan against the machine's
// maintenance history and counter reading. A plan with no usable interval
// config, or a machine never maintained under an hours plan without a
// reading, yields DueNone ("no schedule").
func (p *MaintenancePlan) Evaluate(m *Machine, now time.Time, lookaheadDays int, dueSoonHours float64) DueInfo {
	if p.UsesHours() {
		last := 0.0
		if m.LastMaintainedHours != nil {
			last = *m.LastMaintainedHours
		}
		return EvaluateHoursDue(last, p.IntervalHours, m.OperatingHours, dueSoonHours)
	}

	// Calendar plans fall back to machine creation when never maintained,
	// so a fresh machine still gets its first cycle scheduled.
	last := m.CreatedAt
	if m.LastMaintainedAt != nil {
		last = *m.LastMaintainedAt
	}
	return EvaluateCalendarDue(last, p.IntervalType, p.IntervalValue, now, lookaheadDays)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
