package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCalendarDue(t *testing.T) {
	now := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

	t.Run("next due is last completed plus interval", func(t *testing.T) {
		last := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		info := EvaluateCalendarDue(last, IntervalDays, 30, now, 7)
		require.NotNil(t, info.NextDueAt)
		assert.Equal(t, last.AddDate(0, 0, 30), *info.NextDueAt)
		assert.Equal(t, DueOK, info.Status)
	})

	t.Run("overdue iff next due before now", func(t *testing.T) {
		last := now.AddDate(0, 0, -31)
		info := EvaluateCalendarDue(last, IntervalDays, 30, now, 7)
		assert.Equal(t, DueOver, info.Status)

		// exactly 30 days ago at the same clock time: due right now, not past
		last = now.AddDate(0, 0, -30)
		info = EvaluateCalendarDue(last, IntervalDays, 30, now, 7)
		assert.Equal(t, DueToday, info.Status)
	})

	t.Run("due today on the same calendar day even later in the day", func(t *testing.T) {
		last := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)
		info := EvaluateCalendarDue(last, IntervalWeeks, 2, now, 7)
		require.NotNil(t, info.NextDueAt)
		assert.Equal(t, time.Date(2025, 6, 16, 23, 30, 0, 0, time.UTC), *info.NextDueAt)
		assert.Equal(t, DueToday, info.Status)
	})

	t.Run("due soon within the lookahead window", func(t *testing.T) {
		last := now.AddDate(0, 0, -25)
		info := EvaluateCalendarDue(last, IntervalDays, 30, now, 7)
		assert.Equal(t, DueSoon, info.Status)

		// one day past the window
		info = EvaluateCalendarDue(last, IntervalDays, 33, now, 7)
		assert.Equal(t, DueOK, info.Status)
	})

	t.Run("month intervals use calendar months", func(t *testing.T) {
		last := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
		info := EvaluateCalendarDue(last, IntervalMonths, 3, now, 7)
		require.NotNil(t, info.NextDueAt)
		assert.Equal(t, last.AddDate(0, 3, 0), *info.NextDueAt)
	})

	t.Run("invalid config means no schedule", func(t *testing.T) {
		last := now.AddDate(0, 0, -10)
		assert.Equal(t, DueNone, EvaluateCalendarDue(last, "fortnights", 2, now, 7).Status)
		assert.Equal(t, DueNone, EvaluateCalendarDue(last, IntervalDays, 0, now, 7).Status)
	})
}

func TestEvaluateHoursDue(t *testing.T) {
	t.Run("worked example: 480h + 500h interval", func(t *testing.T) {
		// reading 520h: next due at 980h, well before the 50h threshold
		info := EvaluateHoursDue(480, 500, 520, 50)
		require.NotNil(t, info.NextDueHours)
		assert.Equal(t, 980.0, *info.NextDueHours)
		assert.Equal(t, DueOK, info.Status)

		// reading 1000h: past 980h, overdue
		info = EvaluateHoursDue(480, 500, 1000, 50)
		assert.Equal(t, DueOver, info.Status)
	})

	t.Run("overdue exactly at the due reading", func(t *testing.T) {
		info := EvaluateHoursDue(480, 500, 980, 50)
		assert.Equal(t, DueOver, info.Status)
	})

	t.Run("due soon under the remaining-hours threshold", func(t *testing.T) {
		info := EvaluateHoursDue(480, 500, 940, 50)
		require.NotNil(t, info.RemainingHours)
		assert.Equal(t, 40.0, *info.RemainingHours)
		assert.Equal(t, DueSoon, info.Status)
	})

	t.Run("no due_today concept in hours mode", func(t *testing.T) {
		for _, current := range []float64{0, 500, 979.9, 980, 2000} {
			info := EvaluateHoursDue(480, 500, current, 50)
			assert.NotEqual(t, DueToday, info.Status)
		}
	})

	t.Run("missing interval means no schedule", func(t *testing.T) {
		assert.Equal(t, DueNone, EvaluateHoursDue(480, 0, 1000, 50).Status)
	})
}

func TestPlanEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

	t.Run("hours plan with no maintenance history counts from zero", func(t *testing.T) {
		plan := MaintenancePlan{IntervalHours: 500}
		machine := Machine{OperatingHours: 520}
		info := plan.Evaluate(&machine, now, 7, 50)
		assert.Equal(t, DueOver, info.Status)
	})

	t.Run("calendar plan falls back to machine creation date", func(t *testing.T) {
		plan := MaintenancePlan{IntervalType: IntervalDays, IntervalValue: 7}
		machine := Machine{CreatedAt: now.AddDate(0, 0, -10)}
		info := plan.Evaluate(&machine, now, 7, 50)
		assert.Equal(t, DueOver, info.Status)
	})

	t.Run("last maintained wins over creation date", func(t *testing.T) {
		last := now.AddDate(0, 0, -1)
		plan := MaintenancePlan{IntervalType: IntervalDays, IntervalValue: 30}
		machine := Machine{CreatedAt: now.AddDate(0, -6, 0), LastMaintainedAt: &last}
		info := plan.Evaluate(&machine, now, 7, 50)
		assert.Equal(t, DueOK, info.Status)
	})
}

func TestPlanValidate(t *testing.T) {
	base := MaintenancePlan{MachineID: 1, Title: "weekly check"}

	t.Run("needs exactly one interval kind", func(t *testing.T) {
		p := base
		assert.ErrorIs(t, p.Validate(), ErrNoInterval)

		p = base
		p.IntervalType = IntervalDays
		p.IntervalValue = 7
		p.IntervalHours = 100
		assert.ErrorIs(t, p.Validate(), ErrBothInterval)

		p = base
		p.IntervalHours = 100
		assert.NoError(t, p.Validate())
	})

	t.Run("deadline time only with shift critical", func(t *testing.T) {
		p := base
		p.IntervalHours = 100
		p.DeadlineTime = "14:00"
		assert.Error(t, p.Validate())
		p.ShiftCritical = true
		assert.NoError(t, p.Validate())
	})

	t.Run("item bounds must be ordered", func(t *testing.T) {
		lo, hi := 5.0, 2.0
		p := base
		p.IntervalHours = 100
		p.Items = []ChecklistTemplateItem{{Title: "oil level", MinValue: &lo, MaxValue: &hi}}
		assert.Error(t, p.Validate())
	})
}
