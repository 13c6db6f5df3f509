package models

import (
	"time"

	"gorm.io/gorm"
)

type MeasuringEquipment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"index"`
	SerialNumber string `json:"serial_number" gorm:"uniqueIndex;size:64"`
	Location     string `json:"location,omitempty"`
	Notes        string `json:"notes,omitempty"`

	CalibrationIntervalMonths int        `json:"calibration_interval_months"`
	LastCalibratedAt          *time.Time `json:"last_calibrated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CalibrationDue runs the calendar interval evaluator over the calibration
// cycle. Equipment without an interval or a last-calibration date has no
// schedule.
func (m *MeasuringEquipment) CalibrationDue(now time.Time, lookaheadDays int) DueInfo {
	if m.CalibrationIntervalMonths < 1 || m.LastCalibratedAt == nil {
		return DueInfo{Status: DueNone}
	}
	return EvaluateCalendarDue(*m.LastCalibratedAt, IntervalMonths, m.CalibrationIntervalMonths, now, lookaheadDays)
}
