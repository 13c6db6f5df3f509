package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Calendar interval units for MaintenancePlan.IntervalType.
const (
	IntervalDays   = "days"
	IntervalWeeks  = "weeks"
	IntervalMonths = "months"
)

// Decision types for checklist items.
const (
	DecisionNone          = "none"
	DecisionYesNo         = "yes_no"
	DecisionMeasurement   = "measurement"
	DecisionPhotoRequired = "photo_required"
)

// On-failure policies for checklist items.
const (
	FailureContinue = "continue"
	FailureEscalate = "escalate"
	FailureStop     = "stop"
)

type MaintenancePlan struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	MachineID   uint     `json:"machine_id" gorm:"index"`
	Machine     *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	Title       string   `json:"title" gorm:"index"`
	Description string   `json:"description,omitempty"`

	// Exactly one interval kind: calendar (IntervalType + IntervalValue)
	// or operating hours (IntervalHours). Validate() enforces this.
	IntervalType  string  `json:"interval_type,omitempty" gorm:"size:16"`
	IntervalValue int     `json:"interval_value,omitempty"`
	IntervalHours float64 `json:"interval_hours,omitempty"`

	RequiredSkillLevel string `json:"required_skill_level,omitempty" gorm:"size:32"`
	Priority           string `json:"priority" gorm:"size:16;default:medium"`
	ShiftCritical      bool   `json:"shift_critical"`
	DeadlineTime       string `json:"deadline_time,omitempty" gorm:"size:5"` // "HH:MM", only with ShiftCritical
	IsActive           bool   `json:"is_active" gorm:"default:true"`
	ReferenceImage     string `json:"reference_image,omitempty"`

	Items []ChecklistTemplateItem `json:"items,omitempty" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type ChecklistTemplateItem struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PlanID      uint   `json:"plan_id" gorm:"index"`
	Sequence    int    `json:"sequence" gorm:"index"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	IsCritical          bool     `json:"is_critical"`
	RequiresPhoto       bool     `json:"requires_photo"`
	RequiresMeasurement bool     `json:"requires_measurement"`
	MinValue            *float64 `json:"min_value,omitempty"`
	MaxValue            *float64 `json:"max_value,omitempty"`
	Unit                string   `json:"unit,omitempty" gorm:"size:32"`

	DecisionType    string `json:"decision_type" gorm:"size:16;default:none"`
	OnFailureAction string `json:"on_failure_action" gorm:"size:16;default:continue"`
	ExpectedAnswer  *bool  `json:"expected_answer,omitempty"`
	ReferenceImage  string `json:"reference_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNoInterval   = errors.New("plan needs either a calendar interval or an hours interval")
	ErrBothInterval = errors.New("calendar interval and hours interval are mutually exclusive")
)

// UsesHours reports whether the plan is scheduled by operating hours.
func (p *MaintenancePlan) UsesHours() bool {
	return p.IntervalHours > 0
}

// Validate checks the interval definition and the checklist items.
func (p *MaintenancePlan) Validate() error {
	hasCalendar := p.IntervalType != "" || p.IntervalValue != 0
	hasHours := p.IntervalHours > 0

	if hasCalendar && hasHours {
		return ErrBothInterval
	}
	if !hasCalendar && !hasHours {
		return ErrNoInterval
	}
	if hasCalendar {
		switch p.IntervalType {
		case IntervalDays, IntervalWeeks, IntervalMonths:
		default:
			return errors.New("interval_type must be days, weeks or months")
		}
		if p.IntervalValue < 1 {
			return errors.New("interval_value must be at least 1")
		}
	}
	if p.DeadlineTime != "" && !p.ShiftCritical {
		return errors.New("deadline_time requires shift_critical")
	}
	for i := range p.Items {
		if err := p.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (it *ChecklistTemplateItem) Validate() error {
	if it.Title == "" {
		return errors.New("checklist item title is required")
	}
	switch it.DecisionType {
	case "", DecisionNone, DecisionYesNo, DecisionMeasurement, DecisionPhotoRequired:
	default:
		return errors.New("invalid decision_type: " + it.DecisionType)
	}
	switch it.OnFailureAction {
	case "", FailureContinue, FailureEscalate, FailureStop:
	default:
		return errors.New("invalid on_failure_action: " + it.OnFailureAction)
	}
	if it.MinValue != nil && it.MaxValue != nil && *it.MinValue > *it.MaxValue {
		return errors.New("min_value must not exceed max_value")
	}
	return nil
}
