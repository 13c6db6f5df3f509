package models

import (
	"time"

	"gorm.io/gorm"
)

type MaintenanceTask struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	PlanID      *uint            `json:"plan_id,omitempty" gorm:"index"` // nil for ad-hoc tasks
	Plan        *MaintenancePlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	MachineID   uint             `json:"machine_id" gorm:"index"`
	Machine     *Machine         `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`

	DueDate       time.Time `json:"due_date" gorm:"index"`
	Priority      string    `json:"priority" gorm:"size:16;default:medium"`
	ShiftCritical bool      `json:"shift_critical"`
	DeadlineTime  string    `json:"deadline_time,omitempty" gorm:"size:5"`

	Status     TaskStatus `json:"status" gorm:"size:16;default:pending;index"`
	AssignedTo string     `json:"assigned_to,omitempty" gorm:"index"`
	StartedAt  *time.Time `json:"started_at,omitempty"`

	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CompletedBy  string     `json:"completed_by,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`

	Results []ChecklistResult `json:"results,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// ChecklistResult is one row per template item, frozen at task creation.
// Plan edits never reach in-flight tasks; the snapshot fields below are
// what the checklist evaluator runs against.
type ChecklistResult struct {
	ID             uint  `json:"id" gorm:"primaryKey"`
	TaskID         uint  `json:"task_id" gorm:"index"`
	TemplateItemID *uint `json:"template_item_id,omitempty"`

	Sequence            int      `json:"sequence"`
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	IsCritical          bool     `json:"is_critical"`
	RequiresPhoto       bool     `json:"requires_photo"`
	RequiresMeasurement bool     `json:"requires_measurement"`
	MinValue            *float64 `json:"min_value,omitempty"`
	MaxValue            *float64 `json:"max_value,omitempty"`
	Unit                string   `json:"unit,omitempty" gorm:"size:32"`
	DecisionType        string   `json:"decision_type" gorm:"size:16;default:none"`
	OnFailureAction     string   `json:"on_failure_action" gorm:"size:16;default:continue"`
	ExpectedAnswer      *bool    `json:"expected_answer,omitempty"`
	ReferenceImage      string   `json:"reference_image,omitempty"`

	Completed        bool       `json:"completed"`
	Failed           bool       `json:"failed"`
	Answer           *bool      `json:"answer,omitempty"`
	MeasurementValue *float64   `json:"measurement_value,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	PhotoPath        string     `json:"photo_path,omitempty"`
	CompletedBy      string     `json:"completed_by,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChecklistResult snapshots a template item into a result row.
func NewChecklistResult(taskID uint, item ChecklistTemplateItem) ChecklistResult {
	itemID := item.ID
	return ChecklistResult{
		TaskID:              taskID,
		TemplateItemID:      &itemID,
		Sequence:            item.Sequence,
		Title:               item.Title,
		Description:         item.Description,
		IsCritical:          item.IsCritical,
		RequiresPhoto:       item.RequiresPhoto,
		RequiresMeasurement: item.RequiresMeasurement,
		MinValue:            item.MinValue,
		MaxValue:            item.MaxValue,
		Unit:                item.Unit,
		DecisionType:        item.DecisionType,
		OnFailureAction:     item.OnFailureAction,
		ExpectedAnswer:      item.ExpectedAnswer,
		ReferenceImage:      item.ReferenceImage,
	}
}

// UnfinishedCriticalTitles lists critical items not yet completed, in
// checklist order. Completing the task is blocked while this is non-empty.
func (t *MaintenanceTask) UnfinishedCriticalTitles() []string {
	var titles []string
	for i := range t.Results {
		r := &t.Results[i]
		if r.IsCritical && !r.Completed {
			titles = append(titles, r.Title)
		}
	}
	return titles
}
