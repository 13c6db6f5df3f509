package models

import (
	"time"

	"gorm.io/datatypes"
)

// Escalation severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type Escalation struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	TaskID            uint             `json:"task_id" gorm:"index"`
	Task              *MaintenanceTask `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	ChecklistResultID *uint            `json:"checklist_result_id,omitempty" gorm:"index"`
	MachineID         uint             `json:"machine_id" gorm:"index"`

	Severity string           `json:"severity" gorm:"size:16;default:medium"`
	Reason   string           `json:"reason"`
	Status   EscalationStatus `json:"status" gorm:"size:16;default:open;index"`

	// Snapshot of what triggered the escalation (item title, submitted
	// answer/measurement) so the record stays meaningful after edits.
	Context datatypes.JSON `json:"context,omitempty" gorm:"type:jsonb"`

	AcknowledgedBy  string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`

	// Set when this record was raised via re-escalation of a resolved one.
	PreviousEscalationID *uint `json:"previous_escalation_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
