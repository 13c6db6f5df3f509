package models

import (
	"fmt"
	"strings"
)

// ChecklistSubmission is the completion payload for one checklist item.
type ChecklistSubmission struct {
	Answer           *bool    `json:"answer,omitempty"`
	MeasurementValue *float64 `json:"measurement_value,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	PhotoPath        string   `json:"photo_path,omitempty"`
	EscalationReason string   `json:"escalation_reason,omitempty"`
	CompletedBy      string   `json:"completed_by,omitempty"`
}

// ChecklistOutcome is the evaluator's verdict on a submission.
//
// Blocked means the submission is rejected outright and nothing is
// recorded: a missing required photo/answer/measurement, or a failure on
// an item whose policy is stop. Failed means the item is recorded as
// completed with the failure flagged; Escalate additionally tells the
// caller to open an escalation.
type ChecklistOutcome struct {
	Blocked     bool
	BlockReason string
	Failed      bool
	FailureNote string
	Escalate    bool
}

// Evaluate validates a submission against the snapshotted template fields
// and decides the on-failure action. Pure; recording is the caller's job.
func (r *ChecklistResult) Evaluate(sub ChecklistSubmission) ChecklistOutcome {
	if r.RequiresPhoto && sub.PhotoPath == "" {
		return ChecklistOutcome{Blocked: true, BlockReason: "photo is required for this item"}
	}

	// an item can fail both checks; the escalation reason carries every note
	var notes []string

	if r.DecisionType == DecisionYesNo {
		if sub.Answer == nil {
			return ChecklistOutcome{Blocked: true, BlockReason: "yes/no answer is required for this item"}
		}
		if r.ExpectedAnswer != nil && *sub.Answer != *r.ExpectedAnswer {
			notes = append(notes, fmt.Sprintf("answer %v, expected %v", *sub.Answer, *r.ExpectedAnswer))
		}
	}

	if r.RequiresMeasurement {
		if sub.MeasurementValue == nil {
			return ChecklistOutcome{Blocked: true, BlockReason: "measurement value is required for this item"}
		}
		if r.MinValue != nil && r.MaxValue != nil {
			v := *sub.MeasurementValue
			if v < *r.MinValue || v > *r.MaxValue {
				notes = append(notes, fmt.Sprintf("measured %g %s, allowed %g..%g", v, r.Unit, *r.MinValue, *r.MaxValue))
			}
		}
	}

	if len(notes) == 0 {
		return ChecklistOutcome{}
	}
	note := strings.Join(notes, "; ")

	switch r.OnFailureAction {
	case FailureStop:
		return ChecklistOutcome{
			Blocked:     true,
			BlockReason: "item failed and its policy is stop: " + note,
			Failed:      true,
			FailureNote: note,
		}
	case FailureEscalate:
		return ChecklistOutcome{Failed: true, FailureNote: note, Escalate: true}
	default: // continue
		return ChecklistOutcome{Failed: true, FailureNote: note}
	}
}
