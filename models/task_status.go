package models

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// CanTransitionTo encodes the task state machine. Completed and cancelled
// are terminal. Starting an already started task is treated as a no-op by
// the caller, not a transition.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch next {
	case TaskAssigned:
		return s == TaskPending || s == TaskAssigned
	case TaskInProgress:
		return s == TaskPending || s == TaskAssigned
	case TaskCompleted:
		return s == TaskInProgress
	case TaskCancelled:
		return s != TaskCompleted && s != TaskCancelled
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

type EscalationStatus string

const (
	EscalationOpen         EscalationStatus = "open"
	EscalationAcknowledged EscalationStatus = "acknowledged"
	EscalationResolved     EscalationStatus = "resolved"
)

// CanTransitionTo: escalation status only moves forward. Acknowledgement
// is optional; resolved is terminal (re-escalation creates a new record).
func (s EscalationStatus) CanTransitionTo(next EscalationStatus) bool {
	switch next {
	case EscalationAcknowledged:
		return s == EscalationOpen
	case EscalationResolved:
		return s == EscalationOpen || s == EscalationAcknowledged
	default:
		return false
	}
}
