package types

import (
	"time"
)

type AssessmentStatus string

const (
	AssessmentStatusPending    AssessmentStatus = "pending"
	AssessmentStatusInProgress AssessmentStatus = "in_progress"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
	AssessmentStatusCancelled  AssessmentStatus = "cancelled"
)

func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentStatusPending, AssessmentStatusInProgress, AssessmentStatusCompleted, AssessmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AssessmentStatus) Terminal() bool {
	return s == AssessmentStatusCompleted || s == AssessmentStatusCancelled
}

type AssessmentKind string

const (
	AssessmentKindPre   AssessmentKind = "pre_assessment"
	AssessmentKindField AssessmentKind = "field_assessment"
)

func (k AssessmentKind) Valid() bool {
	return k == AssessmentKindPre || k == AssessmentKindField
}

type Assessment struct {
	ID           string           `db:"id" json:"id"`
	BuildingID   string           `db:"building_id" json:"buildingId"`
	Kind         AssessmentKind   `db:"kind" json:"kind"`
	Status       AssessmentStatus `db:"status" json:"status"`
	ScheduledAt  *time.Time       `db:"scheduled_at" json:"scheduledAt,omitempty"`
	StartedAt    *time.Time       `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt  *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
	CancelledAt  *time.Time       `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CancelReason *string          `db:"cancel_reason" json:"cancelReason,omitempty"`
	AssignedTo   *string          `db:"assigned_to" json:"assignedTo,omitempty"`
	CreatedBy    string           `db:"created_by" json:"createdBy"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
}

type AssessmentFilter struct {
	BuildingID string           `form:"building_id"`
	Status     AssessmentStatus `form:"status"`
	Kind       AssessmentKind   `form:"kind"`
	AssignedTo string           `form:"assigned_to"`
	Limit      uint64           `form:"limit"`
	Offset     uint64           `form:"offset"`
}

// StatusChange describes a guarded status write. The store applies it only
// if the row still holds From.
type StatusChange struct {
	From AssessmentStatus
	To   AssessmentStatus
	At   time.Time

	// Stamps written alongside the status; nil leaves the column untouched.
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason *string

	// RequireEntries makes the write fail with ErrIncompleteData when the
	// assessment has no element condition entries.
	RequireEntries bool
}

// StatusEvent is published after every committed transition.
type StatusEvent struct {
	AssessmentID string           `json:"assessmentId"`
	BuildingID   string           `json:"buildingId"`
	From         AssessmentStatus `json:"fromStatus"`
	To           AssessmentStatus `json:"toStatus"`
	Actor        string           `json:"actor"`
	Reason       *string          `json:"reason,omitempty"`
	OccurredAt   time.Time        `json:"timestamp"`
}
