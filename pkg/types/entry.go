package types

import "time"

const (
	MinConditionRating = 1
	MaxConditionRating = 5
	MaxPhotoRefs       = 20
)

type ElementConditionEntry struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessmentId"`
	ElementID    string    `db:"element_id" json:"elementId"`
	Rating       int       `db:"rating" json:"rating"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	PhotoRefs    []string  `db:"photo_refs" json:"photoRefs"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
