package assessment

import (
	"testing"

	"fcaengine/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_LegalEdges(t *testing.T) {
	cases := []struct {
		from  types.AssessmentStatus
		event Event
		want  types.AssessmentStatus
	}{
		{types.AssessmentStatusPending, EventStart, types.AssessmentStatusInProgress},
		{types.AssessmentStatusInProgress, EventComplete, types.AssessmentStatusCompleted},
		{types.AssessmentStatusPending, EventCancel, types.AssessmentStatusCancelled},
		{types.AssessmentStatusInProgress, EventCancel, types.AssessmentStatusCancelled},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.event), func(t *testing.T) {
			got, err := Next(tc.from, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNext_IllegalEdges(t *testing.T) {
	cases := []struct {
		from  types.AssessmentStatus
		event Event
	}{
		{types.AssessmentStatusPending, EventComplete},
		{types.AssessmentStatusInProgress, EventStart},
		{types.AssessmentStatusCompleted, EventStart},
		{types.AssessmentStatusCompleted, EventComplete},
		{types.AssessmentStatusCompleted, EventCancel},
		{types.AssessmentStatusCancelled, EventStart},
		{types.AssessmentStatusCancelled, EventComplete},
		{types.AssessmentStatusCancelled, EventCancel},
		{types.AssessmentStatus("archived"), EventStart},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.event), func(t *testing.T) {
			_, err := Next(tc.from, tc.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidTransition)
		})
	}
}
