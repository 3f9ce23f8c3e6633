package assessment

import "fcaengine/pkg/types"

type Event string

const (
	EventStart    Event = "start"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

type edge struct {
	from  types.AssessmentStatus
	event Event
}

var transitions = map[edge]types.AssessmentStatus{
	{types.AssessmentStatusPending, EventStart}:       types.AssessmentStatusInProgress,
	{types.AssessmentStatusInProgress, EventComplete}: types.AssessmentStatusCompleted,
	{types.AssessmentStatusPending, EventCancel}:      types.AssessmentStatusCancelled,
	{types.AssessmentStatusInProgress, EventCancel}:   types.AssessmentStatusCancelled,
}

// Next returns the status reached by applying event in status from.
func Next(from types.AssessmentStatus, event Event) (types.AssessmentStatus, error) {
	to, ok := transitions[edge{from, event}]
	if !ok {
		return "", types.NewError(types.CodeInvalidTransition, "cannot %s an assessment that is %s", event, from)
	}
	return to, nil
}
