// Package events publishes assessment status changes to downstream
// consumers.
package events

import (
	"context"
	"errors"

	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, event types.StatusEvent) error
}

// LogPublisher writes events to the log. It is the publisher used when no
// broker is configured.
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event types.StatusEvent) error {
	entry := p.logger.WithFields(logrus.Fields{
		"assessment_id": event.AssessmentID,
		"building_id":   event.BuildingID,
		"from":          event.From,
		"to":            event.To,
		"actor":         event.Actor,
	})
	if event.Reason != nil {
		entry = entry.WithField("reason", *event.Reason)
	}
	entry.Info("assessment status changed")
	return nil
}

// Multi fans an event out to every publisher, returning the joined errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event types.StatusEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, types.StatusEvent) error { return nil }
