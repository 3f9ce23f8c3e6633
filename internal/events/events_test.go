package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recordingPublisher struct {
	events []types.StatusEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event types.StatusEvent) error {
	p.events = append(p.events, event)
	return p.err
}

// stallingWriter never completes a write on its own.
type stallingWriter struct{}

func (stallingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stallingWriter) Close() error { return nil }

func sampleEvent() types.StatusEvent {
	return types.StatusEvent{
		AssessmentID: "asmt-1",
		BuildingID:   "bldg-1",
		From:         types.AssessmentStatusPending,
		To:           types.AssessmentStatusCancelled,
		Actor:        "user-1",
		Reason:       utils.StringPtr("duplicate"),
		OccurredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish_KeysByAssessment(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "asmt-1", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "pending", decoded["fromStatus"])
	assert.Equal(t, "cancelled", decoded["toStatus"])
	assert.Equal(t, "duplicate", decoded["reason"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_Publish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &KafkaPublisher{writer: &fakeWriter{err: boom}}

	err := p.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLogPublisher_Publish(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewLogPublisher(logger)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "asmt-1", entry.Data["assessment_id"])
	assert.Equal(t, "duplicate", entry.Data["reason"])
}

func TestMulti_Publish_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingPublisher{err: boom}
	second := &recordingPublisher{}

	err := Multi{first, second}.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestKafkaPublisher_Publish_HonorsDeadline(t *testing.T) {
	p := &KafkaPublisher{writer: stallingWriter{}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	started := time.Now()
	err := p.Publish(ctx, sampleEvent())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), time.Second)
}

func TestNewKafkaPublisher_FlushesSingleMessages(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "assessment.status")

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, w.BatchTimeout)
	assert.NotZero(t, w.WriteTimeout)
	require.NoError(t, p.Close())
}
