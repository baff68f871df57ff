package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   TopicEvaluationCompleted,
		Key:     []byte("prof-1"),
		Value:   []byte(`{"ok":true}`),
		Headers: map[string]string{"event_type": EventTypeEvaluationCompleted},
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	assert.Equal(t, TopicEvaluationCompleted, w.messages[0].Topic)
	assert.Equal(t, []byte("prof-1"), w.messages[0].Key)
	assert.False(t, w.messages[0].Time.IsZero())

	sent, failed, _ := p.Metrics()
	assert.Equal(t, int64(1), sent)
	assert.Equal(t, int64(0), failed)
}

func TestProducerPublish_Validation(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil)

	err := p.Publish(context.Background(), &ProducerMessage{Value: []byte("x")})
	assert.Error(t, err)

	err = p.Publish(context.Background(), &ProducerMessage{Topic: "t"})
	assert.Error(t, err)
}

func TestProducerPublish_AfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	// Idempotent.
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestProducerPublishBatch_PartialFailure(t *testing.T) {
	werr := kafka.WriteErrors{nil, assert.AnError, nil}
	p := NewProducerWithWriter(&fakeWriter{err: werr}, nil)

	msgs := []*ProducerMessage{
		{Topic: "t", Value: []byte("a")},
		{Topic: "t", Value: []byte("b")},
		{Topic: "t", Value: []byte("c")},
	}
	result, err := p.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
}

func TestProducerPublishBatch_Empty(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil)
	_, err := p.PublishBatch(context.Background(), nil)
	assert.Error(t, err)
}
