package kafka

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader feeds a fixed set of messages then blocks until the context is
// cancelled.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []kafkago.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, io.EOF
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_DispatchesToHandler(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: TopicProfileUpdated, Key: []byte("prof-1"), Value: []byte(`{"a":1}`),
			Headers: []kafkago.Header{{Key: "event_type", Value: []byte(EventTypeProfileUpdated)}}},
	}}
	c := NewConsumerWithReader(reader, RetryPolicy{}, nil)

	received := make(chan *Message, 1)
	c.Subscribe(TopicProfileUpdated, func(_ context.Context, msg *Message) error {
		received <- msg
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	select {
	case msg := <-received:
		assert.Equal(t, TopicProfileUpdated, msg.Topic)
		assert.Equal(t, []byte("prof-1"), msg.Key)
		assert.Equal(t, EventTypeProfileUpdated, msg.Headers["event_type"])
	case <-time.After(2 * time.Second):
		t.Fatal("handler not invoked")
	}

	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_RetriesThenGivesUp(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: TopicProfileUpdated, Value: []byte(`{}`)},
	}}
	c := NewConsumerWithReader(reader, RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}, nil)

	var mu sync.Mutex
	attempts := 0
	c.Subscribe(TopicProfileUpdated, func(context.Context, *Message) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return assert.AnError
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	// First attempt plus two retries, then the message is committed so the
	// partition keeps moving.
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
	assert.Equal(t, int64(1), c.metrics.MessagesFailed.Load())
}

func TestConsumer_CommitsUnhandledTopics(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "unknown.topic", Value: []byte(`{}`)},
	}}
	c := NewConsumerWithReader(reader, RetryPolicy{}, nil)

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_StartTwice(t *testing.T) {
	c := NewConsumerWithReader(&fakeReader{}, RetryPolicy{}, nil)
	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
	require.NoError(t, c.Close())
}
