package kafka

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
)

func TestEventEnvelope_RoundTrip(t *testing.T) {
	score := 96.75
	env, err := NewEventEnvelope(EventTypeEvaluationCompleted, sourceService, EvaluationCompletedPayload{
		EvaluationID:  "eval-1",
		ProfileID:     "prof-1",
		Score:         &score,
		EngineTier:    "TITAN",
		GateTier:      "TITAN",
		EngineVersion: "v1",
		EvaluatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicEvaluationCompleted, []byte("prof-1"))
	require.NoError(t, err)
	assert.Equal(t, EventTypeEvaluationCompleted, msg.Headers["event_type"])

	parsed, err := ParseEnvelope(&Message{Topic: msg.Topic, Key: msg.Key, Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, parsed.EventID)

	var payload EvaluationCompletedPayload
	require.NoError(t, parsed.DecodePayload(&payload))
	assert.Equal(t, "prof-1", payload.ProfileID)
	require.NotNil(t, payload.Score)
	assert.InDelta(t, 96.75, *payload.Score, 1e-9)
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := ParseEnvelope(&Message{})
	assert.Error(t, err)

	_, err = ParseEnvelope(&Message{Value: []byte("{not json")})
	assert.Error(t, err)
}

type fakeConn struct {
	created []kafkago.TopicConfig
	err     error
}

func (c *fakeConn) CreateTopics(topics ...kafkago.TopicConfig) error {
	if c.err != nil {
		return c.err
	}
	c.created = append(c.created, topics...)
	return nil
}
func (c *fakeConn) DeleteTopics(...string) error                          { return nil }
func (c *fakeConn) ReadPartitions(...string) ([]kafkago.Partition, error) { return nil, nil }
func (c *fakeConn) Close() error                                          { return nil }

func TestEnsureDefaultTopics(t *testing.T) {
	conn := &fakeConn{}
	m := NewTopicManagerWithConn(conn, config.KafkaConfig{NumPartitions: 12, ReplicationFactor: 3}, nil)

	require.NoError(t, m.EnsureDefaultTopics(context.Background()))
	require.Len(t, conn.created, 4)

	assert.Equal(t, TopicEvaluationCompleted, conn.created[0].Topic)
	assert.Equal(t, 12, conn.created[0].NumPartitions)
	assert.Equal(t, 3, conn.created[0].ReplicationFactor)

	// Dead letter keeps a small fixed partition count.
	assert.Equal(t, TopicDeadLetter, conn.created[3].Topic)
	assert.Equal(t, 3, conn.created[3].NumPartitions)
}

func TestCreateTopic_Validation(t *testing.T) {
	m := NewTopicManagerWithConn(&fakeConn{}, config.KafkaConfig{}, nil)

	err := m.CreateTopic(context.Background(), TopicConfig{NumPartitions: 1, ReplicationFactor: 1})
	assert.Error(t, err)

	err = m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 0, ReplicationFactor: 1})
	assert.Error(t, err)
}
