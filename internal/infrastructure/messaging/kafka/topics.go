package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// Topic names. Evaluation events are keyed by profile ID so downstream
// consumers see a profile's history in order.
const (
	TopicEvaluationCompleted = "medrank.evaluations.completed"
	TopicProfileUpdated      = "medrank.profiles.updated"
	TopicProfileDeleted      = "medrank.profiles.deleted"
	TopicDeadLetter          = "medrank.dead_letter"
)

// Event type discriminators carried in the envelope.
const (
	EventTypeEvaluationCompleted = "evaluation.completed"
	EventTypeProfileUpdated      = "profile.updated"
	EventTypeProfileDeleted      = "profile.deleted"
)

// EventEnvelope is the wire frame shared by every event.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EvaluationCompletedPayload announces a persisted evaluation.
type EvaluationCompletedPayload struct {
	EvaluationID  string    `json:"evaluation_id"`
	ProfileID     string    `json:"profile_id"`
	Score         *float64  `json:"score"`
	EngineTier    string    `json:"engine_tier"`
	GateTier      string    `json:"gate_tier"`
	Disqualified  bool      `json:"disqualified"`
	EngineVersion string    `json:"engine_version"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// ProfileUpdatedPayload announces a directory change; the worker re-scores
// the profile on receipt.
type ProfileUpdatedPayload struct {
	ProfileID string    `json:"profile_id"`
	FullName  string    `json:"full_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileDeletedPayload announces a directory removal.
type ProfileDeletedPayload struct {
	ProfileID string    `json:"profile_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// NewEventEnvelope wraps payload in a versioned envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return appErrors.New(appErrors.ErrCodeValidation, "event has no payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "decode event payload")
	}
	return nil
}

// ToMessage renders the envelope as a producer record keyed by key.
func (e *EventEnvelope) ToMessage(topic string, key []byte) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal event envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	return &ProducerMessage{
		Topic:     topic,
		Key:       key,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}, nil
}

// ParseEnvelope decodes a consumed record into an envelope.
func ParseEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, appErrors.New(appErrors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal event envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic management
// ─────────────────────────────────────────────────────────────────────────────

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the platform topics at startup.
type TopicManager struct {
	conn   ConnInterface
	cfg    config.KafkaConfig
	logger logging.Logger
}

// NewTopicManager dials the first broker for admin operations.
func NewTopicManager(cfg config.KafkaConfig, log logging.Logger) (*TopicManager, error) {
	if len(cfg.Brokers) == 0 {
		return nil, appErrors.InvalidParam("kafka.brokers must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeInternal, "dial kafka")
	}
	return &TopicManager{conn: conn, cfg: cfg, logger: log.Named("kafka_topics")}, nil
}

// NewTopicManagerWithConn wraps an existing connection. Used by tests.
func NewTopicManagerWithConn(conn ConnInterface, cfg config.KafkaConfig, log logging.Logger) *TopicManager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, cfg: cfg, logger: log.Named("kafka_topics")}
}

// CreateTopic creates one topic, tolerating prior existence.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return appErrors.InvalidParam("topic name is required")
	}
	if cfg.NumPartitions <= 0 || cfg.ReplicationFactor <= 0 {
		return appErrors.InvalidParam("partitions and replication factor must be positive")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{
			ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs),
		})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{
			ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy,
		})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrCodeInternal, "create topic "+cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name))
	return nil
}

// TopicExists reports whether the topic has partitions.
func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureDefaultTopics creates the platform topic set using the configured
// partition and replication counts.
func (m *TopicManager) EnsureDefaultTopics(ctx context.Context) error {
	for _, topic := range DefaultTopics(m.cfg) {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the admin connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics is the topic set the platform depends on. Evaluation events
// are retained for a week, directory events for a month, dead letters for a
// month.
func DefaultTopics(cfg config.KafkaConfig) []TopicConfig {
	partitions := cfg.NumPartitions
	if partitions <= 0 {
		partitions = 6
	}
	replication := cfg.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}
	const day = int64(24 * 3600 * 1000)
	return []TopicConfig{
		{Name: TopicEvaluationCompleted, NumPartitions: partitions, ReplicationFactor: replication, RetentionMs: 7 * day},
		{Name: TopicProfileUpdated, NumPartitions: partitions, ReplicationFactor: replication, RetentionMs: 30 * day},
		{Name: TopicProfileDeleted, NumPartitions: partitions, ReplicationFactor: replication, RetentionMs: 30 * day},
		{Name: TopicDeadLetter, NumPartitions: 3, ReplicationFactor: replication, RetentionMs: 30 * day},
	}
}
