// Package kafka carries evaluation and profile lifecycle events between the
// API server and the re-scoring worker.
package kafka

import (
	"context"
	"time"
)

// Message is a consumed record, decoupled from the driver type so handlers
// can be tested without a broker.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message. A non-nil error triggers
// the consumer's retry and dead-letter path.
type MessageHandler func(ctx context.Context, msg *Message) error

// TopicConfig describes a topic for the topic manager.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
}

// BatchPublishResult summarizes a batch publish.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// BatchItemError records one failed record in a batch. Index -1 means the
// whole batch failed before per-record attribution.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}
