package common

import (
	"context"
	"time"
)

// ProducerMessage is a broker-agnostic outbound message.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Partition int
	Timestamp time.Time
}

// Message is a broker-agnostic inbound message.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one inbound message.  A non-nil error triggers
// the consumer's retry and dead-letter policy.
type MessageHandler func(ctx context.Context, msg *Message) error

// BatchItemError records the failure of one message within a batch.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}

// BatchPublishResult summarizes a batch publish.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// TopicConfig describes a topic to be ensured on the broker.
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
}

//Personal.AI order the ending
