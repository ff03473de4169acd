package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	apperrors "github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

type mockConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions map[string][]kafka.Partition
	closed     bool
}

func (m *mockConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	var out []kafka.Partition
	for _, t := range topics {
		out = append(out, m.partitions[t]...)
	}
	return out, nil
}

func (m *mockConn) Close() error {
	m.closed = true
	return nil
}

func TestEventEnvelope_RoundTripThroughMessage(t *testing.T) {
	env, err := NewEventEnvelope(EventScanRequested, ScanRequestedPayload{RequestID: "r1", RequesterID: "u1"})
	require.NoError(t, err)
	env.TraceID = "trace-1"

	out, err := env.ToMessage("scans", "u1")
	require.NoError(t, err)
	assert.Equal(t, "scans", out.Topic)
	assert.Equal(t, []byte("u1"), out.Key)
	assert.Equal(t, EventScanRequested, out.Headers[HeaderEventType])
	assert.Equal(t, SchemaVersion, out.Headers[HeaderSchemaVersion])
	assert.Equal(t, "trace-1", out.Headers[HeaderTraceID])

	decoded, err := MessageToEventEnvelope(&common.Message{Value: out.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)

	var payload ScanRequestedPayload
	require.NoError(t, decoded.DecodePayload(&payload))
	assert.Equal(t, "r1", payload.RequestID)
	assert.Equal(t, "u1", payload.RequesterID)
}

func TestEventEnvelope_NoKeyWhenEmpty(t *testing.T) {
	env, err := NewEventEnvelope(EventOpportunitiesDetected, map[string]int{"n": 1})
	require.NoError(t, err)
	out, err := env.ToMessage("t", "")
	require.NoError(t, err)
	assert.Nil(t, out.Key)
	assert.NotContains(t, out.Headers, HeaderTraceID)
}

func TestNewEventEnvelope_UnmarshalablePayload(t *testing.T) {
	_, err := NewEventEnvelope(EventScanRequested, make(chan int))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&common.Message{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMessageDecodeFailed))

	_, err = MessageToEventEnvelope(&common.Message{Value: []byte("{not json")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMessageDecodeFailed))
}

func TestDecodePayload_Missing(t *testing.T) {
	env := &EventEnvelope{Payload: json.RawMessage("null")}
	var p ScanRequestedPayload
	assert.True(t, apperrors.IsCode(env.DecodePayload(&p), apperrors.CodeMessageDecodeFailed))
}

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &mockConn{}
	m := NewTopicManagerWithConn(conn, nil)

	cfg := config.NewDefaultConfig().Messaging.Kafka
	require.NoError(t, m.EnsureTopics(context.Background(), DefaultTopics(cfg, 0)))

	require.Len(t, conn.created, 3)
	assert.Equal(t, config.DefaultScanRequestTopic, conn.created[0].Topic)
	assert.Equal(t, 1, conn.created[0].ReplicationFactor)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
	assert.Equal(t, "259200000", conn.created[0].ConfigEntries[0].ConfigValue)
	assert.Equal(t, config.DefaultDeadLetterTopic, conn.created[2].Topic)

	require.NoError(t, m.Close())
	assert.True(t, conn.closed)
}

func TestTopicManager_CreateTopicAlreadyExists(t *testing.T) {
	conn := &mockConn{
		createErr:  errors.New("topic already exists"),
		partitions: map[string][]kafka.Partition{"t": {{Topic: "t"}}},
	}
	m := NewTopicManagerWithConn(conn, nil)
	assert.NoError(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "t", Partitions: 1, ReplicationFactor: 1}))
}

func TestTopicManager_CreateTopicFailure(t *testing.T) {
	conn := &mockConn{createErr: errors.New("not controller")}
	m := NewTopicManagerWithConn(conn, nil)
	err := m.CreateTopic(context.Background(), common.TopicConfig{Name: "t", Partitions: 1, ReplicationFactor: 1})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestTopicManager_CreateTopicValidation(t *testing.T) {
	m := NewTopicManagerWithConn(&mockConn{}, nil)
	ctx := context.Background()
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{Partitions: 1, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, common.TopicConfig{Name: "t", Partitions: 1}))
}

//Personal.AI order the ending
