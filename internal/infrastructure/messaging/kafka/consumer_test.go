package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/testutil"
	apperrors "github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }

func (m *mockKafkaReader) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

// recordingPublisher captures dead-lettered messages.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*common.ProducerMessage
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, msg *common.ProducerMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingPublisher) published() []*common.ProducerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*common.ProducerMessage, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "test-group",
		Topics:  []string{"test-topic"},
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: "dlq",
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	mutate := map[string]func(*ConsumerConfig){
		"no brokers":  func(c *ConsumerConfig) { c.Brokers = nil },
		"no group":    func(c *ConsumerConfig) { c.GroupID = "" },
		"no topics":   func(c *ConsumerConfig) { c.Topics = nil },
		"bad offset":  func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" },
		"neg retries": func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			fn(&cfg)
			assert.True(t, apperrors.IsCode(ValidateConsumerConfig(cfg), apperrors.ErrCodeValidation))
		})
	}
}

func TestConsumerConfigFrom(t *testing.T) {
	kc := config.KafkaConfig{
		Brokers:         []string{"k:9092"},
		ConsumerGroup:   "g",
		AutoOffsetReset: "latest",
		MaxRetries:      4,
		RetryBackoff:    time.Second,
		DeadLetterTopic: "dead",
	}
	cfg := ConsumerConfigFrom(kc, "scans")
	assert.Equal(t, []string{"scans"}, cfg.Topics)
	assert.Equal(t, "g", cfg.GroupID)
	assert.Equal(t, "latest", cfg.AutoOffsetReset)
	assert.Equal(t, 4, cfg.RetryConfig.MaxRetries)
	assert.Equal(t, "dead", cfg.RetryConfig.DeadLetterTopic)
}

func TestStart_AlreadyRunning(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumeLoop_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{
		Topic:   "test-topic",
		Offset:  7,
		Value:   []byte("value"),
		Headers: []kafka.Header{{Key: "h", Value: []byte("v")}},
	}}}
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), nil, testutil.NewMockLogger())

	received := make(chan *common.Message, 1)
	c.Subscribe("test-topic", func(_ context.Context, msg *common.Message) error {
		received <- msg
		return nil
	})

	require.NoError(t, c.Start(context.Background()))

	select {
	case msg := <-received:
		assert.Equal(t, "value", string(msg.Value))
		assert.Equal(t, int64(7), msg.Offset)
		assert.Equal(t, "v", msg.Headers["h"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}

	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
	assert.Equal(t, int64(1), c.Processed())
}

func TestConsumeLoop_UnknownTopicIsCommitted(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "other", Value: []byte("x")}}}
	log := testutil.NewMockLogger()
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), nil, log)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return reader.committedCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, log.HasMessage("warn", "no handler for topic"))
}

func TestProcessMessage_RetryThenSucceed(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil)

	attempts := 0
	handler := func(context.Context, *common.Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}

	require.NoError(t, c.processMessage(context.Background(), &common.Message{}, handler))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.metrics.MessagesRetried.Load())
	assert.Equal(t, int64(1), c.Processed())
}

func TestProcessMessage_ExhaustedGoesToDeadLetter(t *testing.T) {
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, testutil.NewMockLogger())

	var attempts atomic.Int32
	handler := func(context.Context, *common.Message) error {
		attempts.Add(1)
		return apperrors.New(apperrors.CodeServiceUnavailable, "lock backend down")
	}

	msg := &common.Message{Topic: "test-topic", Offset: 42, Key: []byte("u1"), Value: []byte("payload"), Headers: map[string]string{"event_type": "scan.requested"}}
	require.NoError(t, c.processMessage(context.Background(), msg, handler))

	assert.Equal(t, int32(3), attempts.Load())
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, "dlq", out[0].Topic)
	assert.Equal(t, []byte("u1"), out[0].Key)
	assert.Equal(t, "test-topic", out[0].Headers[HeaderOriginalTopic])
	assert.Equal(t, "42", out[0].Headers[HeaderOriginalOffset])
	assert.Equal(t, string(apperrors.CodeServiceUnavailable), out[0].Headers[HeaderErrorCode])
	assert.Equal(t, "scan.requested", out[0].Headers["event_type"])
	assert.NotContains(t, msg.Headers, HeaderOriginalTopic)
	assert.Equal(t, int64(1), c.DeadLettered())
}

func TestProcessMessage_DecodeFailureSkipsRetries(t *testing.T) {
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, nil)

	attempts := 0
	handler := func(context.Context, *common.Message) error {
		attempts++
		return apperrors.New(apperrors.CodeMessageDecodeFailed, "garbage")
	}

	require.NoError(t, c.processMessage(context.Background(), &common.Message{Topic: "t"}, handler))
	assert.Equal(t, 1, attempts)
	assert.Len(t, dlq.published(), 1)
}

func TestProcessMessage_DeadLetterFailureIsLogged(t *testing.T) {
	dlq := &recordingPublisher{err: errors.New("dlq down")}
	log := testutil.NewMockLogger()
	c := NewConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dlq, log)

	handler := func(context.Context, *common.Message) error {
		return apperrors.InvalidParam("bad")
	}

	require.NoError(t, c.processMessage(context.Background(), &common.Message{Topic: "t"}, handler))
	assert.True(t, log.HasMessage("error", "failed to send to dead letter topic"))
	assert.Zero(t, c.DeadLettered())
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.RetryBackoff = time.Hour
	cfg.RetryConfig.MaxRetryBackoff = time.Hour
	c := NewConsumerWithReader(&mockKafkaReader{}, cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	handler := func(context.Context, *common.Message) error {
		cancel()
		return errors.New("fail")
	}

	err := c.processMessage(ctx, &common.Message{}, handler)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(errors.New("plain")))
	assert.True(t, retryable(apperrors.Unavailable("down")))
	assert.False(t, retryable(apperrors.New(apperrors.CodeMessageDecodeFailed, "x")))
	assert.False(t, retryable(apperrors.InvalidParam("x")))
}

//Personal.AI order the ending
