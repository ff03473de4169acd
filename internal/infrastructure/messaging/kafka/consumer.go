package kafka

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

const (
	defaultConsumerRetries = 3
	defaultRetryBackoff    = time.Second
	defaultMaxRetryBackoff = 30 * time.Second
	fetchErrorPause        = time.Second

	// Dead-letter headers.
	HeaderOriginalTopic  = "original_topic"
	HeaderErrorMessage   = "error_message"
	HeaderErrorCode      = "error_code"
	HeaderOriginalOffset = "original_offset"
)

// RetryConfig defines redelivery behaviour for failed handlers.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string // "earliest" | "latest"
	MaxWait         time.Duration
	RetryConfig     RetryConfig
}

// ConsumerConfigFrom maps the service Kafka settings onto a ConsumerConfig
// subscribed to the given topics.
func ConsumerConfigFrom(cfg config.KafkaConfig, topics ...string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.ConsumerGroup,
		Topics:          topics,
		AutoOffsetReset: cfg.AutoOffsetReset,
		RetryConfig: RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			RetryBackoff:    cfg.RetryBackoff,
			DeadLetterTopic: cfg.DeadLetterTopic,
		},
	}
}

// ConsumerMetrics holds consumer counters.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
	Lag                  atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// Publisher is the producer side the consumer needs for dead-lettering.
type Publisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// Consumer dispatches messages from a consumer group to per-topic handlers.
// A handler error is retried with exponential backoff; once retries are
// exhausted the message is dead-lettered and its offset committed.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]common.MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher
	metrics    *ConsumerMetrics
}

// NewConsumer creates a Consumer backed by a kafka.Reader.  deadLetter may
// be nil, in which case exhausted messages are logged and dropped.
func NewConsumer(cfg ConsumerConfig, deadLetter Publisher, log logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return NewConsumerWithReader(kafka.NewReader(readerCfg), cfg, deadLetter, log), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter Publisher, log logging.Logger) *Consumer {
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logging.OrNop(log),
		handlers:   make(map[string]common.MessageHandler),
		deadLetter: deadLetter,
		metrics:    &ConsumerMetrics{},
	}
}

// Subscribe registers handler for topic, replacing any previous handler.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop.  It returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchErrorPause):
			}
			continue
		}

		c.metrics.MessagesConsumed.Add(1)
		c.metrics.Lag.Store(m.HighWaterMark - m.Offset)

		msg := fromKafkaMessage(m)

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		} else if err := c.processMessage(ctx, msg, handler); err != nil {
			// Only cancellation ends up here; leave the offset for redelivery.
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				logging.String("topic", m.Topic),
				logging.Int64("offset", m.Offset),
				logging.Err(err))
		}
	}
}

// processMessage runs handler with retries.  It returns an error only when
// ctx is cancelled mid-retry; every other outcome is terminal for the message.
func (c *Consumer) processMessage(ctx context.Context, msg *common.Message, handler common.MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		c.metrics.MessagesProcessed.Add(1)
		return nil
	}

	if retryable(err) {
		maxRetries := c.config.RetryConfig.MaxRetries
		if maxRetries == 0 {
			maxRetries = defaultConsumerRetries
		}
		backoff := c.config.RetryConfig.RetryBackoff
		if backoff <= 0 {
			backoff = defaultRetryBackoff
		}
		maxBackoff := c.config.RetryConfig.MaxRetryBackoff
		if maxBackoff <= 0 {
			maxBackoff = defaultMaxRetryBackoff
		}

		for i := 0; i < maxRetries; i++ {
			c.metrics.MessagesRetried.Add(1)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			if err = handler(ctx, msg); err == nil {
				c.metrics.MessagesProcessed.Add(1)
				return nil
			}
			if !retryable(err) {
				break
			}

			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	c.metrics.MessagesFailed.Add(1)
	c.logger.Error("message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.String("error_code", string(errors.GetCode(err))),
		logging.Err(err))

	c.sendToDeadLetter(ctx, msg, err)
	return nil
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *common.Message, cause error) {
	if c.deadLetter == nil || c.config.RetryConfig.DeadLetterTopic == "" {
		return
	}

	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderOriginalOffset] = strconv.FormatInt(msg.Offset, 10)
	headers[HeaderErrorMessage] = cause.Error()
	headers[HeaderErrorCode] = string(errors.GetCode(cause))

	dl := &common.ProducerMessage{
		Topic:   c.config.RetryConfig.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("failed to send to dead letter topic", logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
}

// retryable reports whether redelivering the same bytes could succeed.
// Malformed payloads and invalid requests never will.
func retryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.CodeMessageDecodeFailed, errors.CodeInvalidParam, errors.CodeValidation:
		return false
	}
	return true
}

// Processed returns the number of messages handled successfully.
func (c *Consumer) Processed() int64 { return c.metrics.MessagesProcessed.Load() }

// DeadLettered returns the number of messages forwarded to the dead-letter topic.
func (c *Consumer) DeadLettered() int64 { return c.metrics.MessagesDeadLettered.Load() }

// Close stops the loop and closes the reader.  Later calls return nil.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	err := c.reader.Close()
	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.metrics.MessagesConsumed.Load()),
		logging.Int64("dead_lettered", c.metrics.MessagesDeadLettered.Load()))
	return err
}

func fromKafkaMessage(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// ValidateConsumerConfig validates cfg.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid auto offset reset").WithDetail(cfg.AutoOffsetReset)
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
