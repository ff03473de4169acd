package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// Ping succeeds as soon as one broker accepts a connection.
func Ping(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.Unavailable("no kafka brokers configured")
	}

	var dialer kafka.Dialer
	var lastErr error
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		lastErr = err
	}
	return errors.Wrap(lastErr, errors.ErrCodeServiceUnavailable,
		fmt.Sprintf("none of %d kafka brokers reachable", len(brokers)))
}

//Personal.AI order the ending
