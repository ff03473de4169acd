package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

var ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held by this owner")

const defaultLockTTL = 2 * time.Minute

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// ScanLocker is a SET NX lock per requester.  It implements
// intelligence.ScanLocker.
type ScanLocker struct {
	client *Client
	logger logging.Logger
	prefix string
}

// NewScanLocker builds a locker whose keys live under prefix.
func NewScanLocker(client *Client, log logging.Logger, prefix string) *ScanLocker {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &ScanLocker{client: client, logger: logging.OrNop(log), prefix: prefix}
}

func (l *ScanLocker) key(requesterID string) string {
	return l.prefix + "lock:scan:" + requesterID
}

// Acquire takes the lock for ttl.  A lock held by someone else yields
// CodeConflict.
func (l *ScanLocker) Acquire(ctx context.Context, requesterID string, ttl time.Duration) (func(context.Context) error, error) {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	key := l.key(requesterID)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire scan lock")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeConflict, "scan lock is held").WithDetail("requester=" + requesterID)
	}

	release := func(ctx context.Context) error {
		n, err := unlockScript.Run(ctx, l.client.Underlying(), []string{key}, token).Int64()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release scan lock")
		}
		if n == 0 {
			l.logger.Warn("scan lock expired before release", logging.String("requester_id", requesterID))
			return ErrLockNotHeld
		}
		return nil
	}
	return release, nil
}

var _ intelligence.ScanLocker = (*ScanLocker)(nil)

//Personal.AI order the ending
