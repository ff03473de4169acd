package bootstrap

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

type capturePublisher struct {
	mu  sync.Mutex
	out []*common.ProducerMessage
}

func (c *capturePublisher) Publish(_ context.Context, msg *common.ProducerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, msg)
	return nil
}

func newTestPlatform(t *testing.T) (*Platform, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Platform{
		Config:   config.NewDefaultConfig(),
		Postgres: postgres.NewConnectionWithDB(db, nil),
	}, mock
}

func TestPlatform_ServiceWithoutMessaging(t *testing.T) {
	p, _ := newTestPlatform(t)

	svc, err := p.Service()
	require.NoError(t, err)

	_, err = svc.RequestScan(context.Background(), "u1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeatureDisabled))
}

func TestPlatform_ServicePublishesScanRequests(t *testing.T) {
	p, _ := newTestPlatform(t)
	pub := &capturePublisher{}
	p.Events = kafka.NewEventPublisher(pub, "scans", "opps", nil)

	svc, err := p.Service()
	require.NoError(t, err)

	req, err := svc.RequestScan(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, req.RequestID)
	require.Len(t, pub.out, 1)
	assert.Equal(t, "scans", pub.out[0].Topic)
	assert.Equal(t, []byte("u1"), pub.out[0].Key)
}

func TestPlatform_ServiceUsesLocalCacheWithoutRedis(t *testing.T) {
	p, _ := newTestPlatform(t)

	_, err := p.Service()
	require.NoError(t, err)
	require.NotNil(t, p.LocalCache)

	cache := p.LocalCache
	_, err = p.Service()
	require.NoError(t, err)
	assert.Same(t, cache, p.LocalCache)
}

func TestPlatform_ServiceUsesRedisWhenEnabled(t *testing.T) {
	p, _ := newTestPlatform(t)
	mr := miniredis.RunT(t)
	p.Redis = redis.NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)

	_, err := p.Service()
	require.NoError(t, err)
	assert.Nil(t, p.LocalCache)
}

func TestPlatform_PurgeLocalCache(t *testing.T) {
	p, _ := newTestPlatform(t)
	p.Logger = logging.NewNopLogger()
	p.LocalCache = intelligence.NewMemoryCache(nil)
	key := intelligence.CacheKey{RequesterID: "u1", Type: intelligence.AnalysisBudget}
	require.NoError(t, p.LocalCache.Set(context.Background(), key, []byte("1"), time.Now().Add(20*time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.PurgeLocalCache(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return p.LocalCache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPlatform_HealthCheckers(t *testing.T) {
	p, mock := newTestPlatform(t)
	mr := miniredis.RunT(t)
	p.Redis = redis.NewClientFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)

	checkers := p.HealthCheckers()
	require.Len(t, checkers, 2)
	assert.Equal(t, "postgres", checkers[0].Name())
	assert.Equal(t, "redis", checkers[1].Name())

	mock.ExpectPing()
	assert.NoError(t, checkers[0].Check(context.Background()))
	assert.NoError(t, checkers[1].Check(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatform_ReportPoolStats(t *testing.T) {
	p, _ := newTestPlatform(t)
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	p.Metrics = prometheus.NewEngineMetrics(collector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ReportPoolStats(ctx, time.Hour)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `test_db_pool_open{db="postgres"}`)
}

func TestPlatform_ReportPoolStatsWithoutMetrics(t *testing.T) {
	p, _ := newTestPlatform(t)
	done := make(chan struct{})
	go func() {
		p.ReportPoolStats(context.Background(), time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReportPoolStats should return immediately without metrics")
	}
}

func TestPlatform_CloseReverseOrder(t *testing.T) {
	var order []string
	boom := stderrors.New("boom")
	p := &Platform{closers: []func() error{
		func() error { order = append(order, "postgres"); return nil },
		func() error { order = append(order, "redis"); return boom },
		func() error { order = append(order, "kafka"); return nil },
	}}

	err := p.Close()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"kafka", "redis", "postgres"}, order)
	assert.NoError(t, p.Close())
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestWatchLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitoring:\n  log:\n    level: info\n"), 0o644))

	_, level, err := NewLoggerWithLevel(config.LogConfig{Level: "info", Format: "json", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NoError(t, WatchLogLevel(path, level, nil))

	require.NoError(t, os.WriteFile(path, []byte("monitoring:\n  log:\n    level: debug\n"), 0o644))
	assert.Eventually(t, func() bool { return level.String() == "debug" }, 5*time.Second, 50*time.Millisecond)
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Database.Postgres.Host = "127.0.0.1"
	cfg.Database.Postgres.Port = 1

	p, err := Open(cfg, nil, "test")

	assert.Nil(t, p)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

//Personal.AI order the ending
