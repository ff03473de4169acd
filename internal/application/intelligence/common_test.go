package intelligence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// testNow is 10 March 2025, 12:00 UTC.
var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Clock = FixedClock(testNow)
	return cfg
}

func pairKey(a, b string) string { return a + "|" + b }

// -----------------------------------------------------------------------
// Fake: ConnectionRepository
// -----------------------------------------------------------------------

type fakeConnections struct {
	rows      []*gifting.ConnectionWithDates
	listErr   error
	conns     map[string]*gifting.Connection
	findErr   error
	findCalls int32
}

func newFakeConnections() *fakeConnections {
	return &fakeConnections{conns: make(map[string]*gifting.Connection)}
}

func (f *fakeConnections) add(c *gifting.Connection, dates ...gifting.SpecialDate) {
	f.conns[pairKey(c.OwnerID, c.RecipientID)] = c
	f.rows = append(f.rows, &gifting.ConnectionWithDates{Connection: *c, SpecialDates: dates})
}

func (f *fakeConnections) ListAcceptedWithSpecialDates(_ context.Context, ownerID string) ([]*gifting.ConnectionWithDates, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*gifting.ConnectionWithDates, 0, len(f.rows))
	for _, r := range f.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeConnections) FindBetween(_ context.Context, ownerID, recipientID string) (*gifting.Connection, error) {
	atomic.AddInt32(&f.findCalls, 1)
	if f.findErr != nil {
		return nil, f.findErr
	}
	if c, ok := f.conns[pairKey(ownerID, recipientID)]; ok {
		return c, nil
	}
	return nil, errors.New(errors.CodeConnectionNotFound, "connection not found")
}

// -----------------------------------------------------------------------
// Fake: MessageRepository
// -----------------------------------------------------------------------

type fakeMessages struct {
	byPair map[string][]*gifting.Message
	err    error
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{byPair: make(map[string][]*gifting.Message)}
}

// addRecent records n messages between a and b, each one hour older than
// the previous, ending at at.
func (f *fakeMessages) addRecent(a, b string, n int, at time.Time) {
	for i := 0; i < n; i++ {
		f.byPair[pairKey(a, b)] = append(f.byPair[pairKey(a, b)], &gifting.Message{
			SenderID:    a,
			RecipientID: b,
			CreatedAt:   at.Add(-time.Duration(i) * time.Hour),
		})
	}
}

func (f *fakeMessages) ListRecent(_ context.Context, userA, userB string, limit int) ([]*gifting.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	msgs := append(append([]*gifting.Message(nil), f.byPair[pairKey(userA, userB)]...), f.byPair[pairKey(userB, userA)]...)
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// -----------------------------------------------------------------------
// Fake: ProfileRepository
// -----------------------------------------------------------------------

type fakeProfiles struct {
	prefs map[string]*gifting.Preferences
	errs  map[string]error
	calls int32
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{prefs: make(map[string]*gifting.Preferences), errs: make(map[string]error)}
}

func (f *fakeProfiles) GetPreferences(_ context.Context, userID string) (*gifting.Preferences, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[userID]; ok {
		return nil, err
	}
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return nil, errors.New(errors.CodeProfileNotFound, "profile not found")
}

// -----------------------------------------------------------------------
// Fake: WishlistRepository
// -----------------------------------------------------------------------

type fakeWishlists struct {
	lists map[string][]*gifting.PublicWishlist
	err   error
}

func (f *fakeWishlists) ListPublic(_ context.Context, ownerID string) ([]*gifting.PublicWishlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[ownerID], nil
}

// -----------------------------------------------------------------------
// Fake: RuleRepository
// -----------------------------------------------------------------------

type fakeRules struct {
	mu    sync.Mutex
	saved []*gifting.AutoGiftRule
	err   error
}

func (f *fakeRules) Save(_ context.Context, rule *gifting.AutoGiftRule) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, rule)
	return nil
}

func (f *fakeRules) ListByRequester(_ context.Context, requesterID string) ([]*gifting.AutoGiftRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*gifting.AutoGiftRule
	for _, r := range f.saved {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------
// Recording MetricsRecorder
// -----------------------------------------------------------------------

type recordingMetrics struct {
	mu        sync.Mutex
	scans     []string
	skipped   map[string]int
	fallbacks map[string]int
	hits      int
	misses    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{skipped: make(map[string]int), fallbacks: make(map[string]int)}
}

func (m *recordingMetrics) RecordScan(status string, _ time.Duration, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, status)
}

func (m *recordingMetrics) RecordSkippedDate(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}

func (m *recordingMetrics) RecordFallback(component string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks[component]++
}

func (m *recordingMetrics) RecordCacheLookup(_ AnalysisType, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// -----------------------------------------------------------------------
// Stubs for scanner collaborators
// -----------------------------------------------------------------------

type stubBudgets struct {
	recommend func(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error)
}

func (s *stubBudgets) Recommend(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error) {
	return s.recommend(ctx, requesterID, recipientID, occasion)
}

func (s *stubBudgets) DefaultBudget(occasion string) *gifting.BudgetRecommendation {
	return defaultBudget(DefaultBudgetRange, occasion, testNow)
}

type stubCategories struct {
	predict func(ctx context.Context, requesterID, recipientID, occasion string) []string
}

func (s *stubCategories) Predict(ctx context.Context, requesterID, recipientID, occasion string) []string {
	if s.predict == nil {
		return nil
	}
	return s.predict(ctx, requesterID, recipientID, occasion)
}

// -----------------------------------------------------------------------
// testify mocks: publishers and locker
// -----------------------------------------------------------------------

type mockScanRequestPublisher struct{ mock.Mock }

func (m *mockScanRequestPublisher) PublishScanRequest(ctx context.Context, req *ScanRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockOpportunityPublisher struct{ mock.Mock }

func (m *mockOpportunityPublisher) PublishOpportunities(ctx context.Context, requesterID string, ops []*gifting.GiftOpportunity) error {
	return m.Called(ctx, requesterID, ops).Error(0)
}

type mockLocker struct {
	mock.Mock
	released int32
}

func (m *mockLocker) Acquire(ctx context.Context, requesterID string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, requesterID, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		atomic.AddInt32(&m.released, 1)
		return nil
	}, nil
}

var (
	_ gifting.ConnectionRepository = (*fakeConnections)(nil)
	_ gifting.MessageRepository    = (*fakeMessages)(nil)
	_ gifting.ProfileRepository    = (*fakeProfiles)(nil)
	_ gifting.WishlistRepository   = (*fakeWishlists)(nil)
	_ gifting.RuleRepository       = (*fakeRules)(nil)
	_ MetricsRecorder              = (*recordingMetrics)(nil)
	_ BudgetRecommender            = (*stubBudgets)(nil)
	_ CategoryRecommender          = (*stubCategories)(nil)
	_ ScanRequestPublisher         = (*mockScanRequestPublisher)(nil)
	_ OpportunityPublisher         = (*mockOpportunityPublisher)(nil)
	_ ScanLocker                   = (*mockLocker)(nil)
)

//Personal.AI order the ending
