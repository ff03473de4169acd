package intelligence

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// baseCloseness is the starting closeness per relationship type.
var baseCloseness = map[gifting.RelationshipType]int{
	gifting.RelationshipFamily:      9,
	gifting.RelationshipCloseFriend: 8,
	gifting.RelationshipFriend:      6,
	gifting.RelationshipColleague:   4,
	gifting.RelationshipOther:       3,
}

// Connection age thresholds, in months, that each add one closeness point.
const (
	longRelationshipMonths     = 24
	lifelongRelationshipMonths = 60
)

// ClassifyInteractionFrequency buckets the number of recent messages.
func ClassifyInteractionFrequency(recentMessages int) gifting.InteractionFrequency {
	switch {
	case recentMessages > 10:
		return gifting.FrequencyVeryFrequent
	case recentMessages > 5:
		return gifting.FrequencyFrequent
	case recentMessages > 2:
		return gifting.FrequencyRegular
	case recentMessages > 0:
		return gifting.FrequencyOccasional
	default:
		return gifting.FrequencyRare
	}
}

// ComputeClosenessLevel combines relationship type, age and interaction
// frequency into a closeness level in [MinCloseness, MaxCloseness].
func ComputeClosenessLevel(t gifting.RelationshipType, ageMonths int, freq gifting.InteractionFrequency) int {
	level, ok := baseCloseness[t]
	if !ok {
		level = baseCloseness[gifting.RelationshipOther]
	}
	if ageMonths > longRelationshipMonths {
		level++
	}
	if ageMonths > lifelongRelationshipMonths {
		level++
	}
	level += freq.ClosenessAdjustment()
	return clampInt(level, gifting.MinCloseness, gifting.MaxCloseness)
}

// MonthsBetween returns the number of whole calendar months from "from" to
// "to", or 0 when to precedes from.
func MonthsBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if from.AddDate(0, months, 0).After(to) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// RelationshipAnalyzer derives a RelationshipContext for a pair of users.
type RelationshipAnalyzer struct {
	connections gifting.ConnectionRepository
	messages    gifting.MessageRepository
	memo        *memo
	inflight    singleflight.Group
	config      *Config
	logger      logging.Logger
}

// NewRelationshipAnalyzer constructs a RelationshipAnalyzer.  cache, metrics
// and logger may be nil.
func NewRelationshipAnalyzer(
	connections gifting.ConnectionRepository,
	messages gifting.MessageRepository,
	cache IntelligenceCache,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg *Config,
) *RelationshipAnalyzer {
	cfg = resolveConfig(cfg)
	logger = logging.OrNop(logger).Named("relationship")
	return &RelationshipAnalyzer{
		connections: connections,
		messages:    messages,
		memo:        newMemo(cache, cfg, metrics, logger),
		config:      cfg,
		logger:      logger,
	}
}

// Analyze returns the relationship context from ownerID to recipientID.
// A missing connection yields (nil, nil).  Any other upstream failure is
// returned as a CodeUpstreamFetchFailure error.
func (a *RelationshipAnalyzer) Analyze(ctx context.Context, ownerID, recipientID string) (*gifting.RelationshipContext, error) {
	key := CacheKey{RequesterID: ownerID, RecipientID: recipientID, Type: AnalysisRelationshipContext}
	var cached gifting.RelationshipContext
	if a.memo.load(ctx, key, &cached) {
		return &cached, nil
	}

	// Concurrent callers for the same pair share one derivation, which is
	// bounded by RecipientTimeout instead of any single caller's ctx.
	ch := a.inflight.DoChan(key.String(), func() (interface{}, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.RecipientTimeout)
		defer cancel()
		return a.derive(dctx, key)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CodeUpstreamFetchFailure, "relationship analysis aborted")
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	rc, _ := res.Val.(*gifting.RelationshipContext)
	if rc == nil {
		return nil, nil
	}
	out := *rc
	if rc.SpecialConsiderations != nil {
		out.SpecialConsiderations = append(make([]gifting.ConsiderationTag, 0, len(rc.SpecialConsiderations)), rc.SpecialConsiderations...)
	}
	return &out, nil
}

func (a *RelationshipAnalyzer) derive(ctx context.Context, key CacheKey) (*gifting.RelationshipContext, error) {
	ownerID, recipientID := key.RequesterID, key.RecipientID
	conn, err := a.connections.FindBetween(ctx, ownerID, recipientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeUpstreamFetchFailure, "failed to load connection")
	}
	if conn == nil {
		return nil, nil
	}

	msgs, err := a.messages.ListRecent(ctx, ownerID, recipientID, a.config.MessageLookback)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstreamFetchFailure, "failed to load recent messages")
	}

	now := a.config.Clock.Now()
	rc := BuildRelationshipContext(conn, msgs, now, a.config.InteractionWindow)
	a.memo.store(ctx, key, rc)

	a.logger.Debug("relationship context derived",
		logging.String("owner_id", ownerID),
		logging.String("recipient_id", recipientID),
		logging.Int("closeness", rc.ClosenessLevel),
		logging.String("frequency", string(rc.InteractionFrequency)))
	return rc, nil
}

// BuildRelationshipContext is the pure part of Analyze: it scores conn using
// the messages that fall inside window before now.
func BuildRelationshipContext(conn *gifting.Connection, msgs []*gifting.Message, now time.Time, window time.Duration) *gifting.RelationshipContext {
	cutoff := now.Add(-window)
	recent := 0
	for _, m := range msgs {
		if m != nil && !m.CreatedAt.Before(cutoff) {
			recent++
		}
	}

	relType := gifting.ParseRelationshipType(string(conn.RelationshipType))
	age := MonthsBetween(conn.CreatedAt, now)
	freq := ClassifyInteractionFrequency(recent)

	tags := make([]gifting.ConsiderationTag, 0, 2)
	if relType == gifting.RelationshipFamily {
		tags = append(tags, gifting.ConsiderationFamilyBond)
	}
	if conn.Permissions.ShareGiftPreferences {
		tags = append(tags, gifting.ConsiderationSharedPreferences)
	}

	return &gifting.RelationshipContext{
		RequesterID:                conn.OwnerID,
		RecipientID:                conn.RecipientID,
		RelationshipType:           relType,
		ClosenessLevel:             ComputeClosenessLevel(relType, age, freq),
		RelationshipDurationMonths: age,
		InteractionFrequency:       freq,
		SpecialConsiderations:      tags,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//Personal.AI order the ending
