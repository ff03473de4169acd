package intelligence

import (
	"context"
	"math"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// RelationshipContextProvider is the slice of RelationshipAnalyzer the
// budget estimator needs.
type RelationshipContextProvider interface {
	Analyze(ctx context.Context, ownerID, recipientID string) (*gifting.RelationshipContext, error)
}

// RelationshipMultiplier scales a budget by closeness: closeness/10*1.5+0.5,
// or 1.0 without a context.
func RelationshipMultiplier(rc *gifting.RelationshipContext) float64 {
	if rc == nil {
		return 1.0
	}
	return float64(rc.ClosenessLevel)/10*1.5 + 0.5
}

// BudgetConfidence blends historical success with closeness:
// 0.5 + 0.3*avgSuccess + 0.2*closeness/10, clamped to [0, 1].
func BudgetConfidence(history gifting.GiftingHistory, rc *gifting.RelationshipContext) float64 {
	c := budgetConfidenceFloor + 0.3*history.AverageSuccessRate()
	if rc != nil {
		c += 0.2 * float64(rc.ClosenessLevel) / 10
	}
	return clampFloat(c, 0, 1)
}

// MaxBudgetAmount caps every computed budget bound.
const MaxBudgetAmount = math.MaxInt32

// ComputeBudget applies the relationship and seasonal multipliers to base.
// The result always satisfies 0 <= Min <= Max <= MaxBudgetAmount.
func ComputeBudget(base gifting.PriceRange, relFactor, seasonalFactor float64) (int, int) {
	factor := relFactor * seasonalFactor
	if factor < 0 || math.IsNaN(factor) {
		factor = 0
	}
	lo := scaleBudgetBound(base.Min, factor)
	hi := scaleBudgetBound(base.Max, factor)
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

func scaleBudgetBound(v, factor float64) int {
	if math.IsNaN(v) || v <= 0 || factor == 0 {
		return 0
	}
	scaled := math.Round(v * factor)
	if math.IsNaN(scaled) || scaled >= MaxBudgetAmount {
		return MaxBudgetAmount
	}
	return int(scaled)
}

// BudgetEstimator recommends a spending range per recipient and occasion.
type BudgetEstimator struct {
	profiles      gifting.ProfileRepository
	relationships RelationshipContextProvider
	memo          *memo
	metrics       MetricsRecorder
	config        *Config
	logger        logging.Logger
}

// NewBudgetEstimator constructs a BudgetEstimator.
func NewBudgetEstimator(
	profiles gifting.ProfileRepository,
	relationships RelationshipContextProvider,
	cache IntelligenceCache,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg *Config,
) *BudgetEstimator {
	cfg = resolveConfig(cfg)
	if metrics == nil {
		metrics = NoopMetrics()
	}
	logger = logging.OrNop(logger).Named("budget")
	return &BudgetEstimator{
		profiles:      profiles,
		relationships: relationships,
		memo:          newMemo(cache, cfg, metrics, logger),
		metrics:       metrics,
		config:        cfg,
		logger:        logger,
	}
}

// Recommend returns a budget for requesterID gifting recipientID on
// occasion.  When the requester's profile cannot be loaded it returns
// (nil, err) and the caller is expected to use DefaultBudget.
func (e *BudgetEstimator) Recommend(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error) {
	key := CacheKey{RequesterID: requesterID, RecipientID: recipientID, Type: AnalysisBudget, Qualifier: occasion}
	var cached gifting.BudgetRecommendation
	if e.memo.load(ctx, key, &cached) {
		return &cached, nil
	}

	prefs, err := e.profiles.GetPreferences(ctx, requesterID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.CodeProfileNotFound, "requester profile not found")
		}
		return nil, errors.Wrap(err, errors.CodeUpstreamFetchFailure, "failed to load requester profile")
	}
	if prefs == nil {
		return nil, errors.Newf(errors.CodeProfileNotFound, "requester %s has no profile", requesterID)
	}

	var rc *gifting.RelationshipContext
	if e.relationships != nil {
		rc, err = e.relationships.Analyze(ctx, requesterID, recipientID)
		if err != nil {
			e.logger.Warn("relationship context unavailable, using neutral multiplier",
				logging.String("requester_id", requesterID),
				logging.String("recipient_id", recipientID),
				logging.Err(err))
			e.metrics.RecordFallback("relationship")
			rc = nil
		}
	}

	rec := e.estimate(prefs, rc, occasion)
	e.memo.store(ctx, key, rec)
	return rec, nil
}

func (e *BudgetEstimator) estimate(prefs *gifting.Preferences, rc *gifting.RelationshipContext, occasion string) *gifting.BudgetRecommendation {
	base, ok := prefs.PriceRangeFor(occasion)
	if !ok || base.Validate() != nil {
		base = e.config.DefaultBudget
	}
	rel := RelationshipMultiplier(rc)
	seasonal := SeasonalMultiplier(occasion, e.config.Clock.Now())
	lo, hi := ComputeBudget(base, rel, seasonal)
	return &gifting.BudgetRecommendation{
		Min:        lo,
		Max:        hi,
		Confidence: BudgetConfidence(prefs.GiftingHistory, rc),
		Reasoning: gifting.BudgetReasoning{
			RelationshipFactor: rel,
			SeasonalFactor:     seasonal,
			BaseRange:          base,
		},
	}
}

// DefaultBudget is the substitute recommendation used when a requester's
// profile is unavailable: the configured default range with the seasonal
// multiplier for occasion.
func (e *BudgetEstimator) DefaultBudget(occasion string) *gifting.BudgetRecommendation {
	return defaultBudget(e.config.DefaultBudget, occasion, e.config.Clock.Now())
}

func defaultBudget(base gifting.PriceRange, occasion string, now time.Time) *gifting.BudgetRecommendation {
	seasonal := SeasonalMultiplier(occasion, now)
	lo, hi := ComputeBudget(base, 1.0, seasonal)
	return &gifting.BudgetRecommendation{
		Min:        lo,
		Max:        hi,
		Confidence: defaultBudgetConfidence,
		Reasoning: gifting.BudgetReasoning{
			RelationshipFactor: 1.0,
			SeasonalFactor:     seasonal,
			BaseRange:          base,
		},
		Fallback: true,
	}
}

//Personal.AI order the ending
