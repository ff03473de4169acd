package intelligence

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// OpportunityConfidence scores an event: 0.7 base, +0.2 family,
// +0.15 close friend, +0.1 birthday, +0.05 anniversary, capped at 1.0.
func OpportunityConfidence(rel gifting.RelationshipType, dateType string) float64 {
	score := baseOpportunityConfidence
	switch rel {
	case gifting.RelationshipFamily:
		score += 0.2
	case gifting.RelationshipCloseFriend:
		score += 0.15
	}
	switch strings.ToLower(strings.TrimSpace(dateType)) {
	case gifting.DateTypeBirthday:
		score += 0.1
	case gifting.DateTypeAnniversary:
		score += 0.05
	}
	return clampFloat(score, 0, 1)
}

// BudgetRecommender is the slice of BudgetEstimator the scanner uses.
type BudgetRecommender interface {
	Recommend(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error)
	DefaultBudget(occasion string) *gifting.BudgetRecommendation
}

// CategoryRecommender is the slice of CategoryPredictor the scanner uses.
type CategoryRecommender interface {
	Predict(ctx context.Context, requesterID, recipientID, occasion string) []string
}

// candidate is one (connection, date) pair inside the scan window.
type candidate struct {
	recipientID string
	relType     gifting.RelationshipType
	dateType    string
	eventDate   time.Time
}

// OpportunityScanner turns a requester's connections and their special
// dates into time-ordered gift opportunities.
type OpportunityScanner struct {
	connections gifting.ConnectionRepository
	budgets     BudgetRecommender
	categories  CategoryRecommender
	timer       *PurchaseTimer
	metrics     MetricsRecorder
	config      *Config
	logger      logging.Logger
}

// NewOpportunityScanner constructs an OpportunityScanner.
func NewOpportunityScanner(
	connections gifting.ConnectionRepository,
	budgets BudgetRecommender,
	categories CategoryRecommender,
	timer *PurchaseTimer,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg *Config,
) *OpportunityScanner {
	cfg = resolveConfig(cfg)
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if timer == nil {
		timer = NewPurchaseTimer(nil, logger, cfg)
	}
	return &OpportunityScanner{
		connections: connections,
		budgets:     budgets,
		categories:  categories,
		timer:       timer,
		metrics:     metrics,
		config:      cfg,
		logger:      logging.OrNop(logger).Named("scanner"),
	}
}

// Scan returns every gift opportunity for requesterID whose event falls
// between the start of today (UTC) and now plus the scan window, sorted by
// event date.  Only the bulk connection load is fatal; per-recipient
// enrichment failures fall back to defaults.  Cancelling ctx aborts the scan
// and discards partial results.
func (s *OpportunityScanner) Scan(ctx context.Context, requesterID string) ([]*gifting.GiftOpportunity, error) {
	start := time.Now()
	ops, err := s.scan(ctx, requesterID)
	status := ScanStatusOK
	switch {
	case errors.IsCode(err, errors.CodeScanCancelled):
		status = ScanStatusCancelled
	case err != nil:
		status = ScanStatusFailed
	}
	s.metrics.RecordScan(status, time.Since(start), len(ops))
	return ops, err
}

func (s *OpportunityScanner) scan(ctx context.Context, requesterID string) ([]*gifting.GiftOpportunity, error) {
	log := s.logger.WithContext(ctx).With(logging.String("requester_id", requesterID))
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	rows, err := s.connections.ListAcceptedWithSpecialDates(ctx, requesterID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		log.Error("bulk connection load failed", logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeUpstreamFetchFailure, "failed to load connections and special dates")
	}

	now := s.config.Clock.Now()
	candidates := s.collect(log, rows, now)
	if len(candidates) == 0 {
		log.Debug("no upcoming events", logging.Int("connections", len(rows)))
		return []*gifting.GiftOpportunity{}, nil
	}

	results := make([]*gifting.GiftOpportunity, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.enrich(gctx, log, requesterID, c)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cancelled(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	gifting.SortOpportunities(results)
	log.Info("opportunity scan finished",
		logging.Int("connections", len(rows)),
		logging.Int("opportunities", len(results)))
	return results, nil
}

// ScanWindowRange is the closed interval a scan at now covers: from the start
// of now's UTC day to now plus window.
func ScanWindowRange(now time.Time, window time.Duration) common.DateRange {
	return common.NewDateRange(gifting.StartOfDay(now), now.Add(window))
}

// collect normalizes every special date and keeps those inside the window.
func (s *OpportunityScanner) collect(log logging.Logger, rows []*gifting.ConnectionWithDates, now time.Time) []candidate {
	window := ScanWindowRange(now, s.config.ScanWindow)

	var out []candidate
	for _, row := range rows {
		if row == nil || !row.IsAccepted() {
			continue
		}
		relType := gifting.ParseRelationshipType(string(row.RelationshipType))
		for _, d := range row.SpecialDates {
			eventDate, err := d.NextOccurrence(now)
			if err != nil {
				log.Warn("skipping malformed special date",
					logging.String("recipient_id", row.RecipientID),
					logging.String("date_type", d.DateType),
					logging.String("value", d.Value),
					logging.Err(err))
				s.metrics.RecordSkippedDate("malformed")
				continue
			}
			if !window.Contains(eventDate) {
				s.metrics.RecordSkippedDate("out_of_window")
				continue
			}
			out = append(out, candidate{
				recipientID: row.RecipientID,
				relType:     relType,
				dateType:    d.DateType,
				eventDate:   eventDate,
			})
		}
	}
	return out
}

// enrich builds the opportunity for one candidate under the per-recipient
// timeout.  It never fails.
func (s *OpportunityScanner) enrich(ctx context.Context, log logging.Logger, requesterID string, c candidate) *gifting.GiftOpportunity {
	rctx, cancel := context.WithTimeout(ctx, s.config.RecipientTimeout)
	defer cancel()

	var budget *gifting.BudgetRecommendation
	if s.budgets != nil {
		b, err := s.budgets.Recommend(rctx, requesterID, c.recipientID, c.dateType)
		if err != nil || b == nil {
			log.Warn("budget unavailable, using default",
				logging.String("recipient_id", c.recipientID),
				logging.String("occasion", c.dateType),
				logging.Err(err))
			s.metrics.RecordFallback("budget")
			b = s.budgets.DefaultBudget(c.dateType)
		}
		budget = b
	}
	if budget == nil {
		budget = defaultBudget(s.config.DefaultBudget, c.dateType, s.config.Clock.Now())
	}

	var categories []string
	if s.categories != nil {
		categories = s.categories.Predict(rctx, requesterID, c.recipientID, c.dateType)
	}
	if len(categories) == 0 {
		s.metrics.RecordFallback("categories")
		categories = orDefaultCategories(categories)
	}

	return &gifting.GiftOpportunity{
		RequesterID:           requesterID,
		RecipientID:           c.recipientID,
		RelationshipType:      c.relType,
		EventType:             c.dateType,
		EventDate:             c.eventDate,
		ConfidenceScore:       OpportunityConfidence(c.relType, c.dateType),
		SuggestedBudget:       budget.Suggested(),
		RecommendedCategories: categories,
		OptimalPurchaseTiming: s.timer.PurchaseTime(rctx, c.recipientID, c.eventDate),
	}
}

func cancelled(err error) error {
	return errors.Wrap(err, errors.CodeScanCancelled, "opportunity scan cancelled")
}

//Personal.AI order the ending
