package intelligence

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// CreateRuleRequest is the input of CreateRuleSnapshot.
type CreateRuleRequest struct {
	RequesterID string `json:"requester_id"`
	RecipientID string `json:"recipient_id"`
	Occasion    string `json:"occasion"`
}

// Validate checks required fields.
func (r *CreateRuleRequest) Validate() error {
	if r == nil {
		return errors.InvalidParam("request is required")
	}
	if strings.TrimSpace(r.RequesterID) == "" {
		return errors.InvalidParam("requester_id is required")
	}
	if strings.TrimSpace(r.RecipientID) == "" {
		return errors.InvalidParam("recipient_id is required")
	}
	if strings.TrimSpace(r.Occasion) == "" {
		return errors.New(errors.CodeInvalidOccasion, "occasion is required")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the entry point used by the HTTP, CLI and worker surfaces.
type Service interface {
	ScanOpportunities(ctx context.Context, requesterID string) ([]*gifting.GiftOpportunity, error)
	GetRelationshipContext(ctx context.Context, requesterID, recipientID string) (*gifting.RelationshipContext, error)
	RecommendBudget(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error)
	PredictCategories(ctx context.Context, requesterID, recipientID, occasion string) ([]string, error)
	CreateRuleSnapshot(ctx context.Context, req *CreateRuleRequest) (*gifting.AutoGiftRule, error)
	RequestScan(ctx context.Context, requesterID string) (*ScanRequest, error)
	HandleScanRequest(ctx context.Context, req *ScanRequest) error
}

// Dependencies groups the collaborators of the Service.  Cache, Metrics,
// publishers, Locker and Logger are optional.
type Dependencies struct {
	Connections gifting.ConnectionRepository
	Messages    gifting.MessageRepository
	Profiles    gifting.ProfileRepository
	Wishlists   gifting.WishlistRepository
	Rules       gifting.RuleRepository

	Cache         IntelligenceCache
	Metrics       MetricsRecorder
	ScanRequests  ScanRequestPublisher
	Opportunities OpportunityPublisher
	Locker        ScanLocker
	LockTTL       time.Duration
	Logger        logging.Logger
}

type serviceImpl struct {
	relationships *RelationshipAnalyzer
	budgets       *BudgetEstimator
	categories    *CategoryPredictor
	scanner       *OpportunityScanner
	profiles      gifting.ProfileRepository
	rules         gifting.RuleRepository
	invalidator   CacheInvalidator
	scanRequests  ScanRequestPublisher
	opportunities OpportunityPublisher
	locker        ScanLocker
	lockTTL       time.Duration
	config        *Config
	logger        logging.Logger
}

// NewService wires the engine components.
func NewService(deps Dependencies, cfg *Config) (Service, error) {
	if deps.Connections == nil || deps.Messages == nil || deps.Profiles == nil {
		return nil, errors.InvalidParam("connections, messages and profiles repositories are required")
	}
	cfg = resolveConfig(cfg)
	if deps.Metrics == nil {
		deps.Metrics = NoopMetrics()
	}
	logger := logging.OrNop(deps.Logger)
	if deps.LockTTL <= 0 {
		deps.LockTTL = 2 * time.Minute
	}

	relationships := NewRelationshipAnalyzer(deps.Connections, deps.Messages, deps.Cache, deps.Metrics, logger, cfg)
	budgets := NewBudgetEstimator(deps.Profiles, relationships, deps.Cache, deps.Metrics, logger, cfg)
	categories := NewCategoryPredictor(deps.Profiles, deps.Wishlists, deps.Cache, deps.Metrics, logger, cfg)
	timer := NewPurchaseTimer(deps.Profiles, logger, cfg)
	scanner := NewOpportunityScanner(deps.Connections, budgets, categories, timer, deps.Metrics, logger, cfg)

	invalidator, _ := deps.Cache.(CacheInvalidator)

	return &serviceImpl{
		relationships: relationships,
		budgets:       budgets,
		categories:    categories,
		scanner:       scanner,
		profiles:      deps.Profiles,
		rules:         deps.Rules,
		invalidator:   invalidator,
		scanRequests:  deps.ScanRequests,
		opportunities: deps.Opportunities,
		locker:        deps.Locker,
		lockTTL:       deps.LockTTL,
		config:        cfg,
		logger:        logger.Named("intelligence"),
	}, nil
}

func (s *serviceImpl) ScanOpportunities(ctx context.Context, requesterID string) ([]*gifting.GiftOpportunity, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, errors.InvalidParam("requester id is required")
	}
	return s.scanner.Scan(ctx, requesterID)
}

// GetRelationshipContext returns the context, or a ConnectionNotFound error
// when the two users are not connected.
func (s *serviceImpl) GetRelationshipContext(ctx context.Context, requesterID, recipientID string) (*gifting.RelationshipContext, error) {
	if err := requirePair(requesterID, recipientID); err != nil {
		return nil, err
	}
	rc, err := s.relationships.Analyze(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, errors.Newf(errors.CodeConnectionNotFound, "no connection from %s to %s", requesterID, recipientID)
	}
	return rc, nil
}

// RecommendBudget never fails on profile problems: it substitutes the
// default budget, flagged with Fallback.
func (s *serviceImpl) RecommendBudget(ctx context.Context, requesterID, recipientID, occasion string) (*gifting.BudgetRecommendation, error) {
	if err := requirePair(requesterID, recipientID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(occasion) == "" {
		return nil, errors.New(errors.CodeInvalidOccasion, "occasion is required")
	}
	rec, err := s.budgets.Recommend(ctx, requesterID, recipientID, occasion)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, errors.CodeTimeout, "budget recommendation aborted")
		}
		s.logger.Warn("budget fell back to default",
			logging.String("requester_id", requesterID),
			logging.String("occasion", occasion),
			logging.Err(err))
		return s.budgets.DefaultBudget(occasion), nil
	}
	return rec, nil
}

func (s *serviceImpl) PredictCategories(ctx context.Context, requesterID, recipientID, occasion string) ([]string, error) {
	if err := requirePair(requesterID, recipientID); err != nil {
		return nil, err
	}
	return orDefaultCategories(s.categories.Predict(ctx, requesterID, recipientID, occasion)), nil
}

// CreateRuleSnapshot persists exactly one AutoGiftRule carrying the
// relationship context, seasonal factors and budget metrics current at
// creation time.  Cached analyses of the requester are dropped first so the
// snapshot is derived from fresh data.
func (s *serviceImpl) CreateRuleSnapshot(ctx context.Context, req *CreateRuleRequest) (*gifting.AutoGiftRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.rules == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "rule storage is not configured")
	}

	rule, err := gifting.NewAutoGiftRule(req.RequesterID, req.RecipientID, req.Occasion, s.config.Clock.Now())
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		if _, err := s.invalidator.Invalidate(ctx, rule.RequesterID); err != nil {
			s.logger.Warn("failed to invalidate cached analyses",
				logging.String("requester_id", rule.RequesterID),
				logging.Err(err))
		}
	}

	rc, err := s.relationships.Analyze(ctx, rule.RequesterID, rule.RecipientID)
	if err != nil {
		s.logger.Warn("rule snapshot without relationship context",
			logging.String("requester_id", rule.RequesterID),
			logging.String("recipient_id", rule.RecipientID),
			logging.Err(err))
		rc = nil
	}
	rule.RelationshipContext = rc

	seasonal := SeasonalAdjustment(rule.Occasion, rule.CreatedAt)
	rule.SeasonalAdjustmentFactors = gifting.SeasonalAdjustment{
		Month:              int(seasonal.Month),
		Multiplier:         seasonal.Multiplier,
		OccasionMultiplier: seasonal.OccasionMultiplier,
		Occasion:           rule.Occasion,
	}

	budget, err := s.RecommendBudget(ctx, rule.RequesterID, rule.RecipientID, rule.Occasion)
	if err != nil {
		return nil, err
	}
	var avg float64
	if prefs, perr := s.profiles.GetPreferences(ctx, rule.RequesterID); perr == nil && prefs != nil {
		avg = prefs.GiftingHistory.AverageSuccessRate()
	}
	rule.SuccessMetrics = gifting.SuccessMetrics{
		BudgetMin:             budget.Min,
		BudgetMax:             budget.Max,
		BudgetConfidence:      budget.Confidence,
		AverageSuccessRate:    avg,
		RecommendedCategories: orDefaultCategories(s.categories.Predict(ctx, rule.RequesterID, rule.RecipientID, rule.Occasion)),
	}

	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("auto-gift rule created",
		logging.String("rule_id", rule.ID),
		logging.String("requester_id", rule.RequesterID),
		logging.String("recipient_id", rule.RecipientID))
	return rule, nil
}

// RequestScan enqueues an asynchronous scan for requesterID.
func (s *serviceImpl) RequestScan(ctx context.Context, requesterID string) (*ScanRequest, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, errors.InvalidParam("requester id is required")
	}
	if s.scanRequests == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "asynchronous scans are not enabled")
	}
	req := &ScanRequest{
		RequestID:   string(common.NewID()),
		RequesterID: requesterID,
		RequestedAt: s.config.Clock.Now(),
	}
	if err := s.scanRequests.PublishScanRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleScanRequest runs a queued scan under a per-requester lock and
// publishes the result.
func (s *serviceImpl) HandleScanRequest(ctx context.Context, req *ScanRequest) error {
	if req == nil || strings.TrimSpace(req.RequesterID) == "" {
		return errors.New(errors.CodeMessageDecodeFailed, "scan request without requester id")
	}
	log := s.logger.With(logging.String("request_id", req.RequestID), logging.String("requester_id", req.RequesterID))

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, req.RequesterID, s.lockTTL)
		if err != nil {
			if errors.IsCode(err, errors.CodeConflict) {
				log.Info("scan already in progress, skipping")
				return nil
			}
			return errors.Wrap(err, errors.CodeServiceUnavailable, "failed to acquire scan lock")
		}
		defer func() {
			if relErr := release(context.Background()); relErr != nil {
				log.Warn("failed to release scan lock", logging.Err(relErr))
			}
		}()
	}

	ops, err := s.scanner.Scan(ctx, req.RequesterID)
	if err != nil {
		return err
	}
	if s.opportunities == nil || len(ops) == 0 {
		return nil
	}
	return s.opportunities.PublishOpportunities(ctx, req.RequesterID, ops)
}

// orDefaultCategories substitutes DefaultCategories for an empty prediction.
func orDefaultCategories(categories []string) []string {
	if len(categories) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return categories
}

func requirePair(requesterID, recipientID string) error {
	if strings.TrimSpace(requesterID) == "" {
		return errors.InvalidParam("requester id is required")
	}
	if strings.TrimSpace(recipientID) == "" {
		return errors.InvalidParam("recipient id is required")
	}
	return nil
}

//Personal.AI order the ending
