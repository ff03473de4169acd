package intelligence

import (
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
)

// TimingStrategy selects how the purchase date of an opportunity is derived.
type TimingStrategy string

const (
	// TimingFixedOffset buys a fixed lead time before the event.
	TimingFixedOffset TimingStrategy = config.TimingFixedOffset
	// TimingRecipientPreference uses the recipient's stored advance-notice
	// preference, falling back to DefaultAdvanceNoticeDays.
	TimingRecipientPreference TimingStrategy = config.TimingRecipientPreference
)

// Engine constants.
const (
	interestCategoryGeneral   = "General"
	maxRecommendedCategories  = 5
	historySuccessThreshold   = 0.7
	baseOpportunityConfidence = 0.7
	budgetConfidenceFloor     = 0.5
	defaultBudgetConfidence   = budgetConfidenceFloor
)

// DefaultBudgetRange is the base price range used when a requester has no
// preference for an occasion.
var DefaultBudgetRange = gifting.PriceRange{Min: config.DefaultBudgetMin, Max: config.DefaultBudgetMax}

// DefaultCategories is substituted when no category signal is available.
var DefaultCategories = []string{interestCategoryGeneral}

// Config holds tuneable engine parameters.
type Config struct {
	ScanWindow               time.Duration
	MaxConcurrency           int
	RecipientTimeout         time.Duration
	TimingStrategy           TimingStrategy
	PurchaseLeadTime         time.Duration
	DefaultAdvanceNoticeDays int
	DefaultBudget            gifting.PriceRange
	MessageLookback          int
	InteractionWindow        time.Duration
	CacheTTL                 time.Duration
	Clock                    Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ScanWindow:               config.DefaultScanWindow,
		MaxConcurrency:           config.DefaultEngineConcurrency,
		RecipientTimeout:         config.DefaultRecipientTimeout,
		TimingStrategy:           TimingFixedOffset,
		PurchaseLeadTime:         config.DefaultPurchaseLeadTime,
		DefaultAdvanceNoticeDays: config.DefaultAdvanceNoticeDays,
		DefaultBudget:            DefaultBudgetRange,
		MessageLookback:          config.DefaultMessageLookback,
		InteractionWindow:        config.DefaultInteractionWindow,
		CacheTTL:                 config.DefaultCacheTTL,
		Clock:                    SystemClock(),
	}
}

// ConfigFromEngine maps the loaded service configuration onto engine
// parameters.
func ConfigFromEngine(e config.EngineConfig, cacheTTL time.Duration) *Config {
	c := &Config{
		ScanWindow:               e.ScanWindow,
		MaxConcurrency:           e.MaxConcurrency,
		RecipientTimeout:         e.RecipientTimeout,
		TimingStrategy:           TimingStrategy(e.TimingStrategy),
		PurchaseLeadTime:         e.PurchaseLeadTime,
		DefaultAdvanceNoticeDays: e.DefaultAdvanceNoticeDays,
		DefaultBudget:            gifting.PriceRange{Min: e.DefaultBudgetMin, Max: e.DefaultBudgetMax},
		MessageLookback:          e.MessageLookback,
		InteractionWindow:        e.InteractionWindow,
		CacheTTL:                 cacheTTL,
	}
	return c.normalize()
}

// normalize fills zero values with defaults and clamps concurrency to
// [1, MaxEngineConcurrency].  It returns c for chaining.
func (c *Config) normalize() *Config {
	d := DefaultConfig()
	if c.ScanWindow <= 0 {
		c.ScanWindow = d.ScanWindow
	}
	switch {
	case c.MaxConcurrency <= 0:
		c.MaxConcurrency = d.MaxConcurrency
	case c.MaxConcurrency > config.MaxEngineConcurrency:
		c.MaxConcurrency = config.MaxEngineConcurrency
	}
	if c.RecipientTimeout <= 0 {
		c.RecipientTimeout = d.RecipientTimeout
	}
	if c.TimingStrategy != TimingRecipientPreference {
		c.TimingStrategy = TimingFixedOffset
	}
	if c.PurchaseLeadTime <= 0 {
		c.PurchaseLeadTime = d.PurchaseLeadTime
	}
	if c.DefaultAdvanceNoticeDays <= 0 {
		c.DefaultAdvanceNoticeDays = d.DefaultAdvanceNoticeDays
	}
	if c.DefaultBudget.Validate() != nil || c.DefaultBudget.Max == 0 {
		c.DefaultBudget = d.DefaultBudget
	}
	if c.MessageLookback <= 0 {
		c.MessageLookback = d.MessageLookback
	}
	if c.InteractionWindow <= 0 {
		c.InteractionWindow = d.InteractionWindow
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	return c
}

// resolveConfig returns a normalized copy of cfg, or defaults for nil.
func resolveConfig(cfg *Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	c := *cfg
	return c.normalize()
}

//Personal.AI order the ending
