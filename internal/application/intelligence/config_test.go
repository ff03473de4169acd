package intelligence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/AutoGift-Intelligence/internal/config"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 90*24*time.Hour, cfg.ScanWindow)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, TimingFixedOffset, cfg.TimingStrategy)
	assert.Equal(t, 5*day, cfg.PurchaseLeadTime)
	assert.Equal(t, 3, cfg.DefaultAdvanceNoticeDays)
	assert.Equal(t, gifting.PriceRange{Min: 25, Max: 100}, cfg.DefaultBudget)
	assert.Equal(t, 20, cfg.MessageLookback)
	assert.NotNil(t, cfg.Clock)
}

func TestResolveConfig_ClampsAndFills(t *testing.T) {
	cfg := resolveConfig(&Config{MaxConcurrency: 100, TimingStrategy: "bogus", DefaultBudget: gifting.PriceRange{Min: 50, Max: 10}})
	assert.Equal(t, config.MaxEngineConcurrency, cfg.MaxConcurrency)
	assert.Equal(t, TimingFixedOffset, cfg.TimingStrategy)
	assert.Equal(t, DefaultBudgetRange, cfg.DefaultBudget)
	assert.Equal(t, config.DefaultRecipientTimeout, cfg.RecipientTimeout)

	assert.Equal(t, 8, resolveConfig(&Config{MaxConcurrency: -1}).MaxConcurrency)
	assert.Equal(t, 1, resolveConfig(&Config{MaxConcurrency: 1}).MaxConcurrency)
	assert.NotNil(t, resolveConfig(nil))
}

func TestResolveConfig_DoesNotMutateInput(t *testing.T) {
	in := &Config{MaxConcurrency: 100}
	_ = resolveConfig(in)
	assert.Equal(t, 100, in.MaxConcurrency)
}

func TestConfigFromEngine(t *testing.T) {
	e := config.NewDefaultConfig().Engine
	e.TimingStrategy = config.TimingRecipientPreference
	e.MaxConcurrency = 4
	e.DefaultBudgetMin, e.DefaultBudgetMax = 10, 40

	cfg := ConfigFromEngine(e, time.Minute)
	assert.Equal(t, TimingRecipientPreference, cfg.TimingStrategy)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, gifting.PriceRange{Min: 10, Max: 40}, cfg.DefaultBudget)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

//Personal.AI order the ending
