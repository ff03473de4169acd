package intelligence

import (
	"context"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
)

const day = 24 * time.Hour

// FixedOffsetPurchaseTime returns eventDate minus lead.  A non-positive lead
// is replaced by the default five days so the result precedes the event.
func FixedOffsetPurchaseTime(eventDate time.Time, lead time.Duration) time.Time {
	if lead <= 0 {
		lead = DefaultConfig().PurchaseLeadTime
	}
	return eventDate.Add(-lead)
}

// PreferencePurchaseTime returns eventDate minus the recipient's advance
// notice in days, or defaultDays when the preference is missing.
func PreferencePurchaseTime(eventDate time.Time, prefs *gifting.Preferences, defaultDays int) time.Time {
	if defaultDays <= 0 {
		defaultDays = DefaultConfig().DefaultAdvanceNoticeDays
	}
	return eventDate.Add(-time.Duration(prefs.AdvanceNotice(defaultDays)) * day)
}

// PurchaseTimer chooses the optimal purchase date for an event according to
// the configured TimingStrategy.
type PurchaseTimer struct {
	strategy    TimingStrategy
	lead        time.Duration
	defaultDays int
	profiles    gifting.ProfileRepository
	logger      logging.Logger
}

// NewPurchaseTimer constructs a PurchaseTimer.  profiles is only consulted
// by TimingRecipientPreference.
func NewPurchaseTimer(profiles gifting.ProfileRepository, logger logging.Logger, cfg *Config) *PurchaseTimer {
	cfg = resolveConfig(cfg)
	return &PurchaseTimer{
		strategy:    cfg.TimingStrategy,
		lead:        cfg.PurchaseLeadTime,
		defaultDays: cfg.DefaultAdvanceNoticeDays,
		profiles:    profiles,
		logger:      logging.OrNop(logger).Named("timing"),
	}
}

// Strategy returns the active strategy.
func (t *PurchaseTimer) Strategy() TimingStrategy { return t.strategy }

// PurchaseTime returns when to buy a gift for recipientID's event.
func (t *PurchaseTimer) PurchaseTime(ctx context.Context, recipientID string, eventDate time.Time) time.Time {
	if t.strategy != TimingRecipientPreference || t.profiles == nil {
		return FixedOffsetPurchaseTime(eventDate, t.lead)
	}
	prefs, err := t.profiles.GetPreferences(ctx, recipientID)
	if err != nil {
		t.logger.Debug("recipient notice preference unavailable",
			logging.String("recipient_id", recipientID), logging.Err(err))
		prefs = nil
	}
	return PreferencePurchaseTime(eventDate, prefs, t.defaultDays)
}

//Personal.AI order the ending
