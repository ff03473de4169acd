package intelligence

import (
	"context"
	"strings"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
)

// interestCategories maps normalized interests to gift categories.
var interestCategories = map[string]string{
	"cooking":     "Kitchen",
	"baking":      "Kitchen",
	"reading":     "Books",
	"books":       "Books",
	"music":       "Music",
	"gaming":      "Gaming",
	"video games": "Gaming",
	"sports":      "Sports & Outdoors",
	"fitness":     "Sports & Outdoors",
	"running":     "Sports & Outdoors",
	"hiking":      "Sports & Outdoors",
	"outdoors":    "Sports & Outdoors",
	"travel":      "Travel",
	"art":         "Arts & Crafts",
	"painting":    "Arts & Crafts",
	"crafts":      "Arts & Crafts",
	"technology":  "Electronics",
	"tech":        "Electronics",
	"gadgets":     "Electronics",
	"fashion":     "Fashion",
	"gardening":   "Home & Garden",
	"wellness":    "Beauty & Wellness",
	"beauty":      "Beauty & Wellness",
	"yoga":        "Beauty & Wellness",
	"coffee":      "Food & Drink",
	"tea":         "Food & Drink",
	"wine":        "Food & Drink",
}

// MapInterest returns the gift category for interest, or "General" when the
// interest is not in the table.
func MapInterest(interest string) string {
	if c, ok := interestCategories[strings.ToLower(strings.TrimSpace(interest))]; ok {
		return c
	}
	return interestCategoryGeneral
}

// MergeCategories concatenates sources in order, drops blanks and
// duplicates (first occurrence wins) and truncates to limit.
func MergeCategories(limit int, sources ...[]string) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, src := range sources {
		for _, c := range src {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			if len(out) == limit {
				return out
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// CategoryPredictor ranks likely gift categories for a recipient.
type CategoryPredictor struct {
	profiles  gifting.ProfileRepository
	wishlists gifting.WishlistRepository
	memo      *memo
	config    *Config
	logger    logging.Logger
}

// NewCategoryPredictor constructs a CategoryPredictor.
func NewCategoryPredictor(
	profiles gifting.ProfileRepository,
	wishlists gifting.WishlistRepository,
	cache IntelligenceCache,
	metrics MetricsRecorder,
	logger logging.Logger,
	cfg *Config,
) *CategoryPredictor {
	cfg = resolveConfig(cfg)
	logger = logging.OrNop(logger).Named("category")
	return &CategoryPredictor{
		profiles:  profiles,
		wishlists: wishlists,
		memo:      newMemo(cache, cfg, metrics, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Predict returns up to five categories ordered by source: recipient
// interests, recipient public wishlists, then requester history categories
// with a success rate above 0.7.  Failing sources are logged and treated as
// empty.
func (p *CategoryPredictor) Predict(ctx context.Context, requesterID, recipientID, occasion string) []string {
	key := CacheKey{RequesterID: requesterID, RecipientID: recipientID, Type: AnalysisCategories, Qualifier: occasion}
	var cached []string
	if p.memo.load(ctx, key, &cached) {
		return cached
	}

	out := MergeCategories(maxRecommendedCategories,
		p.interestCategories(ctx, recipientID),
		p.wishlistCategories(ctx, recipientID),
		p.historyCategories(ctx, requesterID),
	)
	p.memo.store(ctx, key, out)
	return out
}

func (p *CategoryPredictor) interestCategories(ctx context.Context, recipientID string) []string {
	prefs, err := p.profiles.GetPreferences(ctx, recipientID)
	if err != nil || prefs == nil {
		p.skip("interests", recipientID, err)
		return nil
	}
	out := make([]string, 0, len(prefs.Interests))
	for _, i := range prefs.Interests {
		if strings.TrimSpace(i) == "" {
			continue
		}
		out = append(out, MapInterest(i))
	}
	return out
}

func (p *CategoryPredictor) wishlistCategories(ctx context.Context, recipientID string) []string {
	if p.wishlists == nil {
		return nil
	}
	lists, err := p.wishlists.ListPublic(ctx, recipientID)
	if err != nil {
		p.skip("wishlists", recipientID, err)
		return nil
	}
	out := make([]string, 0, len(lists))
	for _, w := range lists {
		if w != nil {
			out = append(out, w.Category)
		}
	}
	return out
}

func (p *CategoryPredictor) historyCategories(ctx context.Context, requesterID string) []string {
	prefs, err := p.profiles.GetPreferences(ctx, requesterID)
	if err != nil || prefs == nil {
		p.skip("history", requesterID, err)
		return nil
	}
	return prefs.GiftingHistory.CategoriesAbove(historySuccessThreshold)
}

func (p *CategoryPredictor) skip(source, userID string, err error) {
	if err == nil {
		return
	}
	p.logger.Warn("category source unavailable",
		logging.String("source", source),
		logging.String("user_id", userID),
		logging.Err(err))
}

//Personal.AI order the ending
