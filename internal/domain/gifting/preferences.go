package gifting

import (
	"sort"
	"strings"
	"time"
)

// CategoryStats is the historical outcome of gifts in one category.
type CategoryStats struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
}

// SuccessRate returns Successes/Attempts clamped to [0, 1]; zero attempts
// yield 0.
func (s CategoryStats) SuccessRate() float64 {
	if s.Attempts <= 0 {
		return 0
	}
	r := float64(s.Successes) / float64(s.Attempts)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// GiftingHistory is the requester's record of how past gifts landed.
type GiftingHistory struct {
	CategorySuccessRates map[string]CategoryStats `json:"category_success_rates"`
}

// AverageSuccessRate averages the success rate over all recorded categories.
// It returns 0 when nothing is recorded.
func (h GiftingHistory) AverageSuccessRate() float64 {
	if len(h.CategorySuccessRates) == 0 {
		return 0
	}
	var sum float64
	for _, s := range h.CategorySuccessRates {
		sum += s.SuccessRate()
	}
	return sum / float64(len(h.CategorySuccessRates))
}

// CategoriesAbove returns the categories whose success rate is strictly
// greater than threshold, best first and then by name.
func (h GiftingHistory) CategoriesAbove(threshold float64) []string {
	out := make([]string, 0, len(h.CategorySuccessRates))
	for name, s := range h.CategorySuccessRates {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if s.SuccessRate() > threshold {
			out = append(out, name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := h.CategorySuccessRates[out[i]].SuccessRate()
		rj := h.CategorySuccessRates[out[j]].SuccessRate()
		if ri != rj {
			return ri > rj
		}
		return out[i] < out[j]
	})
	return out
}

// Preferences is the slice of a user's profile the engine reads.
type Preferences struct {
	UserID                     string                `json:"user_id"`
	PricePreferencesByOccasion map[string]PriceRange `json:"price_preferences_by_occasion"`
	GiftingHistory             GiftingHistory        `json:"gifting_history"`
	Interests                  []string              `json:"interests"`
	AdvanceNoticeDays          *int                  `json:"advance_notice_days,omitempty"`
}

// PriceRangeFor looks up the configured range for occasion.  Occasion keys
// are matched case-insensitively.
func (p *Preferences) PriceRangeFor(occasion string) (PriceRange, bool) {
	if p == nil || len(p.PricePreferencesByOccasion) == 0 {
		return PriceRange{}, false
	}
	if r, ok := p.PricePreferencesByOccasion[occasion]; ok {
		return r, true
	}
	key := strings.ToLower(strings.TrimSpace(occasion))
	for k, r := range p.PricePreferencesByOccasion {
		if strings.ToLower(k) == key {
			return r, true
		}
	}
	return PriceRange{}, false
}

// AdvanceNotice returns the recipient's preferred notice in days, or def when
// unset or not positive.
func (p *Preferences) AdvanceNotice(def int) int {
	if p == nil || p.AdvanceNoticeDays == nil || *p.AdvanceNoticeDays <= 0 {
		return def
	}
	return *p.AdvanceNoticeDays
}

// Message is the metadata of one direct message between two users.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicWishlist is a wishlist a user has made public.
type PublicWishlist struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

//Personal.AI order the ending
