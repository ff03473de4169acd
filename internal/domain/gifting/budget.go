package gifting

import (
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// PriceRange is an inclusive spending range in whole currency units.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate checks 0 <= Min <= Max.
func (p PriceRange) Validate() error {
	if p.Min < 0 {
		return errors.InvalidParam("price range min must be non-negative")
	}
	if p.Max < p.Min {
		return errors.InvalidParam("price range max must be >= min")
	}
	return nil
}

// BudgetReasoning records the factors behind a recommendation.
type BudgetReasoning struct {
	RelationshipFactor float64    `json:"relationship_factor"`
	SeasonalFactor     float64    `json:"seasonal_factor"`
	BaseRange          PriceRange `json:"base_range"`
}

// BudgetRecommendation is an adjusted spending range for one recipient and
// occasion.  Min and Max are rounded whole units.
type BudgetRecommendation struct {
	Min        int             `json:"min"`
	Max        int             `json:"max"`
	Confidence float64         `json:"confidence"`
	Reasoning  BudgetReasoning `json:"reasoning"`
	// Fallback is set when the recommendation was substituted with the
	// default range because the requester's profile was unavailable.
	Fallback bool `json:"fallback,omitempty"`
}

// SuggestedBudget is the range embedded in a GiftOpportunity.
type SuggestedBudget struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Suggested projects the recommendation to the range carried by an
// opportunity.
func (b *BudgetRecommendation) Suggested() SuggestedBudget {
	if b == nil {
		return SuggestedBudget{}
	}
	return SuggestedBudget{Min: b.Min, Max: b.Max}
}

//Personal.AI order the ending
