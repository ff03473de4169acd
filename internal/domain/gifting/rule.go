package gifting

import (
	"strings"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// SeasonalAdjustment records the seasonal factors in force when a rule was
// created.
type SeasonalAdjustment struct {
	Month              int     `json:"month"`
	Multiplier         float64 `json:"multiplier"`
	OccasionMultiplier float64 `json:"occasion_multiplier"`
	Occasion           string  `json:"occasion"`
}

// SuccessMetrics snapshots the budget and history signal behind a rule.
type SuccessMetrics struct {
	BudgetMin             int      `json:"budget_min"`
	BudgetMax             int      `json:"budget_max"`
	BudgetConfidence      float64  `json:"budget_confidence"`
	AverageSuccessRate    float64  `json:"average_success_rate"`
	RecommendedCategories []string `json:"recommended_categories"`
}

// AutoGiftRule is a persisted automatic-gifting rule together with the
// intelligence snapshot taken when it was created.
type AutoGiftRule struct {
	ID                        string               `json:"id"`
	RequesterID               string               `json:"requester_id"`
	RecipientID               string               `json:"recipient_id"`
	Occasion                  string               `json:"occasion"`
	RelationshipContext       *RelationshipContext `json:"relationship_context,omitempty"`
	SeasonalAdjustmentFactors SeasonalAdjustment   `json:"seasonal_adjustment_factors"`
	SuccessMetrics            SuccessMetrics       `json:"success_metrics"`
	CreatedAt                 time.Time            `json:"created_at"`
}

// NewAutoGiftRule creates a rule with a fresh id.
func NewAutoGiftRule(requesterID, recipientID, occasion string, now time.Time) (*AutoGiftRule, error) {
	r := &AutoGiftRule{
		ID:          string(common.NewID()),
		RequesterID: strings.TrimSpace(requesterID),
		RecipientID: strings.TrimSpace(recipientID),
		Occasion:    strings.TrimSpace(occasion),
		CreatedAt:   now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks required identifiers.
func (r *AutoGiftRule) Validate() error {
	if r.ID == "" {
		return errors.InvalidParam("rule id is required")
	}
	if r.RequesterID == "" {
		return errors.InvalidParam("requester id is required")
	}
	if r.RecipientID == "" {
		return errors.InvalidParam("recipient id is required")
	}
	if r.RequesterID == r.RecipientID {
		return errors.InvalidParam("requester and recipient must differ")
	}
	if r.Occasion == "" {
		return errors.New(errors.CodeInvalidOccasion, "occasion is required")
	}
	return nil
}

//Personal.AI order the ending
