package gifting

import (
	"sort"
	"time"
)

// GiftOpportunity is one upcoming event for which a gift may be bought.
type GiftOpportunity struct {
	RequesterID           string           `json:"requester_id"`
	RecipientID           string           `json:"recipient_id"`
	RelationshipType      RelationshipType `json:"relationship_type"`
	EventType             string           `json:"event_type"`
	EventDate             time.Time        `json:"event_date"`
	ConfidenceScore       float64          `json:"confidence_score"`
	SuggestedBudget       SuggestedBudget  `json:"suggested_budget"`
	RecommendedCategories []string         `json:"recommended_categories"`
	OptimalPurchaseTiming time.Time        `json:"optimal_purchase_timing"`
}

// SortOpportunities orders ops by event date, then recipient, then event
// type, so identical inputs always yield identical output.
func SortOpportunities(ops []*GiftOpportunity) {
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		if a.RecipientID != b.RecipientID {
			return a.RecipientID < b.RecipientID
		}
		return a.EventType < b.EventType
	})
}

//Personal.AI order the ending
