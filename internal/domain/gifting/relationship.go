package gifting

// InteractionFrequency buckets how often two users exchanged messages
// recently.
type InteractionFrequency string

const (
	FrequencyRare         InteractionFrequency = "rare"
	FrequencyOccasional   InteractionFrequency = "occasional"
	FrequencyRegular      InteractionFrequency = "regular"
	FrequencyFrequent     InteractionFrequency = "frequent"
	FrequencyVeryFrequent InteractionFrequency = "very_frequent"
)

// ClosenessAdjustment is the delta the frequency applies to the base
// closeness of a relationship type.
func (f InteractionFrequency) ClosenessAdjustment() int {
	switch f {
	case FrequencyVeryFrequent:
		return 2
	case FrequencyFrequent:
		return 1
	case FrequencyOccasional:
		return -1
	case FrequencyRare:
		return -2
	default:
		return 0
	}
}

// ConsiderationTag is a free-form hint attached to a relationship context.
type ConsiderationTag string

const (
	ConsiderationFamilyBond        ConsiderationTag = "family_bond"
	ConsiderationSharedPreferences ConsiderationTag = "shared_preferences"
)

// Closeness bounds.
const (
	MinCloseness = 1
	MaxCloseness = 10
)

// RelationshipContext is a derived, request-scoped view of one
// (requester, recipient) pair.
type RelationshipContext struct {
	RequesterID                string               `json:"requester_id"`
	RecipientID                string               `json:"recipient_id"`
	RelationshipType           RelationshipType     `json:"relationship_type"`
	ClosenessLevel             int                  `json:"closeness_level"`
	RelationshipDurationMonths int                  `json:"relationship_duration_months"`
	InteractionFrequency       InteractionFrequency `json:"interaction_frequency"`
	SpecialConsiderations      []ConsiderationTag   `json:"special_considerations"`
}

// HasConsideration reports whether tag is attached to the context.
func (rc *RelationshipContext) HasConsideration(tag ConsiderationTag) bool {
	if rc == nil {
		return false
	}
	for _, t := range rc.SpecialConsiderations {
		if t == tag {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
