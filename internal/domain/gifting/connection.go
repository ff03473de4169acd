package gifting

import (
	"strings"
	"time"
)

// RelationshipType classifies a connection from the owner's point of view.
type RelationshipType string

const (
	RelationshipFamily      RelationshipType = "family"
	RelationshipCloseFriend RelationshipType = "close_friend"
	RelationshipFriend      RelationshipType = "friend"
	RelationshipColleague   RelationshipType = "colleague"
	RelationshipOther       RelationshipType = "other"
)

// IsValid reports whether t is one of the known relationship types.
func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipFamily, RelationshipCloseFriend, RelationshipFriend, RelationshipColleague, RelationshipOther:
		return true
	}
	return false
}

// ParseRelationshipType normalizes s; unknown or empty values map to
// RelationshipOther.
func ParseRelationshipType(s string) RelationshipType {
	t := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return RelationshipOther
}

// ConnectionStatus is the lifecycle state of a connection request.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// DataAccessPermissions records what the recipient agreed to share with the owner.
type DataAccessPermissions struct {
	ShareGiftPreferences bool `json:"share_gift_preferences"`
	ShareWishlists       bool `json:"share_wishlists"`
	ShareSpecialDates    bool `json:"share_special_dates"`
}

// Connection links an owner to a recipient.  It is read-only to the engine.
type Connection struct {
	ID               string                `json:"id"`
	OwnerID          string                `json:"owner_id"`
	RecipientID      string                `json:"recipient_id"`
	RelationshipType RelationshipType      `json:"relationship_type"`
	Status           ConnectionStatus      `json:"status"`
	Permissions      DataAccessPermissions `json:"permissions"`
	CreatedAt        time.Time             `json:"created_at"`
}

// IsAccepted reports whether the connection request was accepted.
func (c *Connection) IsAccepted() bool {
	return c != nil && c.Status == ConnectionAccepted
}

// ConnectionWithDates is one row group of the joined bulk fetch: an accepted
// connection and the special dates owned by its recipient.
type ConnectionWithDates struct {
	Connection
	SpecialDates []SpecialDate `json:"special_dates"`
}

//Personal.AI order the ending
