package gifting

import "context"

// ConnectionRepository reads the social graph.
type ConnectionRepository interface {
	// ListAcceptedWithSpecialDates returns every accepted connection owned by
	// ownerID together with its recipient's special dates in one round trip.
	ListAcceptedWithSpecialDates(ctx context.Context, ownerID string) ([]*ConnectionWithDates, error)
	// FindBetween returns the connection from ownerID to recipientID.  A
	// missing connection yields a not-found error.
	FindBetween(ctx context.Context, ownerID, recipientID string) (*Connection, error)
}

// MessageRepository reads direct-message metadata.
type MessageRepository interface {
	// ListRecent returns up to limit messages exchanged between userA and
	// userB in either direction, newest first.
	ListRecent(ctx context.Context, userA, userB string, limit int) ([]*Message, error)
}

// ProfileRepository reads gifting preferences.
type ProfileRepository interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
}

// WishlistRepository reads wishlists.
type WishlistRepository interface {
	ListPublic(ctx context.Context, ownerID string) ([]*PublicWishlist, error)
}

// RuleRepository persists auto-gift rules.
type RuleRepository interface {
	Save(ctx context.Context, rule *AutoGiftRule) error
	ListByRequester(ctx context.Context, requesterID string) ([]*AutoGiftRule, error)
}

//Personal.AI order the ending
