package repositories

import (
	"context"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

type postgresWishlistRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewWishlistRepository returns a gifting.WishlistRepository on conn.
func NewWishlistRepository(conn *postgres.Connection, log logging.Logger) gifting.WishlistRepository {
	return &postgresWishlistRepo{log: logging.OrNop(log), executor: conn.DB()}
}

func (r *postgresWishlistRepo) ListPublic(ctx context.Context, ownerID string) ([]*gifting.PublicWishlist, error) {
	query := `SELECT id, owner_id, title, category FROM wishlists WHERE owner_id = $1 AND is_public ORDER BY id`
	rows, err := r.executor.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to list wishlists")
	}
	defer rows.Close()

	out := make([]*gifting.PublicWishlist, 0)
	for rows.Next() {
		var w gifting.PublicWishlist
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Title, &w.Category); err != nil {
			return nil, mapError(err, errors.CodeNotFound, "failed to scan wishlist")
		}
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to iterate wishlists")
	}
	return out, nil
}

//Personal.AI order the ending
