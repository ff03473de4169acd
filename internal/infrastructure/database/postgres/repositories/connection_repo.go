package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

const connectionColumns = `c.id, c.owner_id, c.recipient_id, c.relationship_type, c.status,
	c.share_gift_preferences, c.share_wishlists, c.share_special_dates, c.created_at`

type postgresConnectionRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewConnectionRepository returns a gifting.ConnectionRepository on conn.
func NewConnectionRepository(conn *postgres.Connection, log logging.Logger) gifting.ConnectionRepository {
	return &postgresConnectionRepo{log: logging.OrNop(log), executor: conn.DB()}
}

// ListAcceptedWithSpecialDates joins every accepted connection with the
// recipient's special dates.  Rows arrive ordered by connection so grouping
// is a single pass.
func (r *postgresConnectionRepo) ListAcceptedWithSpecialDates(ctx context.Context, ownerID string) ([]*gifting.ConnectionWithDates, error) {
	query := `
		SELECT ` + connectionColumns + `, sd.date_type, sd.date_value
		FROM connections c
		LEFT JOIN special_dates sd ON sd.owner_id = c.recipient_id
		WHERE c.owner_id = $1 AND c.status = $2
		ORDER BY c.created_at, c.id, sd.date_type, sd.date_value
	`
	rows, err := r.executor.QueryContext(ctx, query, ownerID, string(gifting.ConnectionAccepted))
	if err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to list connections")
	}
	defer rows.Close()

	out := make([]*gifting.ConnectionWithDates, 0)
	var current *gifting.ConnectionWithDates
	for rows.Next() {
		var (
			dateType  sql.NullString
			dateValue sql.NullString
		)
		c, err := scanConnection(rows, &dateType, &dateValue)
		if err != nil {
			return nil, mapError(err, errors.CodeNotFound, "failed to scan connection")
		}
		if current == nil || current.ID != c.ID {
			current = &gifting.ConnectionWithDates{Connection: *c, SpecialDates: []gifting.SpecialDate{}}
			out = append(out, current)
		}
		if dateType.Valid && dateValue.Valid {
			current.SpecialDates = append(current.SpecialDates, gifting.SpecialDate{
				OwnerID:  c.RecipientID,
				DateType: dateType.String,
				Value:    dateValue.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to iterate connections")
	}

	r.log.Debug("loaded connections with special dates",
		logging.String("owner_id", ownerID),
		logging.Int("connections", len(out)),
	)
	return out, nil
}

func (r *postgresConnectionRepo) FindBetween(ctx context.Context, ownerID, recipientID string) (*gifting.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections c WHERE c.owner_id = $1 AND c.recipient_id = $2`
	c, err := scanConnection(r.executor.QueryRowContext(ctx, query, ownerID, recipientID))
	if err != nil {
		return nil, mapError(err, errors.CodeConnectionNotFound, "failed to find connection")
	}
	return c, nil
}

// scanConnection reads the connection columns followed by any extra
// destinations.
func scanConnection(row scanner, extra ...interface{}) (*gifting.Connection, error) {
	var (
		c                gifting.Connection
		relationshipType string
		status           string
	)
	dest := []interface{}{
		&c.ID, &c.OwnerID, &c.RecipientID, &relationshipType, &status,
		&c.Permissions.ShareGiftPreferences, &c.Permissions.ShareWishlists, &c.Permissions.ShareSpecialDates,
		&c.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.RelationshipType = gifting.ParseRelationshipType(relationshipType)
	c.Status = gifting.ConnectionStatus(status)
	return &c, nil
}

//Personal.AI order the ending
