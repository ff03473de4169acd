package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

type postgresProfileRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewProfileRepository returns a gifting.ProfileRepository on conn.
func NewProfileRepository(conn *postgres.Connection, log logging.Logger) gifting.ProfileRepository {
	return &postgresProfileRepo{log: logging.OrNop(log), executor: conn.DB()}
}

func (r *postgresProfileRepo) GetPreferences(ctx context.Context, userID string) (*gifting.Preferences, error) {
	query := `
		SELECT user_id, price_preferences_by_occasion, gifting_history, interests, advance_notice_days
		FROM gifting_profiles
		WHERE user_id = $1
	`
	var (
		p           gifting.Preferences
		priceJSON   []byte
		historyJSON []byte
		interests   pq.StringArray
		notice      sql.NullInt64
	)
	err := r.executor.QueryRowContext(ctx, query, userID).
		Scan(&p.UserID, &priceJSON, &historyJSON, &interests, &notice)
	if err != nil {
		return nil, mapError(err, errors.CodeProfileNotFound, "failed to load gifting profile")
	}

	if len(priceJSON) > 0 {
		if err := json.Unmarshal(priceJSON, &p.PricePreferencesByOccasion); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode price preferences")
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &p.GiftingHistory); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode gifting history")
		}
	}
	p.Interests = []string(interests)
	if notice.Valid {
		days := int(notice.Int64)
		p.AdvanceNoticeDays = &days
	}
	return &p, nil
}

//Personal.AI order the ending
