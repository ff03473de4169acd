package repositories

import (
	"context"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

type postgresMessageRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewMessageRepository returns a gifting.MessageRepository on conn.
func NewMessageRepository(conn *postgres.Connection, log logging.Logger) gifting.MessageRepository {
	return &postgresMessageRepo{log: logging.OrNop(log), executor: conn.DB()}
}

func (r *postgresMessageRepo) ListRecent(ctx context.Context, userA, userB string, limit int) ([]*gifting.Message, error) {
	out := make([]*gifting.Message, 0)
	if limit <= 0 {
		return out, nil
	}

	query := `
		SELECT id, sender_id, recipient_id, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $3
	`
	rows, err := r.executor.QueryContext(ctx, query, userA, userB, limit)
	if err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to list messages")
	}
	defer rows.Close()

	for rows.Next() {
		var m gifting.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.CreatedAt); err != nil {
			return nil, mapError(err, errors.CodeNotFound, "failed to scan message")
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to iterate messages")
	}
	return out, nil
}

//Personal.AI order the ending
