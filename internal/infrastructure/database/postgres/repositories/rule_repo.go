package repositories

import (
	"context"
	"encoding/json"

	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

type postgresRuleRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewRuleRepository returns a gifting.RuleRepository on conn.
func NewRuleRepository(conn *postgres.Connection, log logging.Logger) gifting.RuleRepository {
	return &postgresRuleRepo{log: logging.OrNop(log), executor: conn.DB()}
}

func (r *postgresRuleRepo) Save(ctx context.Context, rule *gifting.AutoGiftRule) error {
	if rule == nil {
		return errors.InvalidParam("rule is required")
	}
	if err := rule.Validate(); err != nil {
		return err
	}

	var relJSON []byte
	if rule.RelationshipContext != nil {
		b, err := json.Marshal(rule.RelationshipContext)
		if err != nil {
			return errors.Wrap(err, errors.CodeSerialization, "failed to encode relationship context")
		}
		relJSON = b
	}
	seasonalJSON, err := json.Marshal(rule.SeasonalAdjustmentFactors)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode seasonal factors")
	}
	metricsJSON, err := json.Marshal(rule.SuccessMetrics)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode success metrics")
	}

	query := `
		INSERT INTO auto_gift_rules (
			id, requester_id, recipient_id, occasion,
			relationship_context, seasonal_adjustment_factors, success_metrics, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.executor.ExecContext(ctx, query,
		rule.ID, rule.RequesterID, rule.RecipientID, rule.Occasion,
		relJSON, seasonalJSON, metricsJSON, rule.CreatedAt,
	)
	if err != nil {
		return mapError(err, errors.CodeNotFound, "failed to save auto-gift rule")
	}

	r.log.Info("auto-gift rule saved",
		logging.String("rule_id", rule.ID),
		logging.String("requester_id", rule.RequesterID),
		logging.String("recipient_id", rule.RecipientID),
	)
	return nil
}

func (r *postgresRuleRepo) ListByRequester(ctx context.Context, requesterID string) ([]*gifting.AutoGiftRule, error) {
	query := `
		SELECT id, requester_id, recipient_id, occasion,
			relationship_context, seasonal_adjustment_factors, success_metrics, created_at
		FROM auto_gift_rules
		WHERE requester_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.executor.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to list auto-gift rules")
	}
	defer rows.Close()

	out := make([]*gifting.AutoGiftRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to iterate auto-gift rules")
	}
	return out, nil
}

func scanRule(row scanner) (*gifting.AutoGiftRule, error) {
	var (
		rule         gifting.AutoGiftRule
		relJSON      []byte
		seasonalJSON []byte
		metricsJSON  []byte
	)
	err := row.Scan(&rule.ID, &rule.RequesterID, &rule.RecipientID, &rule.Occasion,
		&relJSON, &seasonalJSON, &metricsJSON, &rule.CreatedAt)
	if err != nil {
		return nil, mapError(err, errors.CodeNotFound, "failed to scan auto-gift rule")
	}

	if len(relJSON) > 0 {
		var rc gifting.RelationshipContext
		if err := json.Unmarshal(relJSON, &rc); err != nil {
			return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode relationship context")
		}
		rule.RelationshipContext = &rc
	}
	if err := unmarshalOptional(seasonalJSON, &rule.SeasonalAdjustmentFactors); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode seasonal factors")
	}
	if err := unmarshalOptional(metricsJSON, &rule.SuccessMetrics); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to decode success metrics")
	}
	return &rule, nil
}

func unmarshalOptional(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

//Personal.AI order the ending
