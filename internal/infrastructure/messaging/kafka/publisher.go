package kafka

import (
	"context"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// EventPublisher publishes engine events as EventEnvelopes.  Messages are
// keyed by requester id so every event for one requester lands on the same
// partition.
type EventPublisher struct {
	producer         Publisher
	scanRequestTopic string
	opportunityTopic string
	now              func() time.Time
	logger           logging.Logger
}

var (
	_ intelligence.ScanRequestPublisher = (*EventPublisher)(nil)
	_ intelligence.OpportunityPublisher = (*EventPublisher)(nil)
)

// NewEventPublisher creates an EventPublisher writing to the given topics.
func NewEventPublisher(producer Publisher, scanRequestTopic, opportunityTopic string, log logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer:         producer,
		scanRequestTopic: scanRequestTopic,
		opportunityTopic: opportunityTopic,
		now:              func() time.Time { return time.Now().UTC() },
		logger:           logging.OrNop(log),
	}
}

// PublishScanRequest enqueues req for a worker.
func (p *EventPublisher) PublishScanRequest(ctx context.Context, req *intelligence.ScanRequest) error {
	if req == nil || req.RequesterID == "" {
		return errors.InvalidParam("scan request requires a requester id")
	}
	payload := ScanRequestedPayload{
		RequestID:   req.RequestID,
		RequesterID: req.RequesterID,
		RequestedAt: req.RequestedAt,
	}
	if err := p.publish(ctx, p.scanRequestTopic, EventScanRequested, req.RequesterID, payload); err != nil {
		return err
	}
	p.logger.Info("scan request published",
		logging.String("request_id", req.RequestID),
		logging.String("requester_id", req.RequesterID))
	return nil
}

// PublishOpportunities emits the opportunities found for requesterID as a
// single event.
func (p *EventPublisher) PublishOpportunities(ctx context.Context, requesterID string, opportunities []*gifting.GiftOpportunity) error {
	if requesterID == "" {
		return errors.InvalidParam("requester id is required")
	}
	payload := OpportunitiesDetectedPayload{
		RequesterID:   requesterID,
		DetectedAt:    p.now(),
		Opportunities: opportunities,
	}
	if payload.Opportunities == nil {
		payload.Opportunities = []*gifting.GiftOpportunity{}
	}
	if err := p.publish(ctx, p.opportunityTopic, EventOpportunitiesDetected, requesterID, payload); err != nil {
		return err
	}
	p.logger.Info("opportunities published",
		logging.String("requester_id", requesterID),
		logging.Int("count", len(opportunities)))
	return nil
}

func (p *EventPublisher) publish(ctx context.Context, topic, eventType, key string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	if id, ok := ctx.Value(common.ContextKeyRequestID).(string); ok && id != "" {
		env.TraceID = id
	}
	msg, err := env.ToMessage(topic, key)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		if errors.IsCode(err, errors.CodeMessagePublishFailed) {
			return err
		}
		return errors.Wrap(err, errors.CodeMessagePublishFailed, "failed to publish "+eventType)
	}
	return nil
}

//Personal.AI order the ending
