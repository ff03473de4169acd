package kafka

import (
	"context"
	"time"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// ScanRequestProcessor runs one queued scan.
type ScanRequestProcessor interface {
	HandleScanRequest(ctx context.Context, req *intelligence.ScanRequest) error
}

// NewScanRequestHandler adapts processor to a MessageHandler for the scan
// request topic.  timeout bounds each scan; zero means no extra bound.
func NewScanRequestHandler(processor ScanRequestProcessor, timeout time.Duration, log logging.Logger) common.MessageHandler {
	log = logging.OrNop(log)

	return func(ctx context.Context, msg *common.Message) error {
		env, err := MessageToEventEnvelope(msg)
		if err != nil {
			return err
		}
		if env.EventType != EventScanRequested {
			return errors.New(errors.CodeMessageDecodeFailed, "unexpected event type").WithDetail(env.EventType)
		}

		var payload ScanRequestedPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}
		if payload.RequesterID == "" {
			return errors.New(errors.CodeMessageDecodeFailed, "scan request without requester id")
		}

		if env.TraceID != "" {
			ctx = context.WithValue(ctx, common.ContextKeyRequestID, env.TraceID)
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		err = processor.HandleScanRequest(ctx, &intelligence.ScanRequest{
			RequestID:   payload.RequestID,
			RequesterID: payload.RequesterID,
			RequestedAt: payload.RequestedAt,
		})
		if err != nil {
			return err
		}
		log.Debug("scan request handled",
			logging.String("request_id", payload.RequestID),
			logging.Int64("offset", msg.Offset),
			logging.Duration("elapsed", time.Since(start)))
		return nil
	}
}

//Personal.AI order the ending
