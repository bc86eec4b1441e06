package extraction

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/pkg/logger"
)

// Consumer pulls extraction jobs from Pub/Sub and runs them through the
// pipeline.
type Consumer struct {
	pipeline     *Pipeline
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer constructs a consumer that watches the extraction subscription.
func NewConsumer(pipeline *Pipeline, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if pipeline == nil {
		return nil, errors.New("extraction pipeline is required")
	}
	if subscription == nil {
		return nil, errors.New("extraction subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		pipeline:     pipeline,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var job jobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal extraction job", err)
		return processResult{ack: true}
	}
	if job.InvoiceID == uuid.Nil {
		c.logg.Error(logCtx, "extraction job missing invoice id", errors.New("empty invoice_id"))
		return processResult{ack: true}
	}

	logCtx = c.logg.WithInvoiceID(logCtx, job.InvoiceID.String())
	if err := c.pipeline.Process(logCtx, job.InvoiceID); err != nil {
		c.logg.Error(logCtx, "extraction failed", err)
		if isTransientError(err) {
			return processResult{nack: true}
		}
		return processResult{ack: true}
	}

	c.logg.Info(logCtx, "extraction job processed")
	return processResult{ack: true}
}

func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
