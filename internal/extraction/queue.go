package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

// jobMessage is the wire payload for one queued extraction.
type jobMessage struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// Queue publishes extraction jobs to Pub/Sub.
type Queue struct {
	publisher *pubsub.Publisher
}

// NewQueue wraps an extraction topic publisher.
func NewQueue(publisher *pubsub.Publisher) (*Queue, error) {
	if publisher == nil {
		return nil, fmt.Errorf("extraction publisher required")
	}
	return &Queue{publisher: publisher}, nil
}

// Enqueue publishes a job for the given invoice and waits for the broker ack.
func (q *Queue) Enqueue(ctx context.Context, invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return fmt.Errorf("invoice id is required")
	}
	data, err := json.Marshal(jobMessage{InvoiceID: invoiceID})
	if err != nil {
		return fmt.Errorf("marshaling extraction job: %w", err)
	}
	result := q.publisher.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing extraction job: %w", err)
	}
	return nil
}
