package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits an event for every confirmed order. Publishing is
// fire-and-forget: a broker problem is logged and never surfaced to the
// shopper, whose order is already accepted.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "orders-submitted",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, timeout: 5 * time.Second}
}

func (p *Publisher) OrderSubmitted(ctx context.Context, sessionID, orderID string, snapshot domain.CartSnapshot) {
	payload := map[string]interface{}{
		"order_id":     orderID,
		"session_id":   sessionID,
		"items":        snapshot.Lines,
		"total":        snapshot.Total,
		"submitted_at": time.Now(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal order event for session %s: %v", sessionID, err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(sessionID),
		Value: payloadJSON,
	})
	if err != nil {
		log.Printf("failed to publish order event for session %s: %v", sessionID, err)
	}
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
