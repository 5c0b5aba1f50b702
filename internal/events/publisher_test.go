package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *capturingWriter) Close() error { return nil }

func testSnapshot() domain.CartSnapshot {
	lines := []domain.CartLine{
		{ProductID: 7, Name: "Oversized hoodie", UnitPrice: decimal.NewFromInt(2500), Size: "M", Color: "crna", Quantity: 2},
	}
	return domain.CartSnapshot{Lines: lines, Total: domain.RecomputeTotal(lines)}
}

func TestOrderSubmitted_PublishesPayload(t *testing.T) {
	writer := &capturingWriter{}
	p := &Publisher{writer: writer, timeout: time.Second}

	p.OrderSubmitted(context.Background(), "s1", "ord-42", testSnapshot())

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, []byte("s1"), msg.Key)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "ord-42", payload["order_id"])
	assert.Equal(t, "s1", payload["session_id"])
	assert.Equal(t, 5000.0, payload["total"])
	assert.NotEmpty(t, payload["submitted_at"])

	items := payload["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, 7.0, item["product_id"])
	assert.Equal(t, "crna", item["color"])
}

func TestOrderSubmitted_BrokerFailureIsSwallowed(t *testing.T) {
	writer := &capturingWriter{err: errors.New("broker unreachable")}
	p := &Publisher{writer: writer, timeout: time.Second}

	// must not panic or propagate; the order is already accepted
	p.OrderSubmitted(context.Background(), "s1", "ord-42", testSnapshot())
	assert.Empty(t, writer.messages)
}
