package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHandlerRoutesOrderPlaced(t *testing.T) {
	handler := NewEventHandler()

	var got *models.OrderPlacedEvent
	handler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		got = event
		return nil
	})

	event := models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     10,
		UserID:      3,
		TotalAmount: decimal.RequireFromString("20.00"),
		Items: []models.OrderLineData{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00"), StockLeft: 3},
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = handler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.OrderID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].StockLeft)
	assert.True(t, event.TotalAmount.Equal(got.TotalAmount))
}

func TestEventHandlerIgnoresUnknownTypes(t *testing.T) {
	handler := NewEventHandler()

	called := false
	handler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		called = true
		return nil
	})

	payload, err := json.Marshal(models.BaseEvent{EventID: "evt-2", EventType: "SOMETHING_ELSE"})
	require.NoError(t, err)

	err = handler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestEventHandlerRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()

	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{broken")})
	assert.Error(t, err)
}
