package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeEvent(t *testing.T) {
	ev := domain.Event{
		ID:        uuid.New(),
		Seq:       7,
		Type:      domain.EventCredited,
		Actor:     "0xpassenger",
		FlightKey: domain.NewFlightKey("AA123", "DEF", 1),
		Amount:    decimal.RequireFromString("1.5"),
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	got, ok := decodeEvent(kafka.Message{Value: payload}, zap.NewNop())
	require.True(t, ok)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, ev.FlightKey, got.FlightKey)
	assert.True(t, ev.Amount.Equal(got.Amount))

	_, ok = decodeEvent(kafka.Message{Value: []byte("not json")}, zap.NewNop())
	assert.False(t, ok)
}

func TestNewProducerAndConsumer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, zap.NewNop())
	assert.NotNil(t, p)
	assert.NoError(t, p.PublishEvents(context.Background(), "topic", nil))
	assert.NoError(t, p.Close())

	c := NewConsumer([]string{"localhost:9092"}, "group", "topic", time.Second, zap.NewNop())
	assert.NotNil(t, c)
	assert.NoError(t, c.Close())
}
