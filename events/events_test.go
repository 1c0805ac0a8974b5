package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/order-inventory-platform/events"
)

func TestNewEnvelope(t *testing.T) {
	env := events.NewEnvelope(events.OrderPlaced, map[string]any{"order_id": 42})

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, events.OrderPlaced, env.Name)
	assert.False(t, env.OccurredAt.IsZero())

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded events.Envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, env.ID, decoded.ID)
	assert.Equal(t, events.OrderPlaced, decoded.Name)
	assert.EqualValues(t, 42, decoded.Payload["order_id"])
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}

	assert.NoError(t, p.Publish(t.Context(), events.UserRegistered, "1", nil))
	assert.NoError(t, p.Close())
}
