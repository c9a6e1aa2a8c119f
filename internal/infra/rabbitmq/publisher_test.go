package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"market-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	msg, body, err := encode("order.created", map[string]any{"orderId": "ORD-20250101-000001"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.created", decoded["pattern"])
	assert.Equal(t, msg.ID, decoded["id"])
	assert.Equal(t, "ORD-20250101-000001", decoded["data"].(map[string]any)["orderId"])
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, _, err := encode("order.created", make(chan int))
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.Discard())
	assert.NoError(t, p.Publish(context.Background(), "order.cancelled", struct{}{}))
}
