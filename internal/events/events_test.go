package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), SubjectJobPaid, JobPaid{}))
}

func TestNewNATSPublisherFailsWithoutServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewNATSPublisher(NATSConfig{
		URL:            "nats://127.0.0.1:1",
		ConnectTimeout: 200 * time.Millisecond,
	}, logger)

	assert.Error(t, err)
}

func TestJobPaidWireFormat(t *testing.T) {
	id := uuid.MustParse("2b1e8f3a-4c6d-4e2f-9a7b-1c3d5e7f9a0b")
	ev := JobPaid{
		EventID:      id,
		JobID:        7,
		ClientID:     1,
		ContractorID: 2,
		Price:        decimal.RequireFromString("200.50"),
		PaidAt:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id.String(), decoded["event_id"])
	assert.Equal(t, "200.5", decoded["price"])
	assert.Equal(t, "2024-01-02T03:04:05Z", decoded["paid_at"])
}
