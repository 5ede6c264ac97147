package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoppedPublisher(t *testing.T) *KafkaPublisher {
	t.Helper()
	pub := NewKafkaPublisher([]string{"localhost:9092"}, "marketplace-events", "test", 8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	pub.Start(ctx)
	cancel()
	pub.WaitClosed()
	return pub
}

func TestPublish_AfterShutdownDropsWithoutPanic(t *testing.T) {
	pub := newStoppedPublisher(t)

	// a request handler finishing during server shutdown must not blow up
	require.NotPanics(t, func() {
		pub.Publish(context.Background(), TypeOrderCreated, "buyer-1", OrderCreated{
			OrderID: "order-1",
			UserID:  "buyer-1",
			Total:   150_000,
		})
	})
	assert.Empty(t, pub.inbox)
}

func TestPublish_RepeatedAfterShutdown(t *testing.T) {
	pub := newStoppedPublisher(t)

	for i := 0; i < 20; i++ {
		require.NotPanics(t, func() {
			pub.Publish(context.Background(), TypeOfferAccepted, "prod-1", OfferAccepted{
				OfferID:   "offer-1",
				ProductID: "prod-1",
			})
		})
	}
	assert.Empty(t, pub.inbox)
}
