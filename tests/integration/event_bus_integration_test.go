//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/cache"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/events"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/providers/geolocation"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEventBus_FanOut(t *testing.T) {
	client := newTestRedisClient(t)
	bus := events.NewRedisEventBus(client)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientID := "it-" + uuid.NewString()
	channel := providers.GetPositionChannel(clientID)

	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)

	// Give the subscription time to register with Redis
	time.Sleep(200 * time.Millisecond)

	report := entities.PositionReport{ClientID: clientID, Lat: 21.0285, Lng: 105.8542, ReportedAt: time.Now().UTC()}
	require.NoError(t, bus.Publish(ctx, channel, entities.NewPositionReportedEvent(report)))

	for _, ch := range []<-chan *entities.PositionEvent{first, second} {
		event := waitForPositionEvent(t, ch)
		assert.Equal(t, entities.PositionEventTypeReported, event.EventType)
		assert.Equal(t, clientID, event.ClientID)
		assert.InDelta(t, 21.0285, event.Report.Lat, 1e-9)
	}
}

func TestReportedPositionSource_OverRedis(t *testing.T) {
	client := newTestRedisClient(t)
	bus := events.NewRedisEventBus(client)
	t.Cleanup(func() { _ = bus.Close() })
	store := cache.NewRedisAdapter(client, "fooddiscovery-it:")

	source := geolocation.NewReportedPositionSource(store, bus, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientID := "it-" + uuid.NewString()

	watch, err := source.WatchPosition(ctx, clientID, providers.PositionOptions{})
	require.NoError(t, err)
	defer watch.Stop()

	time.Sleep(200 * time.Millisecond)

	require.NoError(t, source.Report(ctx, entities.PositionReport{ClientID: clientID, Lat: 21.0367, Lng: 105.8342}))

	select {
	case update := <-watch.Updates():
		require.NoError(t, update.Err)
		require.NotNil(t, update.Fix)
		assert.InDelta(t, 21.0367, update.Fix.Lat, 1e-9)
	case <-ctx.Done():
		t.Fatal("timed out waiting for watch update")
	}

	// The stored report answers one-shot requests without waiting
	fix, err := source.CurrentPosition(ctx, clientID, providers.PositionOptions{Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.InDelta(t, 105.8342, fix.Lng, 1e-9)

	require.NoError(t, source.Deny(ctx, clientID, "user denied geolocation"))
	_, err = source.CurrentPosition(ctx, clientID, providers.PositionOptions{Timeout: 100 * time.Millisecond})
	assert.Error(t, err)
}
