package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spa-backend/internal/cart"
	redisclient "github.com/angelmondragon/spa-backend/pkg/redis"
)

func TestRedisHandoffRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	h, err := NewRedisHandoff(client, client, 2*time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	items, err := h.LoadServices(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, items)

	require.NoError(t, h.SaveServices(ctx, "s1", []cart.LineItem{{ID: "var-60", Quantity: 1, PriceCents: 9900}}))
	start := time.Date(2026, time.March, 3, 17, 0, 0, 0, time.UTC)
	require.NoError(t, h.SaveSlot(ctx, "s1", SelectedSlot{StartAt: start, HeldAt: start}))

	servicesKey := client.HandoffKey("s1", FieldServices)
	slotKey := client.HandoffKey("s1", FieldSelectedSlot)
	assert.Equal(t, "spa:handoff:s1:services", servicesKey)
	assert.Equal(t, "spa:handoff:s1:selectedSlot", slotKey)
	assert.Equal(t, 2*time.Hour, mr.TTL(servicesKey))

	items, err = h.LoadServices(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9900), items[0].PriceCents)

	slot, err := h.LoadSlot(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.True(t, start.Equal(slot.StartAt))

	require.NoError(t, mr.Set(slotKey, "{broken"))
	slot, err = h.LoadSlot(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, slot)

	require.NoError(t, h.Clear(ctx, "s1"))
	assert.False(t, mr.Exists(servicesKey))
	assert.False(t, mr.Exists(slotKey))
}

func TestRedisHandoffExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	h, err := NewRedisHandoff(client, client, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, h.SaveServices(ctx, "s1", []cart.LineItem{{ID: "var-60", Quantity: 1}}))

	mr.FastForward(2 * time.Minute)
	items, err := h.LoadServices(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, items)
}
