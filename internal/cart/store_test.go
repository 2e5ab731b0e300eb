package cart

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedStore(t *testing.T, storage Storage, clientID string) *Store {
	t.Helper()
	store, err := NewStore(storage, clientID)
	require.NoError(t, err)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestStoreAddItemIncrementsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newLoadedStore(t, NewMemoryStorage(), "c1")

	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1", Name: "Swedish", PriceCents: 9900}))
	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1", Name: "Renamed", PriceCents: 1}))
	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v2", Name: "Facial", PriceCents: 5000, Quantity: 7}))

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Swedish", items[0].Name)
	assert.Equal(t, int64(9900), items[0].PriceCents)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3, store.TotalItems())
}

func TestStoreRemoveItem(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newLoadedStore(t, NewMemoryStorage(), "c1")

	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1"}))
	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1"}))
	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v2"}))

	require.NoError(t, store.RemoveItem(ctx, "v1"))
	assert.Equal(t, 1, store.Items()[0].Quantity)

	require.NoError(t, store.RemoveItem(ctx, "v1"))
	require.Len(t, store.Items(), 1)
	assert.Equal(t, "v2", store.Items()[0].ID)

	require.NoError(t, store.RemoveItem(ctx, "missing"))
	assert.Equal(t, 1, store.TotalItems())
}

func TestStorePersistsEveryMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := newLoadedStore(t, storage, "c1")

	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1", Name: "Swedish"}))
	require.NoError(t, store.AddItem(ctx, LineItem{ID: "v1"}))

	reloaded := newLoadedStore(t, storage, "c1")
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, 2, reloaded.TotalItems())

	require.NoError(t, store.Clear(ctx))
	payload, err := storage.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, payload)
	assert.Equal(t, 0, newLoadedStore(t, storage, "c1").TotalItems())
}

func TestStoreIsolatesClients(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storage := NewMemoryStorage()
	a := newLoadedStore(t, storage, "a")
	require.NoError(t, a.AddItem(ctx, LineItem{ID: "v1"}))

	b := newLoadedStore(t, storage, "b")
	assert.Empty(t, b.Items())
}

func TestStoreLoadToleratesBadPayloads(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		payload string
		total   int
		lines   int
	}{
		"empty":        {payload: "", total: 0, lines: 0},
		"not json":     {payload: "{oops", total: 0, lines: 0},
		"wrong shape":  {payload: `{"id":"v1"}`, total: 0, lines: 0},
		"bad quantity": {payload: `[{"id":"v1","quantity":0},{"id":"v2","quantity":2}]`, total: 2, lines: 1},
		"missing id":   {payload: `[{"name":"x","quantity":1}]`, total: 0, lines: 0},
		"duplicates":   {payload: `[{"id":"v1","quantity":1},{"id":"v1","quantity":2}]`, total: 3, lines: 1},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save(context.Background(), "c1", tc.payload))

			store := newLoadedStore(t, storage, "c1")
			assert.Equal(t, tc.total, store.TotalItems())
			assert.Len(t, store.Items(), tc.lines)
		})
	}
}

func TestNewStoreRequiresClientID(t *testing.T) {
	t.Parallel()
	_, err := NewStore(NewMemoryStorage(), "  ")
	assert.Error(t, err)
	_, err = NewStore(nil, "c1")
	assert.Error(t, err)
}

func TestStoreRandomSequencesKeepQuantitiesConsistent(t *testing.T) {
	t.Parallel()
	ids := []string{"v1", "v2", "v3", "missing"}

	for seed := uint64(1); seed <= 20; seed++ {
		ctx := context.Background()
		rng := rand.New(rand.NewPCG(seed, seed*31))
		storage := NewMemoryStorage()
		store := newLoadedStore(t, storage, "c1")
		want := map[string]int{}

		for step := 0; step < 200; step++ {
			id := ids[rng.IntN(len(ids))]
			if rng.IntN(2) == 0 {
				require.NoError(t, store.AddItem(ctx, LineItem{ID: id, PriceCents: 1000}))
				want[id]++
			} else {
				require.NoError(t, store.RemoveItem(ctx, id))
				if want[id] > 0 {
					want[id]--
				}
				if want[id] == 0 {
					delete(want, id)
				}
			}

			sum := 0
			for _, item := range store.Items() {
				require.Positive(t, item.Quantity, "seed %d step %d", seed, step)
				assert.Equal(t, want[item.ID], item.Quantity, "seed %d step %d", seed, step)
				sum += item.Quantity
			}
			require.Len(t, store.Items(), len(want), "seed %d step %d", seed, step)
			require.Equal(t, sum, store.TotalItems(), "seed %d step %d", seed, step)
		}

		reloaded := newLoadedStore(t, storage, "c1")
		assert.Equal(t, store.Items(), reloaded.Items(), "seed %d", seed)
	}
}
