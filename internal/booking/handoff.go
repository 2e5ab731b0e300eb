package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/spa-backend/internal/cart"
	redisclient "github.com/angelmondragon/spa-backend/pkg/redis"
)

// Handoff field names, one key each per session.
const (
	FieldServices     = "services"
	FieldSelectedSlot = "selectedSlot"
)

// Handoff holds the in-flight state of one booking session. Absent or
// unreadable fields load as nil; only transport failures are errors.
type Handoff interface {
	LoadServices(ctx context.Context, sessionID string) ([]cart.LineItem, error)
	SaveServices(ctx context.Context, sessionID string, items []cart.LineItem) error
	LoadSlot(ctx context.Context, sessionID string) (*SelectedSlot, error)
	SaveSlot(ctx context.Context, sessionID string, slot SelectedSlot) error
	Clear(ctx context.Context, sessionID string) error
}

type handoffKeyer interface {
	HandoffKey(sessionID, field string) string
}

// RedisHandoff stores each field as JSON under its own key with a shared TTL.
type RedisHandoff struct {
	kv   redisclient.KV
	keys handoffKeyer
	ttl  time.Duration
}

// NewRedisHandoff builds the redis-backed handoff storage.
func NewRedisHandoff(kv redisclient.KV, keys handoffKeyer, ttl time.Duration) (*RedisHandoff, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if keys == nil {
		return nil, fmt.Errorf("handoff keyer required")
	}
	return &RedisHandoff{kv: kv, keys: keys, ttl: ttl}, nil
}

func (h *RedisHandoff) LoadServices(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	var items []cart.LineItem
	ok, err := h.load(ctx, sessionID, FieldServices, &items)
	if err != nil || !ok {
		return nil, err
	}
	return items, nil
}

func (h *RedisHandoff) SaveServices(ctx context.Context, sessionID string, items []cart.LineItem) error {
	return h.save(ctx, sessionID, FieldServices, items)
}

func (h *RedisHandoff) LoadSlot(ctx context.Context, sessionID string) (*SelectedSlot, error) {
	var slot SelectedSlot
	ok, err := h.load(ctx, sessionID, FieldSelectedSlot, &slot)
	if err != nil || !ok || slot.StartAt.IsZero() {
		return nil, err
	}
	return &slot, nil
}

func (h *RedisHandoff) SaveSlot(ctx context.Context, sessionID string, slot SelectedSlot) error {
	return h.save(ctx, sessionID, FieldSelectedSlot, slot)
}

func (h *RedisHandoff) Clear(ctx context.Context, sessionID string) error {
	return h.kv.Del(ctx,
		h.keys.HandoffKey(sessionID, FieldServices),
		h.keys.HandoffKey(sessionID, FieldSelectedSlot),
	)
}

func (h *RedisHandoff) load(ctx context.Context, sessionID, field string, dest any) (bool, error) {
	raw, err := h.kv.Get(ctx, h.keys.HandoffKey(sessionID, field))
	if err != nil {
		if redisclient.IsNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (h *RedisHandoff) save(ctx context.Context, sessionID, field string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return h.kv.Set(ctx, h.keys.HandoffKey(sessionID, field), string(payload), h.ttl)
}

// MemoryHandoff is a process-local Handoff for tests and single-node development.
type MemoryHandoff struct {
	mu       sync.Mutex
	services map[string][]cart.LineItem
	slots    map[string]SelectedSlot
}

func NewMemoryHandoff() *MemoryHandoff {
	return &MemoryHandoff{
		services: map[string][]cart.LineItem{},
		slots:    map[string]SelectedSlot{},
	}
}

func (h *MemoryHandoff) LoadServices(_ context.Context, sessionID string) ([]cart.LineItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	items, ok := h.services[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (h *MemoryHandoff) SaveServices(_ context.Context, sessionID string, items []cart.LineItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	h.services[sessionID] = out
	return nil
}

func (h *MemoryHandoff) LoadSlot(_ context.Context, sessionID string) (*SelectedSlot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slot, ok := h.slots[sessionID]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (h *MemoryHandoff) SaveSlot(_ context.Context, sessionID string, slot SelectedSlot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.slots[sessionID] = slot
	return nil
}

func (h *MemoryHandoff) Clear(_ context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.services, sessionID)
	delete(h.slots, sessionID)
	return nil
}
