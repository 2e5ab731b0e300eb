package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Store is the cart of a single client. It is not safe for concurrent use;
// Service serializes access per client.
type Store struct {
	storage  Storage
	clientID string
	items    []LineItem
}

// NewStore binds a store to one client. Call Load before reading.
func NewStore(storage Storage, clientID string) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("client id required")
	}
	return &Store{storage: storage, clientID: clientID}, nil
}

// Load rehydrates the item list. A missing or unreadable payload yields an
// empty cart; only storage transport failures are returned.
func (s *Store) Load(ctx context.Context) error {
	payload, err := s.storage.Load(ctx, s.clientID)
	if err != nil {
		return err
	}
	s.items = decodeItems(payload)
	return nil
}

// AddItem increments the quantity of an existing line or appends a new one
// with quantity 1. The first snapshot of price and name is kept.
func (s *Store) AddItem(ctx context.Context, item LineItem) error {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity++
			return s.save(ctx)
		}
	}
	item.Quantity = 1
	s.items = append(s.items, item)
	return s.save(ctx)
}

// RemoveItem decrements the matching line and drops it at zero. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		s.items[i].Quantity--
		if s.items[i].Quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return s.save(ctx)
	}
	return nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	return s.save(ctx)
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) save(ctx context.Context) error {
	if len(s.items) == 0 {
		return s.storage.Delete(ctx, s.clientID)
	}
	payload, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.storage.Save(ctx, s.clientID, string(payload))
}

// decodeItems parses a stored payload, dropping lines that break the
// one-line-per-id, positive-quantity shape.
func decodeItems(payload string) []LineItem {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	var raw []LineItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil
	}
	out := make([]LineItem, 0, len(raw))
	index := map[string]int{}
	for _, item := range raw {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if pos, ok := index[item.ID]; ok {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
