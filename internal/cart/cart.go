// Package cart keeps the yachts a visitor marked as interesting.  The list
// is persisted through a Store so the backend (redis, memory) can change
// without touching the list logic.
package cart

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidItem = errors.New("cart item needs a yacht id")

// Item is one yacht of interest with optional proposed dates.
type Item struct {
	YachtID   uint64    `json:"yacht_id"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Store persists one visitor's list.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// Stores hands out the Store of a session.
type Stores interface {
	For(sessionID string) Store
}

// ShoppingList is the visitor's list of yachts, at most one entry per yacht.
type ShoppingList struct {
	store Store
	now   func() time.Time
}

func New(store Store) *ShoppingList {
	return &ShoppingList{store: store, now: time.Now}
}

// Items returns the list in insertion order.
func (l *ShoppingList) Items(ctx context.Context) ([]Item, error) {
	items, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Add puts it on the list.  Adding a yacht that is already there only
// updates its dates.
func (l *ShoppingList) Add(ctx context.Context, it Item) ([]Item, error) {
	if it.YachtID == 0 {
		return nil, ErrInvalidItem
	}
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range items {
		if items[i].YachtID == it.YachtID {
			items[i].StartDate = it.StartDate
			items[i].EndDate = it.EndDate
			found = true
			break
		}
	}
	if !found {
		it.AddedAt = l.now().UTC()
		items = append(items, it)
	}
	if err := l.store.Save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove drops yachtID from the list.  Removing an absent yacht is a no-op.
func (l *ShoppingList) Remove(ctx context.Context, yachtID uint64) ([]Item, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.YachtID != yachtID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return items, nil
	}
	if err := l.store.Save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the list.
func (l *ShoppingList) Clear(ctx context.Context) error {
	return l.store.Save(ctx, nil)
}
