package domain

import (
	"fmt"
	"strings"
)

// maxIDAttempts bounds retries when a generator keeps returning taken ids.
const maxIDAttempts = 64

// Item is one draggable card. Only its container and position change after creation.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IDGenerator returns candidate identifiers for new items and columns.
type IDGenerator func() string

// NewItem validates and constructs an item, defaulting the name to "Item <id>".
func NewItem(id, name string) (Item, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Item{}, ErrInvalidID
	}
	if id == PlaceholderID {
		return Item{}, ErrReservedID
	}
	if name == "" {
		name = DefaultItemName(id)
	}
	return Item{ID: id, Name: name}, nil
}

// DefaultItemName returns the display name used for generated items.
func DefaultItemName(id string) string {
	return "Item " + id
}

// CreateItems builds length items with ids from next, skipping ids already in taken.
// taken is updated with every id handed out.
func CreateItems(length int, next IDGenerator, taken map[string]struct{}) ([]Item, error) {
	if length < 0 {
		return nil, ErrInvalidPosition
	}
	if next == nil {
		return nil, ErrInvalidID
	}
	if taken == nil {
		taken = map[string]struct{}{}
	}
	out := make([]Item, 0, length)
	for len(out) < length {
		id, err := uniqueID(next, taken)
		if err != nil {
			return nil, fmt.Errorf("create item %d: %w", len(out), err)
		}
		item, err := NewItem(id, "")
		if err != nil {
			return nil, fmt.Errorf("create item %d: %w", len(out), err)
		}
		out = append(out, item)
	}
	return out, nil
}

// uniqueID draws from next until an unused, non-reserved id appears.
func uniqueID(next IDGenerator, taken map[string]struct{}) (string, error) {
	for range maxIDAttempts {
		id := strings.TrimSpace(next())
		if id == "" || id == PlaceholderID {
			continue
		}
		if _, ok := taken[id]; ok {
			continue
		}
		taken[id] = struct{}{}
		return id, nil
	}
	return "", ErrIDSpaceExhausted
}
