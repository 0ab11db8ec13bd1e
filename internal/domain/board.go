package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Board is the full multi-container state. Every operation returns a new
// Board and leaves the receiver untouched, so a value read by a renderer
// never changes underneath it.
type Board struct {
	id    string
	name  string
	order []string
	items map[string][]Item
}

// NewBoard validates containers and builds a board in the supplied column order.
func NewBoard(id, name string, containers []Container) (Board, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if name == "" {
		return Board{}, ErrInvalidName
	}
	b := Board{
		id:    id,
		name:  name,
		order: make([]string, 0, len(containers)),
		items: make(map[string][]Item, len(containers)),
	}
	for _, c := range containers {
		container, err := NewContainer(c.ID, c.Items)
		if err != nil {
			return Board{}, err
		}
		if _, ok := b.items[container.ID]; ok {
			return Board{}, fmt.Errorf("container %q: %w", container.ID, ErrDuplicateID)
		}
		b.order = append(b.order, container.ID)
		b.items[container.ID] = container.Items
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// ID returns the board identifier.
func (b Board) ID() string { return b.id }

// Name returns the board display name.
func (b Board) Name() string { return b.name }

// Order returns a copy of the column order.
func (b Board) Order() []string {
	return append([]string(nil), b.order...)
}

// Len returns the number of containers.
func (b Board) Len() int { return len(b.order) }

// Items returns a copy of one container's items.
func (b Board) Items(containerID string) []Item {
	src := b.items[containerID]
	return append(make([]Item, 0, len(src)), src...)
}

// Containers returns every container in column order.
func (b Board) Containers() []Container {
	out := make([]Container, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, Container{ID: id, Items: b.Items(id)})
	}
	return out
}

// ItemIDs returns every item id in column order then list order.
func (b Board) ItemIDs() []string {
	var out []string
	for _, cid := range b.order {
		for _, item := range b.items[cid] {
			out = append(out, item.ID)
		}
	}
	return out
}

// ContainerItemIDs returns the item ids of one container in list order.
// Unknown containers yield nil.
func (b Board) ContainerItemIDs(containerID string) []string {
	items := b.items[containerID]
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

// ItemCount returns the number of items across all containers.
func (b Board) ItemCount() int {
	n := 0
	for _, cid := range b.order {
		n += len(b.items[cid])
	}
	return n
}

// Item looks up one item by id.
func (b Board) Item(id string) (Item, bool) {
	cid, ok := b.containerOfItem(id)
	if !ok {
		return Item{}, false
	}
	idx := b.IndexOf(cid, id)
	return b.items[cid][idx], true
}

// IsContainer reports whether id names a container.
func (b Board) IsContainer(id string) bool {
	_, ok := b.items[id]
	return ok
}

// ContainerIndex returns the column position of a container, or -1.
func (b Board) ContainerIndex(id string) int {
	return slices.Index(b.order, id)
}

// FindContainer resolves id to a container id: the id itself when it names
// a container, otherwise the container holding the item with that id.
func (b Board) FindContainer(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if b.IsContainer(id) {
		return id, true
	}
	return b.containerOfItem(id)
}

func (b Board) containerOfItem(id string) (string, bool) {
	for _, cid := range b.order {
		if b.IndexOf(cid, id) >= 0 {
			return cid, true
		}
	}
	return "", false
}

// IndexOf returns the position of itemID in a container, or -1.
func (b Board) IndexOf(containerID, itemID string) int {
	return slices.IndexFunc(b.items[containerID], func(item Item) bool {
		return item.ID == itemID
	})
}

// Clone returns a deep copy.
func (b Board) Clone() Board {
	out := Board{
		id:    b.id,
		name:  b.name,
		order: append([]string(nil), b.order...),
		items: make(map[string][]Item, len(b.items)),
	}
	for cid, items := range b.items {
		out.items[cid] = append([]Item(nil), items...)
	}
	return out
}

// Equal reports whether both boards hold the same columns, items and order.
func (b Board) Equal(o Board) bool {
	if b.id != o.id || b.name != o.name {
		return false
	}
	if !slices.Equal(b.order, o.order) || len(b.items) != len(o.items) {
		return false
	}
	for cid, items := range b.items {
		other, ok := o.items[cid]
		if !ok || !slices.Equal(items, other) {
			return false
		}
	}
	return true
}

// Validate checks that every item id appears exactly once and never
// shadows a container id.
func (b Board) Validate() error {
	if len(b.order) != len(b.items) {
		return fmt.Errorf("column order has %d entries for %d containers: %w", len(b.order), len(b.items), ErrUnknownContainer)
	}
	seen := make(map[string]string, len(b.items))
	for _, cid := range b.order {
		items, ok := b.items[cid]
		if !ok {
			return fmt.Errorf("column %q: %w", cid, ErrUnknownContainer)
		}
		for _, item := range items {
			if item.ID == "" {
				return fmt.Errorf("item in column %q: %w", cid, ErrInvalidID)
			}
			if item.ID == PlaceholderID {
				return fmt.Errorf("item in column %q: %w", cid, ErrReservedID)
			}
			if b.IsContainer(item.ID) {
				return fmt.Errorf("item %q shadows a container: %w", item.ID, ErrDuplicateID)
			}
			if prev, ok := seen[item.ID]; ok {
				return fmt.Errorf("item %q in columns %q and %q: %w", item.ID, prev, cid, ErrDuplicateID)
			}
			seen[item.ID] = cid
		}
	}
	return nil
}

// TransferItem moves an item into another container at index (clamped to
// the target length). Reports false when nothing moved.
func (b Board) TransferItem(itemID, toContainer string, index int) (Board, bool) {
	from, ok := b.containerOfItem(itemID)
	if !ok || !b.IsContainer(toContainer) || from == toContainer {
		return b, false
	}
	out := b.Clone()
	src := out.items[from]
	srcIdx := out.IndexOf(from, itemID)
	item := src[srcIdx]
	out.items[from] = slices.Delete(src, srcIdx, srcIdx+1)

	dst := out.items[toContainer]
	index = clampIndex(index, len(dst))
	out.items[toContainer] = slices.Insert(dst, index, item)
	return out, true
}

// MoveItem moves the item at from to position to inside one container.
func (b Board) MoveItem(containerID string, from, to int) (Board, bool) {
	items, ok := b.items[containerID]
	if !ok || from < 0 || from >= len(items) || from == to {
		return b, false
	}
	to = clampIndex(to, len(items)-1)
	if from == to {
		return b, false
	}
	out := b.Clone()
	out.items[containerID] = ArrayMove(out.items[containerID], from, to)
	return out, true
}

// MoveContainer moves the column at from to position to.
func (b Board) MoveContainer(from, to int) (Board, bool) {
	if from < 0 || from >= len(b.order) || from == to {
		return b, false
	}
	to = clampIndex(to, len(b.order)-1)
	if from == to {
		return b, false
	}
	out := b.Clone()
	out.order = ArrayMove(out.order, from, to)
	return out, true
}

// AddContainer appends an empty column.
func (b Board) AddContainer(id string) (Board, error) {
	container, err := NewContainer(id, nil)
	if err != nil {
		return b, err
	}
	if b.IsContainer(container.ID) {
		return b, fmt.Errorf("container %q: %w", container.ID, ErrDuplicateID)
	}
	if _, ok := b.containerOfItem(container.ID); ok {
		return b, fmt.Errorf("container %q shadows an item: %w", container.ID, ErrDuplicateID)
	}
	out := b.Clone()
	out.order = append(out.order, container.ID)
	out.items[container.ID] = []Item{}
	return out, nil
}

// ArrayMove returns a copy of s with the element at from moved to index to.
// Elements between the two positions shift by one (a splice, not a swap).
func ArrayMove[T any](s []T, from, to int) []T {
	out := append([]T(nil), s...)
	if from < 0 || from >= len(out) {
		return out
	}
	to = clampIndex(to, len(out)-1)
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

func clampIndex(i, maxIndex int) int {
	if maxIndex < 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i > maxIndex {
		return maxIndex
	}
	return i
}
