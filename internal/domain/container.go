package domain

import (
	"strconv"
	"strings"
)

// PlaceholderID is the reserved droppable that renders as "+ Add column".
const PlaceholderID = "placeholder"

// Container is one droppable column and its ordered items.
type Container struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
}

// NewContainer validates a container id and copies the supplied items.
func NewContainer(id string, items []Item) (Container, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Container{}, ErrInvalidID
	}
	if id == PlaceholderID {
		return Container{}, ErrReservedID
	}
	return Container{ID: id, Items: append([]Item(nil), items...)}, nil
}

// Label returns the column heading.
func (c Container) Label() string {
	return "Column " + c.ID
}

// NextContainerID returns the letter after the last container id ("D" -> "E"),
// falling back to "C<n>" when the letter sequence does not apply.
func NextContainerID(order []string) string {
	taken := make(map[string]struct{}, len(order))
	for _, id := range order {
		taken[id] = struct{}{}
	}
	if len(order) > 0 {
		last := order[len(order)-1]
		if len(last) == 1 && last[0] >= 'A' && last[0] < 'Z' {
			candidate := string(last[0] + 1)
			if _, ok := taken[candidate]; !ok {
				return candidate
			}
		}
	} else {
		return "A"
	}
	for n := len(order) + 1; ; n++ {
		candidate := "C" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
