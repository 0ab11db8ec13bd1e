package app

import (
	"slices"

	"github.com/hylla/dragboard/internal/domain"
)

// Strategy names the rule that produced a collision result.
type Strategy string

// StrategyNone and related constants identify collision strategies.
const (
	StrategyNone             Strategy = "none"
	StrategyClosestCenter    Strategy = "closest_center"
	StrategyPointerWithin    Strategy = "pointer_within"
	StrategyRectIntersection Strategy = "rect_intersection"
	StrategyLastTarget       Strategy = "last_target"
)

// Droppable is one measured drop target: a column, an item or the placeholder.
type Droppable struct {
	ID   string      `json:"id"`
	Rect domain.Rect `json:"rect"`
}

// CollisionInput carries the geometry of one pointer move.
type CollisionInput struct {
	ActiveID   string        `json:"active_id"`
	ActiveRect domain.Rect   `json:"active_rect"`
	Pointer    *domain.Point `json:"pointer,omitempty"`
	Droppables []Droppable   `json:"droppables"`
}

// Collision is the resolved target, if any.
type Collision struct {
	TargetID string   `json:"target_id,omitempty"`
	Strategy Strategy `json:"strategy"`
	// Refined is set when a column hit was narrowed to one of its items.
	Refined bool `json:"refined,omitempty"`
}

// Found reports whether a target was resolved.
func (c Collision) Found() bool {
	return c.TargetID != ""
}

// CollisionDetector resolves the droppable under the pointer. It keeps the
// last resolved target so that a pointer briefly leaving every droppable does
// not lose the target.
type CollisionDetector struct {
	lastTarget string
}

// Reset clears the remembered target.
func (d *CollisionDetector) Reset() {
	d.lastTarget = ""
}

// LastTarget returns the remembered target.
func (d *CollisionDetector) LastTarget() string {
	return d.lastTarget
}

// Detect resolves zero or one target for board.
func (d *CollisionDetector) Detect(board domain.Board, in CollisionInput) Collision {
	if board.IsContainer(in.ActiveID) {
		columns := slices.DeleteFunc(slices.Clone(in.Droppables), func(dr Droppable) bool {
			return !board.IsContainer(dr.ID)
		})
		if id, ok := closestCenter(in.ActiveRect, columns); ok {
			return Collision{TargetID: id, Strategy: StrategyClosestCenter}
		}
		return Collision{Strategy: StrategyNone}
	}

	strategy := StrategyPointerWithin
	hits := pointerWithin(in.Pointer, in.Droppables)
	if len(hits) == 0 {
		strategy = StrategyRectIntersection
		hits = rectIntersection(in.ActiveRect, in.Droppables)
	}
	if len(hits) == 0 {
		if d.lastTarget != "" {
			return Collision{TargetID: d.lastTarget, Strategy: StrategyLastTarget}
		}
		return Collision{Strategy: StrategyNone}
	}

	out := Collision{TargetID: hits[0], Strategy: strategy}
	if board.IsContainer(out.TargetID) {
		if children := childDroppables(board, out.TargetID, in.Droppables); len(children) > 0 {
			if id, ok := closestCenter(in.ActiveRect, children); ok {
				out.TargetID = id
				out.Refined = true
			}
		}
	}
	d.lastTarget = out.TargetID
	return out
}

// childDroppables keeps the droppables that are items of containerID.
func childDroppables(board domain.Board, containerID string, droppables []Droppable) []Droppable {
	if len(board.Items(containerID)) == 0 {
		return nil
	}
	out := make([]Droppable, 0, len(droppables))
	for _, dr := range droppables {
		if dr.ID == containerID {
			continue
		}
		if board.IndexOf(containerID, dr.ID) >= 0 {
			out = append(out, dr)
		}
	}
	return out
}

// closestCenter picks the droppable whose center is nearest the active rect's
// center. The first droppable wins ties.
func closestCenter(active domain.Rect, droppables []Droppable) (string, bool) {
	center := active.Center()
	best := ""
	bestDist := 0.0
	for _, dr := range droppables {
		dist := domain.Distance(center, dr.Rect.Center())
		if best == "" || dist < bestDist {
			best, bestDist = dr.ID, dist
		}
	}
	return best, best != ""
}

type scoredDroppable struct {
	id    string
	score float64
}

// pointerWithin returns droppables strictly containing the pointer, nearest
// corners first.
func pointerWithin(pointer *domain.Point, droppables []Droppable) []string {
	if pointer == nil {
		return nil
	}
	var scored []scoredDroppable
	for _, dr := range droppables {
		if dr.Rect.ContainsStrict(*pointer) {
			scored = append(scored, scoredDroppable{id: dr.ID, score: domain.MeanCornerDistance(*pointer, dr.Rect)})
		}
	}
	slices.SortStableFunc(scored, func(a, b scoredDroppable) int {
		return compareFloat(a.score, b.score)
	})
	return scoredIDs(scored)
}

// rectIntersection returns droppables overlapping the active rect, largest
// intersection ratio first.
func rectIntersection(active domain.Rect, droppables []Droppable) []string {
	var scored []scoredDroppable
	for _, dr := range droppables {
		if ratio := active.IntersectionRatio(dr.Rect); ratio > 0 {
			scored = append(scored, scoredDroppable{id: dr.ID, score: ratio})
		}
	}
	slices.SortStableFunc(scored, func(a, b scoredDroppable) int {
		return compareFloat(b.score, a.score)
	})
	return scoredIDs(scored)
}

func scoredIDs(scored []scoredDroppable) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.id)
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
