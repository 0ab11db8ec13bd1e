package app

import (
	"testing"

	"github.com/hylla/dragboard/internal/domain"
)

// twoColumnBoard lays out A:[1,2,3] and B:[] side by side. Column A spans
// x 0..20, y 0..40 and its items are stacked 10 rows apart.
func twoColumnBoard(t *testing.T) (domain.Board, []Droppable) {
	t.Helper()
	board, err := domain.NewBoard("b1", "Board", []domain.Container{
		{ID: "A", Items: []domain.Item{{ID: "1", Name: "Item 1"}, {ID: "2", Name: "Item 2"}, {ID: "3", Name: "Item 3"}}},
		{ID: "B"},
	})
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	droppables := []Droppable{
		{ID: "A", Rect: domain.Rect{Left: 0, Top: 0, Width: 20, Height: 40}},
		{ID: "1", Rect: domain.Rect{Left: 1, Top: 2, Width: 18, Height: 8}},
		{ID: "2", Rect: domain.Rect{Left: 1, Top: 12, Width: 18, Height: 8}},
		{ID: "3", Rect: domain.Rect{Left: 1, Top: 22, Width: 18, Height: 8}},
		{ID: "B", Rect: domain.Rect{Left: 22, Top: 0, Width: 20, Height: 40}},
		{ID: domain.PlaceholderID, Rect: domain.Rect{Left: 44, Top: 0, Width: 20, Height: 5}},
	}
	return board, droppables
}

func pt(x, y float64) *domain.Point {
	return &domain.Point{X: x, Y: y}
}

func TestDetectPrefersItemOverEnclosingColumn(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	got := d.Detect(board, CollisionInput{
		ActiveID:   "1",
		ActiveRect: domain.Rect{Left: 1, Top: 13, Width: 18, Height: 8},
		Pointer:    pt(10, 15),
		Droppables: droppables,
	})
	if got.TargetID != "2" || got.Strategy != StrategyPointerWithin {
		t.Fatalf("Detect() = %#v, want item 2 via pointer", got)
	}
	if d.LastTarget() != "2" {
		t.Fatalf("LastTarget() = %q, want 2", d.LastTarget())
	}
}

func TestDetectStickyFallback(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	d.Detect(board, CollisionInput{ActiveID: "1", ActiveRect: domain.Rect{Left: 1, Top: 13, Width: 18, Height: 8}, Pointer: pt(10, 15), Droppables: droppables})

	away := CollisionInput{
		ActiveID:   "1",
		ActiveRect: domain.Rect{Left: 100, Top: 100, Width: 18, Height: 8},
		Pointer:    pt(105, 105),
		Droppables: droppables,
	}
	for range 3 {
		got := d.Detect(board, away)
		if got.TargetID != "2" || got.Strategy != StrategyLastTarget {
			t.Fatalf("Detect() = %#v, want sticky item 2", got)
		}
	}

	got := d.Detect(board, CollisionInput{ActiveID: "1", Pointer: pt(30, 20), ActiveRect: domain.Rect{Left: 25, Top: 18, Width: 18, Height: 8}, Droppables: droppables})
	if got.TargetID != "B" {
		t.Fatalf("Detect() = %#v, want empty column B", got)
	}
	if d.LastTarget() != "B" {
		t.Fatalf("expected last target to move to B, got %q", d.LastTarget())
	}
}

func TestDetectNothingWithoutHistory(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	got := d.Detect(board, CollisionInput{ActiveID: "1", ActiveRect: domain.Rect{Left: 100, Top: 100, Width: 1, Height: 1}, Droppables: droppables})
	if got.Found() || got.Strategy != StrategyNone {
		t.Fatalf("Detect() = %#v, want none", got)
	}
}

func TestDetectRefinesColumnToClosestChild(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	// Pointer sits on column A padding below every card.
	got := d.Detect(board, CollisionInput{
		ActiveID:   "1",
		ActiveRect: domain.Rect{Left: 1, Top: 28, Width: 18, Height: 8},
		Pointer:    pt(10, 35),
		Droppables: droppables,
	})
	if got.TargetID != "3" || !got.Refined {
		t.Fatalf("Detect() = %#v, want refined item 3", got)
	}
}

func TestDetectKeepsColumnWhenChildrenUnmeasured(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	got := d.Detect(board, CollisionInput{
		ActiveID:   "1",
		ActiveRect: domain.Rect{Left: 1, Top: 28, Width: 18, Height: 8},
		Pointer:    pt(10, 35),
		Droppables: droppables[:1],
	})
	if got.TargetID != "A" || got.Refined {
		t.Fatalf("Detect() = %#v, want column A", got)
	}
}

func TestDetectFallsBackToRectIntersection(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	// No pointer; active rect straddles the gap with most of its area over B.
	got := d.Detect(board, CollisionInput{
		ActiveID:   "1",
		ActiveRect: domain.Rect{Left: 18, Top: 30, Width: 18, Height: 8},
		Droppables: droppables,
	})
	if got.TargetID != "B" || got.Strategy != StrategyRectIntersection {
		t.Fatalf("Detect() = %#v, want B via intersection", got)
	}
}

func TestDetectColumnDragUsesClosestCenterOnly(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	var d CollisionDetector
	got := d.Detect(board, CollisionInput{
		ActiveID:   "A",
		ActiveRect: domain.Rect{Left: 30, Top: 0, Width: 20, Height: 40},
		Pointer:    pt(15, 15),
		Droppables: droppables,
	})
	if got.TargetID != "B" || got.Strategy != StrategyClosestCenter {
		t.Fatalf("Detect() = %#v, want B via closest center", got)
	}
	if d.LastTarget() != "" {
		t.Fatalf("expected column drag to leave last target empty, got %q", d.LastTarget())
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	board, droppables := twoColumnBoard(t)
	in := CollisionInput{
		ActiveID:   "3",
		ActiveRect: domain.Rect{Left: 1, Top: 11, Width: 18, Height: 8},
		Pointer:    pt(10, 11.5),
		Droppables: droppables,
	}
	var first CollisionDetector
	want := first.Detect(board, in)
	for range 20 {
		var d CollisionDetector
		if got := d.Detect(board, in); got != want {
			t.Fatalf("Detect() = %#v, want %#v", got, want)
		}
	}
}

func TestDetectPointerTieKeepsInputOrder(t *testing.T) {
	board, _ := twoColumnBoard(t)
	same := domain.Rect{Left: 0, Top: 0, Width: 10, Height: 10}
	droppables := []Droppable{{ID: "2", Rect: same}, {ID: "3", Rect: same}}
	var d CollisionDetector
	got := d.Detect(board, CollisionInput{ActiveID: "1", Pointer: pt(5, 5), Droppables: droppables})
	if got.TargetID != "2" {
		t.Fatalf("Detect() = %#v, want first droppable on tie", got)
	}
}
