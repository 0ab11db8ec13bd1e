package app

import (
	"fmt"
	"strings"

	"github.com/hylla/dragboard/internal/domain"
)

// Phase is the controller lifecycle state.
type Phase string

// PhaseIdle and PhaseDragging are the two controller states.
const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

// EventKind names one drag lifecycle event.
type EventKind string

// EventStart and related constants identify lifecycle events.
const (
	EventStart  EventKind = "start"
	EventOver   EventKind = "over"
	EventEnd    EventKind = "end"
	EventCancel EventKind = "cancel"
)

// OverEvent carries the target and geometry of one drag-over.
type OverEvent struct {
	OverID     string      `json:"over_id"`
	ActiveRect domain.Rect `json:"active_rect"`
	OverRect   domain.Rect `json:"over_rect"`
}

// Outcome describes the result of one lifecycle call.
type Outcome struct {
	Event    EventKind
	Phase    Phase
	ActiveID string
	OverID   string
	// Changed reports whether the board differs from the state before the
	// event. For end it compares against the drag-start snapshot.
	Changed bool
	Board   domain.Board
}

// Observer receives lifecycle and collision reports.
type Observer interface {
	ObserveDrag(Outcome)
	ObserveCollision(Collision)
}

// Controller owns one board, the active drag and its rollback snapshot.
// It is not safe for concurrent use; Session serializes access.
type Controller struct {
	board    domain.Board
	activeID string
	snapshot domain.Board
	detector CollisionDetector
	observer Observer
}

// ControllerOption customizes a controller.
type ControllerOption func(*Controller)

// WithObserver reports lifecycle events to observer.
func WithObserver(observer Observer) ControllerOption {
	return func(c *Controller) {
		c.observer = observer
	}
}

// NewController constructs an idle controller over board.
func NewController(board domain.Board, opts ...ControllerOption) *Controller {
	c := &Controller{board: board}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Board returns the current board value.
func (c *Controller) Board() domain.Board {
	return c.board
}

// ActiveID returns the dragged id, or "" when idle.
func (c *Controller) ActiveID() string {
	return c.activeID
}

// Phase returns the lifecycle state.
func (c *Controller) Phase() Phase {
	if c.activeID == "" {
		return PhaseIdle
	}
	return PhaseDragging
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.activeID != ""
}

// ActiveIsContainer reports whether the current drag moves a column.
func (c *Controller) ActiveIsContainer() bool {
	return c.activeID != "" && c.board.IsContainer(c.activeID)
}

// LastTarget returns the remembered collision target.
func (c *Controller) LastTarget() string {
	return c.detector.LastTarget()
}

// SetBoard replaces the board while idle.
func (c *Controller) SetBoard(board domain.Board) error {
	if c.Dragging() {
		return ErrDragInProgress
	}
	c.board = board
	return nil
}

// Start begins dragging an item or a column and snapshots the board.
func (c *Controller) Start(activeID string) (Outcome, error) {
	activeID = strings.TrimSpace(activeID)
	if c.Dragging() {
		return Outcome{}, fmt.Errorf("start %q while dragging %q: %w", activeID, c.activeID, ErrDragInProgress)
	}
	if _, ok := c.board.FindContainer(activeID); !ok {
		return Outcome{}, fmt.Errorf("start %q: %w", activeID, ErrUnknownDraggable)
	}
	c.activeID = activeID
	c.snapshot = c.board.Clone()
	c.detector.Reset()
	return c.report(Outcome{Event: EventStart}), nil
}

// Detect runs collision detection for the active drag.
func (c *Controller) Detect(in CollisionInput) Collision {
	if in.ActiveID == "" {
		in.ActiveID = c.activeID
	}
	out := c.detector.Detect(c.board, in)
	if c.observer != nil {
		c.observer.ObserveCollision(out)
	}
	return out
}

// Over moves the active item into the hovered container when it differs
// from the item's current one. Everything else is a no-op.
func (c *Controller) Over(ev OverEvent) Outcome {
	out := Outcome{Event: EventOver, OverID: ev.OverID}
	if !c.Dragging() || c.ActiveIsContainer() || ev.OverID == "" {
		return c.report(out)
	}
	overContainer, ok := c.board.FindContainer(ev.OverID)
	if !ok {
		return c.report(out)
	}
	activeContainer, ok := c.board.FindContainer(c.activeID)
	if !ok || activeContainer == overContainer {
		return c.report(out)
	}

	overItems := c.board.Items(overContainer)
	index := len(overItems)
	if !c.board.IsContainer(ev.OverID) {
		if overIndex := c.board.IndexOf(overContainer, ev.OverID); overIndex >= 0 {
			index = overIndex
			if insertAfter(ev.ActiveRect, ev.OverRect) {
				index++
			}
		}
	}
	next, moved := c.board.TransferItem(c.activeID, overContainer, index)
	if moved {
		c.board = next
		out.Changed = true
	}
	return c.report(out)
}

// insertAfter reports whether the dragged rect sits below the sibling's midpoint.
func insertAfter(active, over domain.Rect) bool {
	if active.Empty() || over.Empty() {
		return false
	}
	return active.Top > over.MidY()
}

// End commits the drag: a column moves to the target column's index, an
// item moves to the target's index.
func (c *Controller) End(overID string) (Outcome, error) {
	if !c.Dragging() {
		return Outcome{}, ErrNoActiveDrag
	}
	out := Outcome{Event: EventEnd, OverID: overID}
	if c.ActiveIsContainer() {
		c.endColumn(overID)
	} else {
		c.endItem(overID)
	}
	out.Changed = !c.board.Equal(c.snapshot)
	activeID := c.activeID
	c.clear()
	out.ActiveID = activeID
	return c.report(out), nil
}

func (c *Controller) endColumn(overID string) {
	target, ok := c.board.FindContainer(overID)
	if !ok {
		return
	}
	if next, moved := c.board.MoveContainer(c.board.ContainerIndex(c.activeID), c.board.ContainerIndex(target)); moved {
		c.board = next
	}
}

func (c *Controller) endItem(overID string) {
	activeContainer, ok := c.board.FindContainer(c.activeID)
	if !ok || overID == "" {
		return
	}
	overContainer, ok := c.board.FindContainer(overID)
	if !ok {
		return
	}
	if activeContainer == overContainer {
		overIndex := c.board.IndexOf(overContainer, overID)
		if c.board.IsContainer(overID) {
			overIndex = len(c.board.Items(overContainer)) - 1
		}
		if next, moved := c.board.MoveItem(overContainer, c.board.IndexOf(activeContainer, c.activeID), overIndex); moved {
			c.board = next
		}
		return
	}
	// No drag-over reparented the item, so the drop transfers it directly.
	index := len(c.board.Items(overContainer))
	if !c.board.IsContainer(overID) {
		index = c.board.IndexOf(overContainer, overID)
	}
	if next, moved := c.board.TransferItem(c.activeID, overContainer, index); moved {
		c.board = next
	}
}

// Cancel restores the drag-start snapshot.
func (c *Controller) Cancel() (Outcome, error) {
	if !c.Dragging() {
		return Outcome{}, ErrNoActiveDrag
	}
	out := Outcome{Event: EventCancel, Changed: !c.board.Equal(c.snapshot)}
	c.board = c.snapshot
	activeID := c.activeID
	c.clear()
	out.ActiveID = activeID
	return c.report(out), nil
}

func (c *Controller) clear() {
	c.activeID = ""
	c.snapshot = domain.Board{}
	c.detector.Reset()
}

func (c *Controller) report(out Outcome) Outcome {
	out.Phase = c.Phase()
	out.Board = c.board
	if out.ActiveID == "" {
		out.ActiveID = c.activeID
	}
	if c.observer != nil {
		c.observer.ObserveDrag(out)
	}
	return out
}
