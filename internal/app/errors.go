package app

import "errors"

// ErrNotFound and related errors describe validation and lifecycle failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrDragInProgress   = errors.New("drag already in progress")
	ErrNoActiveDrag     = errors.New("no active drag")
	ErrUnknownDraggable = errors.New("unknown draggable")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)
