// Package common provides transport-agnostic server contracts used by the HTTP, WebSocket and MCP adapters.
package common

import (
	"context"
	"errors"
	"net/http"

	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// BoardSessions resolves live drag sessions by board id.
type BoardSessions interface {
	Session(ctx context.Context, boardID string) (*app.Session, error)
	ListBoards(ctx context.Context) ([]app.BoardSummary, error)
}

// DragStartRequest starts a drag of one item or column.
type DragStartRequest struct {
	ActiveID string `json:"active_id"`
}

// DragEndRequest drops the active draggable. An empty OverID means no target.
type DragEndRequest struct {
	OverID string `json:"over_id"`
}

// DragOverRequest moves the active item onto a resolved target.
type DragOverRequest struct {
	OverID     string       `json:"over_id"`
	ActiveRect *domain.Rect `json:"active_rect,omitempty"`
	OverRect   *domain.Rect `json:"over_rect,omitempty"`
}

// Event converts the request to a controller drag-over.
func (r DragOverRequest) Event() app.OverEvent {
	ev := app.OverEvent{OverID: r.OverID}
	if r.ActiveRect != nil {
		ev.ActiveRect = *r.ActiveRect
	}
	if r.OverRect != nil {
		ev.OverRect = *r.OverRect
	}
	return ev
}

// ListBoardsResponse wraps board summaries.
type ListBoardsResponse struct {
	Boards []app.BoardSummary `json:"boards"`
}

// ErrorCode maps an app or domain error to a stable code and HTTP status.
func ErrorCode(err error) (string, int) {
	switch {
	case err == nil:
		return "internal_error", http.StatusInternalServerError
	case errors.Is(err, app.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, app.ErrDragInProgress), errors.Is(err, app.ErrNoActiveDrag):
		return "conflict", http.StatusConflict
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, app.ErrUnknownDraggable),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrReservedID),
		errors.Is(err, domain.ErrDuplicateID):
		return "invalid_request", http.StatusBadRequest
	default:
		return "internal_error", http.StatusInternalServerError
	}
}
