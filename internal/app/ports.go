package app

import (
	"context"
	"time"

	"github.com/hylla/dragboard/internal/domain"
)

// BoardSummary is a listing row for one persisted board.
type BoardSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Columns   int       `json:"columns"`
	Items     int       `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository persists whole boards.
type Repository interface {
	SaveBoard(context.Context, domain.Board, time.Time) error
	GetBoard(context.Context, string) (domain.Board, error)
	ListBoards(context.Context) ([]BoardSummary, error)
	DeleteBoard(context.Context, string) error
}
