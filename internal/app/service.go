package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/dragboard/internal/domain"
)

// DefaultBoardID and DefaultBoardName identify the seeded board.
const (
	DefaultBoardID   = "main"
	DefaultBoardName = "Multiple containers"
)

// ColumnSpec describes one seeded column.
type ColumnSpec struct {
	ID    string
	Items int
}

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	BoardName string
	Columns   []ColumnSpec
}

// Clock returns the current time.
type Clock func() time.Time

// Service seeds, loads and persists boards.
type Service struct {
	repo      Repository
	idGen     domain.IDGenerator
	clock     Clock
	boardName string
	columns   []ColumnSpec
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen domain.IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = NumericIDGenerator(nil)
	}
	if clock == nil {
		clock = time.Now
	}
	name := strings.TrimSpace(cfg.BoardName)
	if name == "" {
		name = DefaultBoardName
	}
	columns := sanitizeColumnSpecs(cfg.Columns)
	if len(columns) == 0 {
		columns = DefaultColumnSpecs()
	}
	return &Service{
		repo:      repo,
		idGen:     idGen,
		clock:     clock,
		boardName: name,
		columns:   columns,
	}
}

// DefaultColumnSpecs returns the four seeded columns.
func DefaultColumnSpecs() []ColumnSpec {
	return []ColumnSpec{
		{ID: "A", Items: 20},
		{ID: "B", Items: 10},
		{ID: "C", Items: 5},
		{ID: "D", Items: 20},
	}
}

// sanitizeColumnSpecs trims ids and drops blank, reserved or duplicate columns.
func sanitizeColumnSpecs(in []ColumnSpec) []ColumnSpec {
	out := make([]ColumnSpec, 0, len(in))
	seen := map[string]struct{}{}
	for _, spec := range in {
		spec.ID = strings.TrimSpace(spec.ID)
		if spec.ID == "" || spec.ID == domain.PlaceholderID {
			continue
		}
		if _, ok := seen[spec.ID]; ok {
			continue
		}
		seen[spec.ID] = struct{}{}
		if spec.Items < 0 {
			spec.Items = 0
		}
		out = append(out, spec)
	}
	return out
}

// SeedBoard builds a fresh board from the configured columns without saving it.
func (s *Service) SeedBoard(boardID string) (domain.Board, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		boardID = DefaultBoardID
	}
	taken := make(map[string]struct{}, len(s.columns))
	for _, spec := range s.columns {
		taken[spec.ID] = struct{}{}
	}
	containers := make([]domain.Container, 0, len(s.columns))
	for _, spec := range s.columns {
		items, err := domain.CreateItems(spec.Items, s.idGen, taken)
		if err != nil {
			return domain.Board{}, fmt.Errorf("seed column %q: %w", spec.ID, err)
		}
		containers = append(containers, domain.Container{ID: spec.ID, Items: items})
	}
	return domain.NewBoard(boardID, s.boardName, containers)
}

// LoadOrSeed loads a persisted board, seeding and saving it when missing.
// The bool reports whether the board was seeded.
func (s *Service) LoadOrSeed(ctx context.Context, boardID string) (domain.Board, bool, error) {
	if strings.TrimSpace(boardID) == "" {
		boardID = DefaultBoardID
	}
	board, err := s.repo.GetBoard(ctx, boardID)
	if err == nil {
		return board, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Board{}, false, err
	}
	board, err = s.SeedBoard(boardID)
	if err != nil {
		return domain.Board{}, false, err
	}
	if err := s.SaveBoard(ctx, board); err != nil {
		return domain.Board{}, false, err
	}
	return board, true, nil
}

// SaveBoard validates and persists board.
func (s *Service) SaveBoard(ctx context.Context, board domain.Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	return s.repo.SaveBoard(ctx, board, s.clock().UTC())
}

// LoadBoard returns one persisted board.
func (s *Service) LoadBoard(ctx context.Context, boardID string) (domain.Board, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return domain.Board{}, domain.ErrInvalidID
	}
	return s.repo.GetBoard(ctx, boardID)
}

// ListBoards lists persisted boards.
func (s *Service) ListBoards(ctx context.Context) ([]BoardSummary, error) {
	return s.repo.ListBoards(ctx)
}

// DeleteBoard removes one persisted board.
func (s *Service) DeleteBoard(ctx context.Context, boardID string) error {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteBoard(ctx, boardID)
}

// AddContainer appends an empty column named after the last one.
func (s *Service) AddContainer(board domain.Board) (domain.Board, error) {
	return board.AddContainer(domain.NextContainerID(board.Order()))
}
