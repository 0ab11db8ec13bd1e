package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/dragboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "dragboard.snapshot.v1"

// Snapshot is the portable JSON export of every persisted board.
type Snapshot struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Boards     []SnapshotBoard `json:"boards"`
}

// SnapshotBoard represents one board in a snapshot.
type SnapshotBoard struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Columns []SnapshotColumn `json:"columns"`
}

// SnapshotColumn represents one column and its ordered items.
type SnapshotColumn struct {
	ID    string        `json:"id"`
	Items []domain.Item `json:"items"`
}

// SnapshotBoardFromDomain converts a board to its snapshot form.
func SnapshotBoardFromDomain(board domain.Board) SnapshotBoard {
	out := SnapshotBoard{
		ID:      board.ID(),
		Name:    board.Name(),
		Columns: make([]SnapshotColumn, 0, board.Len()),
	}
	for _, c := range board.Containers() {
		out.Columns = append(out.Columns, SnapshotColumn{ID: c.ID, Items: c.Items})
	}
	return out
}

// toDomain validates and converts a snapshot board.
func (b SnapshotBoard) toDomain() (domain.Board, error) {
	containers := make([]domain.Container, 0, len(b.Columns))
	for _, c := range b.Columns {
		items := make([]domain.Item, 0, len(c.Items))
		for _, raw := range c.Items {
			item, err := domain.NewItem(raw.ID, raw.Name)
			if err != nil {
				return domain.Board{}, fmt.Errorf("column %q: %w", c.ID, err)
			}
			items = append(items, item)
		}
		containers = append(containers, domain.Container{ID: c.ID, Items: items})
	}
	return domain.NewBoard(b.ID, b.Name, containers)
}

// ExportSnapshot exports every persisted board.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	summaries, err := s.repo.ListBoards(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(summaries)),
	}
	for _, summary := range summaries {
		board, err := s.repo.GetBoard(ctx, summary.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export board %q: %w", summary.ID, err)
		}
		snap.Boards = append(snap.Boards, SnapshotBoardFromDomain(board))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot validates every board and then upserts them.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	boards, err := snap.boards()
	if err != nil {
		return err
	}
	for _, board := range boards {
		if err := s.SaveBoard(ctx, board); err != nil {
			return fmt.Errorf("import board %q: %w", board.ID(), err)
		}
	}
	return nil
}

// Validate checks version, board ids and the one-container-per-item rule.
func (s *Snapshot) Validate() error {
	_, err := s.boards()
	return err
}

func (s *Snapshot) boards() ([]domain.Board, error) {
	if s.Version != "" && s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q: %w", s.Version, ErrInvalidSnapshot)
	}
	seen := map[string]struct{}{}
	out := make([]domain.Board, 0, len(s.Boards))
	for i, b := range s.Boards {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return nil, fmt.Errorf("boards[%d].id is required: %w", i, ErrInvalidSnapshot)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate board id %q: %w", id, ErrInvalidSnapshot)
		}
		seen[id] = struct{}{}
		board, err := b.toDomain()
		if err != nil {
			return nil, fmt.Errorf("boards[%d]: %w: %w", i, ErrInvalidSnapshot, err)
		}
		out = append(out, board)
	}
	return out, nil
}

func (s *Snapshot) sort() {
	sort.SliceStable(s.Boards, func(i, j int) bool {
		return s.Boards[i].ID < s.Boards[j].ID
	})
}
