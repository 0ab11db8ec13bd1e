package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository persists boards, their columns and items.
type Repository struct {
	db *sql.DB
}

// Open opens the database at path, creating its directory and schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Each connection would get its own empty memory database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			board_id TEXT NOT NULL,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(board_id, id),
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS board_items (
			board_id TEXT NOT NULL,
			id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY(board_id, id),
			FOREIGN KEY(board_id, column_id) REFERENCES board_columns(board_id, id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_position ON board_columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_board_items_column_position ON board_items(board_id, column_id, position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// SaveBoard replaces the stored columns and items of board in one transaction.
func (r *Repository) SaveBoard(ctx context.Context, board domain.Board, savedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save board: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO boards(id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, board.ID(), board.Name(), ts(savedAt), ts(savedAt)); err != nil {
		return fmt.Errorf("upsert board %q: %w", board.ID(), err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_items WHERE board_id = ?`, board.ID()); err != nil {
		return fmt.Errorf("clear items of board %q: %w", board.ID(), err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns WHERE board_id = ?`, board.ID()); err != nil {
		return fmt.Errorf("clear columns of board %q: %w", board.ID(), err)
	}
	for colPos, c := range board.Containers() {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO board_columns(board_id, id, position) VALUES (?, ?, ?)
		`, board.ID(), c.ID, colPos); err != nil {
			return fmt.Errorf("insert column %q: %w", c.ID, err)
		}
		for itemPos, item := range c.Items {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO board_items(board_id, id, column_id, position, name) VALUES (?, ?, ?, ?, ?)
			`, board.ID(), item.ID, c.ID, itemPos, item.Name); err != nil {
				return fmt.Errorf("insert item %q: %w", item.ID, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save board: %w", err)
	}
	return nil
}

// GetBoard loads one board with columns and items in stored order.
func (r *Repository) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM boards WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Board{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Board{}, err
	}

	colRows, err := r.db.QueryContext(ctx, `
		SELECT id FROM board_columns WHERE board_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return domain.Board{}, err
	}
	var containers []domain.Container
	index := map[string]int{}
	for colRows.Next() {
		var colID string
		if err := colRows.Scan(&colID); err != nil {
			_ = colRows.Close()
			return domain.Board{}, err
		}
		index[colID] = len(containers)
		containers = append(containers, domain.Container{ID: colID})
	}
	if err := colRows.Err(); err != nil {
		_ = colRows.Close()
		return domain.Board{}, err
	}
	_ = colRows.Close()

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, column_id, name FROM board_items
		WHERE board_id = ?
		ORDER BY column_id ASC, position ASC
	`, id)
	if err != nil {
		return domain.Board{}, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item domain.Item
		var colID string
		if err := itemRows.Scan(&item.ID, &colID, &item.Name); err != nil {
			return domain.Board{}, err
		}
		pos, ok := index[colID]
		if !ok {
			return domain.Board{}, fmt.Errorf("item %q references column %q: %w", item.ID, colID, domain.ErrUnknownContainer)
		}
		containers[pos].Items = append(containers[pos].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return domain.Board{}, err
	}
	return domain.NewBoard(id, name, containers)
}

// ListBoards lists board summaries ordered by id.
func (r *Repository) ListBoards(ctx context.Context) ([]app.BoardSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.updated_at,
			(SELECT COUNT(*) FROM board_columns c WHERE c.board_id = b.id),
			(SELECT COUNT(*) FROM board_items i WHERE i.board_id = b.id)
		FROM boards b
		ORDER BY b.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []app.BoardSummary{}
	for rows.Next() {
		var (
			summary    app.BoardSummary
			updatedRaw string
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &updatedRaw, &summary.Columns, &summary.Items); err != nil {
			return nil, err
		}
		summary.UpdatedAt = parseTS(updatedRaw)
		out = append(out, summary)
	}
	return out, rows.Err()
}

// DeleteBoard removes a board with its columns and items.
func (r *Repository) DeleteBoard(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete board: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_items WHERE board_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns WHERE board_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	return tx.Commit()
}

// translateNoRows maps an update that touched nothing to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses a stored timestamp.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
