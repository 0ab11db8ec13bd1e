package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/hylla/dragboard/internal/domain"
)

type fakeRepo struct {
	boards  map[string]domain.Board
	savedAt map[string]time.Time
	saves   int
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		boards:  map[string]domain.Board{},
		savedAt: map[string]time.Time{},
	}
}

func (f *fakeRepo) SaveBoard(_ context.Context, b domain.Board, at time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.boards[b.ID()] = b.Clone()
	f.savedAt[b.ID()] = at
	return nil
}

func (f *fakeRepo) GetBoard(_ context.Context, id string) (domain.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return domain.Board{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (f *fakeRepo) ListBoards(context.Context) ([]BoardSummary, error) {
	out := make([]BoardSummary, 0, len(f.boards))
	for id, b := range f.boards {
		out = append(out, BoardSummary{ID: id, Name: b.Name(), Columns: b.Len(), Items: b.ItemCount(), UpdatedAt: f.savedAt[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) DeleteBoard(_ context.Context, id string) error {
	if _, ok := f.boards[id]; !ok {
		return ErrNotFound
	}
	delete(f.boards, id)
	return nil
}

func sequenceIDs() domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return strconv.Itoa(n)
	}
}

func TestSeedBoardUsesDefaultColumns(t *testing.T) {
	svc := NewService(newFakeRepo(), sequenceIDs(), nil, ServiceConfig{})
	board, err := svc.SeedBoard("")
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	if board.ID() != DefaultBoardID || board.Name() != DefaultBoardName {
		t.Fatalf("unexpected board identity %q %q", board.ID(), board.Name())
	}
	if got := board.Order(); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("unexpected order %#v", got)
	}
	want := map[string]int{"A": 20, "B": 10, "C": 5, "D": 20}
	for cid, n := range want {
		if got := len(board.Items(cid)); got != n {
			t.Fatalf("column %s has %d items, want %d", cid, got, n)
		}
	}
	if first := board.Items("A")[0]; first.ID != "1" || first.Name != "Item 1" {
		t.Fatalf("unexpected first item %#v", first)
	}
}

func TestSeedBoardSanitizesColumnSpecs(t *testing.T) {
	svc := NewService(newFakeRepo(), sequenceIDs(), nil, ServiceConfig{
		BoardName: "  Sprint ",
		Columns: []ColumnSpec{
			{ID: " todo ", Items: 2},
			{ID: "todo", Items: 9},
			{ID: domain.PlaceholderID, Items: 1},
			{ID: "", Items: 1},
			{ID: "done", Items: -3},
		},
	})
	board, err := svc.SeedBoard("b1")
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	if board.Name() != "Sprint" {
		t.Fatalf("unexpected name %q", board.Name())
	}
	if got := board.Order(); !slices.Equal(got, []string{"todo", "done"}) {
		t.Fatalf("unexpected order %#v", got)
	}
	if len(board.Items("todo")) != 2 || len(board.Items("done")) != 0 {
		t.Fatal("unexpected seeded item counts")
	}
}

func TestSeedBoardWithRandomIDsKeepsIDsUnique(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	svc := NewService(newFakeRepo(), NumericIDGenerator(rng), nil, ServiceConfig{})
	board, err := svc.SeedBoard("main")
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	if err := board.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, id := range board.ItemIDs() {
		n, err := strconv.Atoi(id)
		if err != nil || n < 0 || n > 1_000_000 {
			t.Fatalf("unexpected numeric id %q", id)
		}
	}
}

func TestLoadOrSeedSavesOnce(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, sequenceIDs(), func() time.Time { return now }, ServiceConfig{})

	first, seeded, err := svc.LoadOrSeed(context.Background(), "main")
	if err != nil {
		t.Fatalf("LoadOrSeed() error = %v", err)
	}
	if !seeded || repo.saves != 1 {
		t.Fatalf("expected first call to seed and save, seeded=%v saves=%d", seeded, repo.saves)
	}
	if !repo.savedAt["main"].Equal(now) {
		t.Fatalf("unexpected saved time %v", repo.savedAt["main"])
	}
	second, seeded, err := svc.LoadOrSeed(context.Background(), "main")
	if err != nil {
		t.Fatalf("LoadOrSeed() second error = %v", err)
	}
	if seeded || repo.saves != 1 {
		t.Fatalf("expected second call to load, seeded=%v saves=%d", seeded, repo.saves)
	}
	if !first.Equal(second) {
		t.Fatal("expected loaded board to equal seeded board")
	}
}

func TestLoadOrSeedPropagatesRepoErrors(t *testing.T) {
	expected := errors.New("boom")
	repo := newFakeRepo()
	repo.saveErr = expected
	svc := NewService(repo, sequenceIDs(), nil, ServiceConfig{})
	if _, _, err := svc.LoadOrSeed(context.Background(), "main"); !errors.Is(err, expected) {
		t.Fatalf("expected %v, got %v", expected, err)
	}
}

func TestServiceListAndDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, sequenceIDs(), nil, ServiceConfig{})
	for _, id := range []string{"b2", "b1"} {
		if _, _, err := svc.LoadOrSeed(context.Background(), id); err != nil {
			t.Fatalf("LoadOrSeed(%s) error = %v", id, err)
		}
	}
	boards, err := svc.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if len(boards) != 2 || boards[0].ID != "b1" || boards[0].Items != 55 {
		t.Fatalf("unexpected summaries %#v", boards)
	}
	if err := svc.DeleteBoard(context.Background(), "b1"); err != nil {
		t.Fatalf("DeleteBoard() error = %v", err)
	}
	if _, err := svc.LoadBoard(context.Background(), "b1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.LoadBoard(context.Background(), " "); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestServiceAddContainer(t *testing.T) {
	svc := NewService(newFakeRepo(), sequenceIDs(), nil, ServiceConfig{})
	board, err := svc.SeedBoard("main")
	if err != nil {
		t.Fatalf("SeedBoard() error = %v", err)
	}
	next, err := svc.AddContainer(board)
	if err != nil {
		t.Fatalf("AddContainer() error = %v", err)
	}
	if got := next.Order(); !slices.Equal(got, []string{"A", "B", "C", "D", "E"}) {
		t.Fatalf("unexpected order %#v", got)
	}
}

func TestNewIDGenerator(t *testing.T) {
	gen, err := NewIDGenerator(IDStyleUUID)
	if err != nil {
		t.Fatalf("NewIDGenerator(uuid) error = %v", err)
	}
	if id := gen(); len(id) != 36 {
		t.Fatalf("unexpected uuid %q", id)
	}
	gen, err = NewIDGenerator("")
	if err != nil {
		t.Fatalf("NewIDGenerator(default) error = %v", err)
	}
	if _, err := strconv.Atoi(gen()); err != nil {
		t.Fatalf("expected numeric default id, got error %v", err)
	}
	if _, err := NewIDGenerator("emoji"); err == nil {
		t.Fatal("expected unknown style error")
	}
}
