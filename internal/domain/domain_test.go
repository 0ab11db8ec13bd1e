package domain

import (
	"errors"
	"slices"
	"strconv"
	"testing"
)

func itemsOf(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{ID: id, Name: DefaultItemName(id)})
	}
	return out
}

func mustBoard(t *testing.T, containers ...Container) Board {
	t.Helper()
	b, err := NewBoard("b1", "Board", containers)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	return b
}

func itemIDs(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestNewItemValidation(t *testing.T) {
	item, err := NewItem("  42 ", "")
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if item.ID != "42" || item.Name != "Item 42" {
		t.Fatalf("unexpected item %#v", item)
	}
	if _, err := NewItem(" ", "x"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewItem(PlaceholderID, "x"); err != ErrReservedID {
		t.Fatalf("expected ErrReservedID, got %v", err)
	}
}

func TestCreateItemsSkipsTakenIDs(t *testing.T) {
	seq := []string{"1", "1", "placeholder", "2", "3"}
	next := func() string {
		id := seq[0]
		seq = seq[1:]
		return id
	}
	taken := map[string]struct{}{"2": {}}
	items, err := CreateItems(2, next, taken)
	if err != nil {
		t.Fatalf("CreateItems() error = %v", err)
	}
	if got := itemIDs(items); !slices.Equal(got, []string{"1", "3"}) {
		t.Fatalf("unexpected ids %#v", got)
	}
	if items[1].Name != "Item 3" {
		t.Fatalf("unexpected name %q", items[1].Name)
	}
	if _, ok := taken["3"]; !ok {
		t.Fatal("expected taken set to record handed out ids")
	}
}

func TestCreateItemsExhausted(t *testing.T) {
	_, err := CreateItems(2, func() string { return "same" }, nil)
	if !errors.Is(err, ErrIDSpaceExhausted) {
		t.Fatalf("expected ErrIDSpaceExhausted, got %v", err)
	}
	if _, err := CreateItems(-1, func() string { return "x" }, nil); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestNextContainerID(t *testing.T) {
	cases := []struct {
		order []string
		want  string
	}{
		{nil, "A"},
		{[]string{"A", "B", "C", "D"}, "E"},
		{[]string{"A", "Z"}, "C3"},
		{[]string{"todo", "done"}, "C3"},
		{[]string{"C3", "x"}, "C4"},
		{[]string{"B", "A"}, "C3"},
	}
	for _, tc := range cases {
		if got := NextContainerID(tc.order); got != tc.want {
			t.Fatalf("NextContainerID(%v) = %q, want %q", tc.order, got, tc.want)
		}
	}
}

func TestNewBoardValidation(t *testing.T) {
	if _, err := NewBoard("", "x", nil); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewBoard("b", " ", nil); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	_, err := NewBoard("b", "x", []Container{{ID: "A"}, {ID: "A"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for duplicate column, got %v", err)
	}
	_, err = NewBoard("b", "x", []Container{{ID: "A", Items: itemsOf("1")}, {ID: "B", Items: itemsOf("1")}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for duplicate item, got %v", err)
	}
	_, err = NewBoard("b", "x", []Container{{ID: "A", Items: itemsOf("B")}, {ID: "B"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for item shadowing column, got %v", err)
	}
	_, err = NewBoard("b", "x", []Container{{ID: PlaceholderID}})
	if err != ErrReservedID {
		t.Fatalf("expected ErrReservedID, got %v", err)
	}
}

func TestBoardLookups(t *testing.T) {
	b := mustBoard(t,
		Container{ID: "A", Items: itemsOf("1", "2", "3")},
		Container{ID: "B"},
	)
	if cid, ok := b.FindContainer("2"); !ok || cid != "A" {
		t.Fatalf("FindContainer(2) = %q, %v", cid, ok)
	}
	if cid, ok := b.FindContainer("B"); !ok || cid != "B" {
		t.Fatalf("FindContainer(B) = %q, %v", cid, ok)
	}
	if _, ok := b.FindContainer("missing"); ok {
		t.Fatal("expected unknown id to fail resolution")
	}
	if _, ok := b.FindContainer(""); ok {
		t.Fatal("expected empty id to fail resolution")
	}
	if got := b.IndexOf("A", "3"); got != 2 {
		t.Fatalf("IndexOf() = %d, want 2", got)
	}
	if item, ok := b.Item("1"); !ok || item.Name != "Item 1" {
		t.Fatalf("Item(1) = %#v, %v", item, ok)
	}
	if b.ItemCount() != 3 || b.Len() != 2 {
		t.Fatalf("unexpected counts items=%d cols=%d", b.ItemCount(), b.Len())
	}
	if got := b.ContainerIndex("B"); got != 1 {
		t.Fatalf("ContainerIndex(B) = %d", got)
	}
	if got := b.ContainerItemIDs("A"); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("ContainerItemIDs(A) = %v", got)
	}
	if got := b.ContainerItemIDs("B"); len(got) != 0 {
		t.Fatalf("ContainerItemIDs(B) = %v, want empty", got)
	}
	if got := b.ContainerItemIDs("missing"); got != nil {
		t.Fatalf("ContainerItemIDs(missing) = %v, want nil", got)
	}

	items := b.Items("A")
	items[0] = Item{ID: "mutated"}
	if b.Items("A")[0].ID != "1" {
		t.Fatal("expected Items to return a copy")
	}
	order := b.Order()
	order[0] = "Z"
	if b.Order()[0] != "A" {
		t.Fatal("expected Order to return a copy")
	}
}

func TestTransferItemDoesNotMutateInput(t *testing.T) {
	b := mustBoard(t,
		Container{ID: "A", Items: itemsOf("1", "2", "3")},
		Container{ID: "B"},
	)
	before := b.Clone()
	out, ok := b.TransferItem("1", "B", 0)
	if !ok {
		t.Fatal("expected transfer to move the item")
	}
	if !b.Equal(before) {
		t.Fatal("expected original board to be untouched")
	}
	if got := itemIDs(out.Items("A")); !slices.Equal(got, []string{"2", "3"}) {
		t.Fatalf("unexpected A %#v", got)
	}
	if got := itemIDs(out.Items("B")); !slices.Equal(got, []string{"1"}) {
		t.Fatalf("unexpected B %#v", got)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestTransferItemClampsAndRejects(t *testing.T) {
	b := mustBoard(t,
		Container{ID: "A", Items: itemsOf("1")},
		Container{ID: "B", Items: itemsOf("2")},
	)
	out, ok := b.TransferItem("1", "B", 99)
	if !ok {
		t.Fatal("expected transfer")
	}
	if got := itemIDs(out.Items("B")); !slices.Equal(got, []string{"2", "1"}) {
		t.Fatalf("unexpected B %#v", got)
	}
	if _, ok := b.TransferItem("1", "A", 0); ok {
		t.Fatal("expected same-container transfer to be a no-op")
	}
	if _, ok := b.TransferItem("9", "B", 0); ok {
		t.Fatal("expected unknown item transfer to be a no-op")
	}
	if _, ok := b.TransferItem("1", "Z", 0); ok {
		t.Fatal("expected unknown container transfer to be a no-op")
	}
}

func TestMoveItemTouchesOnlyOneContainer(t *testing.T) {
	b := mustBoard(t,
		Container{ID: "A", Items: itemsOf("1", "2", "3", "4")},
		Container{ID: "B", Items: itemsOf("5", "6")},
	)
	out, ok := b.MoveItem("A", 0, 2)
	if !ok {
		t.Fatal("expected move")
	}
	if got := itemIDs(out.Items("A")); !slices.Equal(got, []string{"2", "3", "1", "4"}) {
		t.Fatalf("expected splice order, got %#v", got)
	}
	if !slices.Equal(out.Items("B"), b.Items("B")) || !slices.Equal(out.Order(), b.Order()) {
		t.Fatal("expected other containers and column order untouched")
	}
	if _, ok := b.MoveItem("A", 1, 1); ok {
		t.Fatal("expected equal index move to be a no-op")
	}
	if _, ok := b.MoveItem("A", 7, 0); ok {
		t.Fatal("expected out of range move to be a no-op")
	}
}

func TestMoveContainerTouchesOnlyOrder(t *testing.T) {
	b := mustBoard(t,
		Container{ID: "A", Items: itemsOf("1")},
		Container{ID: "B", Items: itemsOf("2")},
		Container{ID: "C"},
		Container{ID: "D", Items: itemsOf("3")},
	)
	out, ok := b.MoveContainer(0, 2)
	if !ok {
		t.Fatal("expected move")
	}
	if got := out.Order(); !slices.Equal(got, []string{"B", "C", "A", "D"}) {
		t.Fatalf("unexpected order %#v", got)
	}
	for _, cid := range b.Order() {
		if !slices.Equal(out.Items(cid), b.Items(cid)) {
			t.Fatalf("expected items of %s untouched", cid)
		}
	}
}

func TestAddContainer(t *testing.T) {
	b := mustBoard(t, Container{ID: "A", Items: itemsOf("1")})
	out, err := b.AddContainer(NextContainerID(b.Order()))
	if err != nil {
		t.Fatalf("AddContainer() error = %v", err)
	}
	if got := out.Order(); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("unexpected order %#v", got)
	}
	if len(out.Items("B")) != 0 {
		t.Fatal("expected new column to be empty")
	}
	if b.Len() != 1 {
		t.Fatal("expected input board untouched")
	}
	if _, err := out.AddContainer("A"); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := out.AddContainer("1"); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID for item id, got %v", err)
	}
	if _, err := out.AddContainer(PlaceholderID); err != ErrReservedID {
		t.Fatalf("expected ErrReservedID, got %v", err)
	}
}

func TestArrayMove(t *testing.T) {
	in := []int{0, 1, 2, 3, 4}
	if got := ArrayMove(in, 4, 1); !slices.Equal(got, []int{0, 4, 1, 2, 3}) {
		t.Fatalf("ArrayMove backwards = %v", got)
	}
	if got := ArrayMove(in, 1, 3); !slices.Equal(got, []int{0, 2, 3, 1, 4}) {
		t.Fatalf("ArrayMove forwards = %v", got)
	}
	if got := ArrayMove(in, 0, 99); !slices.Equal(got, []int{1, 2, 3, 4, 0}) {
		t.Fatalf("ArrayMove clamped = %v", got)
	}
	if !slices.Equal(in, []int{0, 1, 2, 3, 4}) {
		t.Fatal("expected ArrayMove to copy its input")
	}
}

func TestBoardItemMultisetPreserved(t *testing.T) {
	var containers []Container
	n := 0
	for _, cid := range []string{"A", "B", "C"} {
		var ids []string
		for range 4 {
			n++
			ids = append(ids, strconv.Itoa(n))
		}
		containers = append(containers, Container{ID: cid, Items: itemsOf(ids...)})
	}
	b := mustBoard(t, containers...)
	want := b.ItemIDs()
	slices.Sort(want)

	steps := []func(Board) Board{
		func(b Board) Board { out, _ := b.TransferItem("1", "C", 2); return out },
		func(b Board) Board { out, _ := b.MoveItem("C", 0, 4); return out },
		func(b Board) Board { out, _ := b.MoveContainer(2, 0); return out },
		func(b Board) Board { out, _ := b.TransferItem("12", "A", 0); return out },
		func(b Board) Board { out, _ := b.TransferItem("5", "B", 0); return out },
	}
	for i, step := range steps {
		b = step(b)
		got := b.ItemIDs()
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Fatalf("step %d: item set changed to %v", i, got)
		}
		if err := b.Validate(); err != nil {
			t.Fatalf("step %d: Validate() error = %v", i, err)
		}
	}
}

func TestRectGeometry(t *testing.T) {
	r := CellRect(2, 4, 10, 4)
	if c := r.Center(); c != (Point{X: 7, Y: 6}) {
		t.Fatalf("Center() = %#v", c)
	}
	if !r.ContainsStrict(CellPoint(2, 4)) {
		t.Fatal("expected first cell center inside")
	}
	if r.ContainsStrict(Point{X: 2, Y: 5}) {
		t.Fatal("expected left edge to be excluded")
	}
	if r.ContainsStrict(CellPoint(12, 5)) {
		t.Fatal("expected cell past the right edge to be outside")
	}
	o := CellRect(7, 4, 10, 4)
	if got := r.IntersectionArea(o); got != 20 {
		t.Fatalf("IntersectionArea() = %v", got)
	}
	if got := r.IntersectionRatio(o); got != 20.0/60.0 {
		t.Fatalf("IntersectionRatio() = %v", got)
	}
	if got := r.IntersectionRatio(CellRect(40, 40, 1, 1)); got != 0 {
		t.Fatalf("expected disjoint ratio 0, got %v", got)
	}
	if got := Distance(Point{}, Point{X: 3, Y: 4}); got != 5 {
		t.Fatalf("Distance() = %v", got)
	}
	sq := Rect{Width: 2, Height: 2}
	if got := MeanCornerDistance(Point{X: 1, Y: 1}, sq); got != Distance(Point{}, Point{X: 1, Y: 1}) {
		t.Fatalf("MeanCornerDistance() = %v", got)
	}
}
