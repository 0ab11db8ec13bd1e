package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
)

// Service is the board surface the TUI needs.
type Service interface {
	LoadOrSeed(context.Context, string) (domain.Board, bool, error)
	SaveBoard(context.Context, domain.Board) error
	AddContainer(domain.Board) (domain.Board, error)
}

// layout constants in terminal cells.
const (
	boardTop       = 2
	footerHeight   = 2
	columnChrome   = 3
	columnGap      = 1
	minColumnWidth = 14
	maxColumnWidth = 30
	placeholderH   = 3
)

// hitKind classifies what sits under a terminal cell.
type hitKind int

const (
	hitNone hitKind = iota
	hitHeader
	hitItem
	hitBody
	hitPlaceholder
)

// hit is the result of a hit test.
type hit struct {
	kind   hitKind
	id     string
	column int
	row    int
	rect   domain.Rect
}

// mountState tracks the fade of one item view in its current column.
type mountState struct {
	container string
	token     int
	settled   bool
}

// pressState is a mouse press that has not crossed the dead zone yet.
type pressState struct {
	id   string
	x, y int
	rect domain.Rect
}

// dragState is the pointer geometry of the active drag.
type dragState struct {
	pointerX, pointerY int
	grabX, grabY       int
	width, height      int
	overID             string
	keyboard           bool
}

// Model is the Bubble Tea model for one board.
type Model struct {
	svc     Service
	boardID string

	ready  bool
	width  int
	height int
	err    error
	status string

	help     help.Model
	keys     keyMap
	md       *markdownRenderer
	helpOpen bool

	ctrl      *app.Controller
	fadeDelay time.Duration
	deadZone  int

	mounts   map[string]mountState
	mountSeq int
	scroll   map[string]int

	cursorCol int
	cursorRow int

	press *pressState
	drag  *dragState

	configChanges  <-chan struct{}
	reloadConfig   ReloadConfigFunc
	writeClipboard func(string) error
}

// loadedMsg carries the loaded board.
type loadedMsg struct {
	board  domain.Board
	seeded bool
	err    error
}

// savedMsg reports one persisted board.
type savedMsg struct {
	err error
}

// settleMsg fires when an item view has been mounted for the fade delay.
type settleMsg struct {
	itemID string
	token  int
}

// configChangedMsg reports a write to the watched config file.
type configChangedMsg struct{}

// configReloadedMsg carries runtime settings loaded through the reload callback.
type configReloadedMsg struct {
	config RuntimeConfig
	err    error
}

// yankedMsg reports a clipboard write.
type yankedMsg struct {
	err error
}

// NewModel constructs a board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	def := DefaultRuntimeConfig()
	m := Model{
		svc:            svc,
		boardID:        app.DefaultBoardID,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		md:             &markdownRenderer{},
		fadeDelay:      def.FadeDelay,
		deadZone:       def.DeadZone,
		mounts:         map[string]mountState{},
		scroll:         map[string]int{},
		cursorRow:      -1,
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the board and starts listening for config changes.
func (m Model) Init() tea.Cmd {
	if m.configChanges == nil {
		return m.loadData
	}
	return tea.Batch(m.loadData, m.waitForConfigChange())
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.ctrl = app.NewController(msg.board)
		m.mounts = map[string]mountState{}
		for _, c := range msg.board.Containers() {
			for _, item := range c.Items {
				m.mounts[item.ID] = mountState{container: c.ID, settled: true}
			}
		}
		m.clampCursor()
		if msg.seeded {
			m.status = "seeded " + msg.board.Name()
		} else {
			m.status = "ready"
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		}
		return m, nil

	case settleMsg:
		state, ok := m.mounts[msg.itemID]
		if !ok || state.token != msg.token {
			return m, nil
		}
		state.settled = true
		m.mounts[msg.itemID] = state
		return m, nil

	case configChangedMsg:
		return m, tea.Batch(m.reloadRuntimeConfigCmd(), m.waitForConfigChange())

	case configReloadedMsg:
		if msg.err != nil {
			m.status = "reload config failed: " + msg.err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.config)
		m.status = "config reloaded"
		return m, nil

	case yankedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied board json"
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// loadData loads the configured board, seeding it on first run.
func (m Model) loadData() tea.Msg {
	board, seeded, err := m.svc.LoadOrSeed(context.Background(), m.boardID)
	return loadedMsg{board: board, seeded: seeded, err: err}
}

// saveCmd persists board in the background.
func (m Model) saveCmd(board domain.Board) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return savedMsg{err: svc.SaveBoard(context.Background(), board)}
	}
}

// waitForConfigChange blocks until the watcher reports a write.
func (m Model) waitForConfigChange() tea.Cmd {
	changes := m.configChanges
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// applyRuntimeConfig applies runtime-updateable settings.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	m.fadeDelay = max(cfg.FadeDelay, 0)
	m.deadZone = max(cfg.DeadZone, 0)
	m.keys.applyConfig(cfg.Keys)
}

// reloadRuntimeConfigCmd reloads runtime settings through the configured callback.
func (m Model) reloadRuntimeConfigCmd() tea.Cmd {
	if m.reloadConfig == nil {
		return func() tea.Msg {
			return configReloadedMsg{err: fmt.Errorf("config reload callback is unavailable")}
		}
	}
	reload := m.reloadConfig
	return func() tea.Msg {
		cfg, err := reload()
		if err != nil {
			return configReloadedMsg{err: err}
		}
		return configReloadedMsg{config: cfg}
	}
}

// board returns the current board, or the zero board before load.
func (m Model) board() domain.Board {
	if m.ctrl == nil {
		return domain.Board{}
	}
	return m.ctrl.Board()
}

// dragging reports whether a drag is in progress.
func (m Model) dragging() bool {
	return m.ctrl != nil && m.ctrl.Dragging()
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.helpOpen {
		if key.Matches(msg, m.keys.toggleHelp) || key.Matches(msg, m.keys.cancel) {
			m.helpOpen = false
		}
		return m, nil
	}
	if m.ctrl == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggleHelp):
		m.helpOpen = true
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.press = nil
		if m.dragging() {
			return m, m.cancelDrag()
		}
		return m, nil
	case key.Matches(msg, m.keys.pick):
		if m.dragging() {
			return m, m.endDrag()
		}
		return m, m.pickUp()
	case key.Matches(msg, m.keys.addColumn):
		return m, m.addColumn()
	case key.Matches(msg, m.keys.yank):
		return m, m.yankBoard()
	case key.Matches(msg, m.keys.moveLeft):
		return m, m.moveFocus(-1, 0)
	case key.Matches(msg, m.keys.moveRight):
		return m, m.moveFocus(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		return m, m.moveFocus(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.moveFocus(0, 1)
	}
	return m, nil
}

// moveFocus moves the cursor when idle and the virtual pointer while a
// keyboard drag is active.
func (m *Model) moveFocus(dx, dy int) tea.Cmd {
	if m.dragging() {
		if m.drag == nil || !m.drag.keyboard {
			return nil
		}
		m.drag.pointerX = clamp(m.drag.pointerX+dx*(m.columnWidth()+columnGap), 0, max(0, m.width-1))
		m.drag.pointerY = clamp(m.drag.pointerY+dy, 0, max(0, m.height-1))
		return m.moveDrag()
	}
	board := m.board()
	if board.Len() == 0 {
		return nil
	}
	if dx != 0 {
		m.cursorCol = clamp(m.cursorCol+dx, 0, board.Len()-1)
	}
	if dy != 0 {
		m.cursorRow += dy
	}
	m.clampCursor()
	m.revealCursor()
	return nil
}

// pickUp starts a keyboard drag on the focused item or column header.
func (m *Model) pickUp() tea.Cmd {
	board := m.board()
	if board.Len() == 0 {
		return nil
	}
	m.clampCursor()
	m.revealCursor()
	colID := board.Order()[m.cursorCol]
	id := colID
	rect := m.columnRect(m.cursorCol)
	if m.cursorRow >= 0 {
		items := board.Items(colID)
		id = items[m.cursorRow].ID
		r, ok := m.itemRect(m.cursorCol, m.cursorRow)
		if !ok {
			return nil
		}
		rect = r
	}
	x := int(rect.Left) + int(rect.Width)/2
	y := int(rect.Top)
	if m.cursorRow < 0 {
		y++
	}
	return m.startDrag(id, x, y, rect, true)
}

// startDrag begins a drag of id grabbed at cell (x, y) of rect.
func (m *Model) startDrag(id string, x, y int, rect domain.Rect, keyboard bool) tea.Cmd {
	if _, err := m.ctrl.Start(id); err != nil {
		m.status = err.Error()
		return nil
	}
	m.press = nil
	m.drag = &dragState{
		pointerX: x,
		pointerY: y,
		grabX:    x - int(rect.Left),
		grabY:    y - int(rect.Top),
		width:    int(rect.Width),
		height:   int(rect.Height),
		keyboard: keyboard,
	}
	m.status = "dragging " + m.labelOf(id)
	return m.moveDrag()
}

// moveDrag resolves the target under the pointer and applies the drag-over.
func (m *Model) moveDrag() tea.Cmd {
	if m.drag == nil || !m.dragging() {
		return nil
	}
	ghost := m.ghostRect()
	pointer := domain.CellPoint(m.drag.pointerX, m.drag.pointerY)
	droppables := m.droppables()
	collision := m.ctrl.Detect(app.CollisionInput{
		ActiveID:   m.ctrl.ActiveID(),
		ActiveRect: ghost,
		Pointer:    &pointer,
		Droppables: droppables,
	})
	m.drag.overID = collision.TargetID
	if m.ctrl.ActiveIsContainer() {
		return nil
	}
	var overRect domain.Rect
	for _, d := range droppables {
		if d.ID == collision.TargetID {
			overRect = d.Rect
			break
		}
	}
	out := m.ctrl.Over(app.OverEvent{OverID: collision.TargetID, ActiveRect: ghost, OverRect: overRect})
	if !out.Changed {
		return nil
	}
	m.followActive()
	return m.syncMounts()
}

// endDrag drops the active item on the last resolved target.
func (m *Model) endDrag() tea.Cmd {
	overID := ""
	if m.drag != nil {
		overID = m.drag.overID
	}
	out, err := m.ctrl.End(overID)
	m.drag = nil
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.cursorTo(out.ActiveID)
	cmds := []tea.Cmd{m.syncMounts()}
	if out.Changed {
		m.status = "moved " + m.labelOf(out.ActiveID)
		cmds = append(cmds, m.saveCmd(out.Board))
	} else {
		m.status = "dropped " + m.labelOf(out.ActiveID)
	}
	return tea.Batch(cmds...)
}

// cancelDrag restores the board captured at drag start.
func (m *Model) cancelDrag() tea.Cmd {
	out, err := m.ctrl.Cancel()
	m.drag = nil
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.cursorTo(out.ActiveID)
	m.status = "drag cancelled"
	return m.syncMounts()
}

// addColumn appends an empty column and persists the board.
func (m *Model) addColumn() tea.Cmd {
	if m.dragging() {
		m.status = "finish the drag before adding a column"
		return nil
	}
	board, err := m.svc.AddContainer(m.ctrl.Board())
	if err != nil {
		m.status = "add column failed: " + err.Error()
		return nil
	}
	if err := m.ctrl.SetBoard(board); err != nil {
		m.status = "add column failed: " + err.Error()
		return nil
	}
	order := board.Order()
	m.cursorCol = len(order) - 1
	m.cursorRow = -1
	m.status = "added " + domain.Container{ID: order[len(order)-1]}.Label()
	return m.saveCmd(board)
}

// yankBoard copies the board state as JSON.
func (m Model) yankBoard() tea.Cmd {
	state := app.NewBoardState(m.ctrl.Board(), m.ctrl.ActiveID(), m.ctrl.Phase())
	write := m.writeClipboard
	return func() tea.Msg {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return yankedMsg{err: err}
		}
		return yankedMsg{err: write(string(data))}
	}
}

// syncMounts remounts item views whose column changed and schedules their
// settle ticks.
func (m *Model) syncMounts() tea.Cmd {
	board := m.board()
	seen := make(map[string]struct{}, len(m.mounts))
	var cmds []tea.Cmd
	for _, c := range board.Containers() {
		for _, item := range c.Items {
			seen[item.ID] = struct{}{}
			if state, ok := m.mounts[item.ID]; ok && state.container == c.ID {
				continue
			}
			m.mountSeq++
			state := mountState{container: c.ID, token: m.mountSeq}
			if m.fadeDelay <= 0 {
				state.settled = true
			} else {
				cmds = append(cmds, settleAfter(m.fadeDelay, item.ID, state.token))
			}
			m.mounts[item.ID] = state
		}
	}
	for id := range m.mounts {
		if _, ok := seen[id]; !ok {
			delete(m.mounts, id)
		}
	}
	return tea.Batch(cmds...)
}

func settleAfter(d time.Duration, itemID string, token int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return settleMsg{itemID: itemID, token: token}
	})
}

// fadeIn reports whether an item renders in its just-mounted style.
func (m Model) fadeIn(itemID string) bool {
	if !m.dragging() {
		return false
	}
	state, ok := m.mounts[itemID]
	return ok && !state.settled
}

func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.ctrl == nil {
		return m, nil
	}
	if m.helpOpen {
		m.helpOpen = false
		return m, nil
	}
	if m.dragging() {
		return m, nil
	}
	h := m.hitTest(msg.X, msg.Y)
	switch h.kind {
	case hitPlaceholder:
		return m, m.addColumn()
	case hitHeader, hitItem:
		m.cursorCol = h.column
		m.cursorRow = h.row
		if m.deadZone == 0 {
			return m, m.startDrag(h.id, msg.X, msg.Y, h.rect, false)
		}
		m.press = &pressState{id: h.id, x: msg.X, y: msg.Y, rect: h.rect}
	case hitBody:
		m.cursorCol = h.column
		m.clampCursor()
	}
	return m, nil
}

func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.press != nil && !m.dragging() {
		dx := abs(msg.X - m.press.x)
		dy := abs(msg.Y - m.press.y)
		if max(dx, dy) <= m.deadZone {
			return m, nil
		}
		press := *m.press
		cmd := m.startDrag(press.id, press.x, press.y, press.rect, false)
		if m.drag == nil {
			return m, cmd
		}
		m.drag.pointerX, m.drag.pointerY = msg.X, msg.Y
		return m, tea.Batch(cmd, m.moveDrag())
	}
	if m.drag == nil || m.drag.keyboard {
		return m, nil
	}
	m.drag.pointerX, m.drag.pointerY = msg.X, msg.Y
	return m, m.moveDrag()
}

func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	m.press = nil
	if m.drag == nil || m.drag.keyboard || !m.dragging() {
		return m, nil
	}
	if msg.X != m.drag.pointerX || msg.Y != m.drag.pointerY {
		m.drag.pointerX, m.drag.pointerY = msg.X, msg.Y
		moved := m.moveDrag()
		return m, tea.Batch(moved, m.endDrag())
	}
	return m, m.endDrag()
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	h := m.hitTest(msg.X, msg.Y)
	if h.kind == hitNone || h.kind == hitPlaceholder {
		return m, nil
	}
	colID := m.board().Order()[h.column]
	switch msg.Button {
	case tea.MouseWheelUp:
		m.scroll[colID]--
	case tea.MouseWheelDown:
		m.scroll[colID]++
	}
	m.clampScroll()
	return m, nil
}

// columnWidth fits every column plus the placeholder into the terminal.
func (m Model) columnWidth() int {
	n := m.board().Len() + 1
	if m.width <= 0 {
		return maxColumnWidth
	}
	w := (m.width - columnGap*(n-1)) / n
	return clamp(w, minColumnWidth, maxColumnWidth)
}

// visibleRows is the number of item rows every column shows.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		longest := 1
		for _, c := range m.board().Containers() {
			longest = max(longest, len(c.Items))
		}
		return longest
	}
	return max(1, m.height-boardTop-footerHeight-columnChrome)
}

func (m Model) columnX(index int) int {
	return index * (m.columnWidth() + columnGap)
}

func (m Model) columnRect(index int) domain.Rect {
	return domain.CellRect(m.columnX(index), boardTop, m.columnWidth(), m.visibleRows()+columnChrome)
}

func (m Model) placeholderRect() domain.Rect {
	return domain.CellRect(m.columnX(m.board().Len()), boardTop, m.columnWidth(), placeholderH)
}

// itemRect measures item row of column index; hidden rows report false.
func (m Model) itemRect(index, row int) (domain.Rect, bool) {
	order := m.board().Order()
	if index < 0 || index >= len(order) {
		return domain.Rect{}, false
	}
	visible := row - m.scroll[order[index]]
	if visible < 0 || visible >= m.visibleRows() {
		return domain.Rect{}, false
	}
	return domain.CellRect(m.columnX(index)+1, boardTop+2+visible, m.columnWidth()-2, 1), true
}

// droppables measures every rendered column, visible item and the placeholder.
func (m Model) droppables() []app.Droppable {
	board := m.board()
	out := make([]app.Droppable, 0, board.ItemCount()+board.Len()+1)
	for i, c := range board.Containers() {
		out = append(out, app.Droppable{ID: c.ID, Rect: m.columnRect(i)})
		for row, item := range c.Items {
			if rect, ok := m.itemRect(i, row); ok {
				out = append(out, app.Droppable{ID: item.ID, Rect: rect})
			}
		}
	}
	return append(out, app.Droppable{ID: domain.PlaceholderID, Rect: m.placeholderRect()})
}

// hitTest resolves the board element drawn at cell (x, y).
func (m Model) hitTest(x, y int) hit {
	if m.ctrl == nil {
		return hit{}
	}
	p := domain.CellPoint(x, y)
	if m.placeholderRect().ContainsStrict(p) {
		return hit{kind: hitPlaceholder, id: domain.PlaceholderID, column: -1}
	}
	board := m.board()
	for i, c := range board.Containers() {
		rect := m.columnRect(i)
		if !rect.ContainsStrict(p) {
			continue
		}
		switch {
		case y == boardTop+1:
			return hit{kind: hitHeader, id: c.ID, column: i, row: -1, rect: rect}
		case y >= boardTop+2 && y < boardTop+2+m.visibleRows():
			row := y - boardTop - 2 + m.scroll[c.ID]
			if row < len(c.Items) {
				itemRect, _ := m.itemRect(i, row)
				return hit{kind: hitItem, id: c.Items[row].ID, column: i, row: row, rect: itemRect}
			}
		}
		return hit{kind: hitBody, id: c.ID, column: i, row: -1, rect: rect}
	}
	return hit{}
}

func (m Model) ghostRect() domain.Rect {
	return domain.CellRect(m.drag.pointerX-m.drag.grabX, m.drag.pointerY-m.drag.grabY, m.drag.width, m.drag.height)
}

// clampCursor keeps the cursor on an existing column and row.
func (m *Model) clampCursor() {
	board := m.board()
	if board.Len() == 0 {
		m.cursorCol, m.cursorRow = 0, -1
		return
	}
	m.cursorCol = clamp(m.cursorCol, 0, board.Len()-1)
	items := board.Items(board.Order()[m.cursorCol])
	m.cursorRow = clamp(m.cursorRow, -1, len(items)-1)
}

// revealCursor scrolls the focused column so the cursor row is visible.
func (m *Model) revealCursor() {
	board := m.board()
	if board.Len() == 0 || m.cursorRow < 0 {
		return
	}
	colID := board.Order()[m.cursorCol]
	rows := m.visibleRows()
	switch {
	case m.cursorRow < m.scroll[colID]:
		m.scroll[colID] = m.cursorRow
	case m.cursorRow >= m.scroll[colID]+rows:
		m.scroll[colID] = m.cursorRow - rows + 1
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	board := m.board()
	rows := m.visibleRows()
	for _, c := range board.Containers() {
		m.scroll[c.ID] = clamp(m.scroll[c.ID], 0, max(0, len(c.Items)-rows))
	}
}

// cursorTo focuses id, which may be an item or a column.
func (m *Model) cursorTo(id string) {
	board := m.board()
	colID, ok := board.FindContainer(id)
	if !ok {
		m.clampCursor()
		return
	}
	m.cursorCol = board.ContainerIndex(colID)
	m.cursorRow = -1
	if !board.IsContainer(id) {
		m.cursorRow = board.IndexOf(colID, id)
	}
	m.clampCursor()
	m.revealCursor()
}

// followActive keeps the active item's new column scrolled into view.
func (m *Model) followActive() {
	if !m.dragging() || m.ctrl.ActiveIsContainer() {
		return
	}
	m.cursorTo(m.ctrl.ActiveID())
}

func (m Model) labelOf(id string) string {
	board := m.board()
	if board.IsContainer(id) {
		return domain.Container{ID: id}.Label()
	}
	if item, ok := board.Item(id); ok {
		return item.Name
	}
	return id
}

// hovered reports whether column colID renders as the drop target.
func (m Model) hovered(colID string) bool {
	if m.drag == nil || !m.dragging() || m.drag.overID == "" {
		return false
	}
	over := m.drag.overID
	if over == colID {
		return !m.ctrl.ActiveIsContainer()
	}
	return m.board().IndexOf(colID, over) >= 0
}

// View renders the board.
func (m Model) View() tea.View {
	return newView(m.render())
}

// render draws the full screen as text.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress q to quit\n"
	}
	if !m.ready || m.ctrl == nil {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	board := m.board()
	title := titleStyle.Render(board.Name())
	if m.dragging() {
		title += lipgloss.NewStyle().Foreground(accent).Render("  dragging " + m.labelOf(m.ctrl.ActiveID()))
	}
	content := title + "\n\n" + m.renderBoard(accent, muted, dim)

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	footer := statusStyle.Render(m.status) + "\n" + lipgloss.NewStyle().Foreground(muted).Render(helpBubble.View(m.keys))

	content = fitLines(content, max(1, m.height-footerHeight))
	if m.drag != nil && m.dragging() {
		content = m.overlayGhost(content, accent)
	}
	full := content + "\n" + footer
	if m.helpOpen {
		overlay := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Render(m.md.render(helpMarkdown(m.keys), m.width))
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, m.height))
	}
	return full
}

func newView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderBoard draws every column and the placeholder side by side.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	board := m.board()
	width := m.columnWidth()
	rows := m.visibleRows()
	height := rows + columnChrome
	blocks := make([][]string, 0, board.Len()+1)
	for i, c := range board.Containers() {
		blocks = append(blocks, m.renderColumn(i, c, width, rows, accent, muted, dim))
	}
	blocks = append(blocks, renderPlaceholder(width, muted))

	lines := make([]string, height)
	gap := strings.Repeat(" ", columnGap)
	blank := strings.Repeat(" ", width)
	for y := range height {
		parts := make([]string, len(blocks))
		for i, block := range blocks {
			if y < len(block) {
				parts[i] = block[y]
			} else {
				parts[i] = blank
			}
		}
		lines[y] = strings.Join(parts, gap)
	}
	return lipgloss.NewStyle().MaxWidth(max(1, m.width)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderColumn(index int, c domain.Container, width, rows int, accent, muted, dim color.Color) []string {
	dragged := m.dragging() && m.ctrl.ActiveID() == c.ID
	border := lipgloss.NewStyle().Foreground(dim)
	if m.hovered(c.ID) {
		border = border.Foreground(accent)
	}
	if dragged {
		border = border.Faint(true)
	}
	header := lipgloss.NewStyle().Bold(true)
	if dragged {
		header = header.Bold(false).Faint(true)
	}
	if !m.dragging() && index == m.cursorCol && m.cursorRow < 0 {
		header = header.Reverse(true)
	}

	inner := width - 2
	out := make([]string, 0, rows+columnChrome)
	out = append(out, border.Render("╭"+strings.Repeat("─", inner)+"╮"))
	label := fmt.Sprintf(" %s (%d)", c.Label(), len(c.Items))
	out = append(out, border.Render("│")+header.Render(fitCell(label, inner))+border.Render("│"))

	offset := m.scroll[c.ID]
	for r := range rows {
		row := offset + r
		text := ""
		style := lipgloss.NewStyle()
		if row < len(c.Items) {
			item := c.Items[row]
			text = " " + item.Name
			switch {
			case dragged:
				style = style.Faint(true)
			case m.dragging() && m.ctrl.ActiveID() == item.ID:
				style = style.Foreground(muted).Faint(true)
				text = " ┈ " + item.Name
			case m.fadeIn(item.ID):
				style = style.Faint(true).Italic(true)
			case !m.dragging() && index == m.cursorCol && row == m.cursorRow:
				style = style.Reverse(true)
			}
		}
		out = append(out, border.Render("│")+style.Render(fitCell(text, inner))+border.Render("│"))
	}
	footer := strings.Repeat("─", inner)
	if hidden := len(c.Items) - offset - rows; hidden > 0 {
		footer = fitCell(fmt.Sprintf("─ +%d ", hidden)+strings.Repeat("─", inner), inner)
	}
	out = append(out, border.Render("╰"+footer+"╯"))
	return out
}

func renderPlaceholder(width int, muted color.Color) []string {
	style := lipgloss.NewStyle().Foreground(muted)
	inner := width - 2
	return []string{
		style.Render("╭" + strings.Repeat("┄", inner) + "╮"),
		style.Render("┆" + fitCell(" + Add column", inner) + "┆"),
		style.Render("╰" + strings.Repeat("┄", inner) + "╯"),
	}
}

// overlayGhost draws the dragged element under the pointer.
func (m Model) overlayGhost(content string, accent color.Color) string {
	width, height := max(1, m.width), max(1, m.height-footerHeight)
	ghost := lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(accent)
	label := m.labelOf(m.ctrl.ActiveID())
	var block string
	if m.ctrl.ActiveIsContainer() {
		inner := max(1, m.drag.width-2)
		block = strings.Join([]string{
			ghost.Render("╭" + strings.Repeat("─", inner) + "╮"),
			ghost.Render("│" + fitCell(" "+label, inner) + "│"),
			ghost.Render("╰" + strings.Repeat("─", inner) + "╯"),
		}, "\n")
	} else {
		block = ghost.Render(fitCell(" "+label, max(1, m.drag.width)))
	}
	rect := m.ghostRect()
	x := clamp(int(rect.Left), 0, max(0, width-1))
	y := clamp(int(rect.Top), 0, max(0, height-1))

	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(content).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(block).X(x).Y(y).Z(10))
	return canvas.Render()
}

// fitCell truncates or pads s to exactly width cells.
func fitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// fitLines truncates or pads content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		lines = lines[:maxLines]
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay on top of base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	return min(max(v, minV), maxV)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
