package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/dragboard/internal/domain"
)

// BoardState is the transport view of a session.
type BoardState struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Columns  []domain.Container `json:"columns"`
	ActiveID string             `json:"active_id,omitempty"`
	Phase    Phase              `json:"phase"`
}

// NewBoardState renders a board plus drag state for transports.
func NewBoardState(board domain.Board, activeID string, phase Phase) BoardState {
	return BoardState{
		ID:       board.ID(),
		Name:     board.Name(),
		Columns:  board.Containers(),
		ActiveID: activeID,
		Phase:    phase,
	}
}

// MoveResult is the reply to one sensor move: the collision and the
// drag-over it produced.
type MoveResult struct {
	Collision Collision  `json:"collision"`
	Changed   bool       `json:"changed"`
	State     BoardState `json:"state"`
}

// Session serializes every controller call for one board and persists
// committed changes.
type Session struct {
	mu   sync.Mutex
	svc  *Service
	ctrl *Controller
}

// State returns a consistent copy of the board and drag state.
func (s *Session) State() BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() BoardState {
	return NewBoardState(s.ctrl.Board(), s.ctrl.ActiveID(), s.ctrl.Phase())
}

// Start begins a drag.
func (s *Session) Start(activeID string) (BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ctrl.Start(activeID); err != nil {
		return BoardState{}, err
	}
	return s.stateLocked(), nil
}

// Over applies one drag-over.
func (s *Session) Over(ev OverEvent) BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Over(ev)
	return s.stateLocked()
}

// Detect runs collision detection without moving anything.
func (s *Session) Detect(in CollisionInput) Collision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Detect(in)
}

// Move resolves the target under the pointer and applies the drag-over for it.
func (s *Session) Move(in CollisionInput) (MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ctrl.Dragging() {
		return MoveResult{}, ErrNoActiveDrag
	}
	collision := s.ctrl.Detect(in)
	var overRect domain.Rect
	for _, dr := range in.Droppables {
		if dr.ID == collision.TargetID {
			overRect = dr.Rect
			break
		}
	}
	out := s.ctrl.Over(OverEvent{OverID: collision.TargetID, ActiveRect: in.ActiveRect, OverRect: overRect})
	return MoveResult{Collision: collision, Changed: out.Changed, State: s.stateLocked()}, nil
}

// End commits the drag and persists the board when it changed. When the
// save fails the board goes back to its drag-start state, so memory never
// runs ahead of storage.
func (s *Session) End(ctx context.Context, overID string) (BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.ctrl.snapshot
	out, err := s.ctrl.End(overID)
	if err != nil {
		return BoardState{}, err
	}
	if out.Changed {
		if err := s.svc.SaveBoard(ctx, out.Board); err != nil {
			// End left the controller idle, so SetBoard cannot refuse.
			_ = s.ctrl.SetBoard(before)
			return BoardState{}, fmt.Errorf("persist board %q: %w", out.Board.ID(), err)
		}
	}
	return s.stateLocked(), nil
}

// Cancel restores the drag-start snapshot. The snapshot is the persisted
// state, so nothing is written.
func (s *Session) Cancel() (BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ctrl.Cancel(); err != nil {
		return BoardState{}, err
	}
	return s.stateLocked(), nil
}

// Abort cancels the drag of activeID if it is still the active one. It
// reports whether a drag was rolled back; other drags are left alone.
func (s *Session) Abort(activeID string) (BoardState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activeID == "" || s.ctrl.ActiveID() != activeID {
		return s.stateLocked(), false
	}
	if _, err := s.ctrl.Cancel(); err != nil {
		return s.stateLocked(), false
	}
	return s.stateLocked(), true
}

// AddColumn appends an empty column and persists it.
func (s *Session) AddColumn(ctx context.Context) (BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl.Dragging() {
		return BoardState{}, ErrDragInProgress
	}
	board, err := s.svc.AddContainer(s.ctrl.Board())
	if err != nil {
		return BoardState{}, err
	}
	if err := s.svc.SaveBoard(ctx, board); err != nil {
		return BoardState{}, fmt.Errorf("persist board %q: %w", board.ID(), err)
	}
	if err := s.ctrl.SetBoard(board); err != nil {
		return BoardState{}, err
	}
	return s.stateLocked(), nil
}

// SessionManager holds one session per board.
type SessionManager struct {
	mu       sync.Mutex
	svc      *Service
	observer Observer
	sessions map[string]*Session
}

// NewSessionManager constructs a manager loading boards from svc.
func NewSessionManager(svc *Service, observer Observer) *SessionManager {
	return &SessionManager{
		svc:      svc,
		observer: observer,
		sessions: map[string]*Session{},
	}
}

// Session returns the session for boardID, loading the board on first use.
func (m *SessionManager) Session(ctx context.Context, boardID string) (*Session, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return nil, domain.ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[boardID]; ok {
		return sess, nil
	}
	board, err := m.svc.LoadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		svc:  m.svc,
		ctrl: NewController(board, WithObserver(m.observer)),
	}
	m.sessions[boardID] = sess
	return sess, nil
}

// ListBoards lists persisted boards.
func (m *SessionManager) ListBoards(ctx context.Context) ([]BoardSummary, error) {
	return m.svc.ListBoards(ctx)
}
