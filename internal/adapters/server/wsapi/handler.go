// Package wsapi streams drag sensor events over WebSocket.
package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hylla/dragboard/internal/adapters/server/common"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
)

const (
	maxFrameBytes = 512 * 1024
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
	writeWait     = 10 * time.Second
)

// EventType names one sensor frame.
type EventType string

const (
	EventStart  EventType = "start"
	EventMove   EventType = "move"
	EventEnd    EventType = "end"
	EventCancel EventType = "cancel"
	EventState  EventType = "state"
	EventError  EventType = "error"
)

// Event is one client frame. Geometry fields are only read for move.
type Event struct {
	Type       EventType       `json:"type"`
	ActiveID   string          `json:"active_id,omitempty"`
	OverID     string          `json:"over_id,omitempty"`
	ActiveRect domain.Rect     `json:"active_rect"`
	Pointer    *domain.Point   `json:"pointer,omitempty"`
	Droppables []app.Droppable `json:"droppables,omitempty"`
}

// Reply is sent for every frame received.
type Reply struct {
	Type      EventType      `json:"type"`
	State     app.BoardState `json:"state"`
	Collision *app.Collision `json:"collision,omitempty"`
	Changed   bool           `json:"changed,omitempty"`
	Error     *ReplyError    `json:"error,omitempty"`
}

type ReplyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler upgrades GET /{boardID} to a sensor stream.
type Handler struct {
	sessions common.BoardSessions
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// NewHandler builds the stream handler. A nil logger discards logs.
func NewHandler(sessions common.BoardSessions, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Handler{
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
	r := chi.NewRouter()
	r.Get("/boards/{boardID}", h.handleStream)
	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		http.Error(w, "board sessions are not configured", http.StatusServiceUnavailable)
		return
	}
	boardID := chi.URLParam(r, "boardID")
	sess, err := h.sessions.Session(r.Context(), boardID)
	if err != nil {
		code, status := common.ErrorCode(err)
		http.Error(w, code+": "+err.Error(), status)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "board", boardID, "err", err)
		return
	}
	h.logger.Debug("sensor stream opened", "board", boardID)
	c := &client{conn: conn}
	c.serve(context.WithoutCancel(r.Context()), sess, h.logger)
	h.logger.Debug("sensor stream closed", "board", boardID)
}

// client pairs the connection with the write lock shared by replies and pings.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) serve(ctx context.Context, sess *app.Session, logger *log.Logger) {
	done := make(chan struct{})
	// owned is the drag this stream started and has not yet finished.
	var owned string
	defer func() {
		close(done)
		_ = c.conn.Close()
		if _, aborted := sess.Abort(owned); aborted {
			logger.Info("sensor stream dropped mid-drag, drag cancelled", "active", owned)
		}
	}()
	go c.ping(done)

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.write(Reply{Type: EventState, State: sess.State()}); err != nil {
		return
	}
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("sensor stream read failed", "err", err)
			}
			return
		}
		reply := Handle(ctx, sess, data)
		switch {
		case reply.Type == EventStart:
			owned = reply.State.ActiveID
		case reply.State.Phase == app.PhaseIdle:
			owned = ""
		}
		if err := c.write(reply); err != nil {
			logger.Warn("sensor stream write failed", "err", err)
			return
		}
	}
}

func (c *client) write(reply Reply) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(reply)
}

func (c *client) ping(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Handle applies one raw frame to sess and builds the reply.
func Handle(ctx context.Context, sess *app.Session, data []byte) Reply {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return errorReply(sess, fmt.Errorf("decode frame: %w", errors.Join(common.ErrInvalidRequest, err)))
	}
	switch ev.Type {
	case EventStart:
		state, err := sess.Start(strings.TrimSpace(ev.ActiveID))
		if err != nil {
			return errorReply(sess, err)
		}
		return Reply{Type: EventStart, State: state}
	case EventMove:
		res, err := sess.Move(app.CollisionInput{
			ActiveRect: ev.ActiveRect,
			Pointer:    ev.Pointer,
			Droppables: ev.Droppables,
		})
		if err != nil {
			return errorReply(sess, err)
		}
		return Reply{Type: EventMove, State: res.State, Collision: &res.Collision, Changed: res.Changed}
	case EventEnd:
		state, err := sess.End(ctx, strings.TrimSpace(ev.OverID))
		if err != nil {
			return errorReply(sess, err)
		}
		return Reply{Type: EventEnd, State: state}
	case EventCancel:
		state, err := sess.Cancel()
		if err != nil {
			return errorReply(sess, err)
		}
		return Reply{Type: EventCancel, State: state}
	case EventState:
		return Reply{Type: EventState, State: sess.State()}
	default:
		return errorReply(sess, fmt.Errorf("unknown event type %q: %w", ev.Type, common.ErrInvalidRequest))
	}
}

func errorReply(sess *app.Session, err error) Reply {
	code, _ := common.ErrorCode(err)
	return Reply{
		Type:  EventError,
		State: sess.State(),
		Error: &ReplyError{Code: code, Message: err.Error()},
	}
}
