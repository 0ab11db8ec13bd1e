// Package httpapi provides the REST HTTP adapter for board sessions.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hylla/dragboard/internal/adapters/server/common"
	"github.com/hylla/dragboard/internal/app"
)

// maxRequestBodyBytes limits decoded JSON payload size.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter.
type Handler struct {
	sessions common.BoardSessions
	router   chi.Router
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs the API routes over sessions.
func NewHandler(sessions common.BoardSessions) *Handler {
	h := &Handler{sessions: sessions}
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{
			Code:    "method_not_allowed",
			Message: "method not allowed",
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	})
	r.Get("/boards", h.handleListBoards)
	r.Route("/boards/{boardID}", func(r chi.Router) {
		r.Get("/", h.handleGetBoard)
		r.Post("/columns", h.handleAddColumn)
		r.Post("/collisions", h.handleCollisions)
		r.Route("/drag", func(r chi.Router) {
			r.Post("/start", h.handleDragStart)
			r.Post("/over", h.handleDragOver)
			r.Post("/move", h.handleDragMove)
			r.Post("/end", h.handleDragEnd)
			r.Post("/cancel", h.handleDragCancel)
		})
	})
	h.router = r
	return h
}

// ServeHTTP routes one versioned API request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleListBoards(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	boards, err := h.sessions.ListBoards(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.ListBoardsResponse{Boards: boards})
}

func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (h *Handler) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.AddColumn(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// handleCollisions runs the collision policy without moving anything.
func (h *Handler) handleCollisions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var in app.CollisionInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Detect(in))
}

func (h *Handler) handleDragStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req common.DragStartRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	state, err := sess.Start(strings.TrimSpace(req.ActiveID))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleDragOver(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req common.DragOverRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Over(req.Event()))
}

// handleDragMove resolves the target from sensor geometry, then applies the drag-over.
func (h *Handler) handleDragMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var in app.CollisionInput
	if err := decodeJSONBody(r.Context(), w, r, &in); err != nil {
		writeErrorFrom(w, err)
		return
	}
	res, err := sess.Move(in)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req common.DragEndRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	state, err := sess.End(r.Context(), strings.TrimSpace(req.OverID))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Cancel()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// session resolves the {boardID} session and writes the error response when it cannot.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	if !h.configured(w) {
		return nil, false
	}
	sess, err := h.sessions.Session(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		writeErrorFrom(w, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) configured(w http.ResponseWriter) bool {
	if h.sessions != nil {
		return true
	}
	writeJSONError(w, http.StatusServiceUnavailable, APIError{
		Code:    "service_unavailable",
		Message: "board sessions are not configured",
	})
	return false
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	code, status := common.ErrorCode(err)
	apiErr := APIError{Code: code, Message: "unknown error"}
	if err != nil {
		apiErr.Message = err.Error()
	}
	switch {
	case errors.Is(err, app.ErrNoActiveDrag):
		apiErr.Hint = "Start a drag before sending over, move, end or cancel."
	case errors.Is(err, app.ErrDragInProgress):
		apiErr.Hint = "End or cancel the active drag first."
	}
	writeJSONError(w, status, apiErr)
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	return ctx.Err()
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	return ctx.Err()
}
