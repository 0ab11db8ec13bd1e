// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/dragboard/internal/adapters/server/common"
	"github.com/hylla/dragboard/internal/app"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds the MCP adapter exposing board and drag tools.
func NewHandler(cfg Config, sessions common.BoardSessions) (*Handler, error) {
	if sessions == nil {
		return nil, fmt.Errorf("board sessions are required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, sessions)
	registerDragTools(mcpSrv, sessions)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "dragboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = "/" + strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// boardIDOption is shared by every per-board tool.
func boardIDOption() mcp.ToolOption {
	return mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier"))
}

// sessionTool wraps a handler that needs the session named by board_id.
func sessionTool(sessions common.BoardSessions, name string, run func(context.Context, mcp.CallToolRequest, *app.Session) (any, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		boardID, err := req.RequireString("board_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sess, err := sessions.Session(ctx, boardID)
		if err != nil {
			return toolResultFromError(err), nil
		}
		payload, err := run(ctx, req, sess)
		if err != nil {
			return toolResultFromError(err), nil
		}
		result, err := mcp.NewToolResultJSON(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return result, nil
	}
}

func registerBoardTools(srv *mcpserver.MCPServer, sessions common.BoardSessions) {
	srv.AddTool(
		mcp.NewTool(
			"dragboard.list_boards",
			mcp.WithDescription("List persisted boards with column and item counts."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boards, err := sessions.ListBoards(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(common.ListBoardsResponse{Boards: boards})
			if err != nil {
				return nil, fmt.Errorf("encode list_boards result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"dragboard.get_board",
			mcp.WithDescription("Return the columns, items and drag state of one board."),
			boardIDOption(),
		),
		sessionTool(sessions, "get_board", func(_ context.Context, _ mcp.CallToolRequest, sess *app.Session) (any, error) {
			return sess.State(), nil
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"dragboard.add_column",
			mcp.WithDescription("Append an empty column with the next free id."),
			boardIDOption(),
		),
		sessionTool(sessions, "add_column", func(ctx context.Context, _ mcp.CallToolRequest, sess *app.Session) (any, error) {
			return sess.AddColumn(ctx)
		}),
	)
}

func registerDragTools(srv *mcpserver.MCPServer, sessions common.BoardSessions) {
	srv.AddTool(
		mcp.NewTool(
			"dragboard.drag_start",
			mcp.WithDescription("Pick up one item or column."),
			boardIDOption(),
			mcp.WithString("active_id", mcp.Required(), mcp.Description("Item or column id to drag")),
		),
		sessionTool(sessions, "drag_start", func(_ context.Context, req mcp.CallToolRequest, sess *app.Session) (any, error) {
			activeID, err := req.RequireString("active_id")
			if err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
			}
			return sess.Start(strings.TrimSpace(activeID))
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"dragboard.drag_over",
			mcp.WithDescription("Move the dragged item over a column or item. Item targets insert before the target."),
			boardIDOption(),
			mcp.WithString("over_id", mcp.Required(), mcp.Description("Column or item id under the pointer")),
		),
		sessionTool(sessions, "drag_over", func(_ context.Context, req mcp.CallToolRequest, sess *app.Session) (any, error) {
			overID, err := req.RequireString("over_id")
			if err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
			}
			return sess.Over(app.OverEvent{OverID: strings.TrimSpace(overID)}), nil
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"dragboard.drag_end",
			mcp.WithDescription("Drop the dragged item or column and persist the result."),
			boardIDOption(),
			mcp.WithString("over_id", mcp.Description("Drop target; omit to drop without a target")),
		),
		sessionTool(sessions, "drag_end", func(ctx context.Context, req mcp.CallToolRequest, sess *app.Session) (any, error) {
			return sess.End(ctx, strings.TrimSpace(req.GetString("over_id", "")))
		}),
	)

	srv.AddTool(
		mcp.NewTool(
			"dragboard.drag_cancel",
			mcp.WithDescription("Abort the drag and restore the board from before it started."),
			boardIDOption(),
		),
		sessionTool(sessions, "drag_cancel", func(_ context.Context, _ mcp.CallToolRequest, sess *app.Session) (any, error) {
			return sess.Cancel()
		}),
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("unknown error")
	}
	code, _ := common.ErrorCode(err)
	return mcp.NewToolResultError(code + ": " + err.Error())
}
