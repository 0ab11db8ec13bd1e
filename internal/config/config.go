package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type IDStyle string

const (
	IDStyleNumeric IDStyle = "numeric"
	IDStyleUUID    IDStyle = "uuid"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Drag     DragConfig     `toml:"drag"`
	Server   ServerConfig   `toml:"server"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	ID      string         `toml:"id"`
	Name    string         `toml:"name"`
	IDStyle IDStyle        `toml:"id_style"` // numeric | uuid
	Columns []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Items int    `toml:"items"`
}

type DragConfig struct {
	FadeDelay string `toml:"fade_delay"`
	// DeadZone is the pointer travel, in cells, before a press becomes a drag.
	DeadZone int `toml:"dead_zone"`
}

type ServerConfig struct {
	Bind            string `toml:"bind"`
	APIEndpoint     string `toml:"api_endpoint"`
	MCPEndpoint     string `toml:"mcp_endpoint"`
	WSEndpoint      string `toml:"ws_endpoint"`
	MetricsEndpoint string `toml:"metrics_endpoint"`
}

type KeyConfig struct {
	Pick      string `toml:"pick"`
	Cancel    string `toml:"cancel"`
	AddColumn string `toml:"add_column"`
	Yank      string `toml:"yank"`
	Help      string `toml:"help"`
	Quit      string `toml:"quit"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "A", Items: 20},
		{ID: "B", Items: 10},
		{ID: "C", Items: 5},
		{ID: "D", Items: 20},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".dragboard/log",
			},
		},
		Board: BoardConfig{
			ID:      "main",
			Name:    "Multiple containers",
			IDStyle: IDStyleNumeric,
			Columns: defaultColumns(),
		},
		Drag: DragConfig{
			FadeDelay: "500ms",
			DeadZone:  1,
		},
		Server: ServerConfig{
			Bind:            "127.0.0.1:5437",
			APIEndpoint:     "/api/v1",
			MCPEndpoint:     "/mcp",
			WSEndpoint:      "/ws",
			MetricsEndpoint: "/metrics",
		},
		Keys: KeyConfig{
			Pick:      "space",
			Cancel:    "esc",
			AddColumn: "a",
			Yank:      "y",
			Help:      "?",
			Quit:      "q",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Board.ID) == "" {
		return errors.New("board.id is required")
	}
	if strings.TrimSpace(c.Board.Name) == "" {
		return errors.New("board.name is required")
	}
	switch IDStyle(strings.TrimSpace(strings.ToLower(string(c.Board.IDStyle)))) {
	case "", IDStyleNumeric, IDStyleUUID:
	default:
		return fmt.Errorf("invalid board.id_style: %q", c.Board.IDStyle)
	}
	seenColumn := map[string]struct{}{}
	for idx, col := range c.Board.Columns {
		id := strings.TrimSpace(col.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if id == "placeholder" {
			return fmt.Errorf("board.columns[%d].id %q is reserved", idx, id)
		}
		if col.Items < 0 {
			return fmt.Errorf("board.columns[%d].items must be >= 0", idx)
		}
		if _, ok := seenColumn[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seenColumn[id] = struct{}{}
	}

	if _, err := c.Drag.FadeDelayDuration(); err != nil {
		return err
	}
	if c.Drag.DeadZone < 0 {
		return errors.New("drag.dead_zone must be >= 0")
	}

	for name, endpoint := range map[string]string{
		"server.api_endpoint":     c.Server.APIEndpoint,
		"server.mcp_endpoint":     c.Server.MCPEndpoint,
		"server.ws_endpoint":      c.Server.WSEndpoint,
		"server.metrics_endpoint": c.Server.MetricsEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with '/': %q", name, endpoint)
		}
	}

	return nil
}

// FadeDelayDuration parses drag.fade_delay; empty means the 500ms default.
func (d DragConfig) FadeDelayDuration() (time.Duration, error) {
	raw := strings.TrimSpace(d.FadeDelay)
	if raw == "" {
		return 500 * time.Millisecond, nil
	}
	delay, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid drag.fade_delay %q: %w", d.FadeDelay, err)
	}
	if delay < 0 {
		return 0, fmt.Errorf("drag.fade_delay must be >= 0: %q", d.FadeDelay)
	}
	return delay, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
