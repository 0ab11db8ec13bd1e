package tui

import (
	"strings"
	"time"
)

// RuntimeConfig holds the settings the TUI can pick up on config reload.
type RuntimeConfig struct {
	FadeDelay time.Duration
	DeadZone  int
	Keys      KeyConfig
}

// DefaultRuntimeConfig returns the stock runtime settings.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		FadeDelay: 500 * time.Millisecond,
		DeadZone:  1,
		Keys:      DefaultKeyConfig(),
	}
}

// ReloadConfigFunc re-reads runtime settings from disk.
type ReloadConfigFunc func() (RuntimeConfig, error)

type Option func(*Model)

func WithBoardID(id string) Option {
	return func(m *Model) {
		if id = strings.TrimSpace(id); id != "" {
			m.boardID = id
		}
	}
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.applyRuntimeConfig(cfg)
	}
}

// WithConfigReload re-applies runtime settings each time changes fires.
func WithConfigReload(changes <-chan struct{}, reload ReloadConfigFunc) Option {
	return func(m *Model) {
		m.configChanges = changes
		m.reloadConfig = reload
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}
