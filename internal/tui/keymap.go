package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// KeyConfig holds the user-configurable bindings. Empty fields keep defaults.
type KeyConfig struct {
	Pick      string
	Cancel    string
	AddColumn string
	Yank      string
	Help      string
	Quit      string
}

// DefaultKeyConfig returns the stock bindings.
func DefaultKeyConfig() KeyConfig {
	return KeyConfig{
		Pick:      "space",
		Cancel:    "esc",
		AddColumn: "a",
		Yank:      "y",
		Help:      "?",
		Quit:      "q",
	}
}

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	pick       key.Binding
	cancel     key.Binding
	addColumn  key.Binding
	yank       key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
}

// newKeyMap constructs the default key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		pick:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick up / drop")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		addColumn:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add column")),
		yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank board json")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	}
}

// applyConfig overrides configurable bindings; quit keeps ctrl+c.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	def := DefaultKeyConfig()
	configureBinding(&k.pick, cfg.Pick, def.Pick, "pick up / drop")
	configureBinding(&k.cancel, cfg.Cancel, def.Cancel, "cancel drag")
	configureBinding(&k.addColumn, cfg.AddColumn, def.AddColumn, "add column")
	configureBinding(&k.yank, cfg.Yank, def.Yank, "yank board json")
	configureBinding(&k.toggleHelp, cfg.Help, def.Help, "toggle help")
	configureBinding(&k.quit, cfg.Quit, def.Quit, "quit")
	k.quit.SetKeys(append(k.quit.Keys(), "ctrl+c")...)
}

// configureBinding replaces the keys and help of one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns one configured key into matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "space") || raw == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.pick, k.cancel, k.addColumn, k.yank, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.pick, k.cancel, k.addColumn, k.yank},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.toggleHelp, k.quit},
	}
}
