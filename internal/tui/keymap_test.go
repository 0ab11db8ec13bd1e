package tui

import (
	"slices"
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		keys     []string
		help     string
	}{
		{name: "space aliases", raw: "space", fallback: ".", keys: []string{" ", "space"}, help: "space"},
		{name: "uppercase rune includes shift alias", raw: "Z", fallback: "z", keys: []string{"Z", "shift+z"}, help: "Z"},
		{name: "multi rune lowercases matcher", raw: "Ctrl+R", fallback: "r", keys: []string{"ctrl+r"}, help: "Ctrl+R"},
		{name: "blank uses fallback", raw: "  ", fallback: "x", keys: []string{"x"}, help: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, help := parseBindingKeys(tt.raw, tt.fallback)
			if !slices.Equal(keys, tt.keys) {
				t.Fatalf("keys = %#v, want %#v", keys, tt.keys)
			}
			if help != tt.help {
				t.Fatalf("help = %q, want %q", help, tt.help)
			}
		})
	}
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "old"))
	configureBinding(&b, "c", "a", "add column")
	if keys := b.Keys(); len(keys) != 1 || keys[0] != "c" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "c" || b.Help().Desc != "add column" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{Pick: "enter", AddColumn: "N", Quit: "x"})

	if got := k.pick.Keys(); !slices.Equal(got, []string{"enter"}) {
		t.Fatalf("pick keys = %#v", got)
	}
	if got := k.addColumn.Keys(); !slices.Equal(got, []string{"N", "shift+n"}) {
		t.Fatalf("add column keys = %#v", got)
	}
	if got := k.quit.Keys(); !slices.Equal(got, []string{"x", "ctrl+c"}) {
		t.Fatalf("quit keys = %#v", got)
	}
	if got := k.cancel.Keys(); !slices.Equal(got, []string{"esc"}) {
		t.Fatalf("cancel should keep default, got %#v", got)
	}
}
