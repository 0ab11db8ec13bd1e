package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// TestHelpWrapBounds verifies the overlay wrap width stays within its bounds.
func TestHelpWrapBounds(t *testing.T) {
	cases := map[int]int{
		0:   minHelpWrap,
		30:  minHelpWrap,
		60:  60 - helpMargin,
		200: maxHelpWrap,
	}
	for width, want := range cases {
		if got := helpWrap(width); got != want {
			t.Fatalf("helpWrap(%d) = %d, want %d", width, got, want)
		}
	}
}

// TestMarkdownRendererCachesOutput verifies repeated frames reuse the rendered help.
func TestMarkdownRendererCachesOutput(t *testing.T) {
	r := &markdownRenderer{}
	if got := r.render("   ", 120); got != "" {
		t.Fatalf("render(blank) = %q, want empty", got)
	}

	md := helpMarkdown(newKeyMap())
	first := r.render(md, 120)
	plain := ansi.Strip(first)
	if !strings.Contains(plain, "Drag a column by its header") {
		t.Fatalf("expected help text, got %q", plain)
	}
	if strings.HasPrefix(first, "\n") || strings.HasSuffix(first, "\n") {
		t.Fatalf("expected trimmed output, got %q", first)
	}
	term := r.term
	if again := r.render(md, 121); again != first || r.term != term {
		t.Fatal("expected cached output for an unchanged wrap width")
	}

	narrow := r.render(md, 40)
	if r.wrap != minHelpWrap || r.term == term {
		t.Fatalf("expected a new renderer at wrap %d, got wrap %d", minHelpWrap, r.wrap)
	}
	if narrow == first {
		t.Fatal("expected the narrow render to rewrap the help text")
	}
}

// TestTrimBlankLines verifies only leading and trailing blank rows are dropped.
func TestTrimBlankLines(t *testing.T) {
	if got := trimBlankLines("\n  \nfirst\n\nsecond\n \n"); got != "first\n\nsecond" {
		t.Fatalf("trimBlankLines() = %q", got)
	}
	if got := trimBlankLines("\n\n"); got != "" {
		t.Fatalf("trimBlankLines(blank) = %q", got)
	}
}
