package imagegen

import (
	"strings"
	"testing"
)

func TestPickSize(t *testing.T) {
	tests := []struct {
		text          string
		width, height int
	}{
		{"海 16:9", 1024, 576},
		{"vertical 9:16 shot", 576, 1024},
		{"classic 4:3", 1024, 768},
		{"portrait 3/4", 768, 1024},
		{"square 1:1 icon", 1024, 1024},
		{"16 : 9 with spaces", 1024, 576},
		{"16/9 slash form", 1024, 576},
		{"sunset", 1024, 1024},
		{"", 1024, 1024},
		{"weird 21:9 cinema", 1024, 1024}, // outside the fixed set: default square
		{"УППЕРCASE 9:16", 576, 1024},
	}
	for _, tt := range tests {
		w, h := PickSize(tt.text)
		if w != tt.width || h != tt.height {
			t.Errorf("PickSize(%q) = %dx%d, want %dx%d", tt.text, w, h, tt.width, tt.height)
		}
	}
}

func TestPickSizePriorityOrder(t *testing.T) {
	// 16:9 wins over later entries when several tokens are present.
	w, h := PickSize("16:9 or maybe 1:1")
	if w != 1024 || h != 576 {
		t.Errorf("got %dx%d, want 1024x576", w, h)
	}
}

func TestStripRatioTokens(t *testing.T) {
	got := StripRatioTokens("room 2:3 ratio")
	if strings.Contains(got, "2:3") {
		t.Errorf("ratio token not removed: %q", got)
	}
	if !strings.Contains(got, "room") || !strings.Contains(got, "ratio") {
		t.Errorf("non-token words lost: %q", got)
	}
}

func TestStripRatioTokensIdempotent(t *testing.T) {
	once := StripRatioTokens("abstract sea 16:9")
	twice := StripRatioTokens(once)
	if once != twice {
		t.Errorf("stripping is not idempotent: %q vs %q", once, twice)
	}
}

func TestStripRatioTokensAdjacentCJK(t *testing.T) {
	// Token boundaries are ASCII word boundaries, so a ratio glued to
	// CJK text still counts as a token and is stripped; it must not
	// leak into the visual description.
	if got := StripRatioTokens("海16:9"); got != "海" {
		t.Errorf("StripRatioTokens(%q) = %q, want %q", "海16:9", got, "海")
	}
}

func TestStripRatioTokensKeepsPlainText(t *testing.T) {
	if got := StripRatioTokens("cute dog, watercolor"); got != "cute dog, watercolor" {
		t.Errorf("plain text changed: %q", got)
	}
}
