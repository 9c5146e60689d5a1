package imagegen

import (
	"regexp"
	"strings"
)

// ratioSize maps a literal ratio token to a fixed pixel size. Only these
// five pairs are ever produced; anything else falls back to square.
type ratioSize struct {
	tokens        []string
	width, height int
}

// Checked in priority order; both ":" and "/" separators are accepted.
var ratioSizes = []ratioSize{
	{[]string{"16:9", "16/9"}, 1024, 576},
	{[]string{"9:16", "9/16"}, 576, 1024},
	{[]string{"4:3", "4/3"}, 1024, 768},
	{[]string{"3:4", "3/4"}, 768, 1024},
	{[]string{"1:1", "1/1"}, 1024, 1024},
}

const defaultWidth, defaultHeight = 1024, 1024

var ratioTokenRE = regexp.MustCompile(`\b(\d+\s*[:/]\s*\d+)\b`)

// PickSize detects an aspect-ratio token in free text and returns the
// mapped generation size. Pure substring matching, no numeric parsing:
// unknown ratios silently map to the default square.
func PickSize(text string) (int, int) {
	t := strings.ToLower(text)
	t = strings.Join(strings.Fields(t), "")
	for _, rs := range ratioSizes {
		for _, tok := range rs.tokens {
			if strings.Contains(t, tok) {
				return rs.width, rs.height
			}
		}
	}
	return defaultWidth, defaultHeight
}

// StripRatioTokens removes literal ratio tokens so they do not leak into
// the visual description sent to the prompt expander.
func StripRatioTokens(text string) string {
	return strings.TrimSpace(ratioTokenRE.ReplaceAllString(text, ""))
}
