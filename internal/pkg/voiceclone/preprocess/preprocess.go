// Package preprocess cleans synthesis text before it is sent to the model.
// The model server does its own linguistic frontend work, so this stays
// limited to normalization the wire format cares about.
package preprocess

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxTextLength caps a single synthesis request.
const MaxTextLength = 10000

var whitespaceRe = regexp.MustCompile(`\s+`)

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
)

// Clean normalizes text for synthesis: NFC form, typographic quotes and
// dashes folded to ASCII, whitespace collapsed.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = quoteReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Validate rejects text that is empty after cleaning or over the length cap.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if len(text) > MaxTextLength {
		return fmt.Errorf("text exceeds maximum length of %d characters", MaxTextLength)
	}
	return nil
}
