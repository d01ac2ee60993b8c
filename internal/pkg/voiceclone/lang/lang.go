// Package lang tracks the language codes the XTTS-v2 model accepts.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Codes lists the synthesis languages supported by the model, in the order
// the upstream project documents them.
var Codes = []string{
	"en", "es", "fr", "de", "it", "pt", "pl", "tr",
	"ru", "nl", "cs", "ar", "zh-cn", "ja", "hu", "ko",
}

const Default = "en"

func IsSupported(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Name returns the English display name for a supported code, falling back
// to the code itself when the tag does not parse.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// Names returns "code (Name)" lines for every supported language, for help
// text and listings.
func Names() []string {
	out := make([]string, 0, len(Codes))
	for _, c := range Codes {
		out = append(out, c+" ("+Name(c)+")")
	}
	return out
}
