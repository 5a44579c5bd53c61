// Package lang classifies piped source content when no explicit type flag
// is given, and canonicalizes declared type names.
package lang

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/foundation"
)

// aliases folds the common long-form names onto the short types the rest of
// the pipeline uses. Unknown types pass through untouched so third-party
// plugins can claim them.
var aliases = foundation.NewNormalizer(map[string]string{
	"js":         "js",
	"javascript": "js",
	"css":        "css",
	"json":       "json",
	"html":       "html",
	"htm":        "html",
	"md":         "md",
	"markdown":   "md",
	"text":       "text",
	"txt":        "text",
}, "")

// Canonical normalizes a declared content type. Known aliases collapse to
// their short form; anything else is lowercased and trimmed.
func Canonical(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if v, err := aliases.NormalizeWithError(cleaned); err == nil {
		return v
	}
	return cleaned
}

// Detect sniffs the content type of piped source. The error carries the
// exact message the CLI prints when classification fails.
func Detect(src []byte) (string, error) {
	trimmed := bytes.TrimSpace(stripBOM(src))
	if len(trimmed) == 0 {
		return "", errors.DetectionError()
	}

	if isJSON(trimmed) {
		return "json", nil
	}
	if isHTML(trimmed) {
		return "html", nil
	}
	if isCSS(trimmed) {
		return "css", nil
	}
	if isJS(trimmed) {
		return "js", nil
	}

	return "", errors.DetectionError()
}

func stripBOM(src []byte) []byte {
	return bytes.TrimPrefix(src, []byte{0xEF, 0xBB, 0xBF})
}

func isJSON(src []byte) bool {
	if src[0] != '{' && src[0] != '[' {
		return false
	}
	return json.Valid(src)
}

func isHTML(src []byte) bool {
	lower := bytes.ToLower(src)
	if bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html")) {
		return true
	}
	// A tag soup opener followed by a matching closer is enough.
	return src[0] == '<' && bytes.Contains(src, []byte("</"))
}

// cssAtRules are the prefixes that mark a stylesheet before any selector
// block appears.
var cssAtRules = []string{"@import", "@media", "@charset", "@font-face", "@keyframes", "@supports"}

func isCSS(src []byte) bool {
	text := string(src)
	for _, at := range cssAtRules {
		if strings.HasPrefix(text, at) {
			return true
		}
	}

	// Selector block: "name { prop: value" with no JS keywords in front.
	open := strings.Index(text, "{")
	if open <= 0 {
		return false
	}
	selector := strings.TrimSpace(text[:open])
	if selector == "" || strings.ContainsAny(selector, "=();") {
		return false
	}
	block := text[open:]
	close := strings.Index(block, "}")
	if close < 0 {
		return false
	}
	return strings.Contains(block[:close], ":")
}

// jsMarkers are substrings that only plausibly appear in script source.
var jsMarkers = []string{
	"function", "var ", "let ", "const ", "=>", "return ",
	"require(", "module.exports", "import ", "export ", "window.", "document.",
}

func isJS(src []byte) bool {
	text := string(src)
	for _, marker := range jsMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	// A bare expression statement still counts.
	return strings.HasSuffix(strings.TrimSpace(text), ";") && strings.Contains(text, "=")
}
