package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobLoach/duo/internal/errors"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"json object", `{"name": "duo", "version": "1.0.0"}`, "json"},
		{"json array", `[1, 2, 3]`, "json"},
		{"html doctype", "<!DOCTYPE html><html><body></body></html>", "html"},
		{"html fragment", "<div class=\"app\">hello</div>", "html"},
		{"css rule", "body { color: red; }", "css"},
		{"css at-rule", "@import url(\"reset.css\");", "css"},
		{"js function", "function add(a, b) { return a + b; }", "js"},
		{"js module", "module.exports = function () {};", "js"},
		{"js const arrow", "const double = (x) => x * 2;", "js"},
		{"js with bom", "\xef\xbb\xbfvar a = 1;", "js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFailure(t *testing.T) {
	for _, src := range []string{"", "   \n\t  ", "just some words"} {
		_, err := Detect([]byte(src))
		require.Error(t, err)
		assert.Equal(t, "could not detect the file type", err.(*errors.DuoError).Message)
		assert.True(t, errors.IsCategory(err, errors.CategoryType))
	}
}

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"js":         "js",
		"JavaScript": "js",
		" CSS ":      "css",
		"markdown":   "md",
		"htm":        "html",
		"coffee":     "coffee",
	}
	for raw, want := range cases {
		assert.Equal(t, want, Canonical(raw), "Canonical(%q)", raw)
	}
}
