package sourcemap

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFor(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		external    bool
		want        Mode
	}{
		{"neither flag disables maps", false, false, ModeNone},
		{"development alone is inline", true, false, ModeInline},
		{"external alone is a sidecar", false, true, ModeExternal},
		{"external wins over development", true, true, ModeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeFor(tt.development, tt.external))
		})
	}
}

func TestModeForStream(t *testing.T) {
	assert.Equal(t, ModeInline, ModeExternal.ForStream())
	assert.Equal(t, ModeInline, ModeInline.ForStream())
	assert.Equal(t, ModeNone, ModeNone.ForStream())
}

func TestEncodeVLQ(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "C",
		-1: "D",
		16: "gB",
	}
	for n, want := range cases {
		assert.Equal(t, want, encodeVLQ(n), "encodeVLQ(%d)", n)
	}
}

func TestIdentity(t *testing.T) {
	m := Identity("app.js", "line one\nline two\nline three")

	assert.Equal(t, 3, m.Version)
	assert.Equal(t, []string{"app.js"}, m.Sources)
	require.Len(t, m.SourcesContent, 1)
	assert.Equal(t, "AAAA;AACA;AACA", m.Mappings)
}

func TestComment(t *testing.T) {
	m := Identity("app.js", "var a = 1;")

	comment, err := m.Comment("js")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(comment, "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"))

	// The payload must round back to the document.
	payload := strings.TrimPrefix(comment, "//# sourceMappingURL=data:application/json;charset=utf-8;base64,")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"mappings":"AAAA"`)

	cssComment, err := m.Comment("css")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cssComment, "/*# sourceMappingURL="))
	assert.True(t, strings.HasSuffix(cssComment, " */"))
}

func TestSidecar(t *testing.T) {
	assert.Equal(t, "build/app.js.map", SidecarName("build/app.js"))
	assert.Equal(t, "//# sourceMappingURL=app.js.map", SidecarRef("js", "app.js.map"))
	assert.Equal(t, "/*# sourceMappingURL=style.css.map */", SidecarRef("css", "style.css.map"))
}
