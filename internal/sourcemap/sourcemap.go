package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Map is a source-map v3 document.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Identity builds a map that relates every output line back to the same
// line of the single input source. Mapping granularity is one segment per
// line, which is what a transform pipeline without position tracking can
// honestly claim.
func Identity(file, source string) *Map {
	lines := strings.Count(source, "\n") + 1

	segments := make([]string, 0, lines)
	for i := 0; i < lines; i++ {
		if i == 0 {
			// generated column, source index, source line, source column
			segments = append(segments, encodeSegment(0, 0, 0, 0))
			continue
		}
		// Column resets per line; source line advances by one.
		segments = append(segments, encodeSegment(0, 0, 1, 0))
	}

	return &Map{
		Version:        3,
		File:           file,
		Sources:        []string{file},
		SourcesContent: []string{source},
		Names:          []string{},
		Mappings:       strings.Join(segments, ";"),
	}
}

// JSON renders the map document.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// Comment renders the map as an inline data-URI trailing comment in the
// comment syntax of the given artifact type.
func (m *Map) Comment(typ string) (string, error) {
	raw, err := m.JSON()
	if err != nil {
		return "", err
	}
	uri := "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(raw)
	return annotation(typ, uri), nil
}

// SidecarName returns the conventional sidecar file name for an artifact.
func SidecarName(artifact string) string {
	return artifact + ".map"
}

// SidecarRef renders the trailing comment pointing at a sidecar map file.
func SidecarRef(typ, sidecar string) string {
	return annotation(typ, sidecar)
}

// annotation wraps a sourceMappingURL value in the right comment syntax.
// CSS needs block comments; everything else gets the line form.
func annotation(typ, url string) string {
	if typ == "css" {
		return "/*# sourceMappingURL=" + url + " */"
	}
	return "//# sourceMappingURL=" + url
}
