package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/RobLoach/duo/internal/errors"
)

// Built-in plugins ship with the binary and register on the global
// registry at startup, the same way database drivers announce themselves.
func init() {
	for _, p := range []Plugin{
		&markdownPlugin{},
		&jsonPlugin{},
		&textPlugin{},
	} {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}

// markdownPlugin compiles markdown to HTML.
type markdownPlugin struct{}

func (p *markdownPlugin) Metadata() Metadata {
	return Metadata{
		Name:        "markdown",
		Description: "compile markdown to html",
		Types:       []string{"md"},
	}
}

func (p *markdownPlugin) Transform(_ context.Context, file *File) error {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(file.Contents), &buf); err != nil {
		return fmt.Errorf("markdown conversion: %w", err)
	}
	file.Contents = buf.String()
	file.Type = "html"
	return nil
}

// jsonPlugin compiles a JSON document to a script module export.
type jsonPlugin struct{}

func (p *jsonPlugin) Metadata() Metadata {
	return Metadata{
		Name:        "json",
		Description: "compile json to a module export",
		Types:       []string{"json"},
	}
}

func (p *jsonPlugin) Transform(_ context.Context, file *File) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(file.Contents)); err != nil {
		if syn, ok := err.(*json.SyntaxError); ok {
			line, col := position(file.Contents, int(syn.Offset))
			return errors.NewSyntax(syn.Error(), file.Path, line, col)
		}
		return err
	}
	file.Contents = "module.exports = " + compact.String() + ";"
	file.Type = "js"
	return nil
}

// textPlugin exports any content as a script string literal.
type textPlugin struct{}

func (p *textPlugin) Metadata() Metadata {
	return Metadata{
		Name:        "text",
		Description: "export raw content as a string",
	}
}

func (p *textPlugin) Transform(_ context.Context, file *File) error {
	literal, err := json.Marshal(file.Contents)
	if err != nil {
		return err
	}
	file.Contents = "module.exports = " + string(literal) + ";"
	file.Type = "js"
	return nil
}

// position converts a byte offset to a one-based line and column.
func position(contents string, offset int) (line, col int) {
	if offset > len(contents) {
		offset = len(contents)
	}
	before := contents[:offset]
	line = strings.Count(before, "\n") + 1
	if idx := strings.LastIndex(before, "\n"); idx >= 0 {
		col = offset - idx
	} else {
		col = offset + 1
	}
	return line, col
}
