// Package console renders build progress as leveled, colored label lines
// on standard error, and adapts engine events onto those levels.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is the semantic class of one progress line.
type Level string

const (
	LevelWrote      Level = "wrote"
	LevelBuilding   Level = "building"
	LevelBuilt      Level = "built"
	LevelInstalling Level = "installing"
	LevelInstalled  Level = "installed"
	LevelFinding    Level = "finding"
	LevelFound      Level = "found"
	LevelUsing      Level = "using"
	LevelError      Level = "error"
	LevelEnd        Level = "end"
)

// labelWidth right-aligns every level under the widest one plus margin.
const labelWidth = 12

// levelColors maps each level to its render style: progress in cyan,
// completion in green, errors in red.
var levelColors = map[Level]*color.Color{
	LevelWrote:      color.New(color.FgGreen),
	LevelBuilding:   color.New(color.FgCyan),
	LevelBuilt:      color.New(color.FgGreen),
	LevelInstalling: color.New(color.FgCyan),
	LevelInstalled:  color.New(color.FgGreen),
	LevelFinding:    color.New(color.FgCyan),
	LevelFound:      color.New(color.FgGreen),
	LevelUsing:      color.New(color.FgCyan),
	LevelError:      color.New(color.FgRed),
	LevelEnd:        color.New(color.FgGreen),
}

// Reporter writes progress lines. Quiet mode suppresses everything except
// errors, which render bare so failures never vanish silently.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
	start time.Time
}

// NewReporter creates a reporter over the given writer, normally stderr.
func NewReporter(w io.Writer, quiet bool) *Reporter {
	return &Reporter{
		w:     w,
		quiet: quiet,
		start: time.Now(),
	}
}

// Quiet reports whether decorative output is suppressed.
func (r *Reporter) Quiet() bool {
	return r.quiet
}

// Log renders one progress line.
func (r *Reporter) Log(level Level, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.quiet {
		if level == LevelError {
			fmt.Fprintln(r.w, label)
		}
		return
	}

	// Escape codes confuse printf padding, so pad by visible width.
	styled := string(level)
	if c, ok := levelColors[level]; ok {
		styled = c.Sprint(styled)
	}
	fmt.Fprintf(r.w, "%s : %s\n", padLeft(styled, len(string(level))), label)
}

// End renders the total elapsed time since the reporter was created.
// Suppressed when quiet.
func (r *Reporter) End() {
	if r.quiet {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.Log(LevelEnd, elapsed.String())
}

// padLeft prefixes spaces for a styled string whose visible width differs
// from its byte length.
func padLeft(styled string, visible int) string {
	pad := labelWidth - visible
	if pad < 0 {
		pad = 0
	}
	out := make([]byte, pad)
	for i := range out {
		out[i] = ' '
	}
	return string(out) + styled
}
