package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterDeliversInSubscriptionOrder(t *testing.T) {
	em := NewEmitter()
	var got []string

	em.On(EventRun, func(p Payload) { got = append(got, "first:"+p.Label()) })
	em.On(EventRun, func(p Payload) { got = append(got, "second:"+p.Label()) })
	em.On(EventWrite, func(p Payload) { got = append(got, "write") })

	em.Emit(EventRun, LabelPayload("x"))

	assert.Equal(t, []string{"first:x", "second:x"}, got)
}

func TestEmitterIgnoresNilListener(t *testing.T) {
	em := NewEmitter()
	em.On(EventRun, nil)
	// Must not panic.
	em.Emit(EventRun, LabelPayload("x"))
}

func TestPayloadUnion(t *testing.T) {
	entry := FileEntry("src/app.js")

	p := EntityPayload(entry)
	got, ok := p.Entity()
	require.True(t, ok)
	assert.Equal(t, "src/app.js", got.Slug())
	assert.Empty(t, p.Label())

	p = LabelPayload("markdown")
	_, ok = p.Entity()
	assert.False(t, ok)
	assert.Equal(t, "markdown", p.Label())
}

func TestFileEntry(t *testing.T) {
	e := FileEntry("lib/index.css")
	assert.Equal(t, "css", e.Type)
	assert.Equal(t, "lib/index.css", e.Slug())
	assert.False(t, e.Virtual)

	noExt := FileEntry("Makefile")
	assert.Equal(t, "js", noExt.Type)
}

func TestStdinEntry(t *testing.T) {
	e := StdinEntry("", "var a = 1;")
	assert.Equal(t, "source.js", e.Path)
	assert.Equal(t, "js", e.Type)
	assert.True(t, e.Virtual)
	assert.Equal(t, "var a = 1;", e.Source)

	css := StdinEntry("css", "body {}")
	assert.Equal(t, "source.css", css.Path)
}
