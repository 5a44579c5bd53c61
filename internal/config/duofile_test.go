package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobLoach/duo/internal/errors"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(contents), 0o644))
	return root
}

func TestLoadDuofileMissing(t *testing.T) {
	d, err := LoadDuofile(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestLoadDuofile(t *testing.T) {
	t.Setenv("DUO_TEST_OUTPUT", "public")
	root := writeManifest(t, `
output: ${DUO_TEST_OUTPUT}
plugins:
  - markdown
  - text
cache:
  enabled: false
  dir: .duo
watch:
  rebuild_every: 45s
notify:
  url: nats://localhost:4222
  subject: ci.bundles
`)

	d, err := LoadDuofile(root)
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "public", d.Output)
	assert.Equal(t, []string{"markdown", "text"}, d.Plugins)
	require.NotNil(t, d.Cache.Enabled)
	assert.False(t, *d.Cache.Enabled)
	assert.Equal(t, ".duo", d.Cache.Dir)
	assert.Equal(t, "45s", d.Watch.RebuildEvery)
	assert.Equal(t, "nats://localhost:4222", d.Notify.URL)
	assert.Equal(t, "ci.bundles", d.Notify.Subject)
}

func TestLoadDuofileInvalid(t *testing.T) {
	root := writeManifest(t, "output: [unclosed\n")

	_, err := LoadDuofile(root)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestMergeFlagsWin(t *testing.T) {
	d := &Duofile{Output: "public", Plugins: []string{"markdown"}}
	d.Notify.URL = "nats://file:4222"

	c := &RunConfig{
		Output:    "dist",
		Plugins:   []string{"json"},
		UseCache:  true,
		NotifyURL: "nats://flag:4222",
	}
	require.NoError(t, d.Merge(c))

	assert.Equal(t, "dist", c.Output)
	assert.Equal(t, []string{"json"}, c.Plugins)
	assert.Equal(t, "nats://flag:4222", c.NotifyURL)
}

func TestMergeFillsUnset(t *testing.T) {
	enabled := false
	d := &Duofile{Output: "public", Plugins: []string{"markdown"}}
	d.Cache.Enabled = &enabled
	d.Cache.Dir = ".duo"
	d.Watch.RebuildEvery = "45s"
	d.Notify.Subject = "ci.bundles"

	c := &RunConfig{UseCache: true}
	require.NoError(t, d.Merge(c))

	assert.Equal(t, "public", c.Output)
	assert.Equal(t, []string{"markdown"}, c.Plugins)
	assert.False(t, c.UseCache)
	assert.Equal(t, ".duo", c.CacheDir)
	assert.Equal(t, 45*time.Second, c.RebuildEvery)
	assert.Equal(t, "ci.bundles", c.NotifySubject)
}

func TestMergeCannotReenableCache(t *testing.T) {
	enabled := true
	d := &Duofile{}
	d.Cache.Enabled = &enabled

	c := &RunConfig{UseCache: false}
	require.NoError(t, d.Merge(c))
	assert.False(t, c.UseCache, "a manifest must not override an explicit --no-cache")
}

func TestMergeInvalidRebuildEvery(t *testing.T) {
	d := &Duofile{}
	d.Watch.RebuildEvery = "whenever"

	err := d.Merge(&RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestMergeNilManifest(t *testing.T) {
	var d *Duofile
	c := &RunConfig{Output: "dist"}
	require.NoError(t, d.Merge(c))
	assert.Equal(t, "dist", c.Output)
}
