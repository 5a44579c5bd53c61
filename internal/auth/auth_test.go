package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobLoach/duo/internal/foundation"
)

func TestEnvProvider(t *testing.T) {
	t.Run("duo token wins", func(t *testing.T) {
		t.Setenv("DUO_TOKEN", "duo-secret")
		t.Setenv("GITHUB_TOKEN", "gh-secret")

		tok := NewEnvProvider().Token()
		require.True(t, tok.IsSome())
		assert.Equal(t, "duo-secret", tok.Unwrap())
	})

	t.Run("github token as fallback", func(t *testing.T) {
		t.Setenv("DUO_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "gh-secret")

		tok := NewEnvProvider().Token()
		require.True(t, tok.IsSome())
		assert.Equal(t, "gh-secret", tok.Unwrap())
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv("DUO_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "")

		assert.True(t, NewEnvProvider().Token().IsNone())
	})
}

func TestNetrcProvider(t *testing.T) {
	t.Run("api machine password", func(t *testing.T) {
		path := writeNetrc(t, "machine api.github.com\n  login duo\n  password s3cr3t\n")

		tok := NewNetrcProvider(path).Token()
		require.True(t, tok.IsSome())
		assert.Equal(t, "s3cr3t", tok.Unwrap())
	})

	t.Run("bare host fallback", func(t *testing.T) {
		path := writeNetrc(t, "machine github.com login duo password hunter2\n")

		tok := NewNetrcProvider(path).Token()
		require.True(t, tok.IsSome())
		assert.Equal(t, "hunter2", tok.Unwrap())
	})

	t.Run("missing file", func(t *testing.T) {
		tok := NewNetrcProvider(filepath.Join(t.TempDir(), "nope")).Token()
		assert.True(t, tok.IsNone())
	})

	t.Run("unrelated machines", func(t *testing.T) {
		path := writeNetrc(t, "machine example.com login x password y\n")
		assert.True(t, NewNetrcProvider(path).Token().IsNone())
	})
}

func TestRegistryOrder(t *testing.T) {
	r := &Registry{}
	r.Register(stubProvider{name: "first", token: foundation.None[string]()})
	r.Register(stubProvider{name: "second", token: foundation.Some("tok")})
	r.Register(stubProvider{name: "third", token: foundation.Some("never")})

	tok := r.Lookup()
	require.True(t, tok.IsSome())
	assert.Equal(t, "tok", tok.Unwrap().Value)
	assert.Equal(t, "second", tok.Unwrap().Source)
}

func TestRegistryEmpty(t *testing.T) {
	r := &Registry{}
	r.Register(stubProvider{name: "only", token: foundation.None[string]()})
	assert.True(t, r.Lookup().IsNone())
}

type stubProvider struct {
	name  string
	token foundation.Option[string]
}

func (s stubProvider) Name() string                     { return s.name }
func (s stubProvider) Token() foundation.Option[string] { return s.token }

func writeNetrc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".netrc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
