// Package auth locates the access token attached to engine sessions for
// authenticated component fetches. Lookup walks an ordered provider chain;
// a missing token is a normal outcome, not an error.
package auth

import (
	"github.com/RobLoach/duo/internal/foundation"
)

// Token is a credential found by a provider, tagged with where it came from.
type Token struct {
	Value  string
	Source string
}

// Provider is one place a token can come from.
type Provider interface {
	// Name returns a human-readable name for this provider (for logging).
	Name() string

	// Token returns the credential if this provider has one.
	Token() foundation.Option[string]
}

// Registry holds providers in precedence order.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with the standard chain: process
// environment first, then the user's netrc file.
func NewRegistry() *Registry {
	return &Registry{
		providers: []Provider{
			NewEnvProvider(),
			NewNetrcProvider(""),
		},
	}
}

// Register appends a provider at the end of the chain.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Lookup returns the first token any provider yields.
func (r *Registry) Lookup() foundation.Option[Token] {
	for _, p := range r.providers {
		if tok := p.Token(); tok.IsSome() {
			return foundation.Some(Token{Value: tok.Unwrap(), Source: p.Name()})
		}
	}
	return foundation.None[Token]()
}

// DefaultRegistry is a package-level instance for convenience.
var DefaultRegistry = NewRegistry()

// Lookup is a convenience function that uses the default registry.
func Lookup() foundation.Option[Token] {
	return DefaultRegistry.Lookup()
}
