package auth

import (
	"os"

	"github.com/RobLoach/duo/internal/foundation"
)

// envVars are checked in order. DUO_TOKEN is the tool-specific override;
// GITHUB_TOKEN covers CI environments that already export one.
var envVars = []string{"DUO_TOKEN", "GITHUB_TOKEN"}

// EnvProvider reads tokens from the process environment.
type EnvProvider struct {
	vars []string
}

// NewEnvProvider creates a provider over the standard variable names.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{vars: envVars}
}

func (p *EnvProvider) Name() string {
	return "environment"
}

func (p *EnvProvider) Token() foundation.Option[string] {
	for _, v := range p.vars {
		if val := os.Getenv(v); val != "" {
			return foundation.Some(val)
		}
	}
	return foundation.None[string]()
}
