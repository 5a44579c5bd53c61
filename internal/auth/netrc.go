package auth

import (
	"os"
	"path/filepath"

	"github.com/bgentry/go-netrc/netrc"

	"github.com/RobLoach/duo/internal/foundation"
)

// netrcMachines are tried in order. The API host is what credential
// helpers write; the bare host is the older convention.
var netrcMachines = []string{"api.github.com", "github.com"}

// NetrcProvider reads tokens from a netrc file.
type NetrcProvider struct {
	path string
}

// NewNetrcProvider creates a provider over the given file. An empty path
// means ~/.netrc.
func NewNetrcProvider(path string) *NetrcProvider {
	return &NetrcProvider{path: path}
}

func (p *NetrcProvider) Name() string {
	return "netrc"
}

func (p *NetrcProvider) Token() foundation.Option[string] {
	path := p.path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return foundation.None[string]()
		}
		path = filepath.Join(home, ".netrc")
	}

	rc, err := netrc.ParseFile(path)
	if err != nil {
		// Unreadable or absent netrc just means no credential here.
		return foundation.None[string]()
	}

	for _, host := range netrcMachines {
		machine := rc.FindMachine(host)
		if machine == nil || machine.IsDefault() {
			continue
		}
		if machine.Password != "" {
			return foundation.Some(machine.Password)
		}
		if machine.Login != "" {
			return foundation.Some(machine.Login)
		}
	}
	return foundation.None[string]()
}
