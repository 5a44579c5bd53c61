package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RobLoach/duo/internal/errors"
)

// ManifestName is the optional per-project configuration file.
const ManifestName = "duo.yml"

// Duofile is the duo.yml manifest. Every field is optional; flags take
// precedence over anything set here.
type Duofile struct {
	// Output is the artifact directory.
	Output string `yaml:"output,omitempty"`

	// Plugins are transform plugin names in pipeline order.
	Plugins []string `yaml:"plugins,omitempty"`

	Cache struct {
		// Enabled distinguishes an explicit false from an absent key.
		Enabled *bool  `yaml:"enabled,omitempty"`
		Dir     string `yaml:"dir,omitempty"`
	} `yaml:"cache,omitempty"`

	Watch struct {
		// RebuildEvery forces periodic rebuilds, as a Go duration string.
		RebuildEvery string `yaml:"rebuild_every,omitempty"`
	} `yaml:"watch,omitempty"`

	Notify struct {
		URL     string `yaml:"url,omitempty"`
		Subject string `yaml:"subject,omitempty"`
	} `yaml:"notify,omitempty"`
}

// LoadDuofile reads the manifest from the project root. A missing file is
// not an error; the manifest is optional. Environment variables in the
// content are expanded before parsing.
func LoadDuofile(root string) (*Duofile, error) {
	path := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "cannot read "+ManifestName)
	}

	expanded := os.ExpandEnv(string(data))

	var d Duofile
	if err := yaml.Unmarshal([]byte(expanded), &d); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "cannot parse "+ManifestName)
	}
	return &d, nil
}

// Merge fills manifest values into fields the command line left unset.
// A nil receiver is a no-op, so a missing manifest needs no special case.
func (d *Duofile) Merge(c *RunConfig) error {
	if d == nil {
		return nil
	}

	if c.Output == "" {
		c.Output = d.Output
	}
	if len(c.Plugins) == 0 {
		c.Plugins = append(c.Plugins, d.Plugins...)
	}
	if c.UseCache && d.Cache.Enabled != nil {
		c.UseCache = *d.Cache.Enabled
	}
	if c.CacheDir == "" {
		c.CacheDir = d.Cache.Dir
	}
	if c.NotifyURL == "" {
		c.NotifyURL = d.Notify.URL
	}
	if c.NotifySubject == "" {
		c.NotifySubject = d.Notify.Subject
	}
	if c.RebuildEvery == 0 && d.Watch.RebuildEvery != "" {
		every, err := time.ParseDuration(d.Watch.RebuildEvery)
		if err != nil {
			return errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "invalid watch.rebuild_every in "+ManifestName)
		}
		c.RebuildEvery = every
	}
	return nil
}
