package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are probed in order under the project root. Values never
// override variables already present in the process environment.
var envFiles = []string{".env", ".env.local"}

// LoadEnv loads environment files from the project root and returns the
// names of the files that were applied.
func LoadEnv(root string) []string {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			continue
		}
		loaded = append(loaded, name)
	}
	return loaded
}
