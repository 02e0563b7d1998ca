package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the directory-local config files, in lookup order.
var LocalConfigFileNames = []string{".pm.toml", ".pm.yaml", ".pm.yml"}

// Local is the raw content of a directory-local config file.
type Local struct {
	Source string         // file the values were read from
	Values map[string]any // decoded top-level table
}

// Get returns the raw value stored under key.
func (l *Local) Get(key string) (any, bool) {
	if l == nil {
		return nil, false
	}
	v, ok := l.Values[key]
	return v, ok
}

// FindLocal returns the path of the first local config file in dir, or "".
func FindLocal(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadLocal reads the directory-local config in dir.
// Returns nil (no error) if no local config file exists.
// Returns an error only on read or parse failure.
func LoadLocal(dir string) (*Local, error) {
	path := FindLocal(dir)
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", path, err)
	}

	values := map[string]any{}
	if strings.HasSuffix(path, ".toml") {
		err = toml.Unmarshal(data, &values)
	} else {
		err = yaml.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", path, err)
	}
	if values == nil {
		values = map[string]any{}
	}

	return &Local{Source: path, Values: values}, nil
}

// defaultLocalConfig is the template for pm config init --local
const defaultLocalConfig = `# pm local config (per-project commands)
# Place this file at the project root. Commands defined here replace the
# default [[commands]] from ~/.config/pm/config.toml for this project.
# pm asks once before trusting a new local config.

# [[commands]]
# key = "t"
# description = "test"
# type = "compile"
# command = "go test ./..."
# identifier = "test"
#
# [[commands]]
# key = "r"
# description = "run server"
# type = "compile"
# command = "go run ./cmd/server > {instance}.log"
#
# [[commands]]
# key = "f"
# description = "list files"
# type = "bare-call"
# command = { action = "list-files" }
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}

// InitLocal writes the local config template to dir/.pm.toml.
func InitLocal(dir string, force bool) (string, error) {
	path := filepath.Join(dir, LocalConfigFileNames[0])
	return path, writeTemplate(path, defaultLocalConfig, force)
}
