// Package storage provides atomic file operations for the JSON state pm keeps
// under ~/.pm/ (project registry, trusted roots).
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// StateDirEnv overrides the state directory (defaults to ~/.pm).
const StateDirEnv = "PM_HOME"

// StateDir returns the state directory, creating it if needed.
func StateDir() (string, error) {
	dir := os.Getenv(StateDirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".pm")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// SaveJSON atomically writes data as JSON to the specified path.
// The data is written to a temp file in the same directory, synced,
// then renamed over path, so readers never observe a partial file.
func SaveJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(jsonData, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// LoadJSON reads JSON from the specified path into dest.
// Returns an error satisfying os.IsNotExist if the file doesn't exist.
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}
