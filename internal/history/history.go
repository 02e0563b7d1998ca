// Package history records which projects were switched to, so that menus
// can offer recent projects first and `pm switch` without a query can return
// to the previous one.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/raphi011/pm/internal/storage"
)

// MaxEntries bounds the number of remembered accesses.
const MaxEntries = 100

// Entry is one project switched to.
type Entry struct {
	Root        string    `json:"root"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// History holds entries, most recent first.
type History struct {
	Entries []Entry `json:"entries"`
}

// DefaultPath returns ~/.pm/history.json.
func DefaultPath() (string, error) {
	dir, err := storage.StateDir()
	if err != nil {
		return "", fmt.Errorf("get state directory: %w", err)
	}
	return filepath.Join(dir, "history.json"), nil
}

// Load reads the history at path. A missing or corrupt file yields an empty
// history.
func Load(path string) (*History, error) {
	var h History
	if err := storage.LoadJSON(path, &h); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &History{}, nil
		}
		var syntax *json.SyntaxError
		var typ *json.UnmarshalTypeError
		if errors.As(err, &syntax) || errors.As(err, &typ) {
			return &History{}, nil
		}
		return nil, err
	}
	return &h, nil
}

// Record moves root to the front of the history, counting the access.
func (h *History) Record(root string, now time.Time) {
	e := Entry{Root: root}
	if i := slices.IndexFunc(h.Entries, func(e Entry) bool { return e.Root == root }); i >= 0 {
		e = h.Entries[i]
		h.Entries = slices.Delete(h.Entries, i, i+1)
	}
	e.LastAccess = now
	e.AccessCount++
	h.Entries = slices.Insert(h.Entries, 0, e)
	if len(h.Entries) > MaxEntries {
		h.Entries = h.Entries[:MaxEntries]
	}
}

// MostRecent returns the most recently accessed root other than except.
func (h *History) MostRecent(except string) (string, bool) {
	for _, e := range h.Entries {
		if e.Root != except {
			return e.Root, true
		}
	}
	return "", false
}

// Rank returns the recency rank of root, lower is more recent. Roots never
// accessed rank after every recorded one.
func (h *History) Rank(root string) int {
	if i := slices.IndexFunc(h.Entries, func(e Entry) bool { return e.Root == root }); i >= 0 {
		return i
	}
	return len(h.Entries)
}

// RecordAccess records root in the history file at path.
func RecordAccess(path, root string) error {
	h, err := Load(path)
	if err != nil {
		return err
	}
	h.Record(root, time.Now())
	return storage.SaveJSON(path, h)
}
