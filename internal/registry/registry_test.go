package registry

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestRegistryAddIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := &Registry{Projects: []Entry{}}
	e := Entry{Root: "/src/a", Name: "a", Backend: "git"}

	if !reg.Add(e) {
		t.Fatal("first Add() = false, want true")
	}
	if reg.Add(e) {
		t.Error("second Add() = true, want false")
	}
	if len(reg.Projects) != 1 {
		t.Errorf("len(Projects) = %d, want 1", len(reg.Projects))
	}
}

func TestRegistryRemove(t *testing.T) {
	t.Parallel()

	reg := &Registry{Projects: []Entry{{Root: "/src/a", Name: "a"}, {Root: "/src/b", Name: "b"}}}

	if !reg.Remove("/src/a") {
		t.Fatal("Remove(/src/a) = false, want true")
	}
	if reg.Remove("/src/a") {
		t.Error("Remove(/src/a) twice = true, want false")
	}
	if reg.Contains("/src/a") || !reg.Contains("/src/b") {
		t.Errorf("Projects after remove = %+v", reg.Projects)
	}
}

func TestRegistryRemoveUnder(t *testing.T) {
	t.Parallel()

	reg := &Registry{Projects: []Entry{
		{Root: "/src/work/a", Name: "a"},
		{Root: "/src/work/b", Name: "b"},
		{Root: "/src/workshop", Name: "workshop"},
		{Root: "/src/work", Name: "work"},
	}}

	removed := reg.RemoveUnder("/src/work/")
	if len(removed) != 3 {
		t.Fatalf("RemoveUnder removed %d entries, want 3: %+v", len(removed), removed)
	}
	if len(reg.Projects) != 1 || reg.Projects[0].Root != "/src/workshop" {
		t.Errorf("Projects after RemoveUnder = %+v, want only /src/workshop", reg.Projects)
	}
}

func TestIsUnder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/a/b", "/a", true},
		{"/a", "/a", true},
		{"/ab", "/a", false},
		{"/a/b/c", "/a/b/", true},
		{"/b", "/a", false},
	}

	for _, tt := range tests {
		if got := IsUnder(tt.path, tt.dir); got != tt.want {
			t.Errorf("IsUnder(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}

func TestRegistryFind(t *testing.T) {
	t.Parallel()

	reg := &Registry{Projects: []Entry{{Root: "/src/api", Name: "api"}}}

	if e, err := reg.Find("api"); err != nil || e.Root != "/src/api" {
		t.Errorf("Find(api) = %+v, %v", e, err)
	}
	if e, err := reg.Find("/src/api"); err != nil || e.Name != "api" {
		t.Errorf("Find(/src/api) = %+v, %v", e, err)
	}
	if _, err := reg.Find("web"); err == nil {
		t.Error("Find(web) = nil error, want not found")
	}
}

func TestRegistryMatch(t *testing.T) {
	t.Parallel()

	reg := &Registry{Projects: []Entry{
		{Root: "/src/frontend", Name: "frontend"},
		{Root: "/src/backend", Name: "backend"},
		{Root: "/src/infra", Name: "infra"},
	}}

	got := reg.Match("bknd")
	if len(got) == 0 || got[0].Name != "backend" {
		t.Errorf("Match(bknd) = %+v, want backend first", got)
	}
	if all := reg.Match(""); len(all) != 3 {
		t.Errorf("Match(\"\") returned %d entries, want 3", len(all))
	}
	if none := reg.Match("zzz"); len(none) != 0 {
		t.Errorf("Match(zzz) = %+v, want none", none)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	reg, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Projects == nil {
		t.Error("Load() of missing file returned nil Projects, want initialized empty list")
	}
}

func TestStoreLoadNullProjects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte(`{"projects": null}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Projects == nil {
		t.Error("Load() kept nil Projects, want normalized empty list")
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil {
		t.Error("Load() of corrupt file = nil error, want parse error")
	}
}

func TestStoreSaveRefusesUninitialized(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.json")
	s := NewStore(path)

	existing := &Registry{Projects: []Entry{{Root: "/src/a", Name: "a"}}}
	if err := s.save(existing); err != nil {
		t.Fatalf("save(existing) error = %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, reg := range []*Registry{nil, {}} {
		if err := s.save(reg); !errors.Is(err, ErrUninitialized) {
			t.Errorf("save(%+v) error = %v, want ErrUninitialized", reg, err)
		}
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("registry changed after refused write:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestStoreUpdateRefusesNilProjects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.json")
	s := NewStore(path)
	if err := s.Update(func(reg *Registry) bool { return reg.Add(Entry{Root: "/src/a", Name: "a"}) }); err != nil {
		t.Fatal(err)
	}

	err := s.Update(func(reg *Registry) bool {
		reg.Projects = nil
		return true
	})
	if !errors.Is(err, ErrUninitialized) {
		t.Errorf("Update() error = %v, want ErrUninitialized", err)
	}

	reg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reg.Contains("/src/a") {
		t.Errorf("registry lost content after refused write: %+v", reg.Projects)
	}
}

func TestStoreSaveEmptyAfterExplicitForget(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	if err := s.save(&Registry{Projects: []Entry{{Root: "/src/a", Name: "a"}}}); err != nil {
		t.Fatal(err)
	}

	err := s.Update(func(reg *Registry) bool { return reg.Remove("/src/a") })
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Projects) != 0 {
		t.Errorf("Projects = %+v, want empty after forgetting the last project", reg.Projects)
	}
}

func TestStoreUpdateNoChangeSkipsWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.json")
	s := NewStore(path)

	if err := s.Update(func(*Registry) bool { return false }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("registry file written for unchanged update: %v", err)
	}
}

func TestStoreUpdateConcurrentMerges(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "projects.json"))
	roots := []string{"/src/a", "/src/b", "/src/c", "/src/d", "/src/e", "/src/f"}

	var wg sync.WaitGroup
	for _, root := range roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(func(reg *Registry) bool {
				return reg.Add(Entry{Root: root, Name: filepath.Base(root)})
			})
			if err != nil {
				t.Errorf("Update(%s) error = %v", root, err)
			}
		}()
	}
	wg.Wait()

	reg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, root := range roots {
		if !reg.Contains(root) {
			t.Errorf("registry lost concurrent add of %s: %+v", root, reg.Projects)
		}
	}
}
