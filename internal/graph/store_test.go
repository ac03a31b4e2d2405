package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestWriteAndLoad tests the store round trip.
func TestWriteAndLoad(t *testing.T) {
	t.Parallel()

	t.Run("round trips a mapping", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "example-com.json")
		adj := Adjacency{
			"example.com":       {"example.com/about", "example.com/blog"},
			"example.com/about": {},
		}

		if err := Write(adj, path); err != nil {
			t.Fatalf("failed to write store: %v", err)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load store: %v", err)
		}
		if !reflect.DeepEqual(loaded, adj) {
			t.Errorf("loaded mapping differs: got %v, want %v", loaded, adj)
		}
	})

	t.Run("written file carries the urls union key", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "store.json")
		adj := Adjacency{"example.com": {"example.com/a"}}

		if err := Write(adj, path); err != nil {
			t.Fatalf("failed to write store: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var raw map[string][]string
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("failed to parse file: %v", err)
		}

		want := []string{"example.com", "example.com/a"}
		if !reflect.DeepEqual(raw["urls"], want) {
			t.Errorf("urls key = %v, want %v", raw["urls"], want)
		}
	})

	t.Run("missing file yields an empty mapping", func(t *testing.T) {
		t.Parallel()

		adj, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(adj) != 0 {
			t.Errorf("expected empty mapping, got %v", adj)
		}
	})

	t.Run("accepts legacy format without urls key", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "legacy.json")
		legacy := `{"example.com": ["example.com/a"], "example.com/a": []}`
		if err := os.WriteFile(path, []byte(legacy), 0600); err != nil {
			t.Fatalf("failed to write legacy file: %v", err)
		}

		adj, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load legacy store: %v", err)
		}
		if len(adj) != 2 {
			t.Errorf("expected 2 keys, got %d", len(adj))
		}
	})

	t.Run("backs up a corrupt file and starts fresh", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "corrupt.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		adj, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(adj) != 0 {
			t.Errorf("expected empty mapping, got %v", adj)
		}

		if _, err := os.Stat(path + BackupSuffix); err != nil {
			t.Errorf("expected backup file to exist: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected original to be renamed away")
		}
	})
}

// TestClean tests asset filtering of keys and edge lists.
func TestClean(t *testing.T) {
	t.Parallel()

	adj := Adjacency{
		"example.com":         {"example.com/img.png", "example.com/b", "example.com/b", "example.com/a"},
		"example.com/app.js":  {"example.com/a"},
		"example.com/post.md": {},
	}

	cleaned := Clean(adj)

	if _, ok := cleaned["example.com/app.js"]; ok {
		t.Error("asset key should be dropped")
	}
	if _, ok := cleaned["example.com/post.md"]; !ok {
		t.Error("markdown key should survive cleaning")
	}

	want := []string{"example.com/a", "example.com/b"}
	if !reflect.DeepEqual(cleaned["example.com"], want) {
		t.Errorf("expected deduplicated sorted page-like neighbors %v, got %v", want, cleaned["example.com"])
	}
}

// TestNodes tests the sorted union of keys and neighbors.
func TestNodes(t *testing.T) {
	t.Parallel()

	adj := Adjacency{
		"example.com/b": {"example.com/c"},
		"example.com/a": {"example.com/b"},
	}

	want := []string{"example.com/a", "example.com/b", "example.com/c"}
	if got := adj.Nodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
}

// TestMigrateLegacy tests the one-time shared-store migration.
func TestMigrateLegacy(t *testing.T) {
	t.Parallel()

	t.Run("migrates when per-domain file is absent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		legacy := filepath.Join(dir, LegacyPath)
		domain := filepath.Join(dir, "example-com.json")

		content := `{"example.com": ["example.com/a", "example.com/img.png"]}`
		if err := os.WriteFile(legacy, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write legacy store: %v", err)
		}

		migrated, err := MigrateLegacy(legacy, domain)
		if err != nil {
			t.Fatalf("migration failed: %v", err)
		}
		if !migrated {
			t.Fatal("expected migration to happen")
		}

		adj, err := Load(domain)
		if err != nil {
			t.Fatalf("failed to load migrated store: %v", err)
		}
		// The asset neighbor must not survive migration.
		want := []string{"example.com/a"}
		if !reflect.DeepEqual(adj["example.com"], want) {
			t.Errorf("expected cleaned neighbors %v, got %v", want, adj["example.com"])
		}
	})

	t.Run("does nothing when per-domain file exists", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		legacy := filepath.Join(dir, LegacyPath)
		domain := filepath.Join(dir, "example-com.json")

		for _, p := range []string{legacy, domain} {
			if err := os.WriteFile(p, []byte("{}"), 0600); err != nil {
				t.Fatalf("failed to write %s: %v", p, err)
			}
		}

		migrated, err := MigrateLegacy(legacy, domain)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if migrated {
			t.Error("expected no migration when per-domain file exists")
		}
	})
}

// TestDefaultPath tests per-domain filename derivation.
func TestDefaultPath(t *testing.T) {
	t.Parallel()

	if got := DefaultPath("example.com"); got != "example-com.json" {
		t.Errorf("DefaultPath(example.com) = %q, want example-com.json", got)
	}
}
