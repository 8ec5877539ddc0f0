package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndLoadLockfile(t *testing.T) {
	lock := &Lockfile{
		Root:      "demo",
		Tool:      "clarity-check 0.0.0-dev",
		Generated: "2025-01-01T00:00:00Z",
		Contracts: []*LockedContract{
			{
				Name:     "oracle",
				Version:  " v1.0.0@abc ",
				Source:   " git+https://example.com/oracle.git@abc ",
				Checksum: " deadbeef ",
			},
			{
				Name:    "feeds",
				Version: "abc",
				Source:  "git+https://example.com/feeds.git@abc",
			},
		},
	}

	path := filepath.Join(t.TempDir(), LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Index(text, "name: feeds") > strings.Index(text, "name: oracle") {
		t.Fatalf("expected contracts sorted by name:\n%s", text)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile error: %v", err)
	}
	if loaded.Root != "demo" || loaded.Tool != "clarity-check 0.0.0-dev" {
		t.Fatalf("metadata unexpected: %#v", loaded)
	}
	if len(loaded.Contracts) != 2 {
		t.Fatalf("Contracts length = %d, want 2", len(loaded.Contracts))
	}
	oracle, ok := loaded.Find("oracle")
	if !ok {
		t.Fatalf("oracle entry missing")
	}
	if oracle.Version != "v1.0.0@abc" || oracle.Checksum != "deadbeef" {
		t.Fatalf("fields not trimmed: %#v", oracle)
	}
}

func TestLockfileUpsertAndRetain(t *testing.T) {
	lock := NewLockfile("demo", "test")
	entry := &LockedContract{Name: "oracle", Version: "abc", Source: "git+x@abc", Checksum: "1"}
	if !lock.Upsert(entry) {
		t.Fatalf("first upsert should change the lockfile")
	}
	same := *entry
	if lock.Upsert(&same) {
		t.Fatalf("identical upsert should not change the lockfile")
	}
	updated := same
	updated.Checksum = "2"
	if !lock.Upsert(&updated) {
		t.Fatalf("changed checksum should change the lockfile")
	}
	lock.Upsert(&LockedContract{Name: "feeds"})
	if !lock.Retain(func(name string) bool { return name == "oracle" }) {
		t.Fatalf("Retain should report removal")
	}
	if len(lock.Contracts) != 1 || lock.Contracts[0].Checksum != "2" {
		t.Fatalf("unexpected contracts %#v", lock.Contracts)
	}
}

func TestLoadLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	writeFile(t, path, `
root: demo
packages: []
`)
	if _, err := LoadLockfile(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
