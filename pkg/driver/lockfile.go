package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName sits next to clarity.yml.
const LockfileName = "clarity.lock"

// Lockfile models the clarity.lock contents: the pinned commit and source
// digest of every git contract.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Contracts []*LockedContract
}

// LockedContract captures a single fetched contract.
type LockedContract struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      strings.TrimSpace(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Contracts: []*LockedContract{},
	}
}

// LoadLockfile parses clarity.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the entry locked for the named contract.
func (l *Lockfile) Find(name string) (*LockedContract, bool) {
	if l == nil {
		return nil, false
	}
	for _, entry := range l.Contracts {
		if entry != nil && entry.Name == name {
			return entry, true
		}
	}
	return nil, false
}

// Upsert records entry, replacing any entry of the same name. It reports
// whether the lockfile changed.
func (l *Lockfile) Upsert(entry *LockedContract) bool {
	for i, existing := range l.Contracts {
		if existing == nil || existing.Name != entry.Name {
			continue
		}
		if *existing == *entry {
			return false
		}
		l.Contracts[i] = entry
		return true
	}
	l.Contracts = append(l.Contracts, entry)
	l.normalize()
	return true
}

// Retain drops entries whose names keep rejects. It reports whether any
// entry was removed.
func (l *Lockfile) Retain(keep func(name string) bool) bool {
	out := l.Contracts[:0]
	for _, entry := range l.Contracts {
		if entry != nil && keep(entry.Name) {
			out = append(out, entry)
		}
	}
	removed := len(out) != len(l.Contracts)
	l.Contracts = out
	return removed
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = strings.TrimSpace(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Contracts, func(i, j int) bool {
		return l.Contracts[i].Name < l.Contracts[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	contracts := make([]lockfileContract, 0, len(l.Contracts))
	for _, entry := range l.Contracts {
		if entry == nil {
			continue
		}
		contracts = append(contracts, lockfileContract{
			Name:     entry.Name,
			Version:  entry.Version,
			Source:   entry.Source,
			Checksum: entry.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Contracts: contracts,
	}
}

type lockfileDisk struct {
	Root      string             `yaml:"root"`
	Generated string             `yaml:"generated"`
	Tool      string             `yaml:"tool"`
	Contracts []lockfileContract `yaml:"contracts"`
}

type lockfileContract struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      strings.TrimSpace(d.Root),
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Contracts: make([]*LockedContract, 0, len(d.Contracts)),
	}
	for _, entry := range d.Contracts {
		lock.Contracts = append(lock.Contracts, &LockedContract{
			Name:     strings.TrimSpace(entry.Name),
			Version:  strings.TrimSpace(entry.Version),
			Source:   strings.TrimSpace(entry.Source),
			Checksum: strings.TrimSpace(entry.Checksum),
		})
	}
	lock.normalize()
	return lock
}
