package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"clarity/analysis-go/pkg/analysisdb"
)

// ResolveHome returns the cache root: $CLARITY_HOME, or ~/.clarity.
func ResolveHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("CLARITY_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve CLARITY_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".clarity"), nil
}

// GitFetcher clones git contracts into a shared cache, one checkout per
// pinned version.
type GitFetcher struct {
	cacheDir string
}

func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{cacheDir: cacheDir}
}

// CheckoutDir is where the checkout of a locked contract lives.
func CheckoutDir(cacheDir string, locked *LockedContract) string {
	return filepath.Join(cacheDir, "src", sanitizePathSegment(locked.Name), sanitizePathSegment(locked.Version))
}

// Fetch makes sure the pinned revision of spec is checked out and returns
// its lock entry.
func (g *GitFetcher) Fetch(spec *ContractSpec) (*LockedContract, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("contract %q: git URL required", spec.Name)
	}

	baseDir := filepath.Join(g.cacheDir, "src", sanitizePathSegment(spec.Name))
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(filepath.Join(baseDir, sanitizePathSegment(version), spec.Path))
	if err != nil {
		return nil, fmt.Errorf("contract %q: read %s from %s: %w", spec.Name, spec.Path, url, err)
	}
	return &LockedContract{
		Name:     spec.Name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: analysisdb.SourceDigest(source),
	}, nil
}

func ensureGitCheckout(baseDir, url string, spec *ContractSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return rev, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *ContractSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git contracts require rev, tag, or branch")
}

// Install fetches every git contract of manifest and records it in lock.
// Entries for contracts no longer in the manifest are dropped. It reports
// whether the lockfile changed.
func Install(manifest *Manifest, lock *Lockfile, fetcher *GitFetcher) (bool, error) {
	changed := false
	for _, spec := range manifest.Contracts {
		if !spec.IsGit() {
			continue
		}
		entry, err := fetcher.Fetch(spec)
		if err != nil {
			return changed, fmt.Errorf("install %s: %w", spec.Name, err)
		}
		if lock.Upsert(entry) {
			changed = true
		}
	}
	if lock.Retain(func(name string) bool {
		spec, ok := manifest.Contract(name)
		return ok && spec.IsGit()
	}) {
		changed = true
	}
	return changed, nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" || segment == "." || segment == ".." {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
