package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"clarity/analysis-go/pkg/analysisdb"
)

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(rel)
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Clarity Check",
			Email: "clarity@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

const oracleSource = `
(define-data-var price int 100)
(define-read-only (current-price) (var-get price))
`

func TestResolveHomeEnv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cache")
	t.Setenv("CLARITY_HOME", target)

	got, err := ResolveHome()
	if err != nil {
		t.Fatalf("ResolveHome error: %v", err)
	}
	if got != target {
		t.Fatalf("ResolveHome = %q, want %q", got, target)
	}
}

func TestResolveHomeDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("CLARITY_HOME", "")
	t.Setenv("HOME", tmp)

	got, err := ResolveHome()
	if err != nil {
		t.Fatalf("ResolveHome error: %v", err)
	}
	if want := filepath.Join(tmp, ".clarity"); got != want {
		t.Fatalf("ResolveHome = %q, want %q", got, want)
	}
}

func TestGitFetcherPinsRevision(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "oracle-repo")
	writeFile(t, filepath.Join(repo, "oracle.clar"), oracleSource)
	rev := initGitRepo(t, repo)

	cacheDir := filepath.Join(root, "cache")
	fetcher := NewGitFetcher(cacheDir)
	spec := &ContractSpec{Name: "oracle", Path: "oracle.clar", Git: repo, Rev: rev}
	entry, err := fetcher.Fetch(spec)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if want := fmt.Sprintf("git+%s@%s", repo, rev); entry.Source != want {
		t.Fatalf("Source = %q, want %q", entry.Source, want)
	}
	if entry.Version != rev {
		t.Fatalf("Version = %q, want %q", entry.Version, rev)
	}
	source, err := os.ReadFile(filepath.Join(repo, "oracle.clar"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if entry.Checksum != analysisdb.SourceDigest(source) {
		t.Fatalf("Checksum = %q, want digest of the contract source", entry.Checksum)
	}
	cached := filepath.Join(CheckoutDir(cacheDir, entry), "oracle.clar")
	if _, err := os.Stat(cached); err != nil {
		t.Fatalf("expected cached checkout at %s: %v", cached, err)
	}

	again, err := fetcher.Fetch(spec)
	if err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}
	if *again != *entry {
		t.Fatalf("second fetch differs: %#v vs %#v", again, entry)
	}
}

func TestGitFetcherBranch(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "oracle-repo")
	writeFile(t, filepath.Join(repo, "oracle.clar"), oracleSource)
	rev := initGitRepo(t, repo)

	fetcher := NewGitFetcher(filepath.Join(root, "cache"))
	entry, err := fetcher.Fetch(&ContractSpec{Name: "oracle", Path: "oracle.clar", Git: repo, Branch: "master"})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if entry.Version != "master@"+rev {
		t.Fatalf("Version = %q, want master@%s", entry.Version, rev)
	}
}

func TestGitFetcherMissingContractFile(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "oracle-repo")
	writeFile(t, filepath.Join(repo, "oracle.clar"), oracleSource)
	rev := initGitRepo(t, repo)

	fetcher := NewGitFetcher(filepath.Join(root, "cache"))
	_, err := fetcher.Fetch(&ContractSpec{Name: "oracle", Path: "missing.clar", Git: repo, Rev: rev})
	if err == nil || !strings.Contains(err.Error(), "missing.clar") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestSanitizePathSegment(t *testing.T) {
	cases := map[string]string{
		"":            "head",
		"..":          "head",
		"v1.0.0@abc":  "v1.0.0_abc",
		"feature/x y": "feature_x_y",
	}
	for in, want := range cases {
		if got := sanitizePathSegment(in); got != want {
			t.Fatalf("sanitizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
