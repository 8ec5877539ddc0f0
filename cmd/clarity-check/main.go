package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clarity/analysis-go/pkg/driver"
)

const cliToolVersion = "clarity-check 0.0.0-dev"

type cliOptions struct {
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts cliOptions
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "--help", "-h":
			printUsage()
			return 0
		case "--version", "-V":
			fmt.Fprintln(os.Stdout, cliToolVersion)
			return 0
		case "--verbose", "-v":
			opts.verbose = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage()
			return 1
		}
		args = args[1:]
	}
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "help":
		printUsage()
		return 0
	case "check":
		return runCheck(args[1:], opts)
	case "describe":
		return runDescribe(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "deps":
		return runDeps(args[1:], opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  clarity-check [--verbose] check [--force] [file.clar ...]")
	fmt.Fprintln(os.Stderr, "  clarity-check describe <file.clar> [file.clar ...]")
	fmt.Fprintln(os.Stderr, "  clarity-check repl")
	fmt.Fprintln(os.Stderr, "  clarity-check deps install")
	fmt.Fprintln(os.Stderr, "  clarity-check --version")
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lock, err := driver.LoadLockfile(lockfilePath(manifest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifest.HasGitContracts() {
				return nil, fmt.Errorf("%s missing for %q; run `clarity-check deps install`", driver.LockfileName, manifest.Name)
			}
			return driver.NewLockfile(manifest.Name, cliToolVersion), nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockfilePath(manifest), err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}
