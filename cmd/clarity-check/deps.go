package main

import (
	"errors"
	"fmt"
	"os"

	"clarity/analysis-go/pkg/driver"
)

func runDeps(args []string, opts cliOptions) int {
	if len(args) != 1 || args[0] != "install" {
		fmt.Fprintln(os.Stderr, "usage: clarity-check deps install")
		return 1
	}

	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	lock, err := driver.LoadLockfile(lockfilePath(manifest))
	missing := errors.Is(err, os.ErrNotExist)
	switch {
	case missing:
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Root = manifest.Name
	lock.Tool = cliToolVersion

	cacheDir, err := driver.ResolveHome()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	changed, err := driver.Install(manifest, lock, driver.NewGitFetcher(cacheDir))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.verbose {
		for _, entry := range lock.Contracts {
			fmt.Fprintf(os.Stderr, "locked %s %s\n", entry.Name, entry.Source)
		}
	}
	if !changed && !missing {
		fmt.Fprintf(os.Stdout, "%s is up to date\n", driver.LockfileName)
		return 0
	}
	if err := driver.WriteLockfile(lock, lockfilePath(manifest)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "wrote %s (%d contract(s))\n", driver.LockfileName, len(lock.Contracts))
	return 0
}
