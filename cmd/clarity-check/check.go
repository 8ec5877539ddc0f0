package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/driver"
)

func runCheck(args []string, opts cliOptions) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	force := fs.Bool("force", false, "re-check contracts whose stored analysis is current")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var (
		project *driver.Project
		db      *analysisdb.Database
		err     error
	)
	if files := fs.Args(); len(files) > 0 {
		project, err = driver.LoadFiles(files)
		db = analysisdb.NewMemory()
	} else {
		project, db, err = loadManifestProject()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	results, err := project.Check(db, driver.CheckOptions{
		Force: *force,
		OnResult: func(result driver.Result) {
			if !opts.verbose {
				return
			}
			status := "checked"
			if result.Skipped {
				status = "unchanged"
			}
			fmt.Fprintf(os.Stderr, "%s %s (%s)\n", status, result.Contract.Name, result.Contract.ID)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "checked %d contract(s)\n", len(results))
	return 0
}

func loadManifestProject() (*driver.Project, *analysisdb.Database, error) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, nil, err
	}
	cacheDir, err := driver.ResolveHome()
	if err != nil {
		return nil, nil, err
	}
	project, err := driver.LoadProject(manifest, lock, cacheDir)
	if err != nil {
		return nil, nil, err
	}
	db, err := analysisdb.OpenDirectory(manifest.AnalysisPath())
	if err != nil {
		return nil, nil, err
	}
	return project, db, nil
}

func runDescribe(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "describe requires at least one contract file")
		return 1
	}
	project, err := driver.LoadFiles(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	results, err := project.Check(analysisdb.NewMemory(), driver.CheckOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := describeResults(os.Stdout, results); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func describeResults(w io.Writer, results []driver.Result) error {
	for i, result := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := analysisdb.EncodeYAML(w, result.Analysis); err != nil {
			return err
		}
	}
	return nil
}
