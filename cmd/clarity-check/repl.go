package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/driver"
	"clarity/analysis-go/pkg/parser"
	"clarity/analysis-go/pkg/typechecker"
)

const (
	replHistoryFile = ".clarity_history"
	promptMain      = "clarity> "
	promptCont      = "     ... "
)

// replSession checks input against one growing transient contract. Other
// contracts resolve through db.
type replSession struct {
	checker *typechecker.TypeChecker
}

func newReplSession(db typechecker.ContractLoader) *replSession {
	return &replSession{checker: typechecker.New(db, analysis.TransientContract())}
}

// eval checks every top-level form of src in order, printing the type of
// each expression and the name of each declaration. It stops at the first
// failing form; forms before it stay in effect.
func (s *replSession) eval(src string, out, errOut io.Writer) bool {
	exprs, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintln(errOut, driver.DescribeError("repl", err))
		return false
	}
	for _, expr := range exprs {
		sig, err := s.checker.CheckTopLevel(expr)
		if err != nil {
			fmt.Fprintln(errOut, driver.DescribeError("repl", err))
			return false
		}
		if sig != nil {
			fmt.Fprintln(out, sig)
			continue
		}
		if keyword, name, ok := typechecker.DefinedName(expr); ok {
			fmt.Fprintf(out, "%s %s\n", keyword, name)
		}
	}
	return true
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}

	var db *analysisdb.Database
	if manifest, err := loadManifestFrom("."); err == nil {
		db, err = analysisdb.OpenDirectory(manifest.AnalysisPath())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else if !errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	} else {
		db = analysisdb.NewMemory()
	}
	session := newReplSession(db)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "%s; type :quit to exit\n", cliToolVersion)
	for {
		src, ok := readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			default:
				fmt.Fprintln(os.Stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}
		session.eval(src, os.Stdout, os.Stderr)
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readByParseProbe keeps prompting while the buffered input ends inside an
// open list or string.
func readByParseProbe(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.Parse(src); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
