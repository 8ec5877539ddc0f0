package driver

import (
	"errors"
	"fmt"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/parser"
)

// ContractError ties a parse or check failure to the contract it came from.
type ContractError struct {
	Contract string
	Path     string
	Err      error
}

func (e *ContractError) Error() string {
	return DescribeError(e.Path, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// DescribeError renders err as a single diagnostic line prefixed with the
// source position when one is known.
func DescribeError(path string, err error) string {
	var checkErr *analysis.CheckError
	if errors.As(err, &checkErr) && !checkErr.Span.IsZero() {
		return fmt.Sprintf("%s:%s: %s", path, checkErr.Span.Start, checkErr.Error())
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) && parseErr.Location.Line > 0 {
		return fmt.Sprintf("%s:%s: %s", path, parseErr.Location, parseErr.Message)
	}
	if path == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", path, err.Error())
}
