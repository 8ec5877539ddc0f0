package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/ast"
	"clarity/analysis-go/pkg/parser"
)

// Contract is one parsed contract of a project.
type Contract struct {
	Name      string
	ID        analysis.ContractIdentifier
	Path      string
	Source    []byte
	Exprs     []ast.SymbolicExpression
	Digest    string
	DependsOn []string

	requires []*Contract
}

// Project is a set of contracts in the order they must be checked.
type Project struct {
	Contracts []*Contract
}

// LoadProject reads and parses every contract of manifest. Git contracts are
// read from their locked checkout under cacheDir and must match the locked
// checksum.
func LoadProject(manifest *Manifest, lock *Lockfile, cacheDir string) (*Project, error) {
	contracts := make([]*Contract, 0, len(manifest.Contracts))
	for _, spec := range manifest.Contracts {
		path, err := contractSourcePath(manifest, spec, lock, cacheDir)
		if err != nil {
			return nil, err
		}
		contract, err := loadContract(spec.Name, manifest.ContractID(spec.Name), path)
		if err != nil {
			return nil, err
		}
		if spec.IsGit() {
			locked, _ := lock.Find(spec.Name)
			if locked.Checksum != "" && locked.Checksum != contract.Digest {
				return nil, fmt.Errorf("contract %q: checksum mismatch for %s; run `clarity-check deps install`", spec.Name, path)
			}
		}
		contract.DependsOn = append([]string(nil), spec.DependsOn...)
		contracts = append(contracts, contract)
	}
	return newProject(contracts)
}

// LoadFiles builds a project from loose contract files, each named after
// its file stem and owned by the local issuer.
func LoadFiles(paths []string) (*Project, error) {
	contracts := make([]*Contract, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if !IsValidContractName(name) {
			return nil, fmt.Errorf("%s: %q is not a valid contract name", path, name)
		}
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("%s: contract %q already loaded from %s", path, name, other)
		}
		seen[name] = path
		contract, err := loadContract(name, analysis.LocalContract(name), path)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	return newProject(contracts)
}

func contractSourcePath(manifest *Manifest, spec *ContractSpec, lock *Lockfile, cacheDir string) (string, error) {
	if !spec.IsGit() {
		return filepath.Join(manifest.Dir(), spec.Path), nil
	}
	locked, ok := lock.Find(spec.Name)
	if !ok {
		return "", fmt.Errorf("contract %q is not locked; run `clarity-check deps install`", spec.Name)
	}
	if cacheDir == "" {
		return "", errors.New("driver: cache directory required for git contracts")
	}
	return filepath.Join(CheckoutDir(cacheDir, locked), spec.Path), nil
}

func loadContract(name string, id analysis.ContractIdentifier, path string) (*Contract, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("driver: resolve %s: %w", path, err)
	}
	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("driver: read contract %s: %w", name, err)
	}
	exprs, err := parser.Parse(string(source))
	if err != nil {
		return nil, &ContractError{Contract: name, Path: abs, Err: err}
	}
	return &Contract{
		Name:   name,
		ID:     id,
		Path:   abs,
		Source: source,
		Exprs:  exprs,
		Digest: analysisdb.SourceDigest(source),
	}, nil
}

func newProject(contracts []*Contract) (*Project, error) {
	ordered, err := orderContracts(contracts)
	if err != nil {
		return nil, err
	}
	return &Project{Contracts: ordered}, nil
}

// Contract looks up a contract by name.
func (p *Project) Contract(name string) (*Contract, bool) {
	for _, contract := range p.Contracts {
		if contract.Name == name {
			return contract, true
		}
	}
	return nil, false
}
