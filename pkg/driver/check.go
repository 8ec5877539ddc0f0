package driver

import (
	"maps"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/typechecker"
)

// CheckOptions tunes Project.Check.
type CheckOptions struct {
	// Force re-checks contracts whose stored analysis matches the source.
	Force bool
	// OnResult, when set, is called after each contract.
	OnResult func(Result)
}

// Result is the outcome for one contract.
type Result struct {
	Contract *Contract
	Analysis *analysis.ContractAnalysis
	Skipped  bool
}

// Check type-checks the contracts in order, each inside its own
// transaction, so that later contracts see the analyses of earlier ones.
// A contract is skipped when its stored analysis was made from the same
// source against the same sources of the contracts it uses. It stops at the
// first failure and returns a *ContractError.
func (p *Project) Check(db *analysisdb.Database, opts CheckOptions) ([]Result, error) {
	results := make([]Result, 0, len(p.Contracts))
	for _, contract := range p.Contracts {
		result, err := checkContract(db, contract, opts.Force)
		if err != nil {
			return results, &ContractError{Contract: contract.Name, Path: contract.Path, Err: err}
		}
		results = append(results, result)
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
	}
	return results, nil
}

func checkContract(db *analysisdb.Database, contract *Contract, force bool) (Result, error) {
	deps := contract.dependencyDigests()
	if !force {
		stored, err := db.LoadContract(contract.ID)
		switch {
		case err == nil && stored.SourceDigest == contract.Digest && maps.Equal(stored.DependencyDigests, deps):
			return Result{Contract: contract, Analysis: stored, Skipped: true}, nil
		case err != nil && !analysis.IsKind(err, analysis.NoSuchContract):
			return Result{}, err
		}
	}

	var checked *analysis.ContractAnalysis
	err := db.Execute(func(tx *analysisdb.Tx) error {
		result, err := typechecker.TypeCheck(contract.ID, contract.Exprs, tx, false)
		if err != nil {
			return err
		}
		result.SourceDigest = contract.Digest
		result.DependencyDigests = deps
		checked = result
		return tx.InsertContract(result)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Contract: contract, Analysis: checked}, nil
}

// dependencyDigests records the source of every contract this one uses,
// keyed by contract identifier. Contracts come before their dependents in
// the project order, so each of these sources has a current analysis.
func (c *Contract) dependencyDigests() map[string]string {
	if len(c.requires) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.requires))
	for _, dep := range c.requires {
		out[dep.ID.String()] = dep.Digest
	}
	return out
}
