package driver

import (
	"fmt"
	"strings"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

// ReferencedContracts lists, in first-use order, the contract names a
// contract reaches through contract-map-get and contract-call!.
func ReferencedContracts(exprs []ast.SymbolicExpression) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, expr := range exprs {
		ast.Walk(expr, func(node ast.SymbolicExpression) bool {
			elements, ok := ast.MatchList(node)
			if !ok || len(elements) < 2 {
				return true
			}
			head, _ := ast.MatchAtom(elements[0])
			if head != "contract-map-get" && head != "contract-call!" {
				return true
			}
			if name, ok := ast.MatchAtom(elements[1]); ok {
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					out = append(out, name)
				}
			}
			return true
		})
	}
	return out
}

// orderContracts sorts contracts so that each comes after everything it
// depends on. Among contracts that are ready at the same time the input
// order wins. References to contracts outside the set are left for the
// checker to resolve against stored analyses.
func orderContracts(contracts []*Contract) ([]*Contract, error) {
	index := make(map[analysis.ContractIdentifier]int, len(contracts))
	byName := make(map[string]int, len(contracts))
	for i, contract := range contracts {
		index[contract.ID] = i
		byName[contract.Name] = i
	}
	resolve := func(ref string) (int, bool) {
		if i, ok := byName[ref]; ok {
			return i, true
		}
		id, err := analysis.ParseContractIdentifier(ref)
		if err != nil {
			return 0, false
		}
		i, ok := index[id]
		return i, ok
	}

	dependents := make([][]int, len(contracts))
	pending := make([]int, len(contracts))
	for i, contract := range contracts {
		deps := make(map[int]struct{})
		for _, name := range contract.DependsOn {
			j, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("driver: contract %q depends on unknown contract %q", contract.Name, name)
			}
			deps[j] = struct{}{}
		}
		for _, ref := range ReferencedContracts(contract.Exprs) {
			if j, ok := resolve(ref); ok && j != i {
				deps[j] = struct{}{}
			}
		}
		contract.requires = contract.requires[:0]
		for j := range deps {
			dependents[j] = append(dependents[j], i)
			contract.requires = append(contract.requires, contracts[j])
		}
		pending[i] = len(deps)
	}

	ordered := make([]*Contract, 0, len(contracts))
	done := make([]bool, len(contracts))
	for len(ordered) < len(contracts) {
		next := -1
		for i := range contracts {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, contract := range contracts {
				if !done[i] {
					stuck = append(stuck, contract.Name)
				}
			}
			return nil, fmt.Errorf("driver: dependency cycle among %s", strings.Join(stuck, ", "))
		}
		done[next] = true
		ordered = append(ordered, contracts[next])
		for _, dependent := range dependents[next] {
			pending[dependent]--
		}
	}
	return ordered, nil
}
