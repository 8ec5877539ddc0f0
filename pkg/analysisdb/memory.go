package analysisdb

import "clarity/analysis-go/pkg/analysis"

type memoryStore struct {
	contracts map[analysis.ContractIdentifier]*analysis.ContractAnalysis
}

// NewMemory returns a database that lives only as long as the process.
func NewMemory() *Database {
	return New(&memoryStore{contracts: make(map[analysis.ContractIdentifier]*analysis.ContractAnalysis)})
}

func (m *memoryStore) Load(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	found, ok := m.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return found.Clone(), nil
}

func (m *memoryStore) Commit(analyses []*analysis.ContractAnalysis) error {
	for _, a := range analyses {
		m.contracts[a.ContractID] = a.Clone()
	}
	return nil
}
