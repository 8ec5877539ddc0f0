package analysisdb

import (
	"errors"
	"fmt"
	"sync"

	"clarity/analysis-go/pkg/analysis"
)

// ErrNotFound is returned by stores that hold no analysis for a contract.
var ErrNotFound = errors.New("analysisdb: contract not found")

// Store is the durable backing of a Database.
type Store interface {
	Load(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error)
	Commit(analyses []*analysis.ContractAnalysis) error
}

// Database holds committed contract analyses keyed by contract identity.
// Writes only reach the store through Execute.
type Database struct {
	mu    sync.Mutex
	store Store
}

func New(store Store) *Database {
	return &Database{store: store}
}

// Tx is the handle passed to an Execute closure. Analyses inserted through
// it are visible to the same transaction immediately and to everyone else
// once the closure succeeds.
type Tx struct {
	db      *Database
	pending map[analysis.ContractIdentifier]*analysis.ContractAnalysis
	order   []analysis.ContractIdentifier
}

// Execute runs fn inside a transaction. Inserts are committed when fn
// returns nil and discarded otherwise. Transactions are serialised.
func (db *Database) Execute(fn func(tx *Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &Tx{db: db, pending: make(map[analysis.ContractIdentifier]*analysis.ContractAnalysis)}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.order) == 0 {
		return nil
	}
	batch := make([]*analysis.ContractAnalysis, 0, len(tx.order))
	for _, id := range tx.order {
		batch = append(batch, tx.pending[id])
	}
	if err := db.store.Commit(batch); err != nil {
		return fmt.Errorf("analysisdb: commit: %w", err)
	}
	return nil
}

// LoadContract returns the committed analysis for id.
func (db *Database) LoadContract(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.load(id)
}

func (db *Database) load(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	found, err := db.store.Load(id)
	if errors.Is(err, ErrNotFound) {
		return nil, analysis.NamedError(analysis.NoSuchContract, id.String(), "")
	}
	if err != nil {
		return nil, fmt.Errorf("analysisdb: load %s: %w", id, err)
	}
	return found, nil
}

func (tx *Tx) LoadContract(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	if pending, ok := tx.pending[id]; ok {
		return pending, nil
	}
	return tx.db.load(id)
}

// InsertContract stages a finished analysis, replacing any staged under the
// same identity.
func (tx *Tx) InsertContract(a *analysis.ContractAnalysis) error {
	if a == nil {
		return fmt.Errorf("analysisdb: insert nil analysis")
	}
	if _, staged := tx.pending[a.ContractID]; !staged {
		tx.order = append(tx.order, a.ContractID)
	}
	tx.pending[a.ContractID] = a
	return nil
}
