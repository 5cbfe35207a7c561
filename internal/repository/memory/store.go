// Package memory implements the versioning repositories on in-process maps.
// It backs the dev server when no database is configured and the service tests.
package memory

import (
	"context"
	"sync"

	models "quill/internal/domain/models/versioning"
	"quill/internal/domain/repositories"
)

// Store holds every table of the versioning model.
//
// Store is safe for concurrent use. Transactions are serialized: at most one
// ExecTx runs at a time, and writes made outside a transaction wait for it.
type Store struct {
	// txMu serializes writers; mu guards the maps
	txMu sync.Mutex
	mu   sync.RWMutex

	documents    map[string]models.Document
	commits      map[string]models.Commit
	commitsByDoc map[string][]string // commit IDs in commit_number order
	blobs        map[string]models.Blob
	blobIndex    map[string]map[string]string // document ID -> hash -> blob ID
	trees        map[string]models.Tree
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		documents:    make(map[string]models.Document),
		commits:      make(map[string]models.Commit),
		commitsByDoc: make(map[string][]string),
		blobs:        make(map[string]models.Blob),
		blobIndex:    make(map[string]map[string]string),
		trees:        make(map[string]models.Tree),
	}
}

type txContextKey string

const txKey txContextKey = "memory_tx"

// txState is the undo log of one transaction. Entries are replayed in
// reverse on rollback.
type txState struct {
	undo []func()
}

func getTx(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey).(*txState)
	return tx
}

// write runs fn with the maps locked for writing. Inside a transaction the
// returned undo func is appended to the log; outside one fn is applied
// immediately and permanently.
func (s *Store) write(ctx context.Context, fn func() (undo func(), err error)) error {
	tx := getTx(ctx)
	if tx == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := fn()
	if err != nil {
		return err
	}
	if tx != nil && undo != nil {
		tx.undo = append(tx.undo, undo)
	}
	return nil
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// TransactionManager runs functions against a Store atomically
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn while holding the store's writer lock.
// Nested calls reuse the transaction already present in ctx.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if getTx(ctx) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	tx := &txState{}
	committed := false
	// Runs on error and on panic
	defer func() {
		if committed {
			return
		}
		tm.store.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		tm.store.mu.Unlock()
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	committed = true
	return nil
}
