package repositories

import "context"

// TxFn is a function that runs within a transaction. Returning an error
// rolls back every write made through txCtx.
type TxFn func(txCtx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes fn within a transaction. Repositories called with the
	// context passed to fn participate in that transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}
