package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
)

// Transaction adapts pgx.Tx to interfaces.Transaction
type Transaction struct {
	mu   sync.Mutex
	tx   pgx.Tx
	done bool
}

func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return interfaces.ErrTransactionCompleted
	}
	t.done = true
	if err := t.tx.Commit(ctx); err != nil {
		return &interfaces.DatabaseError{Op: "commit", Err: err}
	}
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return interfaces.ErrTransactionCompleted
	}
	t.done = true
	if err := t.tx.Rollback(ctx); err != nil {
		return &interfaces.DatabaseError{Op: "rollback", Err: err}
	}
	return nil
}

func (t *Transaction) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
