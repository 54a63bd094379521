package ledger

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	txs    []Transaction
}

// NewMemoryRepository constructs an in-memory transaction log for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Append(_ context.Context, tx Transaction) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	tx.ID = r.nextID
	r.txs = append(r.txs, tx)
	return tx, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Transaction, len(r.txs))
	copy(out, r.txs)
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) ListByWallet(_ context.Context, walletID int64) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Transaction
	for _, tx := range r.txs {
		if tx.Touches(walletID) {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out, nil
}
