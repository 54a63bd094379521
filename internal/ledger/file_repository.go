package ledger

import (
	"context"

	"github.com/ledger-bank/ledger_bank/internal/storage"
)

// FileRepository stores transactions in a JSON collection on disk.
type FileRepository struct {
	col *storage.Collection[Transaction]
}

// NewFileRepository opens the transactions collection under dir.
func NewFileRepository(dir string) (*FileRepository, error) {
	col, err := storage.NewCollection[Transaction](dir, "transactions",
		func(t Transaction) int64 { return t.ID },
		func(t *Transaction, id int64) { t.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &FileRepository{col: col}, nil
}

// Append stores a new transaction record.
func (r *FileRepository) Append(_ context.Context, tx Transaction) (Transaction, error) {
	return r.col.Upsert(tx)
}

// List returns every transaction, newest first.
func (r *FileRepository) List(_ context.Context) ([]Transaction, error) {
	txs, err := r.col.Load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(txs)
	return txs, nil
}

// ListByWallet returns transactions touching the wallet, newest first.
func (r *FileRepository) ListByWallet(_ context.Context, walletID int64) ([]Transaction, error) {
	txs, err := r.col.FindAll(func(t Transaction) bool { return t.Touches(walletID) })
	if err != nil {
		return nil, err
	}
	sortNewestFirst(txs)
	return txs, nil
}
