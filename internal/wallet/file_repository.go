package wallet

import (
	"context"

	"github.com/ledger-bank/ledger_bank/internal/storage"
)

// FileRepository stores wallets in a JSON collection on disk.
type FileRepository struct {
	col *storage.Collection[Wallet]
}

// NewFileRepository opens the wallets collection under dir.
func NewFileRepository(dir string) (*FileRepository, error) {
	col, err := storage.NewCollection[Wallet](dir, "wallets",
		func(w Wallet) int64 { return w.ID },
		func(w *Wallet, id int64) { w.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &FileRepository{col: col}, nil
}

// Create appends a new wallet record.
func (r *FileRepository) Create(_ context.Context, w Wallet) (Wallet, error) {
	return r.col.Upsert(w)
}

// FindByID fetches a wallet by identifier.
func (r *FileRepository) FindByID(_ context.Context, id int64) (Wallet, error) {
	return r.find(func(w Wallet) bool { return w.ID == id })
}

// FindByUserID fetches the wallet owned by the given user.
func (r *FileRepository) FindByUserID(_ context.Context, userID int64) (Wallet, error) {
	return r.find(func(w Wallet) bool { return w.UserID == userID })
}

// FindByCode fetches a wallet by its public transfer address.
func (r *FileRepository) FindByCode(_ context.Context, code string) (Wallet, error) {
	return r.find(func(w Wallet) bool { return w.Code == code })
}

// Update rewrites an existing wallet record.
func (r *FileRepository) Update(_ context.Context, w Wallet) error {
	if w.ID == 0 {
		return ErrNotFound
	}
	_, err := r.col.Upsert(w)
	return err
}

// List returns all wallets in insertion order.
func (r *FileRepository) List(_ context.Context) ([]Wallet, error) {
	return r.col.Load()
}

func (r *FileRepository) find(match func(Wallet) bool) (Wallet, error) {
	w, ok, err := r.col.Find(match)
	if err != nil {
		return Wallet{}, err
	}
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}
