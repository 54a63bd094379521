package wallet

import (
	"context"
	"errors"
)

// ErrNotFound indicates no wallet matches the lookup.
var ErrNotFound = errors.New("wallet not found")

// Repository persists wallets.
type Repository interface {
	// Create stores a new wallet and returns it with the assigned id.
	Create(ctx context.Context, w Wallet) (Wallet, error)
	FindByID(ctx context.Context, id int64) (Wallet, error)
	FindByUserID(ctx context.Context, userID int64) (Wallet, error)
	FindByCode(ctx context.Context, code string) (Wallet, error)
	// Update persists a balance mutation for an existing wallet.
	Update(ctx context.Context, w Wallet) error
	List(ctx context.Context) ([]Wallet, error)
}
