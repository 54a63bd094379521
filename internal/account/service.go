// Package account builds read-only projections over users, wallets, and the
// transaction log. Nothing here mutates a balance.
package account

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// Service exposes balance and history lookups plus the admin listings.
type Service struct {
	users   identity.Repository
	wallets wallet.Repository
	txs     ledger.Repository
}

// NewService builds an account service instance.
func NewService(users identity.Repository, wallets wallet.Repository, txs ledger.Repository) *Service {
	return &Service{users: users, wallets: wallets, txs: txs}
}

// Balance is the wallet projection returned to its owner.
type Balance struct {
	WalletCode string          `json:"walletCode"`
	Amount     decimal.Decimal `json:"balance"`
}

// GetBalance returns the wallet code and current balance for the user.
func (s *Service) GetBalance(ctx context.Context, userID int64) (Balance, error) {
	w, err := s.wallets.FindByUserID(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletCode: w.Code, Amount: w.Balance}, nil
}

// GetHistory returns every transaction touching the user's wallet as sender
// or receiver, newest first.
func (s *Service) GetHistory(ctx context.Context, userID int64) ([]ledger.Transaction, error) {
	w, err := s.wallets.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.txs.ListByWallet(ctx, w.ID)
}

// ListAllTransactions returns the unfiltered transaction log, newest first.
// Admin view.
func (s *Service) ListAllTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return s.txs.List(ctx)
}

// UserSummary joins a user to its wallet, when one exists.
type UserSummary struct {
	ID         int64            `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	WalletCode string           `json:"walletCode,omitempty"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
}

// ListUsers returns all users with their wallet code and balance attached.
// Admin view.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summary := UserSummary{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		}
		w, err := s.wallets.FindByUserID(ctx, u.ID)
		if err == nil {
			balance := w.Balance
			summary.WalletCode = w.Code
			summary.Balance = &balance
		} else if !errors.Is(err, wallet.ErrNotFound) {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
