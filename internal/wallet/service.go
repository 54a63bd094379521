package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service provisions wallets. Balance mutations live in the ledger engine;
// this service only creates and looks up wallet records.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateForUser provisions the single wallet owned by userID with a zero
// balance and a freshly generated wallet code.
func (s *Service) CreateForUser(ctx context.Context, userID int64) (Wallet, error) {
	return s.repo.Create(ctx, Wallet{
		UserID:    userID,
		Code:      NewCode(),
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	})
}

// GetByUser retrieves the wallet owned by userID.
func (s *Service) GetByUser(ctx context.Context, userID int64) (Wallet, error) {
	return s.repo.FindByUserID(ctx, userID)
}
