// Package ledger implements the wallet ledger engine: every balance mutation
// happens here, paired with an immutable transaction record, under per-wallet
// mutual exclusion.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TypeDeposit      = "DEPOSIT"
	TypeWithdrawal   = "WITHDRAWAL"
	TypeTransfer     = "TRANSFER"
	TypeBankTransfer = "BANK_TRANSFER"
)

// Transaction statuses. Failed attempts are recorded too: the ledger keeps a
// trace of attempts, not just successes.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Transaction is an immutable ledger record. SenderWalletID is nil for
// deposits and administrative credits, ReceiverWalletID is nil for
// withdrawals.
type Transaction struct {
	ID               int64           `json:"id"`
	SenderWalletID   *int64          `json:"senderWalletId"`
	ReceiverWalletID *int64          `json:"receiverWalletId"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Timestamp        time.Time       `json:"timestamp"`
}

// Touches reports whether the transaction involves the wallet as sender or
// receiver.
func (t Transaction) Touches(walletID int64) bool {
	if t.SenderWalletID != nil && *t.SenderWalletID == walletID {
		return true
	}
	return t.ReceiverWalletID != nil && *t.ReceiverWalletID == walletID
}

// Repository appends and lists transaction records. Records are never updated
// or deleted once written.
type Repository interface {
	// Append stores a new transaction and returns it with the assigned id.
	Append(ctx context.Context, tx Transaction) (Transaction, error)
	// List returns every transaction, newest first.
	List(ctx context.Context) ([]Transaction, error)
	// ListByWallet returns transactions touching the wallet, newest first.
	ListByWallet(ctx context.Context, walletID int64) ([]Transaction, error)
}

// sortNewestFirst orders by descending timestamp, ties broken by descending id.
func sortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}
