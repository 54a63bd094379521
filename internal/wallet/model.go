package wallet

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a stored-value account owned by exactly one user. The balance is
// mutated only by the ledger engine and never goes negative.
type Wallet struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Code      string          `json:"walletCode"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCode generates a public transfer address of the form WAL-XXXXXXXX with
// eight uppercase alphanumeric characters.
func NewCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "WAL-" + strings.ToUpper(raw[:8])
}
