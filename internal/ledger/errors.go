package ledger

import (
	"errors"

	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

var (
	// ErrWalletNotFound occurs when an operation names a wallet that does not
	// exist. It is the same sentinel the wallet repositories return.
	ErrWalletNotFound = wallet.ErrNotFound

	// ErrInsufficientBalance occurs when the source wallet cannot cover the
	// requested amount. The attempt is still recorded as a FAILED transaction.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidOperation covers rejected requests such as self-transfers and
	// non-positive amounts. Nothing is recorded for these.
	ErrInvalidOperation = errors.New("invalid operation")
)
