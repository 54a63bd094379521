package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/notification"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// Engine performs ledger operations: one balance mutation plus its matching
// transaction record, executed under per-wallet mutual exclusion. It is the
// only code path allowed to mutate a wallet balance.
type Engine struct {
	wallets  wallet.Repository
	txs      Repository
	locks    *lockTable
	notifier notification.Notifier
}

// NewEngine constructs the ledger engine. notifier may be nil.
func NewEngine(wallets wallet.Repository, txs Repository, notifier notification.Notifier) *Engine {
	return &Engine{
		wallets:  wallets,
		txs:      txs,
		locks:    newLockTable(),
		notifier: notifier,
	}
}

// Receipt describes the outcome of a successful ledger operation. NewBalance
// is the acting wallet's balance after the mutation (the credited wallet's
// balance for deposits and administrative credits).
type Receipt struct {
	TransactionID int64
	Type          string
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	RecipientCode string
}

// Deposit credits the owner's wallet.
func (e *Engine) Deposit(ctx context.Context, ownerID int64, amount decimal.Decimal) (Receipt, error) {
	if err := validAmount(amount); err != nil {
		return Receipt{}, err
	}
	w, err := e.wallets.FindByUserID(ctx, ownerID)
	if err != nil {
		return Receipt{}, err
	}

	unlock := e.locks.acquire(w.ID)
	defer unlock()

	w, err = e.wallets.FindByID(ctx, w.ID)
	if err != nil {
		return Receipt{}, err
	}
	w.Balance = w.Balance.Add(amount)
	if err := e.wallets.Update(ctx, w); err != nil {
		return Receipt{}, fmt.Errorf("persist wallet %d: %w", w.ID, err)
	}

	tx, err := e.record(ctx, nil, &w.ID, amount, TypeDeposit, StatusSuccess)
	if err != nil {
		return Receipt{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notification.KindDeposit,
		UserID: w.UserID,
		Amount: amount,
		Body:   fmt.Sprintf("Deposited %s to wallet %s", amount, w.Code),
	})

	return Receipt{TransactionID: tx.ID, Type: TypeDeposit, Amount: amount, NewBalance: w.Balance}, nil
}

// Withdraw debits the owner's wallet. An attempt against an insufficient
// balance is recorded as a FAILED transaction and returns
// ErrInsufficientBalance; the balance is untouched.
func (e *Engine) Withdraw(ctx context.Context, ownerID int64, amount decimal.Decimal) (Receipt, error) {
	if err := validAmount(amount); err != nil {
		return Receipt{}, err
	}
	w, err := e.wallets.FindByUserID(ctx, ownerID)
	if err != nil {
		return Receipt{}, err
	}

	unlock := e.locks.acquire(w.ID)
	defer unlock()

	w, err = e.wallets.FindByID(ctx, w.ID)
	if err != nil {
		return Receipt{}, err
	}

	if w.Balance.LessThan(amount) {
		if _, err := e.record(ctx, &w.ID, nil, amount, TypeWithdrawal, StatusFailed); err != nil {
			return Receipt{}, err
		}
		return Receipt{}, ErrInsufficientBalance
	}

	w.Balance = w.Balance.Sub(amount)
	if err := e.wallets.Update(ctx, w); err != nil {
		return Receipt{}, fmt.Errorf("persist wallet %d: %w", w.ID, err)
	}

	tx, err := e.record(ctx, &w.ID, nil, amount, TypeWithdrawal, StatusSuccess)
	if err != nil {
		return Receipt{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notification.KindWithdrawal,
		UserID: w.UserID,
		Amount: amount,
		Body:   fmt.Sprintf("Withdrew %s from wallet %s", amount, w.Code),
	})

	return Receipt{TransactionID: tx.ID, Type: TypeWithdrawal, Amount: amount, NewBalance: w.Balance}, nil
}

// Transfer moves funds from the owner's wallet to the wallet addressed by
// targetCode. Existence checks run before the self-transfer check, which runs
// before the balance check; only the balance check leaves a FAILED record.
func (e *Engine) Transfer(ctx context.Context, ownerID int64, targetCode string, amount decimal.Decimal) (Receipt, error) {
	return e.transferBetween(ctx, ownerID, targetCode, amount, TypeTransfer, notification.KindTransferReceived)
}

// BankTransfer has the same shape as Transfer but is sourced from the admin's
// own wallet and recorded as BANK_TRANSFER, keeping an auditable debit trail.
func (e *Engine) BankTransfer(ctx context.Context, adminOwnerID int64, targetCode string, amount decimal.Decimal) (Receipt, error) {
	return e.transferBetween(ctx, adminOwnerID, targetCode, amount, TypeBankTransfer, notification.KindBankTransfer)
}

// Credit is an administrative injection: it credits the wallet addressed by
// targetCode with no debited source.
func (e *Engine) Credit(ctx context.Context, targetCode string, amount decimal.Decimal) (Receipt, error) {
	if err := validAmount(amount); err != nil {
		return Receipt{}, err
	}
	w, err := e.wallets.FindByCode(ctx, targetCode)
	if err != nil {
		return Receipt{}, err
	}

	unlock := e.locks.acquire(w.ID)
	defer unlock()

	w, err = e.wallets.FindByID(ctx, w.ID)
	if err != nil {
		return Receipt{}, err
	}
	w.Balance = w.Balance.Add(amount)
	if err := e.wallets.Update(ctx, w); err != nil {
		return Receipt{}, fmt.Errorf("persist wallet %d: %w", w.ID, err)
	}

	tx, err := e.record(ctx, nil, &w.ID, amount, TypeBankTransfer, StatusSuccess)
	if err != nil {
		return Receipt{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notification.KindBankTransfer,
		UserID: w.UserID,
		Amount: amount,
		Body:   fmt.Sprintf("Wallet %s credited with %s", w.Code, amount),
	})

	return Receipt{TransactionID: tx.ID, Type: TypeBankTransfer, Amount: amount, NewBalance: w.Balance, RecipientCode: w.Code}, nil
}

func (e *Engine) transferBetween(ctx context.Context, senderOwnerID int64, targetCode string, amount decimal.Decimal, txType, notifyKind string) (Receipt, error) {
	if err := validAmount(amount); err != nil {
		return Receipt{}, err
	}

	sender, err := e.wallets.FindByUserID(ctx, senderOwnerID)
	if err != nil {
		return Receipt{}, err
	}
	receiver, err := e.wallets.FindByCode(ctx, targetCode)
	if err != nil {
		return Receipt{}, err
	}
	if sender.ID == receiver.ID {
		return Receipt{}, fmt.Errorf("%w: cannot transfer to your own wallet", ErrInvalidOperation)
	}

	unlock := e.locks.acquire(sender.ID, receiver.ID)
	defer unlock()

	// Re-read both wallets under the lock so the balance check never runs
	// against a stale snapshot.
	sender, err = e.wallets.FindByID(ctx, sender.ID)
	if err != nil {
		return Receipt{}, err
	}
	receiver, err = e.wallets.FindByID(ctx, receiver.ID)
	if err != nil {
		return Receipt{}, err
	}

	if sender.Balance.LessThan(amount) {
		if _, err := e.record(ctx, &sender.ID, &receiver.ID, amount, txType, StatusFailed); err != nil {
			return Receipt{}, err
		}
		return Receipt{}, ErrInsufficientBalance
	}

	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)

	if err := e.wallets.Update(ctx, sender); err != nil {
		return Receipt{}, fmt.Errorf("persist wallet %d: %w", sender.ID, err)
	}
	if err := e.wallets.Update(ctx, receiver); err != nil {
		return Receipt{}, fmt.Errorf("persist wallet %d: %w", receiver.ID, err)
	}

	tx, err := e.record(ctx, &sender.ID, &receiver.ID, amount, txType, StatusSuccess)
	if err != nil {
		return Receipt{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notifyKind,
		UserID: receiver.UserID,
		Amount: amount,
		Body:   fmt.Sprintf("Wallet %s received %s from wallet %s", receiver.Code, amount, sender.Code),
	})

	return Receipt{
		TransactionID: tx.ID,
		Type:          txType,
		Amount:        amount,
		NewBalance:    sender.Balance,
		RecipientCode: receiver.Code,
	}, nil
}

func (e *Engine) record(ctx context.Context, senderID, receiverID *int64, amount decimal.Decimal, txType, status string) (Transaction, error) {
	tx, err := e.txs.Append(ctx, Transaction{
		SenderWalletID:   senderID,
		ReceiverWalletID: receiverID,
		Amount:           amount,
		Type:             txType,
		Status:           status,
		Timestamp:        time.Now().UTC(),
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("record transaction: %w", err)
	}
	return tx, nil
}

func (e *Engine) notify(ctx context.Context, msg notification.Message) {
	if e.notifier == nil {
		return
	}
	_ = e.notifier.Send(ctx, msg) // best effort
}

func validAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOperation)
	}
	return nil
}
