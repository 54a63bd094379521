package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedWallet creates a wallet for userID holding the given balance.
func seedWallet(t *testing.T, repo wallet.Repository, userID int64, balance string) wallet.Wallet {
	t.Helper()
	w, err := repo.Create(context.Background(), wallet.Wallet{
		UserID:  userID,
		Code:    wallet.NewCode(),
		Balance: dec(balance),
	})
	if err != nil {
		t.Fatalf("seed wallet for user %d: %v", userID, err)
	}
	return w
}

func newTestEngine() (*Engine, wallet.Repository, Repository) {
	wallets := wallet.NewMemoryRepository()
	txs := NewMemoryRepository()
	return NewEngine(wallets, txs, nil), wallets, txs
}

func TestDeposit(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	w := seedWallet(t, wallets, 1, "10.00")

	res, err := engine.Deposit(ctx, 1, dec("2.50"))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !res.NewBalance.Equal(dec("12.50")) {
		t.Fatalf("expected balance 12.50, got %s", res.NewBalance)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(records))
	}
	tx := records[0]
	if tx.SenderWalletID != nil {
		t.Fatal("deposit must have no sender wallet")
	}
	if tx.ReceiverWalletID == nil || *tx.ReceiverWalletID != w.ID {
		t.Fatalf("expected receiver wallet %d, got %v", w.ID, tx.ReceiverWalletID)
	}
	if tx.Type != TypeDeposit || tx.Status != StatusSuccess {
		t.Fatalf("unexpected record %+v", tx)
	}
}

func TestDepositWalletNotFound(t *testing.T) {
	engine, _, txs := newTestEngine()

	_, err := engine.Deposit(context.Background(), 99, dec("1.00"))
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
	if records, _ := txs.List(context.Background()); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	seedWallet(t, wallets, 1, "10.00")

	for _, amount := range []string{"0", "-5"} {
		if _, err := engine.Deposit(ctx, 1, dec(amount)); !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("deposit %s: expected ErrInvalidOperation, got %v", amount, err)
		}
		if _, err := engine.Withdraw(ctx, 1, dec(amount)); !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("withdraw %s: expected ErrInvalidOperation, got %v", amount, err)
		}
	}
	if records, _ := txs.List(ctx); len(records) != 0 {
		t.Fatalf("rejected amounts must not be recorded, got %d records", len(records))
	}
}

func TestWithdrawSuccess(t *testing.T) {
	engine, wallets, _ := newTestEngine()
	ctx := context.Background()
	seedWallet(t, wallets, 1, "100.00")

	res, err := engine.Withdraw(ctx, 1, dec("40.00"))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !res.NewBalance.Equal(dec("60.00")) {
		t.Fatalf("expected balance 60.00, got %s", res.NewBalance)
	}
}

func TestWithdrawInsufficientBalanceRecordsFailure(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	w := seedWallet(t, wallets, 1, "100.00")

	_, err := engine.Withdraw(ctx, 1, dec("150.00"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	after, _ := wallets.FindByID(ctx, w.ID)
	if !after.Balance.Equal(dec("100.00")) {
		t.Fatalf("balance must be untouched, got %s", after.Balance)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 failed record, got %d", len(records))
	}
	tx := records[0]
	if tx.Status != StatusFailed || tx.Type != TypeWithdrawal {
		t.Fatalf("unexpected record %+v", tx)
	}
	if tx.SenderWalletID == nil || *tx.SenderWalletID != w.ID || tx.ReceiverWalletID != nil {
		t.Fatalf("failed withdrawal must name the sender only, got %+v", tx)
	}
	if !tx.Amount.Equal(dec("150.00")) {
		t.Fatalf("expected recorded amount 150.00, got %s", tx.Amount)
	}
}

func TestTransferSuccess(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	sender := seedWallet(t, wallets, 1, "50.00")
	receiver := seedWallet(t, wallets, 2, "5.00")

	res, err := engine.Transfer(ctx, 1, receiver.Code, dec("20.00"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !res.NewBalance.Equal(dec("30.00")) {
		t.Fatalf("expected sender balance 30.00, got %s", res.NewBalance)
	}
	if res.RecipientCode != receiver.Code {
		t.Fatalf("expected recipient code %s, got %s", receiver.Code, res.RecipientCode)
	}

	after, _ := wallets.FindByID(ctx, receiver.ID)
	if !after.Balance.Equal(dec("25.00")) {
		t.Fatalf("expected receiver balance 25.00, got %s", after.Balance)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	tx := records[0]
	if tx.Type != TypeTransfer || tx.Status != StatusSuccess {
		t.Fatalf("unexpected record %+v", tx)
	}
	if *tx.SenderWalletID != sender.ID || *tx.ReceiverWalletID != receiver.ID {
		t.Fatalf("record names wrong wallets: %+v", tx)
	}
}

func TestTransferConservation(t *testing.T) {
	engine, wallets, _ := newTestEngine()
	ctx := context.Background()
	sender := seedWallet(t, wallets, 1, "77.31")
	receiver := seedWallet(t, wallets, 2, "22.69")
	before := sender.Balance.Add(receiver.Balance)

	if _, err := engine.Transfer(ctx, 1, receiver.Code, dec("13.13")); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	s, _ := wallets.FindByID(ctx, sender.ID)
	r, _ := wallets.FindByID(ctx, receiver.ID)
	if !s.Balance.Add(r.Balance).Equal(before) {
		t.Fatalf("conservation violated: %s + %s != %s", s.Balance, r.Balance, before)
	}
}

func TestSelfTransferRejected(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	w := seedWallet(t, wallets, 1, "50.00")

	_, err := engine.Transfer(ctx, 1, w.Code, dec("10.00"))
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if records, _ := txs.List(ctx); len(records) != 0 {
		t.Fatalf("self-transfer must not be recorded, got %d records", len(records))
	}
}

func TestTransferUnknownTarget(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	seedWallet(t, wallets, 1, "50.00")

	_, err := engine.Transfer(ctx, 1, "WAL-DEADBEEF", dec("10.00"))
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
	if records, _ := txs.List(ctx); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestTransferInsufficientBalanceRecordsFailure(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	sender := seedWallet(t, wallets, 1, "5.00")
	receiver := seedWallet(t, wallets, 2, "0")

	_, err := engine.Transfer(ctx, 1, receiver.Code, dec("10.00"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 failed record, got %d", len(records))
	}
	tx := records[0]
	if tx.Status != StatusFailed || tx.Type != TypeTransfer {
		t.Fatalf("unexpected record %+v", tx)
	}
	if *tx.SenderWalletID != sender.ID || *tx.ReceiverWalletID != receiver.ID {
		t.Fatalf("failed transfer must name both wallets: %+v", tx)
	}

	s, _ := wallets.FindByID(ctx, sender.ID)
	if !s.Balance.Equal(dec("5.00")) {
		t.Fatalf("sender balance must be untouched, got %s", s.Balance)
	}
}

func TestBankTransferDebitsAdminWallet(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	admin := seedWallet(t, wallets, 1, "1000.00")
	target := seedWallet(t, wallets, 2, "0")

	res, err := engine.BankTransfer(ctx, 1, target.Code, dec("250.00"))
	if err != nil {
		t.Fatalf("bank transfer: %v", err)
	}
	if !res.NewBalance.Equal(dec("750.00")) {
		t.Fatalf("expected admin balance 750.00, got %s", res.NewBalance)
	}

	after, _ := wallets.FindByID(ctx, target.ID)
	if !after.Balance.Equal(dec("250.00")) {
		t.Fatalf("expected target balance 250.00, got %s", after.Balance)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 || records[0].Type != TypeBankTransfer {
		t.Fatalf("expected one BANK_TRANSFER record, got %+v", records)
	}
	if *records[0].SenderWalletID != admin.ID {
		t.Fatalf("bank transfer must debit the admin wallet, got %+v", records[0])
	}
}

func TestCreditHasNoSender(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	target := seedWallet(t, wallets, 1, "1.00")

	res, err := engine.Credit(ctx, target.Code, dec("9.00"))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !res.NewBalance.Equal(dec("10.00")) {
		t.Fatalf("expected balance 10.00, got %s", res.NewBalance)
	}

	records, _ := txs.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	tx := records[0]
	if tx.SenderWalletID != nil {
		t.Fatal("administrative credit must have no sender")
	}
	if tx.Type != TypeBankTransfer || tx.Status != StatusSuccess {
		t.Fatalf("unexpected record %+v", tx)
	}

	if _, err := engine.Credit(ctx, "WAL-MISSING1", dec("1.00")); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	engine, wallets, txs := newTestEngine()
	ctx := context.Background()
	w := seedWallet(t, wallets, 1, "100.00")

	const workers = 8
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Withdraw(ctx, 1, dec("100.00"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, failures := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientBalance):
			failures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful withdrawal, got %d", successes)
	}
	if failures != workers-1 {
		t.Fatalf("expected %d failed withdrawals, got %d", workers-1, failures)
	}

	after, _ := wallets.FindByID(ctx, w.ID)
	if after.Balance.Sign() < 0 {
		t.Fatalf("balance went negative: %s", after.Balance)
	}
	if !after.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", after.Balance)
	}

	records, _ := txs.List(ctx)
	if len(records) != workers {
		t.Fatalf("every attempt must be recorded: expected %d records, got %d", workers, len(records))
	}
}

func TestCrossedConcurrentTransfersDoNotDeadlock(t *testing.T) {
	engine, wallets, _ := newTestEngine()
	ctx := context.Background()
	a := seedWallet(t, wallets, 1, "500.00")
	b := seedWallet(t, wallets, 2, "500.00")

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.Transfer(ctx, 1, b.Code, dec("1.00")); err != nil {
				t.Errorf("a->b transfer: %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.Transfer(ctx, 2, a.Code, dec("1.00")); err != nil {
				t.Errorf("b->a transfer: %v", err)
			}
		}
	}()
	wg.Wait()

	wa, _ := wallets.FindByID(ctx, a.ID)
	wb, _ := wallets.FindByID(ctx, b.ID)
	if !wa.Balance.Add(wb.Balance).Equal(dec("1000.00")) {
		t.Fatalf("conservation violated: %s + %s", wa.Balance, wb.Balance)
	}
}
