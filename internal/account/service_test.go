package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

type fixture struct {
	svc     *Service
	engine  *ledger.Engine
	users   identity.Repository
	wallets wallet.Repository
}

func newFixture() fixture {
	users := identity.NewMemoryRepository()
	wallets := wallet.NewMemoryRepository()
	txs := ledger.NewMemoryRepository()
	return fixture{
		svc:     NewService(users, wallets, txs),
		engine:  ledger.NewEngine(wallets, txs, nil),
		users:   users,
		wallets: wallets,
	}
}

func (f fixture) addUser(t *testing.T, username string, balance string) (identity.User, wallet.Wallet) {
	t.Helper()
	ctx := context.Background()
	u, err := f.users.Create(ctx, identity.User{Username: username, Role: identity.RoleUser})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	w, err := f.wallets.Create(ctx, wallet.Wallet{
		UserID:  u.ID,
		Code:    wallet.NewCode(),
		Balance: decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("create wallet for %s: %v", username, err)
	}
	return u, w
}

func TestGetBalance(t *testing.T) {
	f := newFixture()
	_, w := f.addUser(t, "alice", "42.10")
	ctx := context.Background()

	bal, err := f.svc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal.WalletCode != w.Code || !bal.Amount.Equal(decimal.RequireFromString("42.10")) {
		t.Fatalf("unexpected balance %+v", bal)
	}

	// Reads are idempotent: a second call with no intervening mutation
	// returns the same projection.
	again, err := f.svc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("second get balance: %v", err)
	}
	if again.WalletCode != bal.WalletCode || !again.Amount.Equal(bal.Amount) {
		t.Fatalf("balance changed without mutation: %+v vs %+v", bal, again)
	}

	if _, err := f.svc.GetBalance(ctx, 99); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected wallet.ErrNotFound, got %v", err)
	}
}

func TestGetHistoryNewestFirst(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "100.00")
	_, bob := f.addUser(t, "bob", "0")
	ctx := context.Background()

	amounts := []string{"10.00", "20.00", "30.00"}
	if _, err := f.engine.Deposit(ctx, 1, decimal.RequireFromString(amounts[0])); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := f.engine.Withdraw(ctx, 1, decimal.RequireFromString(amounts[1])); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := f.engine.Transfer(ctx, 1, bob.Code, decimal.RequireFromString(amounts[2])); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	history, err := f.svc.GetHistory(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected exactly 3 transactions, got %d", len(history))
	}
	// Newest first: transfer, withdrawal, deposit.
	for i, want := range []string{amounts[2], amounts[1], amounts[0]} {
		if !history[i].Amount.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("position %d: expected amount %s, got %s", i, want, history[i].Amount)
		}
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Fatalf("history not ordered newest first: %+v", history)
		}
	}
}

func TestHistoryIncludesReceivedTransfers(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "100.00")
	_, bob := f.addUser(t, "bob", "0")
	ctx := context.Background()

	if _, err := f.engine.Transfer(ctx, 1, bob.Code, decimal.RequireFromString("25.00")); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	history, err := f.svc.GetHistory(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("receiver must see the transfer, got %d records", len(history))
	}
}

func TestListUsersJoinsWallets(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "10.00")
	ctx := context.Background()

	// A user without a wallet still appears in the listing.
	if _, err := f.users.Create(ctx, identity.User{Username: "walletless", Role: identity.RoleUser}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	summaries, err := f.svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].WalletCode == "" || summaries[0].Balance == nil {
		t.Fatalf("expected wallet fields for alice: %+v", summaries[0])
	}
	if summaries[1].WalletCode != "" || summaries[1].Balance != nil {
		t.Fatalf("expected no wallet fields for walletless user: %+v", summaries[1])
	}
}

func TestListAllTransactions(t *testing.T) {
	f := newFixture()
	f.addUser(t, "alice", "100.00")
	_, bob := f.addUser(t, "bob", "0")
	ctx := context.Background()

	f.engine.Deposit(ctx, 2, decimal.RequireFromString("1.00"))
	f.engine.Transfer(ctx, 1, bob.Code, decimal.RequireFromString("2.00"))

	all, err := f.svc.ListAllTransactions(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(all))
	}
	if all[0].ID < all[1].ID {
		t.Fatalf("expected newest first, got ids %d, %d", all[0].ID, all[1].ID)
	}
}
