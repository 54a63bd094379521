package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/ledger-bank/ledger_bank/internal/config"
	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/infra"
	"github.com/ledger-bank/ledger_bank/internal/ledger"
	"github.com/ledger-bank/ledger_bank/internal/logging"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

// seed provisions an admin account with a funded wallet so a fresh deployment
// can issue bank transfers immediately.
func main() {
	username := flag.String("username", "bank_admin", "admin username")
	email := flag.String("email", "admin@ledgerbank.local", "admin email")
	password := flag.String("password", "", "admin password (required)")
	funds := flag.String("funds", "1000000", "initial bank wallet balance")
	flag.Parse()

	_ = godotenv.Load()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -password <secret> [-username bank_admin] [-funds 1000000]")
		os.Exit(2)
	}
	amount, err := decimal.NewFromString(*funds)
	if err != nil || amount.IsNegative() {
		fmt.Fprintf(os.Stderr, "invalid funds amount %q\n", *funds)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.IsDev())
	ctx := context.Background()

	var (
		userRepo   identity.Repository
		walletRepo wallet.Repository
		txRepo     ledger.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		userRepo = identity.NewPostgresRepository(pool)
		walletRepo = wallet.NewPostgresRepository(pool)
		txRepo = ledger.NewPostgresRepository(pool)
	} else {
		if userRepo, err = identity.NewFileRepository(cfg.DataDir); err == nil {
			if walletRepo, err = wallet.NewFileRepository(cfg.DataDir); err == nil {
				txRepo, err = ledger.NewFileRepository(cfg.DataDir)
			}
		}
		if err != nil {
			logger.Error("open data dir", "dir", cfg.DataDir, "error", err)
			os.Exit(1)
		}
	}

	ids := identity.NewService(userRepo, cfg.AdminMasterKey)
	wallets := wallet.NewService(walletRepo)
	engine := ledger.NewEngine(walletRepo, txRepo, nil)

	user, err := ids.Register(ctx, identity.RegisterInput{
		Username:  *username,
		Email:     *email,
		Password:  *password,
		Role:      identity.RoleAdmin,
		MasterKey: cfg.AdminMasterKey,
	})
	if errors.Is(err, identity.ErrUsernameTaken) {
		logger.Info("admin already exists, skipping", "username", *username)
		return
	}
	if err != nil {
		logger.Error("create admin", "error", err)
		os.Exit(1)
	}

	w, err := wallets.CreateForUser(ctx, user.ID)
	if err != nil {
		logger.Error("create bank wallet", "error", err)
		os.Exit(1)
	}
	if amount.IsPositive() {
		if _, err := engine.Credit(ctx, w.Code, amount); err != nil {
			logger.Error("fund bank wallet", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("seeded admin account",
		"username", user.Username, "wallet_code", w.Code, "balance", amount.String())
}
