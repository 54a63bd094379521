package wallet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresRepository stores wallets in PostgreSQL. Balances are NUMERIC
// columns moved over the wire as text so no precision is lost.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record and returns it with the assigned id.
func (r *PostgresRepository) Create(ctx context.Context, w Wallet) (Wallet, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO wallets (user_id, wallet_code, balance, created_at)
        VALUES ($1, $2, $3, $4) RETURNING id`,
		w.UserID, w.Code, w.Balance.String(), w.CreatedAt.UTC())
	if err := row.Scan(&w.ID); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// FindByID fetches a wallet by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Wallet, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectWallet+` WHERE id = $1`, id))
}

// FindByUserID fetches the wallet owned by the given user.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID int64) (Wallet, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectWallet+` WHERE user_id = $1`, userID))
}

// FindByCode fetches a wallet by its public transfer address.
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (Wallet, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectWallet+` WHERE wallet_code = $1`, code))
}

// Update persists a balance mutation for an existing wallet.
func (r *PostgresRepository) Update(ctx context.Context, w Wallet) error {
	cmd, err := r.db.Exec(ctx, `UPDATE wallets SET balance = $1 WHERE id = $2`, w.Balance.String(), w.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all wallets ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, selectWallet+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

const selectWallet = `SELECT id, user_id, wallet_code, balance::text, created_at FROM wallets`

func (r *PostgresRepository) scanOne(row pgx.Row) (Wallet, error) {
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		balance string
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Code, &balance, &w.CreatedAt); err != nil {
		return Wallet{}, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return Wallet{}, err
	}
	w.Balance = b
	return w, nil
}
