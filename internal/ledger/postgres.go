package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresRepository stores transactions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a transaction log backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a transaction record and returns it with the assigned id.
func (r *PostgresRepository) Append(ctx context.Context, tx Transaction) (Transaction, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO transactions
        (sender_wallet_id, receiver_wallet_id, amount, type, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		tx.SenderWalletID, tx.ReceiverWalletID, tx.Amount.String(), tx.Type, tx.Status, tx.Timestamp.UTC())
	if err := row.Scan(&tx.ID); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

const selectTransaction = `SELECT id, sender_wallet_id, receiver_wallet_id, amount::text, type, status, created_at
    FROM transactions`

// List returns every transaction, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, selectTransaction+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListByWallet returns transactions touching the wallet, newest first.
func (r *PostgresRepository) ListByWallet(ctx context.Context, walletID int64) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, selectTransaction+
		` WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1 ORDER BY created_at DESC, id DESC`, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]Transaction, error) {
	var txs []Transaction
	for rows.Next() {
		var (
			tx     Transaction
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.SenderWalletID, &tx.ReceiverWalletID, &amount, &tx.Type, &tx.Status, &tx.Timestamp); err != nil {
			return nil, err
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		tx.Amount = a
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
