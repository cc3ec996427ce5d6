package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"startarot/internal/metrics"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransactionNotFound = errors.New("ledger transaction not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance, created_at, updated_at`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// lockWallet locks the user's wallet row for update, creating it when absent.
// A missing wallet is treated as zero balance.
func lockWallet(ctx context.Context, tx *sqlx.Tx, userID int) (*Wallet, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance, created_at, updated_at`,
		userID,
	).StructScan(&w)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) apply(ctx context.Context, userID int, delta int64, txType, status string, consultationID *string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	newBalance := w.Balance + delta
	if newBalance < 0 {
		return ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, userID, txType, status, delta, newBalance, consultationID,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.RecordWalletOperation(txType)
	return nil
}

func (r *repository) Debit(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return r.apply(ctx, userID, -amount, txType, StatusConfirmed, consultationID)
}

func (r *repository) Credit(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return r.apply(ctx, userID, amount, txType, StatusConfirmed, consultationID)
}

func (r *repository) RecordPending(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	// Pending rows do not move the balance; balance_after records the
	// balance at the time the row was written.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, userID, txType, StatusPending, amount, w.Balance, consultationID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ConfirmPending(ctx context.Context, userID int, txType string, consultationID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	var amount int64
	err = tx.GetContext(ctx, &amount,
		`SELECT amount FROM wallet_transactions
		 WHERE user_id = $1 AND type = $2 AND status = $3 AND consultation_id = $4`,
		userID, txType, StatusPending, consultationID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		return err
	}

	newBalance := w.Balance + amount

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallet_transactions
		 SET status = $1, balance_after = $2
		 WHERE user_id = $3 AND type = $4 AND status = $5 AND consultation_id = $6`,
		StatusConfirmed, newBalance, userID, txType, StatusPending, consultationID,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.RecordWalletOperation(txType)
	return nil
}

func (r *repository) Refund(ctx context.Context, clientID int, amount int64, consultationID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, clientID)
	if err != nil {
		return err
	}

	newBalance := w.Balance + amount

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, clientID, TypeRefund, StatusConfirmed, amount, newBalance, consultationID,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $1
		 WHERE consultation_id = $2 AND type = $3 AND status = $4`,
		StatusRefunded, consultationID, TypeConsultationCharge, StatusConfirmed,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTransactionNotFound
	}

	// Earnings are cancelled regardless of whether they were still pending
	// (human path) or already confirmed (AI path).
	_, err = tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $1
		 WHERE consultation_id = $2 AND type = $3 AND status IN ($4, $5)`,
		StatusCancelled, consultationID, TypeEarnings, StatusPending, StatusConfirmed,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.RecordWalletOperation(TypeRefund)
	return nil
}

func (r *repository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, user_id, type, status, amount, balance_after, consultation_id, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
