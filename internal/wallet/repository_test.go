package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows(id, userID int, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(id, userID, balance, time.Now(), time.Now())
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) RETURNING id, user_id, balance, created_at, updated_at")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0))

	w, err := repo.GetOrCreateWallet(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, int64(0), w.Balance)
}

func TestDebit_Success(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	consultationID := "a4c135c7-94e4-4a44-a18f-72f339a38a10"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 50))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(30), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id) VALUES ($1, $2, $3, $4, $5, $6, $7)")).
		WithArgs(7, 20, TypeConsultationCharge, StatusConfirmed, int64(-20), int64(30), &consultationID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Debit(context.Background(), 20, 20, TypeConsultationCharge, &consultationID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_InsufficientBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 5))
	mock.ExpectRollback()

	err := repo.Debit(context.Background(), 20, 20, TypeConsultationCharge, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_MissingWalletIsZeroBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) RETURNING id, user_id, balance, created_at, updated_at")).
		WithArgs(99).
		WillReturnRows(walletRows(8, 99, 0))
	mock.ExpectRollback()

	err := repo.Debit(context.Background(), 99, 10, TypeConsultationCharge, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCredit_Success(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(walletRows(2, 3, 10))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(110), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id) VALUES ($1, $2, $3, $4, $5, $6, $7)")).
		WithArgs(2, 3, TypeCreditPurchase, StatusConfirmed, int64(100), int64(110), (*string)(nil)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Credit(context.Background(), 3, 100, TypeCreditPurchase, nil)
	require.NoError(t, err)
}

func TestRefund_FlipsChargeAndEarning(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	consultationID := "a4c135c7-94e4-4a44-a18f-72f339a38a10"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 30))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(50), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id) VALUES ($1, $2, $3, $4, $5, $6, $7)")).
		WithArgs(7, 20, TypeRefund, StatusConfirmed, int64(20), int64(50), consultationID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallet_transactions SET status = $1 WHERE consultation_id = $2 AND type = $3 AND status = $4")).
		WithArgs(StatusRefunded, consultationID, TypeConsultationCharge, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallet_transactions SET status = $1 WHERE consultation_id = $2 AND type = $3 AND status IN ($4, $5)")).
		WithArgs(StatusCancelled, consultationID, TypeEarnings, StatusPending, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Refund(context.Background(), 20, 20, consultationID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefund_NoChargeRow(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	consultationID := "a4c135c7-94e4-4a44-a18f-72f339a38a10"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 30))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(50), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions (wallet_id, user_id, type, status, amount, balance_after, consultation_id) VALUES ($1, $2, $3, $4, $5, $6, $7)")).
		WithArgs(7, 20, TypeRefund, StatusConfirmed, int64(20), int64(50), consultationID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallet_transactions SET status = $1 WHERE consultation_id = $2 AND type = $3 AND status = $4")).
		WithArgs(StatusRefunded, consultationID, TypeConsultationCharge, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Refund(context.Background(), 20, 20, consultationID)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestConfirmPending_CreditsWallet(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	consultationID := "a4c135c7-94e4-4a44-a18f-72f339a38a10"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE")).
		WithArgs(40).
		WillReturnRows(walletRows(9, 40, 100))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT amount FROM wallet_transactions WHERE user_id = $1 AND type = $2 AND status = $3 AND consultation_id = $4")).
		WithArgs(40, TypeEarnings, StatusPending, consultationID).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(16))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(int64(116), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallet_transactions SET status = $1, balance_after = $2 WHERE user_id = $3 AND type = $4 AND status = $5 AND consultation_id = $6")).
		WithArgs(StatusConfirmed, int64(116), 40, TypeEarnings, StatusPending, consultationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ConfirmPending(context.Background(), 40, TypeEarnings, consultationID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
