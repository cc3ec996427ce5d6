package wallet

import "context"

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)

	// Debit atomically checks sufficiency, decrements the balance and writes
	// a confirmed ledger row. Fails with ErrInsufficientBalance without
	// writing anything when the balance does not cover the amount.
	Debit(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error

	// Credit increments the balance, creating the wallet row if absent, and
	// writes a confirmed ledger row.
	Credit(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error

	// RecordPending writes a pending ledger row without touching the balance.
	// Used for human oracle earnings that are paid out on answer.
	RecordPending(ctx context.Context, userID int, amount int64, txType string, consultationID *string) error

	// ConfirmPending flips a pending row of the given type for the given
	// consultation to confirmed and credits its amount to the wallet.
	ConfirmPending(ctx context.Context, userID int, txType string, consultationID string) error

	// Refund re-credits the client for a consultation, flips the original
	// charge row to refunded and the oracle earning row to cancelled.
	Refund(ctx context.Context, clientID int, amount int64, consultationID string) error

	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
}
