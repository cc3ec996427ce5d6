package wallet

import "time"

// Transaction types. The ledger is append-only: rows are never deleted,
// only their status changes.
const (
	TypeConsultationCharge = "consultation_charge"
	TypeEarnings           = "earnings"
	TypeCreditPurchase     = "credit_purchase"
	TypeRefund             = "refund"
	TypeOwnerGrant         = "owner_grant"
	TypeGiftReceive        = "gift_receive"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

type Wallet struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"` // credits, never negative
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID             int       `db:"id" json:"id"`
	WalletID       int       `db:"wallet_id" json:"wallet_id"`
	UserID         int       `db:"user_id" json:"user_id"`
	Type           string    `db:"type" json:"type"`
	Status         string    `db:"status" json:"status"`
	Amount         int64     `db:"amount" json:"amount"` // signed: debits negative, credits positive
	BalanceAfter   int64     `db:"balance_after" json:"balance_after"`
	ConsultationID *string   `db:"consultation_id" json:"consultation_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type GrantRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
