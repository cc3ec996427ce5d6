package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Well-known setting keys.
const (
	KeyMasterAIPrompt     = "master_ai_prompt"
	KeyOracleCommissionPC = "oracle_commission_pc"
)

// DefaultCommissionPC is the platform cut applied when the setting is unset.
const DefaultCommissionPC = 20

type Setting struct {
	Key       string `db:"key" json:"key"`
	Value     string `db:"value" json:"value"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	CommissionPC(ctx context.Context) int
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Get returns the stored value, or an empty string when the key is unset.
func (r *repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM global_settings WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO global_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}

// CommissionPC returns the platform commission percentage, clamped to [0,100].
func (r *repository) CommissionPC(ctx context.Context) int {
	raw, err := r.Get(ctx, KeyOracleCommissionPC)
	if err != nil || raw == "" {
		return DefaultCommissionPC
	}
	pc, err := strconv.Atoi(raw)
	if err != nil || pc < 0 || pc > 100 {
		return DefaultCommissionPC
	}
	return pc
}
