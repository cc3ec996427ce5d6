package oracle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrOracleNotFound = errors.New("oracle not found")

const profileColumns = `id, user_id, owner_user_id, display_name, specialty, bio, personality, system_prompt, is_ai, is_online, price_per_question, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	query := `
		INSERT INTO oracle_profiles
			(user_id, owner_user_id, display_name, specialty, bio, personality, system_prompt, is_ai, price_per_question)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + profileColumns

	var p Profile
	err := r.db.GetContext(ctx, &p, query,
		req.UserID, req.OwnerUserID, req.DisplayName, req.Specialty, req.Bio,
		req.Personality, req.SystemPrompt, req.IsAI, req.PricePerQuestion,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM oracle_profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOracleNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM oracle_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOracleNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM oracle_profiles ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) SetOnline(ctx context.Context, oracleID int, online bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE oracle_profiles SET is_online = $1 WHERE id = $2`, online, oracleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOracleNotFound
	}
	return nil
}

func (r *repository) AddSchedule(ctx context.Context, oracleID int, req CreateScheduleRequest) (*ScheduleEntry, error) {
	query := `
		INSERT INTO oracle_schedules (oracle_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id, oracle_id, weekday, start_minute, end_minute
	`

	var e ScheduleEntry
	err := r.db.GetContext(ctx, &e, query, oracleID, req.Weekday, req.StartMinute, req.EndMinute)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) GetSchedules(ctx context.Context, oracleID int) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, oracle_id, weekday, start_minute, end_minute
		FROM oracle_schedules
		WHERE oracle_id = $1
		ORDER BY weekday, start_minute
	`, oracleID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
