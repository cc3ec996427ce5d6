package consultation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrConsultationNotFound = errors.New("consultation not found")

const consultationColumns = `id, client_id, oracle_id, type, status, total_credits, subject_name, subject_birth_date, subject_birth_time, metadata, created_at, answered_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Consultation, questions []string) (*Consultation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var created Consultation
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO consultations
			(id, client_id, oracle_id, type, status, total_credits, subject_name, subject_birth_date, subject_birth_time, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+consultationColumns,
		c.ID, c.ClientID, c.OracleID, c.Type, StatusPending, c.TotalCredits,
		c.SubjectName, c.SubjectBirthDate, c.SubjectBirthTime, c.Metadata,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	for i, q := range questions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO consultation_questions (consultation_id, question_order, question_text)
			VALUES ($1, $2, $3)`,
			created.ID, i+1, q,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Consultation, error) {
	var c Consultation
	err := r.db.GetContext(ctx, &c, `SELECT `+consultationColumns+` FROM consultations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListForClient(ctx context.Context, clientID int) ([]Consultation, error) {
	var cs []Consultation
	err := r.db.SelectContext(ctx, &cs,
		`SELECT `+consultationColumns+` FROM consultations WHERE client_id = $1 ORDER BY created_at DESC`,
		clientID,
	)
	return cs, err
}

func (r *repository) ListForOracle(ctx context.Context, oracleID int) ([]Consultation, error) {
	var cs []Consultation
	err := r.db.SelectContext(ctx, &cs,
		`SELECT `+consultationColumns+` FROM consultations WHERE oracle_id = $1 ORDER BY created_at DESC`,
		oracleID,
	)
	return cs, err
}

func (r *repository) GetQuestions(ctx context.Context, consultationID string) ([]Question, error) {
	var qs []Question
	err := r.db.SelectContext(ctx, &qs, `
		SELECT id, consultation_id, question_order, question_text, answer_text
		FROM consultation_questions
		WHERE consultation_id = $1
		ORDER BY question_order
	`, consultationID)
	return qs, err
}

func (r *repository) SetAnswer(ctx context.Context, questionID int, answer string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE consultation_questions SET answer_text = $1 WHERE id = $2`,
		answer, questionID,
	)
	return err
}

func (r *repository) UpdateMetadata(ctx context.Context, id string, md Metadata) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE consultations SET metadata = $1 WHERE id = $2`,
		md, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConsultationNotFound
	}
	return nil
}

func (r *repository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE consultations SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) MarkAnswered(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE consultations SET status = $1, answered_at = NOW() WHERE id = $2 AND status = $3`,
		StatusAnswered, id, StatusProcessing,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConsultationNotFound
	}
	return nil
}

func (r *repository) ListDue(ctx context.Context, now time.Time) ([]Consultation, error) {
	var cs []Consultation
	err := r.db.SelectContext(ctx, &cs, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE status = $1
		  AND (metadata->>'is_ai_scheduled')::boolean = TRUE
		  AND (metadata->>'scheduled_process_at')::timestamptz <= $2
		  AND COALESCE((metadata->>'processing_failed')::boolean, FALSE) = FALSE
		ORDER BY (metadata->>'scheduled_process_at')::timestamptz
	`, StatusPending, now)
	return cs, err
}

func (r *repository) RecentAnsweredBetween(ctx context.Context, clientID, oracleID int, excludeID string, limit int) ([]MemoryQA, error) {
	if limit <= 0 {
		limit = 10
	}

	var qa []MemoryQA
	err := r.db.SelectContext(ctx, &qa, `
		SELECT question_text, answer_text FROM (
			SELECT q.question_text, q.answer_text, c.answered_at, q.question_order
			FROM consultation_questions q
			JOIN consultations c ON c.id = q.consultation_id
			WHERE c.client_id = $1
			  AND c.oracle_id = $2
			  AND c.id <> $3
			  AND q.answer_text IS NOT NULL
			ORDER BY c.answered_at DESC, q.question_order DESC
			LIMIT $4
		) recent
		ORDER BY answered_at ASC, question_order ASC
	`, clientID, oracleID, excludeID, limit)
	return qa, err
}
