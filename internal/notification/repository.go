package notification

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, userID int, kind, title, body string, consultationID *string) (*Notification, error)
	ListForUser(ctx context.Context, userID int, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int) error
	// ExistsForConsultation reports whether a notification of the given kind
	// already exists for a consultation. Keeps dead-letter entries unique.
	ExistsForConsultation(ctx context.Context, kind, consultationID string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int, kind, title, body string, consultationID *string) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, kind, title, body, consultation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, kind, title, body, read, consultation_id, created_at
	`

	var n Notification
	err := r.db.GetContext(ctx, &n, query, userID, kind, title, body, consultationID)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var ns []Notification
	err := r.db.SelectContext(ctx, &ns, `
		SELECT id, user_id, kind, title, body, read, consultation_id, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

func (r *repository) MarkRead(ctx context.Context, userID, notificationID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	return err
}

func (r *repository) ExistsForConsultation(ctx context.Context, kind, consultationID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM notifications WHERE kind = $1 AND consultation_id = $2)`,
		kind, consultationID,
	)
	return exists, err
}
