package consultation

import (
	"context"
	"time"
)

type Repository interface {
	// Create persists the consultation and its ordered questions in one
	// transaction.
	Create(ctx context.Context, c *Consultation, questions []string) (*Consultation, error)
	GetByID(ctx context.Context, id string) (*Consultation, error)
	ListForClient(ctx context.Context, clientID int) ([]Consultation, error)
	ListForOracle(ctx context.Context, oracleID int) ([]Consultation, error)

	GetQuestions(ctx context.Context, consultationID string) ([]Question, error)
	SetAnswer(ctx context.Context, questionID int, answer string) error

	UpdateMetadata(ctx context.Context, id string, md Metadata) error

	// TransitionStatus performs a conditional status update and reports
	// whether the row was actually moved. This is the atomic claim used to
	// keep concurrent sweeps and duplicate requests from double-processing.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)

	// MarkAnswered transitions processing -> answered and stamps answered_at.
	MarkAnswered(ctx context.Context, id string) error

	// ListDue returns AI-scheduled consultations still pending whose
	// scheduled_process_at has elapsed and that have not been dead-lettered.
	ListDue(ctx context.Context, now time.Time) ([]Consultation, error)

	// RecentAnsweredBetween returns up to limit previously answered
	// question/answer pairs between the client and oracle from other
	// consultations, oldest first.
	RecentAnsweredBetween(ctx context.Context, clientID, oracleID int, excludeID string, limit int) ([]MemoryQA, error)
}
