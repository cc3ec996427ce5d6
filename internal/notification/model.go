package notification

import "time"

const (
	KindConsultationAnswered = "consultation_answered"
	KindNewConsultation      = "new_consultation"
	KindConsultationRejected = "consultation_rejected"
	KindProcessingFailed     = "processing_failed"
)

type Notification struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	Kind           string    `db:"kind" json:"kind"`
	Title          string    `db:"title" json:"title"`
	Body           string    `db:"body" json:"body"`
	Read           bool      `db:"read" json:"read"`
	ConsultationID *string   `db:"consultation_id" json:"consultation_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
