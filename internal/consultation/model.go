package consultation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	TypeText  = "text"
	TypeVideo = "video"
)

// Status values. Transitions are monotonic: pending -> processing ->
// answered -> completed on the AI path, pending -> answered on the human
// path, pending -> rejected / canceled on the refund paths. Retry
// bookkeeping lives in Metadata and never re-enters a visible status.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusAnswered   = "answered"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
	StatusCanceled   = "canceled"
)

// MaxRetries bounds automatic processing attempts before dead-lettering.
const MaxRetries = 3

// RetryDelay is how far a failed attempt is pushed into the future.
const RetryDelay = 5 * time.Minute

// Metadata is the typed scheduling and retry state persisted as JSONB.
type Metadata struct {
	IsAIScheduled      bool       `json:"is_ai_scheduled,omitempty"`
	ScheduledProcessAt *time.Time `json:"scheduled_process_at,omitempty"`
	DelayMinutes       int        `json:"delay_minutes,omitempty"`
	OracleWasOnline    bool       `json:"oracle_was_online"`
	RetryCount         int        `json:"retry_count"`
	LastError          string     `json:"last_error,omitempty"`
	ProcessingFailed   bool       `json:"processing_failed,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
}

func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported metadata source type")
	}
}

type Consultation struct {
	ID           string     `db:"id" json:"id"`
	ClientID     int        `db:"client_id" json:"client_id"`
	OracleID     int        `db:"oracle_id" json:"oracle_id"`
	Type         string     `db:"type" json:"type"`
	Status       string     `db:"status" json:"status"`
	TotalCredits int64      `db:"total_credits" json:"total_credits"`
	SubjectName  *string    `db:"subject_name" json:"subject_name,omitempty"`
	SubjectBirthDate *string `db:"subject_birth_date" json:"subject_birth_date,omitempty"`
	SubjectBirthTime *string `db:"subject_birth_time" json:"subject_birth_time,omitempty"`
	Metadata     Metadata   `db:"metadata" json:"metadata"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	AnsweredAt   *time.Time `db:"answered_at" json:"answered_at,omitempty"`
}

type Question struct {
	ID             int     `db:"id" json:"id"`
	ConsultationID string  `db:"consultation_id" json:"consultation_id"`
	QuestionOrder  int     `db:"question_order" json:"question_order"`
	QuestionText   string  `db:"question_text" json:"question_text"`
	AnswerText     *string `db:"answer_text" json:"answer_text,omitempty"`
}

// MemoryQA is one previously answered question/answer pair between a client
// and an oracle, used as conversational memory for new AI consultations.
type MemoryQA struct {
	QuestionText string `db:"question_text"`
	AnswerText   string `db:"answer_text"`
}

type SubmitRequest struct {
	OracleID         int      `json:"oracle_id" binding:"required"`
	Type             string   `json:"type" binding:"required,oneof=text video"`
	Questions        []string `json:"questions" binding:"required,min=1,dive,required"`
	SubjectName      *string  `json:"subject_name"`
	SubjectBirthDate *string  `json:"subject_birth_date"`
	SubjectBirthTime *string  `json:"subject_birth_time"`
}

type SubmitResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty"`
	Consultation *Consultation `json:"consultation"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type AnswerRequest struct {
	Answers []string `json:"answers" binding:"required,min=1,dive,required"`
}

type ConsultationWithQuestions struct {
	Consultation
	Questions []Question `json:"questions"`
}
