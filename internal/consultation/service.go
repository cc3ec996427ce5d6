package consultation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"startarot/internal/auth"
	"startarot/internal/logger"
	"startarot/internal/metrics"
	"startarot/internal/notification"
	"startarot/internal/oracle"
	"startarot/internal/settings"
	"startarot/internal/user"
	"startarot/internal/wallet"
)

var (
	ErrNotAssigned         = errors.New("consultation is not assigned to this oracle")
	ErrNotOwner            = errors.New("consultation does not belong to this client")
	ErrNotPending          = errors.New("consultation is no longer pending")
	ErrNotAnswered         = errors.New("consultation is not answered yet")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// Processing delay bounds in minutes. Online oracles answer faster.
const (
	onlineDelayMin  = 13
	onlineDelayMax  = 25
	offlineDelayMin = 20
	offlineDelayMax = 80
)

// DrawDelayMinutes picks a uniform processing delay for a newly scheduled
// AI consultation, inclusive on both bounds.
func DrawDelayMinutes(online bool) int {
	if online {
		return onlineDelayMin + rand.Intn(onlineDelayMax-onlineDelayMin+1)
	}
	return offlineDelayMin + rand.Intn(offlineDelayMax-offlineDelayMin+1)
}

type Service struct {
	repo          Repository
	oracles       oracle.Repository
	wallets       wallet.Repository
	users         user.Repository
	settings      settings.Repository
	notifications notification.Repository
	whatsapp      *notification.WhatsAppService

	now func() time.Time
}

func NewService(
	repo Repository,
	oracles oracle.Repository,
	wallets wallet.Repository,
	users user.Repository,
	settings settings.Repository,
	notifications notification.Repository,
	whatsapp *notification.WhatsAppService,
) *Service {
	return &Service{
		repo:          repo,
		oracles:       oracles,
		wallets:       wallets,
		users:         users,
		settings:      settings,
		notifications: notifications,
		whatsapp:      whatsapp,
		now:           time.Now,
	}
}

// earningRecipient is the user credited with an oracle's earnings. AI
// personas are owned by a platform user; human oracles earn directly.
func earningRecipient(p *oracle.Profile) int {
	if p.OwnerUserID != nil {
		return *p.OwnerUserID
	}
	return p.UserID
}

// EarningCredits applies the platform commission to a consultation total.
func EarningCredits(total int64, commissionPC int) int64 {
	return total * int64(100-commissionPC) / 100
}

// Submit charges the client once, creates the consultation with its
// questions and either schedules it for automatic processing (AI oracle)
// or hands it to the assigned human oracle.
func (s *Service) Submit(ctx context.Context, clientID int, req SubmitRequest) (*SubmitResponse, error) {
	profile, err := s.oracles.GetByID(ctx, req.OracleID)
	if err != nil {
		return nil, err
	}

	total := profile.PricePerQuestion * int64(len(req.Questions))
	id := uuid.NewString()

	if err := s.wallets.Debit(ctx, clientID, total, wallet.TypeConsultationCharge, &id); err != nil {
		return nil, err
	}

	c := &Consultation{
		ID:               id,
		ClientID:         clientID,
		OracleID:         profile.ID,
		Type:             req.Type,
		TotalCredits:     total,
		SubjectName:      req.SubjectName,
		SubjectBirthDate: req.SubjectBirthDate,
		SubjectBirthTime: req.SubjectBirthTime,
	}

	var online bool
	if profile.IsAI {
		schedules, err := s.oracles.GetSchedules(ctx, profile.ID)
		if err != nil {
			logger.Error("failed to load oracle schedules", "oracle_id", profile.ID, "error", err)
			schedules = nil
		}
		online = oracle.DerivedOnline(profile, schedules, s.now())

		delay := DrawDelayMinutes(online)
		processAt := s.now().Add(time.Duration(delay) * time.Minute)
		c.Metadata = Metadata{
			IsAIScheduled:      true,
			ScheduledProcessAt: &processAt,
			DelayMinutes:       delay,
			OracleWasOnline:    online,
		}
	}

	created, err := s.repo.Create(ctx, c, req.Questions)
	if err != nil {
		// Undo the charge so the failed submission costs nothing. Refund
		// also flips the charge row to refunded, keeping the ledger clean.
		if refundErr := s.wallets.Refund(ctx, clientID, total, id); refundErr != nil {
			logger.Error("failed to refund charge after create failure", "consultation_id", id, "error", refundErr)
		}
		return nil, err
	}

	commission := s.settings.CommissionPC(ctx)
	earning := EarningCredits(total, commission)
	recipient := earningRecipient(profile)

	if profile.IsAI {
		// AI consultations cannot be declined, so the earning is final
		// at scheduling time.
		if err := s.wallets.Credit(ctx, recipient, earning, wallet.TypeEarnings, &id); err != nil {
			logger.Error("failed to credit oracle earnings", "consultation_id", id, "error", err)
		}
		metrics.RecordConsultationCreated("ai")
		logger.Info("consultation scheduled",
			"consultation_id", id, "oracle_id", profile.ID,
			"delay_minutes", created.Metadata.DelayMinutes, "oracle_online", online)
		return &SubmitResponse{
			Success:      true,
			Message:      "Your consultation was sent. The oracle will answer shortly.",
			ScheduledAt:  created.Metadata.ScheduledProcessAt,
			Consultation: created,
		}, nil
	}

	// Human path: the earning stays pending until the oracle answers.
	if err := s.wallets.RecordPending(ctx, recipient, earning, wallet.TypeEarnings, &id); err != nil {
		logger.Error("failed to record pending earnings", "consultation_id", id, "error", err)
	}
	s.notifyOracleNewConsultation(ctx, profile, created, len(req.Questions))

	metrics.RecordConsultationCreated("human")
	logger.Info("consultation submitted", "consultation_id", id, "oracle_id", profile.ID)
	return &SubmitResponse{
		Success:      true,
		Message:      "Your consultation was sent to the oracle.",
		Consultation: created,
	}, nil
}

func (s *Service) notifyOracleNewConsultation(ctx context.Context, profile *oracle.Profile, c *Consultation, questions int) {
	client, err := s.users.FindByID(ctx, c.ClientID)
	if err != nil {
		logger.Error("failed to load client for notification", "consultation_id", c.ID, "error", err)
		return
	}

	title, body := notification.NewConsultationInbox(client.Name, questions)
	if _, err := s.notifications.Create(ctx, profile.UserID, notification.KindNewConsultation, title, body, &c.ID); err != nil {
		logger.Error("failed to create oracle notification", "consultation_id", c.ID, "error", err)
	}

	if profile.IsOnline || s.whatsapp == nil {
		return
	}
	oracleUser, err := s.users.FindByID(ctx, profile.UserID)
	if err != nil || oracleUser.Phone == nil || *oracleUser.Phone == "" {
		return
	}
	msg := notification.NewConsultationMessage(profile.DisplayName, client.Name)
	if err := s.whatsapp.Send(ctx, *oracleUser.Phone, msg); err != nil {
		logger.Error("failed to queue whatsapp message", "consultation_id", c.ID, "error", err)
	}
}

// Get returns a consultation with its questions. Clients see answers only
// once the consultation is answered, so partially processed work never
// leaks.
func (s *Service) Get(ctx context.Context, userID int, role string, id string) (*ConsultationWithQuestions, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case auth.RoleAdmin:
	case auth.RoleOracle:
		profile, err := s.oracles.GetByUserID(ctx, userID)
		if err != nil || profile.ID != c.OracleID {
			return nil, ErrNotAssigned
		}
	default:
		if c.ClientID != userID {
			return nil, ErrNotOwner
		}
	}

	questions, err := s.repo.GetQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == auth.RoleClient && c.Status != StatusAnswered && c.Status != StatusCompleted {
		for i := range questions {
			questions[i].AnswerText = nil
		}
	}

	return &ConsultationWithQuestions{Consultation: *c, Questions: questions}, nil
}

// ListMine returns the caller's consultations, newest first.
func (s *Service) ListMine(ctx context.Context, userID int, role string) ([]Consultation, error) {
	if role == auth.RoleOracle {
		profile, err := s.oracles.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListForOracle(ctx, profile.ID)
	}
	return s.repo.ListForClient(ctx, userID)
}

// Reject lets the assigned human oracle, or an admin, decline a pending
// consultation. The client is refunded exactly once, guarded by the status
// transition.
func (s *Service) Reject(ctx context.Context, callerID int, role, id, reason string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	profile, err := s.oracles.GetByID(ctx, c.OracleID)
	if err != nil {
		return err
	}
	if role != auth.RoleAdmin {
		caller, err := s.oracles.GetByUserID(ctx, callerID)
		if err != nil || caller.ID != c.OracleID {
			return ErrNotAssigned
		}
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusPending, StatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	if err := s.wallets.Refund(ctx, c.ClientID, c.TotalCredits, id); err != nil {
		logger.Error("failed to refund rejected consultation", "consultation_id", id, "error", err)
		return err
	}

	md := c.Metadata
	md.RejectionReason = reason
	if err := s.repo.UpdateMetadata(ctx, id, md); err != nil {
		logger.Error("failed to record rejection reason", "consultation_id", id, "error", err)
	}

	s.notifyClientRejected(ctx, profile, c, reason)
	logger.Info("consultation rejected", "consultation_id", id, "oracle_id", profile.ID)
	return nil
}

func (s *Service) notifyClientRejected(ctx context.Context, profile *oracle.Profile, c *Consultation, reason string) {
	title, body := notification.RejectedInbox(profile.DisplayName, reason)
	if _, err := s.notifications.Create(ctx, c.ClientID, notification.KindConsultationRejected, title, body, &c.ID); err != nil {
		logger.Error("failed to create rejection notification", "consultation_id", c.ID, "error", err)
	}

	if s.whatsapp == nil {
		return
	}
	client, err := s.users.FindByID(ctx, c.ClientID)
	if err != nil || client.Phone == nil || *client.Phone == "" {
		return
	}
	msg := notification.RejectedMessage(client.Name, profile.DisplayName)
	if err := s.whatsapp.Send(ctx, *client.Phone, msg); err != nil {
		logger.Error("failed to queue whatsapp message", "consultation_id", c.ID, "error", err)
	}
}

// Cancel lets the client withdraw a consultation that has not started
// processing. Credits come back in full.
func (s *Service) Cancel(ctx context.Context, clientID int, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.ClientID != clientID {
		return ErrNotOwner
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusPending, StatusCanceled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	if err := s.wallets.Refund(ctx, c.ClientID, c.TotalCredits, id); err != nil {
		logger.Error("failed to refund canceled consultation", "consultation_id", id, "error", err)
		return err
	}

	logger.Info("consultation canceled", "consultation_id", id, "client_id", clientID)
	return nil
}

// Answer records a human oracle's answers, one per question in order, and
// releases the pending earning.
func (s *Service) Answer(ctx context.Context, oracleUserID int, id string, req AnswerRequest) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	profile, err := s.oracles.GetByUserID(ctx, oracleUserID)
	if err != nil || profile.ID != c.OracleID {
		return ErrNotAssigned
	}

	questions, err := s.repo.GetQuestions(ctx, id)
	if err != nil {
		return err
	}
	if len(req.Answers) != len(questions) {
		return ErrAnswerCountMismatch
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusPending, StatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	for i, q := range questions {
		if err := s.repo.SetAnswer(ctx, q.ID, req.Answers[i]); err != nil {
			return fmt.Errorf("failed to save answer %d: %w", i+1, err)
		}
	}
	if err := s.repo.MarkAnswered(ctx, id); err != nil {
		return err
	}

	recipient := earningRecipient(profile)
	if err := s.wallets.ConfirmPending(ctx, recipient, wallet.TypeEarnings, id); err != nil {
		logger.Error("failed to confirm pending earnings", "consultation_id", id, "error", err)
	}

	s.notifyClientAnswered(ctx, profile, c)
	logger.Info("consultation answered", "consultation_id", id, "oracle_id", profile.ID)
	return nil
}

func (s *Service) notifyClientAnswered(ctx context.Context, profile *oracle.Profile, c *Consultation) {
	title, body := notification.AnsweredInbox(profile.DisplayName)
	if _, err := s.notifications.Create(ctx, c.ClientID, notification.KindConsultationAnswered, title, body, &c.ID); err != nil {
		logger.Error("failed to create answered notification", "consultation_id", c.ID, "error", err)
	}

	if s.whatsapp == nil {
		return
	}
	client, err := s.users.FindByID(ctx, c.ClientID)
	if err != nil || client.Phone == nil || *client.Phone == "" {
		return
	}
	msg := notification.AnsweredMessage(client.Name, profile.DisplayName)
	if err := s.whatsapp.Send(ctx, *client.Phone, msg); err != nil {
		logger.Error("failed to queue whatsapp message", "consultation_id", c.ID, "error", err)
	}
}

// Complete lets the client acknowledge an answered consultation.
func (s *Service) Complete(ctx context.Context, clientID int, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.ClientID != clientID {
		return ErrNotOwner
	}

	ok, err := s.repo.TransitionStatus(ctx, id, StatusAnswered, StatusCompleted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAnswered
	}
	return nil
}
