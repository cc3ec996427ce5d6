package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"startarot/internal/astrology"
	"startarot/internal/consultation"
	"startarot/internal/llm"
	"startarot/internal/logger"
	"startarot/internal/metrics"
	"startarot/internal/notification"
	"startarot/internal/oracle"
	"startarot/internal/prompt"
	"startarot/internal/settings"
	"startarot/internal/user"
)

const memoryLimit = 10

// ChartProvider computes birth charts. Satisfied by astrology.Client.
type ChartProvider interface {
	ComputeChart(ctx context.Context, birth astrology.BirthData) (*astrology.Chart, error)
}

// Service drains due AI consultations: it claims each one, generates the
// answers and delivers the result. Failures are retried with a backoff and
// dead-lettered after the attempt limit.
type Service struct {
	consultations consultation.Repository
	oracles       oracle.Repository
	users         user.Repository
	settings      settings.Repository
	notifications notification.Repository
	completer     llm.Completer
	charts        ChartProvider
	whatsapp      *notification.WhatsAppService

	now func() time.Time
}

func NewService(
	consultations consultation.Repository,
	oracles oracle.Repository,
	users user.Repository,
	settings settings.Repository,
	notifications notification.Repository,
	completer llm.Completer,
	charts ChartProvider,
	whatsapp *notification.WhatsAppService,
) *Service {
	return &Service{
		consultations: consultations,
		oracles:       oracles,
		users:         users,
		settings:      settings,
		notifications: notifications,
		completer:     completer,
		charts:        charts,
		whatsapp:      whatsapp,
		now:           time.Now,
	}
}

// Sweep processes every due consultation sequentially. One consultation's
// failure never aborts the run; it is recorded and the sweep moves on.
func (s *Service) Sweep(ctx context.Context) (int, []string) {
	metrics.SweepRunsTotal.Inc()

	due, err := s.consultations.ListDue(ctx, s.now())
	if err != nil {
		logger.Error("failed to list due consultations", "error", err)
		return 0, []string{fmt.Sprintf("list due: %v", err)}
	}

	processed := 0
	var errs []string
	for i := range due {
		c := &due[i]

		claimed, err := s.consultations.TransitionStatus(ctx, c.ID, consultation.StatusPending, consultation.StatusProcessing)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: claim: %v", c.ID, err))
			continue
		}
		if !claimed {
			// Another sweep got there first.
			metrics.RecordConsultationProcessed("skipped")
			continue
		}

		if err := s.processConsultation(ctx, c); err != nil {
			logger.Error("consultation processing failed",
				"consultation_id", c.ID, "retry_count", c.Metadata.RetryCount, "error", err)
			s.handleFailure(ctx, c, err)
			errs = append(errs, fmt.Sprintf("%s: %v", c.ID, err))
			continue
		}

		processed++
		metrics.RecordConsultationProcessed("answered")
	}

	logger.Info("sweep finished", "due", len(due), "processed", processed, "failed", len(errs))
	return processed, errs
}

func (s *Service) processConsultation(ctx context.Context, c *consultation.Consultation) error {
	questions, err := s.consultations.GetQuestions(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return errors.New("consultation has no questions")
	}

	profile, err := s.oracles.GetByID(ctx, c.OracleID)
	if err != nil {
		return fmt.Errorf("load oracle: %w", err)
	}
	client, err := s.users.FindByID(ctx, c.ClientID)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}

	masterPrompt, err := s.settings.Get(ctx, settings.KeyMasterAIPrompt)
	if err != nil {
		return fmt.Errorf("load master prompt: %w", err)
	}

	memory, err := s.consultations.RecentAnsweredBetween(ctx, c.ClientID, c.OracleID, c.ID, memoryLimit)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	systemPrompt := prompt.Build(prompt.BuildInput{
		Now:          s.now(),
		MasterPrompt: masterPrompt,
		Memory:       toMemoryEntries(memory),
		Consultant:   s.consultantContext(ctx, client),
		Subject:      s.subjectContext(ctx, c),
		Oracle: prompt.OracleContext{
			Name:         profile.DisplayName,
			Specialty:    profile.Specialty,
			Bio:          profile.Bio,
			Personality:  profile.Personality,
			SystemPrompt: profile.SystemPrompt,
		},
	})

	// Questions are answered in order, each seeing the previous answers.
	// Any upstream failure aborts the whole consultation for retry.
	var history []llm.Message
	for _, q := range questions {
		answer, err := s.completer.Complete(ctx, systemPrompt, history, q.QuestionText)
		if err != nil {
			return fmt.Errorf("question %d: %w", q.QuestionOrder, err)
		}
		answer = StripMarkdown(answer)

		if err := s.consultations.SetAnswer(ctx, q.ID, answer); err != nil {
			return fmt.Errorf("save answer %d: %w", q.QuestionOrder, err)
		}
		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: q.QuestionText},
			llm.Message{Role: llm.RoleAssistant, Content: answer},
		)
	}

	if err := s.consultations.MarkAnswered(ctx, c.ID); err != nil {
		return fmt.Errorf("mark answered: %w", err)
	}

	s.notifyAnswered(ctx, profile, client, c.ID)
	logger.Info("consultation answered", "consultation_id", c.ID, "oracle_id", profile.ID, "questions", len(questions))
	return nil
}

func toMemoryEntries(memory []consultation.MemoryQA) []prompt.MemoryEntry {
	entries := make([]prompt.MemoryEntry, 0, len(memory))
	for _, qa := range memory {
		entries = append(entries, prompt.MemoryEntry{Question: qa.QuestionText, Answer: qa.AnswerText})
	}
	return entries
}

// consultantContext builds the client block, attaching a birth chart when
// the astrology service can produce one. Chart failures degrade to the
// plain birth data.
func (s *Service) consultantContext(ctx context.Context, client *user.User) prompt.PersonContext {
	pc := prompt.PersonContext{Name: client.Name}
	if client.BirthDate != nil {
		pc.BirthDate = *client.BirthDate
	}
	if client.BirthTime != nil {
		pc.BirthTime = *client.BirthTime
	}
	if s.charts != nil && client.BirthDate != nil && client.BirthTime != nil && client.BirthLat != nil && client.BirthLon != nil {
		birth := astrology.BirthData{Date: pc.BirthDate, Time: pc.BirthTime, Lat: *client.BirthLat, Lon: *client.BirthLon}
		chart, err := s.charts.ComputeChart(ctx, birth)
		if err != nil {
			if !errors.Is(err, astrology.ErrNotConfigured) {
				logger.Error("failed to compute birth chart", "user_id", client.ID, "error", err)
			}
		} else {
			pc.Astrology = astrology.FormatChart(client.Name, chart)
		}
	}
	return pc
}

// subjectContext builds the third-party block when the consultation is
// about someone other than the consultant. Subjects carry no coordinates,
// so their chart is computed from birth date and time alone.
func (s *Service) subjectContext(ctx context.Context, c *consultation.Consultation) *prompt.PersonContext {
	if c.SubjectName == nil {
		return nil
	}
	pc := &prompt.PersonContext{Name: *c.SubjectName}
	if c.SubjectBirthDate != nil {
		pc.BirthDate = *c.SubjectBirthDate
	}
	if c.SubjectBirthTime != nil {
		pc.BirthTime = *c.SubjectBirthTime
	}
	if s.charts != nil && c.SubjectBirthDate != nil && c.SubjectBirthTime != nil {
		birth := astrology.BirthData{Date: pc.BirthDate, Time: pc.BirthTime}
		chart, err := s.charts.ComputeChart(ctx, birth)
		if err != nil {
			if !errors.Is(err, astrology.ErrNotConfigured) {
				logger.Error("failed to compute subject birth chart", "consultation_id", c.ID, "error", err)
			}
		} else {
			pc.Astrology = astrology.FormatChart(pc.Name, chart)
		}
	}
	return pc
}

// handleFailure pushes the consultation back to pending with retry
// bookkeeping, or flags it as dead-lettered once the attempt limit is hit.
func (s *Service) handleFailure(ctx context.Context, c *consultation.Consultation, procErr error) {
	md := c.Metadata
	md.RetryCount++
	md.LastError = procErr.Error()

	if md.RetryCount >= consultation.MaxRetries {
		md.ProcessingFailed = true
		metrics.RecordConsultationProcessed("dead_letter")
		s.notifyDeadLetter(ctx, c, md.LastError)
	} else {
		next := s.now().Add(consultation.RetryDelay)
		md.ScheduledProcessAt = &next
		metrics.RecordConsultationProcessed("retried")
	}

	if err := s.consultations.UpdateMetadata(ctx, c.ID, md); err != nil {
		logger.Error("failed to update retry metadata", "consultation_id", c.ID, "error", err)
	}
	if _, err := s.consultations.TransitionStatus(ctx, c.ID, consultation.StatusProcessing, consultation.StatusPending); err != nil {
		logger.Error("failed to release claimed consultation", "consultation_id", c.ID, "error", err)
	}
	c.Metadata = md
}

// notifyDeadLetter alerts the oracle's operator, or the platform admin when
// the oracle has no owner. At most one alert is written per consultation.
func (s *Service) notifyDeadLetter(ctx context.Context, c *consultation.Consultation, lastError string) {
	exists, err := s.notifications.ExistsForConsultation(ctx, notification.KindProcessingFailed, c.ID)
	if err != nil {
		logger.Error("failed to check dead-letter notification", "consultation_id", c.ID, "error", err)
		return
	}
	if exists {
		return
	}

	recipient := 0
	if profile, err := s.oracles.GetByID(ctx, c.OracleID); err == nil && profile.OwnerUserID != nil {
		recipient = *profile.OwnerUserID
	} else if adminID, err := s.users.FindAdminID(ctx); err == nil {
		recipient = adminID
	}
	if recipient == 0 {
		logger.Error("no recipient for dead-letter notification", "consultation_id", c.ID)
		return
	}

	clientName := "a client"
	if client, err := s.users.FindByID(ctx, c.ClientID); err == nil {
		clientName = client.Name
	}

	title, body := notification.DeadLetterInbox(clientName, c.ID, lastError)
	if _, err := s.notifications.Create(ctx, recipient, notification.KindProcessingFailed, title, body, &c.ID); err != nil {
		logger.Error("failed to create dead-letter notification", "consultation_id", c.ID, "error", err)
	}
}

func (s *Service) notifyAnswered(ctx context.Context, profile *oracle.Profile, client *user.User, consultationID string) {
	title, body := notification.AnsweredInbox(profile.DisplayName)
	if _, err := s.notifications.Create(ctx, client.ID, notification.KindConsultationAnswered, title, body, &consultationID); err != nil {
		logger.Error("failed to create answered notification", "consultation_id", consultationID, "error", err)
	}

	if s.whatsapp == nil || client.Phone == nil || *client.Phone == "" {
		return
	}
	msg := notification.AnsweredMessage(client.Name, profile.DisplayName)
	if err := s.whatsapp.Send(ctx, *client.Phone, msg); err != nil {
		logger.Error("failed to queue whatsapp message", "consultation_id", consultationID, "error", err)
	}
}
