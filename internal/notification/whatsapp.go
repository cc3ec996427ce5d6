package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"startarot/internal/logger"
	"startarot/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "whatsapp:messages"
	failedQueueKey = "whatsapp:messages:failed"
	maxSendTries   = 3
)

// MessageJob is one queued outbound WhatsApp message.
type MessageJob struct {
	Phone   string    `json:"phone"`
	Message string    `json:"message"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// WhatsAppService queues outbound messages in redis and delivers them through
// an HTTP gateway. Delivery is best-effort end to end: Send only enqueues,
// and the worker logs failures without ever surfacing them to callers.
type WhatsAppService struct {
	redis      *redis.Client
	apiURL     string
	token      string
	httpClient *http.Client
}

func NewWhatsAppService(redisAddr, apiURL, token string) *WhatsAppService {
	return NewWhatsAppServiceWithRedis(redis.NewClient(&redis.Options{
		Addr: redisAddr,
	}), apiURL, token)
}

// NewWhatsAppServiceWithRedis wraps an existing redis client instead of
// dialing one.
func NewWhatsAppServiceWithRedis(rdb *redis.Client, apiURL, token string) *WhatsAppService {
	return &WhatsAppService{
		redis:  rdb,
		apiURL: apiURL,
		token:  token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send enqueues a message. An error here only means the queue is unreachable;
// callers treat it as non-fatal.
func (s *WhatsAppService) Send(ctx context.Context, phone, message string) error {
	if phone == "" {
		return nil
	}

	job := MessageJob{
		Phone:   phone,
		Message: message,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Error("Failed to queue WhatsApp message", "phone", phone, "error", err)
		return err
	}

	logger.Debug("WhatsApp message queued", "phone", phone)
	return nil
}

func (s *WhatsAppService) Start(ctx context.Context) {
	logger.Info("WhatsApp dispatch worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("WhatsApp dispatch worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *WhatsAppService) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job MessageJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("Bad WhatsApp job data", "error", err)
		return
	}

	job.Tries++
	if err := s.sendNow(ctx, job); err != nil {
		logger.Error("Failed to send WhatsApp message", "phone", job.Phone, "attempt", job.Tries, "error", err)
		metrics.RecordWhatsAppDispatch("failed")

		if job.Tries < maxSendTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordWhatsAppDispatch("sent")
	logger.Debug("WhatsApp message sent", "phone", job.Phone)
}

func (s *WhatsAppService) sendNow(ctx context.Context, job MessageJob) error {
	if s.apiURL == "" {
		return fmt.Errorf("whatsapp gateway not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   job.Phone,
		"message": job.Message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	return nil
}

func (s *WhatsAppService) saveFailed(job MessageJob, sendErr error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Error("WhatsApp message moved to failed queue", "phone", job.Phone)
}

func (s *WhatsAppService) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.WhatsAppQueueLength.Set(float64(length))
	return length
}

func (s *WhatsAppService) Close() error {
	return s.redis.Close()
}
