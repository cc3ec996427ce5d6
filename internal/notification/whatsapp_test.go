package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWhatsApp(rdb *redis.Client, apiURL string) *WhatsAppService {
	return &WhatsAppService{
		redis:      rdb,
		apiURL:     apiURL,
		token:      "test-token",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSend_Enqueues(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestWhatsApp(db, "")

	err := svc.Send(ctx, "+5511999990000", "Your consultation was answered.")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSend_EmptyPhoneIsNoop(t *testing.T) {
	db, mock := redismock.NewClientMock()

	svc := newTestWhatsApp(db, "")

	err := svc.Send(context.Background(), "", "message")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendNow_PostsToGateway(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	db, _ := redismock.NewClientMock()
	svc := newTestWhatsApp(db, gateway.URL)

	err := svc.sendNow(context.Background(), MessageJob{
		Phone:   "+5511999990000",
		Message: "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "+5511999990000", gotBody["phone"])
	assert.Equal(t, "hello", gotBody["message"])
}

func TestSendNow_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer gateway.Close()

	db, _ := redismock.NewClientMock()
	svc := newTestWhatsApp(db, gateway.URL)

	err := svc.sendNow(context.Background(), MessageJob{Phone: "+551", Message: "x"})
	assert.Error(t, err)
}

func TestSendNow_NotConfigured(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestWhatsApp(db, "")

	err := svc.sendNow(context.Background(), MessageJob{Phone: "+551", Message: "x"})
	assert.Error(t, err)
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen(queueKey).SetVal(4)

	svc := newTestWhatsApp(db, "")

	assert.Equal(t, int64(4), svc.QueueLength(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
