package consultation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"startarot/internal/auth"
	"startarot/internal/oracle"
	"startarot/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// consultationRouter wires the handler behind a stub identity middleware so
// requests carry the given user without going through the JWT layer.
func consultationRouter(h *Handler, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	})
	router.POST("/consultations", h.Submit)
	router.GET("/consultations/:id", h.Get)
	router.POST("/consultations/:id/reject", h.Reject)
	return router
}

func TestSubmitEndpoint_InsufficientBalance(t *testing.T) {
	svc, m := newTestService(time.Now())
	router := consultationRouter(NewHandler(svc), 1, auth.RoleClient)

	profile := &oracle.Profile{ID: 3, UserID: 30, PricePerQuestion: 25}
	m.oracles.On("GetByID", mock.Anything, 3).Return(profile, nil)
	m.wallets.On("Debit", mock.Anything, 1, int64(25), wallet.TypeConsultationCharge, mock.Anything).
		Return(wallet.ErrInsufficientBalance)

	body := bytes.NewBufferString(`{"oracle_id": 3, "type": "text", "questions": ["Will it rain?"]}`)
	req := httptest.NewRequest("POST", "/consultations", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient credits")
}

func TestSubmitEndpoint_MalformedBody(t *testing.T) {
	svc, _ := newTestService(time.Now())
	router := consultationRouter(NewHandler(svc), 1, auth.RoleClient)

	body := bytes.NewBufferString(`{"oracle_id": 3, "type": "fax", "questions": []}`)
	req := httptest.NewRequest("POST", "/consultations", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEndpoint_NotFound(t *testing.T) {
	svc, m := newTestService(time.Now())
	router := consultationRouter(NewHandler(svc), 1, auth.RoleClient)

	m.repo.On("GetByID", mock.Anything, "missing").Return(nil, ErrConsultationNotFound)

	req := httptest.NewRequest("GET", "/consultations/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectEndpoint_NotAssigned(t *testing.T) {
	svc, m := newTestService(time.Now())
	router := consultationRouter(NewHandler(svc), 99, auth.RoleOracle)

	c := &Consultation{ID: "cid", ClientID: 1, OracleID: 4, Status: StatusPending}
	m.repo.On("GetByID", mock.Anything, "cid").Return(c, nil)
	m.oracles.On("GetByID", mock.Anything, 4).Return(&oracle.Profile{ID: 4, UserID: 40}, nil)
	m.oracles.On("GetByUserID", mock.Anything, 99).Return(&oracle.Profile{ID: 9, UserID: 99}, nil)

	req := httptest.NewRequest("POST", "/consultations/cid/reject", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
