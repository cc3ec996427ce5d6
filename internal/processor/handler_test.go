package processor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"startarot/internal/api"
	"startarot/internal/consultation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sweepRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/internal/process-consultations", h.Sweep)
	return router
}

func TestSweepEndpoint_RejectsBadSecret(t *testing.T) {
	h := NewHandler(nil, "right-secret")
	router := sweepRouter(h)

	req := httptest.NewRequest("POST", "/internal/process-consultations", nil)
	req.Header.Set("X-Sweep-Secret", "wrong-secret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSweepEndpoint_RejectsWhenUnconfigured(t *testing.T) {
	h := NewHandler(nil, "")
	router := sweepRouter(h)

	req := httptest.NewRequest("POST", "/internal/process-consultations", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSweepEndpoint_RunsSweep(t *testing.T) {
	now := time.Now()
	svc, m := newTestService(now)
	m.consultations.On("ListDue", mock.Anything, now).Return([]consultation.Consultation{}, nil)

	h := NewHandler(svc, "right-secret")
	router := sweepRouter(h)

	req := httptest.NewRequest("POST", "/internal/process-consultations", nil)
	req.Header.Set("X-Sweep-Secret", "right-secret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SweepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Processed)
}
