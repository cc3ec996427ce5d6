package processor

import (
	"crypto/subtle"
	"net/http"

	"startarot/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	secret  string
}

func NewHandler(service *Service, secret string) *Handler {
	return &Handler{service: service, secret: secret}
}

// Sweep godoc
// @Summary      Process due consultations
// @Description  Drains every AI consultation whose scheduled time has passed. Meant to be called periodically by a cron job.
// @Tags         internal
// @Produce      json
// @Param        X-Sweep-Secret  header    string  true  "Shared sweep secret"
// @Success      200  {object}  api.SweepResponse
// @Failure      401  {object}  api.ErrorResponse
// @Router       /internal/process-consultations [post]
func (h *Handler) Sweep(c *gin.Context) {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Sweep-Secret")), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid sweep secret"})
		return
	}

	processed, errs := h.service.Sweep(c.Request.Context())
	c.JSON(http.StatusOK, api.SweepResponse{
		Success:   len(errs) == 0,
		Processed: processed,
		Errors:    len(errs),
	})
}
