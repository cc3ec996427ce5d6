package consultation

import (
	"errors"
	"net/http"

	"startarot/internal/api"
	"startarot/internal/auth"
	"startarot/internal/wallet"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit godoc
// @Summary      Submit a consultation
// @Description  Charges the client's wallet and sends the questions to the chosen oracle.
// @Tags         consultations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SubmitRequest  true  "Consultation payload"
// @Success      201      {object}  SubmitResponse
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Router       /consultations [post]
func (h *Handler) Submit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient credits"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit consultation"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List the caller's consultations
// @Tags         consultations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Consultation
// @Router       /consultations [get]
func (h *Handler) List(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetUserRole(c)

	cs, err := h.service.ListMine(c.Request.Context(), userID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load consultations"})
		return
	}

	c.JSON(http.StatusOK, cs)
}

// Get godoc
// @Summary      Consultation detail with questions
// @Tags         consultations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Consultation ID"
// @Success      200  {object}  ConsultationWithQuestions
// @Failure      403  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /consultations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetUserRole(c)

	result, err := h.service.Get(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Answer godoc
// @Summary      Oracle: answer a consultation
// @Tags         consultations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Consultation ID"
// @Param        request  body      AnswerRequest  true  "One answer per question, in order"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Router       /consultations/{id}/answer [post]
func (h *Handler) Answer(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	if err := h.service.Answer(c.Request.Context(), userID, c.Param("id"), req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation answered"})
}

// Reject godoc
// @Summary      Oracle: reject a pending consultation
// @Description  Refunds the client in full. Only the assigned oracle or an admin can reject.
// @Tags         consultations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Consultation ID"
// @Param        request  body      RejectRequest  false "Optional reason"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Router       /consultations/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// The body is optional; a missing reason is fine.
	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	role, _ := auth.GetUserRole(c)
	if err := h.service.Reject(c.Request.Context(), userID, role, c.Param("id"), req.Reason); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation rejected and refunded"})
}

// Cancel godoc
// @Summary      Client: cancel a pending consultation
// @Tags         consultations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Consultation ID"
// @Success      200  {object}  gin.H
// @Failure      400  {object}  gin.H
// @Router       /consultations/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation canceled and refunded"})
}

// Complete godoc
// @Summary      Client: mark an answered consultation as completed
// @Tags         consultations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Consultation ID"
// @Success      200  {object}  gin.H
// @Failure      400  {object}  gin.H
// @Router       /consultations/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.service.Complete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation completed"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConsultationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
	case errors.Is(err, ErrNotAssigned), errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNotAnswered), errors.Is(err, ErrAnswerCountMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
