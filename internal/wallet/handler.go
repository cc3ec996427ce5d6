package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"startarot/internal/api"
	"startarot/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// GetWallet godoc
// @Summary      Current user's wallet
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Wallet
// @Failure      401  {object}  gin.H
// @Router       /wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetTransactions godoc
// @Summary      Wallet transaction history
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   Transaction
// @Router       /wallet/transactions [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// TopUp godoc
// @Summary      Purchase credits
// @Description  Credits the wallet after a confirmed payment (payment gateway is out of scope).
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopUpRequest  true  "Amount of credits"
// @Success      200      {object}  Wallet
// @Failure      400      {object}  gin.H
// @Router       /wallet/topup [post]
func (h *Handler) TopUp(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	if err := h.repo.Credit(c.Request.Context(), userID, req.Amount, TypeCreditPurchase, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit wallet"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// AdminGrant godoc
// @Summary      Admin: grant credits to a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int           true  "User ID"
// @Param        request  body      GrantRequest  true  "Amount of credits"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Router       /admin/wallets/{userID}/grant [post]
func (h *Handler) AdminGrant(c *gin.Context) {
	h.adminCredit(c, TypeOwnerGrant)
}

// AdminGift godoc
// @Summary      Admin: gift promotional credits to a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userID   path      int           true  "User ID"
// @Param        request  body      GrantRequest  true  "Amount of credits"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Router       /admin/wallets/{userID}/gift [post]
func (h *Handler) AdminGift(c *gin.Context) {
	h.adminCredit(c, TypeGiftReceive)
}

func (h *Handler) adminCredit(c *gin.Context, txType string) {
	targetID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	if err := h.repo.Credit(c.Request.Context(), targetID, req.Amount, txType, nil); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Credits granted", "amount": req.Amount})
}
