package settings

import (
	"net/http"

	"startarot/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type UpdateRequest struct {
	Value string `json:"value" binding:"required"`
}

// Get godoc
// @Summary      Admin: read a platform setting
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        key  path      string  true  "Setting key"
// @Success      200  {object}  gin.H
// @Router       /admin/settings/{key} [get]
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := h.repo.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// Set godoc
// @Summary      Admin: update a platform setting
// @Description  Upserts a key such as the master AI prompt or the oracle commission percentage.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        key      path      string         true  "Setting key"
// @Param        request  body      UpdateRequest  true  "New value"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Router       /admin/settings/{key} [put]
func (h *Handler) Set(c *gin.Context) {
	key := c.Param("key")

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	if err := h.repo.Set(c.Request.Context(), key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
