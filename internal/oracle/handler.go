package oracle

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

// ListOracles godoc
// @Summary      List oracle profiles
// @Tags         oracles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Profile
// @Router       /oracles [get]
func (h *Handler) ListOracles(c *gin.Context) {
	profiles, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list oracles"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetOracle godoc
// @Summary      Oracle profile by id
// @Tags         oracles
// @Security     BearerAuth
// @Produce      json
// @Param        oracleID  path      int  true  "Oracle ID"
// @Success      200       {object}  Profile
// @Failure      404       {object}  gin.H
// @Router       /oracles/{oracleID} [get]
func (h *Handler) GetOracle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("oracleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid oracle ID"})
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOracleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Oracle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load oracle"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// SetOnline godoc
// @Summary      Toggle own online flag
// @Description  Lets a human oracle flip their explicit online status.
// @Tags         oracles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      403  {object}  gin.H
// @Router       /oracle/status [put]
func (h *Handler) SetOnline(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		IsOnline bool `json:"is_online"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	p, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "No oracle profile for this user"})
		return
	}

	if err := h.repo.SetOnline(c.Request.Context(), p.ID, req.IsOnline); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_online": req.IsOnline})
}

// AdminCreate godoc
// @Summary      Admin: create oracle profile
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProfileRequest  true  "Profile"
// @Success      201      {object}  Profile
// @Failure      400      {object}  gin.H
// @Router       /admin/oracles [post]
func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	p, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create oracle"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// AdminAddSchedule godoc
// @Summary      Admin: add weekly schedule window
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        oracleID  path      int                    true  "Oracle ID"
// @Param        request   body      CreateScheduleRequest  true  "Window"
// @Success      201       {object}  ScheduleEntry
// @Failure      400       {object}  gin.H
// @Router       /admin/oracles/{oracleID}/schedules [post]
func (h *Handler) AdminAddSchedule(c *gin.Context) {
	oracleID, err := strconv.Atoi(c.Param("oracleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid oracle ID"})
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}
	if req.EndMinute <= req.StartMinute {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_minute must be after start_minute"})
		return
	}

	entry, err := h.repo.AddSchedule(c.Request.Context(), oracleID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add schedule"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}
