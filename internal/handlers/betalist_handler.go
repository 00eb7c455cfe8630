package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pendium/hippo-admin/internal/domain/user"
	"github.com/pendium/hippo-admin/internal/services"
)

// BetaListHandler serves the beta-program roster endpoints.
type BetaListHandler struct {
	roster *services.BetaListService
}

// NewBetaListHandler creates a new beta roster handler.
func NewBetaListHandler(roster *services.BetaListService) *BetaListHandler {
	return &BetaListHandler{roster: roster}
}

// List handles GET /api/betalist.
func (h *BetaListHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "perPage", 10)

	overview, err := h.roster.List(c.Request.Context(), user.BetaListFilter{
		Search: c.Query("search"),
		Status: c.Query("statusFilter"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "BETA_LIST_FAILED",
			Message: "Failed to list beta users",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Get handles GET /api/betalist/:id.
func (h *BetaListHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	bu, err := h.roster.Get(c.Request.Context(), id)
	if err != nil {
		h.rosterError(c, err, "BETA_FETCH_FAILED", "Failed to fetch beta user")
		return
	}
	c.JSON(http.StatusOK, bu)
}

// Create handles POST /api/betalist.
func (h *BetaListHandler) Create(c *gin.Context) {
	var bu user.BetaUser
	if err := c.ShouldBindJSON(&bu); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.roster.Create(c.Request.Context(), &bu); err != nil {
		h.rosterError(c, err, "BETA_CREATE_FAILED", "Failed to create beta user")
		return
	}
	c.JSON(http.StatusCreated, bu)
}

// Update handles PUT /api/betalist/:id.
func (h *BetaListHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var bu user.BetaUser
	if err := c.ShouldBindJSON(&bu); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	bu.ID = id

	if err := h.roster.Update(c.Request.Context(), &bu); err != nil {
		h.rosterError(c, err, "BETA_UPDATE_FAILED", "Failed to update beta user")
		return
	}
	c.JSON(http.StatusOK, bu)
}

// Delete handles DELETE /api/betalist/:id (soft delete).
func (h *BetaListHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.roster.Remove(c.Request.Context(), []uuid.UUID{id})
	if err != nil {
		h.rosterError(c, err, "BETA_DELETE_FAILED", "Failed to delete beta user")
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "BETA_USER_NOT_FOUND",
			Message: "Beta user not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteMany handles POST /api/betalist/delete-multiple (bulk soft
// delete).
func (h *BetaListHandler) DeleteMany(c *gin.Context) {
	var req struct {
		IDs []uuid.UUID `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	deleted, err := h.roster.Remove(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "BETA_DELETE_FAILED",
			Message: "Failed to delete beta users",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": deleted})
}

func (h *BetaListHandler) rosterError(c *gin.Context, err error, code, message string) {
	switch {
	case errors.Is(err, user.ErrBetaUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "BETA_USER_NOT_FOUND",
			Message: "Beta user not found",
		})
	case errors.Is(err, user.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "EMAIL_ALREADY_EXISTS",
			Message: "A roster entry with this email already exists",
		})
	case errors.Is(err, user.ErrEmailRequired), errors.Is(err, user.ErrUserNil),
		errors.Is(err, user.ErrInvalidUserID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_BETA_USER",
			Message: "Invalid roster payload",
			Details: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    code,
			Message: message,
			Details: err.Error(),
		})
	}
}
