package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pendium/hippo-admin/internal/domain/user"
	"github.com/pendium/hippo-admin/internal/services"
)

// UserHandler serves the admin user CRUD and listing endpoints.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	overview, err := h.users.Overview(c.Request.Context(), services.UserListQuery{
		Page:        intQuery(c, "page", 1),
		PerPage:     intQuery(c, "perPage", 10),
		Search:      c.Query("search"),
		Email:       c.Query("userFilter"),
		Group:       c.Query("userGroupFilter"),
		Status:      c.Query("statusFilter"),
		ChurnPreset: c.Query("presetRangeFilter"),
		ChurnCohort: c.Query("userCohort"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "USER_LIST_FAILED",
			Message: "Failed to list users",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.userError(c, err, "USER_FETCH_FAILED", "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, u)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *gin.Context) {
	var u user.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.users.Create(c.Request.Context(), &u); err != nil {
		h.userError(c, err, "USER_CREATE_FAILED", "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Update handles PUT /api/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var u user.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST_BODY",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	u.ID = id

	if err := h.users.Update(c.Request.Context(), &u); err != nil {
		h.userError(c, err, "USER_UPDATE_FAILED", "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.userError(c, err, "USER_DELETE_FAILED", "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteMany handles POST /api/users/delete-multiple.
func (h *UserHandler) DeleteMany(c *gin.Context) {
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

	deleted, err := h.users.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "USER_DELETE_FAILED",
			Message: "Failed to delete users",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": deleted})
}

func (h *UserHandler) userError(c *gin.Context, err error, code, message string) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "User not found",
		})
	case errors.Is(err, user.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "EMAIL_ALREADY_EXISTS",
			Message: "A user with this email already exists",
		})
	case errors.Is(err, user.ErrEmailRequired), errors.Is(err, user.ErrUserNil),
		errors.Is(err, user.ErrInvalidUserID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_USER",
			Message: "Invalid user payload",
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

// pathID parses the :id path segment, writing the 400 itself on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_ID",
			Message: "ID must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// intQuery parses an integer query param, falling back on garbage.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
