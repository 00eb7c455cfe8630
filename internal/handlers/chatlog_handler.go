package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pendium/hippo-admin/internal/services"
)

// ChatLogHandler serves the admin chat-log browser.
type ChatLogHandler struct {
	chats *services.ChatLogService
}

// NewChatLogHandler creates a new chat log handler.
func NewChatLogHandler(chats *services.ChatLogService) *ChatLogHandler {
	return &ChatLogHandler{chats: chats}
}

// List handles GET /api/chatlogs.
func (h *ChatLogHandler) List(c *gin.Context) {
	page, err := h.chats.List(c.Request.Context(), services.ChatLogQuery{
		Search: c.Query("search"),
		Email:  c.Query("user"),
		Date:   c.Query("date"),
		Range:  c.Query("dateRange"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "perPage", 10),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "CHATLOG_LIST_FAILED",
			Message: "Failed to list chat logs",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, page)
}
