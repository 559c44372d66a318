package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"free-chat-client/cmd/chat-devserver/internal/store"
)

// ListMessagesHandler implements GET /messages/, timestamp ascending.
func ListMessagesHandler(messages *store.MessageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, messages.List())
	}
}

// PostMessageHandler implements POST /messages/. The sender is always the
// authenticated user regardless of the request body.
func PostMessageHandler(messages *store.MessageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Content string `json:"content" binding:"required"`
			Sender  string `json:"sender"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		created := messages.Append(c.GetString("username"), req.Content)
		c.JSON(http.StatusCreated, created)
	}
}
