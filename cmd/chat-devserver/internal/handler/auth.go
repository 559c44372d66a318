package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"free-chat-client/cmd/chat-devserver/internal/service"
	"free-chat-client/cmd/chat-devserver/internal/store"
)

// TokenHandler implements POST /token: form-encoded credentials in,
// access_token out.
func TokenHandler(users *store.UserStore, jwtService *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")
		if username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		user, err := users.GetUserByUsername(username)
		if err != nil || !user.CheckPassword(password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		accessToken, expiresAt, err := jwtService.GenerateAccessToken(user.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": accessToken,
			"token_type":   "bearer",
			"expires_at":   expiresAt.Unix(),
		})
	}
}

// MeHandler implements GET /users/me for the authenticated user.
func MeHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("username")
		user, err := users.GetUserByUsername(username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":     user.Username,
			"display_name": user.DisplayName,
		})
	}
}
