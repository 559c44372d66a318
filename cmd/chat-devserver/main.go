package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"free-chat-client/cmd/chat-devserver/internal/handler"
	"free-chat-client/cmd/chat-devserver/internal/middleware"
	"free-chat-client/cmd/chat-devserver/internal/service"
	"free-chat-client/cmd/chat-devserver/internal/store"
	"free-chat-client/config"
	"free-chat-client/internal/logging"
)

// chat-devserver implements the remote service's wire contract locally so
// the client can be developed and demoed without the production backend.
// Storage is in memory only.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	users := store.NewUserStore()
	for _, seed := range cfg.DevServer.Users {
		if _, err := users.CreateUser(seed.Username, seed.Password, seed.DisplayName); err != nil {
			logger.Warn("failed to seed user", zap.String("username", seed.Username), zap.Error(err))
		}
	}
	messages := store.NewMessageStore()
	jwtService := service.NewJWTService(cfg.DevServer.JwtSecret, cfg.DevServer.Expire_H)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   "chat-devserver",
			"timestamp": time.Now(),
		})
	})

	r.POST("/token", handler.TokenHandler(users, jwtService))

	authorized := r.Group("/")
	authorized.Use(middleware.BearerAuth(jwtService))
	{
		authorized.GET("/users/me", handler.MeHandler(users))
		authorized.GET("/messages/", handler.ListMessagesHandler(messages))
		authorized.POST("/messages/", handler.PostMessageHandler(messages))
	}

	logger.Info("chat-devserver listening",
		zap.Int("port", cfg.DevServer.Port),
		zap.Int("seeded_users", len(cfg.DevServer.Users)))
	log.Fatal(r.Run(fmt.Sprintf(":%d", cfg.DevServer.Port)))
}
