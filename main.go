package main

import (
	"context"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"docuchat-service/internal/auth"
	"docuchat-service/internal/config"
	"docuchat-service/internal/db"
	"docuchat-service/internal/handlers"
	"docuchat-service/internal/middleware"
	"docuchat-service/internal/observability"
	"docuchat-service/internal/ocr"
	"docuchat-service/internal/rabbitmq"
	"docuchat-service/internal/repositories"
	"docuchat-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), "docuchat-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit.docuchat", "docuchat-service", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	documentRepo := repositories.NewDocumentRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	ocrClient := ocr.NewMistralClient(cfg.MistralAPIKey, cfg.MistralBaseURL, cfg.OCRModel)
	processor := ocr.NewProcessor(ocrClient, filepath.Join(cfg.MediaDir, "outputs"))

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit, cfg.IsAdminUsername)
	chatHandler := handlers.NewChatHandler(roomRepo, messageRepo, userRepo, audit)
	ocrHandler := handlers.NewOCRHandler(documentRepo, processor, audit, cfg.MediaDir, cfg.BaseURL)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("docuchat-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/media", cfg.MediaDir)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/forgot-password", authHandler.ForgotPassword)

	authMiddleware := middleware.AuthMiddleware(tokens, userRepo)
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRPS, cfg.UploadBurst)

	router.POST("/auth/change-password", authMiddleware, authHandler.ChangePassword)
	router.POST("/auth/security-questions", authMiddleware, authHandler.SetSecurityQuestions)
	router.GET("/users", authMiddleware, authHandler.ListUsers)

	router.POST("/chats/start", authMiddleware, chatHandler.StartChat)
	router.GET("/chats/:room_id/messages", authMiddleware, chatHandler.GetRoomMessages)
	router.POST("/chats/:room_id/messages", authMiddleware, chatHandler.PostRoomMessage)
	router.PATCH("/chats/:room_id/messages/:message_id", authMiddleware, chatHandler.EditMessage)
	router.DELETE("/chats/:room_id/messages/:message_id/me", authMiddleware, chatHandler.HideMessageForMe)
	router.DELETE("/chats/:room_id/messages/:message_id/all", authMiddleware, chatHandler.RetractMessageForAll)

	router.POST("/ocr/upload", authMiddleware, uploadLimiter.Middleware(), ocrHandler.Upload)
	router.GET("/ocr/history", authMiddleware, ocrHandler.History)
	router.DELETE("/ocr/documents/:file_name", authMiddleware, ocrHandler.Delete)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
