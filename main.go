package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"talent-chat/internal/auth"
	"talent-chat/internal/db"
	"talent-chat/internal/handlers"
	"talent-chat/internal/middleware"
	"talent-chat/internal/observability"
	"talent-chat/internal/rabbitmq"
	"talent-chat/internal/repositories"
	"talent-chat/internal/telemetry"
	"talent-chat/internal/upload"
	"talent-chat/internal/ws"
)

const serviceName = "talent-chat"

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	environment := getEnv("ENVIRONMENT", "dev")

	shutdownTracing := observability.InitTracing(context.Background(), logger, serviceName, environment)
	defer shutdownTracing(context.Background())

	database, err := db.Connect(logger)
	if err != nil {
		logger.Fatalw("failed to connect to db", "error", err)
	}

	eventPublisher, err := observability.NewAMQPPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "talent_chat.events"))
	if err != nil {
		logger.Warnw("event publisher disabled", "error", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(logger, getEnv("AMQP_URL", ""), getEnv("AMQP_AUDIT_EXCHANGE", "talent_chat.audit"))
	defer auditPublisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(logger, auditPublisher, "audit_log.chat", serviceName, environment)

	tokens := auth.NewTokenService(getEnv("JWT_SECRET", "dev-secret"), 24*time.Hour)

	actorRepo := repositories.NewActorRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	ledgerRepo := repositories.NewLedgerRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)

	hub := ws.NewHub(logger)
	typing := ws.NewTypingTracker(ws.DefaultTypingTTL)

	uploadSigner := upload.NewSigner(getEnv("UPLOAD_SECRET", "dev-upload-secret"))
	uploadStore, err := upload.NewStore(logger, getEnv("UPLOAD_DIR", "./data/media"))
	if err != nil {
		logger.Fatalw("failed to create upload store", "error", err)
	}

	conversationHandler := handlers.NewConversationHandler(conversationRepo, actorRepo, hub)
	messageHandler := handlers.NewMessageHandler(conversationRepo, messageRepo, ledgerRepo, reactionRepo, actorRepo, hub, typing, auditEmitter)
	tipHandler := handlers.NewTipHandler(ledgerRepo, conversationRepo, messageRepo, actorRepo, hub, auditEmitter)
	walletHandler := handlers.NewWalletHandler(ledgerRepo)
	uploadHandler := handlers.NewUploadHandler(uploadSigner, uploadStore, getEnv("UPLOAD_BUCKET", "chat-media"), getEnv("PUBLIC_BASE_URL", "http://localhost:8083"))

	conversationWS := ws.NewConversationWebSocketHandler(hub, conversationRepo, actorRepo, tokens, typing)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.POST("/conversations/start", authMiddleware, conversationHandler.StartConversation)
	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, messageHandler.ListMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messageHandler.SendMessage)
	router.POST("/conversations/:conversation_id/read", authMiddleware, conversationHandler.MarkRead)
	router.POST("/messages/:message_id/unlock", authMiddleware, messageHandler.UnlockMessage)
	router.POST("/messages/:message_id/reactions", authMiddleware, messageHandler.ToggleReaction)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/tips", authMiddleware, tipHandler.SendTip)
	router.GET("/wallet", authMiddleware, walletHandler.GetBalance)

	router.POST("/upload/signed-url", authMiddleware, uploadHandler.CreateSignedURL)
	router.PUT("/upload/*storage_path", uploadHandler.ReceiveUpload)
	router.POST("/upload/complete", authMiddleware, uploadHandler.CompleteUpload)
	router.Static("/media", uploadStore.Root())

	router.GET("/ws/conversations/:conversation_id", conversationWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
