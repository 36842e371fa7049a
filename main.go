package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/logger"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment)

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}

	shutdownTracer, err := telemetry.InitTracer(context.Background(), "messaging-service", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	logger.Info().Str("mode", rabbitmq.PublisherMode(publisher)).Msg("event publisher ready")

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AuditExchange); err == nil {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	} else {
		logger.Warn().Err(err).Msg("message events disabled")
	}

	audit := telemetry.NewAuditEmitter(publisher, "audit.messaging", "messaging-service", cfg.Environment)

	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, audit, cfg.ConversationTombstones)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware("messaging-service"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	router.GET("/conversations", authMiddleware, messageHandler.ListConversations)
	router.GET("/conversations/:user_id/messages", authMiddleware, messageHandler.GetThread)
	router.POST("/conversations/:user_id/init", authMiddleware, messageHandler.InitConversation)

	router.GET("/messages", authMiddleware, messageHandler.ListMessages)
	router.POST("/messages", authMiddleware, messageHandler.SendMessage)
	router.GET("/messages/:message_id", authMiddleware, messageHandler.GetMessage)
	router.PUT("/messages/:message_id", authMiddleware, messageHandler.UpdateMessage)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.PUT("/messages/:message_id/status", authMiddleware, messageHandler.UpdateStatus)

	handlers.RegisterDebugRoutes(router, audit, cfg.EnableDebugRoutes)

	logger.Info().Str("port", cfg.Port).Msg("messaging service listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
