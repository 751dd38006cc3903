package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "communique-chatbot/internal/app"
	googleauth "communique-chatbot/internal/auth/google"
	"communique-chatbot/internal/bootstrap"
	"communique-chatbot/internal/cache"
	"communique-chatbot/internal/platform/rabbitmq"
	"communique-chatbot/internal/repository"
	"communique-chatbot/internal/transport/http/handler"
	"communique-chatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/chat", "web/chat.html")
	router.StaticFile("/admin", "web/admin.html")
	router.GET("/health", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	convRepo := repository.NewConversationRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	jobPublisher := rabbitmq.NewJobPublisher(app.MQConn, app.Config.RabbitMQ.IngestQueue)
	googleVerifier := googleauth.NewVerifier(app.Config.Auth.GoogleClientID)

	authService := appsvc.NewAuthService(
		userRepo,
		googleVerifier,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireHour)*time.Hour,
	)
	docService := appsvc.NewDocumentService(docRepo, convRepo, jobPublisher, app.VectorIndex, app.Logger)
	chatService := appsvc.NewChatService(
		convRepo,
		historyCache,
		app.AIClient,
		app.AIClient,
		app.VectorIndex,
		app.Config.Pinecone.TopK,
		app.Config.OpenAI.MaxHistoryTurns,
		app.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	docHandler := handler.NewDocumentHandler(docService)
	chatHandler := handler.NewChatHandler(chatService)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/google", authHandler.GoogleAuth)

	authed := api.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	authed.POST("/documents/add", docHandler.Add)
	authed.POST("/documents/bulk-add", docHandler.BulkAdd)
	authed.GET("/documents", docHandler.List)
	authed.GET("/stats", docHandler.Stats)
	authed.POST("/chat", chatHandler.Chat)
	authed.GET("/history", chatHandler.History)

	return router
}
