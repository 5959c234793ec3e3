package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "codethium-server/internal/app"
	"codethium-server/internal/bootstrap"
	"codethium-server/internal/cache"
	"codethium-server/internal/repository"
	"codethium-server/internal/transport/http/handler"
	"codethium-server/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// The SPA sends the token cookie cross-origin, so CORS must allow
	// credentials for exactly the configured origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{app.Config.App.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.DB)
	chatRepo := repository.NewChatRepository(app.DB)
	chatListCache := cache.NewChatListCache(
		app.Redis,
		time.Duration(app.Config.Redis.ChatListTTLSeconds)*time.Second,
	)

	tokenTTL := time.Duration(app.Config.Auth.JWTExpireHour) * time.Hour
	authService := appsvc.NewAuthService(userRepo, app.Config.Auth.JWTSecret, tokenTTL)
	chatService := appsvc.NewChatService(chatRepo, chatListCache)

	authHandler := handler.NewAuthHandler(authService, tokenTTL, app.Config.IsProduction())
	chatHandler := handler.NewChatHandler(chatService)

	authGate := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	api := router.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authGate, authHandler.Me)
	api.POST("/change-password", authGate, authHandler.ChangePassword)

	chats := api.Group("/chats")
	chats.Use(authGate)
	chats.POST("", chatHandler.Create)
	chats.GET("", chatHandler.List)
	chats.PUT("/:id", chatHandler.Update)
	chats.DELETE("/:id", chatHandler.Delete)

	return router
}
