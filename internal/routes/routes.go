package routes

import (
	"ged_backend/internal/auth"
	"ged_backend/internal/handlers"
	"ged_backend/internal/logger"
	"ged_backend/internal/middleware"
	"ged_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the HTTP API and the websocket subscription.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.Handler,
	tokens *auth.TokenManager,
) {
	api := ginRouter.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(tokens), middleware.CSRFMiddleware())
	{
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.PreferenceHandler.RegisterRoutes(api)
	}

	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware(tokens))
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}
