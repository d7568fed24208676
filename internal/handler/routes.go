package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(router gin.IRouter, health *HealthHandler, accounts *AccountHandler, messages *MessageHandler) {
	api := router.Group("/api")

	api.GET("/", health.Root)
	api.GET("/health", health.Health)

	api.GET("/accounts", accounts.List)
	api.POST("/accounts", accounts.Create)
	api.GET("/accounts/by-email/:email", accounts.GetByEmail)
	api.GET("/accounts/:account_id", accounts.Get)
	api.PATCH("/accounts/:account_id", accounts.Update)
	api.DELETE("/accounts/:account_id", accounts.Delete)

	api.GET("/accounts/:account_id/messages", messages.List)
	api.POST("/accounts/:account_id/messages", messages.Create)
	api.GET("/accounts/:account_id/messages/:message_id", messages.Get)
	api.DELETE("/accounts/:account_id/messages/:message_id", messages.Delete)
}
