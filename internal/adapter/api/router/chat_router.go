package router

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/adapter/api/handler"
	"rentline/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, identity *middleware.IdentityMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(identity.Authenticate)

	// Room management
	chatGroup.POST("", chatHandler.CreateRoom)      // POST /v1/chats - Create or reuse a room
	chatGroup.GET("", chatHandler.ListRooms)        // GET /v1/chats - List caller's rooms
	chatGroup.GET("/:id", chatHandler.GetRoom)      // GET /v1/chats/:id - Get one room
	chatGroup.PUT("/:id/read", chatHandler.MarkRead) // PUT /v1/chats/:id/read - Clear unread backlog

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage) // POST /v1/chats/:id/messages - Send message
	chatGroup.GET("/:id/messages", chatHandler.ListMessages) // GET /v1/chats/:id/messages - List messages
}
