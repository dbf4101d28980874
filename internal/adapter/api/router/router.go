package router

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/adapter/api/handler"
	"rentline/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	identity *middleware.IdentityMiddleware,
	chatHandler *handler.ChatHandler,
	negotiationHandler *handler.NegotiationHandler,
	wsHandler *handler.WebSocketHandler,
) {
	SetupChatRouter(e, chatHandler, identity)
	SetupNegotiationRouter(e, negotiationHandler, identity)
	SetupWebSocketRouter(e, wsHandler, identity)
	SetupHealthRouter(e)
}
