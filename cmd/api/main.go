package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rentline/internal/adapter/api"
	"rentline/internal/adapter/api/handler"
	apimiddleware "rentline/internal/adapter/api/middleware"
	"rentline/internal/adapter/api/router"
	"rentline/internal/adapter/repository"
	"rentline/internal/infrastructure/ledger"
	"rentline/internal/infrastructure/moderation"
	"rentline/internal/infrastructure/presence"
	"rentline/internal/infrastructure/websocket"
	"rentline/internal/usecase"
	"rentline/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	redisLedger, err := ledger.NewRedisLedger(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisLedger.Close()

	chatRoomRepo := repository.NewFirestoreChatRoomRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	negotiationRepo := repository.NewFirestoreNegotiationRepository(firestoreClient)

	wsManager := websocket.NewManager()

	chatPresence := presence.NewRegistry()
	negotiationPresence := presence.NewNegotiationRegistry()
	contentFilter := moderation.NewWordListFilter()

	chatUseCase := usecase.NewChatUseCase(chatRoomRepo, messageRepo, chatPresence, wsManager, contentFilter)
	negotiationUseCase := usecase.NewNegotiationUseCase(negotiationRepo, messageRepo, redisLedger, negotiationPresence, wsManager)

	wsManager.SetEventHandler(handler.NewPresenceEvents(chatUseCase, negotiationUseCase))

	handler.SetupHealthHandler(redisLedger)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	identity := apimiddleware.NewIdentityMiddleware()

	chatHandler := handler.NewChatHandler(chatUseCase)
	negotiationHandler := handler.NewNegotiationHandler(negotiationUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.WSSendBufferSize)

	router.Setup(e, identity, chatHandler, negotiationHandler, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
