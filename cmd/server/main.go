package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-backend/internal/config"
	"github.com/ignatzorin/gig-backend/internal/db"
	"github.com/ignatzorin/gig-backend/internal/events"
	"github.com/ignatzorin/gig-backend/internal/gateway"
	httpHandlers "github.com/ignatzorin/gig-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/gig-backend/internal/http/router"
	"github.com/ignatzorin/gig-backend/internal/logger"
	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/repository"
	"github.com/ignatzorin/gig-backend/internal/service"
	"github.com/ignatzorin/gig-backend/internal/storage"
	"github.com/ignatzorin/gig-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	evidenceStorage, err := storage.NewEvidenceStorage(cfg.EvidenceStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	gigRepo := repository.NewGigRepository(dbConn)
	appRepo := repository.NewApplicationRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Шина доменных событий и её подписчики.
	bus := events.NewBus()

	hub := ws.NewHub(ctx)
	go hub.Run()

	notificationService := service.NewNotificationService(notificationRepo, hub)
	hub.SetNotificationSaver(notificationService)

	paymentGateway := gateway.NewPaymentGateway()
	bus.Subscribe(models.EventEscrowReleased, paymentGateway.HandleEscrowEvent)
	bus.Subscribe(models.EventEscrowRefunded, paymentGateway.HandleEscrowEvent)

	for _, event := range []string{
		models.EventGigAccepted,
		models.EventGigCompleted,
		models.EventGigDisputed,
		models.EventGigResolved,
		models.EventGigRated,
	} {
		bus.Subscribe(event, notificationService.HandleGigEvent)
	}

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	lifecycleService := service.NewLifecycleService(gigRepo, appRepo, ratingRepo, disputeRepo, userRepo, bus, cfg.GigLockTimeout)
	escrowService := service.NewEscrowService(escrowRepo, gigRepo)
	ratingService := service.NewRatingService(ratingRepo)
	disputeService := service.NewDisputeService(disputeRepo, gigRepo, evidenceStorage)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	gigHandler := httpHandlers.NewGigHandler(lifecycleService)
	escrowHandler := httpHandlers.NewEscrowHandler(escrowService)
	ratingHandler := httpHandlers.NewRatingHandler(ratingService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		gigHandler,
		escrowHandler,
		ratingHandler,
		disputeHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
