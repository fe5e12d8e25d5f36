package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secure-doc-gateway/config"
	_ "secure-doc-gateway/docs"
	"secure-doc-gateway/internal/handler"
	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/repository"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Secure document gateway
// @version 1.0
// @description Выдача документов по шарам и одноразовым тикетам

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "путь к файлу конфигурации")
	pflag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Ошибка создания логгера: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	zap.ReplaceGlobals(appLogger)

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		zap.L().Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Warn("Ошибка при закрытии БД", zap.Error(err))
		}
	}()

	if cfg.DatabaseConfig.RunMigrations {
		if err := db.RunMigrations(ctx); err != nil {
			zap.L().Fatal("Не удалось применить миграции", zap.Error(err))
		}
	}

	var redisClient *config.RedisClient
	if cfg.RedisConfig.Enabled {
		redisClient, err = config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			zap.L().Fatal("Ошибка подключения к Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zap.L().Warn("Ошибка при закрытии Redis", zap.Error(err))
			}
		}()
	}

	keyring, err := security.LoadKeyring(cfg.Crypto)
	if err != nil {
		zap.L().Fatal("Ошибка загрузки мастер-ключей", zap.Error(err))
	}

	storage, err := service.NewObjectStorage(ctx, &cfg.S3Config)
	if err != nil {
		zap.L().Fatal("Ошибка создания клиента хранилища", zap.Error(err))
	}

	docRepo := repository.NewDocumentRepository(db)
	shareRepo := repository.NewShareRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	quarantineRepo := repository.NewQuarantineRepository(db)
	scanJobRepo := repository.NewScanJobRepository(db)

	var rateStore ports.RateLimitStore = repository.NewRateLimitRepository(db)
	if cfg.RateLimits.Store == "redis" {
		rateStore = repository.NewRedisRateLimitRepository(redisClient)
	}

	var emitter ports.EventEmitter = service.NewLogEventEmitter(zap.L().Named("events"))
	if redisClient != nil {
		emitter = service.NewRedisEventEmitter(redisClient, cfg.RedisConfig.EventsChannel)
	}

	cookies := security.NewCookieSigner(cfg.Security.CookieSecret, time.Duration(cfg.Security.DeviceTrustTTLMinute)*time.Minute)
	hasher := security.NewBindingHasher(cfg.Security.HashSalt)
	jwtService := security.NewJWTService(&cfg.JWT)

	encryptionService := service.NewEncryptionService(keyring, docRepo, storage, db)
	deliveryService := service.NewDeliveryService(storage, encryptionService, cfg.Tickets.AllowPlaintextProxy)
	resolverService := service.NewResolverService(shareRepo, docRepo, quarantineRepo, cookies, db)
	shareService := service.NewShareService(shareRepo, emitter, db)
	ticketService := service.NewTicketService(ticketRepo, docRepo, quarantineRepo, deliveryService, hasher, db,
		time.Duration(cfg.Tickets.TTLSeconds)*time.Second)
	moderationService := service.NewModerationService(docRepo, quarantineRepo, db)
	rateLimiter := service.NewRateLimiterService(rateStore, cfg.RateLimits)
	scanService := service.NewScanService(scanJobRepo, docRepo, ticketRepo, rateStore, storage, encryptionService, db,
		cfg.Scan, cfg.Retention)

	guard := handler.NewRateGuard(rateLimiter)
	shareHandler := handler.NewShareHandler(resolverService, shareService, ticketService, deliveryService, guard,
		cookies, hasher, cfg.Server, cfg.Security.CookieSecure)
	ticketHandler := handler.NewTicketHandler(ticketService, guard, cfg.Server)
	scanHandler := handler.NewScanHandler(scanService, guard, cfg.Scan.TriggerSecret, cfg.Server)
	adminHandler := handler.NewAdminHandler(shareService, moderationService, encryptionService)

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.RequestID, middleware.Recoverer, handler.AccessLog(zap.L().Named("http")))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupPublicRoutes(router, shareHandler, ticketHandler)
	setupScanRoutes(router, scanHandler)
	setupAdminRoutes(router, adminHandler, jwtService)

	if cfg.Scan.IntervalSeconds > 0 {
		scheduler := service.NewScanScheduler(scanService, time.Duration(cfg.Scan.IntervalSeconds)*time.Second, zap.L().Named("scan"))
		if err := scheduler.Start(ctx); err != nil {
			zap.L().Fatal("Не удалось запустить планировщик проверки", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	runServer(ctx, srv)
}

func setupPublicRoutes(r chi.Router, shares *handler.ShareHandler, tickets *handler.TicketHandler) {
	r.Route("/s/{token}", func(r chi.Router) {
		r.Get("/raw", shares.RawByToken)
		r.Post("/ticket", shares.TicketByToken)
		r.Post("/unlock", shares.Unlock)
		r.Post("/verify-email", shares.VerifyEmail)
	})

	r.Route("/a/{alias}", func(r chi.Router) {
		r.Get("/raw", shares.RawByAlias)
		r.Post("/ticket", shares.TicketByAlias)
	})

	r.Get("/t/{ticketId}", tickets.Redeem)
}

func setupScanRoutes(r chi.Router, h *handler.ScanHandler) {
	r.Route("/internal/scan", func(r chi.Router) {
		r.Use(h.RequireTrigger)
		r.Post("/run", h.Run)
		r.Post("/health", h.Health)
		r.Post("/documents/{id}", h.Enqueue)
	})
}

func setupAdminRoutes(r chi.Router, h *handler.AdminHandler, jwtService *security.JWTService) {
	r.Route("/api", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))

		r.Delete("/shares/{token}", h.RevokeShare)

		r.Route("/admin", func(r chi.Router) {
			r.Use(security.RequireAdmin)
			r.Post("/documents/{id}/quarantine-override", h.GrantOverride)
			r.Delete("/documents/{id}/quarantine-override", h.RemoveOverrides)
			r.Post("/documents/{id}/seal", h.SealDocument)
			r.Post("/keys/rotate", h.RotateKeys)
		})
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		zap.L().Info("сервер запущен", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("ошибка работы сервера", zap.Error(err))
			return
		}
	case sig := <-signalChannel:
		zap.L().Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		zap.L().Warn("ошибка при остановке сервера", zap.Error(err))
	} else {
		zap.L().Info("Сервер успешно остановлен")
	}
}
