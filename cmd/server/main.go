package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/app"
	"github.com/iliyamo/service-booking/internal/catalog"
	"github.com/iliyamo/service-booking/internal/config"
	"github.com/iliyamo/service-booking/internal/database"
	"github.com/iliyamo/service-booking/internal/handler"
	"github.com/iliyamo/service-booking/internal/media"
	"github.com/iliyamo/service-booking/internal/middleware"
	"github.com/iliyamo/service-booking/internal/queue"
	"github.com/iliyamo/service-booking/internal/repository"
	"github.com/iliyamo/service-booking/internal/router"
	"github.com/iliyamo/service-booking/internal/service"
)

const (
	uploadsPrefix   = "/uploads"
	eventLogDir     = "logs"
	shutdownTimeout = 10 * time.Second
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins

	cfg := config.Load()
	logger := app.NewLogger(cfg.IsProduction())
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Info("redis disabled; using in-process captcha store and rate limits")
	}

	bookings, closeStore := openBookingStore(ctx, cfg, logger)
	defer closeStore()
	comments := repository.NewCommentRepo(cfg.CommentsPath())
	settings := repository.NewSettingsRepo(cfg.SettingsPath)
	loader := catalog.NewLoader(cfg.ContentDir)

	var captchaStore repository.CaptchaStore = repository.NewMemoryCaptchaStore()
	if rdb != nil {
		captchaStore = repository.NewRedisCaptchaStore(rdb, cfg.CaptchaTTL)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL, logger)
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.RabbitURL, eventLogDir, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking event consumer stopped", zap.Error(err))
			}
		}()
	}

	images := media.NewImages(cfg.UploadsDir, uploadsPrefix+"/"+filepath.Base(cfg.UploadsDir))
	captchaSvc := service.NewCaptchaService(captchaStore, cfg.CaptchaTTL)
	commentSvc := service.NewCommentService(comments, bookings, images, logger)
	bookingSvc := service.NewBookingService(bookings, commentSvc, loader, captchaSvc, settings, events, logger)
	authSvc := service.NewAuthService(settings, cfg.JWTSecret, cfg.AccessTTLMin)

	sweeper := app.NewSweeper("captcha", captchaSvc, cfg.CaptchaSweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	e := newServer(cfg, rdb, logger)
	comm := handler.NewCommentHandler(commentSvc, logger)
	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewPublicHandler(loader, settings, captchaSvc, logger),
		handler.NewBookingHandler(bookingSvc, cfg.PublicBaseURL, logger),
		comm,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		middleware.NewTokenBucket(config.LoadSubmitRateLimitConfig(), rdb),
	)
	router.RegisterAdmin(e, handler.NewAdminHandler(authSvc, bookingSvc, logger), comm, cfg.JWTSecret)
	router.RegisterUploads(e, uploadsPrefix, filepath.Dir(cfg.UploadsDir))

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("storage", cfg.StorageDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newServer builds the echo instance with the global middleware chain:
// CORS, request logging and the general rate limit.
func newServer(cfg config.Config, rdb *redis.Client, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Retry-After", "X-Cache"},
		AllowCredentials: false,
	})
	e.Use(echo.WrapMiddleware(c.Handler))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	return e
}

// openBookingStore returns the booking store selected by STORAGE_DRIVER and
// a function releasing its resources.
func openBookingStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.BookingStore, func()) {
	if cfg.StorageDriver != config.StorageMySQL {
		return repository.NewBookingRepo(cfg.BookingsPath()), func() {}
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("open mysql", zap.Error(err))
	}
	repo := repository.NewMySQLBookingRepo(db)
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repo.Migrate(migrateCtx); err != nil {
		logger.Fatal("migrate bookings table", zap.Error(err))
	}
	return repo, func() { _ = db.Close() }
}
