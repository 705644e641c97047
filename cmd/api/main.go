package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chicommerce/catalog-api/internal/cache"
	"github.com/chicommerce/catalog-api/internal/config"
	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/handler"
	"github.com/chicommerce/catalog-api/internal/middleware"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/service"
)

// main is the entrypoint for the catalog HTTP API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, cfg.DB.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis when configured
	var (
		productCache service.ProductDetailCache
		cachePinger  handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		productCache = cache.NewProductCache(redisClient, cfg.Redis.ProductTTL)
		cachePinger = redisClient
		log.Info().Dur("ttl", cfg.Redis.ProductTTL).Msg("redis connected, product cache enabled")
	} else {
		log.Info().Msg("REDIS_HOST not set, product cache disabled")
	}

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	optionSetRepo := repository.NewOptionSetRepository(db)
	cartRepo := repository.NewCartRepository(db)
	customizationRepo := repository.NewCustomizationSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// 5. Initialize services
	productSvc := service.NewProductService(productRepo, templateRepo, productCache)
	templateSvc := service.NewTemplateService(templateRepo, productCache)
	optionSetSvc := service.NewOptionSetService(optionSetRepo)
	cartSvc := service.NewCartService(cartRepo)
	customizationSvc := service.NewCustomizationService(customizationRepo)
	exportSvc := service.NewExportService(productRepo)

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:        handler.NewHealthHandler(statsRepo, cachePinger, cfg.APIPrefix),
		Product:       handler.NewProductHandler(productSvc, exportSvc),
		Template:      handler.NewTemplateHandler(templateSvc),
		OptionSet:     handler.NewOptionSetHandler(optionSetSvc),
		Cart:          handler.NewCartHandler(cartSvc),
		Customization: handler.NewCustomizationHandler(customizationSvc),
	}

	// 7. Initialize middleware
	middlewares := &handler.Middlewares{
		Admin:   middleware.NewAdminAuthMiddleware(cfg.AdminAPIKey, cfg.InvalidKeyLimit),
		Session: middleware.NewSessionMiddleware(cfg.Session),
	}

	// 8. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, cfg.APIPrefix, handlers, middlewares)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("prefix", cfg.APIPrefix).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 11. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if env == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
