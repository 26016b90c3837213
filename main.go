// Package main provides the entry point for the Masuk10 shortlink service and back office
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/masuk10/app/handlers"
	"github.com/amirphl/masuk10/app/logging"
	"github.com/amirphl/masuk10/app/middleware"
	"github.com/amirphl/masuk10/app/router"
	"github.com/amirphl/masuk10/app/services"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/config"
	"github.com/amirphl/masuk10/migrations"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	cfg    *config.ProductionConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "masuk10",
	Short:         "Masuk10 shortlink redirector and back office",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadProductionConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = logging.NewLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account, default landing content and preset themes",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// Application represents the main application structure
type Application struct {
	router    router.Router
	recorder  businessflow.ClickRecorder
	stopFuncs []func()
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("starting masuk10",
		zap.String("version", cfg.Deployment.Version),
		zap.String("environment", cfg.Deployment.Environment),
	)

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	app.router.SetupRoutes()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.router.Start(cfg.Server.Address())
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	// In-flight click writes finish before their storage goes away
	if err := app.recorder.Drain(shutdownCtx); err != nil {
		logger.Warn("click writes still pending at shutdown", zap.Error(err))
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	logger.Info("server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.Database.Driver == "sqlite" {
		db, err := initializeDatabase(cfg.Database, logger)
		if err != nil {
			return err
		}
		if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		logger.Info("sqlite schema migrated", zap.String("path", cfg.Database.SQLitePath))
		return nil
	}

	sqlDB, err := migrations.Open(cfg.Database.PostgresURL())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	applied, err := migrations.NewMigrator(sqlDB, logger).Up(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations finished", zap.Strings("applied", applied))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return err
	}

	seed := businessflow.NewSeedFlow(
		repository.NewUserRepository(db),
		repository.NewLandingContentRepository(db),
		repository.NewThemeRepository(db),
		cfg.Security.BcryptCost,
		logger,
	)
	result, err := seed.Seed(cmd.Context(), cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}

	logger.Info("seed finished",
		zap.Bool("admin_created", result.AdminCreated),
		zap.Int("content_created", result.ContentCreated),
		zap.Int("themes_created", result.ThemesCreated),
		zap.String("activated_theme", result.ActivatedTheme),
	)
	return nil
}

// initializeDatabase opens the configured database with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=1")
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	logLevel := gormlogger.Silent
	if cfg.SlowQueryLog {
		logLevel = gormlogger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// startCacheHealthMonitor pings Redis periodically until the returned function is called
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, log *zap.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Warn("redis healthcheck failed", zap.Error(err))
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication wires repositories, services, flows, handlers and the router
func initializeApplication(cfg *config.ProductionConfig, log *zap.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	rc, err := initializeCache(cfg.Cache, log)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	linkRepo := repository.NewShortLinkRepository(db)
	clickRepo := repository.NewShortLinkClickRepository(db)
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewLandingContentRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	themeRepo := repository.NewThemeRepository(db)
	customizationRepo := repository.NewThemeCustomizationRepository(db)

	// The redirect path reads through Redis when it is configured
	var lookup repository.ShortLinkLookup = linkRepo
	var invalidator businessflow.ShortLinkCacheInvalidator
	var challengeStore services.ChallengeStore
	if rc != nil {
		cached := repository.NewCachedShortLinkLookup(linkRepo, rc, cfg.Cache.RedisPrefix, cfg.Cache.DefaultTTL, log)
		lookup = cached
		invalidator = cached
		challengeStore = services.NewRedisChallengeStore(rc, cfg.Cache.RedisPrefix+"captcha:")
		stopFuncs = append(stopFuncs,
			startCacheHealthMonitor(context.Background(), rc, cfg.Cache.PingInterval, log),
			func() { _ = rc.Close() },
		)
	} else {
		memStore := services.NewMemoryChallengeStore(time.Minute)
		challengeStore = memStore
		stopFuncs = append(stopFuncs, memStore.Close)
	}

	captchaSvc, err := services.NewCaptchaServiceRotate(challengeStore, 2*time.Minute, 15, 300)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize captcha service: %w", err)
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Info("token service initialized", zap.String("issuer", cfg.JWT.Issuer), zap.String("audience", cfg.JWT.Audience))

	// Initialize flows
	recorder := businessflow.NewClickRecorder(clickRepo, log, cfg.Shortlink.ClickWriteTimeout)
	visitFlow := businessflow.NewShortLinkVisitFlow(
		businessflow.NewShortLinkResolver(lookup),
		recorder,
		cfg.Shortlink.FallbackURL,
		log,
	)
	adminShortLinkFlow := businessflow.NewAdminShortLinkFlow(
		linkRepo,
		clickRepo,
		invalidator,
		services.NewQRCodeService(),
		cfg.Deployment.PublicBaseURL,
		log,
	)
	adminAuthFlow := businessflow.NewAdminAuthFlow(userRepo, tokenService, captchaSvc, cfg.Admin.CaptchaRequired, log)
	analyticsFlow := businessflow.NewAnalyticsFlow(linkRepo, clickRepo)
	userFlow := businessflow.NewUserFlow(userRepo, cfg.Security.BcryptCost, cfg.Security.PasswordMinLength, log)
	contentFlow := businessflow.NewContentFlow(contentRepo)
	mediaFlow := businessflow.NewMediaFlow(mediaRepo, cfg.Media.UploadDir, cfg.Media.MaxSize, log)
	themeFlow := businessflow.NewThemeFlow(themeRepo, customizationRepo, db)
	landingFlow := businessflow.NewLandingFlow(themeRepo, customizationRepo, contentRepo)

	// Initialize handlers
	h := router.Handlers{
		ShortLink:      handlers.NewShortLinkHandler(visitFlow, log),
		ShortLinkAdmin: handlers.NewShortLinkAdminHandler(adminShortLinkFlow, log),
		AuthAdmin:      handlers.NewAuthAdminHandler(adminAuthFlow, log),
		Analytics:      handlers.NewAnalyticsHandler(analyticsFlow, log),
		User:           handlers.NewUserHandler(userFlow, log),
		Content:        handlers.NewContentHandler(contentFlow, log),
		Media:          handlers.NewMediaHandler(mediaFlow, log),
		Theme:          handlers.NewThemeHandler(themeFlow, log),
		Landing:        handlers.NewLandingHandler(landingFlow, log),
	}

	appRouter := router.NewFiberRouter(cfg, h, middleware.NewAuthMiddleware(tokenService), log)

	return &Application{
		router:    appRouter,
		recorder:  recorder,
		stopFuncs: stopFuncs,
	}, nil
}
