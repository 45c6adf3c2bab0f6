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
	"github.com/sirupsen/logrus"

	"lavapp/pkg/admin"
	"lavapp/pkg/config"
	"lavapp/pkg/database"
	"lavapp/pkg/logger"
	"lavapp/pkg/middleware"
	"lavapp/pkg/repository"
	"lavapp/pkg/repository/postgres"
	"lavapp/pkg/repository/redisstore"
	"lavapp/pkg/repository/supabase"
	"lavapp/pkg/routes"
	"lavapp/pkg/session"
)

const (
	sweepSchedule      = "@every 1m"
	limiterCleanup     = 10 * time.Minute
	storedSessionTTL   = 30 * 24 * time.Hour
	storagePingTimeout = 5 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprint(os.Stderr, config.Banner(err))
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	storage, closeStorage := openTokenStorage(cfg)
	defer closeStorage()

	logrus.Infof("🔌 Initializing %s backend...", cfg.Backend)
	store, authFactory, closeBackend, err := openBackend(cfg, storage)
	if err != nil {
		logrus.Fatalf("Failed to initialize backend: %v", err)
	}
	defer closeBackend()

	manager := session.NewManager(func(clientID string) session.Accounts {
		return repository.NewAccounts(authFactory(clientID), store, cfg.AdminEmail)
	}, cfg.SessionIdleTimeout)
	if err := manager.StartSweeper(sweepSchedule); err != nil {
		logrus.Fatalf("Failed to start client sweeper: %v", err)
	}
	defer manager.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	limiter.StartCleanup(ctx, limiterCleanup)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Manager:  manager,
		Store:    store,
		Settings: admin.NewSettings(cfg),
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Server startup in goroutine
	go func() {
		logrus.Infof("🚀 Server running in %s mode", cfg.Environment)
		logrus.Infof("📡 Server listening on http://localhost:%s", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logrus.Info("✅ Server exited gracefully")
}

// openTokenStorage uses redis when configured and reachable, process memory otherwise.
func openTokenStorage(cfg *config.Config) (repository.TokenStorage, func()) {
	if cfg.RedisAddr == "" {
		logrus.Info("🗝️ Auth sessions kept in memory")
		return repository.NewMemoryTokenStorage(), func() {}
	}

	storage := redisstore.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB, storedSessionTTL)
	ctx, cancel := context.WithTimeout(context.Background(), storagePingTimeout)
	defer cancel()
	if err := storage.Ping(ctx); err != nil {
		logrus.Warnf("⚠️  Warning: Redis unavailable, keeping auth sessions in memory: %v", err)
		_ = storage.Close()
		return repository.NewMemoryTokenStorage(), func() {}
	}

	logrus.Infof("✅ Auth sessions stored in Redis at %s", cfg.RedisAddr)
	return storage, func() {
		if err := storage.Close(); err != nil {
			logrus.Errorf("Error closing redis: %v", err)
		}
	}
}

// openBackend connects the selected data store and its auth.
func openBackend(cfg *config.Config, storage repository.TokenStorage) (repository.Store, repository.AuthClientFactory, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := database.InitDatabase(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			database.CloseDatabase()
			return nil, nil, nil, err
		}
		authCfg := postgres.AuthConfig{
			Secret:   []byte(cfg.JWTSecret),
			Lifetime: cfg.TokenLifetime(),
			Timeout:  cfg.RemoteTimeout,
		}
		return postgres.NewStore(db, cfg.RemoteTimeout), postgres.AuthFactory(db, authCfg, storage), database.CloseDatabase, nil

	default:
		client, err := supabase.New(supabase.Config{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
			Timeout: cfg.RemoteTimeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		logrus.Infof("✅ Supabase client ready for %s", cfg.SupabaseURL)
		return supabase.NewStore(client), supabase.AuthFactory(client, storage), func() {}, nil
	}
}
