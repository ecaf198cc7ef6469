package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/database"
	"github.com/soundbay/soundbay/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Runtime bundles the long-lived dependencies every service binary shares:
// configuration, the database handle, the cache store, and the JWT service.
type Runtime struct {
	Config *Config
	DB     *gorm.DB
	Store  cache.Store
	JWT    *auth.JWTService
	Log    *zap.Logger

	redis *cache.RedisStore
}

// NewRuntime loads configuration and initialises the shared runtime for a
// service binary. When Redis is enabled but unreachable the services fall
// back to the database-backed cache store rather than refusing to start.
func NewRuntime(ctx context.Context, name, configPath string) (*Runtime, error) {
	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	log := logger.WithModule(name)

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return nil, errors.New("auth.jwt.secret must be configured")
	}

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseConnection())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		closeDatabase(db, log)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	rt := &Runtime{
		Config: cfg,
		DB:     db,
		Log:    log,
	}

	rt.Store = cache.NewDatabaseStore(db)
	if cfg.Cache.Redis.Enabled {
		redisStore, redisErr := cache.NewRedisStore(ctx, cfg.RedisConnection())
		if redisErr != nil {
			log.Warn("redis unavailable, using database-backed cache", zap.Error(redisErr))
		} else {
			rt.redis = redisStore
			rt.Store = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtService, err := auth.NewJWTService(cfg.JWTConfig())
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}
	rt.JWT = jwtService

	return rt, nil
}

// Close releases the runtime's connections.
func (r *Runtime) Close() {
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.Log.Warn("failed to close redis connection", zap.Error(err))
		}
	}
	closeDatabase(r.DB, r.Log)
	_ = logger.Sync()
}

// Serve runs the HTTP server until the context is cancelled, then shuts it
// down gracefully.
func (r *Runtime) Serve(ctx context.Context, router *gin.Engine) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", r.Config.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		r.Log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		r.Log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	r.Log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return LoadConfig(path)
			}
			return LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to access database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
