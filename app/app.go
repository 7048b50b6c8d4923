// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"hrms-api/config"
	"hrms-api/db"
	"hrms-api/handler"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/repository"
	"hrms-api/router"
	"hrms-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

const migrationsSource = "file://db/migrations"

// Server holds the wired layers of a running instance.
type Server struct {
	Handler http.Handler

	db    *sql.DB
	cache *redis.Client
}

// Close releases the database pool and the Redis client.
func (s *Server) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// Build connects to the stores, prepares the schema and seed data, and wires
// repositories, services and handlers together.
func Build(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	srv := &Server{db: database}

	if err := db.RunMigrations(migrationsSource, db.DSN(cfg)); err != nil {
		srv.Close()
		return nil, err
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	if err := roleRepo.SeedRoles(ctx, model.AllRoles); err != nil {
		srv.Close()
		return nil, err
	}

	// --- Services ---
	signer, err := service.NewTokenSigner(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.AccessTTL())
	if err != nil {
		srv.Close()
		return nil, err
	}
	ledger := service.NewRefreshLedger(tokenRepo, cfg.RefreshTTL())
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)

	var limiter service.LoginLimiter
	if cfg.Redis.Enabled {
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			// Throttling fails open; the server still starts without it.
			logger.Log.WithError(err).Warn("Redis unavailable, login throttling disabled")
		} else {
			srv.cache = client
			limiter = service.NewRedisLoginLimiter(client, cfg.LoginThrottle.MaxAttempts, cfg.ThrottleWindow())
		}
	}

	authService := service.NewAuthService(database, userRepo, signer, ledger, hasher, limiter, service.AuthPolicy{
		DefaultRole:         cfg.DefaultRole(),
		SelfAssignableRoles: cfg.SelfAssignableRoles(),
		RotateRefreshTokens: cfg.JWT.RotateRefreshTokens,
	})
	userService := service.NewUserService(userRepo, hasher)

	if cfg.Auth.SeedUsersFile != "" {
		if err := seedUsers(ctx, userService, cfg.Auth.SeedUsersFile); err != nil {
			srv.Close()
			return nil, err
		}
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	srv.Handler = router.NewRouter(authHandler, userHandler, signer)
	return srv, nil
}

func seedUsers(ctx context.Context, users *service.UserService, path string) error {
	entries, err := service.LoadSeedUsers(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Log.WithField("file", path).Warn("Seed users file not found, skipping")
			return nil
		}
		return err
	}
	created, err := users.SeedUsers(ctx, entries)
	if err != nil {
		return err
	}
	logger.Log.WithField("created", created).Info("Seed users applied")
	return nil
}

func Run() {
	config.LoadConfig(".")
	cfg := &config.AppConfig
	logger.Init(cfg.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	srv, err := Build(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatalf("Error initializing application: %v", err)
	}
	defer srv.Close()

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
