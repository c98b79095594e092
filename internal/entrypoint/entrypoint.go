// Package entrypoint wires the portal together and runs the HTTP server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/hajimeclub/portal/internal/audit"
	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/config"
	"github.com/hajimeclub/portal/internal/database"
	"github.com/hajimeclub/portal/internal/database/announcements"
	auditdb "github.com/hajimeclub/portal/internal/database/audit"
	"github.com/hajimeclub/portal/internal/database/trainings"
	"github.com/hajimeclub/portal/internal/database/users"
	http_controllers "github.com/hajimeclub/portal/internal/http"
)

// Run builds all components from configuration and serves until interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting portal v%s (%s)", version, cfg.Global.Environment)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	announcementRepo := announcements.NewRepository(db.DB)
	trainingRepo := trainings.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo)

	secret, err := sessionSecret(cfg)
	if err != nil {
		log.Fatalf("Session secret: %v", err)
	}

	// Session token store: Redis when configured, in-process otherwise.
	var tokenStore auth.TokenStore
	var memoryStore *auth.MemoryStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer client.Close()
		tokenStore = auth.NewRedisStore(client)
		log.Printf("Session store: redis (%s)", cfg.Redis.Addr)
	} else {
		memoryStore = auth.NewMemoryStore()
		tokenStore = memoryStore
		log.Printf("Session store: in-memory (single-process only)")
	}

	hasher := auth.NewHasher(auth.ScryptParams{
		N: cfg.Auth.ScryptN,
		R: cfg.Auth.ScryptR,
		P: cfg.Auth.ScryptP,
	})

	sessionManager, err := auth.NewManager(tokenStore, userRepo, secret,
		cfg.Auth.SessionLifetime, cfg.Auth.SecureCookies)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	authService, err := auth.NewService(userRepo, hasher, sessionManager)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.IsProduction() {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	if cfg.Auth.CSRFEnabled {
		router.Use(auth.CSRFMiddleware(secret, cfg.Auth.SecureCookies))
	}
	router.Use(auth.NewMiddleware(sessionManager).Handler())

	auth.NewController(authService, sessionManager, recorder).RegisterRoutes(router)
	http_controllers.NewHealthController(version).RegisterRoutes(router)
	http_controllers.NewAnnouncementsController(announcementRepo).RegisterRoutes(router)
	http_controllers.NewTrainingsController(trainingRepo).RegisterRoutes(router)
	http_controllers.NewAdminUsersController(userRepo, recorder).RegisterRoutes(router)
	http_controllers.NewAdminAuditController(auditRepo).RegisterRoutes(router)

	scheduler := startScheduler(cfg, memoryStore, auditRepo)

	Serve(router, cfg, func(ctx context.Context) {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	})
}

// sessionSecret decodes the configured secret, or generates a throwaway one
// in development. Production refuses to start without an explicit secret.
func sessionSecret(cfg *config.Config) ([]byte, error) {
	if cfg.Auth.SessionSecret != "" {
		secret, err := hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil || len(secret) < 32 {
			return nil, fmt.Errorf("AUTH_SESSION_SECRET must be at least 32 hex-encoded bytes")
		}
		return secret, nil
	}

	if cfg.IsProduction() {
		return nil, fmt.Errorf("AUTH_SESSION_SECRET is required in production")
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("WARNING: AUTH_SESSION_SECRET not set; using a generated secret. Sessions will not survive restarts.")
	secret, _ := hex.DecodeString(generated)
	return secret, nil
}

// startScheduler runs the periodic maintenance jobs: purging expired
// sessions from the in-memory store and trimming old audit events.
func startScheduler(cfg *config.Config, memoryStore *auth.MemoryStore, auditRepo *auditdb.Repository) *cron.Cron {
	scheduler := cron.New()

	if memoryStore != nil {
		// Hourly; Resolve already drops expired tokens lazily, this bounds
		// memory held by sessions that are never presented again.
		_, err := scheduler.AddFunc("0 * * * *", func() {
			if removed := memoryStore.PurgeExpired(); removed > 0 {
				log.Printf("Purged %d expired sessions", removed)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule session purge: %v", err)
		}
	}

	if cfg.Audit.RetentionDays > 0 {
		retention := cfg.Audit.RetentionDays
		_, err := scheduler.AddFunc("30 3 * * *", func() {
			cutoff := time.Now().AddDate(0, 0, -retention)
			removed, err := auditRepo.DeleteOlderThan(cutoff)
			if err != nil {
				log.Printf("Audit cleanup failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("Removed %d audit events older than %d days", removed, retention)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule audit cleanup: %v", err)
		}
	}

	scheduler.Start()
	return scheduler
}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}
