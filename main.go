package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/appstate"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/database"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/oidc"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/server"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/sessions"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/storage"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/users"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oauth=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OAuth.ClientID != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	checks := map[string]server.Check{}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warnf("Redis unavailable, continuing without it: %v", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	}

	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		checks["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}

	deps := server.Deps{
		Config:    cfg,
		Content:   server.NewContentService(cfg, rdb),
		Blacklist: sessions.NewBlacklist(rdb),
		Redis:     rdb,
		Checks:    checks,
	}

	var snapshotter *appstate.Snapshotter
	if mongoClient != nil {
		db := mongoClient.Database(cfg.MongoDB.Database)
		userRepo := users.NewMongoUserRepository(db.Collection("users"))
		sessionRepo := sessions.NewMongoRepository(db.Collection("sessions"))
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure user indexes: %v", err)
		}
		if err := sessionRepo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure session indexes: %v", err)
		}
		deps.Users = users.NewService(userRepo)
		deps.Sessions = sessions.NewService(sessionRepo)
		deps.State = appstate.NewService(appstate.NewMongoRepository(db.Collection("user_state")))
	} else {
		logger.Warnf("MONGODB_URI not set; users and state are kept in memory")
		stateRepo := appstate.NewMemoryRepository()
		deps.Users = users.NewService(users.NewMemoryUserRepository())
		deps.Sessions = sessions.NewService(sessions.NewMemoryRepository())
		deps.State = appstate.NewService(stateRepo)
		snapshotter = restoreSnapshot(ctx, stateRepo, cfg.State.SnapshotKey, checks)
	}
	// Redis sessions are preferred when available (fast, TTL-native)
	if rdb != nil {
		deps.Sessions = sessions.NewService(sessions.NewRedisRepository(rdb, "session:"))
		logger.Infof("using Redis for session storage")
	}

	deps.IDTokens = idTokenVerifier(ctx, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting pulseboard API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if snapshotter != nil {
		if err := snapshotter.Save(shutdownCtx); err != nil {
			logger.Errorf("failed to save state snapshot: %v", err)
		} else {
			logger.Infof("state snapshot saved")
		}
	}
}

// restoreSnapshot loads the in-memory state from MinIO when it is configured.
func restoreSnapshot(ctx context.Context, repo *appstate.MemoryRepository, key string, checks map[string]server.Check) *appstate.Snapshotter {
	minioCfg := storage.LoadMinIOConfig()
	if !minioCfg.Enabled() {
		logger.Warnf("MINIO_ENDPOINT not set; in-memory state is lost on restart")
		return nil
	}
	store, err := storage.NewMinIOStorage(minioCfg)
	if err != nil {
		logger.Warnf("MinIO unavailable, state snapshots disabled: %v", err)
		return nil
	}
	checks["minio"] = store.Ping

	snap := appstate.NewSnapshotter(repo, store, key)
	n, err := snap.Load(ctx)
	if err != nil {
		logger.Errorf("failed to load state snapshot %q: %v", key, err)
	} else {
		logger.Infof("restored %d user states from snapshot %q", n, key)
	}
	return snap
}

// idTokenVerifier enables OAuth login. ALLOW_INSECURE_TOKEN=true skips signature
// checks and is meant for integration runs only.
func idTokenVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warnf("enabling insecure ID token verifier (integration mode)")
		return oidc.NewInsecureVerifier(cfg.OAuth.ClientID)
	}
	if cfg.OAuth.ClientID == "" {
		logger.Infof("OAUTH_CLIENT_ID not set; oauth login disabled")
		return nil
	}
	ver, err := oidc.NewVerifier(ctx, cfg.OAuth.Issuer, cfg.OAuth.ClientID)
	if err != nil {
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
		return nil
	}
	return ver
}
