// Command outlet is a small terminal client for the portal auth flow.
// It restores any persisted session, then either logs in with the demo
// credentials or walks the QR challenge handshake.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neoidea/outlet/adapters/api"
	"github.com/neoidea/outlet/adapters/events"
	"github.com/neoidea/outlet/adapters/store"
	"github.com/neoidea/outlet/ports"
	"github.com/neoidea/outlet/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := os.Getenv("OUTLET_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		logger.Fatal("invalid OUTLET_BASE_URL", zap.Error(err))
	}

	mdiID := os.Getenv("OUTLET_MDI_ID")
	if mdiID == "" {
		mdiID = "172"
	}

	kv, err := openStore(ctx, logger)
	if err != nil {
		logger.Fatal("failed to open state store", zap.Error(err))
	}

	var opts []api.Option
	if lang := os.Getenv("OUTLET_LANG"); lang != "" {
		opts = append(opts, api.WithLang(lang))
	}
	remote := api.NewClient(&http.Client{Timeout: 15 * time.Second}, *base, mdiID, opts...)

	cfg := service.Config{Logger: logger}
	if pub := openPublisher(logger); pub != nil {
		cfg.Events = pub
	}

	sessions := service.NewSessionStore(kv, logger)
	client := service.NewAuthManager(remote, sessions, cfg)

	client.Restore(ctx)
	if snap := client.Snapshot(); snap.IsAuthenticated {
		logger.Info("restored session", zap.String("email", snap.Identity.Email))
		ok, err := client.VerifyAuthentication(ctx)
		logger.Info("verified session", zap.Bool("valid", ok), zap.Error(err))
		return
	}

	email := os.Getenv("OUTLET_DEMO_EMAIL")
	password := os.Getenv("OUTLET_DEMO_PASSWORD")

	if password != "" {
		if err := client.Login(ctx, email, password); err != nil {
			logger.Fatal("login failed", zap.Error(err))
		}
		logger.Info("logged in", zap.String("email", client.Snapshot().Identity.Email))
		return
	}

	// No password configured; fall back to the QR handshake.
	ch, err := client.RequestQRChallenge(ctx, email)
	if err != nil {
		logger.Fatal("challenge request failed", zap.Error(err))
	}
	fmt.Printf("Scan this challenge in the companion app: %s\n", ch.Token)

	if err := client.StartPolling(ctx); err != nil {
		logger.Fatal("polling failed to start", zap.Error(err))
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			client.StopPolling()
			logger.Info("cancelled")
			return
		case <-ticker.C:
			snap := client.Snapshot()
			if snap.IsAuthenticated {
				logger.Info("challenge approved", zap.String("email", snap.Identity.Email))
				return
			}
			if snap.Err != "" {
				logger.Fatal("challenge failed", zap.String("error", snap.Err))
			}
		}
	}
}

// openStore picks the session store backend from OUTLET_STORE. Unset or
// unknown values fall back to the in-memory store.
func openStore(ctx context.Context, logger *zap.Logger) (ports.Store, error) {
	switch os.Getenv("OUTLET_STORE") {
	case "file":
		path := os.Getenv("OUTLET_STATE_FILE")
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			path = home + "/.outlet/state.json"
		}
		return store.NewFileStore(path)
	case "redis":
		opts, err := redis.ParseURL(redisURL())
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(redis.NewClient(opts)), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(ctx, pool)
	default:
		logger.Info("using in-memory session store; sessions will not persist")
		return store.NewMemoryStore(), nil
	}
}

// openPublisher wires session events onto a Redis stream when REDIS_URL
// is set. Without it the client simply does not publish events.
func openPublisher(logger *zap.Logger) ports.EventPublisher {
	if os.Getenv("REDIS_URL") == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL())
	if err != nil {
		logger.Warn("invalid REDIS_URL, events disabled", zap.Error(err))
		return nil
	}
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redis.NewClient(opts),
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		logger.Warn("failed to create event publisher, events disabled", zap.Error(err))
		return nil
	}
	return events.NewWatermillPublisher(publisher)
}

func redisURL() string {
	if u := os.Getenv("REDIS_URL"); u != "" {
		return u
	}
	return "redis://localhost:6379/0"
}
