// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/chiptally/chiptally/internal/cache"
	"github.com/chiptally/chiptally/internal/database"
	"github.com/chiptally/chiptally/internal/handlers"
	"github.com/chiptally/chiptally/internal/middleware"
	"github.com/chiptally/chiptally/internal/monitor"
	"github.com/chiptally/chiptally/internal/session"
	"github.com/chiptally/chiptally/internal/table"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := database.NewRoomStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	// Redis feeds the action history queue; the service runs fine without it.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, action history disabled: %v", err)
	}

	mon := monitor.New("chiptally")
	if metricsAddr := os.Getenv("METRICS_ADDR"); metricsAddr != "" {
		mon.Serve(metricsAddr)
		logger.Infof("Metrics on %s", metricsAddr)
	}

	engine := table.NewEngine(store, engineConfig(logger), logger)
	sessions := session.NewRegistry(logger)
	srv := handlers.NewServer(engine, sessions, mon, logger)

	mux := http.NewServeMux()

	// room endpoints
	mux.Handle("/api/rooms", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(srv),
	)))
	mux.Handle("/api/rooms/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GetRoomHandler(srv),
	)))

	// table websocket
	mux.Handle("/ws", http.HandlerFunc(handlers.WSHandler(logger, srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// engineConfig reads the reveal-window delays from the environment, falling
// back to the defaults. Values use time.ParseDuration syntax ("3s", "750ms").
func engineConfig(logger *logrus.Logger) table.Config {
	cfg := table.DefaultConfig()
	if v := os.Getenv("AWARD_REVEAL_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AwardRevealDelay = d
		} else {
			logger.Warnf("Ignoring invalid AWARD_REVEAL_DELAY %q", v)
		}
	}
	if v := os.Getenv("RESET_REVEAL_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ResetRevealDelay = d
		} else {
			logger.Warnf("Ignoring invalid RESET_REVEAL_DELAY %q", v)
		}
	}
	return cfg
}
