package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinabrahms/checkers/internal/auth"
	"github.com/justinabrahms/checkers/internal/config"
	"github.com/justinabrahms/checkers/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line flags
	var showHelp bool
	var configPath string
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg)

	key, err := auth.LoadKey(cfg.Session.KeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load session key")
	}
	if cfg.Session.KeyPath == "" {
		log.Warn().Msg("No session.key_path set, sessions will not survive a restart")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(cfg, auth.NewTokenIssuer(key, cfg.Session.TTL), hub)
	go service.RunJanitor(ctx, time.Minute)

	router := mux.NewRouter()
	router.Use(web.CORSMiddleware)
	service.RegisterRoutes(router)

	// Serve static files
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))

	// WriteTimeout stays zero so websocket connections are not cut off
	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("human", cfg.HumanColor().String()).
			Dur("ai_delay", cfg.Game.AIDelay).
			Msg("Starting checkers server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stop()
	service.Close()

	log.Info().Msg("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Development.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func showHelpMessage() {
	fmt.Println(`Checkers Server

DESCRIPTION:
    Serves a game of checkers between a browser player and an automated
    opponent. The opponent captures whenever it can and otherwise picks a
    random legal move. Each browser gets its own game, tracked by a signed
    session cookie.

USAGE:
    checkers-server [OPTIONS]

OPTIONS:
    -h, --help        Show this help message
    -config PATH      Read configuration from PATH instead of ./config.yaml

CONFIGURATION:
    Settings come from config.yaml and CHECKERS_* environment variables
    (for example CHECKERS_SERVER_PORT=9000).

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          static_dir: ./web/static

        game:
          ai_delay: 1s       # pause before the opponent moves
          human_color: red   # red moves first
          seed: 0            # 0 seeds from the clock

        session:
          key_path: ./session-key.pem
          ttl: 24h

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET  /api/health          - Service health check
    GET  /api/game            - Current game state for this browser
    POST /api/game/select     - Select a square: {"row": 5, "col": 0}
    POST /api/game/click      - Click in board pixels: {"x": 50, "y": 630}
    POST /api/game/reset      - Start a new game, keeping the scoreboard
    GET  /api/ws              - WebSocket stream of game state

EXAMPLES:
    # Start with default configuration
    checkers-server

    # Play white against a fast opponent
    CHECKERS_GAME_HUMAN_COLOR=white CHECKERS_GAME_AI_DELAY=200ms checkers-server

SEE ALSO:
    generate-session-key(1)`)
}
