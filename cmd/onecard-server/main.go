package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/onecard/onecard/internal/auth"
	"github.com/onecard/onecard/internal/room"
	"github.com/onecard/onecard/internal/server"
	"github.com/onecard/onecard/internal/stats"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"onecard-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	StatsDB  string `long:"stats-db" help:"Path to the SQLite stats database (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Load configuration
	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.StatsDB != "" {
		cfg.Stats.Path = CLI.StatsDB
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	// Setup logging
	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			ctx.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	// Stats sink
	var sink stats.Sink = stats.Noop{}
	if cfg.Stats.Path != "" {
		s, err := stats.NewSQLiteSink(cfg.Stats.Path)
		if err != nil {
			logger.Error("Failed to open stats database", "path", cfg.Stats.Path, "error", err)
			ctx.Exit(1)
		}
		defer s.Close()
		sink = s
		logger.Info("Recording game stats", "path", cfg.Stats.Path)
	}

	// Token validation
	var validator auth.Validator
	switch cfg.Auth.Mode {
	case "http":
		validator = auth.NewHTTPValidator(cfg.Auth.URL, cfg.Auth.AdminSecret)
		logger.Info("Validating tokens against account service", "url", cfg.Auth.URL)
	default:
		validator = auth.NewGuestValidator()
		logger.Info("Guest mode: all tokens accepted")
	}

	// Room registry and game service
	registry := room.NewRegistry(room.RegistryOptions{
		Logger:   logger,
		Stats:    sink,
		MaxRooms: cfg.Rooms.MaxRooms,
	})
	service := server.NewGameService(registry, validator, cfg.RoomRules(), logger)

	logger.Info("Starting OneCard Server",
		"addr", cfg.GetServerAddress(),
		"rules", cfg.RoomRules().String())

	wsServer := server.NewServer(cfg.GetServerAddress(), service, logger)

	// Run the server until it fails or a signal asks for shutdown.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(wsServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		registry.Shutdown()
		return wsServer.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
