package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unoserver/internal/auth"
	"github.com/lox/unoserver/internal/randutil"
	"github.com/lox/unoserver/internal/server"
	"golang.org/x/sync/errgroup"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"uno-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to as host:port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `short:"s" long:"seed" help:"Seed for shuffling, 0 for random (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("uno-server"),
		kong.Description("Server-authoritative UNO over HTTP and WebSocket"),
	)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	if CLI.Addr != "" {
		host, port, err := net.SplitHostPort(CLI.Addr)
		if err != nil {
			fmt.Printf("Invalid address %q: %v\n", CLI.Addr, err)
			ctx.Exit(1)
		}
		cfg.Server.Address = host
		if cfg.Server.Port, err = strconv.Atoi(port); err != nil {
			fmt.Printf("Invalid port %q: %v\n", port, err)
			ctx.Exit(1)
		}
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)

	secret := cfg.Auth.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			logger.Fatal("Failed to generate token secret", "error", err)
		}
		logger.Warn("No auth secret configured, tokens will not survive a restart")
	}

	authority, err := auth.NewAuthority(secret, cfg.TokenTTL())
	if err != nil {
		logger.Fatal("Failed to create token authority", "error", err)
	}

	hub := server.NewHub(logger)
	registry := server.NewRegistry(quartz.NewReal(), cfg.LockTimeout())
	service := server.NewGameService(registry, authority, hub, randutil.NewSource(cfg.Game.Seed), *cfg.Game, cfg.GetPublicAddress(), logger)
	srv := server.NewServer(cfg.GetServerAddress(), service, authority, hub, logger)

	logger.Info("Starting UNO server",
		"addr", cfg.GetServerAddress(),
		"public", cfg.GetPublicAddress(),
		"maxPlayers", cfg.Game.MaxPlayers,
		"bots", cfg.Game.BotStrategy,
		"seed", cfg.Game.Seed)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "games", registry.Len())
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "uno",
	})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBU").Foreground(lipgloss.Color("8"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Bold(true).Foreground(lipgloss.Color("10"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(lipgloss.Color("11"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERRO").Bold(true).Foreground(lipgloss.Color("9"))
	styles.Keys["game"] = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	logger.SetStyles(styles)

	return logger
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
