package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/poferraz/motion-lite/internal/config"
	"github.com/poferraz/motion-lite/internal/mcp"
	"github.com/poferraz/motion-lite/internal/state"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serverURL := flag.String("server", "", "remote MotionLite URL (e.g. https://motionlite.tail1234.ts.net); empty serves from local storage")
	apiKey := flag.String("api-key", "", "API key for remote import (defaults to MOTIONLITE_AUTH_API_KEY)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("motionlite-mcp", Version)
		return
	}

	// stdout carries the MCP stdio transport, so logs go to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env file")
	}

	var ds mcp.DataSource

	if *serverURL != "" {
		key := *apiKey
		if key == "" {
			key = os.Getenv("MOTIONLITE_AUTH_API_KEY")
		}
		ds = mcp.NewHTTPClient(*serverURL, key)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		backend, err := openBackend(context.Background(), cfg)
		if err != nil {
			log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
			os.Exit(1)
		}

		store := state.NewStore(backend, log)
		defer store.Close()

		ds = mcp.NewStoreDataSource(store)
		log.Info("local mode", "driver", cfg.Storage.Driver)
	}

	s := mcp.New(ds, Version, log)

	log.Info("MCP server listening on stdio")
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (state.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return state.OpenPostgres(ctx, cfg.Storage.Postgres.DSN())
	case config.DriverMemory:
		return state.NewMemoryBackend(), nil
	default:
		return state.OpenSQLite(cfg.Storage.Path)
	}
}
