package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/poferraz/motion-lite/internal/config"
	"github.com/poferraz/motion-lite/internal/plan"
	"github.com/poferraz/motion-lite/internal/state"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to the plan CSV/TSV file (required)")
	selectNames := flag.String("select", "", "comma-separated session names to select, in workout order")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing state")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: motionlite-import -config config.yaml -file plan.csv [-select \"Day 1,Day 2\"] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env file")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Error("failed to read plan file", "path", *filePath, "error", err)
		os.Exit(1)
	}

	res := plan.Parse(string(data))
	for _, d := range res.Diagnostics {
		log.Warn("plan diagnostic", "detail", d.String())
	}
	if !res.OK() {
		log.Error("plan rejected", "path", *filePath)
		os.Exit(1)
	}
	log.Info("plan parsed",
		"rows", len(res.Rows),
		"sessions", len(res.SessionNames),
		"warnings", len(res.Diagnostics),
	)

	selected := splitNames(*selectNames)
	if err := validateSelection(selected, res.SessionNames); err != nil {
		log.Error("invalid selection", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be written")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	store := state.NewStore(backend, log)
	defer store.Close()

	if _, err := store.SetCSVData(ctx, string(data), res); err != nil {
		log.Error("failed to store plan", "error", err)
		os.Exit(1)
	}
	if len(selected) > 0 {
		if _, err := store.SetSelectedSessions(ctx, selected); err != nil {
			log.Error("failed to store selection", "error", err)
			os.Exit(1)
		}
	}

	log.Info("import complete", "sessions", res.SessionNames, "selected", selected)
}

// splitNames parses the -select value, dropping empty segments so a
// trailing comma is harmless.
func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// validateSelection rejects names the parsed plan does not contain, before
// anything is written.
func validateSelection(selected, available []string) error {
	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	for _, name := range selected {
		if !known[name] {
			return fmt.Errorf("session %q is not in the plan (have: %s)", name, strings.Join(available, ", "))
		}
	}
	return nil
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
