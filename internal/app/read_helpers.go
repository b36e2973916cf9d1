package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/loaddocs/docmatch/internal/cli"
	"github.com/loaddocs/docmatch/internal/config"
	"github.com/loaddocs/docmatch/internal/db"
	"github.com/loaddocs/docmatch/internal/logging"
	"github.com/loaddocs/docmatch/internal/matching"
)

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// readInput reads a payload from a file path, or from stdin when the
// path is "-".
func readInput(path string) ([]byte, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if trimmed == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", trimmed, err)
	}
	return raw, nil
}

// newOfflineEngine builds an engine from environment thresholds without
// touching the database. Used by commands that work on local payloads.
func newOfflineEngine(envLoader *cli.EnvLoader, logger zerolog.Logger) (*matching.Engine, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	matchCfg, err := config.LoadMatching()
	if err != nil {
		return nil, fmt.Errorf("load matching config: %w", err)
	}
	return matching.NewEngine(matchCfg, nil, logger)
}

func connectPool(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *config.Config, *db.Pool, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return ctx, cancel, cfg, pool, nil
}

func newCommandLogger() zerolog.Logger {
	environment := strings.TrimSpace(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}

	logger, err := logging.New(environment, level)
	if err != nil {
		return zerolog.New(os.Stderr).With().Timestamp().Str("service", "docmatch").Logger()
	}
	return logger
}
