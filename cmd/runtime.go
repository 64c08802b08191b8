package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/contentgen"
	"github.com/abhisek/drillgym/internal/engines"
	"github.com/abhisek/drillgym/internal/llm"
	"github.com/abhisek/drillgym/internal/logging"
	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/store"
)

// newLogger builds the command logger. A non-empty file keeps log output
// off the terminal.
func newLogger(file string) (*zap.Logger, error) {
	return logging.New(logging.Options{Env: cfg.Env, Level: cfg.LogLevel, File: file})
}

// uiLogFile returns where the terminal UI logs: DRILLGYM_LOG_FILE, else
// drillgym.log next to the database.
func uiLogFile(dbPath string) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return filepath.Join(filepath.Dir(dbPath), "drillgym.log")
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, string, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	return st, dbPath, nil
}

// content holds the AI collaborators. Both are nil without a provider.
type content struct {
	provider llm.Provider
	source   contentgen.Source
	solver   session.Solver
}

// newContent builds the configured LLM provider and wraps it as a
// rate-limited content source and a step solver.
func newContent(ctx context.Context, logger *zap.Logger) (content, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM, logger)
	if err != nil {
		return content{}, err
	}
	if provider == nil {
		logger.Info("no LLM provider configured, adaptive engines serve their banks")
		return content{}, nil
	}

	gcfg := contentgen.DefaultConfig()
	return content{
		provider: provider,
		source:   contentgen.NewThrottle(contentgen.NewLLMSource(provider, gcfg, logger), cfg.RefillRate),
		solver:   contentgen.NewStepSolver(provider, gcfg),
	}, nil
}

// buildEngines assembles the engine catalogue around c.
func buildEngines(c content, logger *zap.Logger) (*engines.Set, error) {
	set, err := engines.Build(engines.Options{
		Source:  c.source,
		Adapter: cfg.Adapter(),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build engines: %w", err)
	}
	return set, nil
}

// sessionOptions returns the runner options shared by the terminal and
// HTTP front ends.
func sessionOptions(c content, logger *zap.Logger) []session.Option {
	opts := []session.Option{session.WithConfig(cfg.Session()), session.WithLogger(logger)}
	if c.solver != nil {
		opts = append(opts, session.WithSolver(c.solver))
	}
	return opts
}
