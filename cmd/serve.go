package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/api"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve drill sessions over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides DRILLGYM_HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.HTTPAddr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	logger, err := newLogger("")
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := newContent(ctx, logger)
	if err != nil {
		logger.Warn("LLM provider not configured, AI features disabled", zap.Error(err))
	}
	set, err := buildEngines(c, logger)
	if err != nil {
		return err
	}
	defer set.Wait()

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithSessionConfig(cfg.Session()),
		api.WithStats(st),
		api.WithEviction(cfg.SessionRetention, cfg.SessionIdleTimeout),
	}
	if c.solver != nil {
		opts = append(opts, api.WithSolver(c.solver))
	}
	srv := api.New(set, st, opts...)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	logger.Info("listening", zap.String("addr", addr), zap.Int("engines", set.Len()))
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
