package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/corriander/channelhop/internal/server"
	"github.com/corriander/channelhop/pkg/pipeline"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP planning API",
		Long: `Run the HTTP planning API.

Configuration comes from CHANNELHOP_* environment variables:
  CHANNELHOP_ADDR        listen address (default :8080)
  CHANNELHOP_MONGO_URI   MongoDB URI for persistent plan storage
  CHANNELHOP_MONGO_DB    MongoDB database name (default channelhop)
  CHANNELHOP_REDIS_ADDR  Redis address for a shared plan cache
  CHANNELHOP_CACHE_DIR   directory for a file-backed plan cache

Without MongoDB, plans are held in memory and lost on restart.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides CHANNELHOP_ADDR)")

	return cmd
}

func runServe(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)

	cfg := server.ConfigFromEnv()
	if addr != "" {
		cfg.Addr = addr
	}

	planCache, err := server.NewCache(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := server.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	runner := pipeline.NewRunner(planCache, logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(runner, store, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
