package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"bizdash/internal/backend"
	"bizdash/internal/cli"
	"bizdash/internal/config"
	"bizdash/internal/core"
	apphttp "bizdash/internal/http"
	applog "bizdash/internal/log"
	"bizdash/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(applog.ComponentApp)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(parent, logger.Logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	dashboard := services.NewDashboard(result.Backend, cfg.DashboardCacheTTL, core.NewBucketer(core.SystemClock, cfg.Location()))

	opts := apphttp.DefaultOptions()
	opts.Logger = logger.WithComponent(applog.ComponentHTTP)
	srv := apphttp.NewServer(":"+cfg.Port, result.Backend, dashboard, opts)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting bizdash server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", cfg.Location().String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = result.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
	case <-ctx.Done():
	}

	return cli.GracefulShutdown(logger.Logger, shutdownTimeout,
		srv.Shutdown,
		func(context.Context) error { return result.Close() },
	)
}
