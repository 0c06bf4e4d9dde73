package cli

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

	"github.com/Chative-core-poc-v1/intake/internal/api"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// ServeCommand creates the serve command
func ServeCommand(cfg AppConfig) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		Long: `Serve the intake dialogue over HTTP.

Routes:
  POST /chat                      JSON {cid, message} or multipart with a file
  GET  /meta/{kind}/suggest?q=    registry autocomplete
  POST /admin/registries/reload   reload registries (bearer ADMIN_TOKEN)
  GET  /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg AppConfig) error {
	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if pg, ok := app.Postgres(); ok {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
	}

	handler, err := api.NewServer(app.Service, api.Config{
		UploadDir:   cfg.Storage.UploadDir,
		MaxUploadMB: cfg.HTTP.MaxUploadMB,
		AdminToken:  cfg.HTTP.AdminToken,
	})
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       model.DurationOr(cfg.HTTP.ReadTimeout, 30*time.Second),
		WriteTimeout:      model.DurationOr(cfg.HTTP.WriteTimeout, 60*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	grace := model.DurationOr(cfg.HTTP.ShutdownGrace, 10*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	logx.Info().Dur("grace", grace).Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
