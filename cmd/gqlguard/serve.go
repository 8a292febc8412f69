package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/gqlguard/internal/config"
	"github.com/hanpama/gqlguard/internal/eventbus"
	"github.com/hanpama/gqlguard/internal/otel"
	"github.com/hanpama/gqlguard/internal/server"
	"github.com/hanpama/gqlguard/internal/validator"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr         string
		pretty       bool
		otelEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP endpoint that validates GraphQL requests",
		Long: `Serve /validate, which accepts GraphQL requests (GET, POST or batched
POST) and answers each with a validation report. Operations are never
executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Merge(&config.Config{
				OTel:   config.OTelConfig{Endpoint: otelEndpoint},
				Server: config.ServerConfig{Addr: addr, Pretty: pretty},
			})
			sch, err := a.loadSchema()
			if err != nil {
				return err
			}

			eventbus.Use(eventbus.New())
			shutdown, err := otel.Setup(a.cfg.OTel.Endpoint, a.cfg.OTel.Service)
			if err != nil {
				return fmt.Errorf("otel setup: %w", err)
			}
			defer func() { _ = shutdown(context.Background()) }()

			v := validator.New(sch,
				validator.WithLogger(a.logger),
				validator.WithFailFast(a.cfg.Validation.FailFast),
			)
			sc := a.cfg.Server
			opts := []server.Option{
				server.WithTimeout(sc.Timeout),
				server.WithMaxBodyBytes(sc.MaxBodyBytes),
				server.WithLogger(a.logger),
			}
			if sc.Pretty {
				opts = append(opts, server.WithPretty())
			}
			if len(sc.CORSOrigins) > 0 {
				opts = append(opts, server.WithCORS(sc.CORSOrigins...))
			}

			mux := http.NewServeMux()
			mux.Handle("/validate", server.New(v, opts...))
			srv := &http.Server{Addr: sc.Addr, Handler: mux}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			a.logger.Info("validation server listening", zap.String("addr", sc.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default: :8080)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON responses")
	cmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP collector endpoint")
	return cmd
}
