package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"clinic_api/internal/adapter/http/routes"
	"clinic_api/internal/infrastructure/config"
	"clinic_api/internal/infrastructure/database"
	"clinic_api/internal/infrastructure/logging"
	"clinic_api/internal/infrastructure/telemetry"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clinic-api",
		Short:         "Clinic booking and finance API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCreateTablesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Setup(cfg.Env, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELServiceName, cfg.OTLPEndpoint)
			if err != nil {
				return fmt.Errorf("setup tracing: %w", err)
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					log.Warn().Err(err).Msg("[app][telemetry] shutdown failed")
				}
			}()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			log.Info().Str("env", cfg.Env).Str("store", cfg.Store).Msg("[app][cmd] starting")
			return routes.Run(ctx, net.JoinHostPort("", cfg.Port), a.Router, cfg.ShutdownTimeout)
		},
	}
}

func newCreateTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Provision the DynamoDB tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Setup(cfg.Env, cfg.LogLevel)

			client, err := database.ConnectDynamoDB(cmd.Context())
			if err != nil {
				return err
			}
			return database.CreateTables(cmd.Context(), client, database.TableNamesFromEnv())
		},
	}
}
