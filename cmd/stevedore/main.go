// Command stevedore runs the vessel and cargo record service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jacentio/stevedore/internal/config"
	"github.com/jacentio/stevedore/internal/httpapi"
	"github.com/jacentio/stevedore/internal/model"
	"github.com/jacentio/stevedore/internal/paging"
	"github.com/jacentio/stevedore/internal/platform/logger"
	"github.com/jacentio/stevedore/internal/relation"
	"github.com/jacentio/stevedore/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stevedore",
		Short:        "Record-management service for vessels and cargo items",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context(),
				awsconfig.WithRegion(cfg.AWSRegion))
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				if cfg.DynamoEndpoint != "" {
					o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
				}
			})

			st := store.New(client, store.Config{
				Tables: map[string]string{
					model.KindVessel: cfg.VesselTable,
					model.KindCargo:  cfg.CargoTable,
				},
				CounterTable: cfg.CounterTable,
			})

			manager := relation.NewManager(st, log)
			engine := paging.NewEngine(st, cfg.PageSize)

			router := httpapi.NewRouter(httpapi.RouterConfig{
				Vessels:   httpapi.NewVesselHandler(manager, engine, log),
				Cargo:     httpapi.NewCargoHandler(manager, engine, log),
				JWTSecret: []byte(cfg.JWTSecret),
				Log:       log,
			})

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Port),
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			log.Info("server listening", "addr", srv.Addr)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				log.Info("shutting down", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}
