// Package main provides the API server: scheduled market scans served over
// a JSON HTTP API, with Prometheus metrics and an optional bet ledger.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/edge-finder/internal/config"
	"github.com/yourusername/edge-finder/internal/database"
	"github.com/yourusername/edge-finder/internal/ledger"
	"github.com/yourusername/edge-finder/internal/logger"
	"github.com/yourusername/edge-finder/internal/metrics"
	"github.com/yourusername/edge-finder/internal/oddsapi"
	"github.com/yourusername/edge-finder/internal/repository"
	"github.com/yourusername/edge-finder/internal/scanner"
	"github.com/yourusername/edge-finder/internal/scheduler"
	"github.com/yourusername/edge-finder/internal/server"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "api-server",
	Short: "Serve scan results and the bet ledger over HTTP",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cmd.Context(), cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context) error {
	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
	}).Info("EdgeFinder API server starting")

	metrics.InitRegistry()
	metrics.CurrentBankroll.Set(cfg.Betting.Bankroll)

	client := oddsapi.NewClient(cfg.OddsAPI, appLog)
	defer client.Close()

	scanSvc := scanner.NewService(cfg, client, appLog)

	var ledgerSvc *ledger.Service
	if cfg.LedgerEnabled() {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to ledger database: %w", err)
		}
		defer db.Close()

		if err := repository.EnsureSchema(ctx, db); err != nil {
			return err
		}
		ledgerSvc = ledger.NewService(repository.NewPostgresBetRepository(db), cfg.Betting, appLog)
		appLog.Info("Ledger database connected")
	} else {
		appLog.Info("No ledger database configured, running scan-only")
	}

	srv := server.New(cfg, scanSvc, ledgerSvc, client, appLog)

	var sched *scheduler.Scheduler
	if cfg.Server.RefreshCron != "" && len(cfg.Sports.Keys) > 0 {
		sched = scheduler.NewScheduler(scanSvc, appLog, srv.SetSnapshot)
		if err := sched.ScheduleScan(cfg.Server.RefreshCron, configuredSports()); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		appLog.WithField("signal", sig.String()).Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	appLog.Info("EdgeFinder API server stopped")
	return nil
}

func configuredSports() []string {
	sports := make([]string, 0, len(cfg.Sports.Keys))
	for name := range cfg.Sports.Keys {
		sports = append(sports, name)
	}
	return sports
}
