// Command eligibility runs the stroke-trial screening pipeline, serves
// its results over HTTP, and re-evaluates stored scores.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/api"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/config"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/evaluation"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/repository"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/service"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Stroke clinical-trial eligibility screening",
		Long: "Screens hospital admissions for stroke clinical-trial eligibility " +
			"using transparent diagnosis-code rules, and compares heuristic " +
			"screening against model-ranked screening.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a study configuration file")

	rootCmd.AddCommand(newRunCmd(), newServeCmd(), newEvaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the validated configuration and its logger.
func loadConfig() (*config.Manager, *domain.Config, error) {
	manager, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return manager, manager.GetConfig(), nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full screening pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			store, err := repository.NewSQLiteStore(cfg.Data.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			pipeline := service.NewPipeline(cfg, store, logger)
			result, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			eligible := 0
			for _, row := range result.Eligible.Rows {
				if row.EligibilityHeuristicLabel {
					eligible++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d admissions, %d eligible\n",
				result.RunID, len(result.Eligible.Rows), eligible)
			printComparison(cmd, result.Comparison)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the screening API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			store, err := repository.NewSQLiteStore(cfg.Data.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			pipeline := service.NewPipeline(cfg, store, logger)
			server := api.NewServer(cfg, pipeline, store, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				logger.Info("Shutdown signal received, gracefully shutting down")
				cancel()
			}()

			logger.WithField("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
				Info("Starting screening API server")
			return server.Start(ctx)
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var (
		scoredPath string
		kValues    []int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Re-evaluate screening strategies over stored scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			if scoredPath == "" {
				scoredPath = filepath.Join(cfg.Data.OutputDir, "scored_admissions.csv")
			}
			scored, err := service.ReadScoredAdmissions(scoredPath)
			if err != nil {
				return err
			}

			comparison, err := evaluation.CompareScreeningStrategies(scored, kValues, &cfg.StudyConfig, logger)
			if err != nil {
				return err
			}
			printComparison(cmd, comparison)
			return nil
		},
	}
	cmd.Flags().StringVar(&scoredPath, "scored", "", "path to a scored-admissions CSV (defaults to the configured output directory)")
	cmd.Flags().IntSliceVar(&kValues, "k", nil, "screening capacities to evaluate (defaults to the configured k values)")
	return cmd
}

func printComparison(cmd *cobra.Command, comparison []domain.ComparisonRow) {
	if len(comparison) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%6s %18s %12s %18s %12s\n",
		"k", "recall_heuristic", "recall_ml", "precision_heuristic", "precision_ml")
	for _, row := range comparison {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d %18.3f %12.3f %18.3f %12.3f\n",
			row.K, row.RecallHeuristic, row.RecallML, row.PrecisionHeuristic, row.PrecisionML)
	}
}
