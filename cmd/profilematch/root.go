package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/config"
	logpkg "github.com/kailas-cloud/profilematch/internal/logger"
)

var (
	globalEnv    string
	globalConfig config.Config
	globalLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "profilematch",
	Short: "Personality profile matching over vector search",
	Long: `profilematch stores person profiles as text embeddings and finds
the most similar people for a free-text description.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.Load(globalEnv)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		logger, err := logpkg.New(globalEnv, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		globalLogger = logger
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if globalLogger != nil {
			_ = globalLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalEnv, "env", config.GetEnv(),
		"Config environment (loads config/<env>.yaml)")
}
