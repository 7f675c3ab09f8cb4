package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/munes-ai/munes/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "munes",
		Short: "Therapeutic memory assistant for Arabic-speaking patients",
		Long: "Munes runs therapeutic conversation sessions backed by an " +
			"associative memory store, with adaptive state-driven dialogue " +
			"and optional Gemma-based generation.",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newChatCmd())
	return root
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.LogMode == "development" {
		return zap.NewDevelopment()
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	return logger, nil
}
