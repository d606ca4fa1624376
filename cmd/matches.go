package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchUserID string

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Generate matches and introduction reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		var written int64
		if matchUserID != "" {
			written, err = e.Generator.Run(cmd.Context(), matchUserID)
		} else {
			written, err = e.Generator.RunAll(cmd.Context())
		}
		if err != nil {
			return err
		}

		reports, errs := e.Reports.RunBatch(cmd.Context(), cfg.Batch.DefaultLimit)
		for _, re := range errs {
			zap.L().Warn("report generation error", zap.Error(re))
		}

		zap.L().Info("match run finished",
			zap.Int64("matches_generated", written),
			zap.Int("reports_generated", reports),
			zap.Int("report_errors", len(errs)),
		)
		return nil
	},
}

func init() {
	matchesCmd.Flags().StringVar(&matchUserID, "user", "", "generate matches for a single user id")
	rootCmd.AddCommand(matchesCmd)
}
