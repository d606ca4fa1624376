package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreLimit int

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a batch of unscored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		limit := scoreLimit
		if limit == 0 {
			limit = cfg.Batch.DefaultLimit
		}

		n, err := e.Scorer.RunBatch(cmd.Context(), limit)
		if err != nil {
			return err
		}
		zap.L().Info("scoring run finished", zap.Int("leads_scored", n))
		return nil
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 0, "max leads per run (default from config)")
	rootCmd.AddCommand(scoreCmd)
}
