package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enrichLimit int

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve emails for a batch of scored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		limit := enrichLimit
		if limit == 0 {
			limit = cfg.Batch.DefaultLimit
		}

		n, err := e.Enricher.RunBatch(cmd.Context(), limit)
		if err != nil {
			return err
		}
		zap.L().Info("enrichment run finished", zap.Int("leads_enriched", n))
		return nil
	},
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max leads per run (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
