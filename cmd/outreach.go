package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outreachLimit  int
	outreachEnroll string
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Process due outreach sends, or enroll a single lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if outreachEnroll != "" {
			created, err := e.Outreach.EnrollLead(cmd.Context(), outreachEnroll)
			if err != nil {
				return err
			}
			zap.L().Info("enrollment finished",
				zap.String("lead_id", outreachEnroll),
				zap.Bool("created", created),
			)
			return nil
		}

		limit := outreachLimit
		if limit == 0 {
			limit = cfg.Batch.DefaultLimit
		}

		sent, errs := e.Outreach.ProcessPending(cmd.Context(), limit)
		for _, se := range errs {
			zap.L().Warn("outreach error", zap.Error(se))
		}
		zap.L().Info("outreach run finished",
			zap.Int("emails_sent", sent),
			zap.Int("errors", len(errs)),
		)
		return nil
	},
}

func init() {
	outreachCmd.Flags().IntVar(&outreachLimit, "limit", 0, "max sends per run (default from config)")
	outreachCmd.Flags().StringVar(&outreachEnroll, "enroll", "", "enroll a single lead id instead of processing sends")
	rootCmd.AddCommand(outreachCmd)
}
