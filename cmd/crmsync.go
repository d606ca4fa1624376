package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var crmSyncLimit int

var crmSyncCmd = &cobra.Command{
	Use:   "crmsync",
	Short: "Push qualified leads into the CRM as Lead records",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		client, err := initCRM()
		if err != nil {
			return err
		}

		limit := crmSyncLimit
		if limit == 0 {
			limit = cfg.Batch.DefaultLimit
		}

		n, err := e.crmSyncer(client).Run(cmd.Context(), limit)
		if err != nil {
			return err
		}
		zap.L().Info("crm sync finished", zap.Int("leads_synced", n))
		return nil
	},
}

func init() {
	crmSyncCmd.Flags().IntVar(&crmSyncLimit, "limit", 0, "max leads to sync (default from config)")
	rootCmd.AddCommand(crmSyncCmd)
}
