package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewPostgres(cmd.Context(), cfg.Store.DatabaseURL, &cfg.Store.Pool)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}
		zap.L().Info("migrations applied", zap.Int("count", len(store.Migrations())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
