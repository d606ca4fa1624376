package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
)

var (
	exportOut      string
	exportMinScore int
	exportMinConf  float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export qualified leads to an xlsx or csv file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOut == "" {
			return eris.New("--out is required")
		}

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		minScore := exportMinScore
		if minScore == 0 {
			minScore = cfg.Export.MinFitScore
		}
		minConf := exportMinConf
		if minConf == 0 {
			minConf = cfg.Export.MinEmailConfidence
		}

		n, err := e.Exporter.Export(cmd.Context(), exportOut, store.LeadFilter{
			MinFitScore:        minScore,
			MinEmailConfidence: minConf,
		})
		if err != nil {
			return err
		}
		zap.L().Info("export finished",
			zap.String("path", exportOut),
			zap.Int("leads", n),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (.xlsx or .csv)")
	exportCmd.Flags().IntVar(&exportMinScore, "min-score", 0, "minimum fit score (default from config)")
	exportCmd.Flags().Float64Var(&exportMinConf, "min-confidence", 0, "minimum email confidence (default from config)")
	rootCmd.AddCommand(exportCmd)
}
