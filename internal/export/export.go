// Package export writes qualified leads to xlsx or csv files for the
// referral partner team.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
)

// Store is the subset of the lead store the exporter needs.
type Store interface {
	ListQualifiedLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error)
}

// Exporter writes qualified-lead files.
type Exporter struct {
	store Store
}

func NewExporter(s Store) *Exporter {
	return &Exporter{store: s}
}

var header = []string{
	"id", "full_name", "company", "domain", "email",
	"email_confidence", "fit_score", "source", "outreach_status",
}

func leadRow(l model.Lead) []string {
	confidence := ""
	if l.EmailConfidence != nil {
		confidence = fmt.Sprintf("%.2f", *l.EmailConfidence)
	}
	score := ""
	if l.FitScore != nil {
		score = fmt.Sprintf("%d", *l.FitScore)
	}
	return []string{
		l.ID, l.FullName, l.Company, l.Domain, l.Email,
		confidence, score, l.Source, string(l.OutreachStatus),
	}
}

// Export writes qualified leads passing the filter to path. The format
// is chosen by extension: .xlsx or .csv. Returns the number of leads
// written.
func (e *Exporter) Export(ctx context.Context, path string, filter store.LeadFilter) (int, error) {
	leads, err := e.store.ListQualifiedLeads(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "export: list qualified leads")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = writeXLSX(path, leads)
	case ".csv":
		err = writeCSV(path, leads)
	default:
		return 0, eris.Errorf("export: unsupported format %q, want .xlsx or .csv", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}

	zap.L().Info("export: wrote qualified leads",
		zap.String("path", path),
		zap.Int("leads", len(leads)),
	)
	return len(leads), nil
}

func writeXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Qualified Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	for _, lead := range leads {
		row := sheet.AddRow()
		for _, v := range leadRow(lead) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writeCSV(path string, leads []model.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, lead := range leads {
		if err := w.Write(leadRow(lead)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}
