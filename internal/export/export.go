// Package export writes the newest complete decision per lead to disk
// as JSON or XLSX, for handoff to the sales team.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/diagnosis-cli/internal/config"
	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/internal/store"
)

// Run pulls the latest decisions from the store and writes them to a
// timestamped file under cfg.Dir in cfg.Format. It returns the path
// of the file it wrote.
func Run(ctx context.Context, st store.Store, cfg config.ExportConfig) (string, error) {
	runs, err := st.LatestDecisions(ctx)
	if err != nil {
		return "", eris.Wrap(err, "export: load decisions")
	}
	if len(runs) == 0 {
		return "", eris.New("export: no complete runs to export")
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create dir %s", cfg.Dir)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	var path string
	switch cfg.Format {
	case "json":
		path = filepath.Join(cfg.Dir, fmt.Sprintf("decisions-%s.json", stamp))
		err = WriteJSON(path, runs)
	case "xlsx":
		path = filepath.Join(cfg.Dir, fmt.Sprintf("decisions-%s.xlsx", stamp))
		err = WriteXLSX(path, runs)
	default:
		return "", eris.Errorf("export: unknown format %q (want json or xlsx)", cfg.Format)
	}
	if err != nil {
		return "", err
	}

	zap.L().Info("export complete",
		zap.String("path", path),
		zap.Int("leads", len(runs)),
	)
	return path, nil
}

// WriteJSON writes the full decision records as a pretty-printed JSON
// array. This is the machine-readable handoff shape.
func WriteJSON(path string, runs []model.Run) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal decisions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// xlsxHeader is the spreadsheet column order. One row per lead.
var xlsxHeader = []string{
	"Lead", "Place ID", "Run ID", "Diagnosed At",
	"Root Bottleneck", "Confidence", "Sales Value Score",
	"SEO Primary Lever", "Revenue Driver", "Asymmetry",
	"Primary Anchor", "Top Intervention", "Comparative Context",
	"Warnings",
}

// WriteXLSX writes a one-row-per-lead summary sheet. The full nested
// record does not fit a spreadsheet; this is the skim view, the JSON
// export carries everything.
func WriteXLSX(path string, runs []model.Run) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Decisions")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range xlsxHeader {
		header.AddCell().SetString(col)
	}

	for _, run := range runs {
		if run.Decision == nil {
			continue
		}
		row := sheet.AddRow()
		for _, val := range summaryRow(run) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// summaryRow flattens one decision into the spreadsheet columns.
func summaryRow(run model.Run) []string {
	d := run.Decision
	topIntervention := ""
	if len(d.InterventionPlan) > 0 {
		topIntervention = d.InterventionPlan[0].Action
	}
	primaryLever := "SEO"
	if !d.SEOLever.IsPrimaryGrowthLever {
		primaryLever = d.SEOLever.AlternativePrimaryLever
	}
	return []string{
		run.Lead.Name,
		run.Lead.PlaceID,
		run.ID,
		run.UpdatedAt.UTC().Format(time.RFC3339),
		string(d.RootBottleneck.Bottleneck),
		strconv.FormatFloat(d.RootBottleneck.Confidence, 'f', 2, 64),
		strconv.Itoa(d.SalesValueScore),
		primaryLever,
		string(d.RevenueLeverage.PrimaryRevenueDriver),
		string(d.RevenueLeverage.EstimatedRevenueAsymmetry),
		d.PrimarySalesAnchor.Issue,
		topIntervention,
		d.ComparativeContext,
		strings.Join(d.ValidationWarnings, "; "),
	}
}
