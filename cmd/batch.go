package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/internal/pipeline"
)

var (
	batchFile  string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Diagnose a batch of leads from a JSONL file",
	Long:  "Reads one lead per line (JSON), diagnoses them with bounded concurrency, and prints a per-lead summary. Individual failures do not stop the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("diagnose"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		leads, err := loadLeads(batchFile)
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			zap.L().Info("no leads in batch file")
			return nil
		}
		if batchLimit > 0 && len(leads) > batchLimit {
			leads = leads[:batchLimit]
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		zap.L().Info("processing batch",
			zap.Int("leads", len(leads)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrentLeads),
		)

		p := pipeline.NewDefault(cfg, st)
		runs, err := p.DiagnoseBatch(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		completed := 0
		for i, run := range runs {
			if run == nil {
				fmt.Fprintf(os.Stdout, "FAIL  %s\n", leads[i].Name)
				continue
			}
			if run.Status != model.RunStatusComplete || run.Decision == nil {
				fmt.Fprintf(os.Stdout, "FAIL  %s (run %s)\n", leads[i].Name, run.ID)
				continue
			}
			completed++
			fmt.Fprintf(os.Stdout, "OK    %-30s %-26s score=%d\n",
				run.Lead.Name,
				run.Decision.RootBottleneck.Bottleneck,
				run.Decision.SalesValueScore,
			)
		}

		zap.L().Info("batch complete",
			zap.Int("completed", completed),
			zap.Int("failed", len(runs)-completed),
		)
		return nil
	},
}

// loadLeads reads a batch file, chosen by extension: .xlsx spreadsheets
// or JSONL for everything else.
func loadLeads(path string) ([]model.Lead, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadLeadsXLSX(path)
	}
	return loadLeadsJSONL(path)
}

// loadLeadsXLSX reads leads from the first sheet. The header row names
// the columns; name, place_id, and website are recognized.
func loadLeadsXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("batch file %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("batch file %s has no data rows", path)
	}

	col := make(map[string]int)
	for j, cell := range sheet.Rows[0].Cells {
		col[strings.ToLower(strings.TrimSpace(cell.String()))] = j
	}
	nameIdx, ok := col["name"]
	if !ok {
		return nil, eris.Errorf("batch file %s has no name column", path)
	}

	cellAt := func(row *xlsx.Row, idx int, ok bool) string {
		if !ok || idx >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[idx].String())
	}

	placeIdx, hasPlace := col["place_id"]
	siteIdx, hasSite := col["website"]

	var leads []model.Lead
	for _, row := range sheet.Rows[1:] {
		name := cellAt(row, nameIdx, true)
		if name == "" {
			continue
		}
		leads = append(leads, model.Lead{
			Name:    name,
			PlaceID: cellAt(row, placeIdx, hasPlace),
			Website: cellAt(row, siteIdx, hasSite),
		})
	}
	return leads, nil
}

// loadLeadsJSONL parses one lead per non-empty line.
func loadLeadsJSONL(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close() //nolint:errcheck

	var leads []model.Lead
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(line), &lead); err != nil {
			return nil, eris.Wrapf(err, "parse lead on line %d", lineNo)
		}
		if lead.Name == "" {
			return nil, eris.Errorf("lead on line %d has no name", lineNo)
		}
		leads = append(leads, lead)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}
	return leads, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "JSONL file with one lead per line (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of leads to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
