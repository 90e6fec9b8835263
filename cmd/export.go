package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/diagnosis-cli/internal/config"
	"github.com/sells-group/diagnosis-cli/internal/export"
)

var (
	exportDir    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest decision per lead",
	Long:  "Writes the newest complete decision for every lead to a timestamped file. An older run for a lead is superseded by any newer complete run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		exportCfg := config.ExportConfig{Dir: cfg.Export.Dir, Format: cfg.Export.Format}
		if exportDir != "" {
			exportCfg.Dir = exportDir
		}
		if exportFormat != "" {
			exportCfg.Format = exportFormat
		}

		path, err := export.Run(ctx, st, exportCfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: json or xlsx (default from config)")
	rootCmd.AddCommand(exportCmd)
}
