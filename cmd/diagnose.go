package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/internal/pipeline"
)

var (
	diagnoseFile    string
	diagnoseName    string
	diagnosePlaceID string
	diagnoseWebsite string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a single practice lead",
	Long:  "Enriches one lead and prints the full objective decision as JSON. The lead comes from --file (JSON or YAML) or from the --name/--place-id/--website flags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("diagnose"); err != nil {
			return err
		}
		ctx := cmd.Context()

		lead, err := resolveLead()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p := pipeline.NewDefault(cfg, st)

		run, err := p.Diagnose(ctx, lead)
		if err != nil {
			return eris.Wrap(err, "diagnose")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func resolveLead() (model.Lead, error) {
	if diagnoseFile != "" {
		return loadLeadFile(diagnoseFile)
	}
	if diagnoseName == "" {
		return model.Lead{}, eris.New("either --file or --name is required")
	}
	return model.Lead{
		Name:    diagnoseName,
		PlaceID: diagnosePlaceID,
		Website: diagnoseWebsite,
	}, nil
}

// loadLeadFile reads a lead description from a JSON or YAML file,
// chosen by extension.
func loadLeadFile(path string) (model.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Lead{}, eris.Wrapf(err, "read lead file %s", path)
	}

	var lead model.Lead
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &lead); err != nil {
			return model.Lead{}, eris.Wrapf(err, "parse lead yaml %s", path)
		}
	default:
		if err := json.Unmarshal(data, &lead); err != nil {
			return model.Lead{}, eris.Wrapf(err, "parse lead json %s", path)
		}
	}

	if lead.Name == "" {
		return model.Lead{}, eris.Errorf("lead file %s has no name", path)
	}
	return lead, nil
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseFile, "file", "", "lead file (JSON or YAML)")
	diagnoseCmd.Flags().StringVar(&diagnoseName, "name", "", "practice name")
	diagnoseCmd.Flags().StringVar(&diagnosePlaceID, "place-id", "", "Google Place ID")
	diagnoseCmd.Flags().StringVar(&diagnoseWebsite, "website", "", "practice website URL")
	rootCmd.AddCommand(diagnoseCmd)
}
