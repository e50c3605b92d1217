package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timeline/internal/export"
	"github.com/sadopc/timeline/internal/timeline"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the workspace as JSON, YAML or CSV",
	Long: `Examples:
	timeline export                             # JSON into the current directory
	timeline export --out backup.yaml           # format follows the extension
	timeline export --format csv --out all.csv  # flat entry table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.FormatJSON
		if exportFormat != "" {
			f, err := export.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			format = f
		} else if exportOut != "" {
			format = export.FormatForPath(exportOut)
		}

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("timeline-export-%s.%s", timeline.Today(), format)
		}

		switch format {
		case export.FormatCSV:
			err = export.ToCSV(w.state.Export(), out)
		case export.FormatYAML:
			err = export.ToYAML(w.state.ExportPayload(), out)
		default:
			err = export.ToJSON(w.state.ExportPayload(), out)
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}

		g, t, e := w.state.Counts()
		w.log.Info("exported", "path", out, "format", string(format))
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d groups, %d tracks, %d entries to %s\n", g, t, e, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: json, yaml, csv (default: from --out, else json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: timeline-export-<date>.<format>)")
}
