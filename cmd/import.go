package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sadopc/timeline/internal/export"
	"github.com/sadopc/timeline/internal/timeline"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the workspace with a JSON or YAML payload",
	Long: `The payload may use the current shape (groups, tracks, entries) or the
legacy one (groups, projects, entries with project and percent). Nothing
is changed when the payload is malformed.

Examples:
	timeline import backup.json
	timeline import old.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := export.ReadDocument(args[0])
		if err != nil {
			return err
		}

		if importDryRun {
			snap, err := timeline.NormalizeDocument(doc, uuid.NewString)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d groups, %d tracks, %d entries\n",
				args[0], len(snap.Groups), len(snap.Tracks), len(snap.Entries))
			return nil
		}

		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.state.ImportDocument(doc); err != nil {
			return err
		}
		if err := w.save(); err != nil {
			return err
		}

		g, t, e := w.state.Counts()
		w.log.Info("imported", "path", args[0], "groups", g, "tracks", t, "entries", e)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d groups, %d tracks, %d entries from %s\n", g, t, e, args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the file without touching the workspace")
}
