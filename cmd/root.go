package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dbFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Personal visual timeline of tracks and dated entries",
	Long: `Examples:
	timeline                                   # open the timeline
	timeline show --preset 30d                 # print the last 30 days
	timeline export --format yaml --out t.yaml # write a portable payload
	timeline import backup.json                # replace the workspace`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() error { return rootCmd.Execute() }

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: <user config dir>/timeline/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Workspace database, overrides db_path from the config")

	rootCmd.AddCommand(tuiCmd, exportCmd, importCmd, showCmd)
}
