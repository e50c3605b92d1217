package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/timeline/internal/tui"
)

// tuiCmd launches the Bubble Tea TUI. It is also what the bare command runs.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive timeline",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace(true)
	if err != nil {
		return err
	}
	defer w.Close()

	app := tui.NewApp(w.state, w.store, tui.Options{
		Encoder: w.cfg.TimelineEncoder(),
		Logger:  w.log,
		DBPath:  w.cfg.DBPath,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		w.log.Error("tui exited", "error", err)
		return err
	}
	return nil
}
