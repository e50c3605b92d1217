package cmd

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sadopc/timeline/internal/timeline"
)

var (
	showPreset string
	showEnd    string
	showGroups []string
)

var (
	showHeaderStyle = lipgloss.NewStyle().Bold(true)
	showMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the timeline rows for a window",
	Long: `Examples:
	timeline show                          # stored window and filter
	timeline show --preset 12m             # last twelve months
	timeline show --end 2024-03-31 --group Work,Health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace(false)
		if err != nil {
			return err
		}
		defer w.Close()

		settings := w.state.Settings()
		if showPreset != "" {
			p, err := timeline.ParsePreset(showPreset)
			if err != nil {
				return err
			}
			settings.Preset = p
		}
		if showEnd != "" {
			d, err := civil.ParseDate(showEnd)
			if err != nil {
				return fmt.Errorf("invalid --end date %q: %w", showEnd, err)
			}
			settings.EndDate = d
		}
		if cmd.Flags().Changed("group") {
			settings.Visible = showGroups
		}

		end := settings.EndDate
		if end.IsZero() {
			end = timeline.Today()
		}
		proj := timeline.Build(w.state, timeline.Options{
			Window:  timeline.PresetWindow(settings.Preset, end, w.state.EarliestEntry()),
			Visible: settings.VisibleSet(),
			Encoder: w.cfg.TimelineEncoder(),
		})
		printProjection(cmd.OutOrStdout(), proj)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showPreset, "preset", "", "Window: 30d, 60d, 90d, 6m, 12m, all (default: stored setting)")
	showCmd.Flags().StringVar(&showEnd, "end", "", "Last day of the window, YYYY-MM-DD (default: stored setting, else today)")
	showCmd.Flags().StringSliceVar(&showGroups, "group", nil, "Only show these groups (comma-separated)")
}

func printProjection(out io.Writer, p timeline.Projection) {
	fmt.Fprintf(out, "%s  %s (%d days)\n\n", showHeaderStyle.Render("Window"), p.Window, p.Window.Len())

	for _, r := range p.Rows {
		switch r.ID.Kind {
		case timeline.RowNewGroup:
			fmt.Fprintln(out, showMutedStyle.Render(r.Label))
		case timeline.RowGroupHeader:
			fmt.Fprintln(out, showHeaderStyle.Render(r.Label))
		case timeline.RowTrack:
			fmt.Fprintf(out, "  %s %s\n", r.Label, showMutedStyle.Render(fmt.Sprintf("(%d)", len(r.Points))))
			for _, pt := range r.Points {
				note := strings.ReplaceAll(strings.TrimSpace(pt.Note), "\n", " ")
				fmt.Fprintf(out, "    %s  %s %2d  %s\n", pt.Date, glyphRune(pt.Glyph), pt.Size, note)
			}
		case timeline.RowBaseline:
			var months []string
			for _, pt := range r.Points {
				if pt.Date.Day == 1 {
					months = append(months, pt.Date.Month.String()[:3]+" "+fmt.Sprint(pt.Date.Year))
				}
			}
			line := r.Label
			if len(months) > 0 {
				line += "  " + strings.Join(months, " | ")
			}
			fmt.Fprintln(out, showMutedStyle.Render(line))
		}
	}
}

func glyphRune(g timeline.Glyph) string {
	switch g {
	case timeline.GlyphShort:
		return "•"
	case timeline.GlyphLong:
		return "●"
	case timeline.GlyphDay:
		return "|"
	}
	return "∘"
}
