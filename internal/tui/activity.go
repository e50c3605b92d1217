package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeline/internal/timeline"
)

type activityMode int

const (
	activityDaily activityMode = iota
	activityWeekly
)

const (
	dailyBuckets  = 14
	weeklyBuckets = 12
)

// bucket is one bar: a run of days with entry counts per group.
type bucket struct {
	start, end civil.Date
	perGroup   map[string]int
}

// trackSummary aggregates one track over the visible range.
type trackSummary struct {
	group, name string
	color       int
	entries     int
	noteRunes   int
}

type activityModel struct {
	state  *timeline.State
	today  func() civil.Date
	width  int
	height int

	mode    activityMode
	offset  int // buckets back from the window end
	groups  []string
	buckets []bucket
	tracks  []trackSummary

	chart barchart.Model
}

func newActivityModel(st *timeline.State, today func() civil.Date) activityModel {
	return activityModel{
		state: st,
		today: today,
		chart: barchart.New(60, 12),
	}
}

func (a *activityModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type activityDataMsg struct {
	groups  []string
	buckets []bucket
	tracks  []trackSummary
}

func (a activityModel) refresh() tea.Cmd {
	st, mode, offset, today := a.state, a.mode, a.offset, a.today
	return func() tea.Msg {
		return collectActivity(st, st.Window(today()).End, mode, offset)
	}
}

// collectActivity buckets entries ending offset buckets before end.
func collectActivity(st *timeline.State, end civil.Date, mode activityMode, offset int) activityDataMsg {
	size, n := 1, dailyBuckets
	if mode == activityWeekly {
		size, n = 7, weeklyBuckets
	}
	last := end.AddDays(-offset * size)
	first := last.AddDays(-(n*size - 1))

	visible := st.Settings().VisibleSet()
	msg := activityDataMsg{buckets: make([]bucket, n)}
	for _, g := range st.GroupNames() {
		if visible.Has(g) {
			msg.groups = append(msg.groups, g)
		}
	}
	for i := range msg.buckets {
		start := first.AddDays(i * size)
		msg.buckets[i] = bucket{start: start, end: start.AddDays(size - 1), perGroup: map[string]int{}}
	}

	// Track rows carry only in-range entries of visible groups.
	proj := timeline.Build(st, timeline.Options{
		Window:  timeline.NewWindow(first, last),
		Visible: visible,
	})
	for _, r := range proj.Rows {
		if r.ID.Kind != timeline.RowTrack {
			continue
		}
		ts := trackSummary{group: r.ID.Group, name: r.Label, color: r.Color}
		for _, pt := range r.Points {
			msg.buckets[pt.Date.DaysSince(first)/size].perGroup[ts.group]++
			ts.entries++
			ts.noteRunes += utf8.RuneCountInString(pt.Note)
		}
		if ts.entries > 0 {
			msg.tracks = append(msg.tracks, ts)
		}
	}
	sort.Slice(msg.tracks, func(i, j int) bool {
		if msg.tracks[i].entries != msg.tracks[j].entries {
			return msg.tracks[i].entries > msg.tracks[j].entries
		}
		return msg.tracks[i].name < msg.tracks[j].name
	})
	return msg
}

func (a activityModel) update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDataMsg:
		a.groups = msg.groups
		a.buckets = msg.buckets
		a.tracks = msg.tracks
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.offset++
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			if a.offset > 0 {
				a.offset--
			}
			return a, a.refresh()
		case key.Matches(msg, keys.Mode):
			if a.mode == activityDaily {
				a.mode = activityWeekly
			} else {
				a.mode = activityDaily
			}
			a.offset = 0
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *activityModel) buildChart() {
	chartWidth := a.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if a.height > 30 {
		chartHeight = 16
	}

	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, b := range a.buckets {
		label := fmt.Sprintf("%02d", b.start.Day)
		if a.mode == activityWeekly {
			label = fmt.Sprintf("%s%02d", b.start.Month.String()[:1], b.start.Day)
		}

		var values []barchart.BarValue
		for i, g := range a.groups {
			if n := b.perGroup[g]; n > 0 {
				values = append(values, barchart.BarValue{
					Name:  g,
					Value: float64(n),
					Style: lipgloss.NewStyle().Foreground(trackColor(i)),
				})
			}
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a activityModel) view() string {
	w := a.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if a.mode == activityDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	dateLabel := ""
	if len(a.buckets) > 0 {
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s → %s", a.buckets[0].start, a.buckets[len(a.buckets)-1].end))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Activity"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: daily/weekly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", a.renderLegend(), "", a.renderSummaryTable(w), "", nav,
		),
	)
}

func (a activityModel) renderSummaryTable(w int) string {
	if len(a.tracks) == 0 {
		return mutedStyle.Render("  No entries in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-20s %8s %10s", "Group", "Track", "Entries", "Note chars")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))

	for _, t := range a.tracks {
		dot := trackStyle(t.color).Render("●")
		rows = append(rows, fmt.Sprintf("  %-16s %s %-18s %8d %10d",
			truncate(t.group, 16), dot, truncate(t.name, 18), t.entries, t.noteRunes,
		))
	}
	return strings.Join(rows, "\n")
}

func (a activityModel) renderLegend() string {
	var items []string
	for i, g := range a.groups {
		dot := lipgloss.NewStyle().Foreground(trackColor(i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, g))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
