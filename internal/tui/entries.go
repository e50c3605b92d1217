package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeline/internal/timeline"
)

// entryRow is one line of the entry table.
type entryRow struct {
	entry        timeline.Entry
	group, track string
}

// entriesModel lists every entry regardless of the window or filter.
type entriesModel struct {
	state  *timeline.State
	width  int
	height int

	rows  []entryRow
	table table.Model

	formActive bool
	form       *huh.Form
	formType   string // "edit" or "delete"
	editing    entryRow

	// Form values as pointers (survive value copies)
	formNote    *string
	formConfirm *bool
}

func newEntriesModel(st *timeline.State) entriesModel {
	note, confirm := "", false

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(colorFg).
		Background(colorPrimary).
		Bold(false)
	t.SetStyles(styles)

	m := entriesModel{
		state:       st,
		table:       t,
		formNote:    &note,
		formConfirm: &confirm,
	}
	m.layout()
	return m
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.layout()
}

// layout sizes the columns so the note takes whatever width is left.
func (m *entriesModel) layout() {
	noteW := max(20, m.width-4-4-10-14-16-8)
	m.table.SetColumns([]table.Column{
		{Title: "Date", Width: 10},
		{Title: "Group", Width: 14},
		{Title: "Track", Width: 16},
		{Title: "Note", Width: noteW},
	})
	m.table.SetWidth(max(40, m.width-6))
	m.table.SetHeight(max(3, m.height-8))
}

type entriesDataMsg struct {
	rows []entryRow
}

func (m entriesModel) refresh() tea.Cmd {
	st := m.state
	return func() tea.Msg {
		snap := st.Export()
		tracks := make(map[string]timeline.Track, len(snap.Tracks))
		for _, t := range snap.Tracks {
			tracks[t.ID] = t
		}
		rows := make([]entryRow, 0, len(snap.Entries))
		for _, e := range snap.Entries {
			t := tracks[e.TrackID]
			rows = append(rows, entryRow{entry: e, group: t.Group, track: t.Name})
		}
		// Newest first.
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.entry.Date != b.entry.Date {
				return a.entry.Date.After(b.entry.Date)
			}
			if a.group != b.group {
				return a.group < b.group
			}
			return a.track < b.track
		})
		return entriesDataMsg{rows: rows}
	}
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if data, ok := msg.(entriesDataMsg); ok {
		m.setRows(data.rows)
		return m, nil
	}
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Rename):
			if r, ok := m.selected(); ok {
				return m.showEditForm(r)
			}
			return m, nil
		case key.Matches(msg, keys.Delete):
			if r, ok := m.selected(); ok {
				return m.showDeleteForm(r)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *entriesModel) setRows(rows []entryRow) {
	m.rows = rows
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		note := strings.Join(strings.Fields(r.entry.Note), " ")
		if note == "" {
			note = "(reminder)"
		}
		trows[i] = table.Row{r.entry.Date.String(), r.group, r.track, note}
	}
	m.table.SetRows(trows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m entriesModel) selected() (entryRow, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return entryRow{}, false
	}
	return m.rows[i], true
}

func (m entriesModel) showEditForm(r entryRow) (entriesModel, tea.Cmd) {
	m.editing = r
	m.formType = "edit"
	*m.formNote = r.entry.Note

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("%s / %s on %s", r.group, r.track, r.entry.Date)).
				Value(m.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) showDeleteForm(r entryRow) (entriesModel, tea.Cmd) {
	m.editing = r
	m.formType = "delete"
	*m.formConfirm = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete the %s entry on %s?", r.track, r.entry.Date)).
				Value(m.formConfirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.apply()
	}
	return m, cmd
}

// apply runs the completed form through the entry commands.
func (m entriesModel) apply() tea.Cmd {
	e := m.editing.entry
	switch m.formType {
	case "edit":
		return changed(fmt.Sprintf("Saved entry on %s", e.Date),
			m.state.UpsertEntry(e.TrackID, e.Date, *m.formNote))
	case "delete":
		if !*m.formConfirm {
			return nil
		}
		return changed(fmt.Sprintf("Deleted entry on %s", e.Date),
			m.state.DeleteEntry(e.TrackID, e.Date))
	}
	return nil
}

func (m entriesModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Entries")

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if len(m.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			mutedStyle.Render("No entries yet. Open a day on the timeline to add one."),
		))
	}

	count := mutedStyle.Render(fmt.Sprintf("  %d entries, all dates", len(m.rows)))
	hint := mutedStyle.Render("  enter/r: edit note  d: delete  ↑/↓: move")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, count), "",
		m.table.View(), "",
		hint,
	))
}
