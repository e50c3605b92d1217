package tui

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeline/internal/timeline"
)

const labelWidth = 18

// markerRunes are ordered from the smallest marker to the largest.
var markerRunes = []string{"∘", "•", "●", "◉"}

type timelineModel struct {
	state  *timeline.State
	router *timeline.Router
	enc    timeline.Encoder
	today  func() civil.Date
	width  int
	height int

	proj   timeline.Projection
	points []map[civil.Date]timeline.Point

	// Cursor is kept by identity so it survives rebuilds.
	cursorRow timeline.RowID
	cursorDay civil.Date
	rowTop    int
	dayLeft   int

	formActive bool
	form       *huh.Form
	intent     timeline.Intent

	// Form field pointers (survive value copies)
	formName   *string
	formNote   *string
	formDelete *bool
}

func newTimelineModel(st *timeline.State, enc timeline.Encoder, today func() civil.Date) timelineModel {
	name, note, del := "", "", false
	w := st.Window(today())
	return timelineModel{
		state:      st,
		router:     timeline.NewRouter(st, w),
		enc:        enc,
		today:      today,
		cursorRow:  timeline.NewGroupRow(),
		cursorDay:  w.End,
		formName:   &name,
		formNote:   &note,
		formDelete: &del,
	}
}

func (m *timelineModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

type timelineDataMsg struct {
	proj timeline.Projection
}

func (m timelineModel) refresh() tea.Cmd {
	st, enc, today := m.state, m.enc, m.today
	return func() tea.Msg {
		settings := st.Settings()
		proj := timeline.Build(st, timeline.Options{
			Window:  st.Window(today()),
			Visible: settings.VisibleSet(),
			Encoder: enc,
		})
		return timelineDataMsg{proj: proj}
	}
}

func (m timelineModel) update(msg tea.Msg) (timelineModel, tea.Cmd) {
	if data, ok := msg.(timelineDataMsg); ok {
		m.setProjection(data.proj)
		return m, nil
	}
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		w := m.proj.Window
		switch {
		case key.Matches(msg, keys.Up):
			m.moveRow(-1)
		case key.Matches(msg, keys.Down):
			m.moveRow(1)
		case key.Matches(msg, keys.Left):
			if m.cursorDay.After(w.Start) {
				m.cursorDay = m.cursorDay.AddDays(-1)
			}
		case key.Matches(msg, keys.Right):
			if m.cursorDay.Before(w.End) {
				m.cursorDay = m.cursorDay.AddDays(1)
			}
		case key.Matches(msg, keys.PrevWindow):
			return m, m.shiftWindow(-w.Len())
		case key.Matches(msg, keys.NextWindow):
			return m, m.shiftWindow(w.Len())
		case key.Matches(msg, keys.Today):
			return m, m.resetToToday()
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return m.click()
		}
		m.ensureVisible()
	}
	return m, nil
}

// setProjection installs a freshly built projection and re-anchors the
// cursor on the same row and day where they still exist.
func (m *timelineModel) setProjection(p timeline.Projection) {
	oldIdx := m.proj.IndexOf(m.cursorRow)
	m.proj = p
	m.router.SetWindow(p.Window)

	m.points = make([]map[civil.Date]timeline.Point, len(p.Rows))
	for i, r := range p.Rows {
		idx := make(map[civil.Date]timeline.Point, len(r.Points))
		for _, pt := range r.Points {
			idx[pt.Date] = pt
		}
		m.points[i] = idx
	}

	if p.IndexOf(m.cursorRow) < 0 && len(p.Rows) > 0 {
		i := clamp(oldIdx, 0, len(p.Rows)-1)
		m.cursorRow = p.Rows[i].ID
	}
	if m.cursorDay.IsZero() || !p.Window.Contains(m.cursorDay) {
		if m.cursorDay.Before(p.Window.Start) {
			m.cursorDay = p.Window.Start
		} else {
			m.cursorDay = p.Window.End
		}
	}
	m.ensureVisible()
}

func (m *timelineModel) moveRow(delta int) {
	if len(m.proj.Rows) == 0 {
		return
	}
	i := clamp(m.proj.IndexOf(m.cursorRow)+delta, 0, len(m.proj.Rows)-1)
	m.cursorRow = m.proj.Rows[i].ID
}

func (m timelineModel) visibleRows() int {
	// panel border and padding, title, axis, detail and hint lines
	return max(1, m.height-12)
}

func (m timelineModel) visibleDays() int {
	return max(1, m.width-4-4-labelWidth-1)
}

func (m *timelineModel) ensureVisible() {
	rows := m.visibleRows()
	i := m.proj.IndexOf(m.cursorRow)
	if i < m.rowTop {
		m.rowTop = max(0, i)
	}
	if i >= m.rowTop+rows {
		m.rowTop = i - rows + 1
	}

	days := m.visibleDays()
	d := m.dayIndex(m.cursorDay)
	if d < m.dayLeft {
		m.dayLeft = max(0, d)
	}
	if d >= m.dayLeft+days {
		m.dayLeft = d - days + 1
	}
}

func (m timelineModel) dayIndex(d civil.Date) int {
	return d.DaysSince(m.proj.Window.Start)
}

func (m timelineModel) shiftWindow(days int) tea.Cmd {
	st := m.state
	settings := st.Settings()
	end := settings.EndDate
	if end.IsZero() {
		end = m.today()
	}
	settings.EndDate = end.AddDays(days)
	st.SetSettings(settings)
	return func() tea.Msg { return settingsChangedMsg{} }
}

func (m timelineModel) resetToToday() tea.Cmd {
	settings := m.state.Settings()
	settings.EndDate = civil.Date{}
	m.state.SetSettings(settings)
	return func() tea.Msg { return settingsChangedMsg{} }
}

// click routes the cell under the cursor and opens the matching form.
func (m timelineModel) click() (timelineModel, tea.Cmd) {
	in := m.router.Resolve(timeline.Click{Row: m.cursorRow, Date: m.cursorDay})
	m.intent = in
	*m.formName = ""
	*m.formNote = in.Note
	*m.formDelete = false

	var fields []huh.Field
	switch in.Kind {
	case timeline.IntentAddGroup:
		fields = append(fields, huh.NewInput().Title("Group name").Value(m.formName).Validate(notBlank))
	case timeline.IntentAddTrack:
		fields = append(fields, huh.NewInput().Title("Track name").
			Description("New track in "+in.Group).Value(m.formName).Validate(notBlank))
	case timeline.IntentEditEntry:
		fields = append(fields, huh.NewText().
			Title(fmt.Sprintf("%s / %s on %s", in.Group, in.Track.Name, in.Date)).
			Description("A longer note draws a larger marker. Leave empty for a quick reminder.").
			Value(m.formNote))
		if in.Exists {
			fields = append(fields, huh.NewConfirm().Title("Delete this entry?").Value(m.formDelete))
		}
	default:
		return m, nil
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

func (m timelineModel) updateForm(msg tea.Msg) (timelineModel, tea.Cmd) {
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
		return m, m.commit(timeline.Response{Name: *m.formName, Note: *m.formNote, Delete: *m.formDelete})
	}
	return m, cmd
}

// commit applies resp for the pending intent and reports the outcome.
func (m timelineModel) commit(resp timeline.Response) tea.Cmd {
	in := m.intent
	if err := m.router.Commit(in, resp); err != nil {
		return func() tea.Msg { return statusMsg{text: errorText(err), isError: true} }
	}

	var text string
	switch in.Kind {
	case timeline.IntentAddGroup:
		text = fmt.Sprintf("Added group %q", strings.TrimSpace(resp.Name))
	case timeline.IntentAddTrack:
		text = fmt.Sprintf("Added track %q to %s", strings.TrimSpace(resp.Name), in.Group)
	case timeline.IntentEditEntry:
		if resp.Delete {
			text = fmt.Sprintf("Deleted entry on %s", in.Date)
		} else {
			text = fmt.Sprintf("Saved entry on %s", in.Date)
		}
	}
	return tea.Batch(
		func() tea.Msg { return stateChangedMsg{} },
		func() tea.Msg { return statusMsg{text: text} },
	)
}

func (m timelineModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		var title string
		switch m.intent.Kind {
		case timeline.IntentAddGroup:
			title = "New Group"
		case timeline.IntentAddTrack:
			title = "New Track"
		default:
			title = "Entry"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	win := m.proj.Window
	settings := m.state.Settings()
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Timeline"), "  ",
		highlightStyle.Render(settings.Preset.Label()), "  ",
		subtitleStyle.Render(fmt.Sprintf("%s → %s", win.Start, win.End)),
	)

	var rows []string
	rows = append(rows, header, "")

	first := m.dayLeft
	last := min(win.Len(), first+m.visibleDays())
	end := min(len(m.proj.Rows), m.rowTop+m.visibleRows())
	for i := m.rowTop; i < end; i++ {
		rows = append(rows, m.renderRow(i, first, last))
	}
	rows = append(rows, strings.Repeat(" ", labelWidth+1)+m.renderAxis(first, last))
	rows = append(rows, "", m.renderDetail())
	rows = append(rows, mutedStyle.Render("  enter: open  ←/→ ↑/↓: move  [/]: shift window  t: today"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m timelineModel) renderRow(i, first, last int) string {
	r := m.proj.Rows[i]
	selected := r.ID == m.cursorRow

	var label string
	switch r.ID.Kind {
	case timeline.RowNewGroup:
		label = newGroupStyle.Render(truncate(r.Label, labelWidth))
	case timeline.RowGroupHeader:
		label = groupHeaderStyle.Render(truncate(r.Label, labelWidth))
	case timeline.RowTrack:
		label = trackStyle(r.Color).Render(truncate("  "+r.Label, labelWidth))
	default:
		label = mutedStyle.Render(truncate(r.Label, labelWidth))
	}
	if selected {
		label = selectedItemStyle.Render(truncate("> "+r.Label, labelWidth))
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" ")
	for d := first; d < last; d++ {
		day := m.proj.Window.Start.AddDays(d)
		cell := m.renderCell(r, m.points[i], day)
		if selected && day == m.cursorDay {
			cell = cursorCellStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	return b.String()
}

// renderCell draws one day of one row.
func (m timelineModel) renderCell(r timeline.Row, pts map[civil.Date]timeline.Point, day civil.Date) string {
	pt, ok := pts[day]
	switch r.Line {
	case timeline.LineSolid:
		if ok && day.Day == 1 {
			return baselineStyle.Render("┼")
		}
		return baselineStyle.Render("─")
	case timeline.LineDotted:
		if !ok {
			return dottedLineStyle.Render("┄")
		}
		style := trackStyle(r.Color)
		if pt.Glyph == timeline.GlyphLong {
			style = style.Bold(true)
		}
		return style.Render(m.markerRune(pt.Marker))
	}
	return " "
}

// markerRune buckets a marker size into one of markerRunes.
func (m timelineModel) markerRune(mk timeline.Marker) string {
	if mk.Glyph == timeline.GlyphDot {
		return markerRunes[0]
	}
	span := m.enc.MaxSize - m.enc.MinSize
	if span <= 0 {
		return markerRunes[len(markerRunes)-1]
	}
	steps := len(markerRunes) - 1
	i := 1 + (mk.Size-m.enc.MinSize-1)*steps/span
	return markerRunes[clamp(i, 1, steps)]
}

// renderAxis labels month starts under the baseline.
func (m timelineModel) renderAxis(first, last int) string {
	line := []rune(strings.Repeat(" ", max(0, last-first)))
	for d := first; d < last; d++ {
		day := m.proj.Window.Start.AddDays(d)
		if day.Day != 1 && d != first {
			continue
		}
		label := []rune(day.Month.String()[:3])
		if day.Month == 1 || d == first {
			label = []rune(fmt.Sprintf("%s %d", day.Month.String()[:3], day.Year))
		}
		for j, r := range label {
			if pos := d - first + j; pos < len(line) {
				line[pos] = r
			}
		}
	}
	return mutedStyle.Render(string(line))
}

func (m timelineModel) renderDetail() string {
	switch m.cursorRow.Kind {
	case timeline.RowNewGroup:
		return mutedStyle.Render("  Create a new group")
	case timeline.RowGroupHeader:
		return mutedStyle.Render(fmt.Sprintf("  Add a track to %s", m.cursorRow.Group))
	case timeline.RowBaseline:
		return mutedStyle.Render(fmt.Sprintf("  %s", m.cursorDay))
	}

	t, ok := m.state.Track(m.cursorRow.TrackID)
	if !ok {
		return ""
	}
	e, ok := m.state.Entry(t.ID, m.cursorDay)
	if !ok {
		return mutedStyle.Render(fmt.Sprintf("  %s / %s, %s: no entry", t.Group, t.Name, m.cursorDay))
	}
	note := e.Note
	if note == "" {
		note = "(reminder)"
	}
	return fmt.Sprintf("  %s %s",
		highlightStyle.Render(fmt.Sprintf("%s / %s, %s:", t.Group, t.Name, m.cursorDay)),
		truncate(note, max(10, m.width-12-labelWidth-len(t.Group)-len(t.Name))),
	)
}
