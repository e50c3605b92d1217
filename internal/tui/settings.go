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

type settingsModel struct {
	state  *timeline.State
	enc    timeline.Encoder
	dbPath string
	today  func() civil.Date
	width  int
	height int

	settings   timeline.Settings
	groups     []string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	preset  *string
	endDate *string
	visible *[]string
}

func newSettingsModel(st *timeline.State, enc timeline.Encoder, dbPath string, today func() civil.Date) settingsModel {
	preset, end := "", ""
	var visible []string
	return settingsModel{
		state:   st,
		enc:     enc,
		dbPath:  dbPath,
		today:   today,
		preset:  &preset,
		endDate: &end,
		visible: &visible,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings timeline.Settings
	groups   []string
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.state
	return func() tea.Msg {
		return settingsDataMsg{settings: st.Settings(), groups: st.GroupNames()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if data, ok := msg.(settingsDataMsg); ok {
		s.settings = data.settings
		s.groups = data.groups
		return s, nil
	}
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.preset = string(s.settings.Preset)
	*s.endDate = ""
	if !s.settings.EndDate.IsZero() {
		*s.endDate = s.settings.EndDate.String()
	}
	if s.settings.Visible == nil {
		*s.visible = append([]string{}, s.groups...)
	} else {
		*s.visible = append([]string{}, s.settings.Visible...)
	}

	presetOptions := make([]huh.Option[string], len(timeline.Presets))
	for i, p := range timeline.Presets {
		presetOptions[i] = huh.NewOption(p.Label(), string(p))
	}

	fields := []huh.Field{
		huh.NewSelect[string]().Title("Window").Options(presetOptions...).Value(s.preset),
		huh.NewInput().Title("End date").
			Description("YYYY-MM-DD, empty for today").
			Value(s.endDate).Validate(validateEndDate),
	}
	if len(s.groups) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Visible groups").
			Options(huh.NewOptions(s.groups...)...).
			Value(s.visible))
	}

	s.form = huh.NewForm(huh.NewGroup(fields...).Title("View")).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateEndDate(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if _, err := civil.ParseDate(strings.TrimSpace(v)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.apply()
	}

	return s, cmd
}

// apply stores the form values in the state. Selecting every group stores a
// nil filter so groups created later are visible too.
func (s settingsModel) apply() tea.Cmd {
	next := timeline.Settings{Preset: timeline.DefaultPreset}
	if p, err := timeline.ParsePreset(*s.preset); err == nil {
		next.Preset = p
	}
	if d, err := civil.ParseDate(strings.TrimSpace(*s.endDate)); err == nil {
		next.EndDate = d
	}
	if len(*s.visible) < len(s.groups) {
		next.Visible = append([]string{}, *s.visible...)
	}
	s.state.SetSettings(next)

	return tea.Batch(
		func() tea.Msg { return settingsChangedMsg{} },
		func() tea.Msg { return statusMsg{text: "Settings updated"} },
	)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	win := s.state.Window(s.today())
	end := "today"
	if !s.settings.EndDate.IsZero() {
		end = s.settings.EndDate.String()
	}
	visible := "all"
	if s.settings.Visible != nil {
		visible = strings.Join(s.settings.Visible, ", ")
		if visible == "" {
			visible = "none"
		}
	}

	items := []struct{ label, value string }{
		{"Window", s.settings.Preset.Label()},
		{"End date", end},
		{"Range", win.String()},
		{"Visible groups", visible},
		{"Marker sizes", fmt.Sprintf("%d..%d (full at %d chars)", s.enc.MinSize, s.enc.MaxSize, s.enc.SaturateAt)},
		{"Long note", fmt.Sprintf("%d chars", s.enc.LongNoteAt)},
		{"Workspace", s.dbPath},
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it.value)))
	}
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
