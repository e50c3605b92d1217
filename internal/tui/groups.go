package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeline/internal/timeline"
)

type groupsModel struct {
	state  *timeline.State
	width  int
	height int

	groups        []timeline.Group
	trackCounts   map[string]int
	tracks        []timeline.Track
	cursor        int
	trackCursor   int
	viewingTracks bool // true = viewing tracks of the selected group

	formActive bool
	form       *huh.Form
	formType   string // "group", "track", "rename_group", "rename_track", "delete_track"

	// Form field pointers (survive value copies)
	formName    *string
	formConfirm *bool
}

func newGroupsModel(st *timeline.State) groupsModel {
	name, confirm := "", false
	return groupsModel{
		state:       st,
		trackCounts: map[string]int{},
		formName:    &name,
		formConfirm: &confirm,
	}
}

func (g *groupsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type groupsDataMsg struct {
	groups      []timeline.Group
	trackCounts map[string]int
}

type tracksDataMsg struct {
	tracks []timeline.Track
}

func (g groupsModel) refresh() tea.Cmd {
	st := g.state
	return func() tea.Msg {
		groups := st.Groups()
		counts := make(map[string]int, len(groups))
		for _, gr := range groups {
			counts[gr.Name] = len(st.TracksInGroup(gr.Name))
		}
		return groupsDataMsg{groups: groups, trackCounts: counts}
	}
}

func (g groupsModel) refreshTracks() tea.Cmd {
	group, ok := g.selectedGroup()
	if !ok {
		return nil
	}
	st := g.state
	return func() tea.Msg {
		return tracksDataMsg{tracks: st.TracksInGroup(group)}
	}
}

func (g groupsModel) selectedGroup() (string, bool) {
	if g.cursor >= len(g.groups) {
		return "", false
	}
	return g.groups[g.cursor].Name, true
}

func (g groupsModel) update(msg tea.Msg) (groupsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case groupsDataMsg:
		g.groups = msg.groups
		g.trackCounts = msg.trackCounts
		if g.cursor >= len(g.groups) {
			g.cursor = max(0, len(g.groups)-1)
		}
		if g.viewingTracks {
			if len(g.groups) == 0 {
				g.viewingTracks = false
				return g, nil
			}
			return g, g.refreshTracks()
		}
		return g, nil

	case tracksDataMsg:
		g.tracks = msg.tracks
		if g.trackCursor >= len(g.tracks) {
			g.trackCursor = max(0, len(g.tracks)-1)
		}
		return g, nil
	}

	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if g.viewingTracks {
			return g.updateTrackView(msg)
		}
		return g.updateGroupList(msg)
	}
	return g, nil
}

func (g groupsModel) updateGroupList(msg tea.KeyMsg) (groupsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(msg, keys.Down):
		if g.cursor < len(g.groups)-1 {
			g.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(g.groups) > 0 {
			g.viewingTracks = true
			g.trackCursor = 0
			return g, g.refreshTracks()
		}
	case key.Matches(msg, keys.New):
		return g.showNameForm("group", "New group name", "")
	case key.Matches(msg, keys.Rename):
		if name, ok := g.selectedGroup(); ok {
			return g.showNameForm("rename_group", "Rename group", name)
		}
	case key.Matches(msg, keys.Delete):
		if name, ok := g.selectedGroup(); ok {
			return g, g.deleteGroup(name)
		}
	}
	return g, nil
}

func (g groupsModel) updateTrackView(msg tea.KeyMsg) (groupsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		g.viewingTracks = false
		return g, nil
	case key.Matches(msg, keys.Up):
		if g.trackCursor > 0 {
			g.trackCursor--
		}
	case key.Matches(msg, keys.Down):
		if g.trackCursor < len(g.tracks)-1 {
			g.trackCursor++
		}
	case key.Matches(msg, keys.New):
		return g.showNameForm("track", "New track name", "")
	case key.Matches(msg, keys.Rename):
		if len(g.tracks) > 0 {
			return g.showNameForm("rename_track", "Rename track", g.tracks[g.trackCursor].Name)
		}
	case key.Matches(msg, keys.Delete):
		if len(g.tracks) > 0 {
			return g.showDeleteTrackForm()
		}
	}
	return g, nil
}

func (g groupsModel) showNameForm(formType, title, current string) (groupsModel, tea.Cmd) {
	*g.formName = current
	g.formType = formType

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(g.formName).Validate(notBlank),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g groupsModel) showDeleteTrackForm() (groupsModel, tea.Cmd) {
	t := g.tracks[g.trackCursor]
	*g.formConfirm = false
	g.formType = "delete_track"

	n := len(g.state.EntriesFor(t.ID))
	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete track %q?", t.Name)).
				Description(fmt.Sprintf("Its %d entries will be removed too.", n)).
				Value(g.formConfirm),
		),
	).WithShowHelp(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g groupsModel) updateForm(msg tea.Msg) (groupsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		g.form = nil
		return g, g.apply()
	}
	return g, cmd
}

// apply runs the completed form against the state.
func (g groupsModel) apply() tea.Cmd {
	name := *g.formName
	var err error
	var text string

	switch g.formType {
	case "group":
		err = g.state.AddGroup(name)
		text = fmt.Sprintf("Added group %q", strings.TrimSpace(name))
	case "rename_group":
		old, _ := g.selectedGroup()
		err = g.state.RenameGroup(old, name)
		text = fmt.Sprintf("Renamed group %q", old)
	case "track":
		group, _ := g.selectedGroup()
		_, err = g.state.AddTrack(group, name)
		text = fmt.Sprintf("Added track %q", strings.TrimSpace(name))
	case "rename_track":
		if g.trackCursor < len(g.tracks) {
			err = g.state.RenameTrack(g.tracks[g.trackCursor].ID, name)
			text = fmt.Sprintf("Renamed track %q", g.tracks[g.trackCursor].Name)
		}
	case "delete_track":
		if !*g.formConfirm || g.trackCursor >= len(g.tracks) {
			return nil
		}
		err = g.state.DeleteTrack(g.tracks[g.trackCursor].ID)
		text = fmt.Sprintf("Deleted track %q", g.tracks[g.trackCursor].Name)
	default:
		return nil
	}
	return changed(text, err)
}

func (g groupsModel) deleteGroup(name string) tea.Cmd {
	return changed(fmt.Sprintf("Deleted group %q", name), g.state.DeleteGroup(name))
}

// changed turns a mutation result into status and refresh messages.
func changed(text string, err error) tea.Cmd {
	if err != nil {
		return func() tea.Msg { return statusMsg{text: errorText(err), isError: true} }
	}
	return tea.Batch(
		func() tea.Msg { return stateChangedMsg{} },
		func() tea.Msg { return statusMsg{text: text} },
	)
}

func (g groupsModel) view() string {
	if g.formActive && g.form != nil {
		title := "New Group"
		switch g.formType {
		case "rename_group":
			title = "Rename Group"
		case "track":
			title = "New Track"
		case "rename_track":
			title = "Rename Track"
		case "delete_track":
			title = "Delete Track"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", g.form.View())
		return panelStyle.Width(g.width - 4).Render(content)
	}

	if g.viewingTracks {
		return g.renderTrackView()
	}
	return g.renderGroupList()
}

func (g groupsModel) renderGroupList() string {
	w := g.width - 4
	title := titleStyle.Render("Groups")

	if len(g.groups) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No groups yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-28s %8s", "Name", "Tracks"))
	rows = append(rows, header)

	for i, gr := range g.groups {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s %8d", cursor, gr.Name, g.trackCounts[gr.Name])))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  r: rename  d: delete  enter: tracks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (g groupsModel) renderTrackView() string {
	w := g.width - 4
	group, _ := g.selectedGroup()
	title := titleStyle.Render(fmt.Sprintf("%s: Tracks", group))

	if len(g.tracks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tracks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, t := range g.tracks {
		cursor := "  "
		style := normalItemStyle
		if i == g.trackCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		n := len(g.state.EntriesFor(t.ID))
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s", cursor, t.Name))+mutedStyle.Render(fmt.Sprintf(" %d entries", n)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new track  r: rename  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
