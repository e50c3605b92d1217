package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeline/internal/export"
	"github.com/sadopc/timeline/internal/store"
	"github.com/sadopc/timeline/internal/timeline"
)

var exportFormats = []export.Format{export.FormatJSON, export.FormatYAML, export.FormatCSV}

// Options configure NewApp. Zero values fall back to sensible defaults.
type Options struct {
	Encoder   timeline.Encoder
	Logger    *slog.Logger
	DBPath    string
	ExportDir string
	Today     func() civil.Date
}

// App is the root Bubble Tea model.
type App struct {
	state     *timeline.State
	store     *store.Store
	log       *slog.Logger
	today     func() civil.Date
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	importing     bool
	importForm    *huh.Form
	importPath    *string
	dirty         bool
	quitArmed     bool

	timeline timelineModel
	groups   groupsModel
	activity activityModel
	settings settingsModel
	entries  entriesModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(st *timeline.State, s *store.Store, opts Options) App {
	h := help.New()
	h.ShowAll = false

	if opts.Today == nil {
		opts.Today = timeline.Today
	}
	if opts.Encoder == (timeline.Encoder{}) {
		opts.Encoder = timeline.DefaultEncoder()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}
	path := ""

	return App{
		state:      st,
		store:      s,
		log:        opts.Logger,
		today:      opts.Today,
		exportDir:  opts.ExportDir,
		activeView: viewTimeline,
		importPath: &path,
		timeline:   newTimelineModel(st, opts.Encoder, opts.Today),
		groups:     newGroupsModel(st),
		activity:   newActivityModel(st, opts.Today),
		settings:   newSettingsModel(st, opts.Encoder, opts.DBPath, opts.Today),
		entries:    newEntriesModel(st),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.timeline.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timeline.setSize(a.width, contentHeight)
		a.groups.setSize(a.width, contentHeight)
		a.activity.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		return a, a.activity.refresh()

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.importing {
			return a.updateImportForm(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		if !key.Matches(msg, keys.Quit) {
			a.quitArmed = false
		}

		switch {
		case key.Matches(msg, keys.Quit):
			if a.dirty && !a.quitArmed && msg.String() != "ctrl+c" {
				a.quitArmed = true
				a.status, a.statusErr = "Unsaved changes: ctrl+s to save, q again to quit", true
				return a, nil
			}
			return a, tea.Quit
		case key.Matches(msg, keys.Save):
			return a, a.doSave()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.showImportForm()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimeline
			return a, a.timeline.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewGroups
			return a, a.groups.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewActivity
			return a, a.activity.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewEntries
			return a, a.entries.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case timelineDataMsg:
		a.timeline, _ = a.timeline.update(msg)
		return a, nil

	case groupsDataMsg, tracksDataMsg:
		var cmd tea.Cmd
		a.groups, cmd = a.groups.update(msg)
		return a, cmd

	case activityDataMsg:
		a.activity, _ = a.activity.update(msg)
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil

	case entriesDataMsg:
		a.entries, _ = a.entries.update(msg)
		return a, nil

	case stateChangedMsg:
		a.dirty = true
		return a, a.refreshAll()

	case settingsChangedMsg:
		return a, tea.Batch(a.refreshAll(), a.saveSettings())

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	case importDoneMsg:
		a.status, a.statusErr = "Imported "+filepath.Base(msg.path), false
		a.dirty = true
		return a, a.refreshAll()

	case savedMsg:
		a.status, a.statusErr = "Saved", false
		a.dirty = false
		a.quitArmed = false
		return a, nil
	}

	if a.importing {
		return a.updateImportForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewGroups:
		a.groups, cmd = a.groups.update(msg)
	case viewActivity:
		a.activity, cmd = a.activity.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimeline:
		return a.timeline.formActive
	case viewGroups:
		return a.groups.formActive
	case viewSettings:
		return a.settings.formActive
	case viewEntries:
		return a.entries.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimeline:
		return a.timeline.refresh()
	case viewGroups:
		return a.groups.refresh()
	case viewActivity:
		return a.activity.refresh()
	case viewSettings:
		return a.settings.refresh()
	case viewEntries:
		return a.entries.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.timeline.refresh(),
		a.groups.refresh(),
		a.activity.refresh(),
		a.settings.refresh(),
		a.entries.refresh(),
	)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimeline:
		content = a.timeline.view()
	case viewGroups:
		content = a.groups.view()
	case viewActivity:
		content = a.activity.view()
	case viewSettings:
		content = a.settings.view()
	case viewEntries:
		content = a.entries.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.importing && a.importForm != nil:
		content = panelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Import"), "", a.importForm.View()),
		)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("timeline")
	if a.dirty {
		title += dirtyStyle.Render(" ●")
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := successStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	g, t, e := a.state.Counts()
	counts := mutedStyle.Render(fmt.Sprintf(" %dg %dt %de", g, t, e))

	left := footerStyle.Render(helpView)
	right := status + counts

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	st, dir, log, today := a.state, a.exportDir, a.log, a.today
	return func() tea.Msg {
		dateStr := today().String()
		path := filepath.Join(dir, fmt.Sprintf("timeline-export-%s.%s", dateStr, format))

		var err error
		switch format {
		case export.FormatCSV:
			err = export.ToCSV(st.Export(), path)
		case export.FormatYAML:
			err = export.ToYAML(st.ExportPayload(), path)
		default:
			err = export.ToJSON(st.ExportPayload(), path)
		}
		if err != nil {
			log.Error("export failed", "format", format, "path", path, "error", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info("exported", "format", format, "path", path)
		return exportDoneMsg{path: path}
	}
}

func (a App) showImportForm() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Import file").
				Description("JSON or YAML. Replaces the whole workspace.").
				Value(a.importPath).Validate(notBlank),
		),
	).WithShowHelp(true).WithShowErrors(true)
	a.importing = true
	return a, a.importForm.Init()
}

func (a App) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.importing = false
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}
	if a.importForm.State == huh.StateCompleted {
		a.importing = false
		a.importForm = nil
		return a, a.doImport(strings.TrimSpace(*a.importPath))
	}
	return a, cmd
}

func (a App) doImport(path string) tea.Cmd {
	st, log := a.state, a.log
	return func() tea.Msg {
		if strings.HasPrefix(path, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}
		doc, err := export.ReadDocument(path)
		if err != nil {
			log.Warn("import read failed", "path", path, "error", err)
			return statusMsg{text: err.Error(), isError: true}
		}
		if err := st.ImportDocument(doc); err != nil {
			return statusMsg{text: errorText(err), isError: true}
		}
		g, t, e := st.Counts()
		log.Info("imported", "path", path, "groups", g, "tracks", t, "entries", e)
		return importDoneMsg{path: path}
	}
}

func (a App) doSave() tea.Cmd {
	st, s, log := a.state, a.store, a.log
	return func() tea.Msg {
		if s == nil {
			return statusMsg{text: "No workspace database configured", isError: true}
		}
		if err := s.SaveSnapshot(st.Export()); err != nil {
			log.Error("save failed", "error", err)
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		if err := s.SaveSettings(st.Settings()); err != nil {
			log.Error("save settings failed", "error", err)
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		g, t, e := st.Counts()
		log.Info("workspace saved", "groups", g, "tracks", t, "entries", e)
		return savedMsg{}
	}
}

// saveSettings persists view settings right away; they are not part of the
// unsaved-changes state.
func (a App) saveSettings() tea.Cmd {
	st, s, log := a.state, a.store, a.log
	return func() tea.Msg {
		if s == nil {
			return nil
		}
		if err := s.SaveSettings(st.Settings()); err != nil {
			log.Error("save settings failed", "error", err)
			return statusMsg{text: fmt.Sprintf("Settings not saved: %v", err), isError: true}
		}
		return nil
	}
}
