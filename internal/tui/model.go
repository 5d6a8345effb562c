package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/docportal/internal/cli"
	"github.com/studiowebux/docportal/internal/codegen"
	"github.com/studiowebux/docportal/internal/docs"
	"github.com/studiowebux/docportal/internal/keybinds"
	"github.com/studiowebux/docportal/internal/runner"
	"github.com/studiowebux/docportal/internal/types"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeJump
	ModeEnv
	ModeHelp
	ModeConfirm
)

// Panel identifies which pane receives navigation keys
type Panel int

const (
	PanelNav Panel = iota
	PanelViewer
)

// Model represents the TUI state
type Model struct {
	ctx  context.Context
	app  *cli.App
	src  cli.Source
	path string // local collection file, empty for portal docs
	keys *keybinds.Registry

	catalog *cli.Catalog
	view    docs.View

	// Navigation sidebar
	nav       []docs.FlatItem
	navIndex  int
	navOffset int

	// Endpoint pane
	samples   codegen.Samples
	sampleIdx int
	outcome   *runner.Outcome
	running   bool
	viewport  viewport.Model
	content   string

	mode  Mode
	focus Panel

	searchInput textinput.Model
	jumpInput   textinput.Model
	jumpResults []types.EndpointData
	jumpIndex   int
	envIndex    int

	statusMsg string
	errorMsg  string

	width  int
	height int

	watcher  *watcher
	copyText func(string) error
}

// Messages
type clearStatusMsg struct{}

type clearErrorMsg struct{}

type catalogMsg struct {
	catalog *cli.Catalog
	err     error
	reason  string
}

type requestDoneMsg struct {
	endpointID  string
	environment string
	outcome     *runner.Outcome
	err         error
}

// New creates a reader over an already loaded catalog
func New(ctx context.Context, app *cli.App, src cli.Source, catalog *cli.Catalog, keys *keybinds.Registry) Model {
	search := textinput.New()
	search.Placeholder = "Filter by title or method"
	search.Prompt = "/ "

	jump := textinput.New()
	jump.Placeholder = "Jump to endpoint"
	jump.Prompt = ": "

	m := Model{
		ctx:         ctx,
		app:         app,
		src:         src,
		keys:        keys,
		mode:        ModeNormal,
		focus:       PanelNav,
		viewport:    viewport.New(80, 20),
		searchInput: search,
		jumpInput:   jump,
		copyText:    clipboard.WriteAll,
	}
	m.setCatalog(catalog)
	return m
}

// Init starts watching the collection file when there is one
func (m *Model) Init() tea.Cmd {
	return m.watcher.wait()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case clearErrorMsg:
		m.errorMsg = ""
		return m, nil

	case catalogMsg:
		if msg.err != nil {
			return m, m.setErrorMessage(fmt.Sprintf("Reload failed: %v", msg.err))
		}
		m.setCatalog(msg.catalog)
		return m, m.setStatusMessage(msg.reason)

	case fileChangedMsg:
		return m, tea.Batch(
			m.loadCatalog("Reloaded "+filepath.Base(m.path)),
			m.watcher.wait(),
		)

	case watchErrorMsg:
		return m, tea.Batch(
			m.setErrorMessage(fmt.Sprintf("Watch error: %v", msg.err)),
			m.watcher.wait(),
		)

	case requestDoneMsg:
		m.running = false
		if msg.err != nil {
			return m, m.setErrorMessage(fmt.Sprintf("Request failed: %v", msg.err))
		}
		if msg.endpointID != m.view.Selected || msg.environment != m.environment() {
			return m, nil
		}
		m.outcome = msg.outcome
		m.renderContent()

		switch {
		case msg.outcome.IPError != nil:
			return m, m.setErrorMessage(msg.outcome.IPError.Message)
		case msg.outcome.Error != "":
			return m, m.setErrorMessage(msg.outcome.Error)
		case msg.outcome.Retried:
			return m, m.setStatusMessage(fmt.Sprintf("%d %s (after token refresh)", msg.outcome.Status, msg.outcome.StatusText))
		}
		return m, m.setStatusMessage(fmt.Sprintf("%d %s in %dms", msg.outcome.Status, msg.outcome.StatusText, msg.outcome.DurationMs))
	}

	return m, nil
}

// View renders the TUI
func (m *Model) View() string {
	return m.renderMain()
}

// setCatalog swaps in a freshly loaded catalog, keeping the selection when the
// endpoint still exists
func (m *Model) setCatalog(catalog *cli.Catalog) {
	m.catalog = catalog
	if m.view.Selected != "" {
		if _, ok := docs.Find(catalog.Endpoints, m.view.Selected); !ok {
			m.view.ClearSelection()
			m.outcome = nil
		}
	}
	m.refreshNav()
	m.loadSamples()
	m.renderContent()
}

// refreshNav recomputes the visible navigation rows under the search term
func (m *Model) refreshNav() {
	visible := m.view.Apply(m.catalog.Result)
	m.nav = docs.Flatten(visible.Nav)
	if m.navIndex >= len(m.nav) {
		m.navIndex = max(0, len(m.nav)-1)
	}
	m.ensureNavVisible()
}

// selectEndpoint shows one endpoint, clearing any search so the sidebar shows
// the full tree with the cursor on it
func (m *Model) selectEndpoint(id string) {
	if m.view.Search != "" {
		m.view.SetSearch("")
		m.searchInput.SetValue("")
	}
	if m.view.Selected != id {
		m.outcome = nil
		m.sampleIdx = 0
	}
	m.view.Select(id)
	m.refreshNav()
	for i, row := range m.nav {
		if row.Item.ID == id && !row.Item.IsFolder() {
			m.navIndex = i
			break
		}
	}
	m.ensureNavVisible()
	m.loadSamples()
	m.renderContent()
	m.viewport.GotoTop()
}

// selected returns the endpoint being shown
func (m *Model) selected() (types.EndpointData, bool) {
	if m.view.Selected == "" {
		return types.EndpointData{}, false
	}
	return docs.Find(m.catalog.Endpoints, m.view.Selected)
}

func (m *Model) loadSamples() {
	ep, ok := m.selected()
	if !ok {
		m.samples = nil
		return
	}
	m.samples = codegen.Generate(codegen.FromEndpoint(ep))
}

func (m *Model) currentLanguage() codegen.Language {
	return codegen.Languages[m.sampleIdx%len(codegen.Languages)]
}

func (m *Model) cycleSample(delta int) {
	n := len(codegen.Languages)
	m.sampleIdx = ((m.sampleIdx+delta)%n + n) % n
	m.renderContent()
}

// loadCatalog re-reads the collection in the background
func (m *Model) loadCatalog(reason string) tea.Cmd {
	ctx, app, src := m.ctx, m.app, m.src
	return func() tea.Msg {
		catalog, err := app.Catalog(ctx, src)
		return catalogMsg{catalog: catalog, err: err, reason: reason}
	}
}

// runRequest executes the selected endpoint through the runner
func (m *Model) runRequest() tea.Cmd {
	ep, ok := m.selected()
	if !ok {
		return m.setErrorMessage("Select an endpoint first")
	}
	if m.running {
		return nil
	}
	m.running = true

	m.statusMsg = truncate(fmt.Sprintf("Sending %s %s...", ep.Method, ep.URL), StatusMaxLength)
	m.errorMsg = ""

	ctx, app, catalog := m.ctx, m.app, m.catalog
	return func() tea.Msg {
		outcome, err := app.Runner.Execute(ctx, app.NewRequest(catalog, ep))
		return requestDoneMsg{endpointID: ep.ID, environment: catalog.Environment, outcome: outcome, err: err}
	}
}

// environment is the environment the reader shows, including one whose
// catalog is still loading
func (m *Model) environment() string {
	if m.src.Env != "" {
		return m.src.Env
	}
	return m.catalog.Environment
}

// switchEnvironment saves the environment and reloads the catalog under it
func (m *Model) switchEnvironment(name string) tea.Cmd {
	if err := m.app.Session.SetActiveEnvironment(name); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.src.Env = name
	m.outcome = nil
	return m.loadCatalog("Environment: " + name)
}

func (m *Model) copy(label, text string) tea.Cmd {
	if err := m.copyText(text); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage(label + " copied to clipboard")
}

// setStatusMessage sets a status message that clears after MessageTimeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = truncate(msg, StatusMaxLength)
	m.errorMsg = ""
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// setErrorMessage sets an error message that clears after MessageTimeout
func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.errorMsg = truncate(msg, StatusMaxLength)
	m.statusMsg = ""
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
