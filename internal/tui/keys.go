package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/docportal/internal/docs"
	"github.com/studiowebux/docportal/internal/keybinds"
	"github.com/studiowebux/docportal/internal/runner"
)

// handleKey routes a key press to the handler of the current mode
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeJump:
		return m.handleJumpKey(msg)
	case ModeEnv:
		return m.handleEnvKey(msg.String())
	case ModeHelp:
		return m.handleHelpKey(msg.String())
	case ModeConfirm:
		return m.handleConfirmKey(msg.String())
	}
	return m.handleNormalKey(msg.String())
}

func (m *Model) handleNormalKey(key string) tea.Cmd {
	context := keybinds.ContextNav
	if m.focus == PanelViewer {
		context = keybinds.ContextViewer
	}

	action, ok, partial := m.keys.MatchMultiKey(context, key)
	if partial || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		return tea.Quit

	case keybinds.ActionNavigateUp:
		m.move(-1)
	case keybinds.ActionNavigateDown:
		m.move(1)
	case keybinds.ActionPageUp:
		m.page(-1)
	case keybinds.ActionPageDown:
		m.page(1)
	case keybinds.ActionGoToTop:
		if m.focus == PanelViewer {
			m.viewport.GotoTop()
		} else {
			m.navIndex = 0
			m.ensureNavVisible()
		}
	case keybinds.ActionGoToBottom:
		if m.focus == PanelViewer {
			m.viewport.GotoBottom()
		} else {
			m.navIndex = max(0, len(m.nav)-1)
			m.ensureNavVisible()
		}

	case keybinds.ActionSwitchFocus:
		if m.focus == PanelNav {
			m.focus = PanelViewer
		} else {
			m.focus = PanelNav
		}

	case keybinds.ActionSelect:
		if m.navIndex >= len(m.nav) {
			return nil
		}
		row := m.nav[m.navIndex].Item
		if row.IsFolder() {
			return nil
		}
		m.selectEndpoint(row.ID)

	case keybinds.ActionClear:
		switch {
		case m.view.Search != "":
			m.searchInput.SetValue("")
			m.view.SetSearch("")
			m.refreshNav()
		case m.view.Selected != "":
			m.view.ClearSelection()
			m.outcome = nil
			m.loadSamples()
		}
		m.renderContent()

	case keybinds.ActionOpenSearch:
		m.mode = ModeSearch
		m.searchInput.SetValue(m.view.Search)
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()

	case keybinds.ActionOpenJump:
		m.mode = ModeJump
		m.jumpInput.SetValue("")
		m.refreshJump()
		return m.jumpInput.Focus()

	case keybinds.ActionOpenEnv:
		names := m.catalog.Document.EnvironmentNames()
		if len(names) == 0 {
			return m.setErrorMessage("This collection defines no environments")
		}
		m.envIndex = 0
		for i, name := range names {
			if name == m.catalog.Environment {
				m.envIndex = i
			}
		}
		m.mode = ModeEnv

	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp

	case keybinds.ActionNextSample:
		if m.samples != nil {
			m.cycleSample(1)
		}
	case keybinds.ActionPrevSample:
		if m.samples != nil {
			m.cycleSample(-1)
		}

	case keybinds.ActionCopySample:
		lang := m.currentLanguage()
		sample, ok := m.samples.Get(lang)
		if !ok {
			return m.setErrorMessage("Select an endpoint first")
		}
		return m.copy(lang.Label()+" sample", sample)

	case keybinds.ActionCopyURL:
		ep, ok := m.selected()
		if !ok {
			return m.setErrorMessage("Select an endpoint first")
		}
		return m.copy("URL", runner.NewSession(ep).FinalURL())

	case keybinds.ActionTry:
		if _, ok := m.selected(); !ok {
			return m.setErrorMessage("Select an endpoint first")
		}
		if m.running {
			return m.setStatusMessage("A request is already running")
		}
		m.mode = ModeConfirm

	case keybinds.ActionReload:
		return m.loadCatalog("Reloaded")
	}

	return nil
}

// move steps the cursor of the focused panel
func (m *Model) move(delta int) {
	if m.focus == PanelViewer {
		if delta < 0 {
			m.viewport.LineUp(-delta)
		} else {
			m.viewport.LineDown(delta)
		}
		return
	}
	m.navIndex = clamp(m.navIndex+delta, 0, len(m.nav)-1)
	m.ensureNavVisible()
}

func (m *Model) page(direction int) {
	if m.focus == PanelViewer {
		if direction < 0 {
			m.viewport.ViewUp()
		} else {
			m.viewport.ViewDown()
		}
		return
	}
	m.move(direction * max(1, m.navHeight()))
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextSearch, msg.String())
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionSubmit:
		m.mode = ModeNormal
		m.searchInput.Blur()
		m.focus = PanelNav
		return nil
	case keybinds.ActionCancel:
		m.mode = ModeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applySearch("")
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != m.view.Search {
		m.applySearch(m.searchInput.Value())
	}
	return cmd
}

// applySearch filters the sidebar and the overview as the user types
func (m *Model) applySearch(term string) {
	m.view.SetSearch(term)
	if term != "" {
		m.outcome = nil
		m.loadSamples()
	}
	m.navIndex = 0
	m.navOffset = 0
	m.refreshNav()
	m.renderContent()
}

func (m *Model) handleJumpKey(msg tea.KeyMsg) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextJump, msg.String())
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionCancel:
		m.mode = ModeNormal
		m.jumpInput.Blur()
		return nil
	case keybinds.ActionNavigateUp:
		m.jumpIndex = clamp(m.jumpIndex-1, 0, len(m.jumpResults)-1)
		return nil
	case keybinds.ActionNavigateDown:
		m.jumpIndex = clamp(m.jumpIndex+1, 0, len(m.jumpResults)-1)
		return nil
	case keybinds.ActionSubmit:
		m.mode = ModeNormal
		m.jumpInput.Blur()
		if len(m.jumpResults) == 0 {
			return m.setErrorMessage(fmt.Sprintf("No endpoint matches %q", m.jumpInput.Value()))
		}
		m.selectEndpoint(m.jumpResults[m.jumpIndex].ID)
		m.focus = PanelViewer
		return nil
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	m.refreshJump()
	return cmd
}

// refreshJump ranks endpoints against the quick-jump input
func (m *Model) refreshJump() {
	results := docs.Rank(m.catalog.Endpoints, m.jumpInput.Value())
	if len(results) > JumpResultsLimit {
		results = results[:JumpResultsLimit]
	}
	m.jumpResults = results
	m.jumpIndex = 0
}

func (m *Model) handleEnvKey(key string) tea.Cmd {
	names := m.catalog.Document.EnvironmentNames()
	action, _, _ := m.keys.MatchMultiKey(keybinds.ContextPicker, key)
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionNavigateUp:
		m.envIndex = clamp(m.envIndex-1, 0, len(names)-1)
	case keybinds.ActionNavigateDown:
		m.envIndex = clamp(m.envIndex+1, 0, len(names)-1)
	case keybinds.ActionGoToTop:
		m.envIndex = 0
	case keybinds.ActionGoToBottom:
		m.envIndex = len(names) - 1
	case keybinds.ActionCancel:
		m.mode = ModeNormal
	case keybinds.ActionSubmit:
		m.mode = ModeNormal
		if m.envIndex < len(names) && names[m.envIndex] != m.catalog.Environment {
			return m.switchEnvironment(names[m.envIndex])
		}
	}
	return nil
}

func (m *Model) handleHelpKey(key string) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextHelp, key)
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionCancel:
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleConfirmKey(key string) tea.Cmd {
	action, _ := m.keys.Match(keybinds.ContextConfirm, key)
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit
	case keybinds.ActionSubmit:
		m.mode = ModeNormal
		return m.runRequest()
	case keybinds.ActionCancel:
		m.mode = ModeNormal
	}
	return nil
}

// ensureNavVisible scrolls the sidebar so the cursor stays on screen
func (m *Model) ensureNavVisible() {
	height := m.navHeight()
	if height <= 0 {
		return
	}
	if m.navIndex < m.navOffset {
		m.navOffset = m.navIndex
	}
	if m.navIndex >= m.navOffset+height {
		m.navOffset = m.navIndex - height + 1
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
