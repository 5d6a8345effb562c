package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/docportal/internal/cli"
	"github.com/studiowebux/docportal/internal/codegen"
	"github.com/studiowebux/docportal/internal/keybinds"
	"github.com/studiowebux/docportal/internal/runner"
	"github.com/studiowebux/docportal/internal/types"
)

// layout returns the sidebar and content widths for the current terminal
func (m *Model) layout() (sidebarWidth, contentWidth int) {
	sidebarWidth = max(SidebarMinWidth, m.width*SidebarWidthPercent/100)
	if m.width < NarrowTerminalWidth {
		sidebarWidth = m.width / 2
	}
	contentWidth = m.width - sidebarWidth - 2*PanelBorderWidth
	return sidebarWidth, max(contentWidth, 10)
}

// navHeight is the number of sidebar rows that fit on screen
func (m *Model) navHeight() int {
	return m.height - MainViewHeightOffset - SidebarHeaderLines
}

// resize fits the viewport to the terminal and re-renders the content at
// the new width
func (m *Model) resize() {
	_, contentWidth := m.layout()
	m.viewport.Width = contentWidth
	m.viewport.Height = max(1, m.height-MainViewHeightOffset)
	m.ensureNavVisible()
	m.renderContent()
}

// renderContent rebuilds the endpoint pane: the selected endpoint with its
// samples and last response, or an overview of the visible endpoints
func (m *Model) renderContent() {
	width := m.viewport.Width
	visible := m.view.Apply(m.catalog.Result)

	ep, ok := m.selected()
	if !ok || len(visible.Endpoints) != 1 {
		m.content = m.renderOverview(visible.Endpoints, width)
		m.viewport.SetContent(m.content)
		return
	}

	var sb strings.Builder
	sb.WriteString(cli.RenderMarkdown(cli.EndpointMarkdown(ep), width))
	sb.WriteString("\n")
	sb.WriteString(m.renderSamples(width))
	if m.outcome != nil {
		sb.WriteString("\n\n")
		sb.WriteString(renderOutcome(m.outcome, width))
	}
	m.content = sb.String()
	m.viewport.SetContent(m.content)
}

func (m *Model) renderOverview(endpoints []types.EndpointData, width int) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render(m.catalog.Document.Title))
	sb.WriteString("\n\n")

	if len(endpoints) == 0 {
		if m.view.Search != "" {
			sb.WriteString(styleSubtle.Render(fmt.Sprintf("No endpoints match %q", m.view.Search)))
		} else {
			sb.WriteString(styleSubtle.Render("This collection has no endpoints"))
		}
		return sb.String()
	}

	for _, ep := range endpoints {
		line := fmt.Sprintf("%s %s", methodStyle(ep.Method).Render(fmt.Sprintf("%-6s", ep.Method)), ep.Title)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(styleSubtle.Render("       " + truncate(ep.URL, max(10, width-8))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderSamples(width int) string {
	current := m.currentLanguage()

	tabs := make([]string, 0, len(codegen.Languages))
	for _, lang := range codegen.Languages {
		if lang == current {
			tabs = append(tabs, styleActiveTab.Render(lang.Label()))
		} else {
			tabs = append(tabs, styleTab.Render(lang.Label()))
		}
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Code samples"))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Width(width).Render(strings.Join(tabs, "")))
	sb.WriteString("\n\n")

	sample, _ := m.samples.Get(current)
	sb.WriteString(codegen.Highlight(sample, current, m.app.Config.HighlightStyle))
	return sb.String()
}

func renderOutcome(o *runner.Outcome, width int) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Response"))
	sb.WriteString("\n")

	if o.IPError != nil {
		sb.WriteString(styleError.Render("Request rejected: " + o.IPError.Message))
		sb.WriteString("\n")
		if o.IPError.PublicIP != "" {
			sb.WriteString(fmt.Sprintf("Your public IP: %s\n", o.IPError.PublicIP))
		}
		sb.WriteString(styleWarning.Width(width).Render(o.IPError.Hint))
		sb.WriteString("\n")
		if o.Status == 0 {
			return sb.String()
		}
	}

	if o.Error != "" && o.Status == 0 {
		sb.WriteString(styleError.Render("Error: " + o.Error))
		return sb.String()
	}

	status := statusStyle(o.Status).Render(fmt.Sprintf("%d %s", o.Status, o.StatusText))
	sb.WriteString(fmt.Sprintf("%s  %s\n", status, styleSubtle.Render(fmt.Sprintf("%dms", o.DurationMs))))
	if o.Retried {
		sb.WriteString(styleSubtle.Render("Retried with a regenerated API token"))
		sb.WriteString("\n")
	}
	sb.WriteString(styleSubtle.Render(o.URL))
	sb.WriteString("\n\n")
	if o.Body != "" {
		sb.WriteString(runner.Pretty(o.Body))
	} else {
		sb.WriteString(styleSubtle.Render("(empty body)"))
	}
	return sb.String()
}

// renderMain renders the sidebar, the endpoint pane and the status bar
func (m *Model) renderMain() string {
	if m.width == 0 {
		return ""
	}

	sidebarWidth, contentWidth := m.layout()
	panelHeight := max(1, m.height-MainViewHeightOffset)

	sidebarBorder, contentBorder := colorCyan, colorGray
	if m.focus == PanelViewer {
		sidebarBorder, contentBorder = colorGray, colorCyan
	}

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sidebarBorder).
		Width(sidebarWidth).
		Height(panelHeight).
		Render(m.renderSidebar(sidebarWidth))

	var content string
	switch m.mode {
	case ModeJump:
		content = m.renderJump(contentWidth)
	case ModeEnv:
		content = m.renderEnvPicker()
	case ModeHelp:
		content = m.renderHelp()
	case ModeConfirm:
		content = m.renderConfirm(contentWidth)
	default:
		content = m.viewport.View()
	}

	contentBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(contentBorder).
		Width(contentWidth).
		Height(panelHeight).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, contentBox),
		m.renderStatusBar(),
	)
}

func (m *Model) renderSidebar(width int) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render(truncate(m.catalog.Document.Title, width)))
	sb.WriteString("\n")

	header := styleSubtle.Render("env: " + orNone(m.catalog.Environment))
	if m.mode == ModeSearch {
		header = m.searchInput.View()
	} else if m.view.Search != "" {
		header = styleWarning.Render("/ " + m.view.Search)
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	if len(m.nav) == 0 {
		sb.WriteString(styleSubtle.Render("No endpoints"))
		return sb.String()
	}

	height := m.navHeight()
	if height <= 0 {
		height = len(m.nav)
	}
	end := min(len(m.nav), m.navOffset+height)
	for i := m.navOffset; i < end; i++ {
		row := m.nav[i]
		indent := strings.Repeat("  ", row.Depth)

		var line string
		if row.Item.IsFolder() {
			line = indent + styleFolder.Render("▾ "+row.Item.Title)
		} else {
			line = fmt.Sprintf("%s%s %s", indent, methodStyle(row.Item.Method).Render(fmt.Sprintf("%-6s", row.Item.Method)), row.Item.Title)
		}
		if row.Item.ID == m.view.Selected && !row.Item.IsFolder() {
			line = styleSuccess.Render("● ") + line
		} else {
			line = "  " + line
		}

		if i == m.navIndex {
			line = styleSelected.Width(width).Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) renderJump(width int) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Jump to endpoint"))
	sb.WriteString("\n")
	sb.WriteString(m.jumpInput.View())
	sb.WriteString("\n\n")

	if len(m.jumpResults) == 0 {
		sb.WriteString(styleSubtle.Render("No matches"))
		return sb.String()
	}
	for i, ep := range m.jumpResults {
		line := fmt.Sprintf("%s %s  %s", methodStyle(ep.Method).Render(fmt.Sprintf("%-6s", ep.Method)), ep.Title, styleSubtle.Render(ep.ID))
		if i == m.jumpIndex {
			line = styleSelected.Width(width).Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderEnvPicker() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Select environment"))
	sb.WriteString("\n\n")
	for i, name := range m.catalog.Document.EnvironmentNames() {
		marker := "  "
		if name == m.catalog.Environment {
			marker = styleSuccess.Render("● ")
		}
		line := marker + name
		if i == m.envIndex {
			line = styleSelected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderConfirm(width int) string {
	ep, _ := m.selected()
	s := runner.NewSession(ep)

	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Send request?"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", methodStyle(s.Method).Render(s.Method), truncate(s.FinalURL(), width)))
	sb.WriteString(styleSubtle.Render("env: " + orNone(m.catalog.Environment)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s send  %s cancel",
		m.keys.KeyString(keybinds.ContextConfirm, keybinds.ActionSubmit),
		m.keys.KeyString(keybinds.ContextConfirm, keybinds.ActionCancel)))
	return sb.String()
}

// helpEntries lists the actions shown in the help overlay
var helpEntries = []struct {
	action keybinds.Action
	label  string
}{
	{keybinds.ActionNavigateDown, "Next item"},
	{keybinds.ActionNavigateUp, "Previous item"},
	{keybinds.ActionSelect, "Open endpoint"},
	{keybinds.ActionSwitchFocus, "Switch panel"},
	{keybinds.ActionOpenSearch, "Filter"},
	{keybinds.ActionOpenJump, "Quick jump"},
	{keybinds.ActionOpenEnv, "Environments"},
	{keybinds.ActionNextSample, "Next sample"},
	{keybinds.ActionPrevSample, "Previous sample"},
	{keybinds.ActionCopySample, "Copy sample"},
	{keybinds.ActionCopyURL, "Copy URL"},
	{keybinds.ActionTry, "Try it out"},
	{keybinds.ActionReload, "Reload"},
	{keybinds.ActionClear, "Clear filter / selection"},
	{keybinds.ActionQuit, "Quit"},
}

func (m *Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Keys"))
	sb.WriteString("\n\n")
	for _, entry := range helpEntries {
		keys := m.keys.KeyString(keybinds.ContextNav, entry.action)
		sb.WriteString(fmt.Sprintf("%-16s %s\n", keys, entry.label))
	}
	return sb.String()
}

func (m *Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render(m.errorMsg)
	}
	if m.statusMsg != "" {
		return styleSuccess.Render(m.statusMsg)
	}

	hint := fmt.Sprintf("%s help  %s try  %s quit",
		m.keys.KeyString(keybinds.ContextNav, keybinds.ActionOpenHelp),
		m.keys.KeyString(keybinds.ContextNav, keybinds.ActionTry),
		m.keys.KeyString(keybinds.ContextNav, keybinds.ActionQuit))
	if m.running {
		hint = "Sending request...  " + hint
	}
	if org, ok := m.app.Session.Organization(); ok {
		hint = fmt.Sprintf("%s  │  org: %s", hint, orNone(org.Name))
	}
	return styleSubtle.Render(hint)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
