package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	court     lipgloss.Style
	system    lipgloss.Style
	speaker   lipgloss.Style
	statusBar lipgloss.Style
	input     lipgloss.Style
}

func newStyles() styles {
	return styles{
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		court:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		system:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		speaker:   lipgloss.NewStyle().Bold(true),
		statusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		input:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Court is adjourned.\n"
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.styles.input.Render(m.textarea.View()))
	return b.String()
}

func (m *Model) statusLine() string {
	var parts []string
	if m.deps.Sctx.Connected {
		parts = append(parts, m.deps.Sctx.UserAddress)
	} else {
		parts = append(parts, "not connected")
	}
	parts = append(parts, fmt.Sprintf("%d case(s)", m.deps.Cache.Len()))
	if m.deps.Sctx.SelectedCase != nil {
		parts = append(parts, "case "+m.deps.Sctx.SelectedCase.String())
	}
	switch {
	case m.inTrial:
		parts = append(parts, m.spinner.View()+" trial in session (ctrl-c aborts)")
	case m.busy:
		parts = append(parts, m.spinner.View()+" thinking")
	}
	return m.styles.statusBar.Render(strings.Join(parts, " | "))
}

// refreshViewport re-renders the message log into the viewport and
// scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg message) string {
	switch msg.role {
	case roleUser:
		return m.styles.speaker.Render("you: ") + m.styles.user.Render(msg.content)
	case roleAssistant:
		return m.styles.speaker.Render("clerk: ") + m.renderMarkdown(msg.content)
	case roleCourt:
		header := m.styles.speaker.Render(fmt.Sprintf("[%s]", msg.speaker))
		return header + "\n" + m.styles.court.Render(msg.content)
	default:
		return m.styles.system.Render(msg.content)
	}
}

func (m *Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return m.styles.assistant.Render(text)
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return m.styles.assistant.Render(text)
	}
	return strings.TrimRight(out, "\n")
}
