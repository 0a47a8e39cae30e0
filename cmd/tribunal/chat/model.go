// Package chat provides the interactive TUI for tribunal.
// The interface is split across files:
//   - model.go: types, Init, Update loop
//   - commands.go: /command handling
//   - view.go: rendering and styles
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"tribunal/internal/cache"
	"tribunal/internal/ledger"
	"tribunal/internal/logging"
	"tribunal/internal/session"
	"tribunal/internal/store"
	"tribunal/internal/tools"
	"tribunal/internal/trial"
	"tribunal/internal/types"
)

// Deps are the wired collaborators the chat interface drives.
type Deps struct {
	Assistant *session.Assistant
	Scheduler *trial.Scheduler
	Registry  *tools.Registry
	Cache     *cache.CaseCache
	Sctx      *types.SessionContext
	Store     *store.TranscriptStore
	Ledger    ledger.Client
}

type messageRole int

const (
	roleUser messageRole = iota
	roleAssistant
	roleCourt
	roleSystem
)

type message struct {
	role    messageRole
	speaker string
	content string
}

// Model is the bubbletea model for the chat interface.
type Model struct {
	deps Deps

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	messages []message
	busy     bool
	inTrial  bool
	width    int
	height   int
	ready    bool
	quitting bool
}

type assistantReplyMsg struct {
	text string
	err  error
}

type trialEventMsg struct {
	event trial.Event
	ch    chan trial.Event
}

type trialDoneMsg struct {
	verdict types.Verdict
	err     error
}

// Run starts the interactive chat interface and blocks until exit.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// NewModel builds the initial chat model.
func NewModel(deps Deps) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your cases, or /help for commands"
	ta.Prompt = "> "
	ta.SetHeight(2)
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	m := &Model{
		deps:     deps,
		textarea: ta,
		spinner:  sp,
		renderer: renderer,
		styles:   newStyles(),
	}
	m.systemNote(welcomeText(deps))
	return m
}

func welcomeText(deps Deps) string {
	var b strings.Builder
	b.WriteString("Welcome to tribunal.")
	if deps.Sctx.Connected {
		fmt.Fprintf(&b, " Connected as %s with %d case(s) on file.", deps.Sctx.UserAddress, deps.Cache.Len())
	} else {
		b.WriteString(" No wallet address configured; mutating operations are disabled.")
	}
	b.WriteString(" Type /help for commands.")
	return b.String()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 4)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.inTrial {
				m.deps.Scheduler.Abort()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt {
				break
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.busy {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.submit(input)
		}

	case assistantReplyMsg:
		m.busy = false
		if msg.err != nil {
			m.systemNote(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.appendMessage(message{role: roleAssistant, speaker: "clerk", content: msg.text})
			m.persistChat("assistant", msg.text)
		}

	case trialEventMsg:
		m.appendTrialEvent(msg.event)
		return m, waitForTrialEvent(msg.ch)

	case trialDoneMsg:
		m.busy = false
		m.inTrial = false
		if msg.err != nil {
			m.systemNote(fmt.Sprintf("Trial failed: %v", msg.err))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit routes input to the slash-command handler or the assistant.
func (m *Model) submit(input string) tea.Cmd {
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.appendMessage(message{role: roleUser, speaker: "you", content: input})
	m.persistChat("user", input)
	m.busy = true
	return func() tea.Msg {
		reply, err := m.deps.Assistant.HandleCommand(context.Background(), input)
		return assistantReplyMsg{text: reply, err: err}
	}
}

// startTrial launches the scheduler in the background and streams its
// transcript into the UI.
func (m *Model) startTrial() tea.Cmd {
	ch := make(chan trial.Event, 16)
	m.busy = true
	m.inTrial = true

	caseID := ""
	if m.deps.Sctx.SelectedCase != nil {
		caseID = m.deps.Sctx.SelectedCase.String()
	}

	done := make(chan trialDoneMsg, 1)
	go func() {
		defer close(ch)
		v, _, err := m.deps.Scheduler.RunTrial(context.Background(), func(e trial.Event) {
			if caseID != "" {
				if serr := m.deps.Store.AppendTrialEvent(context.Background(), caseID,
					string(e.Kind), e.Turn, string(e.Role), string(e.Phase), e.Text); serr != nil {
					logging.Get(logging.CategoryChat).Warn("transcript not persisted: %v", serr)
				}
			}
			ch <- e
		})
		done <- trialDoneMsg{verdict: v, err: err}
	}()

	return tea.Batch(
		waitForTrialEvent(ch),
		func() tea.Msg { return <-done },
	)
}

// waitForTrialEvent reads the next transcript event, ending the stream
// when the channel closes.
func waitForTrialEvent(ch chan trial.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return trialEventMsg{event: e, ch: ch}
	}
}

func (m *Model) appendTrialEvent(e trial.Event) {
	switch e.Kind {
	case trial.EventTurn:
		speaker := fmt.Sprintf("%s / %s", e.Role, e.Phase)
		m.appendMessage(message{role: roleCourt, speaker: speaker, content: e.Text})
	case trial.EventVerdict:
		m.appendMessage(message{role: roleCourt, speaker: "court", content: e.Text})
	default:
		m.systemNote(e.Text)
	}
}

func (m *Model) appendMessage(msg message) {
	m.messages = append(m.messages, msg)
	m.refreshViewport()
}

func (m *Model) systemNote(text string) {
	m.appendMessage(message{role: roleSystem, content: text})
}

func (m *Model) persistChat(role, content string) {
	if err := m.deps.Store.AppendChat(context.Background(), role, content); err != nil {
		logging.Get(logging.CategoryChat).Warn("chat message not persisted: %v", err)
	}
}
