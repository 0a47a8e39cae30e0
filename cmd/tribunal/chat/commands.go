package chat

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tribunal/internal/tools"
)

const helpText = `Commands:
  /cases                      list your cases
  /select <id>                select a case for trial and verdict commands
  /file <title> | <evidence>  file a new case (evidence URI optional)
  /trial                      run the scripted trial for the selected case
  /abort                      abort the running trial
  /verdict                    show the recorded verdict for the selected case
  /appeal <grounds>           appeal the selected completed case
  /help                       show this help
  /quit                       exit

Anything else is sent to the clerk assistant.`

// handleCommand dispatches a /command. Unknown commands fall through to
// the assistant so typos still get a useful answer.
func (m *Model) handleCommand(input string) tea.Cmd {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/help":
		m.systemNote(helpText)
		return nil

	case "/quit", "/exit":
		m.quitting = true
		return tea.Quit

	case "/cases":
		return m.runTool("get_user_cases", map[string]interface{}{})

	case "/select":
		if rest == "" {
			m.systemNote("Usage: /select <case-id>")
			return nil
		}
		id, ok := new(big.Int).SetString(rest, 10)
		if !ok {
			m.systemNote(fmt.Sprintf("Invalid case id: %s", rest))
			return nil
		}
		if m.deps.Cache.Get(id) == nil {
			m.systemNote(fmt.Sprintf("Case %s is not in your case list. Try /cases first.", id))
			return nil
		}
		m.deps.Sctx.SelectedCase = id
		m.systemNote(fmt.Sprintf("Selected case %s.", id))
		return nil

	case "/file":
		if rest == "" {
			m.systemNote("Usage: /file <title> | <evidence-uri>")
			return nil
		}
		title, evidence := rest, ""
		if idx := strings.Index(rest, "|"); idx >= 0 {
			title = strings.TrimSpace(rest[:idx])
			evidence = strings.TrimSpace(rest[idx+1:])
		}
		args := map[string]interface{}{"title": title}
		if evidence != "" {
			args["evidenceUri"] = evidence
		}
		return m.runTool("file_case", args)

	case "/trial":
		if m.inTrial {
			m.systemNote("A trial is already running. /abort to stop it.")
			return nil
		}
		return m.startTrial()

	case "/abort":
		if !m.inTrial {
			m.systemNote("No trial is running.")
			return nil
		}
		m.deps.Scheduler.Abort()
		return nil

	case "/verdict":
		id := m.selectedCaseID()
		if id == nil {
			return nil
		}
		return m.runTool("get_verdict", map[string]interface{}{"caseId": id.String()})

	case "/appeal":
		id := m.selectedCaseID()
		if id == nil {
			return nil
		}
		if rest == "" {
			m.systemNote("Usage: /appeal <grounds>")
			return nil
		}
		return m.runTool("appeal_case", map[string]interface{}{"caseId": id.String(), "grounds": rest})

	default:
		return m.submit(strings.TrimPrefix(input, "/"))
	}
}

func (m *Model) selectedCaseID() *big.Int {
	if m.deps.Sctx.SelectedCase == nil {
		m.systemNote("No case selected. Use /select <id> first.")
		return nil
	}
	return m.deps.Sctx.SelectedCase
}

// runTool executes a registry tool asynchronously and reports its
// formatted result as an assistant message.
func (m *Model) runTool(name string, args map[string]interface{}) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		result, err := m.deps.Registry.Execute(context.Background(), name, args)
		if err != nil {
			return assistantReplyMsg{text: tools.FormatError(name, err)}
		}
		if m.deps.Registry.IsMutating(name) {
			m.deps.Cache.ScheduleReload(context.Background())
		}
		return assistantReplyMsg{text: tools.Format(name, result.Value)}
	}
}
