// Package session implements the tool-calling assistant loop.
//
// One user command is one bounded conversation with the completion
// service: the loop offers the tool registry's definitions, executes
// any tool calls the model returns, folds results back in, and stops
// after at most maxRounds round-trips. Tool failures are fed back to
// the model as error payloads rather than raised.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tribunal/internal/cache"
	"tribunal/internal/ledger"
	"tribunal/internal/logging"
	"tribunal/internal/tools"
	"tribunal/internal/types"
	"tribunal/internal/verdict"
)

// DefaultMaxRounds bounds model round-trips per command.
const DefaultMaxRounds = 5

const noResponseFallback = "I wasn't able to produce a response for that. Please try rephrasing."

// Assistant drives one conversational command at a time.
type Assistant struct {
	llm       types.LLMClient
	registry  *tools.Registry
	cache     *cache.CaseCache
	sctx      *types.SessionContext
	maxRounds int
}

// NewAssistant wires an assistant. maxRounds <= 0 selects the default.
func NewAssistant(llm types.LLMClient, registry *tools.Registry, cc *cache.CaseCache,
	sctx *types.SessionContext, maxRounds int) *Assistant {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Assistant{llm: llm, registry: registry, cache: cc, sctx: sctx, maxRounds: maxRounds}
}

// HandleCommand runs one user command through the tool-calling loop
// and returns the accumulated assistant text.
func (a *Assistant) HandleCommand(ctx context.Context, userText string) (string, error) {
	messages := []types.ChatMessage{{Role: types.RoleUser, Content: userText}}
	var replies []string

	for round := 0; round < a.maxRounds; round++ {
		// Definitions are recomputed each round: cheap, and safe if
		// the registry changed between commands.
		defs := tools.Definitions(a.registry)

		logging.SessionDebug("round %d/%d: messages=%d tools=%d", round+1, a.maxRounds, len(messages), len(defs))
		resp, err := a.llm.Chat(ctx, &types.ChatRequest{
			System:   a.systemPrompt(),
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return "", fmt.Errorf("completion service failed: %w", err)
		}

		messages = append(messages, types.ChatMessage{
			Role:      types.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		if resp.Text != "" {
			replies = append(replies, resp.Text)
			a.scanForVerdict(ctx, resp.Text)
		}

		if len(resp.ToolCalls) == 0 {
			break
		}

		for _, call := range resp.ToolCalls {
			messages = append(messages, types.ChatMessage{
				Role:       types.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    a.executeCall(ctx, call),
			})
		}
	}

	out := strings.TrimSpace(strings.Join(replies, "\n\n"))
	if out == "" {
		return noResponseFallback, nil
	}
	return out, nil
}

// executeCall runs one tool call and renders its result for the
// conversation. Failures become {"error": ...} payloads so the model
// can recover or explain rather than the command aborting.
func (a *Assistant) executeCall(ctx context.Context, call types.ToolCall) string {
	result, err := a.registry.Execute(ctx, call.Name, call.Input)
	if err != nil {
		logging.Session("tool %s failed: %v", call.Name, err)
		payload, _ := json.Marshal(tools.ErrorPayload{Error: err.Error()})
		return string(payload)
	}

	if a.registry.IsMutating(call.Name) {
		// Detached reload after the ledger's settle delay; the
		// command never waits on it.
		a.cache.ScheduleReload(context.Background())
	}

	payload, merr := json.Marshal(result.Value)
	if merr != nil {
		return tools.Format(call.Name, result.Value)
	}
	return string(payload)
}

// scanForVerdict auto-records a verdict the model announced in free
// text. Gated on the selected case actually being in trial and the
// text containing a verdict-indicating phrase; failures are logged
// and swallowed.
func (a *Assistant) scanForVerdict(ctx context.Context, text string) {
	if a.sctx.SelectedCase == nil {
		return
	}
	selected := a.cache.Get(a.sctx.SelectedCase)
	if selected == nil || selected.Status != types.StatusInTrial {
		return
	}
	if !verdict.Indicates(text) {
		return
	}
	v := verdict.Extract(text)
	if v == types.VerdictNone {
		return
	}

	logging.Session("auto-recording verdict %s for case %s", v, selected.ID)
	if _, err := a.registry.Execute(ctx, "record_verdict", map[string]interface{}{
		"caseId":    selected.ID.String(),
		"verdict":   v.String(),
		"reasoning": text,
		"isFinal":   true,
	}); err != nil && !ledger.IsBenignDuplicate(err) {
		logging.Get(logging.CategorySession).Warn("verdict auto-record failed: %v", err)
	}
}

// systemPrompt is rebuilt per round so live context (connection,
// case count, selection, privilege) stays current mid-command.
func (a *Assistant) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are the courtroom clerk assistant for a case ledger. ")
	b.WriteString("You help the user file, inspect, and try cases using the available tools. ")
	b.WriteString("Use a tool whenever it answers the user's request; otherwise answer directly and concisely.\n\n")
	b.WriteString("Current context:\n")
	fmt.Fprintf(&b, "- wallet connected: %t\n", a.sctx.Connected)
	if a.sctx.UserAddress != "" {
		fmt.Fprintf(&b, "- user address: %s\n", a.sctx.UserAddress)
	}
	fmt.Fprintf(&b, "- cases on file: %d\n", a.cache.Len())
	if a.sctx.SelectedCase != nil {
		fmt.Fprintf(&b, "- selected case: %s\n", a.sctx.SelectedCase)
	} else {
		b.WriteString("- selected case: none\n")
	}
	fmt.Fprintf(&b, "- privileged user: %t\n", a.sctx.Privileged)
	return b.String()
}
