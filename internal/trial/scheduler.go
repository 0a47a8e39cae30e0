package trial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"tribunal/internal/cache"
	"tribunal/internal/ledger"
	"tribunal/internal/logging"
	"tribunal/internal/tools"
	"tribunal/internal/types"
	"tribunal/internal/verdict"
)

// ErrTrialActive is returned when RunTrial is called while another run
// is in flight. Starting a new run never implicitly aborts the prior
// one; the caller must Abort first.
var ErrTrialActive = errors.New("a trial run is already active")

// HistoryEntry is one agent message of the accumulated debate history.
type HistoryEntry struct {
	Role types.AgentRole
	Text string
}

// Scheduler executes the fixed trial script against the completion
// service and the ledger (through the tool registry).
type Scheduler struct {
	llm      types.LLMClient
	registry *tools.Registry
	cache    *cache.CaseCache
	sctx     *types.SessionContext
	profiles *ProfileSet
	abort    *AbortController

	turnDelay time.Duration
	pollTick  time.Duration

	running atomic.Bool
}

// NewScheduler wires a scheduler. turnDelay is the inter-turn pacing
// delay; pollTick is how often the delay re-checks the abort signal.
func NewScheduler(llm types.LLMClient, registry *tools.Registry, cc *cache.CaseCache,
	sctx *types.SessionContext, profiles *ProfileSet, turnDelay, pollTick time.Duration) *Scheduler {
	if turnDelay <= 0 {
		turnDelay = time.Second
	}
	if pollTick <= 0 {
		pollTick = 100 * time.Millisecond
	}
	return &Scheduler{
		llm:       llm,
		registry:  registry,
		cache:     cc,
		sctx:      sctx,
		profiles:  profiles,
		abort:     NewAbortController(),
		turnDelay: turnDelay,
		pollTick:  pollTick,
	}
}

// Abort cancels the active run. Safe to call from any goroutine.
func (s *Scheduler) Abort() {
	s.abort.Abort()
}

// Running reports whether a run is in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// RunTrial executes the full trial script for the selected case,
// streaming transcript events to sink. It returns the extracted
// verdict with the judge's reasoning, or VerdictNone when no verdict
// was reached or the run was cancelled. Cancellation is not an error.
func (s *Scheduler) RunTrial(ctx context.Context, sink EventFunc) (types.Verdict, string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return types.VerdictNone, "", ErrTrialActive
	}
	defer s.running.Store(false)

	s.abort.Arm(sink)
	defer s.abort.Disarm()

	status := func(msg string) {
		sink(Event{Kind: EventStatus, Turn: -1, Text: msg})
	}

	// Preconditions, checked in order. Each short-circuits with a
	// status message and no state mutation.
	if s.cache.Len() == 0 {
		status("No cases on file. File a case before starting a trial.")
		return types.VerdictNone, "", nil
	}
	if s.sctx.SelectedCase == nil {
		status("No case selected. Select a case before starting a trial.")
		return types.VerdictNone, "", nil
	}
	selected := s.cache.Get(s.sctx.SelectedCase)
	if selected == nil {
		status(fmt.Sprintf("Case %s is not in your case list.", s.sctx.SelectedCase))
		return types.VerdictNone, "", nil
	}
	if selected.Status == types.StatusCompleted {
		status(fmt.Sprintf("Case %s is already completed.", selected.ID))
		return types.VerdictNone, "", nil
	}
	switch selected.Status {
	case types.StatusPending, types.StatusInTrial, types.StatusAppealed:
	default:
		status(fmt.Sprintf("Case %s has status %s and cannot go to trial.", selected.ID, selected.Status))
		return types.VerdictNone, "", nil
	}

	logging.Trial("trial starting: case=%s title=%q status=%s", selected.ID, selected.Title, selected.Status)

	// Only ledger write besides the verdict. A duplicate start is a
	// benign race with another view of the same case.
	if selected.Status != types.StatusInTrial {
		if _, err := s.registry.Execute(ctx, "start_trial", map[string]interface{}{
			"caseId": selected.ID.String(),
		}); err != nil {
			if !ledger.IsBenignDuplicate(err) {
				sink(Event{Kind: EventError, Turn: -1, Text: fmt.Sprintf("Simulation failed: %v", err)})
				return types.VerdictNone, "", fmt.Errorf("failed to start trial: %w", err)
			}
			logging.Trial("trial already started for case %s, proceeding", selected.ID)
		}
		s.cache.ScheduleReload(context.Background())
	}

	var history []HistoryEntry
	extracted := types.VerdictNone
	reasoning := ""

	for _, turn := range Script {
		if s.abort.Aborted() || ctx.Err() != nil {
			return types.VerdictNone, "", nil
		}

		profile := s.profiles.Get(turn.Role)

		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
		prompt := buildPrompt(turn, s.profiles, selected, history)

		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
		logging.TrialDebug("turn %d: role=%s phase=%s ceiling=%d", turn.Index, turn.Role, turn.Phase, profile.Ceiling(turn.Phase))
		resp, err := s.llm.Chat(ctx, &types.ChatRequest{
			System:    profile.SystemPrompt,
			Messages:  []types.ChatMessage{{Role: types.RoleUser, Content: prompt}},
			MaxTokens: profile.Ceiling(turn.Phase),
		})
		if s.abort.Aborted() {
			// A call already in flight completes; its result is
			// discarded.
			return types.VerdictNone, "", nil
		}
		if err != nil {
			sink(Event{Kind: EventError, Turn: turn.Index, Role: turn.Role, Phase: turn.Phase,
				Text: fmt.Sprintf("Simulation failed: %v", err)})
			return types.VerdictNone, "", fmt.Errorf("turn %d (%s) failed: %w", turn.Index, turn.Role, err)
		}
		text := strings.TrimSpace(resp.Text)

		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
		history = append(history, HistoryEntry{Role: turn.Role, Text: text})

		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
		sink(Event{Kind: EventTurn, Turn: turn.Index, Role: turn.Role, Phase: turn.Phase, Text: text})

		if turn.Index == VerdictTurnIndex {
			extracted = verdict.Extract(text)
			reasoning = text
		}

		if turn.Index == len(Script)-1 {
			break
		}
		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
		if !s.abort.Sleep(ctx, s.turnDelay, s.pollTick) {
			return types.VerdictNone, "", nil
		}
		if s.abort.Aborted() {
			return types.VerdictNone, "", nil
		}
	}

	if extracted == types.VerdictNone {
		status("The judge did not reach a clear verdict. No verdict was recorded.")
		return types.VerdictNone, reasoning, nil
	}

	if _, err := s.registry.Execute(ctx, "record_verdict", map[string]interface{}{
		"caseId":    selected.ID.String(),
		"verdict":   extracted.String(),
		"reasoning": reasoning,
		"isFinal":   true,
	}); err != nil {
		if !ledger.IsBenignDuplicate(err) {
			sink(Event{Kind: EventError, Turn: -1, Text: fmt.Sprintf("Failed to record verdict: %v", err)})
			return extracted, reasoning, fmt.Errorf("failed to record verdict: %w", err)
		}
		logging.Trial("verdict already recorded for case %s", selected.ID)
	}
	s.cache.ScheduleReload(context.Background())

	sink(Event{Kind: EventVerdict, Turn: -1, Role: types.RoleJudge, Text: fmt.Sprintf("Verdict: %s", extracted)})
	logging.Trial("trial completed: case=%s verdict=%s", selected.ID, extracted)
	return extracted, reasoning, nil
}

// buildPrompt assembles the user prompt for one turn: the case facts,
// the accumulated debate history, and the phase instruction. The
// judge's final turn additionally carries the verdict instruction.
func buildPrompt(turn Turn, profiles *ProfileSet, c *types.Case, history []HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case #%s: %s\n", c.ID, c.Title)
	if c.EvidenceURI != "" {
		fmt.Fprintf(&b, "Evidence on record: %s\n", c.EvidenceURI)
	}

	if len(history) > 0 {
		b.WriteString("\nProceedings so far:\n")
		for _, entry := range history {
			p := profiles.Get(entry.Role)
			fmt.Fprintf(&b, "[%s (%s)]: %s\n", p.Name, entry.Role, entry.Text)
		}
	}

	fmt.Fprintf(&b, "\nPhase: %s. %s", turn.Phase, phaseInstructions[turn.Phase])
	if turn.Index == VerdictTurnIndex {
		b.WriteString(verdictInstruction)
	}
	return b.String()
}
