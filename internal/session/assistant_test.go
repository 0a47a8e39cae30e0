package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tribunal/internal/cache"
	"tribunal/internal/ledger"
	"tribunal/internal/tools"
	"tribunal/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeLLM answers each round with a scripted response.
type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	respond  func(call int, req *types.ChatRequest) (*types.ChatResponse, error)
	requests []*types.ChatRequest
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	resp, err := f.Chat(ctx, &types.ChatRequest{System: system,
		Messages: []types.ChatMessage{{Role: types.RoleUser, Content: user}}})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (f *fakeLLM) Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(call, req)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	ledger    *ledger.MemoryLedger
	cache     *cache.CaseCache
	sctx      *types.SessionContext
	registry  *tools.Registry
	llm       *fakeLLM
	assistant *Assistant
}

func newFixture(t *testing.T, respond func(call int, req *types.ChatRequest) (*types.ChatResponse, error)) *fixture {
	t.Helper()

	ml := ledger.NewMemoryLedger("0xowner", 0)
	t.Cleanup(ml.Close)

	cc := cache.New(ml, "0xfiler", 0)
	require.NoError(t, cc.Reload(context.Background()))
	t.Cleanup(cc.Wait)

	sctx := &types.SessionContext{Connected: true, UserAddress: "0xfiler"}
	reg := tools.NewRegistry()
	tools.RegisterCourtroomTools(reg, ml, sctx)

	llm := &fakeLLM{respond: respond}
	return &fixture{
		ledger:    ml,
		cache:     cc,
		sctx:      sctx,
		registry:  reg,
		llm:       llm,
		assistant: NewAssistant(llm, reg, cc, sctx, 0),
	}
}

func textResponse(text string) *types.ChatResponse {
	return &types.ChatResponse{Text: text, StopReason: types.StopReasonStop}
}

func toolResponse(calls ...types.ToolCall) *types.ChatResponse {
	return &types.ChatResponse{ToolCalls: calls, StopReason: types.StopReasonToolCalls}
}

func TestHandleCommandPlainText(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		return textResponse("Hello. How can I help with your cases?"), nil
	})

	out, err := f.assistant.HandleCommand(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello. How can I help with your cases?", out)
	assert.Equal(t, 1, f.llm.callCount())
}

func TestHandleCommandNeverExceedsRoundBudget(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		// The model insists on another tool call every round.
		return toolResponse(types.ToolCall{ID: "c", Name: "get_user_cases", Input: map[string]interface{}{}}), nil
	})

	out, err := f.assistant.HandleCommand(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRounds, f.llm.callCount())
	assert.Equal(t, noResponseFallback, out)
}

func TestHandleCommandShowCasesEmptyLedger(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		if call == 0 {
			require.NotEmpty(t, req.Tools)
			return toolResponse(types.ToolCall{ID: "c1", Name: "get_user_cases", Input: map[string]interface{}{}}), nil
		}
		// The tool result reached the conversation.
		last := req.Messages[len(req.Messages)-1]
		require.Equal(t, types.RoleTool, last.Role)
		require.Contains(t, last.Content, "cases")
		return textResponse("You have no cases on file yet."), nil
	})

	out, err := f.assistant.HandleCommand(context.Background(), "Show my cases")
	require.NoError(t, err)
	assert.Equal(t, "You have no cases on file yet.", out)
	assert.Equal(t, 2, f.llm.callCount())
}

func TestHandleCommandToolFailureFedBack(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		if call == 0 {
			// Case 99 does not exist; the tool will fail.
			return toolResponse(types.ToolCall{ID: "c1", Name: "get_case",
				Input: map[string]interface{}{"caseId": "99"}}), nil
		}
		last := req.Messages[len(req.Messages)-1]
		require.Equal(t, types.RoleTool, last.Role)
		require.Contains(t, last.Content, "error")
		return textResponse("I couldn't find case 99."), nil
	})

	out, err := f.assistant.HandleCommand(context.Background(), "show case 99")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find case 99.", out)
}

func TestHandleCommandCompletionFailureAborts(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		return nil, errors.New("service unreachable")
	})

	_, err := f.assistant.HandleCommand(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion service failed")
}

func TestHandleCommandMutatingToolSchedulesReload(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		if call == 0 {
			return toolResponse(types.ToolCall{ID: "c1", Name: "file_case",
				Input: map[string]interface{}{"title": "New matter", "evidenceUri": "ipfs://x"}}), nil
		}
		return textResponse("Filed."), nil
	})

	require.Equal(t, 0, f.cache.Len())
	_, err := f.assistant.HandleCommand(context.Background(), "file a case titled New matter")
	require.NoError(t, err)

	f.cache.Wait()
	assert.Equal(t, 1, f.cache.Len())
}

func TestPassiveVerdictScanRecordsWhenInTrial(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		return textResponse("Based on the record, the verdict is NOT GUILTY."), nil
	})

	ctx := context.Background()
	filed, err := f.ledger.FileCase(ctx, "0xfiler", "Matter", "ipfs://e")
	require.NoError(t, err)
	require.NoError(t, f.ledger.StartTrial(ctx, filed.ID))
	require.NoError(t, f.cache.Reload(ctx))
	f.sctx.SelectedCase = filed.ID

	_, err = f.assistant.HandleCommand(ctx, "what do you make of the arguments?")
	require.NoError(t, err)

	rec, err := f.ledger.GetVerdict(ctx, filed.ID)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictNotGuilty, rec.Verdict)
}

func TestPassiveVerdictScanGatedOnStatus(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		return textResponse("If this went to trial, the verdict would surely be GUILTY."), nil
	})

	ctx := context.Background()
	filed, err := f.ledger.FileCase(ctx, "0xfiler", "Matter", "ipfs://e")
	require.NoError(t, err)
	require.NoError(t, f.cache.Reload(ctx))
	f.sctx.SelectedCase = filed.ID // still PENDING

	_, err = f.assistant.HandleCommand(ctx, "speculate for me")
	require.NoError(t, err)

	has, err := f.ledger.HasVerdict(ctx, filed.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSystemPromptCarriesLiveContext(t *testing.T) {
	f := newFixture(t, func(call int, req *types.ChatRequest) (*types.ChatResponse, error) {
		return textResponse("ok"), nil
	})
	f.sctx.Privileged = true

	_, err := f.assistant.HandleCommand(context.Background(), "hi")
	require.NoError(t, err)

	require.Len(t, f.llm.requests, 1)
	sys := f.llm.requests[0].System
	assert.Contains(t, sys, "wallet connected: true")
	assert.Contains(t, sys, "privileged user: true")
	assert.Contains(t, sys, "selected case: none")
	assert.Contains(t, sys, "cases on file: 0")
}
