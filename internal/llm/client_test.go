package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribunal/internal/types"
)

func TestNewClientFallsBackToSimulated(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)
	assert.IsType(t, &SimulatedClient{}, client)

	// Provider set but no key: degrade instead of failing.
	client, err = NewClient(Config{Provider: ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &SimulatedClient{}, client)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "mystery", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown llm provider")
}

func TestNewClientOpenAI(t *testing.T) {
	client, err := NewClient(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
}

func TestSimulatedVerdictInstruction(t *testing.T) {
	c := NewSimulatedClient()
	ctx := context.Background()

	out, err := c.CompleteWithSystem(ctx, "You are the judge.",
		"Deliver your verdict. Respond with a line containing exactly VERDICT: GUILTY or VERDICT: NOT GUILTY.")
	require.NoError(t, err)
	assert.Contains(t, out, "VERDICT: GUILTY")

	out, err = c.CompleteWithSystem(ctx, "You are the judge.",
		"The evidence was insufficient. Respond with a line containing exactly VERDICT: GUILTY or VERDICT: NOT GUILTY.")
	require.NoError(t, err)
	assert.Contains(t, out, "VERDICT: NOT GUILTY")
}

func TestSimulatedRoleResponses(t *testing.T) {
	c := NewSimulatedClient()
	ctx := context.Background()

	out, err := c.CompleteWithSystem(ctx, "You are the prosecutor in a trial.", "Present your argument.")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "prosecution")

	out, err = c.CompleteWithSystem(ctx, "You are the defense attorney.", "Respond to the prosecution.")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "defense")
}

func TestSimulatedChatRequestsCaseTool(t *testing.T) {
	c := NewSimulatedClient()
	resp, err := c.Chat(context.Background(), &types.ChatRequest{
		Messages: []types.ChatMessage{{Role: types.RoleUser, Content: "show me my cases"}},
		Tools:    []types.ToolDefinition{{Name: "get_user_cases"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_user_cases", resp.ToolCalls[0].Name)
	assert.Equal(t, types.StopReasonToolCalls, resp.StopReason)
}

func TestSimulatedChatSummarizesAfterToolResult(t *testing.T) {
	c := NewSimulatedClient()
	resp, err := c.Chat(context.Background(), &types.ChatRequest{
		Messages: []types.ChatMessage{
			{Role: types.RoleUser, Content: "show me my cases"},
			{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{{ID: "sim-1", Name: "get_user_cases"}}},
			{Role: types.RoleTool, ToolCallID: "sim-1", Name: "get_user_cases", Content: "Case #12: Fraud"},
		},
		Tools: []types.ToolDefinition{{Name: "get_user_cases"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, types.StopReasonStop, resp.StopReason)
	assert.NotEmpty(t, resp.Text)
}

func TestSimulatedChatRespectsCancellation(t *testing.T) {
	c := NewSimulatedClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Chat(ctx, &types.ChatRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
