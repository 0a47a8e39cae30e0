package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// GeminiClient implements types.LLMClient on the official genai SDK.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
	temperature     float64
}

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
	}, nil
}

// Complete sends a bare prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system instruction.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.Chat(ctx, &types.ChatRequest{
		System:   systemPrompt,
		Messages: []types.ChatMessage{{Role: types.RoleUser, Content: userPrompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Chat sends a full conversation with optional tool definitions.
func (c *GeminiClient) Chat(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	start := time.Now()
	logging.LLMDebug("[gemini] chat: model=%s messages=%d tools=%d", c.model, len(req.Messages), len(req.Tools))

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	} else if c.maxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(c.maxOutputTokens)
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		cfg.Temperature = genai.Ptr(float32(temp))
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schemaFromInput(t.InputSchema),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		// Mode is left at AUTO: invocation stays at the model's discretion.
	}

	contents := contentsFromMessages(req.Messages)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		logging.Get(logging.CategoryLLM).Error("[gemini] chat failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	out := &types.ChatResponse{StopReason: types.StopReasonStop}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call-%d", len(out.ToolCalls)+1)
			}
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{
				ID:    id,
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			})
		}
	}
	out.Text = text.String()

	if len(out.ToolCalls) > 0 {
		out.StopReason = types.StopReasonToolCalls
	} else {
		switch resp.Candidates[0].FinishReason {
		case genai.FinishReasonStop:
			out.StopReason = types.StopReasonStop
		case genai.FinishReasonMaxTokens:
			out.StopReason = types.StopReasonLength
		default:
			out.StopReason = types.StopReasonOther
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = types.UsageMetadata{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	logging.LLM("[gemini] chat completed in %v text_len=%d tool_calls=%d stop=%s",
		time.Since(start), len(out.Text), len(out.ToolCalls), out.StopReason)
	return out, nil
}

// contentsFromMessages converts the neutral conversation into genai
// contents. Tool results ride as function-response parts on user-role
// contents; assistant tool calls are replayed as function-call parts so
// the model keeps its call/response pairing.
func contentsFromMessages(messages []types.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case types.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Input,
				}})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		case types.RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     m.Name,
					Response: map[string]any{"result": m.Content},
				}}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	return contents
}

// schemaFromInput converts a JSON-schema input map to a genai schema.
func schemaFromInput(input map[string]interface{}) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	props, _ := input["properties"].(map[string]interface{})
	for name, raw := range props {
		p, _ := raw.(map[string]interface{})
		child := &genai.Schema{}
		switch p["type"] {
		case "number":
			child.Type = genai.TypeNumber
		case "boolean":
			child.Type = genai.TypeBoolean
		default:
			child.Type = genai.TypeString
		}
		if desc, ok := p["description"].(string); ok {
			child.Description = desc
		}
		schema.Properties[name] = child
	}
	if required, ok := input["required"].([]string); ok {
		schema.Required = required
	}
	return schema
}

var _ types.LLMClient = (*GeminiClient)(nil)
