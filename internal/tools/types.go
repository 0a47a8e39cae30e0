// Package tools provides the courtroom tool registry.
//
// Tools are enumerated in an explicit descriptor table (name → description,
// parameter schema, executor) rather than derived by reflection. The
// registry validates and decodes arguments, executes the tool, and the
// definitions layer derives completion-service tool definitions from the
// same table.
package tools

import (
	"context"
)

// Parameter types understood by the schema layer. Anything else is a
// configuration error: the definitions layer skips the tool and logs.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"

	// TypeBigInt marks an arbitrary-precision integer identifier. It is
	// exposed to the model as a decimal string and converted to *big.Int
	// before the executor runs.
	TypeBigInt = "bigint"
)

// Property describes a single parameter.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	// Enum restricts a string parameter to a literal set. The allowed set
	// is annotated in the description for backends that cannot express
	// enums natively.
	Enum []string `json:"enum,omitempty"`
	// Optional excludes the parameter from the required set.
	Optional bool `json:"-"`
}

// Schema defines a tool's parameters.
type Schema struct {
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution. Arguments arrive
// decoded: bigint parameters are *big.Int by the time this runs.
type ExecuteFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// StreamFunc is the signature for streaming tool execution. The registry
// drains the channel and hands a single concatenated string result back;
// the calling loops are not streaming-aware.
type StreamFunc func(ctx context.Context, args map[string]interface{}) (<-chan string, error)

// Tool is one entry of the descriptor table.
type Tool struct {
	// Name is the unique identifier, as invoked by the model.
	Name string

	// Description explains what the tool does, for the model.
	Description string

	// Schema defines the expected arguments.
	Schema Schema

	// Execute runs the tool. Exactly one of Execute and Stream is set.
	Execute ExecuteFunc

	// Stream runs the tool as a chunk sequence; drained by the registry.
	Stream StreamFunc

	// Mutating marks tools whose execution changes ledger state. The
	// reconciliation cache schedules a reload after any of these.
	Mutating bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil && t.Stream == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Result wraps the outcome of one tool execution.
type Result struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Value is the structured output. Streaming tools produce a string.
	Value interface{}

	// Err is set if the tool failed.
	Err error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *Result) IsSuccess() bool {
	return r.Err == nil
}

// ErrorPayload is the structured error fed back into the conversation when
// a tool execution fails. The loop does not abort on it; the model is
// expected to recover or explain the failure.
type ErrorPayload struct {
	Error string `json:"error"`
}
