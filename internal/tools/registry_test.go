package tools

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() *Tool {
	return &Tool{
		Name:        "echo",
		Description: "echoes its input",
		Schema: Schema{Properties: map[string]Property{
			"text": {Type: TypeString, Description: "text to echo"},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return args["text"], nil
		},
	}
}

func TestRegisterAndExecute(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	res, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Value)
	assert.True(t, res.IsSuccess())
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))
	err := reg.Register(echoTool())
	assert.ErrorIs(t, err, ErrToolAlreadyRegistered)
}

func TestRegisterInvalid(t *testing.T) {
	reg := NewRegistry()
	assert.ErrorIs(t, reg.Register(&Tool{Name: ""}), ErrToolNameEmpty)
	assert.ErrorIs(t, reg.Register(&Tool{Name: "noop"}), ErrToolExecuteNil)
}

func TestExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecuteMissingRequiredArg(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	_, err := reg.Execute(context.Background(), "echo", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrMissingRequiredArg)
}

func TestOptionalArgMayBeAbsent(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name: "opt",
		Schema: Schema{Properties: map[string]Property{
			"note": {Type: TypeString, Optional: true},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			_, present := args["note"]
			return present, nil
		},
	})

	res, err := reg.Execute(context.Background(), "opt", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, false, res.Value)
}

func TestEnumValidation(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name: "verdict",
		Schema: Schema{Properties: map[string]Property{
			"v": {Type: TypeString, Enum: []string{"GUILTY", "NOT_GUILTY"}},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return args["v"], nil
		},
	})

	_, err := reg.Execute(context.Background(), "verdict", map[string]interface{}{"v": "MAYBE"})
	assert.ErrorIs(t, err, ErrInvalidArgType)

	res, err := reg.Execute(context.Background(), "verdict", map[string]interface{}{"v": "GUILTY"})
	require.NoError(t, err)
	assert.Equal(t, "GUILTY", res.Value)
}

func TestBigIntDecoding(t *testing.T) {
	var got *big.Int
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name: "lookup",
		Schema: Schema{Properties: map[string]Property{
			"caseId": {Type: TypeBigInt},
		}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			got = args["caseId"].(*big.Int)
			return nil, nil
		},
	})

	// Decimal string, including values beyond int64.
	huge := "123456789012345678901234567890"
	_, err := reg.Execute(context.Background(), "lookup", map[string]interface{}{"caseId": huge})
	require.NoError(t, err)
	assert.Equal(t, huge, got.String())

	// Small JSON numbers convert exactly.
	_, err = reg.Execute(context.Background(), "lookup", map[string]interface{}{"caseId": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())

	// Fractional numbers are rejected rather than silently truncated.
	_, err = reg.Execute(context.Background(), "lookup", map[string]interface{}{"caseId": 1.5})
	assert.ErrorIs(t, err, ErrInvalidArgType)

	_, err = reg.Execute(context.Background(), "lookup", map[string]interface{}{"caseId": "abc"})
	assert.ErrorIs(t, err, ErrInvalidArgType)
}

func TestStreamingToolIsDrained(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:   "narrate",
		Schema: Schema{Properties: map[string]Property{}},
		Stream: func(ctx context.Context, args map[string]interface{}) (<-chan string, error) {
			ch := make(chan string, 3)
			ch <- "The court "
			ch <- "is now "
			ch <- "in session."
			close(ch)
			return ch, nil
		},
	})

	res, err := reg.Execute(context.Background(), "narrate", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "The court is now in session.", res.Value)
}

func TestStreamingToolHonorsCancellation(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:   "stall",
		Schema: Schema{Properties: map[string]Property{}},
		Stream: func(ctx context.Context, args map[string]interface{}) (<-chan string, error) {
			return make(chan string), nil // never closed
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Execute(ctx, "stall", map[string]interface{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsMutating(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:     "mutate",
		Mutating: true,
		Schema:   Schema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, nil
		},
	})
	reg.MustRegister(echoTool())

	assert.True(t, reg.IsMutating("mutate"))
	assert.False(t, reg.IsMutating("echo"))
	assert.False(t, reg.IsMutating("missing"))
}

func TestExecuteToolReportsFailure(t *testing.T) {
	boom := errors.New("ledger unavailable")
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:   "fail",
		Schema: Schema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, boom
		},
	})

	res, err := reg.Execute(context.Background(), "fail", map[string]interface{}{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, "fail", res.ToolName)
}
