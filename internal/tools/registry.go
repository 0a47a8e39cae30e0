package tools

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"tribunal/internal/logging"
)

// Registry holds all available tools and provides lookup and execution.
// It is thread-safe and supports registration at runtime, though in
// practice the courtroom tool set is registered once at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool

	logging.ToolsDebug("registered tool: %s (mutating=%v)", tool.Name, tool.Mutating)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at startup.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// IsMutating reports whether a tool changes ledger state.
func (r *Registry) IsMutating(name string) bool {
	t := r.Get(name)
	return t != nil && t.Mutating
}

// Execute runs a tool by name with the given arguments.
// Returns ErrToolNotFound if the tool doesn't exist.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (*Result, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return r.ExecuteTool(ctx, tool, args)
}

// ExecuteTool runs a specific tool with the given arguments.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, args map[string]interface{}) (*Result, error) {
	start := time.Now()

	decoded, err := decodeArgs(tool, args)
	if err != nil {
		return &Result{
			ToolName:   tool.Name,
			Err:        err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	logging.ToolsDebug("executing tool: %s", tool.Name)
	var value interface{}
	if tool.Stream != nil {
		value, err = drainStream(ctx, tool, decoded)
	} else {
		value, err = tool.Execute(ctx, decoded)
	}

	duration := time.Since(start)
	logging.ToolsDebug("tool %s completed in %v (success=%v)", tool.Name, duration, err == nil)

	return &Result{
		ToolName:   tool.Name,
		Value:      value,
		Err:        err,
		DurationMs: duration.Milliseconds(),
	}, err
}

// drainStream collects a streaming tool's chunks into one string result.
func drainStream(ctx context.Context, tool *Tool, args map[string]interface{}) (interface{}, error) {
	ch, err := tool.Stream(ctx, args)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return sb.String(), nil
			}
			sb.WriteString(chunk)
		case <-ctx.Done():
			return sb.String(), ctx.Err()
		}
	}
}

// decodeArgs checks required arguments and converts each value to the type
// the executor expects. The input map is not modified.
func decodeArgs(tool *Tool, args map[string]interface{}) (map[string]interface{}, error) {
	decoded := make(map[string]interface{}, len(args))

	for name, prop := range tool.Schema.Properties {
		raw, ok := args[name]
		if !ok {
			if prop.Optional {
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrMissingRequiredArg, name)
		}

		v, err := decodeValue(name, prop, raw)
		if err != nil {
			return nil, err
		}
		decoded[name] = v
	}

	return decoded, nil
}

func decodeValue(name string, prop Property, raw interface{}) (interface{}, error) {
	switch prop.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidArgType, name)
		}
		if len(prop.Enum) > 0 && !containsString(prop.Enum, s) {
			return nil, fmt.Errorf("%w: %s must be one of %s", ErrInvalidArgType, name, strings.Join(prop.Enum, ", "))
		}
		return s, nil

	case TypeNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		}
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidArgType, name)

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidArgType, name)
		}
		return b, nil

	case TypeBigInt:
		// Backends deliver identifiers as decimal strings; a bare JSON
		// number is tolerated as long as it survives exact conversion.
		switch n := raw.(type) {
		case string:
			i, ok := new(big.Int).SetString(strings.TrimSpace(n), 10)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a decimal integer string", ErrInvalidArgType, name)
			}
			return i, nil
		case float64:
			i, acc := big.NewFloat(n).Int(nil)
			if acc != big.Exact {
				return nil, fmt.Errorf("%w: %s lost precision; pass it as a decimal string", ErrInvalidArgType, name)
			}
			return i, nil
		}
		return nil, fmt.Errorf("%w: %s must be a decimal integer string", ErrInvalidArgType, name)
	}

	return nil, fmt.Errorf("%w: %s has unsupported type %q", ErrInvalidArgType, name, prop.Type)
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
