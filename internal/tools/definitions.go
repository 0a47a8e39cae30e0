package tools

import (
	"fmt"
	"sort"
	"strings"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// Definitions derives completion-service tool definitions from the
// registry's descriptor table. The derivation rules are the behavioral
// contract here:
//
//   - string, number and boolean map directly;
//   - enum-constrained strings carry the allowed literal set in the
//     description, because some backends cannot express enums natively;
//   - bigint identifiers are exposed as numeric-looking strings, annotated
//     as such;
//   - optional parameters are excluded from the required set;
//   - a tool with an unsupported parameter shape is a configuration error,
//     not a runtime one: it is skipped and logged, never surfaced.
//
// Definitions is cheap and recomputed per model call; the registry is
// assumed stable within a run.
func Definitions(r *Registry) []types.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]types.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		def, err := definitionFor(tool)
		if err != nil {
			logging.Get(logging.CategoryTools).Warn("skipping tool %s: %v", tool.Name, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

func definitionFor(tool *Tool) (types.ToolDefinition, error) {
	properties := make(map[string]interface{}, len(tool.Schema.Properties))
	var required []string

	// Deterministic order keeps prompts stable across calls.
	names := make([]string, 0, len(tool.Schema.Properties))
	for name := range tool.Schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := tool.Schema.Properties[name]
		wire, err := wireProperty(prop)
		if err != nil {
			return types.ToolDefinition{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		properties[name] = wire
		if !prop.Optional {
			required = append(required, name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return types.ToolDefinition{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: schema,
	}, nil
}

func wireProperty(prop Property) (map[string]interface{}, error) {
	switch prop.Type {
	case TypeString:
		desc := prop.Description
		if len(prop.Enum) > 0 {
			desc = strings.TrimRight(desc, ". ") + ". Must be one of: " + strings.Join(prop.Enum, ", ")
		}
		return map[string]interface{}{"type": "string", "description": desc}, nil

	case TypeNumber:
		return map[string]interface{}{"type": "number", "description": prop.Description}, nil

	case TypeBoolean:
		return map[string]interface{}{"type": "boolean", "description": prop.Description}, nil

	case TypeBigInt:
		desc := strings.TrimRight(prop.Description, ". ") + ". Pass as a decimal integer string, e.g. \"12\"."
		return map[string]interface{}{"type": "string", "description": desc}, nil
	}

	return nil, fmt.Errorf("unsupported parameter type %q", prop.Type)
}
