package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"tribunal/internal/types"
)

// Format renders a tool result as a human-readable string for the UI.
// Results are keyed by tool name where the shape warrants a dedicated
// layout; everything else falls through to a pretty-printed dump.
func Format(name string, value interface{}) string {
	switch v := value.(type) {
	case CaseList:
		return formatCaseList(v)
	case *types.Case:
		return formatCase(v)
	case *types.VerdictRecord:
		return formatVerdict(v)
	case StatusMessage:
		return v.Message
	case ErrorPayload:
		return FormatError(name, fmt.Errorf("%s", v.Error))
	case bool:
		if name == "has_verdict" {
			if v {
				return "A verdict has been recorded for this case."
			}
			return "No verdict has been recorded for this case."
		}
	case string:
		return v
	}
	return formatGeneric(name, value)
}

// FormatError renders a failed tool execution.
func FormatError(name string, err error) string {
	return fmt.Sprintf("Tool %s failed: %v", name, err)
}

func formatCaseList(list CaseList) string {
	if len(list.Cases) == 0 {
		return "No cases found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your cases (%d):\n", len(list.Cases))
	for _, c := range list.Cases {
		fmt.Fprintf(&sb, "  #%s  %-30s  %s", c.ID, truncate(c.Title, 30), c.Status)
		if c.Verdict != nil {
			fmt.Fprintf(&sb, "  verdict: %s", c.Verdict.Verdict)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCase(c *types.Case) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Case #%s: %s\n", c.ID, c.Title)
	fmt.Fprintf(&sb, "  Status:   %s\n", c.Status)
	fmt.Fprintf(&sb, "  Filer:    %s\n", c.Filer)
	if c.EvidenceURI != "" {
		fmt.Fprintf(&sb, "  Evidence: %s\n", c.EvidenceURI)
	}
	if !c.FiledAt.IsZero() {
		fmt.Fprintf(&sb, "  Filed:    %s\n", c.FiledAt.Format("2006-01-02 15:04 MST"))
	}
	if c.Verdict != nil {
		fmt.Fprintf(&sb, "  Verdict:  %s (final=%v)\n", c.Verdict.Verdict, c.Verdict.Final)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatVerdict(v *types.VerdictRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Verdict for case #%s: %s", v.CaseID, v.Verdict)
	if v.Final {
		sb.WriteString(" (final)")
	}
	if v.Reasoning != "" {
		fmt.Fprintf(&sb, "\n  Reasoning: %s", v.Reasoning)
	}
	return sb.String()
}

// formatGeneric is the fallback for unrecognized result shapes.
func formatGeneric(name string, value interface{}) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%s result: %v", name, value)
	}
	return fmt.Sprintf("%s result:\n%s", name, data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
