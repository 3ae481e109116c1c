package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// GrammarError reports a raw declaration that violates the entity DSL
// grammar. It is raised at declaration time, before anything is stored in
// the registry, and carries a humanized diff against the expected grammar
// production.
type GrammarError struct {
	// Path locates the offending element inside the raw declaration,
	// outermost first, e.g. ["field 2", "type"].
	Path []string

	// Expected is the grammar production the element failed to match.
	Expected string

	// Got is the offending raw value.
	Got any

	// Hint optionally suggests a correction.
	Hint string
}

// Error implements the error interface.
func (e *GrammarError) Error() string {
	at := "declaration"
	if len(e.Path) > 0 {
		at = strings.Join(e.Path, ": ")
	}
	return fmt.Sprintf("spec grammar: %s: expected %s, got %s",
		at, e.Expected, describeValue(e.Got))
}

// Diff renders the humanized diff between the expected grammar production
// and the offending value.
func (e *GrammarError) Diff() string {
	var b strings.Builder
	b.WriteString("entity declaration does not match the grammar\n")
	b.WriteString("  [entityType properties? field*]\n")
	b.WriteString("  field = [name properties? type]\n")
	b.WriteString("  type  = validator | keyword | [keyword props] | \"ns/Entity\"\n")
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, "at       | %s\n", strings.Join(e.Path, " > "))
	}
	fmt.Fprintf(&b, "expected | %s\n", e.Expected)
	fmt.Fprintf(&b, "got      | %s\n", describeValue(e.Got))
	if e.Hint != "" {
		fmt.Fprintf(&b, "hint     | %s\n", e.Hint)
	}
	return b.String()
}

// FormatForTerminal renders the diff with ANSI colors for CLI output.
func (e *GrammarError) FormatForTerminal() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%sError%s: entity declaration does not match the grammar\n",
		colorBold, colorRed, colorReset)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, "  %s-->%s %s\n", colorCyan, colorReset, strings.Join(e.Path, " > "))
	}
	fmt.Fprintf(&b, "  %sexpected%s %s\n", colorGray, colorReset, e.Expected)
	fmt.Fprintf(&b, "  %sgot%s      %s%s%s\n", colorGray, colorReset,
		colorRed, describeValue(e.Got), colorReset)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n%sHelp:%s %s\n", colorBold+colorCyan, colorReset, e.Hint)
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler.
func (e *GrammarError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path     []string `json:"path"`
		Expected string   `json:"expected"`
		Got      string   `json:"got"`
		Hint     string   `json:"hint,omitempty"`
	}{
		Path:     e.Path,
		Expected: e.Expected,
		Got:      describeValue(e.Got),
		Hint:     e.Hint,
	})
}

// StripColors removes ANSI color codes from a string (useful for testing).
func StripColors(s string) string {
	result := s
	for strings.Contains(result, "\033[") {
		start := strings.Index(result, "\033[")
		end := strings.Index(result[start:], "m")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	return result
}

// describeValue renders a raw DSL value for diagnostics without dumping
// huge nested structures.
func describeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", val)
	case []any:
		if len(val) == 0 {
			return "[]"
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			switch item.(type) {
			case []any:
				parts = append(parts, "[...]")
			case Props, map[string]any:
				parts = append(parts, "{...}")
			default:
				parts = append(parts, describeValue(item))
			}
		}
		return "[" + strings.Join(parts, " ") + "]"
	case Props:
		return describeValue(map[string]any(val))
	case map[string]any:
		return fmt.Sprintf("map with %d keys", len(val))
	default:
		return fmt.Sprintf("%T(%v)", v, v)
	}
}

func grammarErr(path []string, expected string, got any, hint string) error {
	return &GrammarError{Path: path, Expected: expected, Got: got, Hint: hint}
}
