// Package ui formats CLI output.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorOptions configures an error message.
type ErrorOptions struct {
	Context     string
	Problem     string
	Suggestions []string
	NoColor     bool
}

// FormatError creates a standardized error message.
//
// Example output:
//
//	✗ CONFIGURATION ERROR: cannot read weft.yml
//
//	  Did you mean: weft.yaml?
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	header := color.New(color.FgRed, color.Bold)
	if opts.NoColor {
		header.DisableColor()
	}

	if opts.Context != "" {
		header.Fprintf(&b, "✗ %s: %s\n", strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "✗ %s\n", opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "  Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer.
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message.
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer.
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}
