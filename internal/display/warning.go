package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related items, listed numbered (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when colored.
func (w Warning) Display(out io.Writer, colored bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, item))
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	text := b.String()
	if colored {
		text = paint(color.FgYellow).Sprint(text)
	}
	fmt.Fprint(out, text)
}

// WarnIncompleteSearch creates the warning shown when pipeline stages failed
// and some files may not have been searched. panicked selects the hint about
// stack traces, which are only logged for recovered panics.
func WarnIncompleteSearch(failures []error, panicked bool) Warning {
	items := make([]string, 0, len(failures))
	for _, err := range failures {
		items = append(items, err.Error())
	}

	noun := "stage"
	if len(failures) != 1 {
		noun = "stages"
	}

	suggestion := "Check the warnings above for the files that could not be searched"
	if panicked {
		suggestion = "Re-run with --log-level debug to see stack traces"
	}

	return Warning{
		Title:      "Search may be incomplete",
		Message:    fmt.Sprintf("%d pipeline %s failed:", len(failures), noun),
		Items:      items,
		Suggestion: suggestion,
	}
}
