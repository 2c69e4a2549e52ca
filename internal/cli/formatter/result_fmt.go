package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/agent"
)

// FormatResult renders a translation result for the terminal.
func FormatResult(r agent.Result) string {
	var b strings.Builder

	b.WriteString(Header("Result") + "\n")
	fmt.Fprintf(&b, "  Status:  %s\n", StatusPill(r))
	fmt.Fprintf(&b, "  Message: %s\n", r.Message)
	if r.RequiresConfirmation {
		fmt.Fprintf(&b, "  Confirm: %s\n", StyleRed.Render("required"))
	}

	if len(r.Actions) > 0 {
		b.WriteString("\n" + Header(fmt.Sprintf("Actions (%d)", len(r.Actions))) + "\n")
		for i, a := range r.Actions {
			line := fmt.Sprintf("  %d. %s", i+1, ActionBadge(a.Type))
			if a.RequiresConfirmation {
				line += " " + StyleRed.Render("[confirm]")
			}
			if a.Description != "" {
				line += "  " + Dim(a.Description)
			}
			b.WriteString(line + "\n")
			if p := FormatParams(a.Params); p != "" {
				b.WriteString("     " + p + "\n")
			}
		}
	}

	if len(r.ClarificationQuestions) > 0 {
		b.WriteString("\n" + Header("Questions") + "\n")
		for _, q := range r.ClarificationQuestions {
			b.WriteString("  " + StyleYellow.Render("?") + " " + q + "\n")
		}
	}

	return b.String()
}
