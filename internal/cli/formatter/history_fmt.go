package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/history"
)

// FormatHistoryList renders stored translations as a table, newest first.
func FormatHistoryList(entries []*history.Entry) string {
	if len(entries) == 0 {
		return Dim("No translations recorded.") + "\n"
	}

	headers := []string{"ID", "When", "Status", "Actions", "Message"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			TruncID(e.ID),
			FormatTimestamp(e.CreatedAt),
			entryStatus(e),
			strconv.Itoa(len(e.Actions)),
			Truncate(e.Message, 40),
		})
	}
	return RenderTable(headers, rows)
}

// FormatHistoryEntry renders one stored translation with its result.
func FormatHistoryEntry(e *history.Entry) string {
	var b strings.Builder

	b.WriteString(Header("Translation") + "\n")
	field := func(label, value string) {
		fmt.Fprintf(&b, "  %-11s%s\n", label+":", value)
	}
	field("ID", e.ID)
	field("Created", FormatTimestamp(e.CreatedAt))
	field("Reference", e.ReferenceDate)
	if e.Model != "" {
		field("Model", e.Model)
	}
	field("Latency", FormatLatency(e.LatencyMs))
	if e.FailureKind != "" {
		field("Failure", StyleRed.Render(string(e.FailureKind)))
	}
	if e.DroppedActions > 0 {
		field("Dropped", StyleYellow.Render(strconv.Itoa(e.DroppedActions)))
	}
	field("Input", e.Message)

	b.WriteString("\n" + FormatResult(e.Result()))
	return b.String()
}

func entryStatus(e *history.Entry) string {
	switch {
	case e.Success:
		return StyleGreen.Render("ok")
	case e.NeedsClarification:
		return StyleYellow.Render("clarify")
	default:
		return StyleRed.Render("failed")
	}
}
