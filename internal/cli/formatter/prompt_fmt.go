package formatter

import (
	"strings"

	"github.com/alexanderramin/ganttagent/internal/llm"
)

// FormatMessages renders an assembled conversation, one section per message.
func FormatMessages(msgs []llm.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Header(string(m.Role)) + "\n")
		b.WriteString(strings.TrimRight(m.Content, "\n") + "\n")
	}
	return b.String()
}

// FormatDiff colors a unified diff line by line.
func FormatDiff(diff string) string {
	if diff == "" {
		return Dim("No differences from the embedded template.") + "\n"
	}
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(colorLine(StyleBold.Render, line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(colorLine(StyleBlue.Render, line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(colorLine(StyleGreen.Render, line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(colorLine(StyleRed.Render, line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

func colorLine(render func(...string) string, line string) string {
	if body, ok := strings.CutSuffix(line, "\n"); ok {
		return render(body) + "\n"
	}
	return render(line)
}
