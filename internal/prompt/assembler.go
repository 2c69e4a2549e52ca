// Package prompt turns a user instruction, a schedule snapshot and a
// reference date into the message sequence sent to the model backend.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ganttagent/internal/briefing"
	"github.com/alexanderramin/ganttagent/internal/dateexpr"
	"github.com/alexanderramin/ganttagent/internal/domain"
	"github.com/alexanderramin/ganttagent/internal/llm"
)

//go:embed templates/system.md
var templatesFS embed.FS

const defaultTemplatePath = "templates/system.md"

// exampleYear is the year used by the worked examples in the template.
const exampleYear = "2025"

// ErrEmptyTemplate is returned when an override template has no content.
var ErrEmptyTemplate = errors.New("prompt template is empty")

// DefaultTemplate returns the embedded instruction template.
func DefaultTemplate() string {
	data, err := templatesFS.ReadFile(defaultTemplatePath)
	if err != nil {
		// The file is compiled in; a missing entry is a build defect.
		panic(fmt.Sprintf("embedded prompt template missing: %v", err))
	}
	return string(data)
}

// Assembler builds model payloads from a fixed instruction template.
// It holds no per-request state and is safe for concurrent use.
type Assembler struct {
	template string
}

// New creates an Assembler around the given template text.
func New(template string) *Assembler {
	return &Assembler{template: template}
}

// Load returns an Assembler for the template at path, or the embedded
// default when path is empty.
func Load(path string) (*Assembler, error) {
	if strings.TrimSpace(path) == "" {
		return New(DefaultTemplate()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt template %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTemplate)
	}
	return New(string(data)), nil
}

// Template returns the raw template text, before any year rewriting.
func (a *Assembler) Template() string {
	return a.template
}

// SystemPrompt returns the template with every example year stamped to
// ref's year so the worked examples stay consistent with today's date.
func (a *Assembler) SystemPrompt(ref time.Time) string {
	year := strconv.Itoa(ref.Year())
	r := strings.NewReplacer(
		exampleYear+"-", year+"-",
		exampleYear+"年", year+"年",
	)
	return r.Replace(a.template)
}

// UserPrompt renders the reference date, the serialized schedule context
// and the verbatim user instruction.
func (a *Assembler) UserPrompt(message string, snap *domain.Snapshot, ref time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's date: %s (%s)\n", ref.Format(dateexpr.Layout), ref.Weekday())
	fmt.Fprintf(&b, "Current year: %d", ref.Year())
	b.WriteString(briefing.Serialize(snap, message))
	b.WriteString("\n\nUser input: ")
	b.WriteString(message)
	return b.String()
}

// Assemble returns the ordered system and user messages for one request.
func (a *Assembler) Assemble(message string, snap *domain.Snapshot, ref time.Time) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: a.SystemPrompt(ref)},
		{Role: llm.RoleUser, Content: a.UserPrompt(message, snap, ref)},
	}
}
