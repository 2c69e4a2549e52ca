package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/ganttagent/internal/domain"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// dateValue is a YYYY-MM-DD flag. The zero value means "not set".
type dateValue struct {
	t time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

func (d *dateValue) Set(s string) error {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	d.t = t
	return nil
}

func (d *dateValue) Type() string { return "date" }

// or returns the flag date in fallback's location, or fallback when unset.
func (d *dateValue) or(fallback time.Time) time.Time {
	if d.t.IsZero() {
		return fallback
	}
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, fallback.Location())
}

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoice(def string, choices ...string) *choiceValue {
	return &choiceValue{value: def, choices: choices}
}

func (c *choiceValue) String() string { return c.value }

func (c *choiceValue) Set(s string) error {
	for _, ch := range c.choices {
		if s == ch {
			c.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
}

func (c *choiceValue) Type() string { return "string" }

func addContextFlag(fs *pflag.FlagSet, path *string) {
	fs.StringVarP(path, "context", "c", "", "chart snapshot file (JSON or YAML)")
}

func addRefFlag(fs *pflag.FlagSet, ref *dateValue) {
	fs.Var(ref, "ref", "reference date YYYY-MM-DD (default today)")
}

// loadSnapshot reads a chart snapshot. An empty path means no snapshot.
func loadSnapshot(path string) (*domain.Snapshot, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}

	var snap domain.Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing context %s: %w", filepath.Base(path), err)
	}
	return &snap, nil
}
