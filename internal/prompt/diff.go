package prompt

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between two template texts. An empty string
// means the templates are identical.
func Diff(fromName, from, toName, to string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diffing templates: %w", err)
	}
	return text, nil
}
