package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/config"
	"github.com/alexanderramin/ganttagent/internal/history"
	"github.com/alexanderramin/ganttagent/internal/prompt"
	"github.com/alexanderramin/ganttagent/internal/server"
	"github.com/spf13/cobra"
)

// ErrHistoryDisabled is returned by history commands when no store is wired.
var ErrHistoryDisabled = errors.New("translation history is disabled")

// Translator is the pipeline as the commands drive it.
type Translator interface {
	server.Translator
	Translate(ctx context.Context, req agent.Request) agent.Outcome
	ReferenceDate() time.Time
}

// HistoryStore reads and trims recorded translations.
type HistoryStore interface {
	List(ctx context.Context, limit int) ([]*history.Entry, error)
	Get(ctx context.Context, idPrefix string) (*history.Entry, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// App holds everything the commands need.
type App struct {
	Version    string
	Config     *config.Config
	Translator Translator
	Assembler  *prompt.Assembler
	History    HistoryStore // nil when history is disabled
	Logger     *slog.Logger

	// IsInteractive reports whether stdin is a terminal. When it is not,
	// ask reads its message from stdin.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "ganttagent" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ganttagent",
		Short:         "Translate Gantt chart requests into structured actions",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newAskCmd(app),
		newPromptCmd(app),
		newDateCmd(app),
		newHistoryCmd(app),
		newSchemaCmd(),
		newTemplateCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	if a.IsInteractive == nil {
		return true
	}
	return a.IsInteractive()
}

func (a *App) assembler() *prompt.Assembler {
	if a.Assembler == nil {
		return prompt.New(prompt.DefaultTemplate())
	}
	return a.Assembler
}
