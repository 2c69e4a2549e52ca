package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/cli/formatter"
	"github.com/alexanderramin/ganttagent/internal/dateexpr"
	"github.com/spf13/cobra"
)

// ErrUnresolvedDate is returned by the date command for expressions the
// resolver does not recognise.
var ErrUnresolvedDate = errors.New("unrecognised date expression")

func newPromptCmd(app *App) *cobra.Command {
	var (
		contextPath string
		ref         dateValue
	)

	cmd := &cobra.Command{
		Use:   `prompt "<message>"`,
		Short: "Print the messages that would be sent to the model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(contextPath)
			if err != nil {
				return err
			}
			day := ref.or(app.Translator.ReferenceDate())
			msgs := app.assembler().Assemble(strings.Join(args, " "), snap, day)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMessages(msgs))
			return nil
		},
	}

	addContextFlag(cmd.Flags(), &contextPath)
	addRefFlag(cmd.Flags(), &ref)
	return cmd
}

func newDateCmd(app *App) *cobra.Command {
	var ref dateValue

	cmd := &cobra.Command{
		Use:   `date "<expression>"`,
		Short: "Resolve a relative date expression",
		Example: `  ganttagent date 下周一
  ganttagent date 3天后 --ref 2026-03-02`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")
			day := ref.or(app.Translator.ReferenceDate())
			resolved, ok := dateexpr.ResolveString(expr, day)
			if !ok {
				return fmt.Errorf("%q: %w", expr, ErrUnresolvedDate)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	addRefFlag(cmd.Flags(), &ref)
	return cmd
}
