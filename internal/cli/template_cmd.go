package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/ganttagent/internal/cli/formatter"
	"github.com/alexanderramin/ganttagent/internal/prompt"
	"github.com/spf13/cobra"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect the instruction template",
	}

	cmd.AddCommand(
		newTemplateShowCmd(app),
		newTemplateDiffCmd(app),
	)

	return cmd
}

func newTemplateShowCmd(app *App) *cobra.Command {
	var ref dateValue

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.assembler()
			out := a.Template()
			if cmd.Flags().Changed("ref") {
				out = a.SystemPrompt(ref.or(app.Translator.ReferenceDate()))
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Var(&ref, "ref", "render example dates for this reference date")
	return cmd
}

func newTemplateDiffCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [FILE]",
		Short: "Diff a template against the embedded default",
		Long: "Compare FILE, or the active template when FILE is omitted,\n" +
			"with the template compiled into the binary.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, text := "active", app.assembler().Template()
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading template: %w", err)
				}
				name, text = args[0], string(data)
			}

			diff, err := prompt.Diff("embedded", prompt.DefaultTemplate(), name, text)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDiff(diff))
			return nil
		},
	}
}
