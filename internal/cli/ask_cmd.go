package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/cli/formatter"
	"github.com/spf13/cobra"
)

var errNoMessage = errors.New("a message is required (pass it as an argument or on stdin)")

func newAskCmd(app *App) *cobra.Command {
	var (
		contextPath string
		asJSON      bool
		raw         bool
	)

	cmd := &cobra.Command{
		Use:   `ask ["<message>"]`,
		Short: "Translate one request into chart actions",
		Long: "Run a message through the translation pipeline and print the result.\n" +
			"Without arguments the message is read from stdin when stdin is not a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readMessage(app, cmd, args)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(contextPath)
			if err != nil {
				return err
			}

			out := app.Translator.Translate(cmd.Context(), agent.Request{Message: msg, Context: snap})
			w := cmd.OutOrStdout()

			switch {
			case raw:
				if out.RawReply == "" {
					return fmt.Errorf("no model reply: %s", out.Result.Message)
				}
				fmt.Fprintln(w, out.RawReply)
			case asJSON:
				data, err := json.MarshalIndent(out.Result, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				fmt.Fprintln(w, string(data))
			default:
				fmt.Fprint(w, formatter.FormatResult(out.Result))
			}
			return nil
		},
	}

	addContextFlag(cmd.Flags(), &contextPath)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the wire JSON result")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the unparsed model reply")
	cmd.MarkFlagsMutuallyExclusive("json", "raw")
	return cmd
}

func readMessage(app *App, cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if app.interactive() {
		return "", errNoMessage
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "", errNoMessage
	}
	return msg, nil
}
