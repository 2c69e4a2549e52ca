package cli

import (
	"fmt"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	kind := newChoice("result", "result", "request")

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the wire result or request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := agent.ResultSchema
			if kind.String() == "request" {
				gen = agent.RequestSchema
			}
			data, err := gen()
			if err != nil {
				return fmt.Errorf("generating schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().VarP(kind, "type", "t", "schema to print: result or request")
	return cmd
}
