package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/ganttagent/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP translation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				return fmt.Errorf("serve: no configuration loaded")
			}
			cfg := *app.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			srv := server.New(app.Translator, server.Options{
				Version:      app.Version,
				LLM:          cfg.LLM,
				CORSOrigins:  cfg.Server.CORSOrigins,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				Logger:       app.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cfg.LLM.Configured() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no LLM API key set; /api/chat will report a configuration error")
			}
			return srv.ListenAndServe(ctx, cfg.Addr())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
