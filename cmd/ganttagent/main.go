package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/cli"
	"github.com/alexanderramin/ganttagent/internal/config"
	"github.com/alexanderramin/ganttagent/internal/history"
	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/alexanderramin/ganttagent/internal/prompt"
	"github.com/mattn/go-isatty"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	assembler, err := prompt.Load(cfg.Prompt.TemplatePath)
	if err != nil {
		return fmt.Errorf("loading prompt template: %w", err)
	}

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	client := llm.NewOpenAIClient(cfg.LLM, observer)

	app := &cli.App{
		Version:   version,
		Config:    cfg,
		Assembler: assembler,
		Logger:    logger,
	}
	opts := []agent.Option{
		agent.WithLocation(loc),
		agent.WithObserver(agent.NewLogTranslationObserver(logger)),
	}

	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return err
		}
		// Opened on first record or read, so date/schema/template/prompt
		// never touch the file.
		store := history.NewLazyStore(path)
		defer store.Close()

		opts = append(opts, agent.WithRecorder(store))
		app.History = store
	}

	app.Translator = agent.NewService(client, assembler, opts...)

	// Detect a piped stdin so ask can read its message from it.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
