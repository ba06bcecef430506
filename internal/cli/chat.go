package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/aretw0/parley/pkg/runner"
	"golang.org/x/term"
)

// ChatOptions configures an interactive conversation.
type ChatOptions struct {
	Options
	SessionID string
	JSON      bool // JSON-Lines I/O instead of a prompt
	Plain     bool // no banner or markdown rendering even on a terminal
}

// RunChat drives an engine from stdin/stdout until EOF, exit or a signal.
func RunChat(opts ChatOptions, stdin io.Reader, stdout io.Writer) error {
	logger := CreateLogger(opts.Options)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	backend, err := CreateBackend(sigCtx, opts.Options, logger)
	if err != nil {
		return err
	}
	engine, err := CreateEngine(opts.Options, backend, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	runnerOpts := []runner.Option{
		runner.WithEngine(engine),
		runner.WithLogger(logger),
		runner.WithSessionID(opts.SessionID),
		runner.WithMaxInputSize(opts.MaxInputSize),
	}

	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(stdin, stdout)))
	} else {
		var handlerOpts []runner.TextHandlerOption
		if width, ok := terminalWidth(stdout); ok && !opts.Plain {
			tui.PrintBanner(stdout, parley.Version)
			handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer(width-4)))
		}
		runnerOpts = append(runnerOpts,
			runner.WithInputHandler(runner.NewTextHandler(stdin, stdout, handlerOpts...)),
			runner.WithGreeting(greeting(opts.Options)),
		)
	}

	r := runner.NewRunner(runnerOpts...)
	if err := r.Run(sigCtx); err != nil {
		return err
	}

	if !opts.JSON && r.SessionID != "" {
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, ">>> Session '%s' (resume with --session %s)\n", r.SessionID, r.SessionID)
	}
	return nil
}

func greeting(opts Options) string {
	if opts.RulesPath == "" {
		return villagegp.Greeting + ` (type "exit" to leave)`
	}
	return `Type "exit" to leave.`
}

// terminalWidth reports the width of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80, true
	}
	return width, true
}
