package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/app/demo"
)

const hostHelp = "Enter or n: next step, stop: abort the demo, status: show progress, q: quit"

type hostCommand int

const (
	hostNext hostCommand = iota
	hostStop
	hostStatus
	hostQuit
	hostHelpCmd
	hostUnknown
)

// parseHostCommand maps a prompt line to a command. An empty line advances.
func parseHostCommand(input string) hostCommand {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "n", "next":
		return hostNext
	case "stop", "abort":
		return hostStop
	case "status", "s":
		return hostStatus
	case "q", "quit", "exit":
		return hostQuit
	case "?", "h", "help":
		return hostHelpCmd
	default:
		return hostUnknown
	}
}

// stepFirer delivers a step signal to the running demo.
type stepFirer interface {
	Fire() int
}

// consoleHost is the interactive prompt that drives a stepwise demo.
type consoleHost struct {
	out    io.Writer
	signal stepFirer
	runner *demo.Runner
}

func newConsoleHost(out io.Writer, signal stepFirer, runner *demo.Runner) *consoleHost {
	return &consoleHost{
		out:    out,
		signal: signal,
		runner: runner,
	}
}

// Loop prompts until the demo ends or the user quits.
func (h *consoleHost) Loop(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintln(h.out, hostHelp)

	for h.runner.IsRunning() {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := line.Prompt("demo> ")
		if err != nil {
			switch err {
			case io.EOF, liner.ErrPromptAborted:
				h.quit(ctx)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if !h.handle(ctx, input) {
			return nil
		}
	}
	return nil
}

// handle executes one prompt line and reports whether to keep prompting.
func (h *consoleHost) handle(ctx context.Context, input string) bool {
	switch parseHostCommand(input) {
	case hostNext:
		fired := h.signal.Fire()
		zlog.Debug().Msgf("host: step signal fired: listeners=%d", fired)
	case hostStop:
		_ = h.runner.Run(ctx, demo.StopIdentifier)
	case hostStatus:
		st := h.runner.Status()
		fmt.Fprintf(h.out, "%s: step %d, %d remaining\n", st.Identifier, st.Presented, st.Remaining)
	case hostQuit:
		h.quit(ctx)
		return false
	case hostHelpCmd:
		fmt.Fprintln(h.out, hostHelp)
	default:
		fmt.Fprintf(h.out, "unknown command %q (%s)\n", strings.TrimSpace(input), hostHelp)
	}
	return true
}

func (h *consoleHost) quit(ctx context.Context) {
	if h.runner.IsRunning() {
		_ = h.runner.Run(ctx, demo.StopIdentifier)
	}
}
