package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/deamdify/internal/app"
)

const (
	exitOK            = 0
	exitRuntimeError  = 1
	exitUsageError    = 2
	exitWrappersFound = 3
)

type Runner interface {
	Execute(ctx context.Context, req app.Request) (string, error)
}

type CLI struct {
	Runner Runner
	Out    io.Writer
	Err    io.Writer
}

func New(runner Runner, out io.Writer, errOut io.Writer) *CLI {
	return &CLI{
		Runner: runner,
		Out:    out,
		Err:    errOut,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) int {
	req, err := ParseArgs(args)
	if err != nil {
		if errors.Is(err, ErrHelpRequested) {
			fmt.Fprint(c.Out, Usage())
			return exitOK
		}
		fmt.Fprintf(c.Err, "error: %v\n\n", err)
		fmt.Fprint(c.Err, Usage())
		return exitUsageError
	}

	output, runErr := c.Runner.Execute(ctx, req)
	if output != "" {
		fmt.Fprint(c.Out, output)
		// Stream output is the converted module and must stay byte-exact.
		if req.Mode != app.ModeStream && !strings.HasSuffix(output, "\n") {
			fmt.Fprintln(c.Out)
		}
	}

	if runErr != nil {
		fmt.Fprintf(c.Err, "error: %v\n", runErr)
		if errors.Is(runErr, app.ErrWrappersFound) {
			return exitWrappersFound
		}
		return exitRuntimeError
	}

	return exitOK
}
