package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/psantana5/ct/cmd/ct/cmd"
	"github.com/psantana5/ct/internal/wrapper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *wrapper.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode > 0 {
			os.Exit(exitErr.ExitCode)
		}
		os.Exit(1)
	}
}
