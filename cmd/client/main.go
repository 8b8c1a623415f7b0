package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
	"github.com/dmitrijs2005/dogwalk/internal/client/cli"
	"github.com/dmitrijs2005/dogwalk/internal/common"
)

const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitAuth        = 3
	ExitUnreachable = 4
	ExitInterrupt   = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(cli.DefaultEnv()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupt
	case errors.Is(err, common.ErrorNotLoggedIn),
		errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, api.ErrTokenExpired):
		return ExitAuth
	case errors.Is(err, api.ErrNoResponse):
		return ExitUnreachable
	default:
		return ExitGeneral
	}
}
