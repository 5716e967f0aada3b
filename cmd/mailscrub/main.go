package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zostay/mailscrub/cmd/mailscrub/cmd"

	// decode header charsets beyond us-ascii and utf-8
	_ "github.com/zostay/mailscrub/message/header/encoding"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cmd.Execute(ctx)
	cobra.CheckErr(err)
}
