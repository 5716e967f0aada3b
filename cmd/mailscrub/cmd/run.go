package cmd

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zostay/mailscrub/filter"
	"github.com/zostay/mailscrub/mailbox"
	"github.com/zostay/mailscrub/sink"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drain the configured mailbox, scrubbing each message into the output directory",
	Args:  cobra.NoArgs,
	RunE:  Run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// Run fetches every message from the configured POP3 account, scrubs it,
// and delivers it to the output directory. A message is deleted from the
// server only once its scrubbed copy is in place; any failure stops the
// drain and leaves the remaining messages on the server for the next run.
func Run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	text, selectors, markup, err := loadRules(cfg.Rules)
	if err != nil {
		return err
	}
	engine := filter.New(text, selectors, markup, filter.WithLogger(logger))

	out, err := sink.NewDir(cfg.Output.Dir, sink.WithLogger(logger))
	if err != nil {
		return err
	}

	source := mailbox.NewPOP3Source(
		mailbox.WithLogger(logger),
		mailbox.WithKeepMessages(cfg.Account.KeepMessages),
	)

	handler := mailbox.HandlerFunc(func(ctx context.Context, msg *mailbox.Message) error {
		var buf bytes.Buffer
		if err := engine.Scrub(ctx, msg.RemoteID, bytes.NewReader(msg.Raw), &buf); err != nil {
			return err
		}
		if err := out.Deliver(ctx, msg.RemoteID, &buf); err != nil {
			return err
		}
		logger.Info("message scrubbed",
			slog.String("message", msg.RemoteID),
			slog.String("subject", msg.Envelope.Subject))
		return nil
	})

	handled, err := source.Fetch(cmd.Context(), cfg.Account.MailboxAccount(), handler)
	if err != nil {
		return err
	}

	logger.Info("mailbox drained", slog.Int("messages", handled))
	return nil
}
