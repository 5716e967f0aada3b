package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/mailscrub/filter"
	"github.com/zostay/mailscrub/sink"
)

var (
	scrubCmd = &cobra.Command{
		Use:   "scrub [file...]",
		Short: "Scrub local message files, or standard input when no files are named",
		RunE:  Scrub,
	}

	textRulesPath     string
	markupRulesPath   string
	selectorRulesPath string
	scrubOutputDir    string
)

func init() {
	scrubCmd.Flags().StringVar(&textRulesPath, "text-rules", "", "file of text patterns, one per line")
	scrubCmd.Flags().StringVar(&markupRulesPath, "html-rules", "", "file of markup patterns, one per line")
	scrubCmd.Flags().StringVar(&selectorRulesPath, "selector-rules", "", "file of CSS selectors, one per line")
	scrubCmd.Flags().StringVarP(&scrubOutputDir, "output", "o", "", "directory to deliver scrubbed messages into (default stdout)")

	rootCmd.AddCommand(scrubCmd)
}

// Scrub filters the named message files. Rule flags override the
// corresponding config entries, so the command works standalone with no
// config file at all.
func Scrub(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	ruleCfg := cfg.Rules
	if textRulesPath != "" {
		ruleCfg.TextPatterns = textRulesPath
	}
	if markupRulesPath != "" {
		ruleCfg.MarkupPatterns = markupRulesPath
	}
	if selectorRulesPath != "" {
		ruleCfg.MarkupSelectors = selectorRulesPath
	}

	text, selectors, markup, err := loadRules(ruleCfg)
	if err != nil {
		return err
	}
	engine := filter.New(text, selectors, markup, filter.WithLogger(logger))

	ctx := cmd.Context()

	if len(args) == 0 {
		return engine.Scrub(ctx, "stdin", cmd.InOrStdin(), cmd.OutOrStdout())
	}

	var out *sink.Dir
	if scrubOutputDir != "" {
		out, err = sink.NewDir(scrubOutputDir, sink.WithLogger(logger))
		if err != nil {
			return err
		}
	}

	for _, path := range args {
		if err := scrubFile(ctx, engine, out, cmd.OutOrStdout(), path); err != nil {
			return err
		}
	}
	return nil
}

func scrubFile(ctx context.Context, engine *filter.Engine, out *sink.Dir, stdout io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if out == nil {
		return engine.Scrub(ctx, id, f, stdout)
	}

	var buf bytes.Buffer
	if err := engine.Scrub(ctx, id, f, &buf); err != nil {
		return err
	}
	return out.Deliver(ctx, id, &buf)
}
