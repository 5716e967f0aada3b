package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/mailscrub/internal/config"
	"github.com/zostay/mailscrub/rules"
)

var (
	rootCmd = &cobra.Command{
		Use:          "mailscrub",
		Short:        "Scrub boilerplate text and tracking images out of mail messages",
		SilenceUsage: true,
	}

	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "mailscrub configuration file")
}

// Execute runs the mailscrub command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func buildLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Logging.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q is not text or json", cfg.Logging.Format)
	}
}

// loadRules compiles the three rule lists the config names. An unnamed or
// missing file yields an empty list.
func loadRules(cfg config.RulesConfig) (text rules.Patterns, selectors rules.Selectors, markup rules.Patterns, err error) {
	textList, err := rules.LoadList(cfg.TextPatterns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading text patterns: %w", err)
	}
	text, err = rules.CompilePatterns(textList)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compiling text patterns: %w", err)
	}

	selectorList, err := rules.LoadList(cfg.MarkupSelectors)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading markup selectors: %w", err)
	}
	selectors, err = rules.CompileSelectors(selectorList)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compiling markup selectors: %w", err)
	}

	markupList, err := rules.LoadList(cfg.MarkupPatterns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading markup patterns: %w", err)
	}
	markup, err = rules.CompilePatterns(markupList)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compiling markup patterns: %w", err)
	}

	return text, selectors, markup, nil
}
