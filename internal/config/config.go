// Package config loads mailscrub settings from a YAML file with
// MAILSCRUB_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zostay/mailscrub/mailbox"
)

// Config is the full mailscrub configuration. Values are layered: defaults
// first, then the YAML file, then MAILSCRUB_* environment variables.
type Config struct {
	Account AccountConfig `yaml:"account"`
	Rules   RulesConfig   `yaml:"rules"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// AccountConfig names the POP3 mailbox to drain.
type AccountConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`

	// KeepMessages leaves handled messages on the server.
	KeepMessages bool `yaml:"keep_messages"`
}

// MailboxAccount converts the account section into the form
// mailbox.POP3Source.Fetch takes.
func (a AccountConfig) MailboxAccount() mailbox.Account {
	return mailbox.Account{
		Host:     a.Host,
		Port:     a.Port,
		Username: a.Username,
		Password: a.Password,
		TLS:      a.TLS,
	}
}

// RulesConfig points at the rule list files. Missing files yield empty rule
// sets rather than errors.
type RulesConfig struct {
	TextPatterns    string `yaml:"text_patterns"`
	MarkupPatterns  string `yaml:"markup_patterns"`
	MarkupSelectors string `yaml:"markup_selectors"`
}

// OutputConfig names where scrubbed messages are delivered.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig shapes the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level name onto a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Default returns the configuration used when neither file nor environment
// says otherwise.
func Default() Config {
	return Config{
		Account: AccountConfig{
			TLS: true,
		},
		Output: OutputConfig{
			Dir: "scrubbed",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a configuration from defaults and MAILSCRUB_* environment
// variables alone.
func Load() (Config, error) {
	c := Default()
	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFromFile builds a configuration from defaults, the named YAML file,
// and MAILSCRUB_* environment variables, in that order.
func LoadFromFile(path string) (Config, error) {
	c := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	envString("MAILSCRUB_HOST", &c.Account.Host)
	envString("MAILSCRUB_USERNAME", &c.Account.Username)
	envString("MAILSCRUB_PASSWORD", &c.Account.Password)
	envString("MAILSCRUB_TEXT_PATTERNS", &c.Rules.TextPatterns)
	envString("MAILSCRUB_MARKUP_PATTERNS", &c.Rules.MarkupPatterns)
	envString("MAILSCRUB_MARKUP_SELECTORS", &c.Rules.MarkupSelectors)
	envString("MAILSCRUB_OUTPUT_DIR", &c.Output.Dir)
	envString("MAILSCRUB_LOG_LEVEL", &c.Logging.Level)
	envString("MAILSCRUB_LOG_FORMAT", &c.Logging.Format)

	if err := envInt("MAILSCRUB_PORT", &c.Account.Port); err != nil {
		return err
	}
	if err := envBool("MAILSCRUB_TLS", &c.Account.TLS); err != nil {
		return err
	}
	if err := envBool("MAILSCRUB_KEEP_MESSAGES", &c.Account.KeepMessages); err != nil {
		return err
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
