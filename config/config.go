package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	// EnvPrefix is prepended to every key looked up in the environment,
	// e.g. TUMULT_GOSSIP_INTERVAL.
	EnvPrefix = "tumult"

	IDFormatCounter = "counter"
	IDFormatUUID    = "uuid"
)

// Config contains the settings shared by all node binaries. Each binary only
// registers the flags it uses; the others keep their defaults.
type Config struct {
	LogLevel       string        `mapstructure:"log"`
	LogFile        string        `mapstructure:"log-file"`
	MetricsAddr    string        `mapstructure:"metrics-addr"`
	GossipInterval time.Duration `mapstructure:"gossip-interval"`
	Redundancy     float64       `mapstructure:"redundancy"`
	IDFormat       string        `mapstructure:"id-format"`

	logger *logrus.Logger
}

// NewDefaultConfig creates a Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		GossipInterval: 250 * time.Millisecond,
		Redundancy:     0.1,
		IDFormat:       IDFormatCounter,
	}
}

// AddFlags registers the flags every binary understands.
func AddFlags(flags *pflag.FlagSet, c *Config) {
	flags.String("log", c.LogLevel, "debug, info, warn, error, fatal, panic")
	flags.String("log-file", c.LogFile, "Also write logs to this file, as JSON")
	flags.String("metrics-addr", c.MetricsAddr, "Serve prometheus metrics on this address (disabled when empty)")
}

// AddGossipFlags registers the broadcast node's flags.
func AddGossipFlags(flags *pflag.FlagSet, c *Config) {
	flags.Duration("gossip-interval", c.GossipInterval, "Time between anti-entropy rounds")
	flags.Float64("redundancy", c.Redundancy, "Cap on resent values per gossip, as a fraction of the new values sent")
}

// AddIDFlags registers the unique-id node's flags.
func AddIDFlags(flags *pflag.FlagSet, c *Config) {
	flags.String("id-format", c.IDFormat, "counter (<node>/<n>) or uuid")
}

// Load reads flags and TUMULT_* environment variables on top of the defaults
// and validates the result.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	conf := NewDefaultConfig()
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate rejects settings no node can run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.GossipInterval <= 0 {
		errs = append(errs, fmt.Errorf("gossip-interval must be positive, got %v", c.GossipInterval))
	}
	if c.Redundancy < 0 || c.Redundancy > 1 {
		errs = append(errs, fmt.Errorf("redundancy must be within [0, 1], got %v", c.Redundancy))
	}
	if c.IDFormat != IDFormatCounter && c.IDFormat != IDFormatUUID {
		errs = append(errs, fmt.Errorf("unknown id-format %q", c.IDFormat))
	}
	return errors.Join(errs...)
}

// Logger returns the process logger. It writes to stderr, since stdout
// carries the protocol.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = newLogger(os.Stderr, c.LogLevel, c.LogFile)
	}
	return logrus.NewEntry(c.logger)
}

func newLogger(out io.Writer, level, file string) *logrus.Logger {
	logger := logrus.New()
	logger.Out = out
	logger.Formatter = new(prefixed.TextFormatter)
	logger.Level = LogLevel(level)

	if file != "" {
		pathMap := lfshook.PathMap{}
		for _, l := range logrus.AllLevels {
			pathMap[l] = file
		}
		logger.Hooks.Add(lfshook.NewHook(pathMap, &logrus.JSONFormatter{}))
	}
	return logger
}

// LogLevel parses l, falling back to debug like the rest of the CLI tooling.
func LogLevel(l string) logrus.Level {
	level, err := logrus.ParseLevel(l)
	if err != nil {
		return logrus.DebugLevel
	}
	return level
}
