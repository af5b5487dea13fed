// Package config loads insightslog settings from a YAML file and the
// environment, builds the configured sink, and watches the file so option
// changes reach running loggers without a restart.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/handler"
	"github.com/philipp01105/insightslog/options"
)

const (
	DefaultSink          = "console"
	DefaultFormat        = "text"
	DefaultBufferSize    = 1000
	DefaultBatchSize     = 100
	DefaultFlushInterval = 15 * time.Second
	DefaultBlockTimeout  = 100 * time.Millisecond
	DefaultDrainTimeout  = 5 * time.Second
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Logging   options.Options `yaml:"logging"`
	Transport Transport       `yaml:"transport"`
}

// Transport selects and tunes the sink records are handed to.
type Transport struct {
	// Sink is "console" or "file"
	Sink string `yaml:"sink"`
	// Format is "text", "json" or "zerolog"; empty means text
	Format string `yaml:"format"`
	// File is the output path of the file sink
	File       string        `yaml:"file"`
	MaxSize    int64         `yaml:"max_size"`
	MaxAge     time.Duration `yaml:"max_age"`
	MaxBackups int           `yaml:"max_backups"`

	Async         bool          `yaml:"async"`
	BufferSize    int           `yaml:"buffer_size"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BlockTimeout  time.Duration `yaml:"block_timeout"`
	DrainTimeout  time.Duration `yaml:"drain_timeout"`
	// Overflow maps a severity name to an overflow policy name, e.g.
	// {verbose: drop_oldest, error: block}
	Overflow map[string]string `yaml:"overflow"`
	// Tee lists further sinks that receive every record as well
	Tee []Transport `yaml:"tee"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Logging: options.Default(),
		Transport: Transport{
			Sink:          DefaultSink,
			Format:        DefaultFormat,
			BufferSize:    DefaultBufferSize,
			BatchSize:     DefaultBatchSize,
			FlushInterval: DefaultFlushInterval,
			BlockTimeout:  DefaultBlockTimeout,
			DrainTimeout:  DefaultDrainTimeout,
		},
	}
}

// Validate raises an error for settings no sink can run with.
func (c *Config) Validate() error {
	return c.Transport.validate("transport")
}

func (t *Transport) validate(path string) error {
	switch t.Sink {
	case "console":
	case "file":
		if t.File == "" {
			return errors.Newf("config: %s.file is required for the file sink", path)
		}
	default:
		return errors.Newf("config: %s: unknown sink %q", path, t.Sink)
	}
	switch t.Format {
	case "text", "json", "zerolog", "":
	default:
		return errors.Newf("config: %s: unknown format %q", path, t.Format)
	}
	if t.BufferSize < 0 || t.BatchSize < 0 || t.MaxSize < 0 || t.MaxBackups < 0 {
		return errors.Newf("config: %s: sizes must not be negative", path)
	}
	if t.MaxAge < 0 || t.FlushInterval < 0 || t.BlockTimeout < 0 || t.DrainTimeout < 0 {
		return errors.Newf("config: %s: durations must not be negative", path)
	}
	if _, err := t.OverflowPolicies(); err != nil {
		return err
	}
	for i := range t.Tee {
		if err := t.Tee[i].validate(fmt.Sprintf("%s.tee[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// OverflowPolicies converts Overflow into handler policies layered over
// handler.DefaultSeverityPolicy.
func (t Transport) OverflowPolicies() (map[core.Severity]handler.OverflowPolicy, error) {
	policies := handler.DefaultSeverityPolicy()
	for name, policy := range t.Overflow {
		sev, err := parseSeverity(name)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(policy) {
		case "drop_newest", "dropnewest", "drop_oldest", "dropoldest", "block":
		default:
			return nil, errors.Newf("config: unknown overflow policy %q for %s", policy, name)
		}
		policies[sev] = handler.ParseOverflowPolicy(normalizePolicy(policy))
	}
	return policies, nil
}

func normalizePolicy(p string) string {
	switch strings.ToLower(p) {
	case "drop_oldest", "dropoldest":
		return "DropOldest"
	case "block":
		return "Block"
	default:
		return "DropNewest"
	}
}

func parseSeverity(s string) (core.Severity, error) {
	for _, sev := range []core.Severity{core.Verbose, core.Information, core.Warning, core.Error, core.Critical} {
		if strings.EqualFold(s, sev.String()) {
			return sev, nil
		}
	}
	return 0, errors.Newf("config: unknown severity %q", s)
}
