package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "INSIGHTS_CONFIG"

// Loader loads configuration from a YAML file and environment variables.
// Tests can override Lookup and ReadFile to inject deterministic inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load reads path (or the file named by INSIGHTS_CONFIG when path is
// empty) over the defaults, applies environment overrides and validates
// the result. A missing path yields defaults plus overrides.
func (l Loader) Load(path string) (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	cfg := Default()

	if path == "" {
		if p, ok := l.Lookup(EnvConfigPath); ok {
			path = strings.TrimSpace(p)
		}
	}
	if path != "" {
		raw, err := l.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "config: read %s", path)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "config: decode %s", path)
		}
	}

	if err := applyEnv(l.Lookup, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(lookup func(string) (string, bool), cfg *Config) error {
	overrideString(lookup, "INSIGHTS_SINK", &cfg.Transport.Sink)
	overrideString(lookup, "INSIGHTS_FORMAT", &cfg.Transport.Format)
	overrideString(lookup, "INSIGHTS_FILE", &cfg.Transport.File)

	if err := overrideBool(lookup, "INSIGHTS_INCLUDE_CATEGORY_NAME", &cfg.Logging.IncludeCategoryName); err != nil {
		return err
	}
	if err := overrideBool(lookup, "INSIGHTS_INCLUDE_SCOPES", &cfg.Logging.IncludeScopes); err != nil {
		return err
	}
	if err := overrideBool(lookup, "INSIGHTS_ASYNC", &cfg.Transport.Async); err != nil {
		return err
	}
	if err := overrideInt(lookup, "INSIGHTS_BUFFER_SIZE", &cfg.Transport.BufferSize); err != nil {
		return err
	}
	if err := overrideInt(lookup, "INSIGHTS_BATCH_SIZE", &cfg.Transport.BatchSize); err != nil {
		return err
	}
	return overrideDuration(lookup, "INSIGHTS_FLUSH_INTERVAL", &cfg.Transport.FlushInterval)
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return errors.Wrapf(err, "config: %s", key)
	}
	*target = b
	return nil
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return errors.Wrapf(err, "config: %s", key)
	}
	*target = n
	return nil
}

func overrideDuration(lookup func(string) (string, bool), key string, target *time.Duration) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return errors.Wrapf(err, "config: %s", key)
	}
	*target = d
	return nil
}
