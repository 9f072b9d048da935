package resocket

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedConfigFormat is returned for config files that are neither
// TOML nor YAML.
var ErrUnsupportedConfigFormat = errors.New("unsupported config format")

// Config is the file form of the client settings. Durations are Go duration
// strings such as "500ms". Empty fields keep the client defaults.
type Config struct {
	Host              string `toml:"host" yaml:"host"`
	Port              int    `toml:"port" yaml:"port"`
	Delimiter         string `toml:"delimiter" yaml:"delimiter"`
	AutoReconnect     *bool  `toml:"auto_reconnect" yaml:"auto_reconnect"`
	ReconnectAttempts int    `toml:"reconnect_attempts" yaml:"reconnect_attempts"`
	PollInterval      string `toml:"poll_interval" yaml:"poll_interval"`
	ConnectTimeout    string `toml:"connect_timeout" yaml:"connect_timeout"`
	WriteTimeout      string `toml:"write_timeout" yaml:"write_timeout"`
	ReadBufferSize    int    `toml:"read_buffer_size" yaml:"read_buffer_size"`
	MaxMessageSize    int    `toml:"max_message_size" yaml:"max_message_size"`

	Backoff BackoffFileConfig `toml:"backoff" yaml:"backoff"`
}

// BackoffFileConfig is the file form of BackoffConfig.
type BackoffFileConfig struct {
	InitialDelay string  `toml:"initial_delay" yaml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier" yaml:"multiplier"`
	MaxDelay     string  `toml:"max_delay" yaml:"max_delay"`
	Jitter       *bool   `toml:"jitter" yaml:"jitter"`
}

// DecodeConfigFile decodes the file at path into v, choosing the decoder from
// the file extension: .toml, or .yaml and .yml.
func DecodeConfigFile(path string, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, v); err != nil {
			return errors.Wrapf(err, "decode toml config %s", path)
		}
		return nil
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Wrapf(err, "decode yaml config %s", path)
		}
		return nil
	default:
		return errors.Wrap(ErrUnsupportedConfigFormat, path)
	}
}

// LoadConfig reads a Config from a TOML or YAML file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := DecodeConfigFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options translates the set fields of c into client options.
func (c Config) Options() ([]Option, error) {
	var opts []Option

	if c.Delimiter != "" {
		opts = append(opts, DelimiterOption(c.Delimiter))
	}
	if c.AutoReconnect != nil {
		opts = append(opts, AutoReconnectOption(*c.AutoReconnect))
	}
	if c.ReconnectAttempts > 0 {
		opts = append(opts, ReconnectAttemptsOption(c.ReconnectAttempts))
	}
	if c.ReadBufferSize > 0 {
		opts = append(opts, ReadBufferSizeOption(c.ReadBufferSize))
	}
	if c.MaxMessageSize > 0 {
		opts = append(opts, MessageMaxSize(c.MaxMessageSize))
	}

	durations := []struct {
		name  string
		raw   string
		apply func(time.Duration) Option
	}{
		{"poll_interval", c.PollInterval, PollIntervalOption},
		{"connect_timeout", c.ConnectTimeout, ConnectTimeoutOption},
		{"write_timeout", c.WriteTimeout, WriteTimeoutOption},
	}
	for _, d := range durations {
		v, ok, err := parseDuration(d.name, d.raw)
		if err != nil {
			return nil, err
		}
		if ok {
			opts = append(opts, d.apply(v))
		}
	}

	backoff, err := c.Backoff.merge(DefaultBackoffConfig())
	if err != nil {
		return nil, err
	}
	opts = append(opts, ReconnectBackoffOption(backoff))

	return opts, nil
}

func (b BackoffFileConfig) merge(cfg BackoffConfig) (BackoffConfig, error) {
	if v, ok, err := parseDuration("backoff.initial_delay", b.InitialDelay); err != nil {
		return BackoffConfig{}, err
	} else if ok {
		cfg.InitialDelay = v
	}
	if v, ok, err := parseDuration("backoff.max_delay", b.MaxDelay); err != nil {
		return BackoffConfig{}, err
	} else if ok {
		cfg.MaxDelay = v
	}
	if b.Multiplier > 0 {
		cfg.Multiplier = b.Multiplier
	}
	if b.Jitter != nil {
		cfg.Jitter = *b.Jitter
	}
	return cfg, nil
}

func parseDuration(name, raw string) (time.Duration, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse %s", name)
	}
	return d, true, nil
}
