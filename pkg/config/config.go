package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erikh/uptime/pkg/uptime"
	"github.com/go-jose/go-jose/v3"
	"github.com/sirupsen/logrus"
)

var (
	ErrDump    = errors.New("while dumping configuration to disk")
	ErrLoad    = errors.New("while loading configuration from disk")
	ErrInvalid = errors.New("invalid configuration")
)

const (
	DefaultPath          = "/etc/uptime/config.yaml"
	DefaultListen        = ":7123"
	DefaultWatchInterval = 10 * time.Second
)

type Config struct {
	// Strategies in the order they are tried. Empty means the platform default.
	Strategies []string         `json:"strategies,omitempty"`
	ProcRoot   string           `json:"proc_root,omitempty"`
	UtmpPath   string           `json:"utmp_path,omitempty"`
	LogLevel   string           `json:"log_level"`
	Watch      WatchConfig      `json:"watch"`
	Listen     string           `json:"listen"`
	AuthKey    *jose.JSONWebKey `json:"auth_key,omitempty"`
}

type WatchConfig struct {
	Interval Duration `json:"interval"`
}

func Default() *Config {
	return &Config{
		LogLevel: logrus.InfoLevel.String(),
		Watch:    WatchConfig{Interval: Duration(DefaultWatchInterval)},
		Listen:   DefaultListen,
	}
}

func (c *Config) Validate() error {
	for _, name := range c.Strategies {
		if !uptime.Known(name) {
			return fmt.Errorf("%w: %w: %q", ErrInvalid, uptime.ErrUnknownStrategy, name)
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.Watch.Interval <= 0 {
		return fmt.Errorf("%w: watch interval must be positive, was %v", ErrInvalid, time.Duration(c.Watch.Interval))
	}

	return nil
}

// Chain builds the uptime strategy chain this configuration describes.
func (c *Config) Chain(log logrus.FieldLogger) (*uptime.Chain, error) {
	opts := uptime.Options{
		ProcRoot: c.ProcRoot,
		UtmpPath: c.UtmpPath,
		Log:      log,
	}

	if len(c.Strategies) == 0 {
		return uptime.Default(opts), nil
	}

	return uptime.Resolve(c.Strategies, opts)
}

// Duration is a time.Duration that reads and writes as "10s" in YAML and JSON.
// Plain numbers are taken as nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(byt []byte) error {
	var s string
	if err := json.Unmarshal(byt, &s); err != nil {
		var n int64
		if err := json.Unmarshal(byt, &n); err != nil {
			return fmt.Errorf("duration must be a string or integer, was %s", string(byt))
		}

		*d = Duration(n)
		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}
