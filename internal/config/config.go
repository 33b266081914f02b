// Package config loads manager settings from TOML.
//
// Ownership boundary:
// - file shape and key names
// - defaults and per-key overrides
// - validation with the offending key named
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tagcard/internal/logging"
	"github.com/danmuck/tagcard/internal/observability"
	"github.com/danmuck/tagcard/internal/session"
	"github.com/danmuck/tagcard/internal/transceiver"
	pelletier "github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("config: invalid")

// File is the resolved configuration.
type File struct {
	Session session.Config
	Log     logging.Overrides
	Metrics bool
}

type fileConfig struct {
	PlaceholderText string       `toml:"placeholder_text"`
	MimeType        string       `toml:"mime_type"`
	WriteTimeout    string       `toml:"write_timeout"`
	ScanTimeout     string       `toml:"scan_timeout"`
	Log             logTable     `toml:"log"`
	Metrics         metricsTable `toml:"metrics"`
}

type logTable struct {
	Level     string `toml:"level,omitempty"`
	Timestamp *bool  `toml:"timestamp,omitempty"`
	NoColor   *bool  `toml:"no_color,omitempty"`
}

type metricsTable struct {
	Enabled bool `toml:"enabled"`
}

func Default() File {
	return File{Session: session.DefaultConfig()}
}

// Load reads path and applies every key it defines on top of Default.
func Load(path string) (File, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return File{}, fmt.Errorf("load config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("placeholder_text") {
		cfg.Session.PlaceholderText = raw.PlaceholderText
	}
	if meta.IsDefined("mime_type") {
		cfg.Session.MediaType = strings.TrimSpace(raw.MimeType)
	}
	if meta.IsDefined("write_timeout") {
		d, err := parseDuration("write_timeout", raw.WriteTimeout)
		if err != nil {
			return File{}, err
		}
		cfg.Session.WriteTimeout = d
	}
	if meta.IsDefined("scan_timeout") {
		d, err := parseDuration("scan_timeout", raw.ScanTimeout)
		if err != nil {
			return File{}, err
		}
		cfg.Session.ScanTimeout = d
	}

	if meta.IsDefined("log", "level") {
		level := strings.TrimSpace(raw.Log.Level)
		if _, ok := logging.ParseLevel(level); !ok {
			return File{}, fmt.Errorf("%w: log.level %q", ErrInvalid, raw.Log.Level)
		}
		cfg.Log.Level = level
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("metrics", "enabled") {
		cfg.Metrics = raw.Metrics.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

func (f File) Validate() error {
	if err := f.Session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Marshal renders f as TOML that Load reads back to the same File.
func Marshal(f File) ([]byte, error) {
	out := fileConfig{
		PlaceholderText: f.Session.PlaceholderText,
		MimeType:        f.Session.MediaType,
		WriteTimeout:    f.Session.WriteTimeout.String(),
		ScanTimeout:     f.Session.ScanTimeout.String(),
		Log: logTable{
			Level:     f.Log.Level,
			Timestamp: f.Log.Timestamp,
			NoColor:   f.Log.NoColor,
		},
		Metrics: metricsTable{Enabled: f.Metrics},
	}
	data, err := pelletier.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Apply installs the runtime logger with f's overrides and returns the
// manager options f implies.
func (f File) Apply() []session.Option {
	logging.Configure(logging.ProfileRuntime, f.Log)
	if !f.Metrics {
		return nil
	}
	observability.RegisterMetrics()
	return []session.Option{session.WithRecorder(observability.Prometheus{})}
}

// NewManager loads path, applies it, and builds a manager for dev.
func NewManager(path string, dev transceiver.Transceiver, opts ...session.Option) (*session.Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	all := append(cfg.Apply(), opts...)
	return session.NewManager(dev, cfg.Session, all...), nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", ErrInvalid, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must be >= 0", ErrInvalid, key)
	}
	return d, nil
}
