package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/danmuck/tagcard/internal/observability"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const appName = "tagcard"

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Overrides carries operator settings from the [log] config table.
// Nil pointers and an empty Level keep the profile default.
type Overrides struct {
	Level     string
	Timestamp *bool
	NoColor   *bool
}

// Config is the resolved logger setup.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

var configureOnce sync.Once

func ConfigureTests() {
	Configure(ProfileTest, Overrides{})
}

// Configure installs the global logger once per process.
func Configure(profile Profile, o Overrides) {
	configureOnce.Do(func() {
		cfg := Resolve(profile, o)
		zerolog.SetGlobalLevel(cfg.Level)
		observability.InitLogger(appName, observability.LoggerOptions{
			Out:       os.Stderr,
			Timestamp: cfg.Timestamp,
			NoColor:   cfg.NoColor,
		})
	})
}

// Resolve applies overrides on top of the profile defaults.
func Resolve(profile Profile, o Overrides) Config {
	cfg := defaultConfig(profile)
	if lvl, ok := ParseLevel(o.Level); ok {
		cfg.Level = lvl
	}
	if o.Timestamp != nil {
		cfg.Timestamp = *o.Timestamp
	}
	if o.NoColor != nil {
		cfg.NoColor = *o.NoColor
	}
	return cfg
}

func defaultConfig(profile Profile) Config {
	cfg := Config{
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
