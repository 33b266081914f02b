package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/tagcard/internal/codec"
	"github.com/danmuck/tagcard/internal/profile"
)

// Config defines manager behavior. Zero timeouts wait until the caller's
// context ends.
type Config struct {
	PlaceholderText string
	MediaType       string
	WriteTimeout    time.Duration
	ScanTimeout     time.Duration
}

// DefaultConfig returns the stock placeholder and media type with no timeouts.
func DefaultConfig() Config {
	return Config{
		PlaceholderText: profile.DefaultPlaceholder,
		MediaType:       codec.MediaTypeJSON,
	}
}

// WithDefaults fills blank text settings from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.PlaceholderText) == "" {
		c.PlaceholderText = def.PlaceholderText
	}
	if strings.TrimSpace(c.MediaType) == "" {
		c.MediaType = def.MediaType
	}
	return c
}

func (c Config) Validate() error {
	if c.WriteTimeout < 0 {
		return fmt.Errorf("%w: write_timeout must be >= 0", ErrInvalidConfig)
	}
	if c.ScanTimeout < 0 {
		return fmt.Errorf("%w: scan_timeout must be >= 0", ErrInvalidConfig)
	}
	if mt := strings.TrimSpace(c.MediaType); mt != "" && !strings.Contains(mt, "/") {
		return fmt.Errorf("%w: mime_type %q is not a media type", ErrInvalidConfig, mt)
	}
	return nil
}

func (c Config) codec() codec.Codec {
	return codec.New(c.MediaType, c.PlaceholderText)
}
