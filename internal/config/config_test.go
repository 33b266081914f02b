package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/tagcard/internal/testutil/testlog"
	"github.com/danmuck/tagcard/internal/transceiver/memtag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagcard.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefinedKeysOnly(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
placeholder_text = "Contact card"
write_timeout = "45s"

[log]
level = "debug"
no_color = true

[metrics]
enabled = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.PlaceholderText != "Contact card" {
		t.Fatalf("placeholder got=%q", cfg.Session.PlaceholderText)
	}
	if cfg.Session.WriteTimeout != 45*time.Second || cfg.Session.ScanTimeout != 0 {
		t.Fatalf("timeouts got=%v/%v", cfg.Session.WriteTimeout, cfg.Session.ScanTimeout)
	}
	if cfg.Session.MediaType != "application/json" {
		t.Fatalf("media type default lost: %q", cfg.Session.MediaType)
	}
	if cfg.Log.Level != "debug" || cfg.Log.NoColor == nil || !*cfg.Log.NoColor || cfg.Log.Timestamp != nil {
		t.Fatalf("log overrides got=%+v", cfg.Log)
	}
	if !cfg.Metrics {
		t.Fatalf("metrics should be enabled")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"duration":    `scan_timeout = "soon"`,
		"negative":    `write_timeout = "-1s"`,
		"level":       "[log]\nlevel = \"loud\"",
		"mime type":   `mime_type = "json"`,
		"unknown key": `colour = "blue"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected invalid config, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTemplateLoadsAsDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, Template()))
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if !reflect.DeepEqual(cfg.Session, Default().Session) {
		t.Fatalf("template session=%+v default=%+v", cfg.Session, Default().Session)
	}
	if cfg.Metrics {
		t.Fatalf("template enables metrics")
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "tagcard.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected exists error, got %v", err)
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	testlog.Start(t)
	stamp := false
	want := Default()
	want.Session.PlaceholderText = "Badge"
	want.Session.ScanTimeout = 2 * time.Minute
	want.Log.Level = "warn"
	want.Log.Timestamp = &stamp
	want.Metrics = true

	data, err := Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load marshaled config: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip got=%+v want=%+v", got, want)
	}
}

func TestNewManagerFromFile(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "scan_timeout = \"5s\"\n")
	m, err := NewManager(path, memtag.New())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.Busy() {
		t.Fatalf("new manager should be idle")
	}
	if _, err := NewManager(writeConfig(t, `write_timeout = "x"`), memtag.New()); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}
