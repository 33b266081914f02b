package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"disabled": zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) got=%v ok=%v want=%v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("unknown level accepted")
	}
	if _, ok := ParseLevel(""); ok {
		t.Fatalf("blank level should keep the default")
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	cfg := Resolve(ProfileTest, Overrides{})
	if cfg.Level != zerolog.DebugLevel || cfg.Timestamp {
		t.Fatalf("test profile got=%+v", cfg)
	}
	cfg = Resolve(ProfileRuntime, Overrides{})
	if cfg.Level != zerolog.InfoLevel || !cfg.Timestamp {
		t.Fatalf("runtime profile got=%+v", cfg)
	}

	off, on := false, true
	cfg = Resolve(ProfileRuntime, Overrides{Level: "error", Timestamp: &off, NoColor: &on})
	if cfg.Level != zerolog.ErrorLevel || cfg.Timestamp || !cfg.NoColor {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
