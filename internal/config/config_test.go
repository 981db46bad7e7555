package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cookgraph/pkg/command"
)

func TestWithDefaults(t *testing.T) {
	off := false
	tests := []struct {
		name    string
		cfg     Config
		limit   int
		listen  string
		metrics bool
	}{
		{"zero", Config{}, command.DefaultLimit, DefaultListen, true},
		{"explicit", Config{HistoryLimit: 5, Listen: ":1", Metrics: &off}, 5, ":1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.WithDefaults()
			if got.HistoryLimit != tt.limit {
				t.Errorf("HistoryLimit = %d, want %d", got.HistoryLimit, tt.limit)
			}
			if got.Listen != tt.listen {
				t.Errorf("Listen = %q, want %q", got.Listen, tt.listen)
			}
			if got.MetricsEnabled() != tt.metrics {
				t.Errorf("MetricsEnabled() = %v, want %v", got.MetricsEnabled(), tt.metrics)
			}
			if got.LogLevel != DefaultLogLevel {
				t.Errorf("LogLevel = %q, want %q", got.LogLevel, DefaultLogLevel)
			}
		})
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
history_limit = 3
log_level = "DEBUG"
metrics = false
`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HistoryLimit != 3 || cfg.MetricsEnabled() || cfg.Listen != DefaultListen {
		t.Errorf("Parse() = %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != log.DebugLevel {
		t.Errorf("Level() = %v, want debug", lvl)
	}
	if got := cfg.Session().HistoryLimit; got != 3 {
		t.Errorf("Session().HistoryLimit = %d, want 3", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "history_limit = "},
		{"unknown key", "colour = 1"},
		{"negative limit", "history_limit = -1"},
		{"bad level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg.HistoryLimit != command.DefaultLimit {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "cookgraph.toml")
	if err := os.WriteFile(path, []byte(`listen = ":9999"`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil || cfg.Listen != ":9999" {
		t.Errorf("Load() = %+v, %v", cfg, err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}
