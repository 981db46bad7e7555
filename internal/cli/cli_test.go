package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cookgraph/pkg/cache"
	"github.com/matzehuels/cookgraph/pkg/session"
)

const arithmetic = "../../examples/arithmetic.toml"

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (*CLI, string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return c, out.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	_, out, err := execute(t, "run", arithmetic)
	if err != nil {
		t.Fatalf("run error: %v\n%s", err, out)
	}
	for _, want := range []string{"set a.value = 6", "unlock sum", "label.out", "result: -412"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSON(t *testing.T) {
	_, out, err := execute(t, "run", "--json", arithmetic)
	if err != nil {
		t.Fatal(err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode snapshot: %v\n%s", err, out)
	}
	if snap.Visible != "label" || len(snap.Nodes) != 7 {
		t.Errorf("snapshot visible = %q, nodes = %d", snap.Visible, len(snap.Nodes))
	}
}

func TestRunFailedExpectation(t *testing.T) {
	path := writeFile(t, "bad.toml", `
visible = "a"

[[nodes]]
id = "a"
kind = "constant"

[[steps]]
action = "set"
node = "a"
key = "value"
value = 1
expect = { "a.out" = 2 }
`)
	if _, _, err := execute(t, "run", path); err == nil || !strings.Contains(err.Error(), "expect a.out") {
		t.Errorf("run error = %v, want failed expectation", err)
	}
}

func TestRunMissingScenario(t *testing.T) {
	if _, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("run with missing file succeeded")
	}
}

func TestDOTCommand(t *testing.T) {
	_, out, err := execute(t, "dot", arithmetic)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") || !strings.Contains(out, `"sum" -> "product"`) {
		t.Errorf("unexpected DOT:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "graph.dot")
	if _, _, err := execute(t, "dot", "--play", "--detailed", "-o", path, arithmetic); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "-412") {
		t.Errorf("detailed DOT after play lacks final value:\n%s", data)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", formatDOT, false},
		{"", "out.svg", formatSVG, false},
		{"", "out.gv", formatDOT, false},
		{"", "out.PNG", formatPNG, false},
		{"svg", "", formatSVG, false},
		{"pdf", "", "", true},
		{"jpeg", "out.jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v, wantErr %v", tt.format, tt.output, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func TestConfigFlag(t *testing.T) {
	cfg := writeFile(t, "cookgraph.toml", "history_limit = 3\nlog_level = \"debug\"\n")
	c, _, err := execute(t, "--config", cfg, "kinds")
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.HistoryLimit != 3 {
		t.Errorf("HistoryLimit = %d, want 3", c.cfg.HistoryLimit)
	}
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("log level = %v, want debug", c.Logger.GetLevel())
	}

	bad := writeFile(t, "bad.toml", "colour = \"red\"\n")
	if _, _, err := execute(t, "--config", bad, "kinds"); err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("bad config error = %v, want unknown key", err)
	}
}

func TestKindsCommand(t *testing.T) {
	_, out, err := execute(t, "kinds")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"constant", "multiply", "terms:number[]", "template=%v"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output missing %q:\n%s", want, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	_, out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cookgraph") {
		t.Error("bash completion does not mention cookgraph")
	}
}

func TestNewCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, appName); got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}

	logger := log.New(io.Discard)
	if _, ok := newCache(logger, true).(cache.NullCache); !ok {
		t.Error("newCache(noCache) should be a NullCache")
	}
	fc, ok := newCache(logger, false).(*cache.FileCache)
	if !ok {
		t.Fatal("newCache() should be a FileCache")
	}
	if fc.Dir() != got {
		t.Errorf("FileCache.Dir() = %q, want %q", fc.Dir(), got)
	}
}

func TestVersionFlag(t *testing.T) {
	_, out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "cookgraph dev (commit none, built unknown)"; !strings.Contains(out, want) {
		t.Errorf("--version output = %q, want containing %q", out, want)
	}
}
