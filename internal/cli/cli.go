package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/config"
	"github.com/matzehuels/cookgraph/internal/scenario"
	"github.com/matzehuels/cookgraph/pkg/buildinfo"
	"github.com/matzehuels/cookgraph/pkg/observability"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "cookgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		cfg:    config.Config{}.WithDefaults(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which defaults to stdout.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cookgraph evaluates node graphs with undoable edits",
		Long:         `Cookgraph builds node networks from scenario files, cooks them lazily on a single-threaded loop, and records every edit in an undo history. Run scenarios in batch, step through them interactively, render them with Graphviz, or serve them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "engine config file (TOML)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.kindsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config and applies its log level. --verbose wins.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	return nil
}

// =============================================================================
// Session Factory
// =============================================================================

// openScenario loads the scenario at path and builds it into a new session.
// A non-nil registry receives the session's history and cook metrics.
func (c *CLI) openScenario(ctx context.Context, path string, registry prometheus.Registerer) (*session.Session, *scenario.Scenario, error) {
	logger := loggerFromContext(ctx)

	sc, err := scenario.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load scenario %s: %w", path, err)
	}

	opts := []session.Option{session.WithContext(ctx), session.WithLogger(logger)}
	if registry != nil {
		hooks := observability.NewPrometheusHooks(registry)
		opts = append(opts, session.WithHooks(hooks, hooks))
	}
	s := session.New(c.cfg.Session(), opts...)

	prog := newProgress(logger)
	if err := scenario.Build(s, sc); err != nil {
		return nil, nil, fmt.Errorf("build scenario %s: %w", path, err)
	}
	prog.done("built scenario", "nodes", len(sc.Nodes), "links", len(sc.Links))
	return s, sc, nil
}
