package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/scenario"
	"github.com/matzehuels/cookgraph/pkg/cache"
	"github.com/matzehuels/cookgraph/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = render.FormatSVG
	formatPNG = render.FormatPNG
	formatPDF = render.FormatPDF

	defaultPNGScale = 2.0
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPNG: true, formatPDF: true}

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output   string  // output file; stdout when empty
	format   string  // dot, svg, png or pdf
	detailed bool    // show settings and output values
	play     bool    // play the scenario's steps before rendering
	scale    float64 // PNG scale factor
	noCache  bool    // render even when a cached rendering exists
}

// dotCommand creates the dot command for rendering a network.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{scale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "dot [scenario.toml]",
		Short: "Render a scenario's network as DOT, SVG, PNG or PDF",
		Long: `Render a scenario's network.

Nodes are labeled with their id and kind. Dirty nodes are shaded, locked
nodes are dashed and the visible node is outlined. With --detailed each
node also lists its settings and current output values.

The format defaults to the extension of --output, or DOT on stdout. PNG
and PDF need rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return c.runDOT(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show settings and output values")
	cmd.Flags().BoolVar(&opts.play, "play", false, "play the scenario's steps before rendering")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rendering cache")

	return cmd
}

// resolveFormat picks the output format from the flag or the output path.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" || format == "gv" {
			format = formatDOT
		}
	}
	if !validFormats[format] {
		return "", fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'png', or 'pdf')", format)
	}
	if output == "" && (format == formatPNG || format == formatPDF) {
		return "", fmt.Errorf("%s output needs --output", format)
	}
	return format, nil
}

// runDOT builds the scenario and writes the rendering.
func (c *CLI) runDOT(ctx context.Context, path string, opts dotOpts) error {
	s, sc, err := c.openScenario(ctx, path, nil)
	if err != nil {
		return err
	}
	if opts.play {
		if err := scenario.Play(ctx, s, sc, nil); err != nil {
			return err
		}
	}

	dot := render.ToDOT(s.Network(), render.Options{Detailed: opts.detailed})
	data := []byte(dot)
	if opts.format != formatDOT {
		spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", opts.format))
		spinner.Start()
		data, err = render.Render(ctx, newCache(loggerFromContext(ctx), opts.noCache), opts.format, dot, opts.scale)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render %s: %w", opts.format, err)
		}
		spinner.Stop()
	}

	if opts.output == "" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(c.out, "Rendered %s", path)
	printFile(c.out, opts.output)
	return nil
}

// newCache opens the rendering cache, falling back to no caching when the
// cache directory is unusable.
func newCache(logger *log.Logger, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("rendering cache disabled", "dir", dir, "error", err)
		return cache.NewNullCache()
	}
	return c
}

// cacheDir returns the cache directory using XDG standard (~/.cache/cookgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
