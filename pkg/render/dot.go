package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cookgraph/pkg/network"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds settings and cached output values to node labels.
	// When false, labels show the node ID and kind.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT format.
func ToDOT(net *network.Network, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range net.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range net.Links() {
		from, to := l.From(), l.To()
		var attrs []string
		if len(from.Node().Outputs()) > 1 {
			attrs = append(attrs, fmt.Sprintf("taillabel=%q", from.Name()))
		}
		if len(to.Node().Inputs()) > 1 || to.Multi() {
			label := to.Name()
			if to.Multi() {
				label = fmt.Sprintf("%s[%d]", label, l.Slot())
			}
			attrs = append(attrs, fmt.Sprintf("headlabel=%q", label))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", from.Node().ID(), to.Node().ID())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", from.Node().ID(), to.Node().ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *network.Node, detailed bool) string {
	label := n.ID()
	if n.Kind() != "" {
		label += "\n(" + n.Kind() + ")"
	}
	if !detailed {
		return label
	}

	var parts []string
	settings := n.Settings()
	for _, k := range slices.Sorted(maps.Keys(settings)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, settings[k]))
	}
	for _, o := range n.Outputs() {
		if v := o.Value(); v != nil {
			parts = append(parts, fmt.Sprintf("%s = %v", o.Name(), v))
		}
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *network.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	style := "rounded,filled"
	if n.Locked() {
		style += ",dashed"
	}
	if style != "rounded,filled" {
		attrs = append(attrs, fmt.Sprintf("style=%q", style))
	}
	if n.Dirty() {
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	if n.Visible() {
		attrs = append(attrs, "color=royalblue", "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin regardless of the offsets Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
