// Package render draws node networks as node-link diagrams.
//
// # Overview
//
// [ToDOT] converts a [network.Network] to Graphviz DOT source. Node
// styling reflects engine state:
//
//   - dirty nodes are filled light yellow
//   - locked nodes have a dashed outline
//   - the visible node has a thick blue outline
//
// Links are drawn from output to input and labelled with their port names
// when the ports are not the node's only port.
//
//	dot := render.ToDOT(net, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// [Render] dispatches on format and memoizes results in a [cache.Cache]
// keyed by the DOT source, so an unchanged network is never re-rendered.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package render
