// Package nodelink renders the tile adjacency graph as a node-link diagram.
//
// # Overview
//
// Every enumerated canonical word becomes a node. An edge joins a word to
// the canonical word reached by appending one of the enumeration moves, so
// the diagram shows how the breadth-first walk discovered the tiling and
// where different paths arrived at the same tile.
//
// # Usage
//
// Convert an enumeration result to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: label nodes with their ring and edges with their move
//   - TreeOnly: keep only first-discovery edges, giving a spanning tree
//
// Excluded words are drawn dashed and special tiles are filled and labelled
// with their kind.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
