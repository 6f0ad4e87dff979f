package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/reduce"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the ring to node labels and the move to edge labels.
	Detailed bool

	// TreeOnly keeps only the edge each word was first discovered by.
	TreeOnly bool
}

// ToDOT converts an enumeration result to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(res *tiling.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	kinds := make(map[string]string, len(res.Special))
	for _, st := range res.Special {
		kinds[st.Word] = st.Kind
	}

	for _, w := range res.Words {
		attrs := fmtAttrs(w, res, kinds, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(w), strings.Join(attrs, ", "))
	}
	for _, st := range res.Special {
		if !slices.Contains(res.Words, st.Word) {
			attrs := fmtAttrs(st.Word, res, kinds, opts.Detailed)
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(st.Word), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		if opts.TreeOnly && res.Parent[e.To] != e.From {
			continue
		}
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(e.From), nodeID(e.To), e.Move)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(e.From), nodeID(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID gives the origin a name Graphviz accepts and readers recognise.
func nodeID(word string) string {
	return reduce.Display(word)
}

func fmtLabel(word string, ring int, kind string, detailed bool) string {
	label := reduce.Display(word)
	if kind != "" {
		label += "\n" + kind
	}
	if detailed {
		label += fmt.Sprintf("\nring: %d", ring)
	}
	return label
}

func fmtAttrs(word string, res *tiling.Result, kinds map[string]string, detailed bool) []string {
	kind := kinds[word]
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(word, reduce.Depth(word), kind, detailed))}
	switch {
	case kind != "":
		attrs = append(attrs, "fillcolor=\"#f2cc8f\"", "penwidth=2")
	case !slices.Contains(res.Placed, word):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a pixel
// one anchored at the origin.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
