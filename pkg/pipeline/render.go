package pipeline

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/hypertile/pkg/errors"
	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/observability"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/render/disk"
	"github.com/matzehuels/hypertile/pkg/render/nodelink"
	"github.com/matzehuels/hypertile/pkg/render/sink"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// Render generates output artifacts in the requested formats.
// JSON and DOT are the same for both visualization types.
func Render(ctx context.Context, p geom.Profile, res *tiling.Result, tiles []tiling.Tile, opts Options) (map[render.Format][]byte, error) {
	names := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		names[i] = string(f)
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, names)
	start := time.Now()

	artifacts, err := renderAll(ctx, p, res, tiles, opts)

	hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	return artifacts, err
}

func renderAll(ctx context.Context, p geom.Profile, res *tiling.Result, tiles []tiling.Tile, opts Options) (map[render.Format][]byte, error) {
	artifacts := make(map[render.Format][]byte)

	// SVG is rendered once and converted for PDF and PNG.
	var svg []byte
	svgFor := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		if opts.IsNodelink() {
			svg, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(res, nodelinkOptions(opts)))
		} else {
			svg, err = disk.RenderSVG(ctx, p, tiles, diskOptions(opts)...)
		}
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatSVG:
			data, err = svgFor()
		case render.FormatPDF:
			if data, err = svgFor(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case render.FormatPNG:
			if data, err = svgFor(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case render.FormatJSON:
			data, err = sink.RenderJSON(p, tiles,
				sink.WithJSONProjection(opts.Projection),
				sink.WithJSONDepth(res.Depth),
				sink.WithJSONEdges(res.Edges))
		case render.FormatDOT:
			data = []byte(nodelink.ToDOT(res, nodelinkOptions(opts)))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, wrapRender(format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// diskOptions maps render options onto the disk canvas.
func diskOptions(opts Options) []disk.Option {
	out := []disk.Option{
		disk.WithProjection(opts.Projection),
		disk.WithSize(opts.Size),
	}
	if opts.Labels {
		out = append(out, disk.WithLabels())
	}
	for _, kind := range slices.Sorted(maps.Keys(opts.KindColors)) {
		out = append(out, disk.WithKindColor(kind, opts.KindColors[kind]))
	}
	return out
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, TreeOnly: opts.TreeOnly}
}
