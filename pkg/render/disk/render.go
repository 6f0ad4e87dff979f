package disk

import (
	"context"

	"github.com/matzehuels/hypertile/pkg/geom"
	"github.com/matzehuels/hypertile/pkg/render"
	"github.com/matzehuels/hypertile/pkg/tiling"
)

// RenderSVG draws tiles already placed with profile p.
func RenderSVG(ctx context.Context, p geom.Profile, tiles []tiling.Tile, opts ...Option) ([]byte, error) {
	c, err := New(p, opts...)
	if err != nil {
		return nil, err
	}
	for _, t := range tiles {
		if err := c.Place(ctx, t); err != nil {
			return nil, err
		}
	}
	return c.SVG(), nil
}

// RenderPDF renders tiles as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, p geom.Profile, tiles []tiling.Tile, opts ...Option) ([]byte, error) {
	svg, err := RenderSVG(ctx, p, tiles, opts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders tiles as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, p geom.Profile, tiles []tiling.Tile, scale float64, opts ...Option) ([]byte, error) {
	svg, err := RenderSVG(ctx, p, tiles, opts...)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
