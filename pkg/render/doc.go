// Package render turns placed tiles into pictures and documents.
//
// # Overview
//
// Rendering starts from the placement requests produced by
// [tiling.Place]. Each renderer is either a [tiling.Sink] that draws tiles as
// they arrive or a function over the collected tiles:
//
//   - Disk pictures of the tiling (in [disk] subpackage)
//   - Tile adjacency graphs (in [nodelink] subpackage)
//   - JSON documents of tiles and their motions (in [sink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := disk.RenderSVG(profile, tiles)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [tiling.Place]: github.com/matzehuels/hypertile/pkg/tiling.Place
// [tiling.Sink]: github.com/matzehuels/hypertile/pkg/tiling.Sink
// [disk]: github.com/matzehuels/hypertile/pkg/render/disk
// [nodelink]: github.com/matzehuels/hypertile/pkg/render/nodelink
// [sink]: github.com/matzehuels/hypertile/pkg/render/sink
package render
