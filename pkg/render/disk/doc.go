// Package disk draws placed tiles as a flat picture of curved space.
//
// Hyperbolic tilings are drawn inside the unit disk, in either the Poincaré
// model (conformal, tile edges become circular arcs) or the Klein model
// (tile edges stay straight). Euclidean tilings are drawn as they are and
// spherical tilings through the stereographic (Poincaré) view.
//
// A [Canvas] is a [tiling.Sink]: hand it to [tiling.Place] and call
// [Canvas.SVG] once placement is done.
//
//	c, err := disk.New(profile, disk.WithProjection(geom.Klein))
//	n, err := tiling.Place(ctx, profile, res, c)
//	svg := c.SVG()
//
// [tiling.Sink]: github.com/matzehuels/hypertile/pkg/tiling.Sink
// [tiling.Place]: github.com/matzehuels/hypertile/pkg/tiling.Place
package disk
