// Package tiling enumerates the tiles of a square tiling around the origin
// and turns them into placement requests.
//
// # Enumeration
//
// [Enumerate] walks the tiling breadth first. Starting from the origin word,
// each word with fewer than the configured depth of 'u' moves is extended by
// each of the moves "u", "ru", "lu" and "rru", reduced to canonical form, and
// queued if it is new:
//
//	res, err := tiling.Enumerate(ctx, reduce.Default(), tiling.WithDepth(3))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(res.Words))
//
// Duplicate detection compares words byte for byte, either by scanning the
// known words ([SeenLinear]) or with a hash set ([SeenSet]). The strategies
// produce identical results.
//
// # Placement
//
// [Place] converts every placed word with [geom.Profile.TileCoordToGyroVector]
// and hands the resulting [Tile] to a [Sink]. Renderers in the render
// packages implement Sink; [Collector] keeps tiles in memory.
package tiling
