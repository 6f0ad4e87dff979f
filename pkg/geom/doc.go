// Package geom implements the gyrovector algebra used to place square tiles
// on a sphere, a plane or the hyperbolic plane.
//
// # Curvature
//
// A [Profile] is derived once from the number of squares meeting at each
// vertex. Four squares give the flat grid; three give a cube-like sphere; five
// or more give a hyperbolic tiling. The profile carries the curvature sign and
// the constants that size a tile in each model:
//
//	p, err := geom.NewProfile(5)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(p.Curvature, p.CellWidth, p.KleinValue)
//
// A Profile is an immutable value and safe to share between goroutines.
// Everything computed with one profile is meaningless under another.
//
// # Gyrovectors
//
// Positions are offsets inside the unit ball composed with Möbius addition
// ([Profile.MobiusAdd]). Composition does not commute and does not associate;
// the defect is a rotation, the gyration, which a [GyroVector] keeps next to
// its offset. [Profile.MobiusAddGyr] computes the sum and the gyration from
// the same intermediate values, which keeps long chains of moves stable.
//
//	gv := geom.Identity
//	gv = p.Translate(gv, p.HyperTranslate(0, p.CellWidth))
//	back := p.Compose(gv, gv.Neg()) // ≈ Identity
//
// # Symbolic coordinates
//
// [Profile.TileCoordToGyroVector] turns a move word over {u, d, l, r} into the
// motion that carries the origin tile onto the named tile. The reduce package
// canonicalizes such words without changing the motion they denote.
//
// # Models
//
// Tiles are drawn in Klein coordinates and composed in Poincaré coordinates.
// The conversions ([Profile.KleinToPoincare], [Profile.PoincareToKlein],
// [Profile.UnitToKlein], ...) are pairwise inverse.
package geom
