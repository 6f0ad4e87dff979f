package geom

import "github.com/go-gl/mathgl/mgl64"

// headings lists the move directions clockwise starting at "right". Turning
// right by one step advances one position.
var headings = [4]byte{'r', 'd', 'l', 'u'}

// upHeading is the index of 'u' in headings.
const upHeading = 3

// TileCoordToGyroVector maps a symbolic coordinate to the motion taking the
// origin tile to the tile it names.
//
// 'r' and 'l' turn the walker a quarter right or left without moving. 'u'
// steps one cell forward along the current heading; the step is composed in
// the walker's local frame, so it follows the tile's own axes after any
// holonomy picked up on the way. 'd' is accepted and ignored. Symbols are
// case-insensitive; anything else is skipped.
//
// Words that reduce to the same canonical coordinate map to the same motion.
func (p Profile) TileCoordToGyroVector(word string) GyroVector {
	gv := Identity
	turns := 0
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'r', 'R':
			turns++
		case 'l', 'L':
			turns--
		case 'u', 'U':
			gv = p.Translate(gv, p.step(rotateHeading(upHeading, turns)))
		}
	}
	return gv
}

// step returns the one-cell offset along heading.
func (p Profile) step(heading byte) mgl64.Vec3 {
	switch heading {
	case 'r':
		return p.HyperTranslate(p.CellWidth, 0)
	case 'l':
		return p.HyperTranslate(-p.CellWidth, 0)
	case 'u':
		return p.HyperTranslate(0, p.CellWidth)
	default:
		return p.HyperTranslate(0, -p.CellWidth)
	}
}

// rotateHeading returns the heading reached from headings[from] after the
// given number of quarter turns to the right (negative turns go left).
func rotateHeading(from, turns int) byte {
	return headings[((from+turns)%4+4)%4]
}
