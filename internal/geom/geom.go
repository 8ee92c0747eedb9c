// Package geom provides the discrete grid geometry used by the
// simulation: integer coordinates, floating sub-tile positions, and
// memoized Manhattan rings and squares.
package geom

import (
	"math"
	"sync"
)

// Coord is a grid-addressable integer coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point returns the floating equivalent of the coordinate.
func (c Coord) Point() Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

// Add returns c translated by v.
func (c Coord) Add(v Coord) Coord {
	return Coord{X: c.X + v.X, Y: c.Y + v.Y}
}

// Point is a floating 2-vector with sub-tile precision, used for
// probe movement interpolation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coord truncates the point to its grid coordinate.
func (p Point) Coord() Coord {
	return Coord{X: int(p.X), Y: int(p.Y)}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by f.
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalized returns the unit vector of p, or the zero vector if p
// has no length.
func (p Point) Normalized() Point {
	n := p.Norm()
	if n == 0 {
		return Point{}
	}
	return Point{X: p.X / n, Y: p.Y / n}
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return p.Sub(q).Norm()
}

// Rings and squares are translation-invariant, so the offsets around
// the origin are computed once per distance and translated at call
// time.
var (
	cacheMu     sync.Mutex
	ringCache   = map[int][]Coord{}
	squareCache = map[int][]Coord{}
)

// corner direction pairs: each ring quadrant is spanned by d picks
// (with replacement) from one pair.
var corners = [4][2]Coord{
	{{X: 1}, {Y: 1}},
	{{X: 1}, {Y: -1}},
	{{X: -1}, {Y: 1}},
	{{X: -1}, {Y: -1}},
}

func ringOffsets(distance int) []Coord {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if offs, ok := ringCache[distance]; ok {
		return offs
	}

	var offs []Coord
	if distance == 0 {
		offs = []Coord{{}}
	} else {
		seen := make(map[Coord]struct{}, 4*distance)
		for _, pair := range corners {
			// k picks of the first direction, distance-k of the second.
			for k := 0; k <= distance; k++ {
				c := Coord{
					X: pair[0].X*k + pair[1].X*(distance-k),
					Y: pair[0].Y*k + pair[1].Y*(distance-k),
				}
				if _, ok := seen[c]; ok {
					continue
				}
				seen[c] = struct{}{}
				offs = append(offs, c)
			}
		}
	}
	ringCache[distance] = offs
	return offs
}

func squareOffsets(distance int) []Coord {
	cacheMu.Lock()
	offs, ok := squareCache[distance]
	cacheMu.Unlock()
	if ok {
		return offs
	}

	for d := 0; d <= distance; d++ {
		offs = append(offs, ringOffsets(d)...)
	}
	cacheMu.Lock()
	squareCache[distance] = offs
	cacheMu.Unlock()
	return offs
}

// Ring returns the coordinates at Manhattan distance exactly
// `distance` from the origin. For distance 0 it is the origin alone,
// for distance d >= 1 it is exactly 4d points.
func Ring(origin Coord, distance int) []Coord {
	return translate(ringOffsets(distance), origin)
}

// Square returns the coordinates at Manhattan distance at most
// `distance` from the origin: a filled diamond of 2d²+2d+1 points.
func Square(origin Coord, distance int) []Coord {
	return translate(squareOffsets(distance), origin)
}

func translate(offs []Coord, origin Coord) []Coord {
	out := make([]Coord, len(offs))
	for i, o := range offs {
		out[i] = origin.Add(o)
	}
	return out
}
