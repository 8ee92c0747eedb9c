package geom

import (
	"math"
	"testing"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestRingZeroIsOrigin(t *testing.T) {
	got := Ring(Coord{X: 3, Y: -2}, 0)
	if len(got) != 1 || got[0] != (Coord{X: 3, Y: -2}) {
		t.Fatalf("ring(o, 0) = %v, want origin only", got)
	}
}

func TestRingSizeAndDistance(t *testing.T) {
	origin := Coord{X: 5, Y: 5}
	for d := 1; d <= 5; d++ {
		got := Ring(origin, d)
		if len(got) != 4*d {
			t.Fatalf("ring distance %d: %d points, want %d", d, len(got), 4*d)
		}
		seen := make(map[Coord]struct{})
		for _, c := range got {
			if md := abs(c.X-origin.X) + abs(c.Y-origin.Y); md != d {
				t.Fatalf("ring distance %d contains %v at manhattan distance %d", d, c, md)
			}
			if _, dup := seen[c]; dup {
				t.Fatalf("ring distance %d contains duplicate %v", d, c)
			}
			seen[c] = struct{}{}
		}
	}
}

func TestSquareOne(t *testing.T) {
	got := Square(Coord{}, 1)
	want := map[Coord]struct{}{
		{}:      {},
		{X: 1}:  {},
		{X: -1}: {},
		{Y: 1}:  {},
		{Y: -1}: {},
	}
	if len(got) != len(want) {
		t.Fatalf("square(o, 1) has %d points, want %d", len(got), len(want))
	}
	for _, c := range got {
		if _, ok := want[c]; !ok {
			t.Fatalf("square(o, 1) contains unexpected %v", c)
		}
	}
}

func TestSquareSize(t *testing.T) {
	// filled diamond of 2d²+2d+1 points
	for d := 0; d <= 4; d++ {
		got := Square(Coord{X: -7, Y: 9}, d)
		want := 2*d*d + 2*d + 1
		if len(got) != want {
			t.Fatalf("square distance %d: %d points, want %d", d, len(got), want)
		}
	}
}

func TestTranslationInvariance(t *testing.T) {
	base := Ring(Coord{}, 3)
	moved := Ring(Coord{X: 10, Y: -4}, 3)
	if len(base) != len(moved) {
		t.Fatalf("translated ring size changed: %d vs %d", len(base), len(moved))
	}
	for i := range base {
		want := base[i].Add(Coord{X: 10, Y: -4})
		if moved[i] != want {
			t.Fatalf("offset %d: got %v, want %v", i, moved[i], want)
		}
	}
}

func TestPointInterpolationHelpers(t *testing.T) {
	p := Point{X: 3, Y: 4}
	if n := p.Norm(); math.Abs(n-5) > 1e-9 {
		t.Fatalf("norm = %f, want 5", n)
	}
	u := p.Normalized()
	if math.Abs(u.Norm()-1) > 1e-9 {
		t.Fatalf("normalized norm = %f, want 1", u.Norm())
	}
	if z := (Point{}).Normalized(); z != (Point{}) {
		t.Fatalf("zero vector normalized to %v", z)
	}
}
