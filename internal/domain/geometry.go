package domain

import "math"

// Point is a position in board coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CellRect maps a block of terminal cells to a rect covering them.
func CellRect(x, y, width, height int) Rect {
	return Rect{Left: float64(x), Top: float64(y), Width: float64(width), Height: float64(height)}
}

// CellPoint maps a terminal cell to the point at its center.
func CellPoint(x, y int) Point {
	return Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

// Right returns the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the covered area.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the rect midpoint.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// MidY returns the vertical midpoint.
func (r Rect) MidY() float64 {
	return r.Top + r.Height/2
}

// Corners returns top-left, top-right, bottom-left, bottom-right.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right(), Y: r.Top},
		{X: r.Left, Y: r.Bottom()},
		{X: r.Right(), Y: r.Bottom()},
	}
}

// Translate returns the rect moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// ContainsStrict reports whether p lies inside r, excluding the edges.
func (r Rect) ContainsStrict(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X > r.Left && p.X < r.Right() && p.Y > r.Top && p.Y < r.Bottom()
}

// IntersectionArea returns the area shared by r and o.
func (r Rect) IntersectionArea(o Rect) float64 {
	left := math.Max(r.Left, o.Left)
	top := math.Max(r.Top, o.Top)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// IntersectionRatio returns intersection over union, in [0, 1].
func (r Rect) IntersectionRatio(o Rect) float64 {
	inter := r.IntersectionArea(o)
	if inter == 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MeanCornerDistance returns the mean distance from p to the corners of r.
func MeanCornerDistance(p Point, r Rect) float64 {
	var total float64
	for _, corner := range r.Corners() {
		total += Distance(p, corner)
	}
	return total / 4
}
