package world

import (
	"math"

	"golang.org/x/exp/constraints"
)

// BinAngle is a binary angle: the full circle is 1<<16, east is zero and
// angles grow anticlockwise.
type BinAngle uint16

const (
	Angle45  BinAngle = 0x2000
	Angle90  BinAngle = 0x4000
	Angle180 BinAngle = 0x8000
	Angle270 BinAngle = 0xc000
)

// Degrees converts the angle to degrees in [0, 360).
func (a BinAngle) Degrees() float64 {
	return float64(a) * 360 / (1 << 16)
}

// AngleFromDegrees converts degrees to a binary angle, wrapping as needed.
func AngleFromDegrees[T constraints.Integer | constraints.Float](deg T) BinAngle {
	return angleFromTurns(float64(deg) / 360)
}

// Atan2 returns the binary angle of the vector (x, y).
func Atan2(y, x float64) BinAngle {
	return angleFromTurns(math.Atan2(y, x) / (2 * math.Pi))
}

func angleFromTurns(turns float64) BinAngle {
	turns -= math.Floor(turns)
	return BinAngle(uint32(math.Round(turns*(1<<16))) & 0xffff)
}

// Vec2 is a point or direction on the map plane.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Length() }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) IsParallel(o Vec2) bool {
	const epsilon = .9999
	lv, lo := v.Length(), o.Length()
	if lv == 0 || lo == 0 {
		return true
	}
	dot := (v.X*o.X + v.Y*o.Y) / (lv * lo)
	return dot > epsilon || dot < -epsilon
}

// Intersection returns the point where the line through p1 with direction d1
// crosses the line through p2 with direction d2. The lines must not be
// parallel.
func Intersection(p1, d1, p2, d2 Vec2) Vec2 {
	div := d2.Cross(d1)
	if div == 0 {
		return p1
	}
	t := p2.Sub(p1).Cross(d2) / -div
	return p1.Add(d1.Scale(t))
}

// BBox is an axis aligned bounding box.
type BBox struct {
	Min, Max Vec2
}

func emptyBBox() BBox {
	return BBox{
		Min: Vec2{math.Inf(1), math.Inf(1)},
		Max: Vec2{math.Inf(-1), math.Inf(-1)},
	}
}

// Add grows the box to include p.
func (b *BBox) Add(p Vec2) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

// Intersects reports whether the boxes overlap (touching counts).
func (b BBox) Intersects(o BBox) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// NewBBox returns the smallest box containing pts.
func NewBBox(pts ...Vec2) BBox {
	b := emptyBBox()
	for _, p := range pts {
		b.Add(p)
	}
	return b
}
