package fakeradio

import (
	"errors"
	"fmt"

	"github.com/stuarthighley/doomfx/world"
)

// CornerNormalPoint returns where the two lines meet after each is shifted
// along its normal, line1 by dist1 to its left and line2 by dist2 to its
// right. Parallel lines have no such point; line1's shifted normal is used
// instead. extended is line2's direction scaled to dist2.
func CornerNormalPoint(line1 world.Vec2, dist1 float64, line2 world.Vec2, dist2 float64) (point, extended world.Vec2) {
	len1, len2 := line1.Length(), line2.Length()
	if len1 == 0 || len2 == 0 {
		panic(&GeometryError{Line: -1, Msg: "zero length edge at a vertex"})
	}
	norm1 := world.Vec2{X: -line1.Y / len1 * dist1, Y: line1.X / len1 * dist1}
	norm2 := world.Vec2{X: line2.Y / len2 * dist2, Y: -line2.X / len2 * dist2}
	extended = line2.Scale(dist2 / len2)

	if line1.IsParallel(line2) {
		return norm1, extended
	}
	return world.Intersection(norm1, line1, norm2, line2), extended
}

// ShadowEdgeWidth returns how far a plane shadow reaches in from an edge.
// Edges longer than 600 units get wider shadows.
func ShadowEdgeWidth(edge world.Vec2) float64 {
	const (
		normalWidth = 20
		maxWidth    = 60
	)
	length := edge.Length()
	if length > 600 {
		w := min(length-600, 1000)
		return normalWidth + w/1000*maxWidth
	}
	return normalWidth
}

// updateVertexShadowOffsets sets the inner and extended plane shadow points
// of every owner at v, for the corner between the owner's line and the
// next line clockwise.
func updateVertexShadowOffsets(v *world.Vertex) {
	if v.NumOwners == 0 {
		return
	}
	own := v.Owners
	for {
		lineB := own.Line
		lineA := own.Next.Line

		right := world.Vec2{X: lineB.DX, Y: lineB.DY}
		if lineB.V[0] != v {
			right = right.Scale(-1)
		}
		// The left side is flipped.
		left := world.Vec2{X: lineA.DX, Y: lineA.DY}
		if lineA.V[0] != v {
			left = left.Scale(-1)
		}

		own.ShadowInner, own.ShadowExtended = CornerNormalPoint(left, ShadowEdgeWidth(left), right, ShadowEdgeWidth(right))

		own = own.Next
		if own == v.Owners {
			break
		}
	}
}

// IsShadowingLine reports whether line casts plane shadows: it must divide
// two sectors and not dangle at either end.
func IsShadowingLine(line *world.Line) bool {
	return line != nil && !line.SelfReferencing() &&
		line.Owners[0].Next.Line != line && line.Owners[1].Next.Line != line
}

// InitShadows computes the plane shadow offsets at every vertex and links
// each shadowing line side to the subsectors of its sector that its shadow
// can reach. It must be called once after the map is built and before
// SubsectorEdges. Malformed geometry is reported as a *GeometryError.
func InitShadows(m *world.Map) (err error) {
	logger.Printf("Initializing shadows for %v ...", m.Name)
	defer func() {
		if r := recover(); r != nil {
			var ge *GeometryError
			if e, ok := r.(error); ok && errors.As(e, &ge) {
				err = fmt.Errorf("init shadows: %w", ge)
				return
			}
			panic(r)
		}
	}()

	for i := range m.Lines {
		if m.Lines[i].Length <= 0 {
			panic(&GeometryError{Line: i, Msg: "zero length line"})
		}
	}
	for i := range m.Vertexes {
		updateVertexShadowOffsets(&m.Vertexes[i])
	}
	for i := range m.SubSectors {
		m.SubSectors[i].Shadows = m.SubSectors[i].Shadows[:0]
	}

	links := 0
	for i := range m.Sides {
		sd := &m.Sides[i]
		line := sd.Line
		if !IsShadowingLine(line) {
			continue
		}
		side := world.Front
		if line.Sides[world.Back] == sd {
			side = world.Back
		}

		// The extended points are wider than the inner ones.
		v0 := line.V[side].Pos
		v1 := line.V[side^1].Pos
		bounds := world.NewBBox(
			v0, v0.Add(line.Owners[side].Next.ShadowExtended),
			v1, v1.Add(line.Owners[side^1].Prev.ShadowExtended),
		)
		for _, ss := range sd.Sector.SubSectors {
			if ss.BBox.Intersects(bounds) {
				ss.Shadows = append(ss.Shadows, world.ShadowLink{Line: line, Side: side})
				links++
			}
		}
	}
	logger.Printf("Linked %v shadow edges", links)
	return nil
}
