package fakeradio

import (
	"github.com/stuarthighley/doomfx/world"
)

const (
	minOpen           = .1
	edgeOpenThreshold = 8 // Height units
	minDiff           = 8 // Smallest plane height difference that matters
	inDiff            = 8 // Largest plane height difference that is ignored

	edgeBottom = 0
	edgeTop    = 1

	// Neighbours within this many binary angle units of straight on
	// continue the wall.
	alignSep = 10
)

// Span is the apparent length of a wall once aligned neighbours are added,
// and how far the wall's own start is from the start of the span.
type Span struct {
	Length float64
	Shift  float64
}

// Corner describes one end of a wall edge.
type Corner struct {
	// Factor is -1 for a corner facing outwards, 0 for an open or
	// coaligned neighbour, up to 1 for a right angle.
	Factor float64

	// Proximity is the sector behind the last aligned neighbour, with its
	// plane height and that height relative to the wall's own plane.
	Proximity *world.Sector
	Offset    float64
	Height    float64
}

// SideConfig is the edge analysis of one line side for the current frame.
type SideConfig struct {
	Spans         [2]Span   // Bottom, top
	SideCorners   [2]Corner // Left, right
	TopCorners    [2]Corner
	BottomCorners [2]Corner

	frame   int
	scanned bool
}

// LineCorner converts the angle between a wall and its neighbour into a
// corner factor.
func LineCorner(diff world.BinAngle) float64 {
	switch {
	case diff > world.Angle180:
		return -1 // Faces outwards
	case diff == world.Angle180:
		return 0
	case diff < world.Angle45/5:
		return 0 // Too small to cast a shadow
	case diff > world.Angle90:
		return float64(world.Angle90) / float64(diff)
	}
	return float64(diff) / float64(world.Angle90)
}

// UpdateLine returns the edge analysis for one side of line, scanning the
// neighbouring lines the first time it is asked for in a frame. It returns
// nil if the line has no such side.
func (f *Frame) UpdateLine(line *world.Line, side int) *SideConfig {
	sd := line.Sides[side]
	if sd == nil {
		return nil
	}
	if line.Length <= 0 {
		panic(&GeometryError{Line: line.Index, Msg: "zero length line"})
	}
	c := &f.sides[sd.Index]
	if c.scanned && c.frame == f.count {
		return c
	}
	*c = SideConfig{frame: f.count, scanned: true}
	for i := range c.Spans {
		c.Spans[i] = Span{Length: line.Length}
	}
	scanEdges(c, line, side)
	return c
}

// scanEdges finds the solid neighbours on both sides of the wall, then the
// aligned neighbours along its top and bottom edges.
func scanEdges(c *SideConfig, line *world.Line, side int) {
	sec := line.Sector(side)
	for i := 0; i < 2; i++ {
		var diff world.BinAngle
		other := world.FindSolidLineNeighbor(sec, line, line.Owners[i^side], i == 1, &diff)
		if other != nil && other != line {
			c.SideCorners[i].Factor = LineCorner(diff)
		}
		scanNeighbors(c, line, side, i == 0)
	}
}

func scanNeighbors(c *SideConfig, line *world.Line, side int, toLeft bool) {
	if line.SelfReferencing() {
		return
	}
	sec := line.Sector(side)
	edges := [2]edge{
		scanNeighbor(false, line, side, toLeft),
		scanNeighbor(true, line, side, toLeft),
	}
	for i, e := range edges {
		var corner *Corner
		if i == edgeBottom {
			corner = &c.BottomCorners[b2i(!toLeft)]
		} else {
			corner = &c.TopCorners[b2i(!toLeft)]
		}
		span := &c.Spans[i]
		span.Length += e.length
		if toLeft {
			span.Shift += e.length
		}

		*corner = Corner{}
		if e.line != nil && e.line != line {
			corner.Factor = LineCorner(e.diff)
		}
		if e.sector != nil {
			corner.Proximity = e.sector
			plane := world.Floor
			if i == edgeTop {
				plane = world.Ceiling
			}
			corner.Height = e.sector.Plane(plane).Height
			corner.Offset = corner.Height - sec.Plane(plane).Height
		}
	}
}

type edge struct {
	line   *world.Line
	sector *world.Sector
	length float64
	diff   world.BinAngle
}

// scanNeighbor walks the owner rings away from one end of the wall for as
// long as the lines met continue it in a straight line with matching plane
// heights.
func scanNeighbor(scanTop bool, line *world.Line, side int, toLeft bool) edge {
	var (
		e         edge
		gap       float64
		start     = line.Sector(side)
		fFloor    = start.FloorHeight()
		fCeil     = start.CeilingHeight()
		clockwise = toLeft
		own       = line.Owners[side^b2i(!toLeft)]
	)
	angle := func(o *world.LineOwner) world.BinAngle {
		if clockwise {
			return o.Angle
		}
		return o.Prev.Angle
	}

	for {
		diff := angle(own)
		iter := own.Link(clockwise).Line
		for iter.SelfReferencing() {
			own = own.Link(clockwise)
			diff += angle(own)
			iter = own.Link(clockwise).Line
		}

		var scanSector *world.Sector
		if scanSide := b2i(iter.FrontSector() == start); iter.Sides[scanSide] != nil {
			scanSector = iter.Sector(scanSide)
		}

		iFFloor, iFCeil := iter.FrontSector().FloorHeight(), iter.FrontSector().CeilingHeight()
		var iBFloor, iBCeil float64
		back := iter.BackSector()
		if back != nil {
			iBFloor, iBCeil = back.FloorHeight(), back.CeilingHeight()
		}

		e.diff = diff
		e.line = iter
		e.sector = scanSector

		closed := false
		if side == world.Front && back != nil {
			if scanTop {
				closed = iBFloor >= fCeil
			} else {
				closed = iBCeil <= fFloor
			}
		}

		// Lines leading into open space do not cast the edge shadow but
		// still count towards its texture alignment if the wall goes on.
		var contributes bool
		if scanTop {
			contributes = !(back != nil &&
				((side == world.Front && back == line.FrontSector() && iFCeil >= fCeil) ||
					(side == world.Back && back == line.BackSector() && iFCeil >= fCeil) ||
					(side == world.Front && !closed && back != line.FrontSector() && iBCeil >= fCeil && isOpen(back))))
		} else {
			contributes = !(back != nil &&
				((side == world.Front && back == line.FrontSector() && iFFloor <= fFloor) ||
					(side == world.Back && back == line.BackSector() && iFFloor <= fFloor) ||
					(side == world.Front && !closed && back != line.FrontSector() && iBFloor <= fFloor && isOpen(back))))
		}
		var lengthDelta float64
		if contributes {
			lengthDelta = iter.Length + gap
			gap = 0
		} else {
			gap += iter.Length
		}

		stop := iter == line ||
			diff < world.Angle180-alignSep || diff > world.Angle180+alignSep
		if !stop && scanSector != nil {
			switch {
			case !isOpen(scanSector):
				stop = true
			case scanTop:
				stop = scanSector.CeilingHeight() != fCeil && scanSector.FloorHeight() < start.CeilingHeight()
			default:
				stop = scanSector.FloorHeight() != fFloor && scanSector.CeilingHeight() > start.FloorHeight()
			}
		}
		if stop {
			break
		}

		// Around the corner.
		switch own.Link(clockwise) {
		case iter.Owners[1]:
			own = iter.Owners[0]
		case iter.Owners[0]:
			own = iter.Owners[1]
		}
		e.length += lengthDelta
	}

	// The line after the last aligned one, seen from the sector behind it,
	// decides how open the edge is.
	if e.sector != nil {
		v := b2i(e.line.HasBack() && e.line.BackSector() == e.sector) ^ b2i(!toLeft)
		e.line = world.FindLineNeighbor(e.sector, e.line, e.line.Owners[v], !toLeft, &e.diff)
	}
	return e
}
