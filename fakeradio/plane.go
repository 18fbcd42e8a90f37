package fakeradio

import (
	"github.com/stuarthighley/doomfx/world"
)

// EdgeOpenness says how open a plane edge is, from 0 for a wall or a
// distant step, through 1 for a neighbour at the same height, to 2 for a
// neighbour clearly past it. fz is the plane's own height, bz the same
// plane behind the edge and bhz the opposite plane behind it. Ceilings
// pass negated heights.
func EdgeOpenness(fz, bz, bhz float64) float64 {
	switch {
	case fz <= bz-edgeOpenThreshold || fz >= bhz:
		return 0
	case fz >= bhz-edgeOpenThreshold:
		return (bhz - fz) / edgeOpenThreshold
	case fz <= bz:
		return 1 - (bz-fz)/edgeOpenThreshold
	case fz <= bz+edgeOpenThreshold:
		return 1 + (fz-bz)/edgeOpenThreshold
	}
	return 2
}

// relativeHeights returns the heights EdgeOpenness compares for plane pln.
func relativeHeights(front, back *world.Sector, pln world.PlaneID) (fz, bz, bhz float64) {
	opposite := world.Ceiling
	if pln == world.Ceiling {
		opposite = world.Floor
	}
	fz = front.Plane(pln).Height
	bz = back.Plane(pln).Height
	bhz = back.Plane(opposite).Height
	if pln == world.Ceiling {
		return -fz, -bz, -bhz
	}
	return fz, bz, bhz
}

// edgeHackType returns 0 when openness should be computed from the plane
// heights, 1 for an edge that counts as closed, and 3 for one that counts
// as fully open.
func edgeHackType(line *world.Line, front, back *world.Sector, side int, pln world.PlaneID, fz, bz float64) int {
	sd := line.Sides[side]
	section := sd.Bottom
	opposite := world.Ceiling
	if pln == world.Ceiling {
		section = sd.Top
		opposite = world.Floor
	}
	if fz < bz && section == nil {
		return 3
	}

	if front.FloorHeight() >= back.CeilingHeight() {
		if !isSky(front.Plane(opposite)) {
			return 1
		}
		if isSky(back.Plane(opposite)) {
			return 3
		}
	}

	// Secret doors stay hidden behind a middle texture covering the gap.
	if line.MiddleFillsGap(side) {
		return 1
	}
	return 0
}

// SubsectorEdges emits the floor and ceiling shadows along the lines linked
// to ss by InitShadows. Each line side is drawn at most once per frame,
// however many subsectors it is linked to.
func (f *Frame) SubsectorEdges(ss *world.SubSector, r Renderer) {
	sec := ss.Sector
	if !f.Config.Enabled || sec == nil || sec.LightLevel <= 0 {
		return
	}
	dark := f.darkness(sec.LightLevel) * .8

	var planes []world.PlaneID
	for _, pln := range []world.PlaneID{world.Floor, world.Ceiling} {
		if p := sec.Plane(pln); !p.Glowing() && p.Material != nil {
			planes = append(planes, pln)
		}
	}
	if len(planes) == 0 {
		return
	}

	for _, link := range ss.Shadows {
		line, side := link.Line, link.Side
		if line.ShadowVisFrame[side] == f.count {
			continue
		}
		line.ShadowVisFrame[side] = f.count

		for _, pln := range planes {
			f.planeEdge(line, side, pln, dark, r)
		}
	}
}

func (f *Frame) planeEdge(line *world.Line, side int, pln world.PlaneID, dark float64, r Renderer) {
	front := line.Sector(side)
	plane := front.Plane(pln)

	open := 0.0
	if line.HasBack() {
		back := line.Sector(side ^ 1)
		fz, bz, bhz := relativeHeights(front, back, pln)
		if hack := edgeHackType(line, front, back, side, pln, fz, bz); hack != 0 {
			open = float64(hack - 1)
		} else {
			open = EdgeOpenness(fz, bz, bhz)
		}
	}
	if open >= 1 {
		return
	}

	// Open neighbours at either end pull the shadow's inner corner out
	// along the line and fade its outer corner.
	var sideOpen [2]float64
	var inner [2]world.Vec2
	for i := 0; i < 2; i++ {
		vo := line.Owners[side^i].Link(i == 0)
		neighbor := vo.Line

		if neighbor != line && neighbor.HasBack() {
			otherSide := i ^ 1
			if line.V[i^side] == neighbor.V[0] {
				otherSide = i
			}
			other := neighbor.Sector(otherSide)
			switch {
			case neighbor.SelfReferencing(),
				(isSky(other.Plane(pln)) || isSky(other.Ceiling())) && other.FloorHeight() >= other.CeilingHeight():
				sideOpen[i] = 1
			case neighbor.MiddleFillsGap(otherSide ^ 1):
				sideOpen[i] = 0
			case other != front &&
				!(pln == world.Floor && other.CeilingHeight() <= plane.Height) &&
				!(pln == world.Ceiling && other.FloorHeight() >= plane.Height):
				fz, bz, bhz := relativeHeights(front, other, pln)
				sideOpen[i] = EdgeOpenness(fz, bz, bhz)
			}
		}

		pos := line.V[i^side].Pos
		if sideOpen[i] < 1 {
			own := line.Owners[i^side]
			if i == 1 {
				own = own.Prev
			}
			inner[i] = pos.Add(own.ShadowInner)
		} else {
			inner[i] = pos.Add(vo.ShadowExtended)
		}
	}

	addShadowEdge(line, side, pln, plane.Height, inner, dark*(1-open), sideOpen, r)
}

var (
	floorIndices   = [2][4]int{{0, 1, 2, 3}, {1, 2, 3, 0}}
	ceilingIndices = [2][4]int{{0, 3, 2, 1}, {1, 0, 3, 2}}
)

func addShadowEdge(line *world.Line, side int, pln world.PlaneID, z float64, inner [2]world.Vec2, darkness float64, sideOpen [2]float64, r Renderer) {
	if darkness < 0 {
		return
	}
	alpha := min(darkness, 1)
	v1 := line.V[side].Pos
	v2 := line.V[side^1].Pos

	// Keep the cross edge the shorter diagonal.
	wind := b2i(inner[1].Dist(v2) > inner[0].Dist(v1))
	idx := floorIndices[wind]
	if pln == world.Ceiling {
		idx = ceilingIndices[wind]
	}

	s := PlaneShadow{Line: line, Side: side, Plane: pln, Z: z}
	s.Points[idx[0]] = v1
	s.Points[idx[1]] = v2
	s.Points[idx[2]] = inner[1]
	s.Points[idx[3]] = inner[0]
	s.Alpha[idx[0]] = alpha
	s.Alpha[idx[1]] = alpha
	for i := 0; i < 2; i++ {
		if sideOpen[i] < 1 {
			s.Alpha[idx[i]] *= 1 - sideOpen[i]
		}
	}
	r.PlaneShadow(s)
}
