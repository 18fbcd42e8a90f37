package world

// FindLineNeighbor walks the owner ring from own, anticlockwise or
// clockwise, to the first line other than a self referencing one that
// borders sec (any line when sec is nil). The angles passed over are added
// to diff when it is not nil. It returns nil when the walk comes back to
// line.
func FindLineNeighbor(sec *Sector, line *Line, own *LineOwner, antiClockwise bool, diff *BinAngle) *Line {
	for {
		cown := own.Link(!antiClockwise)
		other := cown.Line
		if other == line {
			return nil
		}
		if diff != nil {
			if antiClockwise {
				*diff += cown.Angle
			} else {
				*diff += own.Angle
			}
		}
		if !other.SelfReferencing() {
			if sec == nil || other.FrontSector() == sec || other.BackSector() == sec {
				return other
			}
		}
		own = cown
	}
}

// FindSolidLineNeighbor is like FindLineNeighbor but skips lines that leave
// an opening into sec. A one sided line, or a line whose sectors do not
// overlap sec vertically, counts as solid.
func FindSolidLineNeighbor(sec *Sector, line *Line, own *LineOwner, antiClockwise bool, diff *BinAngle) *Line {
	for {
		cown := own.Link(!antiClockwise)
		other := cown.Line
		if other == line {
			return nil
		}
		if diff != nil {
			if antiClockwise {
				*diff += cown.Angle
			} else {
				*diff += own.Angle
			}
		}

		if other.Sides[Front] == nil || other.Sides[Back] == nil {
			return other
		}
		front, back := other.FrontSector(), other.BackSector()
		if !other.SelfReferencing() &&
			(front.FloorHeight() >= sec.CeilingHeight() ||
				front.CeilingHeight() <= sec.FloorHeight() ||
				back.FloorHeight() >= sec.CeilingHeight() ||
				back.CeilingHeight() <= sec.FloorHeight() ||
				back.CeilingHeight() <= back.FloorHeight()) {
			return other
		}

		// Both sides are open. A middle material that leaves a gap means
		// there is no solid neighbour at all.
		side := Back
		if front == sec {
			side = Front
		}
		if other.Sides[side].Middle != nil && overlapsOpening(other.Sector(side^1), sec) &&
			!other.MiddleFillsGap(side) {
			return nil
		}
		own = cown
	}
}

// overlapsOpening reports whether the vertical span of o reaches into sec.
func overlapsOpening(o, sec *Sector) bool {
	f, c := sec.FloorHeight(), sec.CeilingHeight()
	oFloor, oCeil := o.FloorHeight(), o.CeilingHeight()
	return (oCeil > f && oFloor <= f) ||
		(oFloor < c && oCeil >= c) ||
		(oFloor < c && oCeil > f)
}

// MiddleFillsGap reports whether the middle material on the given side of a
// two sided line covers the whole opening between the two sectors.
func (l *Line) MiddleFillsGap(side int) bool {
	front, back := l.Sector(side), l.Sector(side^1)
	sd := l.Sides[side]
	if front == nil || back == nil || sd == nil || sd.Middle == nil || sd.Middle.Masked {
		return false
	}
	openBottom := max(front.FloorHeight(), back.FloorHeight())
	openTop := min(front.CeilingHeight(), back.CeilingHeight())
	if sd.Middle.Height < openTop-openBottom {
		return false
	}
	var top, bottom float64
	if l.Flags&LineLowerUnpegged != 0 {
		bottom = openBottom + sd.OffsetY
		top = bottom + sd.Middle.Height
	} else {
		top = openTop + sd.OffsetY
		bottom = top - sd.Middle.Height
	}
	return top >= openTop && bottom <= openBottom
}
