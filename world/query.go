package world

import "math"

// Bounds used when nothing surrounds a sector.
const (
	MaxHeight        = 32767
	MinFloorFallback = -500
)

// NextSector returns the sector on the other side of a two sided line, or
// nil if the line is one sided or does not border sec.
func (l *Line) NextSector(sec *Sector) *Sector {
	if !l.HasBack() {
		return nil
	}
	switch sec {
	case l.FrontSector():
		return l.BackSector()
	case l.BackSector():
		return l.FrontSector()
	}
	return nil
}

// Neighbors calls fn for every sector across a two sided line of s. A
// sector bordering s along several lines is visited once per line.
func (s *Sector) Neighbors(fn func(l *Line, other *Sector)) {
	for _, l := range s.Lines {
		if other := l.NextSector(s); other != nil {
			fn(l, other)
		}
	}
}

// LowestFloorSurrounding returns the lowest floor of the sector and its
// neighbours.
func (s *Sector) LowestFloorSurrounding() float64 {
	floor := s.FloorHeight()
	s.Neighbors(func(_ *Line, o *Sector) {
		floor = min(floor, o.FloorHeight())
	})
	return floor
}

// HighestFloorSurrounding returns the highest neighbouring floor.
func (s *Sector) HighestFloorSurrounding() float64 {
	floor := float64(MinFloorFallback)
	s.Neighbors(func(_ *Line, o *Sector) {
		floor = max(floor, o.FloorHeight())
	})
	return floor
}

// NextHighestFloor returns the lowest neighbouring floor above height, or
// height itself if there is none.
func (s *Sector) NextHighestFloor(height float64) float64 {
	next := math.Inf(1)
	s.Neighbors(func(_ *Line, o *Sector) {
		if h := o.FloorHeight(); h > height {
			next = min(next, h)
		}
	})
	if math.IsInf(next, 1) {
		return height
	}
	return next
}

// NextLowestFloor returns the highest neighbouring floor below height, or
// height itself if there is none.
func (s *Sector) NextLowestFloor(height float64) float64 {
	next := math.Inf(-1)
	s.Neighbors(func(_ *Line, o *Sector) {
		if h := o.FloorHeight(); h < height {
			next = max(next, h)
		}
	})
	if math.IsInf(next, -1) {
		return height
	}
	return next
}

func (s *Sector) LowestCeilingSurrounding() float64 {
	ceil := float64(MaxHeight)
	s.Neighbors(func(_ *Line, o *Sector) {
		ceil = min(ceil, o.CeilingHeight())
	})
	return ceil
}

func (s *Sector) HighestCeilingSurrounding() float64 {
	ceil := 0.0
	s.Neighbors(func(_ *Line, o *Sector) {
		ceil = max(ceil, o.CeilingHeight())
	})
	return ceil
}

// MinSurroundingLight returns the darkest neighbouring light level no
// brighter than limit.
func (s *Sector) MinSurroundingLight(limit float64) float64 {
	light := limit
	s.Neighbors(func(_ *Line, o *Sector) {
		light = min(light, o.LightLevel)
	})
	return light
}

// MaxSurroundingLight returns the brightest neighbouring light level, or
// zero.
func (s *Sector) MaxSurroundingLight() float64 {
	light := 0.0
	s.Neighbors(func(_ *Line, o *Sector) {
		light = max(light, o.LightLevel)
	})
	return light
}

// ShortestLowerMaterial returns the height of the shortest lower wall
// material on the two sided lines of the sector.
func (s *Sector) ShortestLowerMaterial() float64 {
	size := float64(MaxHeight)
	for _, l := range s.Lines {
		if !l.HasBack() {
			continue
		}
		for _, sd := range l.Sides {
			if sd.Bottom != nil && sd.Bottom.Height > 0 {
				size = min(size, sd.Bottom.Height)
			}
		}
	}
	return size
}
