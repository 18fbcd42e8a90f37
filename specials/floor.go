package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

const (
	FloorSpeed = 1

	instantSpeed = 2000 // Hexen "instant" movers
)

type FloorType int

const (
	FloorLower          FloorType = iota // To the highest surrounding floor
	FloorLowerToLowest                   // To the lowest surrounding floor
	FloorLowerTurbo                      // To the highest surrounding floor + 8, fast
	FloorRaise                           // To the lowest surrounding ceiling
	FloorRaiseTurbo                      // To the next highest floor, fast
	FloorRaiseToNearest                  // To the next highest floor
	FloorRaiseCrush                      // To 8 below the ceiling, crushing
	FloorRaise24
	FloorRaise24AndChange
	FloorRaise512
	FloorRaiseToTexture
	FloorLowerAndChange
	FloorRaiseDonut
	FloorBuildStep

	// Hexen, taking their amounts from the line arguments.
	FloorLowerByValue
	FloorLowerByValueMul8
	FloorLowerMul8Instant
	FloorRaiseByValue
	FloorRaiseByValueMul8
	FloorRaiseMul8Instant
	FloorToValueMul8
)

// Floor moves a sector's floor to a destination height.
type Floor struct {
	Sec        *world.Sector
	Type       FloorType
	Crush      bool
	Direction  int
	NewSpecial int
	Material   *world.Material // Applied when the move completes
	Dest       float64
	Speed      float64

	// Hexen stair steps pause every step height and may return to where
	// they started.
	DelayCount             int
	DelayTotal             int
	StairsDelayHeight      float64
	StairsDelayHeightDelta float64
	ResetHeight            float64
	ResetDelay             int
	ResetDelayCount        int
}

func (s *Sim) thinkFloor(id thinker.ID, f *Floor) {
	sec := f.Sec
	if s.Game == Hexen {
		if f.ResetDelayCount > 0 {
			f.ResetDelayCount--
			if f.ResetDelayCount == 0 {
				f.Dest = f.ResetHeight
				f.Direction = -f.Direction
				f.ResetDelay = 0
				f.DelayCount = 0
				f.DelayTotal = 0
			}
		}
		if f.DelayCount > 0 {
			f.DelayCount--
			if f.DelayCount == 0 && f.Material != nil {
				sec.Floor().Material = f.Material
			}
			return
		}
	}

	res := s.MovePlane(sec, f.Speed, f.Dest, f.Crush, world.Floor, f.Direction)

	if s.Game == Hexen && f.Type == FloorBuildStep {
		h := sec.FloorHeight()
		if (f.Direction == Up && h >= f.StairsDelayHeight) || (f.Direction == Down && h <= f.StairsDelayHeight) {
			f.DelayCount = f.DelayTotal
			f.StairsDelayHeight += f.StairsDelayHeightDelta
		}
	}

	if s.Time&7 == 0 {
		s.sectorSound(sec, world.Floor, s.planeMoveSound())
	}

	if res != PastDestination {
		return
	}
	sec.Floor().Speed = 0

	switch s.Game {
	case Hexen:
		s.stopSequence(sec)
		f.DelayTotal = 0
		if f.ResetDelay != 0 {
			return
		}
	case Heretic:
		if f.Type == FloorBuildStep {
			s.sectorSound(sec, world.Floor, SfxPlatStop)
		}
	default:
		s.sectorSound(sec, world.Floor, SfxPlatStop)
	}

	if s.Game == Hexen {
		if f.Material != nil {
			sec.Floor().Material = f.Material
		}
	} else {
		switch {
		case f.Direction == Up && f.Type == FloorRaiseDonut,
			f.Direction == Down && f.Type == FloorLowerAndChange:
			sec.Special = f.NewSpecial
			sec.Floor().Material = f.Material
		}
	}
	s.finish(id, sec)
}

// lowestFloorNeighbor returns the lowest surrounding floor and the sector
// it belongs to, sec itself if no neighbour is lower.
func lowestFloorNeighbor(sec *world.Sector) (float64, *world.Sector) {
	h, low := sec.FloorHeight(), sec
	sec.Neighbors(func(_ *world.Line, o *world.Sector) {
		if o.FloorHeight() < h {
			h, low = o.FloorHeight(), o
		}
	})
	return h, low
}

// DoFloor starts a floor mover of the given type in every idle sector
// tagged by line. It returns 1 if any floor started.
func (s *Sim) DoFloor(line *world.Line, typ FloorType) int {
	rtn := 0
	var last *world.Sector
	for _, sec := range s.Map.SectorsByTag(s.tag(line)) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		f := &Floor{Sec: sec, Type: typ, Speed: FloorSpeed}
		if s.Game == Hexen {
			f.Speed = argSpeed(line.Args[1])
			if typ == FloorLowerMul8Instant || typ == FloorRaiseMul8Instant {
				f.Speed = instantSpeed
			}
		}
		s.occupy(sec, f)
		last = sec

		floor := sec.FloorHeight()
		switch typ {
		case FloorLower:
			f.Direction = Down
			f.Dest = sec.HighestFloorSurrounding()
		case FloorLowerToLowest:
			f.Direction = Down
			f.Dest = sec.LowestFloorSurrounding()
		case FloorLowerTurbo:
			f.Direction = Down
			f.Speed = FloorSpeed * 4
			f.Dest = sec.HighestFloorSurrounding()
			if s.Game == Heretic || f.Dest != floor {
				f.Dest += 8
			}
		case FloorRaiseCrush:
			f.Direction = Up
			if s.Game == Hexen {
				f.Crush = line.Args[2] != 0
				f.Dest = sec.CeilingHeight() - 8
			} else {
				f.Crush = true
				f.Dest = min(sec.LowestCeilingSurrounding(), sec.CeilingHeight()) - 8
			}
		case FloorRaise:
			f.Direction = Up
			f.Dest = min(sec.LowestCeilingSurrounding(), sec.CeilingHeight())
		case FloorRaiseTurbo:
			f.Direction = Up
			f.Speed = FloorSpeed * 4
			f.Dest = sec.NextHighestFloor(floor)
		case FloorRaiseToNearest:
			f.Direction = Up
			f.Dest = sec.NextHighestFloor(floor)
		case FloorRaise24:
			f.Direction = Up
			f.Dest = floor + 24
		case FloorRaise24AndChange:
			f.Direction = Up
			f.Dest = floor + 24
			if front := line.FrontSector(); front != nil {
				sec.Floor().Material = front.Floor().Material
				sec.Special = front.Special
			}
		case FloorRaise512:
			f.Direction = Up
			f.Dest = floor + 512
		case FloorRaiseToTexture:
			f.Direction = Up
			f.Dest = floor + sec.ShortestLowerMaterial()
		case FloorLowerAndChange:
			f.Direction = Down
			var other *world.Sector
			f.Dest, other = lowestFloorNeighbor(sec)
			f.Material = other.Floor().Material
			f.NewSpecial = other.Special
		case FloorLowerByValue:
			f.Direction = Down
			f.Dest = floor - float64(line.Args[2])
		case FloorLowerMul8Instant, FloorLowerByValueMul8:
			f.Direction = Down
			f.Dest = floor - float64(line.Args[2])*8
		case FloorRaiseByValue:
			f.Direction = Up
			f.Dest = floor + float64(line.Args[2])
		case FloorRaiseMul8Instant, FloorRaiseByValueMul8:
			f.Direction = Up
			f.Dest = floor + float64(line.Args[2])*8
		case FloorToValueMul8:
			f.Dest = float64(line.Args[2]) * 8
			if line.Args[3] != 0 {
				f.Dest = -f.Dest
			}
			switch {
			case f.Dest > floor:
				f.Direction = Up
			case f.Dest < floor:
				f.Direction = Down
			default:
				// Already there
				s.finish(sec.SpecialData, sec)
				rtn = 0
			}
		default:
			fatalf("DoFloor", "unknown floor type %v", typ)
		}
	}
	if rtn != 0 && last != nil {
		s.startSequence(last, SeqPlatform)
	}
	return rtn
}

// DoDonut lowers the pillar in each tagged sector to the floor of the
// sector beyond the ring around it, and raises the ring to the same
// height, taking on the outer floor's material.
func (s *Sim) DoDonut(line *world.Line) int {
	rtn := 0
	for _, sec := range s.Map.SectorsByTag(line.Tag) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		ring := firstNeighbor(sec, nil)
		if ring == nil {
			continue
		}
		outer := firstNeighbor(ring, sec)
		if outer == nil || s.busy(ring) {
			continue
		}
		dest := outer.FloorHeight()

		s.occupy(ring, &Floor{
			Sec:       ring,
			Type:      FloorRaiseDonut,
			Direction: Up,
			Speed:     FloorSpeed * .5,
			Material:  outer.Floor().Material,
			Dest:      dest,
		})
		s.occupy(sec, &Floor{
			Sec:       sec,
			Type:      FloorLower,
			Direction: Down,
			Speed:     FloorSpeed * .5,
			Dest:      dest,
		})
	}
	return rtn
}

// firstNeighbor returns the sector across the first two sided line of sec
// that leads somewhere other than sec or skip.
func firstNeighbor(sec, skip *world.Sector) *world.Sector {
	for _, l := range sec.Lines {
		o := l.NextSector(sec)
		if o != nil && o != sec && o != skip {
			return o
		}
	}
	return nil
}

// FloorCrushStop removes every crushing floor (Hexen).
func (s *Sim) FloorCrushStop() int {
	found := 0
	s.Thinkers.ForEach(nil, func(id thinker.ID, t Thinker) bool {
		if f, ok := t.(*Floor); ok && f.Type == FloorRaiseCrush {
			s.stopSequence(f.Sec)
			s.finish(id, f.Sec)
			found = 1
		}
		return true
	})
	return found
}
