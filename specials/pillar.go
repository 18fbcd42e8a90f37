package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

// Pillar moves a sector's floor and ceiling at the same time, with speeds
// chosen so that both arrive together.
type Pillar struct {
	Sec          *world.Sector
	FloorSpeed   float64
	CeilingSpeed float64
	FloorDest    float64
	CeilingDest  float64
	Direction    int // Of the floor; the ceiling moves the other way
	Crush        bool
}

func (s *Sim) thinkPillar(id thinker.ID, p *Pillar) {
	r1 := s.MovePlane(p.Sec, p.FloorSpeed, p.FloorDest, p.Crush, world.Floor, p.Direction)
	r2 := s.MovePlane(p.Sec, p.CeilingSpeed, p.CeilingDest, p.Crush, world.Ceiling, -p.Direction)
	if r1 == PastDestination && r2 == PastDestination {
		s.stopSequence(p.Sec)
		s.finish(id, p.Sec)
	}
}

// BuildPillar closes the tagged sectors by bringing floor and ceiling
// together. args are tag, speed and the height above the floor where they
// meet; zero meets in the middle. crush makes the pillar crush with the
// damage in args[3].
func (s *Sim) BuildPillar(args [5]int, crush bool) int {
	rtn := 0
	for _, sec := range s.Map.SectorsByTag(args[0]) {
		if s.busy(sec) {
			continue
		}
		floor, ceil := sec.FloorHeight(), sec.CeilingHeight()
		if floor == ceil {
			continue // Already closed
		}
		rtn = 1

		p := &Pillar{Sec: sec, Direction: Up, Crush: crush && args[3] != 0}
		speed := argSpeed(args[1])
		var meet float64
		if args[2] == 0 {
			meet = floor + (ceil-floor)*.5
			p.FloorSpeed, p.CeilingSpeed = speed, speed
		} else {
			meet = floor + float64(args[2])
			if meet-floor > ceil-meet {
				p.FloorSpeed = speed
				p.CeilingSpeed = scaledSpeed(ceil-meet, meet-floor, speed)
			} else {
				p.CeilingSpeed = speed
				p.FloorSpeed = scaledSpeed(meet-floor, ceil-meet, speed)
			}
		}
		p.FloorDest, p.CeilingDest = meet, meet
		s.occupy(sec, p)
		s.startSequence(sec, SeqPlatform)
	}
	return rtn
}

// OpenPillar opens closed tagged sectors. args are tag, speed, how far to
// lower the floor and how far to raise the ceiling; zero moves to the
// lowest surrounding floor and highest surrounding ceiling.
func (s *Sim) OpenPillar(args [5]int) int {
	rtn := 0
	for _, sec := range s.Map.SectorsByTag(args[0]) {
		if s.busy(sec) {
			continue
		}
		floor, ceil := sec.FloorHeight(), sec.CeilingHeight()
		if floor != ceil {
			continue // Not closed
		}
		rtn = 1

		p := &Pillar{Sec: sec, Direction: Down}
		if args[2] == 0 {
			p.FloorDest = sec.LowestFloorSurrounding()
		} else {
			p.FloorDest = floor - float64(args[2])
		}
		if args[3] == 0 {
			p.CeilingDest = sec.HighestCeilingSurrounding()
		} else {
			p.CeilingDest = ceil + float64(args[3])
		}

		speed := argSpeed(args[1])
		if floor-p.FloorDest >= p.CeilingDest-ceil {
			p.FloorSpeed = speed
			p.CeilingSpeed = scaledSpeed(ceil-p.CeilingDest, p.FloorDest-floor, speed)
		} else {
			p.CeilingSpeed = speed
			p.FloorSpeed = scaledSpeed(p.FloorDest-floor, ceil-p.CeilingDest, speed)
		}
		s.occupy(sec, p)
		s.startSequence(sec, SeqPlatform)
	}
	return rtn
}

// scaledSpeed returns the speed covering dist in the time speed covers
// ref.
func scaledSpeed(dist, ref, speed float64) float64 {
	if ref == 0 {
		return speed
	}
	return dist * speed / ref
}
