package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

const (
	PlatSpeed = 1
	PlatWait  = 3 // Seconds
)

type PlatType int

const (
	PlatPerpetualRaise PlatType = iota
	PlatDownWaitUpStay
	PlatBlazeDWUS
	PlatRaiseAndChange
	PlatRaiseToNearestAndChange
)

type PlatStatus int

const (
	PlatUp PlatStatus = iota
	PlatDown
	PlatWaiting
)

// Plat is a platform lift moving a floor between Low and High.
type Plat struct {
	Sec    *world.Sector
	Type   PlatType
	Speed  float64
	Low    float64
	High   float64
	Wait   int
	Count  int
	Status PlatStatus
	Crush  bool
	Tag    int
}

func (s *Sim) thinkPlat(id thinker.ID, p *Plat) {
	sec := p.Sec
	switch p.Status {
	case PlatUp:
		res := s.MovePlane(sec, p.Speed, p.High, p.Crush, world.Floor, Up)
		if s.Game == Heretic && s.Time&31 == 0 {
			s.sectorSound(sec, world.Floor, SfxPlaneMove)
		}
		if p.Type == PlatRaiseAndChange || p.Type == PlatRaiseToNearestAndChange {
			if s.Time&7 == 0 {
				s.sectorSound(sec, world.Floor, SfxPlaneMove)
			}
		}
		if res == Crushed && !p.Crush {
			p.Count = p.Wait
			p.Status = PlatDown
			s.sectorSound(sec, world.Floor, SfxPlatStart)
			return
		}
		if res != PastDestination {
			return
		}
		p.Count = p.Wait
		p.Status = PlatWaiting
		s.sectorSound(sec, world.Floor, SfxPlatStop)
		switch p.Type {
		case PlatBlazeDWUS, PlatDownWaitUpStay, PlatRaiseAndChange, PlatRaiseToNearestAndChange:
			s.finish(id, sec)
		}

	case PlatDown:
		res := s.MovePlane(sec, p.Speed, p.Low, false, world.Floor, Down)
		if res == PastDestination {
			p.Count = p.Wait
			p.Status = PlatWaiting
			s.sectorSound(sec, world.Floor, SfxPlatStop)
		} else if s.Game == Heretic && s.Time&31 == 0 {
			s.sectorSound(sec, world.Floor, SfxPlaneMove)
		}

	case PlatWaiting:
		p.Count--
		if p.Count != 0 {
			return
		}
		if sec.FloorHeight() == p.Low {
			p.Status = PlatUp
		} else {
			p.Status = PlatDown
		}
		s.sectorSound(sec, world.Floor, SfxPlatStart)
	}
}

// DoPlat starts a platform in every idle sector tagged by line. amount is
// the raise of PlatRaiseAndChange. Stopped perpetual platforms of the tag
// start again.
func (s *Sim) DoPlat(line *world.Line, typ PlatType, amount float64) int {
	tag := s.tag(line)
	if typ == PlatPerpetualRaise {
		s.PlatActivate(tag)
	}

	rtn := 0
	for _, sec := range s.Map.SectorsByTag(tag) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		p := &Plat{Sec: sec, Type: typ, Tag: tag}
		s.occupy(sec, p)

		floor := sec.FloorHeight()
		switch typ {
		case PlatRaiseToNearestAndChange:
			p.Speed = PlatSpeed * .5
			if front := line.FrontSector(); front != nil {
				sec.Floor().Material = front.Floor().Material
			}
			p.High = sec.NextHighestFloor(floor)
			p.Status = PlatUp
			sec.Special = 0 // No more damage
			s.sectorSound(sec, world.Floor, SfxPlaneMove)
		case PlatRaiseAndChange:
			p.Speed = PlatSpeed * .5
			if front := line.FrontSector(); front != nil {
				sec.Floor().Material = front.Floor().Material
			}
			p.High = floor + amount
			p.Status = PlatUp
			s.sectorSound(sec, world.Floor, SfxPlaneMove)
		case PlatDownWaitUpStay, PlatBlazeDWUS:
			p.Speed = PlatSpeed * 4
			if typ == PlatBlazeDWUS {
				p.Speed = PlatSpeed * 8
			}
			p.Low = min(sec.LowestFloorSurrounding(), floor)
			p.High = floor
			p.Wait = TicRate * PlatWait
			p.Status = PlatDown
			s.sectorSound(sec, world.Floor, SfxPlatStart)
		case PlatPerpetualRaise:
			p.Speed = PlatSpeed
			p.Low = min(sec.LowestFloorSurrounding(), floor)
			p.High = max(sec.HighestFloorSurrounding(), floor)
			p.Wait = TicRate * PlatWait
			p.Status = PlatStatus(s.random() & 1)
			s.sectorSound(sec, world.Floor, SfxPlatStart)
		default:
			fatalf("DoPlat", "unknown plat type %v", typ)
		}
	}
	return rtn
}

// StopPlat pauses the moving platforms tagged by line.
func (s *Sim) StopPlat(line *world.Line) int {
	s.PlatDeactivate(s.tag(line))
	return 1
}

// PlatActivate restarts the paused platforms with the given tag. It returns
// how many were restarted.
func (s *Sim) PlatActivate(tag int) int {
	return s.setPlatStasis(tag, false)
}

// PlatDeactivate pauses the platforms with the given tag. They resume in
// the same state when activated again.
func (s *Sim) PlatDeactivate(tag int) int {
	return s.setPlatStasis(tag, true)
}

func (s *Sim) setPlatStasis(tag int, on bool) int {
	count := 0
	s.Thinkers.ForEach(isPlat, func(id thinker.ID, t Thinker) bool {
		if t.(*Plat).Tag == tag && s.Thinkers.InStasis(id) != on {
			s.Thinkers.SetStasis(id, on)
			count++
		}
		return true
	})
	return count
}

func isPlat(t Thinker) bool {
	_, ok := t.(*Plat)
	return ok
}
