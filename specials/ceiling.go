package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

const CeilingSpeed = 1

type CeilingType int

const (
	CeilingLowerToFloor CeilingType = iota
	CeilingRaiseToHighest
	CeilingLowerAndCrush
	CeilingCrushAndRaise
	CeilingFastCrushAndRaise
	CeilingSilentCrushAndRaise

	// Hexen, taking their amounts from the line arguments.
	CeilingCrushRaiseAndStay
	CeilingLowerByValue
	CeilingRaiseByValue
	CeilingMoveToValueMul8
)

// Ceiling moves a sector's ceiling, possibly back and forth as a crusher.
type Ceiling struct {
	Sec       *world.Sector
	Type      CeilingType
	Bottom    float64
	Top       float64
	Speed     float64
	Crush     bool
	Direction int
	OldDir    int // Direction before the last deactivation
	Tag       int
}

func (t CeilingType) crusher() bool {
	switch t {
	case CeilingCrushAndRaise, CeilingFastCrushAndRaise, CeilingSilentCrushAndRaise:
		return true
	}
	return false
}

func (s *Sim) thinkCeiling(id thinker.ID, c *Ceiling) {
	sec := c.Sec
	moveSound := func() {
		if s.Time&7 == 0 && c.Type != CeilingSilentCrushAndRaise {
			s.sectorSound(sec, world.Ceiling, s.planeMoveSound())
		}
	}
	stopSound := func() {
		if s.Game == Doom {
			s.sectorSound(sec, world.Ceiling, SfxPlatStop)
		}
	}

	switch c.Direction {
	case Up:
		res := s.MovePlane(sec, c.Speed, c.Top, false, world.Ceiling, Up)
		moveSound()
		if res != PastDestination {
			return
		}
		s.stopSequence(sec)
		if s.Game == Hexen {
			if c.Type == CeilingCrushAndRaise {
				c.Direction = Down
				c.Speed *= 2
				return
			}
			s.finish(id, sec)
			return
		}
		switch c.Type {
		case CeilingRaiseToHighest:
			s.finish(id, sec)
		case CeilingSilentCrushAndRaise:
			stopSound()
			c.Direction = Down
		case CeilingFastCrushAndRaise, CeilingCrushAndRaise:
			c.Direction = Down
		}

	case Down:
		res := s.MovePlane(sec, c.Speed, c.Bottom, c.Crush, world.Ceiling, Down)
		moveSound()
		switch res {
		case PastDestination:
			s.stopSequence(sec)
			if s.Game == Hexen {
				if c.Type == CeilingCrushAndRaise || c.Type == CeilingCrushRaiseAndStay {
					c.Speed *= .5
					c.Direction = Up
					return
				}
				s.finish(id, sec)
				return
			}
			switch c.Type {
			case CeilingSilentCrushAndRaise:
				stopSound()
				c.Speed = CeilingSpeed
				c.Direction = Up
			case CeilingCrushAndRaise:
				c.Speed = CeilingSpeed
				c.Direction = Up
			case CeilingFastCrushAndRaise:
				c.Direction = Up
			case CeilingLowerAndCrush, CeilingLowerToFloor:
				s.finish(id, sec)
			}
		case Crushed:
			if s.Game == Hexen {
				return
			}
			switch c.Type {
			case CeilingSilentCrushAndRaise, CeilingCrushAndRaise, CeilingLowerAndCrush:
				c.Speed = CeilingSpeed * .125
			}
		}
	}
}

// DoCeiling starts a ceiling mover in every idle sector tagged by line.
// Crushers of the same tag that were stopped start again. It returns 1 if
// anything started.
func (s *Sim) DoCeiling(line *world.Line, typ CeilingType) int {
	tag := s.tag(line)
	speed := float64(CeilingSpeed)
	reactivated := 0
	if s.Game == Hexen {
		speed = argSpeed(line.Args[1])
	} else if typ.crusher() {
		reactivated = s.CeilingActivate(tag)
	}

	rtn := 0
	for _, sec := range s.Map.SectorsByTag(tag) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		c := &Ceiling{Sec: sec, Type: typ, Speed: speed, Tag: sec.Tag}
		s.occupy(sec, c)

		switch typ {
		case CeilingFastCrushAndRaise:
			c.Crush = true
			c.Top = sec.CeilingHeight()
			c.Bottom = sec.FloorHeight() + 8
			c.Direction = Down
			c.Speed *= 2
		case CeilingCrushRaiseAndStay:
			c.Crush = line.Args[2] != 0
			c.Top = sec.CeilingHeight()
			c.Bottom = sec.FloorHeight() + 8
			c.Direction = Down
		case CeilingCrushAndRaise, CeilingSilentCrushAndRaise:
			c.Crush = true
			if s.Game == Hexen {
				c.Crush = line.Args[2] != 0
			}
			c.Top = sec.CeilingHeight()
			c.Bottom = sec.FloorHeight() + 8
			c.Direction = Down
		case CeilingLowerAndCrush:
			// Only Hexen's version actually crushes
			if s.Game == Hexen {
				c.Crush = line.Args[2] != 0
			}
			c.Bottom = sec.FloorHeight() + 8
			c.Direction = Down
		case CeilingLowerToFloor:
			c.Bottom = sec.FloorHeight()
			c.Direction = Down
		case CeilingRaiseToHighest:
			c.Top = sec.HighestCeilingSurrounding()
			c.Direction = Up
		case CeilingLowerByValue:
			c.Bottom = sec.CeilingHeight() - float64(line.Args[2])
			c.Direction = Down
		case CeilingRaiseByValue:
			c.Top = sec.CeilingHeight() + float64(line.Args[2])
			c.Direction = Up
		case CeilingMoveToValueMul8:
			dest := float64(line.Args[2]) * 8
			if line.Args[3] != 0 {
				dest = -dest
			}
			if sec.CeilingHeight() <= dest {
				c.Direction = Up
				c.Top = dest
				if sec.CeilingHeight() == dest {
					rtn = 0
				}
			} else {
				c.Direction = Down
				c.Bottom = dest
			}
		default:
			fatalf("DoCeiling", "unknown ceiling type %v", typ)
		}
		if rtn != 0 {
			s.startSequence(sec, SeqPlatform)
		}
	}
	if reactivated > 0 {
		return 1
	}
	return rtn
}

// CeilingActivate restarts the stopped ceilings with the given tag. It
// returns how many were restarted.
func (s *Sim) CeilingActivate(tag int) int {
	count := 0
	s.Thinkers.ForEach(isCeiling, func(id thinker.ID, t Thinker) bool {
		c := t.(*Ceiling)
		if c.Tag == tag && s.Thinkers.InStasis(id) {
			c.Direction = c.OldDir
			s.Thinkers.SetStasis(id, false)
			count++
		}
		return true
	})
	return count
}

// CeilingDeactivate stops the moving ceilings with the given tag. Doom
// and Heretic ceilings are paused and can be restarted; a Hexen ceiling
// is destroyed.
func (s *Sim) CeilingDeactivate(tag int) int {
	count := 0
	s.Thinkers.ForEach(isCeiling, func(id thinker.ID, t Thinker) bool {
		c := t.(*Ceiling)
		if c.Tag != tag {
			return true
		}
		if s.Game == Hexen {
			s.stopSequence(c.Sec)
			s.finish(id, c.Sec)
			count++
			return false
		}
		if !s.Thinkers.InStasis(id) {
			c.OldDir = c.Direction
			s.Thinkers.SetStasis(id, true)
			count++
		}
		return true
	})
	return count
}

func isCeiling(t Thinker) bool {
	_, ok := t.(*Ceiling)
	return ok
}
