package specials

import "github.com/stuarthighley/doomfx/world"

// Result is the outcome of one MovePlane step.
type Result int

const (
	Ok Result = iota
	Crushed
	PastDestination
)

func (r Result) String() string {
	switch r {
	case Crushed:
		return "crushed"
	case PastDestination:
		return "pastdest"
	}
	return "ok"
}

// Directions of plane travel.
const (
	Down = -1
	Up   = 1
)

// MovePlane moves one plane of sec by at most speed towards dest. The
// plane's target and speed are published first so a renderer can
// interpolate. If the step reaches dest the plane lands on it exactly and
// the result is PastDestination. If the sector contents no longer fit the
// move is undone, except for a crushing plane closing in on the opposite
// plane, which keeps its height. Hexen undoes every blocked move.
func (s *Sim) MovePlane(sec *world.Sector, speed, dest float64, crush bool, plane world.PlaneID, direction int) Result {
	p := sec.Plane(plane)
	p.Target = dest
	p.Speed = speed

	last := p.Height
	rollback := func() {
		p.Height = last
		p.Target = last
		p.Speed = 0
		s.validator.ChangeSector(sec, crush)
	}

	var arrives bool
	switch direction {
	case Down:
		arrives = last-speed <= dest
	case Up:
		arrives = last+speed >= dest
	default:
		fatalf("MovePlane", "sector %v: bad direction %v", sec.Index, direction)
	}

	if arrives {
		p.Height = dest
		if s.validator.ChangeSector(sec, crush) {
			rollback()
		}
		p.Speed = 0
		return PastDestination
	}

	p.Height = last + speed*float64(direction)
	if !s.validator.ChangeSector(sec, crush) {
		return Ok
	}
	closing := (plane == world.Floor && direction == Up) || (plane == world.Ceiling && direction == Down)
	if crush && closing && s.Game != Hexen {
		return Crushed
	}
	rollback()
	return Crushed
}
