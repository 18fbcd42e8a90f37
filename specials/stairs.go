package specials

import "github.com/stuarthighley/doomfx/world"

type StairType int

const (
	StairsBuild8  StairType = iota // 8 unit steps, slow
	StairsTurbo16                  // 16 unit steps, fast
	StairsBuild16                  // Heretic 16 unit steps
)

// BuildStairs raises each tagged sector by one step and spreads to the
// chain of sectors behind it that share its floor material, each one step
// higher than the last.
func (s *Sim) BuildStairs(line *world.Line, typ StairType) int {
	var speed, size float64
	switch typ {
	case StairsBuild8:
		speed, size = FloorSpeed*.25, 8
	case StairsTurbo16:
		speed, size = FloorSpeed*4, 16
	case StairsBuild16:
		speed, size = FloorSpeed, 16
	}
	fType := FloorRaise
	if s.Game == Heretic {
		speed = FloorSpeed
		fType = FloorBuildStep
	}

	rtn := 0
	for _, sec := range s.Map.SectorsByTag(line.Tag) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		height := sec.FloorHeight() + size
		s.occupy(sec, &Floor{Sec: sec, Type: fType, Direction: Up, Speed: speed, Dest: height})

		mat := sec.Floor().Material
		for base := sec; ; {
			next := s.nextStair(base, mat)
			if next == nil {
				break
			}
			height += size
			s.occupy(next, &Floor{Sec: next, Type: fType, Direction: Up, Speed: speed, Dest: height})
			base = next
		}
	}
	return rtn
}

// nextStair finds the idle sector behind a line facing out of base whose
// floor uses mat.
func (s *Sim) nextStair(base *world.Sector, mat *world.Material) *world.Sector {
	for _, l := range base.Lines {
		if l.FrontSector() != base {
			continue
		}
		back := l.BackSector()
		if back == nil || back.Floor().Material != mat || s.busy(back) {
			continue
		}
		return back
	}
	return nil
}

// HexenStairs selects how Hexen stair steps move.
type HexenStairs int

const (
	StairsNormal HexenStairs = iota // Every step at the same speed
	StairsSync                      // Steps arrive together
)

const (
	stairSectorType = 26 // Sector specials 26 and 27 mark alternating steps
	// The step queue is breadth first and may hold this many pending
	// sectors. More means the map branches too much.
	maxStairBranches = 31
)

type stairStep struct {
	sec    *world.Sector
	typ    int
	height float64
}

type stairBuild struct {
	stepDelta   float64
	direction   int
	speed       float64
	material    *world.Material
	startHeight float64
	stairs      HexenStairs
	delay       int
	resetDelay  int

	queue []stairStep
	valid int
}

func (b *stairBuild) push(st stairStep) {
	if len(b.queue) >= maxStairBranches {
		fatalf("BuildStairsHexen", "too many branches located")
	}
	b.queue = append(b.queue, st)
}

func (b *stairBuild) pop() (stairStep, bool) {
	if len(b.queue) == 0 {
		return stairStep{}, false
	}
	st := b.queue[0]
	b.queue = b.queue[1:]
	return st, true
}

// BuildStairsHexen builds stairs from the tagged sectors outwards through
// neighbours marked with the alternating stair sector specials. args are
// tag, speed, step height, delay and reset delay.
func (s *Sim) BuildStairsHexen(args [5]int, direction int, stairs HexenStairs) int {
	b := &stairBuild{
		direction:  direction,
		stepDelta:  float64(direction * args[2]),
		speed:      argSpeed(args[1]),
		delay:      args[3],
		resetDelay: args[4],
		stairs:     stairs,
		valid:      s.Map.NewValidCount(),
	}

	secs := s.Map.SectorsByTag(args[0])
	if len(secs) == 0 {
		return 0
	}
	for _, sec := range secs {
		b.material = sec.Floor().Material
		b.startHeight = sec.FloorHeight()
		if s.busy(sec) {
			continue
		}
		b.push(stairStep{sec: sec, typ: 0, height: sec.FloorHeight()})
		sec.Special = 0
	}
	for {
		st, ok := b.pop()
		if !ok {
			break
		}
		s.stairStep(b, st)
	}
	return 1
}

func (s *Sim) stairStep(b *stairBuild, st stairStep) {
	sec := st.sec
	height := st.height + b.stepDelta

	f := &Floor{Sec: sec, Type: FloorBuildStep, Direction: b.direction, Dest: height}
	switch b.stairs {
	case StairsNormal:
		f.Speed = b.speed
		if b.delay != 0 {
			f.DelayTotal = b.delay
			f.StairsDelayHeight = sec.FloorHeight() + b.stepDelta
			f.StairsDelayHeightDelta = b.stepDelta
		}
		f.ResetDelay = b.resetDelay
		f.ResetDelayCount = b.resetDelay
		f.ResetHeight = sec.FloorHeight()
	case StairsSync:
		f.Speed = b.speed * ((height - b.startHeight) / b.stepDelta)
		f.ResetDelay = b.delay
		f.ResetDelayCount = b.delay
		f.ResetHeight = sec.FloorHeight()
	}
	s.occupy(sec, f)
	s.startSequence(sec, SeqPlatform)

	for _, l := range sec.Lines {
		if l.FrontSector() == nil || l.BackSector() == nil {
			continue
		}
		for _, o := range [2]*world.Sector{l.FrontSector(), l.BackSector()} {
			if o.Special == st.typ+stairSectorType && !s.busy(o) &&
				o.Floor().Material == b.material && o.ValidCount != b.valid {
				b.push(stairStep{sec: o, typ: st.typ ^ 1, height: height})
				o.ValidCount = b.valid
			}
		}
	}
}
