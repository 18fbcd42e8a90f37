package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

type LightType int

const (
	LightRaiseByValue LightType = iota
	LightLowerByValue
	LightChangeToValue
	LightFade
	LightGlow
	LightFlicker
	LightStrobe
)

// Light is a Hexen light effect. Value1 is the upper or destination
// level, Value2 the lower level. Fades and glows step by Delta each tick
// and go up while Dir is 1.
type Light struct {
	Sec    *world.Sector
	Type   LightType
	Value1 float64
	Value2 float64
	Delta  float64
	Dir    int
	Tics1  int // Strobe time at Value1
	Tics2  int // Strobe time at Value2
	Count  int
}

func clampLight(l float64) float64 {
	return min(max(l, 0), 1)
}

func (s *Sim) thinkLight(id thinker.ID, l *Light) {
	if l.Count > 0 {
		l.Count--
		return
	}
	sec := l.Sec
	switch l.Type {
	case LightFade:
		sec.LightLevel = clampLight(sec.LightLevel + l.Delta)
		if (l.Dir == 1 && sec.LightLevel >= l.Value1) || (l.Dir != 1 && sec.LightLevel <= l.Value1) {
			sec.LightLevel = l.Value1
			s.Thinkers.Remove(id)
		}
	case LightGlow:
		sec.LightLevel = clampLight(sec.LightLevel + l.Delta)
		if l.Dir == 1 {
			if sec.LightLevel >= l.Value1 {
				sec.LightLevel = l.Value1
				l.Delta = -l.Delta
				l.Dir = -1
			}
		} else if sec.LightLevel <= l.Value2 {
			sec.LightLevel = l.Value2
			l.Delta = -l.Delta
			l.Dir = 1
		}
	case LightFlicker:
		if sec.LightLevel == l.Value1 {
			sec.LightLevel = l.Value2
			l.Count = (s.random() & 7) + 1
		} else {
			sec.LightLevel = l.Value1
			l.Count = (s.random() & 31) + 1
		}
	case LightStrobe:
		if sec.LightLevel == l.Value1 {
			sec.LightLevel = l.Value2
			l.Count = l.Tics2
		} else {
			sec.LightLevel = l.Value1
			l.Count = l.Tics1
		}
	}
}

// SpawnLight applies a Hexen light special to the sectors tagged by
// args[0]. The other arguments depend on the type.
func (s *Sim) SpawnLight(args [5]int, typ LightType) bool {
	rtn := false
	for _, sec := range s.Map.SectorsByTag(args[0]) {
		rtn = true
		l := &Light{Sec: sec, Type: typ}
		think := true
		switch typ {
		case LightRaiseByValue:
			sec.LightLevel = clampLight(sec.LightLevel + level(args[1]))
			think = false
		case LightLowerByValue:
			sec.LightLevel = clampLight(sec.LightLevel - level(args[1]))
			think = false
		case LightChangeToValue:
			sec.LightLevel = clampLight(level(args[1]))
			think = false
		case LightFade:
			l.Value1 = level(args[1])
			l.Delta = s.lightStep(sec, args[1], args[2])
			l.Dir = lightDir(sec, l.Value1)
		case LightGlow:
			l.Value1 = level(args[1])
			l.Value2 = level(args[2])
			l.Delta = s.lightStep(sec, args[1], args[3])
			l.Dir = lightDir(sec, l.Value1)
		case LightFlicker:
			l.Value1 = level(args[1])
			l.Value2 = level(args[2])
			sec.LightLevel = l.Value1
			l.Count = (s.random() & 64) + 1
		case LightStrobe:
			l.Value1 = level(args[1])
			l.Value2 = level(args[2])
			l.Tics1 = args[3]
			l.Tics2 = args[4]
			l.Count = args[3]
			sec.LightLevel = l.Value1
		default:
			rtn = false
			think = false
		}
		if think {
			s.Thinkers.Add(l)
		}
	}
	return rtn
}

// lightStep returns the per tick change taking sec to level dest over
// tics ticks.
func (s *Sim) lightStep(sec *world.Sector, dest, tics int) float64 {
	if tics == 0 {
		tics = 1
	}
	cur := int(255 * sec.LightLevel)
	return level(dest-cur) / float64(tics)
}

func lightDir(sec *world.Sector, dest float64) int {
	if sec.LightLevel <= dest {
		return 1
	}
	return -1
}

// phaseTable is one cycle of a phased light, added to its base level.
var phaseTable = [64]float64{
	.5, .4375, .375, .3125, .25, .1875, .125, .125,
	.0625, .0625, .0625, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, .0625, .0625, .0625,
	.125, .125, .1875, .25, .3125, .375, .4375, .5,
}

// Phase cycles a sector's light through the phase table.
type Phase struct {
	Sec   *world.Sector
	Index int
	Base  float64
}

func (s *Sim) thinkPhase(p *Phase) {
	p.Index = (p.Index + 1) & 63
	p.Sec.LightLevel = p.Base + phaseTable[p.Index]
}

// SpawnPhasedLight starts a phased light in sec at the given table index,
// or at an index taken from the sector's light level when index is -1.
func (s *Sim) SpawnPhasedLight(sec *world.Sector, base float64, index int) {
	p := &Phase{Sec: sec, Base: base}
	if index == -1 {
		p.Index = int(255*sec.LightLevel) & 63
	} else {
		p.Index = index & 63
	}
	sec.LightLevel = p.Base + phaseTable[p.Index]
	sec.Special = 0
	s.Thinkers.Add(p)
}

// Hexen sector specials making up light sequences.
const (
	lightSequenceStart = 2
	lightSequence      = 3
	lightSequenceAlt   = 4
)

// SpawnLightSequence walks the chain of sectors starting at sec whose
// specials alternate between the two light sequence specials, and gives
// each a phased light with indices spread evenly around the table so a
// wave of light travels along the chain.
func (s *Sim) SpawnLightSequence(sec *world.Sector, indexStep int) {
	seq := lightSequence
	count := 1
	for cur := sec; cur != nil; {
		// Mark as visited so the search never backs up.
		cur.Special = lightSequenceStart
		var next *world.Sector
		cur.Neighbors(func(_ *world.Line, o *world.Sector) {
			if o.Special == seq {
				if seq == lightSequence {
					seq = lightSequenceAlt
				} else {
					seq = lightSequence
				}
				next = o
				count++
			}
		})
		cur = next
	}

	count *= indexStep
	index := 0.0
	delta := 64 / float64(count)
	base := sec.LightLevel
	for cur := sec; cur != nil; {
		if cur.LightLevel != 0 {
			base = cur.LightLevel
		}
		s.SpawnPhasedLight(cur, base, int(index))
		index += delta
		var next *world.Sector
		cur.Neighbors(func(_ *world.Line, o *world.Sector) {
			if o.Special == lightSequenceStart {
				next = o
			}
		})
		cur = next
	}
}
