package specials

import "github.com/stuarthighley/doomfx/world"

// Light effect timings, in ticks, and glow step in light levels per tick.
const (
	GlowSpeed    = 8
	StrobeBright = 5
	FastDark     = 15
	SlowDark     = 35
)

func level(l int) float64 {
	return float64(l) / 255
}

// FireFlicker flickers a sector's light like a fire.
type FireFlicker struct {
	Sec      *world.Sector
	Count    int
	MaxLight float64
	MinLight float64
}

func (s *Sim) thinkFireFlicker(f *FireFlicker) {
	f.Count--
	if f.Count != 0 {
		return
	}
	amount := level((s.random() & 3) * 16)
	if f.Sec.LightLevel-amount < f.MinLight {
		f.Sec.LightLevel = f.MinLight
	} else {
		f.Sec.LightLevel = f.MaxLight - amount
	}
	f.Count = 4
}

// SpawnFireFlicker starts a fire flicker in sec.
func (s *Sim) SpawnFireFlicker(sec *world.Sector) {
	sec.Special = 0
	s.Thinkers.Add(&FireFlicker{
		Sec:      sec,
		Count:    4,
		MaxLight: sec.LightLevel,
		MinLight: sec.MinSurroundingLight(sec.LightLevel) + level(16),
	})
}

// LightFlash randomly flashes a sector between two light levels.
type LightFlash struct {
	Sec      *world.Sector
	Count    int
	MaxLight float64
	MinLight float64
	MaxTime  int
	MinTime  int
}

func (s *Sim) thinkLightFlash(f *LightFlash) {
	f.Count--
	if f.Count != 0 {
		return
	}
	if f.Sec.LightLevel == f.MaxLight {
		f.Sec.LightLevel = f.MinLight
		f.Count = (s.random() & f.MinTime) + 1
	} else {
		f.Sec.LightLevel = f.MaxLight
		f.Count = (s.random() & f.MaxTime) + 1
	}
}

// SpawnLightFlash starts random flashing in sec.
func (s *Sim) SpawnLightFlash(sec *world.Sector) {
	sec.Special = 0
	f := &LightFlash{
		Sec:      sec,
		MaxLight: sec.LightLevel,
		MinLight: sec.MinSurroundingLight(sec.LightLevel),
		MaxTime:  64,
		MinTime:  7,
	}
	f.Count = (s.random() & f.MaxTime) + 1
	s.Thinkers.Add(f)
}

// Strobe alternates a sector's light on fixed bright and dark times.
type Strobe struct {
	Sec        *world.Sector
	Count      int
	MinLight   float64
	MaxLight   float64
	DarkTime   int
	BrightTime int
}

func (s *Sim) thinkStrobe(f *Strobe) {
	f.Count--
	if f.Count != 0 {
		return
	}
	if f.Sec.LightLevel == f.MinLight {
		f.Sec.LightLevel = f.MaxLight
		f.Count = f.BrightTime
	} else {
		f.Sec.LightLevel = f.MinLight
		f.Count = f.DarkTime
	}
}

// SpawnStrobeFlash starts a strobe in sec that stays dark for darkTime
// ticks. Strobes in sync all start on the next tick.
func (s *Sim) SpawnStrobeFlash(sec *world.Sector, darkTime int, inSync bool) {
	f := &Strobe{
		Sec:        sec,
		DarkTime:   darkTime,
		BrightTime: StrobeBright,
		MaxLight:   sec.LightLevel,
		MinLight:   sec.MinSurroundingLight(sec.LightLevel),
	}
	if f.MinLight == f.MaxLight {
		f.MinLight = 0
	}
	sec.Special = 0
	if inSync {
		f.Count = 1
	} else {
		f.Count = (s.random() & 7) + 1
	}
	s.Thinkers.Add(f)
}

// StartLightStrobing starts slow strobes in the idle sectors tagged by
// line.
func (s *Sim) StartLightStrobing(line *world.Line) {
	for _, sec := range s.Map.SectorsByTag(line.Tag) {
		if s.busy(sec) {
			continue
		}
		s.SpawnStrobeFlash(sec, SlowDark, false)
	}
}

// TurnTagLightsOff sets each tagged sector to the darkest light around it.
func (s *Sim) TurnTagLightsOff(line *world.Line) {
	for _, sec := range s.Map.SectorsByTag(line.Tag) {
		sec.LightLevel = sec.MinSurroundingLight(sec.LightLevel)
	}
}

// LightTurnOn sets each tagged sector's light to bright, or to the
// brightest light around it when bright is zero.
func (s *Sim) LightTurnOn(line *world.Line, bright float64) {
	for _, sec := range s.Map.SectorsByTag(line.Tag) {
		l := bright
		if bright == 0 {
			l = max(sec.LightLevel, sec.MaxSurroundingLight())
		}
		sec.LightLevel = l
	}
}

// Glow ramps a sector's light up and down between two levels.
type Glow struct {
	Sec       *world.Sector
	MinLight  float64
	MaxLight  float64
	Direction int
}

func (s *Sim) thinkGlow(g *Glow) {
	l := g.Sec.LightLevel
	delta := level(GlowSpeed)
	switch g.Direction {
	case Down:
		l -= delta
		if l <= g.MinLight {
			l += delta
			g.Direction = Up
		}
	case Up:
		l += delta
		if l >= g.MaxLight {
			l -= delta
			g.Direction = Down
		}
	default:
		fatalf("Glow", "invalid direction %v in sector %v", g.Direction, g.Sec.Index)
	}
	g.Sec.LightLevel = l
}

// SpawnGlowingLight starts a glow in sec.
func (s *Sim) SpawnGlowingLight(sec *world.Sector) {
	s.Thinkers.Add(&Glow{
		Sec:       sec,
		MinLight:  sec.MinSurroundingLight(sec.LightLevel),
		MaxLight:  sec.LightLevel,
		Direction: Down,
	})
	sec.Special = 0
}
