package world

// Key is a door key a body may carry.
type Key int

const (
	KeyBlue Key = iota
	KeyYellow
	KeyRed
	KeyGreen
)

func (k Key) String() string {
	switch k {
	case KeyBlue:
		return "blue"
	case KeyYellow:
		return "yellow"
	case KeyRed:
		return "red"
	case KeyGreen:
		return "green"
	}
	return "unknown"
}

// Body is something occupying a sector: a player, a monster, a corpse or
// a pickup. Moving planes squeeze bodies and may crush them.
type Body struct {
	Name    string
	Pos     Vec2
	Z       float64
	Radius  float64
	Height  float64
	Health  int
	Player  bool
	Solid   bool // Blocks planes
	OnFloor bool
	Keys    map[Key]bool
	Sector  *Sector

	// Messages shown to the body, players only.
	Messages []string

	sectorIndex int
}

// IsPlayer reports whether the body is controlled by a player.
func (b *Body) IsPlayer() bool { return b.Player }

// HasKey reports whether the body carries k.
func (b *Body) HasKey(k Key) bool { return b.Keys[k] }

// Message shows msg to a player. Other bodies ignore it.
func (b *Body) Message(msg string) {
	if b.Player {
		b.Messages = append(b.Messages, msg)
	}
}

// SectorValidator rechecks a sector's occupants after one of its planes
// moved. ChangeSector reports true when something no longer fits.
type SectorValidator interface {
	ChangeSector(sec *Sector, crush bool) bool
}

// Crush damage is dealt once every few tics.
const (
	CrushDamage = 10
	crushTicks  = 3
)

// AddBody places a copy of body on the floor of sec and returns it.
func (m *Map) AddBody(sec *Sector, body Body) *Body {
	b := new(Body)
	*b = body
	b.Sector = sec
	if b.Z <= sec.FloorHeight() {
		b.Z = sec.FloorHeight()
		b.OnFloor = true
	}
	sec.Bodies = append(sec.Bodies, b)
	return b
}

// ChangeSector implements SectorValidator for the bodies of a map. Bodies
// standing on the floor ride it, bodies hanging below the ceiling are
// pushed down. Corpses are flattened, solid bodies that still do not fit
// stop the move and take crush damage when crush is set.
func (m *Map) ChangeSector(sec *Sector, crush bool) bool {
	noFit := false
	for _, b := range sec.Bodies {
		if b.heightClip(sec) {
			continue
		}
		if b.Health <= 0 {
			// Gibbed
			b.Height = 0
			b.Radius = 0
			b.Solid = false
			continue
		}
		if !b.Solid {
			continue
		}
		noFit = true
		if crush && m.Tic&crushTicks == 0 {
			b.Health -= CrushDamage
			logger.Printf("Crushed %v in sector %v, health %v", b.Name, sec.Index, b.Health)
		}
	}
	return noFit
}

// heightClip moves the body with the planes and reports whether it fits.
func (b *Body) heightClip(sec *Sector) bool {
	floor, ceil := sec.FloorHeight(), sec.CeilingHeight()
	if b.OnFloor || b.Z < floor {
		b.Z = floor
		b.OnFloor = true
	} else if b.Z+b.Height > ceil {
		b.Z = max(ceil-b.Height, floor)
		b.OnFloor = b.Z == floor
	}
	return ceil-floor >= b.Height
}
