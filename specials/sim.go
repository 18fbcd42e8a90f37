// Package specials runs the time varying parts of a map: doors, floors,
// ceilings, platforms, pillars, waggling floors and light effects.
//
// All per-map mutable state lives in a Sim. Movers are created by the
// activation methods (DoDoor, DoFloor, DoCeiling, ...) and advanced once
// per game tick by Tick. A sector is moved by at most one mover at a time;
// activating a sector that is already moving does nothing.
package specials

import (
	"fmt"

	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

// TicRate is the number of game ticks per second.
const TicRate = 35

// Game selects which game's rules the movers follow.
type Game int

const (
	Doom Game = iota
	Heretic
	Hexen
)

func (g Game) String() string {
	switch g {
	case Heretic:
		return "heretic"
	case Hexen:
		return "hexen"
	}
	return "doom"
}

// ParseGame returns the Game named s.
func ParseGame(s string) (Game, error) {
	switch s {
	case "doom", "":
		return Doom, nil
	case "heretic":
		return Heretic, nil
	case "hexen":
		return Hexen, nil
	}
	return Doom, fmt.Errorf("unknown game %q", s)
}

// Compat switches between the original games' behaviour and corrected
// behaviour where the two differ.
type Compat struct {
	// Blazing doors play their closing sound again when they land.
	DoubleBlazeCloseSound bool
	// A crushed blazing door reopens with the normal door sound.
	PlainReopenSound bool
}

// DefaultCompat matches the original games.
var DefaultCompat = Compat{
	DoubleBlazeCloseSound: true,
	PlainReopenSound:      true,
}

// Options configure a Sim.
type Options struct {
	Game   Game
	Seed   int // Starting index into the random table
	Compat Compat
	Sound  SoundSink

	// Validator rechecks sector contents after a plane moves. Defaults to
	// the map itself.
	Validator world.SectorValidator

	// TagFinished is called when a Hexen mover finishes, for the script
	// interpreter waiting on the tag.
	TagFinished func(tag int)
}

// Sim is the mover state of one loaded map.
type Sim struct {
	Map      *world.Map
	Thinkers *thinker.Registry[Thinker]
	Game     Game
	Compat   Compat
	Sound    SoundSink
	Time     int // Ticks since the map was loaded

	validator   world.SectorValidator
	tagFinished func(tag int)
	rnd         Random
}

// New returns the simulation state for m.
func New(m *world.Map, opts Options) *Sim {
	s := &Sim{
		Map:         m,
		Thinkers:    thinker.New[Thinker](),
		Game:        opts.Game,
		Compat:      opts.Compat,
		Sound:       opts.Sound,
		validator:   opts.Validator,
		tagFinished: opts.TagFinished,
		rnd:         Random{Index: opts.Seed},
	}
	if s.Sound == nil {
		s.Sound = Silent{}
	}
	if s.validator == nil {
		s.validator = m
	}
	return s
}

// Random returns the state of the sim's random number generator.
func (s *Sim) Random() *Random {
	return &s.rnd
}

// FatalError is raised when the map or the simulation is in a state the
// movers cannot continue from. Tick and Do return it.
type FatalError struct {
	Op  string
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Msg)
}

func fatalf(op, format string, args ...any) {
	panic(&FatalError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

func recoverFatal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if fe, ok := r.(*FatalError); ok {
		logger.Printf("Aborted: %v", fe)
		*err = fe
		return
	}
	panic(r)
}

// Tick advances every thinker that is not in stasis by one game tick.
// A fatal error aborts the rest of the tick.
func (s *Sim) Tick() (err error) {
	defer recoverFatal(&err)
	s.Thinkers.Run(s.think)
	s.Time++
	s.Map.Tic = s.Time
	return nil
}

// Do runs fn, turning a fatal error raised inside it into an error.
func (s *Sim) Do(fn func(*Sim)) (err error) {
	defer recoverFatal(&err)
	fn(s)
	return nil
}

func (s *Sim) think(id thinker.ID, t Thinker) {
	switch t := t.(type) {
	case *Door:
		s.thinkDoor(id, t)
	case *Floor:
		s.thinkFloor(id, t)
	case *Ceiling:
		s.thinkCeiling(id, t)
	case *Plat:
		s.thinkPlat(id, t)
	case *Pillar:
		s.thinkPillar(id, t)
	case *Waggle:
		s.thinkWaggle(id, t)
	case *FireFlicker:
		s.thinkFireFlicker(t)
	case *LightFlash:
		s.thinkLightFlash(t)
	case *Strobe:
		s.thinkStrobe(t)
	case *Glow:
		s.thinkGlow(t)
	case *Light:
		s.thinkLight(id, t)
	case *Phase:
		s.thinkPhase(t)
	default:
		fatalf("Tick", "unknown thinker %T", t)
	}
}

// tag returns the sector tag a line activates. Hexen lines carry it in
// their first argument.
func (s *Sim) tag(line *world.Line) int {
	if s.Game == Hexen {
		return line.Args[0]
	}
	return line.Tag
}

// argSpeed converts a Hexen speed argument to units per tick.
func argSpeed(arg int) float64 {
	return float64(arg) / 8
}

// occupy adds a plane mover and makes it the owner of sec.
func (s *Sim) occupy(sec *world.Sector, t Thinker) thinker.ID {
	if !sec.SpecialData.IsZero() && s.Thinkers.Live(sec.SpecialData) {
		fatalf("occupy", "sector %v already moved by %v", sec.Index, sec.SpecialData)
	}
	id := s.Thinkers.Add(t)
	sec.SpecialData = id
	return id
}

// busy reports whether a mover owns sec.
func (s *Sim) busy(sec *world.Sector) bool {
	return !sec.SpecialData.IsZero() && s.Thinkers.Live(sec.SpecialData)
}

// finish removes a plane mover and releases its sector.
func (s *Sim) finish(id thinker.ID, sec *world.Sector) {
	if sec.SpecialData == id {
		sec.SpecialData = thinker.ID{}
	}
	s.Thinkers.Remove(id)
	if s.Game == Hexen {
		s.finishTag(sec.Tag)
	}
}

func (s *Sim) finishTag(tag int) {
	if s.tagFinished != nil {
		s.tagFinished(tag)
	}
}

// Adopt puts a restored thinker back into the registry. Plane movers take
// ownership of their sector again.
func (s *Sim) Adopt(t Thinker, stasis bool) thinker.ID {
	var id thinker.ID
	if IsPlaneMover(t) {
		id = s.occupy(t.Sector(), t)
	} else {
		id = s.Thinkers.Add(t)
	}
	s.Thinkers.SetStasis(id, stasis)
	return id
}

// Reset removes every thinker and releases all sectors.
func (s *Sim) Reset() {
	s.Thinkers.Clear()
	for i := range s.Map.Sectors {
		s.Map.Sectors[i].SpecialData = thinker.ID{}
	}
}
