package specials

import (
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/wad"
	"github.com/stuarthighley/doomfx/world"
)

const (
	DoorSpeed = 2
	DoorWait  = 150

	doorClearance    = 4 // Gap left between an open door and the ceiling around it
	closeIn30Tics    = 30 * TicRate
	raiseIn5MinsTics = 5 * 60 * TicRate
)

type DoorType int

const (
	DoorNormal DoorType = iota
	DoorClose30ThenOpen
	DoorClose
	DoorOpen
	DoorRaiseIn5Mins
	DoorBlazeRaise
	DoorBlazeOpen
	DoorBlazeClose
)

// DoorState is the direction of a door, or one of its waits.
type DoorState int

const (
	DoorClosing     DoorState = -1
	DoorWaiting     DoorState = 0
	DoorOpening     DoorState = 1
	DoorInitialWait DoorState = 2
)

// Door moves a sector's ceiling between its floor and the lowest
// surrounding ceiling.
type Door struct {
	Sec          *world.Sector
	Type         DoorType
	TopHeight    float64
	Speed        float64
	State        DoorState
	TopWait      int // Ticks to wait at the top
	TopCountdown int
}

func (d *Door) blazing() bool {
	return d.Type == DoorBlazeRaise || d.Type == DoorBlazeOpen || d.Type == DoorBlazeClose
}

func (s *Sim) thinkDoor(id thinker.ID, d *Door) {
	sec := d.Sec
	switch d.State {
	case DoorWaiting:
		d.TopCountdown--
		if d.TopCountdown != 0 {
			return
		}
		switch d.Type {
		case DoorBlazeRaise:
			d.State = DoorClosing
			s.sectorSound(sec, world.Ceiling, SfxBlazeClose)
		case DoorNormal:
			d.State = DoorClosing
			s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorClose))
			s.startSequence(sec, SeqDoor)
		case DoorClose30ThenOpen:
			d.State = DoorOpening
			s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorOpen))
		}

	case DoorInitialWait:
		d.TopCountdown--
		if d.TopCountdown != 0 {
			return
		}
		if d.Type == DoorRaiseIn5Mins {
			d.State = DoorOpening
			d.Type = DoorNormal
			s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorOpen))
		}

	case DoorClosing:
		res := s.MovePlane(sec, d.Speed, sec.FloorHeight(), false, world.Ceiling, Down)
		switch res {
		case PastDestination:
			s.stopSequence(sec)
			switch d.Type {
			case DoorBlazeRaise, DoorBlazeClose:
				s.finish(id, sec)
				if s.Compat.DoubleBlazeCloseSound {
					s.sectorSound(sec, world.Ceiling, SfxBlazeClose)
				}
			case DoorNormal, DoorClose:
				s.finish(id, sec)
			case DoorClose30ThenOpen:
				d.State = DoorWaiting
				d.TopCountdown = closeIn30Tics
			}
		case Crushed:
			switch d.Type {
			case DoorBlazeClose, DoorClose:
				// Does not go back up
			default:
				d.State = DoorOpening
				snd := SfxDoorOpen
				if d.blazing() && !s.Compat.PlainReopenSound {
					snd = SfxBlazeOpen
				}
				s.sectorSound(sec, world.Ceiling, s.doorSound(snd))
			}
		}

	case DoorOpening:
		res := s.MovePlane(sec, d.Speed, d.TopHeight, false, world.Ceiling, Up)
		if res != PastDestination {
			return
		}
		s.stopSequence(sec)
		switch d.Type {
		case DoorBlazeRaise, DoorNormal:
			d.State = DoorWaiting
			d.TopCountdown = d.TopWait
		case DoorClose30ThenOpen, DoorBlazeOpen, DoorOpen:
			s.finish(id, sec)
		}
	}
}

// doorSound maps door sounds for games that play them as sequences.
func (s *Sim) doorSound(snd Sound) Sound {
	if s.Game == Hexen {
		return SfxNone
	}
	return snd
}

func doorTop(sec *world.Sector) float64 {
	return sec.LowestCeilingSurrounding() - doorClearance
}

// DoDoor starts a door of the given type in every idle sector tagged by
// line. Hexen doors take their speed and wait from the line arguments.
// It returns 1 if any door started.
func (s *Sim) DoDoor(line *world.Line, typ DoorType) int {
	rtn := 0
	for _, sec := range s.Map.SectorsByTag(s.tag(line)) {
		if s.busy(sec) {
			continue
		}
		rtn = 1
		d := &Door{Sec: sec, Type: typ, TopWait: DoorWait, Speed: DoorSpeed}
		if s.Game == Hexen {
			d.Speed = argSpeed(line.Args[1])
			d.TopWait = line.Args[2]
		}
		s.occupy(sec, d)

		switch typ {
		case DoorBlazeClose:
			d.TopHeight = doorTop(sec)
			d.State = DoorClosing
			d.Speed = DoorSpeed * 4
			s.sectorSound(sec, world.Ceiling, SfxBlazeClose)
		case DoorClose:
			d.TopHeight = doorTop(sec)
			d.State = DoorClosing
			s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorClose))
		case DoorClose30ThenOpen:
			d.TopHeight = sec.CeilingHeight()
			d.State = DoorClosing
			s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorClose))
		case DoorBlazeRaise, DoorBlazeOpen:
			d.State = DoorOpening
			d.TopHeight = doorTop(sec)
			d.Speed = DoorSpeed * 4
			if d.TopHeight != sec.CeilingHeight() {
				s.sectorSound(sec, world.Ceiling, SfxBlazeOpen)
			}
		case DoorNormal, DoorOpen:
			d.State = DoorOpening
			d.TopHeight = doorTop(sec)
			if d.TopHeight != sec.CeilingHeight() {
				s.sectorSound(sec, world.Ceiling, s.doorSound(SfxDoorOpen))
			}
		}
		s.startSequence(sec, SeqDoor)
		logger.Printf("Door %v started in sector %v", typ, sec.Index)
	}
	return rtn
}

// keyLock describes the key a line type needs.
type keyLock struct {
	key    world.Key
	name   string
	remote bool // Activates something away from the line
}

func lockFor(special int) (keyLock, bool) {
	switch wad.LineType(special) {
	case wad.LineBlazeDoorBlueKey, wad.LineBlazeOpenBlueKey:
		return keyLock{world.KeyBlue, "blue", true}, true
	case wad.LineBlazeDoorRedKey, wad.LineBlazeOpenRedKey:
		return keyLock{world.KeyRed, "red", true}, true
	case wad.LineBlazeDoorYellowKey, wad.LineBlazeOpenYellowKey:
		return keyLock{world.KeyYellow, "yellow", true}, true
	case wad.LineDoorBlueKey, wad.LineDoorOpenBlueKey:
		return keyLock{world.KeyBlue, "blue", false}, true
	case wad.LineDoorYellowKey, wad.LineDoorOpenYellowKey:
		return keyLock{world.KeyYellow, "yellow", false}, true
	case wad.LineDoorRedKey, wad.LineDoorOpenRedKey:
		return keyLock{world.KeyRed, "red", false}, true
	}
	return keyLock{}, false
}

func (k keyLock) message() string {
	if k.remote {
		return "You need a " + k.name + " key to activate this object"
	}
	return "You need a " + k.name + " key to open this door"
}

// unlock checks that a can pass the lock on line. Failing players are told
// so and grunt.
func (s *Sim) unlock(line *world.Line, a Activator) bool {
	lock, ok := lockFor(line.Special)
	if !ok {
		return true
	}
	if a == nil || !a.IsPlayer() {
		return false
	}
	if a.HasKey(lock.key) {
		return true
	}
	a.Message(lock.message())
	s.Sound.ActorSound(a, SfxOof)
	return false
}

// DoLockedDoor starts the tagged doors of line if a has the key it needs.
func (s *Sim) DoLockedDoor(line *world.Line, typ DoorType, a Activator) int {
	if a == nil || !a.IsPlayer() {
		return 0
	}
	if !s.unlock(line, a) {
		return 0
	}
	return s.DoDoor(line, typ)
}

// VerticalDoor opens the door on the back of a line used by a. A door that
// is already moving reverses, unless it only opens.
func (s *Sim) VerticalDoor(line *world.Line, a Activator) bool {
	if s.Game != Hexen && !s.unlock(line, a) {
		return false
	}
	sec := line.BackSector()
	if sec == nil {
		logger.Printf("Door line %v has no back sector", line.Index)
		return false
	}

	if s.busy(sec) {
		if s.Game == Hexen {
			return false
		}
		t, _ := s.Thinkers.Get(sec.SpecialData)
		d, ok := t.(*Door)
		if !ok {
			return false
		}
		switch wad.LineType(line.Special) {
		case wad.LineDoorRaise, wad.LineDoorBlueKey, wad.LineDoorYellowKey, wad.LineDoorRedKey, wad.LineBlazeRaise:
			if d.State == DoorClosing {
				d.State = DoorOpening
			} else {
				if a == nil || !a.IsPlayer() {
					return false // Monsters never close doors
				}
				d.State = DoorClosing
			}
			return true
		}
		return false
	}

	d := &Door{Sec: sec, State: DoorOpening, Speed: DoorSpeed, TopWait: DoorWait, Type: DoorNormal}
	if s.Game == Hexen {
		d.Speed = argSpeed(line.Args[1])
		d.TopWait = line.Args[2]
		if line.Special == hexenDoorOpen {
			d.Type = DoorOpen
			line.Special = 0
		}
	} else {
		switch wad.LineType(line.Special) {
		case wad.LineBlazeRaise, wad.LineBlazeOpen:
			s.sectorSound(sec, world.Ceiling, SfxBlazeOpen)
		default:
			s.sectorSound(sec, world.Ceiling, SfxDoorOpen)
		}
		switch wad.LineType(line.Special) {
		case wad.LineDoorOpen, wad.LineDoorOpenBlueKey, wad.LineDoorOpenRedKey, wad.LineDoorOpenYellowKey:
			d.Type = DoorOpen
			line.Special = 0
		case wad.LineBlazeRaise:
			d.Type = DoorBlazeRaise
			d.Speed = DoorSpeed * 4
		case wad.LineBlazeOpen:
			d.Type = DoorBlazeOpen
			d.Speed = DoorSpeed * 4
			line.Special = 0
		}
	}
	d.TopHeight = doorTop(sec)
	s.occupy(sec, d)
	s.startSequence(sec, SeqDoor)
	return true
}

// Hexen line special of a manual door that stays open.
const hexenDoorOpen = 11

// SpawnDoorCloseIn30 makes the door in sec close after 30 seconds.
func (s *Sim) SpawnDoorCloseIn30(sec *world.Sector) {
	sec.Special = 0
	s.occupy(sec, &Door{
		Sec:          sec,
		State:        DoorWaiting,
		Type:         DoorNormal,
		Speed:        DoorSpeed,
		TopCountdown: closeIn30Tics,
	})
}

// SpawnDoorRaiseIn5Mins makes the closed door in sec open after five
// minutes.
func (s *Sim) SpawnDoorRaiseIn5Mins(sec *world.Sector) {
	sec.Special = 0
	s.occupy(sec, &Door{
		Sec:          sec,
		State:        DoorInitialWait,
		Type:         DoorRaiseIn5Mins,
		Speed:        DoorSpeed,
		TopHeight:    doorTop(sec),
		TopWait:      DoorWait,
		TopCountdown: raiseIn5MinsTics,
	})
}

func (t DoorType) String() string {
	switch t {
	case DoorNormal:
		return "normal"
	case DoorClose30ThenOpen:
		return "close30ThenOpen"
	case DoorClose:
		return "close"
	case DoorOpen:
		return "open"
	case DoorRaiseIn5Mins:
		return "raiseIn5Mins"
	case DoorBlazeRaise:
		return "blazeRaise"
	case DoorBlazeOpen:
		return "blazeOpen"
	case DoorBlazeClose:
		return "blazeClose"
	}
	return "unknown"
}
