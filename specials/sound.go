package specials

import "github.com/stuarthighley/doomfx/world"

// Sound is a sound effect the movers ask to be played.
type Sound int

const (
	SfxNone Sound = iota
	SfxDoorOpen
	SfxDoorClose
	SfxBlazeOpen
	SfxBlazeClose
	SfxPlaneMove // Stone grinding while a floor or ceiling moves
	SfxDoorMove  // Heretic plays this for moving planes
	SfxPlatStart
	SfxPlatStop
	SfxOof
)

var soundNames = [...]string{
	SfxNone:       "none",
	SfxDoorOpen:   "doropn",
	SfxDoorClose:  "dorcls",
	SfxBlazeOpen:  "bdopn",
	SfxBlazeClose: "bdcls",
	SfxPlaneMove:  "stnmov",
	SfxDoorMove:   "dormov",
	SfxPlatStart:  "pstart",
	SfxPlatStop:   "pstop",
	SfxOof:        "oof",
}

func (s Sound) String() string {
	if int(s) < len(soundNames) {
		return soundNames[s]
	}
	return "unknown"
}

// Sequence is a Hexen sound sequence started on a sector.
type Sequence int

const (
	SeqDoor Sequence = iota
	SeqPlatform
)

// SoundSink plays sounds for the movers. Playback itself is up to the
// implementation.
type SoundSink interface {
	SectorSound(sec *world.Sector, plane world.PlaneID, snd Sound)
	ActorSound(a Activator, snd Sound)
	StartSequence(sec *world.Sector, seq Sequence)
	StopSequence(sec *world.Sector)
}

// Silent discards all sounds.
type Silent struct{}

func (Silent) SectorSound(*world.Sector, world.PlaneID, Sound) {}
func (Silent) ActorSound(Activator, Sound)                     {}
func (Silent) StartSequence(*world.Sector, Sequence)           {}
func (Silent) StopSequence(*world.Sector)                      {}

// SoundEvent is a sound recorded by a SoundLog.
type SoundEvent struct {
	Sector   int // -1 for actor sounds
	Sound    Sound
	Sequence Sequence
	Start    bool // Sequence started
	Stop     bool // Sequence stopped
}

// SoundLog records every sound request.
type SoundLog struct {
	Events []SoundEvent
}

func (l *SoundLog) SectorSound(sec *world.Sector, _ world.PlaneID, snd Sound) {
	l.Events = append(l.Events, SoundEvent{Sector: sec.Index, Sound: snd})
}

func (l *SoundLog) ActorSound(_ Activator, snd Sound) {
	l.Events = append(l.Events, SoundEvent{Sector: -1, Sound: snd})
}

func (l *SoundLog) StartSequence(sec *world.Sector, seq Sequence) {
	l.Events = append(l.Events, SoundEvent{Sector: sec.Index, Sequence: seq, Start: true})
}

func (l *SoundLog) StopSequence(sec *world.Sector) {
	l.Events = append(l.Events, SoundEvent{Sector: sec.Index, Stop: true})
}

// Count returns how many times snd was played.
func (l *SoundLog) Count(snd Sound) int {
	n := 0
	for _, e := range l.Events {
		if !e.Start && !e.Stop && e.Sound == snd {
			n++
		}
	}
	return n
}

// Activator is whatever triggered a line: a player or a monster.
type Activator interface {
	IsPlayer() bool
	HasKey(k world.Key) bool
	Message(msg string)
}

func (s *Sim) sectorSound(sec *world.Sector, plane world.PlaneID, snd Sound) {
	if snd != SfxNone {
		s.Sound.SectorSound(sec, plane, snd)
	}
}

// planeMoveSound is the sound of a floor or ceiling in motion.
func (s *Sim) planeMoveSound() Sound {
	switch s.Game {
	case Heretic:
		return SfxDoorMove
	case Hexen:
		return SfxNone
	}
	return SfxPlaneMove
}

func (s *Sim) startSequence(sec *world.Sector, seq Sequence) {
	if s.Game == Hexen {
		s.Sound.StartSequence(sec, seq)
	}
}

func (s *Sim) stopSequence(sec *world.Sector) {
	if s.Game == Hexen {
		s.Sound.StopSequence(sec)
	}
}
