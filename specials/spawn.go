package specials

import (
	"github.com/stuarthighley/doomfx/wad"
)

// SpawnSectorSpecials starts the light effects and timed doors that
// sector specials ask for. It is called once after the map is loaded.
func (s *Sim) SpawnSectorSpecials() {
	for i := range s.Map.Sectors {
		sec := &s.Map.Sectors[i]
		if sec.Special == 0 {
			continue
		}
		if s.Game == Hexen {
			switch wad.SectorType(sec.Special) {
			case wad.TypeHexenPhasedLight:
				s.SpawnPhasedLight(sec, level(80), -1)
			case wad.TypeHexenLightSequence:
				s.SpawnLightSequence(sec, 1)
			}
			continue
		}
		switch wad.SectorType(sec.Special) {
		case wad.TypeBlinkRandom:
			s.SpawnLightFlash(sec)
		case wad.TypeBlink05:
			s.SpawnStrobeFlash(sec, FastDark, false)
		case wad.TypeBlink10:
			s.SpawnStrobeFlash(sec, SlowDark, false)
		case wad.TypeDamage20Blink05:
			s.SpawnStrobeFlash(sec, FastDark, false)
			sec.Special = int(wad.TypeDamage20Blink05) // Still hurts
		case wad.TypeOscillate:
			s.SpawnGlowingLight(sec)
		case wad.TypeDoor30:
			s.SpawnDoorCloseIn30(sec)
		case wad.TypeBlink10Sync:
			s.SpawnStrobeFlash(sec, SlowDark, true)
		case wad.TypeBlink05Sync:
			s.SpawnStrobeFlash(sec, FastDark, true)
		case wad.TypeDoor300:
			s.SpawnDoorRaiseIn5Mins(sec)
		case wad.TypeFlickerRandom:
			s.SpawnFireFlicker(sec)
		}
	}
	logger.Printf("Spawned %v sector thinkers", s.Thinkers.Len())
}
