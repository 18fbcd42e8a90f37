package specials

import (
	"testing"

	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/wad"
	"github.com/stuarthighley/doomfx/world"
)

func lit(d world.SectorDef, light float64, tag int) world.SectorDef {
	d.Light = light
	d.Tag = tag
	return d
}

func TestGlow(t *testing.T) {
	m := row(t, lit(room(0, 128), 100.0/255, 0), lit(room(0, 128), 200.0/255, 1))
	s := New(m, Options{})
	sec := m.Sector(1)
	s.SpawnGlowingLight(sec)
	ticks(t, s, 1)
	if !near(sec.LightLevel, 192.0/255) {
		t.Fatalf("light = %v, want 192/255", sec.LightLevel*255)
	}
	// Down to the minimum and back up again.
	ticks(t, s, 12)
	v, _ := s.Thinkers.Get(s.Thinkers.IDs()[0])
	if g := v.(*Glow); g.Direction != Up {
		t.Fatalf("direction = %v, want up; light %v", g.Direction, sec.LightLevel*255)
	}
	for i := 0; i < 100; i++ {
		ticks(t, s, 1)
		if sec.LightLevel < 100.0/255-1e-9 || sec.LightLevel > 200.0/255+1e-9 {
			t.Fatalf("light %v out of range", sec.LightLevel*255)
		}
	}
}

func TestStrobeInSync(t *testing.T) {
	m := row(t, lit(room(0, 128), .25, 0), lit(room(0, 128), .75, 1))
	s := New(m, Options{})
	sec := m.Sector(1)
	s.SpawnStrobeFlash(sec, SlowDark, true)
	ticks(t, s, 1)
	if sec.LightLevel != .25 {
		t.Fatalf("light after first tick = %v, want dark", sec.LightLevel)
	}
	ticks(t, s, SlowDark)
	if sec.LightLevel != .75 {
		t.Fatalf("light after dark time = %v, want bright", sec.LightLevel)
	}
	ticks(t, s, StrobeBright)
	if sec.LightLevel != .25 {
		t.Fatalf("light after bright time = %v, want dark", sec.LightLevel)
	}
}

func TestStrobeWithoutDarkerNeighbour(t *testing.T) {
	m := row(t, lit(room(0, 128), .5, 1))
	s := New(m, Options{})
	s.SpawnStrobeFlash(m.Sector(0), FastDark, true)
	ticks(t, s, 1)
	if m.Sector(0).LightLevel != 0 {
		t.Fatalf("light = %v, want 0", m.Sector(0).LightLevel)
	}
}

func TestFlickerStaysInRange(t *testing.T) {
	m := row(t, lit(room(0, 128), .6, 0), lit(room(0, 128), .2, 0), lit(room(0, 128), .9, 0))
	s := New(m, Options{Seed: 17})
	flash, fire := m.Sector(0), m.Sector(2)
	s.SpawnFireFlicker(fire)
	s.SpawnLightFlash(flash)
	for i := 0; i < 500; i++ {
		ticks(t, s, 1)
		if fire.LightLevel < .2+16.0/255-1e-9 || fire.LightLevel > .9 {
			t.Fatalf("fire light %v out of range", fire.LightLevel)
		}
		if flash.LightLevel != .2 && flash.LightLevel != .6 {
			t.Fatalf("flash light %v not min or max", flash.LightLevel)
		}
	}
}

func TestTagLights(t *testing.T) {
	m := row(t, lit(room(0, 128), .25, 0), lit(room(0, 128), .5, 1), lit(room(0, 128), .75, 0))
	s := New(m, Options{})
	line := &world.Line{Tag: 1}
	sec := m.Sector(1)

	s.TurnTagLightsOff(line)
	if sec.LightLevel != .25 {
		t.Fatalf("off = %v, want .25", sec.LightLevel)
	}
	s.LightTurnOn(line, 0)
	if sec.LightLevel != .75 {
		t.Fatalf("on = %v, want .75", sec.LightLevel)
	}
	s.LightTurnOn(line, 1)
	if sec.LightLevel != 1 {
		t.Fatalf("on = %v, want 1", sec.LightLevel)
	}

	s.StartLightStrobing(line)
	if s.Thinkers.Len() != 1 {
		t.Fatalf("%v strobes, want 1", s.Thinkers.Len())
	}
}

func TestStrobeSkipsBusySector(t *testing.T) {
	m := row(t, lit(room(0, 128), .25, 0), lit(room(0, 128), .5, 1))
	s := New(m, Options{})
	s.DoFloor(&world.Line{Tag: 1}, FloorRaise24)
	s.StartLightStrobing(&world.Line{Tag: 1})
	if s.Thinkers.Len() != 1 {
		t.Fatalf("%v thinkers, want only the floor", s.Thinkers.Len())
	}
}

func TestSpawnSectorSpecials(t *testing.T) {
	special := func(sp int) world.SectorDef {
		d := room(0, 128)
		d.Special = sp
		return d
	}
	m := row(t,
		special(int(wad.TypeBlinkRandom)),
		special(int(wad.TypeDamage20Blink05)),
		special(int(wad.TypeOscillate)),
		special(int(wad.TypeSecret)),
		special(int(wad.TypeDoor30)),
		special(int(wad.TypeFlickerRandom)),
		special(int(wad.TypeBlink10Sync)),
	)
	s := New(m, Options{})
	s.SpawnSectorSpecials()

	kinds := map[string]int{}
	s.Thinkers.ForEach(nil, func(_ thinker.ID, th Thinker) bool {
		kinds[Kind(th)]++
		return true
	})
	want := map[string]int{"lightflash": 1, "strobe": 2, "glow": 1, "door": 1, "fireflicker": 1}
	for k, n := range want {
		if kinds[k] != n {
			t.Errorf("%v thinkers = %v, want %v", k, kinds[k], n)
		}
	}
	if m.Sector(1).Special != int(wad.TypeDamage20Blink05) {
		t.Error("damaging strobe lost its special")
	}
	if m.Sector(3).Special != int(wad.TypeSecret) {
		t.Error("secret special cleared")
	}
	if m.Sector(0).Special != 0 || m.Sector(2).Special != 0 {
		t.Error("light specials not cleared")
	}
}
