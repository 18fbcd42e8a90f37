package specials

import (
	"testing"

	"github.com/stuarthighley/doomfx/world"
)

func TestPlatDownWaitUpStay(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(64, 128), 1), room(0, 128))
	snd := &SoundLog{}
	s := New(m, Options{Sound: snd})
	sec := m.Sector(1)
	if s.DoPlat(&world.Line{Tag: 1}, PlatDownWaitUpStay, 0) != 1 {
		t.Fatal("plat did not start")
	}
	v, _ := s.Thinkers.Get(sec.SpecialData)
	p := v.(*Plat)

	ticks(t, s, 16)
	if sec.FloorHeight() != 0 || p.Status != PlatWaiting || p.Count != PlatWait*TicRate {
		t.Fatalf("at bottom: floor %v status %v count %v", sec.FloorHeight(), p.Status, p.Count)
	}
	ticks(t, s, PlatWait*TicRate)
	if p.Status != PlatUp {
		t.Fatalf("status after wait = %v, want up", p.Status)
	}
	ticks(t, s, 15)
	if s.Thinkers.Len() != 1 {
		t.Fatal("plat finished early")
	}
	ticks(t, s, 1)
	if sec.FloorHeight() != 64 || s.Thinkers.Len() != 0 || !sec.SpecialData.IsZero() {
		t.Fatalf("plat not back: floor %v thinkers %v", sec.FloorHeight(), s.Thinkers.Len())
	}
	if snd.Count(SfxPlatStart) != 2 || snd.Count(SfxPlatStop) != 2 {
		t.Errorf("start %v stop %v, want 2 and 2", snd.Count(SfxPlatStart), snd.Count(SfxPlatStop))
	}
}

func TestPlatStasis(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(32, 128), 1), room(64, 128))
	s := New(m, Options{})
	line := &world.Line{Tag: 1}
	sec := m.Sector(1)
	s.DoPlat(line, PlatPerpetualRaise, 0)
	ticks(t, s, 3)

	if got := s.PlatDeactivate(1); got != 1 {
		t.Fatalf("first deactivate = %v, want 1", got)
	}
	if got := s.PlatDeactivate(1); got != 0 {
		t.Fatalf("second deactivate = %v, want 0", got)
	}
	h := sec.FloorHeight()
	ticks(t, s, 10)
	if sec.FloorHeight() != h {
		t.Fatalf("paused plat moved from %v to %v", h, sec.FloorHeight())
	}

	// Activating the same tag again restarts it rather than adding a second.
	if s.DoPlat(line, PlatPerpetualRaise, 0) != 0 || s.Thinkers.Len() != 1 {
		t.Fatalf("perpetual plat duplicated: %v thinkers", s.Thinkers.Len())
	}
	if got := s.PlatActivate(1); got != 0 {
		t.Fatalf("activate after restart = %v, want 0", got)
	}
	ticks(t, s, 1)
	if sec.FloorHeight() == h {
		t.Fatal("restarted plat did not move")
	}
	if s.StopPlat(line) != 1 || !s.Thinkers.InStasis(sec.SpecialData) {
		t.Fatal("StopPlat did not pause the plat")
	}
}

func TestPlatRaiseAndChange(t *testing.T) {
	front := room(0, 128)
	front.FloorMaterial = "SLIME"
	m := row(t, front, tagged(room(0, 128), 1))
	s := New(m, Options{})
	line := between(t, m, 0, 1)
	line.Tag = 1
	s.DoPlat(line, PlatRaiseAndChange, 24)
	ticks(t, s, 48)
	sec := m.Sector(1)
	if sec.FloorHeight() != 24 || sec.Floor().Material.Name != "SLIME" || s.Thinkers.Len() != 0 {
		t.Fatalf("floor %v material %v thinkers %v", sec.FloorHeight(), sec.Floor().Material.Name, s.Thinkers.Len())
	}
}

func TestCeilingCrusher(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(0, 72), 1))
	s := New(m, Options{})
	sec := m.Sector(1)
	line := &world.Line{Tag: 1}
	if s.DoCeiling(line, CeilingCrushAndRaise) != 1 {
		t.Fatal("crusher did not start")
	}
	ticks(t, s, 64)
	v, _ := s.Thinkers.Get(sec.SpecialData)
	c := v.(*Ceiling)
	if sec.CeilingHeight() != 8 || c.Direction != Up {
		t.Fatalf("at bottom: ceiling %v direction %v", sec.CeilingHeight(), c.Direction)
	}

	if s.CeilingDeactivate(1) != 1 || s.CeilingDeactivate(1) != 0 {
		t.Fatal("deactivate not idempotent")
	}
	ticks(t, s, 5)
	if sec.CeilingHeight() != 8 {
		t.Fatal("paused crusher moved")
	}
	if s.DoCeiling(line, CeilingCrushAndRaise) != 1 || s.Thinkers.Len() != 1 {
		t.Fatal("crusher not reactivated")
	}
	if c.Direction != Up {
		t.Fatalf("direction after reactivation = %v, want up", c.Direction)
	}
	ticks(t, s, 64)
	if sec.CeilingHeight() != 72 || c.Direction != Down {
		t.Fatalf("at top: ceiling %v direction %v", sec.CeilingHeight(), c.Direction)
	}
}

func TestCeilingCrushedSlowsDown(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(0, 72), 1))
	s := New(m, Options{})
	sec := m.Sector(1)
	body := m.AddBody(sec, world.Body{Name: "zombie", Height: 56, Health: 20, Solid: true})
	s.DoCeiling(&world.Line{Tag: 1}, CeilingCrushAndRaise)
	ticks(t, s, 17)
	v, _ := s.Thinkers.Get(sec.SpecialData)
	c := v.(*Ceiling)
	if c.Speed != CeilingSpeed*.125 {
		t.Fatalf("speed = %v, want %v", c.Speed, CeilingSpeed*.125)
	}
	if body.Health >= 20 {
		t.Fatalf("health = %v, want damage", body.Health)
	}
}

func TestHexenCeilingDeactivateDestroys(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(0, 72), 1))
	s := New(m, Options{Game: Hexen})
	s.DoCeiling(&world.Line{Args: [5]int{1, 8, 1}}, CeilingCrushAndRaise)
	if s.CeilingDeactivate(1) != 1 || s.Thinkers.Len() != 0 || s.busy(m.Sector(1)) {
		t.Fatal("Hexen ceiling not destroyed")
	}
}

func TestCeilingLowerAndCrush(t *testing.T) {
	for _, game := range []Game{Doom, Hexen} {
		m := row(t, room(0, 128), tagged(room(0, 72), 1))
		s := New(m, Options{Game: game})
		s.DoCeiling(&world.Line{Tag: 1, Args: [5]int{1, 8, 1}}, CeilingLowerAndCrush)
		v, _ := s.Thinkers.Get(m.Sector(1).SpecialData)
		c := v.(*Ceiling)
		if c.Crush != (game == Hexen) || c.Bottom != 8 {
			t.Errorf("%v: crush %v bottom %v", game, c.Crush, c.Bottom)
		}
	}
}
