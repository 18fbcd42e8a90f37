package specials

import (
	"errors"
	"math"
	"testing"

	"github.com/stuarthighley/doomfx/world"
)

// row builds a line of 64x64 rooms, one per def, each sharing a two sided
// line with the next. The shared line's front faces the lower index.
//
//	t0---t1---t2--- ...
//	| 0  | 1  | 2
//	b0---b1---b2--- ...
func row(t *testing.T, defs ...world.SectorDef) *world.Map {
	t.Helper()
	b := world.NewBuilder("ROW")
	n := len(defs)
	bottom := make([]int, n+1)
	top := make([]int, n+1)
	for i := 0; i <= n; i++ {
		bottom[i] = b.Vertex(float64(64*i), 0)
		top[i] = b.Vertex(float64(64*i), 64)
	}
	for _, d := range defs {
		b.Sector(d)
	}
	b.Line(world.LineDef{V1: bottom[0], V2: top[0], Front: world.SideDef{Sector: 0, Middle: "WALL"}})
	for i := 0; i < n; i++ {
		b.Line(world.LineDef{V1: top[i], V2: top[i+1], Front: world.SideDef{Sector: i, Middle: "WALL"}})
		b.Line(world.LineDef{V1: bottom[i+1], V2: bottom[i], Front: world.SideDef{Sector: i, Middle: "WALL"}})
		if i+1 < n {
			b.Line(world.LineDef{V1: top[i+1], V2: bottom[i+1], Front: world.SideDef{Sector: i}, Back: &world.SideDef{Sector: i + 1}})
		}
	}
	b.Line(world.LineDef{V1: top[n], V2: bottom[n], Front: world.SideDef{Sector: n - 1, Middle: "WALL"}})
	m, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// between returns the line with front sector a and back sector b.
func between(t *testing.T, m *world.Map, a, b int) *world.Line {
	t.Helper()
	for _, l := range m.Sector(a).Lines {
		if l.FrontSector() == m.Sector(a) && l.BackSector() == m.Sector(b) {
			return l
		}
	}
	t.Fatalf("no line from sector %v to %v", a, b)
	return nil
}

func room(floor, ceil float64) world.SectorDef {
	return world.SectorDef{Floor: floor, Ceiling: ceil, Light: .5, FloorMaterial: "FLAT", CeilingMaterial: "CEIL"}
}

func tagged(d world.SectorDef, tag int) world.SectorDef {
	d.Tag = tag
	return d
}

func ticks(t *testing.T, s *Sim, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %v: %v", s.Time, err)
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMovePlane(t *testing.T) {
	tests := []struct {
		name      string
		plane     world.PlaneID
		dir       int
		speed     float64
		dest      float64
		wantSteps []float64
	}{
		{"floor up", world.Floor, Up, 8, 20, []float64{8, 16, 20}},
		{"floor up exact", world.Floor, Up, 8, 16, []float64{8, 16}},
		{"ceiling down", world.Ceiling, Down, 10, 100, []float64{118, 108, 100}},
		{"floor down", world.Floor, Down, 3, -5, []float64{-3, -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := row(t, room(0, 128))
			s := New(m, Options{})
			sec := m.Sector(0)
			for i, want := range tt.wantSteps {
				res := s.MovePlane(sec, tt.speed, tt.dest, false, tt.plane, tt.dir)
				p := sec.Plane(tt.plane)
				if p.Height != want {
					t.Fatalf("step %v: height = %v, want %v", i, p.Height, want)
				}
				last := i == len(tt.wantSteps)-1
				switch {
				case last && res != PastDestination:
					t.Fatalf("step %v: result = %v, want pastdest", i, res)
				case !last && res != Ok:
					t.Fatalf("step %v: result = %v, want ok", i, res)
				}
				if p.Target != tt.dest {
					t.Fatalf("step %v: target = %v, want %v", i, p.Target, tt.dest)
				}
				if last && p.Speed != 0 {
					t.Fatalf("speed after arrival = %v, want 0", p.Speed)
				}
			}
		})
	}
}

func TestMovePlaneBlocked(t *testing.T) {
	tests := []struct {
		name  string
		game  Game
		crush bool
		want  float64
	}{
		{"doom", Doom, false, 56},
		{"doom crush", Doom, true, 48},
		{"hexen", Hexen, false, 56},
		{"hexen crush", Hexen, true, 56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := row(t, room(0, 64))
			s := New(m, Options{Game: tt.game})
			sec := m.Sector(0)
			body := m.AddBody(sec, world.Body{Name: "marine", Height: 56, Radius: 16, Health: 100, Solid: true})

			if res := s.MovePlane(sec, 8, 0, tt.crush, world.Ceiling, Down); res != Ok {
				t.Fatalf("first step = %v, want ok", res)
			}
			if res := s.MovePlane(sec, 8, 0, tt.crush, world.Ceiling, Down); res != Crushed {
				t.Fatalf("blocked step = %v, want crushed", res)
			}
			if got := sec.CeilingHeight(); got != tt.want {
				t.Errorf("ceiling = %v, want %v", got, tt.want)
			}
			wantHealth := 100
			if tt.crush {
				wantHealth -= world.CrushDamage
			}
			if body.Health != wantHealth {
				t.Errorf("health = %v, want %v", body.Health, wantHealth)
			}
		})
	}
}

func TestMovePlaneBadDirection(t *testing.T) {
	m := row(t, room(0, 64))
	s := New(m, Options{})
	err := s.Do(func(s *Sim) {
		s.MovePlane(m.Sector(0), 1, 10, false, world.Floor, 0)
	})
	var fe *FatalError
	if !errors.As(err, &fe) || fe.Op != "MovePlane" {
		t.Fatalf("err = %v, want MovePlane fatal error", err)
	}
}

func TestTickRecoversFatal(t *testing.T) {
	m := row(t, room(0, 64))
	s := New(m, Options{})
	s.Thinkers.Add(&Glow{Sec: m.Sector(0), Direction: 0})
	var fe *FatalError
	if err := s.Tick(); !errors.As(err, &fe) {
		t.Fatalf("Tick err = %v, want FatalError", err)
	}
}

func TestSingleOwner(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(64, 128), 1), room(0, 128))
	s := New(m, Options{})
	line := &world.Line{Tag: 1}
	sec := m.Sector(1)

	if s.DoFloor(line, FloorLowerToLowest) != 1 {
		t.Fatal("DoFloor did not start")
	}
	owner := sec.SpecialData
	if s.DoCeiling(line, CeilingLowerToFloor) != 0 {
		t.Error("DoCeiling started on a busy sector")
	}
	if s.DoDoor(line, DoorNormal) != 0 {
		t.Error("DoDoor started on a busy sector")
	}
	if s.DoPlat(line, PlatDownWaitUpStay, 0) != 0 {
		t.Error("DoPlat started on a busy sector")
	}
	if sec.SpecialData != owner || s.Thinkers.Len() != 1 {
		t.Fatalf("owner changed or extra thinkers: %v, %v", sec.SpecialData, s.Thinkers.Len())
	}
	if sec.CeilingHeight() != 128 {
		t.Errorf("ceiling moved to %v", sec.CeilingHeight())
	}

	err := s.Do(func(s *Sim) { s.occupy(sec, &Floor{Sec: sec}) })
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("second occupy err = %v, want FatalError", err)
	}
}

func TestReleaseOnFinish(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(0, 128), 1))
	s := New(m, Options{})
	s.DoFloor(&world.Line{Tag: 1}, FloorRaise24)
	ticks(t, s, 24)
	sec := m.Sector(1)
	if !sec.SpecialData.IsZero() || s.Thinkers.Len() != 0 {
		t.Fatalf("sector still owned after finishing: %v", sec.SpecialData)
	}
	if sec.FloorHeight() != 24 {
		t.Fatalf("floor = %v, want 24", sec.FloorHeight())
	}
}

func TestRandom(t *testing.T) {
	r := Random{}
	for i, want := range []int{8, 109, 220, 222} {
		if got := r.Next(); got != want {
			t.Fatalf("Next %v = %v, want %v", i, got, want)
		}
	}
	r.Index = 255
	if got := r.Next(); got != 0 || r.Index != 0 {
		t.Fatalf("wrap = %v at %v, want 0 at 0", got, r.Index)
	}
}

func TestParseGame(t *testing.T) {
	for _, g := range []Game{Doom, Heretic, Hexen} {
		got, err := ParseGame(g.String())
		if err != nil || got != g {
			t.Errorf("ParseGame(%q) = %v, %v", g.String(), got, err)
		}
	}
	if _, err := ParseGame("quake"); err == nil {
		t.Error("ParseGame accepted quake")
	}
}

func TestReset(t *testing.T) {
	m := row(t, room(0, 128), tagged(room(64, 128), 1))
	s := New(m, Options{})
	s.DoFloor(&world.Line{Tag: 1}, FloorLowerToLowest)
	s.Reset()
	if s.Thinkers.Len() != 0 || !m.Sector(1).SpecialData.IsZero() {
		t.Fatal("Reset left thinkers behind")
	}
}
