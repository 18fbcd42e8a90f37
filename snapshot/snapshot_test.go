package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/stuarthighley/doomfx/specials"
	"github.com/stuarthighley/doomfx/world"
)

// threeRooms is a door sector between two lit rooms.
func threeRooms(t *testing.T) *world.Map {
	t.Helper()
	b := world.NewBuilder("MAP01")
	var bottom, top [4]int
	for i := range bottom {
		bottom[i] = b.Vertex(float64(64*i), 0)
		top[i] = b.Vertex(float64(64*i), 64)
	}
	for i := 0; i < 3; i++ {
		ceil := 128.0
		tag := 0
		if i == 1 {
			ceil, tag = 0, 1
		}
		b.Sector(world.SectorDef{Ceiling: ceil, Light: .75, FloorMaterial: "FLAT", CeilingMaterial: "CEIL", Tag: tag})
	}
	b.Line(world.LineDef{V1: bottom[0], V2: top[0], Front: world.SideDef{Sector: 0, Middle: "WALL"}})
	for i := 0; i < 3; i++ {
		b.Line(world.LineDef{V1: top[i], V2: top[i+1], Front: world.SideDef{Sector: i, Middle: "WALL"}})
		b.Line(world.LineDef{V1: bottom[i+1], V2: bottom[i], Front: world.SideDef{Sector: i, Middle: "WALL"}})
		if i < 2 {
			b.Line(world.LineDef{V1: top[i+1], V2: bottom[i+1], Front: world.SideDef{Sector: i}, Back: &world.SideDef{Sector: i + 1}})
		}
	}
	b.Line(world.LineDef{V1: top[3], V2: bottom[3], Front: world.SideDef{Sector: 2, Middle: "WALL"}})
	m, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// running returns a sim with a door opening, a flickering light and a
// strobe in stasis, after n ticks.
func running(t *testing.T, n int) *specials.Sim {
	t.Helper()
	s := specials.New(threeRooms(t), specials.Options{Seed: 9})
	if s.DoDoor(&world.Line{Tag: 1}, specials.DoorNormal) != 1 {
		t.Fatal("door did not start")
	}
	s.SpawnFireFlicker(s.Map.Sector(0))
	s.SpawnStrobeFlash(s.Map.Sector(2), specials.FastDark, false)
	ids := s.Thinkers.IDs()
	s.Thinkers.SetStasis(ids[len(ids)-1], true)
	tick(t, s, n)
	return s
}

func tick(t *testing.T, s *specials.Sim, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %v: %v", s.Time, err)
		}
	}
}

func sameState(t *testing.T, a, b *specials.Sim) {
	t.Helper()
	for i := range a.Map.Sectors {
		sa, sb := &a.Map.Sectors[i], &b.Map.Sectors[i]
		for p := range sa.Planes {
			if planeV1(&sa.Planes[p]) != planeV1(&sb.Planes[p]) {
				t.Errorf("sector %v %v: %+v, want %+v", i, world.PlaneID(p), planeV1(&sb.Planes[p]), planeV1(&sa.Planes[p]))
			}
		}
		if sa.LightLevel != sb.LightLevel {
			t.Errorf("sector %v light %v, want %v", i, sb.LightLevel, sa.LightLevel)
		}
	}
	if a.Random().Index != b.Random().Index || a.Time != b.Time {
		t.Errorf("random %v time %v, want %v %v", b.Random().Index, b.Time, a.Random().Index, a.Time)
	}
}

func TestCaptureRestore(t *testing.T) {
	orig := running(t, 20)
	snap := Capture(orig)
	if snap.Header.Movers != 3 || len(snap.Movers) != 3 {
		t.Fatalf("movers = %v", snap.Header.Movers)
	}
	if m := snap.Movers[0]; m.Kind != "door" || m.Sector != 1 || m.Door == nil {
		t.Errorf("first mover = %+v", m)
	}
	if !snap.Movers[2].Stasis || snap.Movers[2].Strobe == nil {
		t.Errorf("strobe = %+v", snap.Movers[2])
	}

	path := filepath.Join(t.TempDir(), "snaps", "20.snap.zst")
	if err := WriteSnapshot(path, snap, zstd.SpeedFastest); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Map != "MAP01" || h.Tick != 20 || h.Movers != 3 || h.Game != "doom" {
		t.Errorf("header = %+v", h)
	}
	read, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	restored := specials.New(threeRooms(t), specials.Options{})
	if err := Restore(restored, read); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	sameState(t, orig, restored)
	if restored.Thinkers.Len() != 3 {
		t.Fatalf("%v thinkers restored", restored.Thinkers.Len())
	}
	door := restored.Map.Sector(1)
	if door.SpecialData.IsZero() {
		t.Error("door sector not owned after restore")
	}

	// Both must carry on identically, door closing included.
	tick(t, orig, 300)
	tick(t, restored, 300)
	sameState(t, orig, restored)
	if orig.Thinkers.Len() != restored.Thinkers.Len() {
		t.Errorf("%v thinkers, want %v", restored.Thinkers.Len(), orig.Thinkers.Len())
	}
}

func TestRestoreRejects(t *testing.T) {
	good := Capture(running(t, 5))
	tests := []struct {
		name string
		edit func(*SnapshotV1)
	}{
		{"other map", func(s *SnapshotV1) { s.Header.Map = "MAP02" }},
		{"sector count", func(s *SnapshotV1) { s.Sectors = s.Sectors[:2] }},
		{"sector range", func(s *SnapshotV1) { s.Movers[0].Sector = 7 }},
		{"unknown kind", func(s *SnapshotV1) { s.Movers[1].Kind = "lift" }},
		{"missing state", func(s *SnapshotV1) { s.Movers[0].Door = nil }},
		{"unknown material", func(s *SnapshotV1) { s.Sectors[0].Floor.Material = "NUKAGE1" }},
		{"shared sector", func(s *SnapshotV1) { s.Movers = append(s.Movers, s.Movers[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := good
			snap.Sectors = append([]SectorV1(nil), good.Sectors...)
			snap.Movers = append([]MoverV1(nil), good.Movers...)
			tt.edit(&snap)

			s := running(t, 5)
			before := Capture(s)
			if err := Restore(s, snap); err == nil {
				t.Fatal("Restore succeeded")
			}
			if s.Thinkers.Len() != len(before.Movers) {
				t.Errorf("sim changed by failed restore")
			}
		})
	}
}

func TestRestoreLightsShareSector(t *testing.T) {
	snap := Capture(running(t, 5))
	snap.Movers[2].Sector = snap.Movers[1].Sector

	s := specials.New(threeRooms(t), specials.Options{})
	if err := Restore(s, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Thinkers.Len() != 3 {
		t.Errorf("%v thinkers restored, want 3", s.Thinkers.Len())
	}
}

func TestReadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v2.snap.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(`{"version":2,"map":"MAP01"}` + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := ReadHeader(path); !errors.Is(err, ErrVersion) {
		t.Errorf("ReadHeader: %v, want %v", err, ErrVersion)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Error("ReadSnapshot of a header only file succeeded")
	}
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Errorf("ReadSnapshot of a missing file: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zstd.EncoderLevel
		wantErr bool
	}{
		{"", zstd.SpeedDefault, false},
		{"fastest", zstd.SpeedFastest, false},
		{"better", zstd.SpeedBetterCompression, false},
		{"best", zstd.SpeedBestCompression, false},
		{"ultra", zstd.SpeedDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.name, got, err)
		}
	}
}
