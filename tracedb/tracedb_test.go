package tracedb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stuarthighley/doomfx/specials"
	"github.com/stuarthighley/doomfx/world"
)

// doorRoom is a closed door sector next to a room.
func doorRoom(t *testing.T) *world.Map {
	t.Helper()
	b := world.NewBuilder("E1M1")
	v := []int{b.Vertex(0, 0), b.Vertex(0, 64), b.Vertex(64, 64), b.Vertex(64, 0), b.Vertex(128, 64), b.Vertex(128, 0)}
	b.Sector(world.SectorDef{Ceiling: 128, Light: .5, FloorMaterial: "FLAT", CeilingMaterial: "CEIL"})
	b.Sector(world.SectorDef{Light: .5, FloorMaterial: "FLAT", CeilingMaterial: "CEIL", Tag: 3})
	b.Line(world.LineDef{V1: v[0], V2: v[1], Front: world.SideDef{Sector: 0, Middle: "WALL"}})
	b.Line(world.LineDef{V1: v[1], V2: v[2], Front: world.SideDef{Sector: 0, Middle: "WALL"}})
	b.Line(world.LineDef{V1: v[3], V2: v[0], Front: world.SideDef{Sector: 0, Middle: "WALL"}})
	b.Line(world.LineDef{V1: v[2], V2: v[3], Front: world.SideDef{Sector: 0}, Back: &world.SideDef{Sector: 1}})
	b.Line(world.LineDef{V1: v[2], V2: v[4], Front: world.SideDef{Sector: 1, Middle: "WALL"}})
	b.Line(world.LineDef{V1: v[4], V2: v[5], Front: world.SideDef{Sector: 1, Middle: "WALL"}})
	b.Line(world.LineDef{V1: v[5], V2: v[3], Front: world.SideDef{Sector: 1, Middle: "WALL"}})
	m, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRecordTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace", "run.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.SetMeta("map", "E1M1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	snd := &specials.SoundLog{}
	s := specials.New(doorRoom(t), specials.Options{Sound: snd})
	if s.DoDoor(&world.Line{Tag: 3}, specials.DoorOpen) != 1 {
		t.Fatal("door did not start")
	}
	for i := 0; i < 10; i++ {
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
		db.RecordTick(s, snd.Events)
		snd.Events = snd.Events[:0]
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if db.Dropped() != 0 {
		t.Errorf("%v ticks dropped", db.Dropped())
	}
	db.RecordTick(s, nil)

	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer sdb.Close()

	var n int
	if err := sdb.QueryRow(`SELECT COUNT(*) FROM sectors`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 20 {
		t.Errorf("%v sector rows, want 20", n)
	}

	var (
		ceiling float64
		mover   sql.NullString
	)
	row := sdb.QueryRow(`SELECT ceiling, mover FROM sectors WHERE tick=5 AND sector=1`)
	if err := row.Scan(&ceiling, &mover); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if ceiling != 10 || mover.String != "door" {
		t.Errorf("tick 5: ceiling %v mover %q, want 10 door", ceiling, mover.String)
	}
	row = sdb.QueryRow(`SELECT mover FROM sectors WHERE tick=5 AND sector=0`)
	if err := row.Scan(&mover); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if mover.Valid {
		t.Errorf("idle sector has mover %q", mover.String)
	}

	var value string
	if err := sdb.QueryRow(`SELECT value FROM meta WHERE key='map'`).Scan(&value); err != nil || value != "E1M1" {
		t.Errorf("meta map = %q, %v", value, err)
	}
}

func TestWriteErrorDropsPendingTicks(t *testing.T) {
	sdb, err := openDB(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sdb.Close()
	if _, err := sdb.Exec(`CREATE TRIGGER reject BEFORE INSERT ON sectors WHEN NEW.tick = 3
		BEGIN SELECT RAISE(ABORT, 'rejected'); END;`); err != nil {
		t.Fatal(err)
	}

	// Queue every tick before the writer starts so that nothing is
	// committed until the queue drains.
	d := &DB{db: sdb, ch: make(chan tickRow, 8)}
	for tick := 1; tick <= 5; tick++ {
		d.ch <- tickRow{Tick: tick, Sectors: []sectorRow{{Sector: 0}}}
	}
	close(d.ch)
	d.loop()

	if got := d.Dropped(); got != 3 {
		t.Errorf("dropped = %v, want 3", got)
	}
	var n int
	if err := sdb.QueryRow(`SELECT COUNT(*) FROM sectors WHERE tick IN (4, 5)`).Scan(&n); err != nil || n != 2 {
		t.Errorf("committed rows = %v, %v, want 2", n, err)
	}
	if err := sdb.QueryRow(`SELECT COUNT(*) FROM sectors WHERE tick < 4`).Scan(&n); err != nil || n != 0 {
		t.Errorf("rolled back rows = %v, %v, want 0", n, err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open of an empty path succeeded")
	}
}

func TestNilDB(t *testing.T) {
	var db *DB
	db.RecordTick(nil, nil)
	if err := db.SetMeta("k", "v"); err != nil {
		t.Error(err)
	}
}
