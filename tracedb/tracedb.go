// Package tracedb logs the sector heights, light levels and sounds of a
// running sim to a SQLite database.
//
// Writes happen on a background goroutine. The sim never waits for the
// database: when the writer falls behind, whole ticks are dropped and
// counted.
package tracedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stuarthighley/doomfx/specials"
)

type DB struct {
	db *sql.DB

	ch   chan tickRow
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Int64
}

type sectorRow struct {
	Sector  int
	Floor   float64
	Ceiling float64
	Light   float64
	Mover   string
}

type soundRow struct {
	Sector int
	Sound  string
}

type tickRow struct {
	Tick    int
	Sectors []sectorRow
	Sounds  []soundRow
}

func Open(path string) (*DB, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	d := &DB{
		db: db,
		ch: make(chan tickRow, 4096),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop()
	}()
	return d, nil
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sectors (
			tick INTEGER NOT NULL,
			sector INTEGER NOT NULL,
			floor REAL NOT NULL,
			ceiling REAL NOT NULL,
			light REAL NOT NULL,
			mover TEXT,
			PRIMARY KEY (tick, sector)
		);`,
		`CREATE TABLE IF NOT EXISTS sounds (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			sector INTEGER NOT NULL,
			sound TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sectors_sector_tick ON sectors(sector, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// SetMeta records a key describing the run, such as the map or the game.
// It is written straight away rather than by the background writer.
func (d *DB) SetMeta(key, value string) error {
	if d == nil || d.closed.Load() {
		return nil
	}
	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, key, value)
	return err
}

// RecordTick queues the state of every sector of s, together with the
// sounds played since the last recorded tick.
func (d *DB) RecordTick(s *specials.Sim, sounds []specials.SoundEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	r := tickRow{Tick: s.Time}
	for i := range s.Map.Sectors {
		sec := &s.Map.Sectors[i]
		row := sectorRow{
			Sector:  i,
			Floor:   sec.FloorHeight(),
			Ceiling: sec.CeilingHeight(),
			Light:   sec.LightLevel,
		}
		if t, ok := s.Thinkers.Get(sec.SpecialData); ok {
			row.Mover = specials.Kind(t)
		}
		r.Sectors = append(r.Sectors, row)
	}
	for _, e := range sounds {
		sr := soundRow{Sector: e.Sector, Sound: e.Sound.String()}
		switch {
		case e.Start:
			sr.Sound = fmt.Sprintf("sequence %v", e.Sequence)
		case e.Stop:
			sr.Sound = "sequence stop"
		}
		r.Sounds = append(r.Sounds, sr)
	}

	select {
	case d.ch <- r:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many ticks were not recorded because the writer was
// behind.
func (d *DB) Dropped() int64 {
	return d.dropped.Load()
}

// Close waits for queued ticks to be written.
func (d *DB) Close() error {
	var err error
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.ch)
		d.wg.Wait()
		err = d.db.Close()
	})
	return err
}

func (d *DB) loop() {
	ctx := context.Background()

	insertSector, _ := d.db.Prepare(`INSERT OR REPLACE INTO sectors(tick,sector,floor,ceiling,light,mover) VALUES(?,?,?,?,?,?)`)
	insertSound, _ := d.db.Prepare(`INSERT OR REPLACE INTO sounds(tick,seq,sector,sound) VALUES(?,?,?,?)`)
	defer func() {
		if insertSector != nil {
			_ = insertSector.Close()
		}
		if insertSound != nil {
			_ = insertSound.Close()
		}
	}()
	if insertSector == nil || insertSound == nil {
		// Keep draining so that Close does not block.
		for range d.ch {
			d.dropped.Add(1)
		}
		return
	}

	var (
		tx            *sql.Tx
		opCount       int
		pending       int // Ticks written to tx but not yet committed
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = time.Second
	)
	begin := func() {
		if tx != nil {
			return
		}
		txx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			d.dropped.Add(int64(pending))
		}
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		d.dropped.Add(int64(pending))
		tx = nil
		opCount = 0
		pending = 0
		lastCommit = time.Now()
	}

	for r := range d.ch {
		begin()
		if tx == nil {
			d.dropped.Add(1)
			continue
		}
		if err := write(tx, insertSector, insertSound, r); err != nil {
			rollback()
			d.dropped.Add(1)
			continue
		}
		pending++
		opCount += len(r.Sectors) + len(r.Sounds)
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(d.ch) == 0 {
			commit()
		}
	}
	commit()
}

func write(tx *sql.Tx, insertSector, insertSound *sql.Stmt, r tickRow) error {
	for _, s := range r.Sectors {
		var mover any
		if s.Mover != "" {
			mover = s.Mover
		}
		if _, err := tx.Stmt(insertSector).Exec(r.Tick, s.Sector, s.Floor, s.Ceiling, s.Light, mover); err != nil {
			return err
		}
	}
	for i, s := range r.Sounds {
		if _, err := tx.Stmt(insertSound).Exec(r.Tick, i, s.Sector, s.Sound); err != nil {
			return err
		}
	}
	return nil
}
