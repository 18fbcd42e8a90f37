// Command mapsim loads a map from a WAD, runs its sector specials for a
// number of tics and builds the fake radio shadows of the final frame.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/stuarthighley/doomfx/config"
	"github.com/stuarthighley/doomfx/fakeradio"
	"github.com/stuarthighley/doomfx/snapshot"
	"github.com/stuarthighley/doomfx/specials"
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/tracedb"
	"github.com/stuarthighley/doomfx/wad"
	"github.com/stuarthighley/doomfx/world"
)

// Hexen speed argument of triggered doors, in eighths of a unit per tick.
const triggerSpeed = 16

func main() {
	var (
		wadPath    = flag.String("wad", "", "path to the WAD file")
		mapName    = flag.String("map", "", "map to load (default: the first in the WAD)")
		configPath = flag.String("config", "", "YAML config file (optional)")
		restore    = flag.String("restore", "", "snapshot to resume from instead of spawning specials (optional)")
		doors      = flag.String("doors", "", "comma separated tags of doors to open at the start")
		lifts      = flag.String("lifts", "", "comma separated tags of lifts to lower at the start")
		ticks      = flag.Int("ticks", -1, "tics to run (default: from the config)")
	)
	flag.Parse()

	if *wadPath == "" {
		fmt.Fprintln(os.Stderr, "missing -wad")
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	wad.SetLogger(logger)
	world.SetLogger(logger)
	specials.SetLogger(logger)
	fakeradio.SetLogger(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if *ticks >= 0 {
		cfg.Ticks = *ticks
	}

	m, format, err := loadMap(*wadPath, *mapName)
	if err != nil {
		log.Fatalln(err)
	}
	m.SetGlow(cfg.Radio.Glow...)

	opts := cfg.SimOptions()
	if format == wad.FormatHexen && opts.Game != specials.Hexen {
		log.Printf("%v is a Hexen format map, switching game from %v", m.Name, opts.Game)
		opts.Game = specials.Hexen
	}
	sounds := soundLog(&cfg, &opts)
	s := specials.New(m, opts)

	if *restore != "" {
		snap, err := snapshot.ReadSnapshot(*restore)
		if err != nil {
			log.Fatalln("read snapshot:", err)
		}
		if err := snapshot.Restore(s, snap); err != nil {
			log.Fatalln("restore snapshot:", err)
		}
		log.Printf("Resumed %v at tic %v with %v movers", m.Name, s.Time, s.Thinkers.Len())
	} else if err := s.Do(func(s *specials.Sim) { s.SpawnSectorSpecials() }); err != nil {
		log.Fatalln(err)
	}

	if err := trigger(s, *doors, *lifts); err != nil {
		log.Fatalln(err)
	}

	var trace *tracedb.DB
	if cfg.Trace.Path != "" {
		trace, err = tracedb.Open(cfg.Trace.Path)
		if err != nil {
			log.Fatalln("open trace:", err)
		}
		for k, v := range map[string]string{"map": m.Name, "game": opts.Game.String(), "seed": strconv.Itoa(opts.Seed)} {
			if err := trace.SetMeta(k, v); err != nil {
				log.Fatalln("trace:", err)
			}
		}
	}

	log.Printf("Running %v tics with %v movers", cfg.Ticks, s.Thinkers.Len())
	for i := 0; i < cfg.Ticks; i++ {
		if err := s.Tick(); err != nil {
			log.Fatalln(err)
		}
		if trace != nil && s.Time%cfg.Trace.Every == 0 {
			trace.RecordTick(s, sounds.Events)
			sounds.Events = sounds.Events[:0]
		}
	}
	if trace != nil {
		if err := trace.Close(); err != nil {
			log.Fatalln("close trace:", err)
		}
		if n := trace.Dropped(); n > 0 {
			log.Printf("Trace dropped %v tics", n)
		}
	}
	printMovers(s)

	if err := shadows(m, cfg.RadioConfig()); err != nil {
		log.Fatalln(err)
	}

	if cfg.Snapshot.Path != "" {
		level, err := snapshot.ParseLevel(cfg.Snapshot.Level)
		if err != nil {
			log.Fatalln(err)
		}
		if err := snapshot.WriteSnapshot(cfg.Snapshot.Path, snapshot.Capture(s), level); err != nil {
			log.Fatalln("write snapshot:", err)
		}
		log.Printf("Saved %v movers to %v", s.Thinkers.Len(), cfg.Snapshot.Path)
	}
}

// soundLog installs a sound sink in opts when the run is traced. Nothing
// else reads the sounds, so untraced runs do not collect them.
func soundLog(cfg *config.Config, opts *specials.Options) *specials.SoundLog {
	if cfg.Trace.Path == "" {
		return nil
	}
	l := &specials.SoundLog{}
	opts.Sound = l
	return l
}

func loadMap(path, name string) (*world.Map, wad.Format, error) {
	w, err := wad.NewWAD(path)
	if err != nil {
		return nil, 0, err
	}
	defer w.Close()

	if name == "" {
		names := w.LevelNames()
		if len(names) == 0 {
			return nil, 0, fmt.Errorf("%v: no levels", path)
		}
		name = names[0]
	}
	l, err := w.ReadLevel(strings.ToUpper(name))
	if err != nil {
		return nil, 0, err
	}
	m, err := world.FromLevel(w, l)
	if err != nil {
		return nil, 0, err
	}
	return m, l.Format, nil
}

func parseTags(list string) ([]int, error) {
	var tags []int
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		tag, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad tag %q: %w", f, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// triggerLine returns a line that activates tag in every game. Hexen reads
// the tag, speed and delay from the line's arguments.
func triggerLine(tag int) *world.Line {
	return &world.Line{Tag: tag, Args: [5]int{tag, triggerSpeed, specials.DoorWait}}
}

// trigger starts the requested movers as if a line with the tag had been
// crossed.
func trigger(s *specials.Sim, doors, lifts string) error {
	doorTags, err := parseTags(doors)
	if err != nil {
		return err
	}
	liftTags, err := parseTags(lifts)
	if err != nil {
		return err
	}
	return s.Do(func(s *specials.Sim) {
		for _, tag := range doorTags {
			n := s.DoDoor(triggerLine(tag), specials.DoorOpen)
			log.Printf("Tag %v: %v doors opening", tag, n)
		}
		for _, tag := range liftTags {
			n := s.DoPlat(triggerLine(tag), specials.PlatDownWaitUpStay, 0)
			log.Printf("Tag %v: %v lifts lowering", tag, n)
		}
	})
}

func printMovers(s *specials.Sim) {
	kinds := map[string]int{}
	s.Thinkers.ForEach(nil, func(_ thinker.ID, t specials.Thinker) bool {
		kinds[specials.Kind(t)]++
		return true
	})
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Println("Mover:", k, kinds[k])
	}
}

// shadows builds the fake radio shadows for every wall and plane of m.
func shadows(m *world.Map, cfg fakeradio.Config) error {
	if err := fakeradio.InitShadows(m); err != nil {
		return err
	}
	f := fakeradio.NewFrame(m, cfg)
	rec := &fakeradio.Recorder{}
	for i := range m.Segs {
		seg := &m.Segs[i]
		if seg.Front == nil {
			continue
		}
		f.WallSection(seg, seg.Front.FloorHeight(), seg.Front.CeilingHeight(), rec)
	}
	for i := range m.SubSectors {
		f.SubsectorEdges(&m.SubSectors[i], rec)
	}

	textures := map[fakeradio.Texture]int{}
	for _, w := range rec.Walls {
		textures[w.Texture]++
	}
	for t := fakeradio.TextureOO; t <= fakeradio.TextureCC; t++ {
		fmt.Println("Wall shadows:", t, textures[t])
	}
	fmt.Println("Plane shadows:", len(rec.Planes))
	return nil
}
