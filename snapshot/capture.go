package snapshot

import (
	"fmt"

	"github.com/stuarthighley/doomfx/specials"
	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

// Capture records the state of s: every thinker in iteration order, the
// random index, and the sector planes and lights the thinkers move.
func Capture(s *specials.Sim) SnapshotV1 {
	m := s.Map
	snap := SnapshotV1{
		Header: Header{
			Version: Version,
			Map:     m.Name,
			Game:    s.Game.String(),
			Tick:    s.Time,
		},
		Random:  s.Random().Index,
		Sectors: make([]SectorV1, len(m.Sectors)),
	}
	for i := range m.Sectors {
		sec := &m.Sectors[i]
		snap.Sectors[i] = SectorV1{
			Floor:   planeV1(sec.Floor()),
			Ceiling: planeV1(sec.Ceiling()),
			Light:   sec.LightLevel,
			Special: sec.Special,
		}
	}
	s.Thinkers.ForEach(nil, func(id thinker.ID, t specials.Thinker) bool {
		mv := moverV1(t)
		mv.Stasis = s.Thinkers.InStasis(id)
		snap.Movers = append(snap.Movers, mv)
		return true
	})
	snap.Header.Movers = len(snap.Movers)
	return snap
}

func planeV1(p *world.Plane) PlaneV1 {
	return PlaneV1{Height: p.Height, Target: p.Target, Speed: p.Speed, Material: materialName(p.Material)}
}

func materialName(m *world.Material) string {
	if m == nil {
		return ""
	}
	return m.Name
}

func moverV1(t specials.Thinker) MoverV1 {
	mv := MoverV1{Kind: specials.Kind(t), Sector: t.Sector().Index}
	switch t := t.(type) {
	case *specials.Door:
		mv.Door = &DoorV1{
			Type:         int(t.Type),
			State:        int(t.State),
			TopHeight:    t.TopHeight,
			Speed:        t.Speed,
			TopWait:      t.TopWait,
			TopCountdown: t.TopCountdown,
		}
	case *specials.Floor:
		mv.Floor = &FloorV1{
			Type:                   int(t.Type),
			Crush:                  t.Crush,
			Direction:              t.Direction,
			NewSpecial:             t.NewSpecial,
			Material:               materialName(t.Material),
			Dest:                   t.Dest,
			Speed:                  t.Speed,
			DelayCount:             t.DelayCount,
			DelayTotal:             t.DelayTotal,
			StairsDelayHeight:      t.StairsDelayHeight,
			StairsDelayHeightDelta: t.StairsDelayHeightDelta,
			ResetHeight:            t.ResetHeight,
			ResetDelay:             t.ResetDelay,
			ResetDelayCount:        t.ResetDelayCount,
		}
	case *specials.Ceiling:
		mv.Ceiling = &CeilingV1{
			Type:      int(t.Type),
			Bottom:    t.Bottom,
			Top:       t.Top,
			Speed:     t.Speed,
			Crush:     t.Crush,
			Direction: t.Direction,
			OldDir:    t.OldDir,
			Tag:       t.Tag,
		}
	case *specials.Plat:
		mv.Plat = &PlatV1{
			Type:   int(t.Type),
			Status: int(t.Status),
			Speed:  t.Speed,
			Low:    t.Low,
			High:   t.High,
			Wait:   t.Wait,
			Count:  t.Count,
			Crush:  t.Crush,
			Tag:    t.Tag,
		}
	case *specials.Pillar:
		mv.Pillar = &PillarV1{
			FloorSpeed:   t.FloorSpeed,
			CeilingSpeed: t.CeilingSpeed,
			FloorDest:    t.FloorDest,
			CeilingDest:  t.CeilingDest,
			Direction:    t.Direction,
			Crush:        t.Crush,
		}
	case *specials.Waggle:
		mv.Waggle = &WaggleV1{
			State:          int(t.State),
			OriginalHeight: t.OriginalHeight,
			Accumulator:    t.Accumulator,
			AccDelta:       t.AccDelta,
			TargetScale:    t.TargetScale,
			Scale:          t.Scale,
			ScaleDelta:     t.ScaleDelta,
			Ticker:         t.Ticker,
		}
	case *specials.FireFlicker:
		mv.FireFlicker = &FireFlickerV1{Count: t.Count, MaxLight: t.MaxLight, MinLight: t.MinLight}
	case *specials.LightFlash:
		mv.LightFlash = &LightFlashV1{
			Count:    t.Count,
			MaxLight: t.MaxLight,
			MinLight: t.MinLight,
			MaxTime:  t.MaxTime,
			MinTime:  t.MinTime,
		}
	case *specials.Strobe:
		mv.Strobe = &StrobeV1{
			Count:      t.Count,
			MinLight:   t.MinLight,
			MaxLight:   t.MaxLight,
			DarkTime:   t.DarkTime,
			BrightTime: t.BrightTime,
		}
	case *specials.Glow:
		mv.Glow = &GlowV1{MinLight: t.MinLight, MaxLight: t.MaxLight, Direction: t.Direction}
	case *specials.Light:
		mv.Light = &LightV1{
			Type:   int(t.Type),
			Value1: t.Value1,
			Value2: t.Value2,
			Delta:  t.Delta,
			Dir:    t.Dir,
			Tics1:  t.Tics1,
			Tics2:  t.Tics2,
			Count:  t.Count,
		}
	case *specials.Phase:
		mv.Phase = &PhaseV1{Index: t.Index, Base: t.Base}
	}
	return mv
}

// Restore replaces the state of s with snap. s must be running the map the
// snapshot was taken from. On error s is left unchanged.
func Restore(s *specials.Sim, snap SnapshotV1) error {
	m := s.Map
	if snap.Header.Map != m.Name {
		return fmt.Errorf("snapshot of map %v, not %v", snap.Header.Map, m.Name)
	}
	if len(snap.Sectors) != len(m.Sectors) {
		return fmt.Errorf("snapshot has %v sectors, map has %v", len(snap.Sectors), len(m.Sectors))
	}

	// Decode everything before touching the sim.
	movers := make([]specials.Thinker, len(snap.Movers))
	owners := map[int]int{}
	for i, mv := range snap.Movers {
		t, err := mv.thinker(m)
		if err != nil {
			return fmt.Errorf("mover %v: %w", i, err)
		}
		if specials.IsPlaneMover(t) {
			if j, ok := owners[mv.Sector]; ok {
				return fmt.Errorf("mover %v: sector %v already moved by mover %v", i, mv.Sector, j)
			}
			owners[mv.Sector] = i
		}
		movers[i] = t
	}
	planes := make([][2]world.Plane, len(snap.Sectors))
	for i, sv := range snap.Sectors {
		var err error
		if planes[i][world.Floor], err = sv.Floor.plane(m); err != nil {
			return fmt.Errorf("sector %v: %w", i, err)
		}
		if planes[i][world.Ceiling], err = sv.Ceiling.plane(m); err != nil {
			return fmt.Errorf("sector %v: %w", i, err)
		}
	}

	s.Reset()
	for i, sv := range snap.Sectors {
		sec := &m.Sectors[i]
		sec.Planes = planes[i]
		sec.LightLevel = sv.Light
		sec.Special = sv.Special
	}
	for i, t := range movers {
		s.Adopt(t, snap.Movers[i].Stasis)
	}
	s.Random().Index = snap.Random
	s.Time = snap.Header.Tick
	m.Tic = snap.Header.Tick
	return nil
}

func (p PlaneV1) plane(m *world.Map) (world.Plane, error) {
	mat, err := material(m, p.Material)
	return world.Plane{Height: p.Height, Target: p.Target, Speed: p.Speed, Material: mat}, err
}

func material(m *world.Map, name string) (*world.Material, error) {
	if name == "" {
		return nil, nil
	}
	mat, ok := m.Materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	return mat, nil
}

func (mv MoverV1) thinker(m *world.Map) (specials.Thinker, error) {
	sec := m.Sector(mv.Sector)
	if sec == nil {
		return nil, fmt.Errorf("sector %v out of range", mv.Sector)
	}
	missing := fmt.Errorf("%v mover without its state", mv.Kind)
	switch mv.Kind {
	case "door":
		d := mv.Door
		if d == nil {
			return nil, missing
		}
		return &specials.Door{
			Sec:          sec,
			Type:         specials.DoorType(d.Type),
			State:        specials.DoorState(d.State),
			TopHeight:    d.TopHeight,
			Speed:        d.Speed,
			TopWait:      d.TopWait,
			TopCountdown: d.TopCountdown,
		}, nil
	case "floor":
		f := mv.Floor
		if f == nil {
			return nil, missing
		}
		mat, err := material(m, f.Material)
		if err != nil {
			return nil, err
		}
		return &specials.Floor{
			Sec:                    sec,
			Type:                   specials.FloorType(f.Type),
			Crush:                  f.Crush,
			Direction:              f.Direction,
			NewSpecial:             f.NewSpecial,
			Material:               mat,
			Dest:                   f.Dest,
			Speed:                  f.Speed,
			DelayCount:             f.DelayCount,
			DelayTotal:             f.DelayTotal,
			StairsDelayHeight:      f.StairsDelayHeight,
			StairsDelayHeightDelta: f.StairsDelayHeightDelta,
			ResetHeight:            f.ResetHeight,
			ResetDelay:             f.ResetDelay,
			ResetDelayCount:        f.ResetDelayCount,
		}, nil
	case "ceiling":
		c := mv.Ceiling
		if c == nil {
			return nil, missing
		}
		return &specials.Ceiling{
			Sec:       sec,
			Type:      specials.CeilingType(c.Type),
			Bottom:    c.Bottom,
			Top:       c.Top,
			Speed:     c.Speed,
			Crush:     c.Crush,
			Direction: c.Direction,
			OldDir:    c.OldDir,
			Tag:       c.Tag,
		}, nil
	case "plat":
		p := mv.Plat
		if p == nil {
			return nil, missing
		}
		return &specials.Plat{
			Sec:    sec,
			Type:   specials.PlatType(p.Type),
			Status: specials.PlatStatus(p.Status),
			Speed:  p.Speed,
			Low:    p.Low,
			High:   p.High,
			Wait:   p.Wait,
			Count:  p.Count,
			Crush:  p.Crush,
			Tag:    p.Tag,
		}, nil
	case "pillar":
		p := mv.Pillar
		if p == nil {
			return nil, missing
		}
		return &specials.Pillar{
			Sec:          sec,
			FloorSpeed:   p.FloorSpeed,
			CeilingSpeed: p.CeilingSpeed,
			FloorDest:    p.FloorDest,
			CeilingDest:  p.CeilingDest,
			Direction:    p.Direction,
			Crush:        p.Crush,
		}, nil
	case "waggle":
		w := mv.Waggle
		if w == nil {
			return nil, missing
		}
		return &specials.Waggle{
			Sec:            sec,
			State:          specials.WaggleState(w.State),
			OriginalHeight: w.OriginalHeight,
			Accumulator:    w.Accumulator,
			AccDelta:       w.AccDelta,
			TargetScale:    w.TargetScale,
			Scale:          w.Scale,
			ScaleDelta:     w.ScaleDelta,
			Ticker:         w.Ticker,
		}, nil
	case "fireflicker":
		f := mv.FireFlicker
		if f == nil {
			return nil, missing
		}
		return &specials.FireFlicker{Sec: sec, Count: f.Count, MaxLight: f.MaxLight, MinLight: f.MinLight}, nil
	case "lightflash":
		f := mv.LightFlash
		if f == nil {
			return nil, missing
		}
		return &specials.LightFlash{
			Sec:      sec,
			Count:    f.Count,
			MaxLight: f.MaxLight,
			MinLight: f.MinLight,
			MaxTime:  f.MaxTime,
			MinTime:  f.MinTime,
		}, nil
	case "strobe":
		f := mv.Strobe
		if f == nil {
			return nil, missing
		}
		return &specials.Strobe{
			Sec:        sec,
			Count:      f.Count,
			MinLight:   f.MinLight,
			MaxLight:   f.MaxLight,
			DarkTime:   f.DarkTime,
			BrightTime: f.BrightTime,
		}, nil
	case "glow":
		g := mv.Glow
		if g == nil {
			return nil, missing
		}
		return &specials.Glow{Sec: sec, MinLight: g.MinLight, MaxLight: g.MaxLight, Direction: g.Direction}, nil
	case "light":
		l := mv.Light
		if l == nil {
			return nil, missing
		}
		return &specials.Light{
			Sec:    sec,
			Type:   specials.LightType(l.Type),
			Value1: l.Value1,
			Value2: l.Value2,
			Delta:  l.Delta,
			Dir:    l.Dir,
			Tics1:  l.Tics1,
			Tics2:  l.Tics2,
			Count:  l.Count,
		}, nil
	case "phase":
		p := mv.Phase
		if p == nil {
			return nil, missing
		}
		return &specials.Phase{Sec: sec, Index: p.Index, Base: p.Base}, nil
	}
	return nil, fmt.Errorf("unknown mover kind %q", mv.Kind)
}
