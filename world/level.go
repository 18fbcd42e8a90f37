package world

import (
	"fmt"

	"github.com/stuarthighley/doomfx/wad"
)

// Thing types that become bodies when a level is loaded.
const (
	thingPlayer1Start = 1
	playerHeight      = 56
	playerRadius      = 16
	playerHealth      = 100
)

// FromLevel builds a Map from a level read out of w.
func FromLevel(w *wad.WAD, l *wad.Level) (*Map, error) {
	logger.Printf("Converting level %v (%v format) ...", l.Name, l.Format)
	b := NewBuilder(l.Name)

	for _, t := range w.TexturesList {
		m := b.Material(t.Name, float64(t.Width), float64(t.Height))
		m.Masked = t.IsMasked
	}
	for _, f := range w.FlatsList {
		b.Material(f.Name, wad.FlatWidth, wad.FlatHeight)
	}

	for _, v := range l.Vertexes {
		b.Vertex(v.X, v.Y)
	}
	for _, s := range l.Sectors {
		b.Sector(SectorDef{
			Floor:           s.FloorHeight,
			Ceiling:         s.CeilingHeight,
			Light:           float64(s.LightLevel) / 255,
			FloorMaterial:   s.FloorTextureName,
			CeilingMaterial: s.CeilingTextureName,
			Tag:             s.TagNum,
			Special:         int(s.Type),
		})
	}

	sideDef := func(s *wad.Side) SideDef {
		return SideDef{
			Sector:  s.SectorNum,
			Top:     s.UpperTextureName,
			Middle:  s.MiddleTextureName,
			Bottom:  s.LowerTextureName,
			OffsetX: s.XOffset,
			OffsetY: s.YOffset,
		}
	}
	for i := range l.Lines {
		li := &l.Lines[i]
		def := LineDef{
			V1:      li.V1Num,
			V2:      li.V2Num,
			Front:   sideDef(li.SideR),
			Flags:   LineFlags(li.Flags) &^ LineTwoSided,
			Special: int(li.Type),
			Tag:     li.SectorTagNum,
			Args:    li.Args,
		}
		if li.SideL != nil {
			back := sideDef(li.SideL)
			def.Back = &back
		}
		b.Line(def)
	}

	for _, ss := range l.SubSectors {
		segs := make([]SegDef, len(ss.LineSegments))
		for i, s := range ss.LineSegments {
			side := Front
			if s.IsSideL {
				side = Back
			}
			segs[i] = SegDef{V1: s.V1Num, V2: s.V2Num, Line: s.LineNum, Side: side, Offset: s.Offset}
		}
		b.SubSector(ss.Sector.Index, segs)
	}

	for _, t := range l.Things {
		if t.Type != thingPlayer1Start {
			continue
		}
		ss := l.PointInSubSector(float64(t.X), float64(t.Y))
		if ss == nil {
			logger.Printf("Player start at %v,%v is outside the map", t.X, t.Y)
			continue
		}
		b.Body(ss.Sector.Index, Body{
			Name:   "player1",
			Pos:    Vec2{float64(t.X), float64(t.Y)},
			Height: playerHeight,
			Radius: playerRadius,
			Health: playerHealth,
			Player: true,
			Solid:  true,
		})
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("level %v: %w", l.Name, err)
	}
	return m, nil
}

// SetGlow marks the named materials as glowing. Unknown names are ignored.
func (m *Map) SetGlow(names ...string) {
	for _, n := range names {
		if mat, ok := m.Materials[n]; ok {
			mat.Glow = true
		}
	}
}
