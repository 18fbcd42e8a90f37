package world

import (
	"testing"

	"github.com/stuarthighley/doomfx/wad"
)

func TestFromLevel(t *testing.T) {
	w := &wad.WAD{
		TexturesList: []*wad.Texture{{Name: "BIGDOOR2", Width: 128, Height: 128}, {Name: "MIDBARS3", Width: 64, Height: 72, IsMasked: true}},
		FlatsList:    []*wad.Flat{{Name: "FLOOR4_8"}, {Name: "NUKAGE1"}, {Name: wad.SkyFlatName}},
	}
	l := &wad.Level{
		Name:     "E1M1",
		Vertexes: []wad.Vertex{{X: 0, Y: 0}, {X: 0, Y: 64}, {X: 64, Y: 64}, {X: 64, Y: 0}, {X: 128, Y: 64}, {X: 128, Y: 0}},
		Sectors: []wad.Sector{
			{Index: 0, FloorHeight: 0, CeilingHeight: 128, FloorTextureName: "NUKAGE1", CeilingTextureName: wad.SkyFlatName, LightLevel: 255, Type: wad.TypeOscillate, TagNum: 3},
			{Index: 1, FloorHeight: 0, CeilingHeight: 0, FloorTextureName: "FLOOR4_8", CeilingTextureName: "FLOOR4_8", LightLevel: 102},
		},
	}
	l.Sides = []wad.Side{
		{SectorNum: 0, MiddleTextureName: "BIGDOOR2"},
		{SectorNum: 0, MiddleTextureName: "BIGDOOR2"},
		{SectorNum: 0, MiddleTextureName: "MIDBARS3"},
		{SectorNum: 1, UpperTextureName: "BIGDOOR2"},
		{SectorNum: 0, MiddleTextureName: "BIGDOOR2"},
	}
	line := func(v1, v2, r, left int, typ wad.LineType) wad.Line {
		li := wad.Line{V1Num: v1, V2Num: v2, SideRNum: r, SideLNum: left, Type: typ, Flags: 1}
		li.SideR = &l.Sides[r]
		if left >= 0 {
			li.SideL = &l.Sides[left]
			li.Flags = 4
		}
		return li
	}
	l.Lines = []wad.Line{
		line(0, 1, 0, -1, 0),
		line(1, 2, 1, -1, 0),
		line(2, 3, 2, 3, wad.LineDoorRaise),
		line(3, 0, 4, -1, 0),
	}

	m, err := FromLevel(w, l)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Sectors) != 2 || len(m.Lines) != 4 {
		t.Fatalf("counts: %v sectors %v lines", len(m.Sectors), len(m.Lines))
	}
	s := m.Sector(0)
	if s.LightLevel != 1 || s.Special != int(wad.TypeOscillate) || s.Tag != 3 || !s.Ceiling().Material.Sky {
		t.Fatalf("sector 0 = %+v", s)
	}
	door := m.Line(2)
	if door.Special != int(wad.LineDoorRaise) || !door.HasBack() || door.Flags&LineTwoSided == 0 || door.Flags&LineBlocking != 0 {
		t.Fatalf("door line = %+v", door)
	}
	if mid := door.Sides[Front].Middle; mid == nil || !mid.Masked || mid.Height != 72 {
		t.Fatalf("door middle material = %+v", mid)
	}

	m.SetGlow("NUKAGE1", "NOSUCHFLAT")
	if !s.Floor().Glowing() || s.Ceiling().Glowing() {
		t.Fatal("glow not applied to the nukage floor only")
	}
}
