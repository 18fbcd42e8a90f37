package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testLump struct {
	name string
	data any // Written with binary.Write; nil for markers
}

func name8(s string) String8 {
	var n String8
	copy(n[:], s)
	return n
}

// writeWAD writes a PWAD holding lumps to a temporary file.
func writeWAD(t *testing.T, lumps []testLump) string {
	t.Helper()
	var body bytes.Buffer
	infos := make([]binLumpInfo, len(lumps))
	const headerSize = 12
	for i, l := range lumps {
		infos[i].Name = name8(l.name)
		infos[i].Filepos = int32(headerSize + body.Len())
		if l.data != nil {
			if err := binary.Write(&body, binary.LittleEndian, l.data); err != nil {
				t.Fatal(err)
			}
		}
		infos[i].Size = int32(headerSize+body.Len()) - infos[i].Filepos
	}

	var out bytes.Buffer
	header := binHeader{NumLumps: int32(len(lumps)), InfoTableOfs: int32(headerSize + body.Len())}
	copy(header.Magic[:], "PWAD")
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, infos)

	path := filepath.Join(t.TempDir(), "test.wad")
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func squareRoom() (vertexes []binVertex, sides []binSide, sectors []binSector) {
	vertexes = []binVertex{{0, 0}, {0, 128}, {128, 128}, {128, 0}}
	for i := 0; i < 4; i++ {
		sides = append(sides, binSide{MiddleTexture: name8("STARTAN3"), UpperTexture: name8("-"), LowerTexture: name8("-")})
	}
	sectors = []binSector{{
		FloorHeight: 0, CeilingHeight: 72,
		FloorTexture: name8("FLOOR4_8"), CeilingTexture: name8("F_SKY1"),
		LightLevel: 160, Type: int16(TypeBlinkRandom), TagNum: 7,
	}}
	return
}

func TestReadDoomLevel(t *testing.T) {
	vertexes, sides, sectors := squareRoom()
	lines := []binLine{
		{0, 1, 1, 0, 0, 0, -1},
		{1, 2, 1, 0, 0, 1, -1},
		{2, 3, 1, 0, 0, 2, -1},
		{3, 0, 1, 1, 7, 3, -1},
	}
	path := writeWAD(t, []testLump{
		{"E1M1", nil},
		{"THINGS", []binThing{{X: 64, Y: 64, Angle: 90, Type: 1, Options: 7}}},
		{"LINEDEFS", lines},
		{"SIDEDEFS", sides},
		{"VERTEXES", vertexes},
		{"SECTORS", sectors},
	})

	w, err := NewWAD(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if got := w.LevelNames(); len(got) != 1 || got[0] != "E1M1" {
		t.Fatalf("LevelNames = %v", got)
	}
	l, err := w.ReadLevel("E1M1")
	if err != nil {
		t.Fatal(err)
	}
	if l.Format != FormatDoom {
		t.Fatalf("format = %v, want doom", l.Format)
	}
	if len(l.Lines) != 4 || len(l.Sides) != 4 || len(l.Sectors) != 1 || len(l.Things) != 1 {
		t.Fatalf("counts: %v lines %v sides %v sectors %v things", len(l.Lines), len(l.Sides), len(l.Sectors), len(l.Things))
	}
	door := l.Lines[3]
	if door.Type != LineDoorRaise || door.SectorTagNum != 7 || door.SideL != nil || door.FrontSector != &l.Sectors[0] {
		t.Fatalf("line 3 = %+v", door)
	}
	if door.DX != -128 || door.DY != 0 {
		t.Fatalf("line 3 delta = %v,%v", door.DX, door.DY)
	}
	s := l.Sectors[0]
	if s.CeilingHeight != 72 || s.LightLevel != 160 || s.Type != TypeBlinkRandom || s.CeilingTextureName != SkyFlatName {
		t.Fatalf("sector = %+v", s)
	}
	if len(s.Lines) != 4 {
		t.Fatalf("sector lines = %v", len(s.Lines))
	}
	if th := l.Things[0]; !th.Skill1and2 || !th.Skill3 || !th.Skill4and5 || th.Ambush {
		t.Fatalf("thing flags = %+v", th)
	}
	if l.PointInSubSector(64, 64) != nil {
		t.Fatal("level without nodes should have no subsectors")
	}
}

func TestReadHexenLevel(t *testing.T) {
	vertexes, sides, sectors := squareRoom()
	lines := []binHexenLine{
		{0, 1, 1, 0, [5]uint8{}, 0, -1},
		{1, 2, 1, 0, [5]uint8{}, 1, -1},
		{2, 3, 1, 0, [5]uint8{}, 2, -1},
		{3, 0, 1, 12, [5]uint8{7, 16, 150}, 3, -1}, // Door_Raise tag 7
	}
	path := writeWAD(t, []testLump{
		{"MAP01", nil},
		{"THINGS", []binHexenThing{{TID: 3, X: 64, Y: 64, Type: 1, Options: 0x400, Special: 80, Args: [5]uint8{1}}}},
		{"LINEDEFS", lines},
		{"SIDEDEFS", sides},
		{"VERTEXES", vertexes},
		{"SECTORS", sectors},
		{"BEHAVIOR", []byte("ACS\x00")},
	})

	w, err := NewWAD(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	l, err := w.ReadLevel("MAP01")
	if err != nil {
		t.Fatal(err)
	}
	if l.Format != FormatHexen {
		t.Fatalf("format = %v, want hexen", l.Format)
	}
	door := l.Lines[3]
	if door.Type != 12 || door.Args != [5]int{7, 16, 150, 0, 0} {
		t.Fatalf("hexen line = %+v", door)
	}
	th := l.Things[0]
	if th.TID != 3 || th.Special != 80 || th.Args[0] != 1 || !th.MultiplayerOnly {
		t.Fatalf("hexen thing = %+v", th)
	}
}

func TestReadLevelErrors(t *testing.T) {
	path := writeWAD(t, []testLump{
		{"E1M1", nil},
		{"THINGS", []binThing{}},
		{"VERTEXES", []binVertex{{0, 0}}},
	})
	w, err := NewWAD(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if _, err := w.ReadLevel("E1M1"); !errors.Is(err, ErrLumpNotFound) {
		t.Fatalf("missing LINEDEFS: err = %v", err)
	}
	if _, err := w.ReadLevel("E9M9"); !errors.Is(err, ErrLumpNotFound) {
		t.Fatalf("missing level: err = %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wad")
	os.WriteFile(path, []byte("JUNK\x00\x00\x00\x00\x0c\x00\x00\x00"), 0o644)
	if _, err := NewWAD(path); err == nil {
		t.Fatal("expected bad magic error")
	}
}

func TestCorruptCounts(t *testing.T) {
	dir := func(numLumps, ofs int32) string {
		var b bytes.Buffer
		b.WriteString("PWAD")
		binary.Write(&b, binary.LittleEndian, []int32{numLumps, ofs})
		path := filepath.Join(t.TempDir(), "dir.wad")
		if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	tests := []struct {
		name string
		path string
	}{
		{"negative lumps", dir(-1, 12)},
		{"too many lumps", dir(1<<30, 12)},
		{"directory past end", dir(1, 1<<20)},
		{"texture count", writeWAD(t, []testLump{{"TEXTURE1", []uint32{1 << 30}}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWAD(tt.path); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("err = %v, want %v", err, ErrCorrupt)
			}
		})
	}
}

func TestPointOnSide(t *testing.T) {
	// Partition along the y axis pointing north; right is east.
	n := &Node{X: 0, Y: 0, DX: 0, DY: 64}
	if n.PointOnSide(10, 5) != 0 || n.PointOnSide(-10, 5) != 1 {
		t.Fatal("vertical partition sides wrong")
	}
	n = &Node{X: 0, Y: 0, DX: 64, DY: 64}
	if n.PointOnSide(10, 0) != 0 || n.PointOnSide(0, 10) != 1 {
		t.Fatal("diagonal partition sides wrong")
	}
}
