package wad

import "unsafe"

type binLine struct {
	VertexStart, VertexEnd int16
	Flags                  int16
	Type                   int16
	SectorTag              int16
	SideR, SideL           int16
}

type binHexenLine struct {
	VertexStart, VertexEnd int16
	Flags                  int16
	Special                uint8
	Args                   [5]uint8
	SideR, SideL           int16
}

type Line struct {
	V1Num                  int
	V2Num                  int
	Flags                  int // Raw flag bits, see the booleans below
	BlockPlayerAndMonsters bool
	BlockMonsters          bool
	TwoSided               bool
	UpperTextureUnpegged   bool
	LowerTextureUnpegged   bool
	Secret                 bool
	BlocksSound            bool
	NeverMap               bool
	AlwaysMap              bool
	Type                   LineType
	SectorTagNum           int
	Args                   [5]int // Hexen; Args[0] is usually the sector tag
	SideRNum, SideLNum     int

	// References
	V1, V2                  Vertex
	DX, DY                  float64 // Precalculated VertexEnd-VertexStart for side checking
	SideR, SideL            *Side   // SideL is nil if one-sided
	FrontSector, BackSector *Sector
}

// LineType is the special of a line. Doom and Hexen number them
// differently; only the Doom door types the door code tells apart on
// manual use are named here.
type LineType int

const (
	LineDoorRaise          LineType = 1   // DR Door
	LineDoorBlueKey        LineType = 26  // DR Door Blue Key
	LineDoorYellowKey      LineType = 27  // DR Door Yellow Key
	LineDoorRedKey         LineType = 28  // DR Door Red Key
	LineDoorOpen           LineType = 31  // D1 Door Stay Open
	LineDoorOpenBlueKey    LineType = 32  // D1 Door Blue Key
	LineDoorOpenRedKey     LineType = 33  // D1 Door Red Key
	LineDoorOpenYellowKey  LineType = 34  // D1 Door Yellow Key
	LineBlazeDoorBlueKey   LineType = 99  // SR Door Blue Key Fast
	LineBlazeRaise         LineType = 117 // DR Door Fast
	LineBlazeOpen          LineType = 118 // D1 Door Fast
	LineBlazeOpenBlueKey   LineType = 133 // S1 Door Blue Key Fast
	LineBlazeDoorRedKey    LineType = 134 // SR Door Red Key Fast
	LineBlazeOpenRedKey    LineType = 135 // S1 Door Red Key Fast
	LineBlazeDoorYellowKey LineType = 136 // SR Door Yellow Key Fast
	LineBlazeOpenYellowKey LineType = 137 // S1 Door Yellow Key Fast
)

func (w *WAD) readLines(lumpInfo *LumpInfo, format Format) ([]Line, error) {
	logger.Println("Reading Lines ...")

	var lines []Line
	if format == FormatHexen {
		binLines, err := readLumpInto[binHexenLine](w, lumpInfo, int(unsafe.Sizeof(binHexenLine{})))
		if err != nil {
			return nil, err
		}

		// Translate to canonical
		lines = make([]Line, len(binLines))
		for i, line := range binLines {
			lines[i] = newLine(line.VertexStart, line.VertexEnd, line.Flags, line.SideR, line.SideL)
			lines[i].Type = LineType(line.Special)
			lines[i].Args = argsToInts(line.Args)
		}
	} else {
		binLines, err := readLumpInto[binLine](w, lumpInfo, int(unsafe.Sizeof(binLine{})))
		if err != nil {
			return nil, err
		}

		// Translate to canonical
		lines = make([]Line, len(binLines))
		for i, line := range binLines {
			lines[i] = newLine(line.VertexStart, line.VertexEnd, line.Flags, line.SideR, line.SideL)
			lines[i].Type = LineType(line.Type)
			lines[i].SectorTagNum = int(line.SectorTag)
		}
	}

	logger.Printf("Read %v lines", len(lines))

	return lines, nil
}

func newLine(v1, v2, flags, sideR, sideL int16) Line {
	return Line{
		V1Num:                  int(uint16(v1)),
		V2Num:                  int(uint16(v2)),
		Flags:                  int(uint16(flags)),
		BlockPlayerAndMonsters: flags&1 != 0,
		BlockMonsters:          flags&2 != 0,
		TwoSided:               flags&4 != 0,
		UpperTextureUnpegged:   flags&8 != 0,
		LowerTextureUnpegged:   flags&0x10 != 0,
		Secret:                 flags&0x20 != 0,
		BlocksSound:            flags&0x40 != 0,
		NeverMap:               flags&0x80 != 0,
		AlwaysMap:              flags&0x100 != 0,
		SideRNum:               int(sideR),
		SideLNum:               int(sideL),
	}
}
