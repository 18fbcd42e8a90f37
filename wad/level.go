package wad

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Format is the binary layout of a level's THINGS and LINEDEFS lumps.
type Format int

const (
	FormatDoom  Format = iota // Doom and Heretic
	FormatHexen               // Has a BEHAVIOR lump; lines carry a special and five args
)

func (f Format) String() string {
	if f == FormatHexen {
		return "hexen"
	}
	return "doom"
}

type Level struct {
	Name         string
	Format       Format
	Things       []Thing
	Lines        []Line
	Sides        []Side
	Vertexes     []Vertex
	LineSegments []LineSegment
	SubSectors   []SubSector
	Nodes        []Node
	Sectors      []Sector
	RootNode     BSPMember
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type binHexenThing struct {
	TID     int16
	X       int16
	Y       int16
	Z       int16
	Angle   int16
	Type    int16
	Options int16
	Special uint8
	Args    [5]uint8
}

type Thing struct {
	X, Y            int
	Z               int // Hexen starting height
	Angle           float64
	Type            int
	Skill1and2      bool
	Skill3          bool
	Skill4and5      bool
	Ambush          bool
	MultiplayerOnly bool
	TID             int // Hexen
	Special         int // Hexen
	Args            [5]int
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     int16
}

type Side struct {
	XOffset           float64
	YOffset           float64
	UpperTextureName  string
	LowerTextureName  string
	MiddleTextureName string
	SectorNum         int
	UpperTexture      *Texture
	LowerTexture      *Texture
	MiddleTexture     *Texture
	Sector            *Sector
}

type binVertex struct {
	X, Y int16
}

type Vertex struct {
	X, Y float64
}

type binLineSegment struct {
	V1        int16
	V2        int16
	Angle     int16 // Full circle is -32768 to 32767.
	LineNum   int16
	Direction int16 // 0 - same as linedef, 1 - opposite to linedef
	Offset    int16 // Distance along line to start of segment
}

type LineSegment struct {
	V1Num   int
	V2Num   int
	Angle   float64 // Radians
	LineNum int
	IsSideL bool    // false - same as linedef, true - opposite to linedef
	Offset  float64 // Distance along line to start of segment

	V1          Vertex
	V2          Vertex
	Line        *Line
	Side        *Side
	BackSide    *Side
	FrontSector *Sector
	BackSector  *Sector
}

type binSubSector struct {
	NumSegments      int16
	StartLineSegment int16
}

type SubSector struct {
	Index            int
	numLineSegments  int
	StartLineSegment int

	LineSegments []LineSegment
	Sector       *Sector
}

type binBBox struct {
	Top    int16
	Bottom int16
	Left   int16
	Right  int16
}

type BoundBox struct {
	Top, Bottom, Left, Right float64
}

type binNode struct {
	X, Y                 int16
	DX, DY               int16
	BBoxR, BBoxL         binBBox
	ChildNumR, ChildNumL int16
}

type Node struct {
	X, Y                 float64
	DX, DY               float64
	BBoxR, BBoxL         BoundBox
	ChildNumR, ChildNumL int
	ChildR, ChildL       BSPMember
}

// Return child for side
func (n *Node) Child(side int) BSPMember {
	if side == 0 {
		return n.ChildR
	}
	return n.ChildL
}

type BSPType int

const (
	BSPNode BSPType = iota
	BSPSubSector
)

type BSPMember interface {
	BSPType() BSPType
}

func (s *SubSector) BSPType() BSPType {
	return BSPSubSector
}

func (s *Node) BSPType() BSPType {
	return BSPNode
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

type Sector struct {
	Index              int
	FloorHeight        float64
	CeilingHeight      float64
	FloorTextureName   string
	CeilingTextureName string
	LightLevel         int // 0..255
	Type               SectorType
	TagNum             int

	FloorTexture   *Flat
	CeilingTexture *Flat
	Lines          []*Line
}

// SectorType is the special of a Doom or Heretic sector.
type SectorType int

const (
	TypeNormal          SectorType = iota
	TypeBlinkRandom                // 1  Light  Blink random
	TypeBlink05                    // 2  Light  Blink 0.5 second
	TypeBlink10                    // 3  Light  Blink 1.0 second
	TypeDamage20Blink05            // 4  Both   20% damage per second; light blink 0.5 second
	TypeDamage10                   // 5	 Damage 10% damage per second
	TypeUnused1                    // 6  Unused
	TypeDamage5                    // 7	 Damage 5% damage per second
	TypeOscillate                  // 8	 Light  Oscillates
	TypeSecret                     // 9	 Secret Player entering this sector gets credit for finding a secret
	TypeDoor30                     // 10 Door   30 seconds after level start, ceiling closes like a door
	TypeEnd                        // 11 End    20% damage ps. Level ends when player health drops below 11% & touching floor
	TypeBlink10Sync                // 12 Light  Blink 1.0 second, synchronized
	TypeBlink05Sync                // 13 Light  Blink 0.5 second, synchronized
	TypeDoor300                    // 14 Door   300 seconds after level start, ceiling opens like a door
	TypeUnused2                    // 15 Unused
	TypeDamage20                   // 16 Damage 20% damage per second
	TypeFlickerRandom              // 17 Light  Flickers randomly
)

// Hexen sector specials driving lights.
const (
	TypeHexenPhasedLight   SectorType = 1 // Phased light at base brightness 80
	TypeHexenLightSequence SectorType = 2 // Start of a phased light sequence
	TypeHexenSequenceSpec1 SectorType = 3 // Alternating members of a sequence
	TypeHexenSequenceSpec2 SectorType = 4
)

var levelLumps = map[string]bool{
	"THINGS": true, "LINEDEFS": true, "SIDEDEFS": true, "VERTEXES": true,
	"SEGS": true, "SSECTORS": true, "NODES": true, "SECTORS": true,
	"REJECT": true, "BLOCKMAP": true, "BEHAVIOR": true, "SCRIPTS": true,
}

// ReadLevel reads level data from WAD archive and returns a Level struct.
func (w *WAD) ReadLevel(name string) (*Level, error) {
	logger.Printf("Reading Level %v ...", name)

	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("level %v: %w", name, ErrLumpNotFound)
	}

	// Collect the level's lumps first: the format is only known once the
	// BEHAVIOR lump, which comes last, has been seen.
	lumps := map[string]*LumpInfo{}
	for i := levelIdx + 1; i < len(w.lumpInfos); i++ {
		lumpInfo := &w.lumpInfos[i]
		if !levelLumps[lumpInfo.Name] {
			break
		}
		lumps[lumpInfo.Name] = lumpInfo
	}
	level := Level{Name: name}
	if _, ok := lumps["BEHAVIOR"]; ok {
		level.Format = FormatHexen
	}
	for _, required := range []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"} {
		if lumps[required] == nil {
			return nil, fmt.Errorf("level %v: %v: %w", name, required, ErrLumpNotFound)
		}
	}

	var err error
	if level.Things, err = w.readThings(lumps["THINGS"], level.Format); err != nil {
		return nil, err
	}
	if level.Lines, err = w.readLines(lumps["LINEDEFS"], level.Format); err != nil {
		return nil, err
	}
	if level.Sides, err = w.readSides(lumps["SIDEDEFS"]); err != nil {
		return nil, err
	}
	if level.Vertexes, err = w.readVertexes(lumps["VERTEXES"]); err != nil {
		return nil, err
	}
	if level.Sectors, err = w.readSectors(lumps["SECTORS"]); err != nil {
		return nil, err
	}
	// Node data is optional: an unbuilt map simply has no subsectors.
	if li := lumps["SEGS"]; li != nil {
		if level.LineSegments, err = w.readLineSegments(li); err != nil {
			return nil, err
		}
	}
	if li := lumps["SSECTORS"]; li != nil {
		if level.SubSectors, err = w.readSubSectors(li); err != nil {
			return nil, err
		}
	}
	if li := lumps["NODES"]; li != nil {
		if level.Nodes, err = w.readNodes(li); err != nil {
			return nil, err
		}
	}

	// Set references
	if err := w.setReferences(&level); err != nil {
		return nil, fmt.Errorf("level %v: %w", name, err)
	}

	return &level, nil
}

// setReferences adds pointers to all level assets
func (w *WAD) setReferences(l *Level) error {
	logger.Println("Setting references ...")

	// Sides
	for i := range l.Sides {
		sn := l.Sides[i].SectorNum
		if sn < 0 || sn >= len(l.Sectors) {
			return fmt.Errorf("side %v: bad sector %v", i, sn)
		}
		l.Sides[i].Sector = &l.Sectors[sn]
	}

	// Lines - dependent on Sides
	for i := range l.Lines {
		li := &l.Lines[i] // Point to element
		if li.V1Num >= len(l.Vertexes) || li.V2Num >= len(l.Vertexes) {
			return fmt.Errorf("line %v: bad vertex", i)
		}
		li.V1 = l.Vertexes[li.V1Num]
		li.V2 = l.Vertexes[li.V2Num]
		li.DX = li.V2.X - li.V1.X
		li.DY = li.V2.Y - li.V1.Y
		if li.SideRNum >= 0 && li.SideRNum < len(l.Sides) { // -1 means no Side
			li.SideR = &l.Sides[li.SideRNum]
			li.FrontSector = li.SideR.Sector
		}
		if li.SideLNum >= 0 && li.SideLNum < len(l.Sides) { // -1 means no Side
			li.SideL = &l.Sides[li.SideLNum]
			li.BackSector = li.SideL.Sector
		}
		if li.SideR == nil {
			return fmt.Errorf("line %v: no front side", i)
		}
	}

	// Line Segments
	for i := range l.LineSegments {
		s := &l.LineSegments[i] // Point to element
		if s.V1Num >= len(l.Vertexes) || s.V2Num >= len(l.Vertexes) || s.LineNum >= len(l.Lines) {
			return fmt.Errorf("segment %v: bad reference", i)
		}
		s.V1 = l.Vertexes[s.V1Num]
		s.V2 = l.Vertexes[s.V2Num]
		s.Line = &l.Lines[s.LineNum]
		if s.IsSideL {
			s.Side, s.BackSide = s.Line.SideL, s.Line.SideR
		} else {
			s.Side, s.BackSide = s.Line.SideR, s.Line.SideL
		}
		if s.Side == nil {
			return fmt.Errorf("segment %v: missing side", i)
		}
		s.FrontSector = s.Side.Sector
		if s.BackSide != nil {
			s.BackSector = s.BackSide.Sector
		}
	}

	// SubSectors
	for i := range l.SubSectors {
		s := &l.SubSectors[i] // Point to element
		s.Index = i
		end := s.StartLineSegment + s.numLineSegments
		if s.numLineSegments <= 0 || end > len(l.LineSegments) {
			return fmt.Errorf("subsector %v: bad segment range", i)
		}
		s.LineSegments = l.LineSegments[s.StartLineSegment:end]
		s.Sector = s.LineSegments[0].Side.Sector
	}

	// Nodes
	for i := range l.Nodes {
		n := &l.Nodes[i] // Point to element
		var err error
		if n.ChildR, err = l.child(n.ChildNumR); err != nil {
			return fmt.Errorf("node %v: %w", i, err)
		}
		if n.ChildL, err = l.child(n.ChildNumL); err != nil {
			return fmt.Errorf("node %v: %w", i, err)
		}
	}
	switch {
	case len(l.Nodes) > 0:
		l.RootNode = &l.Nodes[len(l.Nodes)-1]
	case len(l.SubSectors) > 0:
		l.RootNode = &l.SubSectors[0]
	}

	// Sectors
	for i := range l.Lines {
		li := &l.Lines[i]
		if li.FrontSector != nil {
			li.FrontSector.Lines = append(li.FrontSector.Lines, li)
		}
		if li.BackSector != nil && li.BackSector != li.FrontSector {
			li.BackSector.Lines = append(li.BackSector.Lines, li)
		}
	}

	return nil
}

// child resolves a node child number: the high bit marks a subsector.
func (l *Level) child(num int) (BSPMember, error) {
	if num < 0 {
		idx := num & math.MaxInt16
		if idx >= len(l.SubSectors) {
			return nil, fmt.Errorf("bad subsector %v", idx)
		}
		return &l.SubSectors[idx], nil
	}
	if num >= len(l.Nodes) {
		return nil, fmt.Errorf("bad node %v", num)
	}
	return &l.Nodes[num], nil
}

func (w *WAD) readThings(lumpInfo *LumpInfo, format Format) ([]Thing, error) {
	logger.Println("Reading Things ...")

	if format == FormatHexen {
		binThings, err := readLumpInto[binHexenThing](w, lumpInfo, int(unsafe.Sizeof(binHexenThing{})))
		if err != nil {
			return nil, err
		}

		// Translate to canonical
		things := make([]Thing, len(binThings))
		for i, t := range binThings {
			things[i] = Thing{
				X:               int(t.X),
				Y:               int(t.Y),
				Z:               int(t.Z),
				Angle:           degreesToRadians(t.Angle),
				Type:            int(t.Type),
				Skill1and2:      t.Options&1 != 0,
				Skill3:          t.Options&2 != 0,
				Skill4and5:      t.Options&4 != 0,
				Ambush:          t.Options&8 != 0,
				MultiplayerOnly: t.Options&0x400 != 0,
				TID:             int(t.TID),
				Special:         int(t.Special),
				Args:            argsToInts(t.Args),
			}
		}
		logger.Printf("Read %v things", len(things))
		return things, nil
	}

	binThings, err := readLumpInto[binThing](w, lumpInfo, int(unsafe.Sizeof(binThing{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	things := make([]Thing, len(binThings))
	for i, t := range binThings {
		things[i] = Thing{
			X:               int(t.X),
			Y:               int(t.Y),
			Angle:           degreesToRadians(t.Angle),
			Type:            int(t.Type),
			Skill1and2:      t.Options&1 != 0,
			Skill3:          t.Options&2 != 0,
			Skill4and5:      t.Options&4 != 0,
			Ambush:          t.Options&8 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}
	logger.Printf("Read %v things", len(things))
	return things, nil
}

func (w *WAD) readSides(lumpInfo *LumpInfo) ([]Side, error) {
	logger.Println("Reading Sides ...")

	binSides, err := readLumpInto[binSide](w, lumpInfo, int(unsafe.Sizeof(binSide{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	sides := make([]Side, len(binSides))
	for i, s := range binSides {
		sides[i] = Side{
			XOffset:           toFloat(s.XOffset),
			YOffset:           toFloat(s.YOffset),
			UpperTextureName:  s.UpperTexture.String(),
			MiddleTextureName: s.MiddleTexture.String(),
			LowerTextureName:  s.LowerTexture.String(),
			SectorNum:         int(s.SectorNum),
		}
		sides[i].UpperTexture = w.Textures[sides[i].UpperTextureName]
		sides[i].MiddleTexture = w.Textures[sides[i].MiddleTextureName]
		sides[i].LowerTexture = w.Textures[sides[i].LowerTextureName]
	}

	logger.Printf("Read %v sides", len(sides))
	return sides, nil
}

func (w *WAD) readVertexes(lumpInfo *LumpInfo) ([]Vertex, error) {
	logger.Println("Reading Vertexes ...")

	binVertexes, err := readLumpInto[binVertex](w, lumpInfo, int(unsafe.Sizeof(binVertex{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	vertexes := make([]Vertex, len(binVertexes))
	for i, v := range binVertexes {
		vertexes[i] = Vertex{X: toFloat(v.X), Y: toFloat(v.Y)}
	}
	logger.Printf("Read %v vertexes", len(vertexes))

	return vertexes, nil
}

func (w *WAD) readLineSegments(lumpInfo *LumpInfo) ([]LineSegment, error) {
	logger.Println("Reading Line Segments ...")

	binSegments, err := readLumpInto[binLineSegment](w, lumpInfo, int(unsafe.Sizeof(binLineSegment{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	segments := make([]LineSegment, len(binSegments))
	for i, s := range binSegments {
		segments[i] = LineSegment{
			V1Num:   int(uint16(s.V1)),
			V2Num:   int(uint16(s.V2)),
			Angle:   bamToRadians(s.Angle),
			LineNum: int(uint16(s.LineNum)),
			IsSideL: s.Direction == 1,
			Offset:  toFloat(s.Offset),
		}
	}
	logger.Printf("Read %v line segments", len(segments))

	return segments, nil
}

func (w *WAD) readSubSectors(lumpInfo *LumpInfo) ([]SubSector, error) {
	logger.Println("Reading Sub Sectors ...")

	binSubSectors, err := readLumpInto[binSubSector](w, lumpInfo, int(unsafe.Sizeof(binSubSector{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	subSectors := make([]SubSector, len(binSubSectors))
	for i, s := range binSubSectors {
		subSectors[i] = SubSector{
			numLineSegments:  int(s.NumSegments),
			StartLineSegment: int(uint16(s.StartLineSegment)),
		}
	}
	logger.Printf("Read %v sub sectors", len(subSectors))

	return subSectors, nil
}

func (w *WAD) readNodes(lumpInfo *LumpInfo) ([]Node, error) {
	logger.Println("Reading Nodes ...")

	binNodes, err := readLumpInto[binNode](w, lumpInfo, int(unsafe.Sizeof(binNode{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	nodes := make([]Node, len(binNodes))
	for i, n := range binNodes {
		nodes[i] = Node{
			X:         toFloat(n.X),
			Y:         toFloat(n.Y),
			DX:        toFloat(n.DX),
			DY:        toFloat(n.DY),
			BBoxR:     bBoxFromBin(n.BBoxR),
			BBoxL:     bBoxFromBin(n.BBoxL),
			ChildNumR: int(n.ChildNumR),
			ChildNumL: int(n.ChildNumL),
		}
	}
	logger.Printf("Read %v nodes", len(nodes))

	return nodes, nil
}

func (w *WAD) readSectors(lumpInfo *LumpInfo) ([]Sector, error) {
	logger.Println("Reading Sectors ...")

	binSectors, err := readLumpInto[binSector](w, lumpInfo, int(unsafe.Sizeof(binSector{})))
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	sectors := make([]Sector, len(binSectors))
	for i, s := range binSectors {
		sectors[i] = Sector{
			Index:              i,
			FloorHeight:        toFloat(s.FloorHeight),
			CeilingHeight:      toFloat(s.CeilingHeight),
			FloorTextureName:   s.FloorTexture.String(),
			CeilingTextureName: s.CeilingTexture.String(),
			LightLevel:         int(s.LightLevel),
			Type:               SectorType(s.Type),
			TagNum:             int(s.TagNum),
		}
		sectors[i].FloorTexture = w.Flats[sectors[i].FloorTextureName]
		sectors[i].CeilingTexture = w.Flats[sectors[i].CeilingTextureName]
	}
	logger.Printf("Read %v Sectors", len(sectors))

	return sectors, nil
}

func bBoxFromBin(b binBBox) BoundBox {
	return BoundBox{
		Top:    toFloat(b.Top),
		Bottom: toFloat(b.Bottom),
		Left:   toFloat(b.Left),
		Right:  toFloat(b.Right),
	}
}

func argsToInts(args [5]uint8) [5]int {
	var out [5]int
	for i, a := range args {
		out[i] = int(a)
	}
	return out
}

// degreesToRadians
func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}

const halfScale = 1 << 15

func bamToRadians[T constraints.Signed](n T) float64 {
	return ((float64(n) + halfScale) * math.Pi) / halfScale
}
