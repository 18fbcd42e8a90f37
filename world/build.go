package world

import (
	"errors"
	"fmt"
	"sort"
)

// SkyFlatName is the flat that marks a plane as open sky.
const SkyFlatName = "F_SKY1"

var ErrZeroLengthLine = errors.New("zero length line")

// SectorDef describes a sector for Builder.
type SectorDef struct {
	Floor, Ceiling  float64
	Light           float64 // 0..1
	FloorMaterial   string
	CeilingMaterial string
	Tag             int
	Special         int
}

// SideDef describes one side of a line for Builder.
type SideDef struct {
	Sector              int
	Top, Middle, Bottom string
	OffsetX, OffsetY    float64
}

// LineDef describes a line for Builder. A nil Back makes the line one sided.
type LineDef struct {
	V1, V2  int
	Front   SideDef
	Back    *SideDef
	Flags   LineFlags
	Special int
	Tag     int
	Args    [5]int
}

// SegDef describes one seg of a subsector. Line is -1 for minisegs.
type SegDef struct {
	V1, V2 int
	Line   int
	Side   int
	Offset float64
}

type subSectorDef struct {
	sector int
	segs   []SegDef
}

// Builder assembles a Map from plain definitions. It is used by the WAD
// loader and by tests that need small hand made maps.
type Builder struct {
	name       string
	vertexes   []Vec2
	sectors    []SectorDef
	lines      []LineDef
	subSectors []subSectorDef
	bodies     []Body
	materials  map[string]*Material
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name, materials: make(map[string]*Material)}
}

// Vertex adds a vertex and returns its index.
func (b *Builder) Vertex(x, y float64) int {
	b.vertexes = append(b.vertexes, Vec2{x, y})
	return len(b.vertexes) - 1
}

// Material registers a material. Materials named in sector or side
// definitions that were never registered are created with zero size.
func (b *Builder) Material(name string, width, height float64) *Material {
	m := b.material(name)
	m.Width, m.Height = width, height
	return m
}

func (b *Builder) material(name string) *Material {
	if name == "" || name == "-" {
		return nil
	}
	if m, ok := b.materials[name]; ok {
		return m
	}
	m := &Material{Name: name, Sky: name == SkyFlatName}
	b.materials[name] = m
	return m
}

// Sector adds a sector and returns its index.
func (b *Builder) Sector(def SectorDef) int {
	b.sectors = append(b.sectors, def)
	return len(b.sectors) - 1
}

// Line adds a line and returns its index.
func (b *Builder) Line(def LineDef) int {
	b.lines = append(b.lines, def)
	return len(b.lines) - 1
}

// SubSector adds a subsector of sector bounded by segs.
func (b *Builder) SubSector(sector int, segs []SegDef) int {
	b.subSectors = append(b.subSectors, subSectorDef{sector: sector, segs: segs})
	return len(b.subSectors) - 1
}

// Body places an occupant in the sector with the given index.
func (b *Builder) Body(sector int, body Body) {
	body.sectorIndex = sector
	b.bodies = append(b.bodies, body)
}

// Build links everything together. Lines with coincident vertices are
// rejected.
func (b *Builder) Build() (*Map, error) {
	logger.Printf("Building map %v ...", b.name)
	m := &Map{
		Name:      b.name,
		Vertexes:  make([]Vertex, len(b.vertexes)),
		Sectors:   make([]Sector, len(b.sectors)),
		Lines:     make([]Line, len(b.lines)),
		Materials: b.materials,
	}

	for i, p := range b.vertexes {
		m.Vertexes[i] = Vertex{Index: i, Pos: p}
	}

	for i, def := range b.sectors {
		s := &m.Sectors[i]
		s.Index = i
		s.LightLevel = def.Light
		s.Tag = def.Tag
		s.Special = def.Special
		s.Planes[Floor] = Plane{Height: def.Floor, Target: def.Floor, Material: b.material(def.FloorMaterial)}
		s.Planes[Ceiling] = Plane{Height: def.Ceiling, Target: def.Ceiling, Material: b.material(def.CeilingMaterial)}
		s.BBox = emptyBBox()
	}

	numSides := 0
	for _, def := range b.lines {
		numSides++
		if def.Back != nil {
			numSides++
		}
	}
	m.Sides = make([]Side, 0, numSides)

	for i, def := range b.lines {
		if err := b.checkVertex(def.V1); err != nil {
			return nil, fmt.Errorf("line %v: %w", i, err)
		}
		if err := b.checkVertex(def.V2); err != nil {
			return nil, fmt.Errorf("line %v: %w", i, err)
		}
		l := &m.Lines[i]
		l.Index = i
		l.V = [2]*Vertex{&m.Vertexes[def.V1], &m.Vertexes[def.V2]}
		l.Flags = def.Flags
		l.Special = def.Special
		l.Tag = def.Tag
		l.Args = def.Args
		d := l.V[1].Pos.Sub(l.V[0].Pos)
		l.DX, l.DY = d.X, d.Y
		l.Length = d.Length()
		if l.Length == 0 {
			return nil, fmt.Errorf("line %v: %w", i, ErrZeroLengthLine)
		}
		l.Angle = Atan2(d.Y, d.X)
		l.BBox = NewBBox(l.V[0].Pos, l.V[1].Pos)

		sides := []*SideDef{&def.Front, def.Back}
		for s, sd := range sides {
			if sd == nil {
				continue
			}
			sec := m.Sector(sd.Sector)
			if sec == nil {
				return nil, fmt.Errorf("line %v side %v: sector %v out of range", i, s, sd.Sector)
			}
			m.Sides = append(m.Sides, Side{
				Index:   len(m.Sides),
				Sector:  sec,
				Line:    l,
				Top:     b.material(sd.Top),
				Middle:  b.material(sd.Middle),
				Bottom:  b.material(sd.Bottom),
				OffsetX: sd.OffsetX,
				OffsetY: sd.OffsetY,
			})
			l.Sides[s] = &m.Sides[len(m.Sides)-1]
		}
		if l.Sides[Back] != nil {
			l.Flags |= LineTwoSided
		}
	}

	m.linkSectorLines()
	m.buildOwnerRings()
	if err := m.buildSubSectors(b); err != nil {
		return nil, err
	}
	for _, body := range b.bodies {
		sec := m.Sector(body.sectorIndex)
		if sec == nil {
			return nil, fmt.Errorf("body in sector %v out of range", body.sectorIndex)
		}
		m.AddBody(sec, body)
	}

	logger.Printf("Built %v sectors, %v lines, %v subsectors", len(m.Sectors), len(m.Lines), len(m.SubSectors))
	return m, nil
}

func (b *Builder) checkVertex(i int) error {
	if i < 0 || i >= len(b.vertexes) {
		return fmt.Errorf("vertex %v out of range", i)
	}
	return nil
}

func (m *Map) linkSectorLines() {
	for i := range m.Lines {
		l := &m.Lines[i]
		front, back := l.FrontSector(), l.BackSector()
		if front != nil {
			front.Lines = append(front.Lines, l)
			front.BBox.Add(l.V[0].Pos)
			front.BBox.Add(l.V[1].Pos)
		}
		if back != nil && back != front {
			back.Lines = append(back.Lines, l)
			back.BBox.Add(l.V[0].Pos)
			back.BBox.Add(l.V[1].Pos)
		}
	}
	for i := range m.Sectors {
		s := &m.Sectors[i]
		if len(s.Lines) == 0 {
			s.BBox = BBox{}
			continue
		}
		s.SoundOrigin = Vec2{(s.BBox.Min.X + s.BBox.Max.X) / 2, (s.BBox.Min.Y + s.BBox.Max.Y) / 2}
	}
}

// buildOwnerRings links the lines meeting at each vertex into a ring sorted
// clockwise. Each owner's Angle is the clockwise angle to its Next.
func (m *Map) buildOwnerRings() {
	type entry struct {
		owner *LineOwner
		angle BinAngle
	}
	perVertex := make([][]entry, len(m.Vertexes))
	for i := range m.Lines {
		l := &m.Lines[i]
		for e := 0; e < 2; e++ {
			v := l.V[e]
			other := l.V[e^1]
			o := &LineOwner{Line: l}
			l.Owners[e] = o
			d := other.Pos.Sub(v.Pos)
			perVertex[v.Index] = append(perVertex[v.Index], entry{o, Atan2(d.Y, d.X)})
		}
	}
	for vi, owners := range perVertex {
		v := &m.Vertexes[vi]
		v.NumOwners = len(owners)
		if len(owners) == 0 {
			continue
		}
		// Descending angle is clockwise order
		sort.SliceStable(owners, func(i, j int) bool { return owners[i].angle > owners[j].angle })
		n := len(owners)
		for i, e := range owners {
			next := owners[(i+1)%n]
			prev := owners[(i+n-1)%n]
			e.owner.Next = next.owner
			e.owner.Prev = prev.owner
			e.owner.Angle = e.angle - next.angle
		}
		v.Owners = owners[0].owner
	}
}

func (m *Map) buildSubSectors(b *Builder) error {
	if len(b.subSectors) == 0 {
		return m.synthesizeSubSectors()
	}
	numSegs := 0
	for _, def := range b.subSectors {
		numSegs += len(def.segs)
	}
	m.SubSectors = make([]SubSector, len(b.subSectors))
	m.Segs = make([]Seg, 0, numSegs)
	for i, def := range b.subSectors {
		sec := m.Sector(def.sector)
		if sec == nil {
			return fmt.Errorf("subsector %v: sector %v out of range", i, def.sector)
		}
		ss := &m.SubSectors[i]
		ss.Index = i
		ss.Sector = sec
		for _, sd := range def.segs {
			if err := b.checkVertex(sd.V1); err != nil {
				return fmt.Errorf("subsector %v: %w", i, err)
			}
			if err := b.checkVertex(sd.V2); err != nil {
				return fmt.Errorf("subsector %v: %w", i, err)
			}
			seg := Seg{
				Index:  len(m.Segs),
				V:      [2]Vec2{m.Vertexes[sd.V1].Pos, m.Vertexes[sd.V2].Pos},
				Side:   sd.Side,
				Offset: sd.Offset,
				Front:  sec,
			}
			seg.Length = seg.V[1].Dist(seg.V[0])
			if l := m.Line(sd.Line); l != nil {
				seg.Line = l
				seg.Back = l.Sector(sd.Side ^ 1)
			}
			m.Segs = append(m.Segs, seg)
			ss.Segs = append(ss.Segs, &m.Segs[len(m.Segs)-1])
		}
		ss.finish()
		sec.SubSectors = append(sec.SubSectors, ss)
	}
	return nil
}

// synthesizeSubSectors gives every sector a single subsector made of the
// line sides facing it. Hand built maps have convex sectors, so that is
// enough for plane shadows.
func (m *Map) synthesizeSubSectors() error {
	numSegs := 0
	for i := range m.Lines {
		numSegs++
		if m.Lines[i].HasBack() {
			numSegs++
		}
	}
	m.SubSectors = make([]SubSector, len(m.Sectors))
	m.Segs = make([]Seg, 0, numSegs)
	for i := range m.Sectors {
		sec := &m.Sectors[i]
		ss := &m.SubSectors[i]
		ss.Index = i
		ss.Sector = sec
		for _, l := range sec.Lines {
			for side := 0; side < 2; side++ {
				if l.Sector(side) != sec {
					continue
				}
				seg := Seg{
					Index:  len(m.Segs),
					V:      [2]Vec2{l.V[side].Pos, l.V[side^1].Pos},
					Line:   l,
					Side:   side,
					Length: l.Length,
					Front:  sec,
					Back:   l.Sector(side ^ 1),
				}
				m.Segs = append(m.Segs, seg)
				ss.Segs = append(ss.Segs, &m.Segs[len(m.Segs)-1])
			}
		}
		ss.finish()
		sec.SubSectors = append(sec.SubSectors, ss)
	}
	return nil
}

func (ss *SubSector) finish() {
	ss.BBox = emptyBBox()
	var sum Vec2
	for _, seg := range ss.Segs {
		ss.BBox.Add(seg.V[0])
		ss.BBox.Add(seg.V[1])
		sum = sum.Add(seg.V[0])
	}
	if len(ss.Segs) == 0 {
		ss.BBox = BBox{}
		return
	}
	ss.MidPoint = sum.Scale(1 / float64(len(ss.Segs)))
}
