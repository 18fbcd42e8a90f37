// Package world is the map geometry the movers and the shadow builder work on:
// sectors with their floor and ceiling planes, lines and sides, vertices with
// their line owner rings, and subsectors.
//
// Everything is owned by a Map and addressed by pointer. Sector planes carry
// a target height and speed next to the current height so a renderer can
// interpolate between ticks.
package world

import (
	"github.com/stuarthighley/doomfx/thinker"
)

// PlaneID selects one of a sector's two planes.
type PlaneID int

const (
	Floor PlaneID = iota
	Ceiling
)

func (p PlaneID) String() string {
	if p == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// Material is a wall texture or flat.
type Material struct {
	Name          string
	Width, Height float64
	Masked        bool // Has transparent columns
	Sky           bool
	Glow          bool // Full bright; gets no fake radio shadows
}

// Plane is a sector's floor or ceiling.
type Plane struct {
	Height   float64
	Target   float64 // Where the current mover is headed
	Speed    float64 // Units per tick of the current mover
	Material *Material
}

// Glowing reports whether the plane is lit by its own material.
func (p *Plane) Glowing() bool {
	return p.Material != nil && p.Material.Glow
}

type Sector struct {
	Index      int
	Planes     [2]Plane
	LightLevel float64 // 0..1
	Tag        int
	Special    int

	Lines       []*Line
	SubSectors  []*SubSector
	Bodies      []*Body
	BBox        BBox
	SoundOrigin Vec2

	// SpecialData is the mover currently owning this sector's planes.
	SpecialData thinker.ID
	ValidCount  int
}

func (s *Sector) Floor() *Plane           { return &s.Planes[Floor] }
func (s *Sector) Ceiling() *Plane         { return &s.Planes[Ceiling] }
func (s *Sector) FloorHeight() float64    { return s.Planes[Floor].Height }
func (s *Sector) CeilingHeight() float64  { return s.Planes[Ceiling].Height }
func (s *Sector) Plane(id PlaneID) *Plane { return &s.Planes[id] }

// IsOpen reports whether there is space between floor and ceiling.
func (s *Sector) IsOpen() bool {
	return s != nil && s.CeilingHeight() > s.FloorHeight()
}

type Side struct {
	Index               int
	Sector              *Sector
	Line                *Line
	Top, Middle, Bottom *Material
	OffsetX, OffsetY    float64
}

// LineFlags mirror the map format's line flags.
type LineFlags uint16

const (
	LineBlocking LineFlags = 1 << iota
	LineBlockMonsters
	LineTwoSided
	LineUpperUnpegged
	LineLowerUnpegged
	LineSecret
	LineBlockSound
	LineNeverMap
	LineAlwaysMap
)

// Front and Back index a line's sides and vertices.
const (
	Front = 0
	Back  = 1
)

type Line struct {
	Index   int
	V       [2]*Vertex
	Owners  [2]*LineOwner // This line's entries in the vertex owner rings
	Sides   [2]*Side
	DX, DY  float64
	Length  float64
	Angle   BinAngle
	Flags   LineFlags
	Special int
	Tag     int
	Args    [5]int // Hexen
	BBox    BBox

	ValidCount     int
	ShadowVisFrame [2]int
}

// Sector returns the sector on the given side, or nil.
func (l *Line) Sector(side int) *Sector {
	if l.Sides[side] == nil {
		return nil
	}
	return l.Sides[side].Sector
}

func (l *Line) FrontSector() *Sector { return l.Sector(Front) }
func (l *Line) BackSector() *Sector  { return l.Sector(Back) }

// HasBack reports whether the line has a back side.
func (l *Line) HasBack() bool {
	return l.Sides[Back] != nil
}

// SelfReferencing reports whether both sides face the same sector.
func (l *Line) SelfReferencing() bool {
	return l.Sides[Front] != nil && l.Sides[Back] != nil &&
		l.Sides[Front].Sector == l.Sides[Back].Sector
}

// SideOf returns which side of the line faces sec, Front if neither.
func (l *Line) SideOf(sec *Sector) int {
	if l.FrontSector() == sec {
		return Front
	}
	if l.BackSector() == sec {
		return Back
	}
	return Front
}

// OwnerAt returns the line's owner node in the ring of vertex v.
func (l *Line) OwnerAt(v *Vertex) *LineOwner {
	switch v {
	case l.V[0]:
		return l.Owners[0]
	case l.V[1]:
		return l.Owners[1]
	}
	return nil
}

type Vertex struct {
	Index     int
	Pos       Vec2
	Owners    *LineOwner // First owner of a clockwise ring
	NumOwners int
}

// LineOwner is a node in the ring of lines meeting at a vertex, sorted
// clockwise.
type LineOwner struct {
	Line       *Line
	Prev, Next *LineOwner
	Angle      BinAngle // Between this line and Next

	ShadowInner    Vec2 // Inner corner of the plane shadow, relative to the vertex
	ShadowExtended Vec2 // Extended point along the line, used next to open edges
}

// Link returns Next when clockwise is true, otherwise Prev.
func (o *LineOwner) Link(clockwise bool) *LineOwner {
	if clockwise {
		return o.Next
	}
	return o.Prev
}

// Seg is the part of a line side that borders one subsector.
type Seg struct {
	Index  int
	V      [2]Vec2
	Line   *Line // nil for minisegs
	Side   int
	Offset float64 // Distance along the line to the start of the seg
	Length float64
	Front  *Sector
	Back   *Sector
}

// ShadowLink attaches a shadowing line side to a subsector.
type ShadowLink struct {
	Line *Line
	Side int
}

type SubSector struct {
	Index    int
	Sector   *Sector
	Segs     []*Seg
	MidPoint Vec2
	BBox     BBox
	Shadows  []ShadowLink
}

// Map owns all geometry of one loaded level.
type Map struct {
	Name       string
	Vertexes   []Vertex
	Sectors    []Sector
	Sides      []Side
	Lines      []Line
	Segs       []Seg
	SubSectors []SubSector
	Materials  map[string]*Material

	// Tic is the current game tick; crush damage is only applied every
	// fourth tick.
	Tic int

	validCount int
}

// NewValidCount starts a new traversal stamp.
func (m *Map) NewValidCount() int {
	m.validCount++
	return m.validCount
}

// SectorsByTag returns the sectors with the given tag in index order.
func (m *Map) SectorsByTag(tag int) []*Sector {
	var out []*Sector
	for i := range m.Sectors {
		if m.Sectors[i].Tag == tag {
			out = append(out, &m.Sectors[i])
		}
	}
	return out
}

// Sector returns the sector with the given index, or nil.
func (m *Map) Sector(i int) *Sector {
	if i < 0 || i >= len(m.Sectors) {
		return nil
	}
	return &m.Sectors[i]
}

// Line returns the line with the given index, or nil.
func (m *Map) Line(i int) *Line {
	if i < 0 || i >= len(m.Lines) {
		return nil
	}
	return &m.Lines[i]
}
