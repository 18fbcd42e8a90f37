// Package fakeradio builds the corner shadows that fake radiosity lighting
// where walls meet floors, ceilings and each other.
//
// A Frame is prepared once per rendered frame, after the movers for that
// tick have committed their heights. Walls are shadowed per seg section
// with WallSection, floor and ceiling edges per subsector with
// SubsectorEdges. Shadows are handed to a Renderer as alpha blended
// polygons; the package itself draws nothing.
package fakeradio

import (
	"fmt"

	"github.com/stuarthighley/doomfx/world"
)

// Config holds the tunables of the shadow builder.
type Config struct {
	Enabled  bool
	Darkness float64 // Multiplier on the light derived shadow darkness

	// Walls longer than LongWallMin get a larger shadow: up to
	// LongWallMax of the excess length is divided by LongWallDiv and
	// added to the shadow size.
	LongWallMin float64
	LongWallMax float64
	LongWallDiv float64
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Darkness:    1.2,
		LongWallMin: 400,
		LongWallMax: 1500,
		LongWallDiv: 30,
	}
}

// Texture selects one of the shadow texture variants. The letters describe
// the two ends of the shadow: open, closed or edge.
type Texture int

const (
	TextureOO Texture = iota
	TextureCO
	TextureOE
	TextureCC
)

func (t Texture) String() string {
	switch t {
	case TextureOO:
		return "OO"
	case TextureCO:
		return "CO"
	case TextureOE:
		return "OE"
	case TextureCC:
		return "CC"
	}
	return fmt.Sprintf("Texture(%d)", int(t))
}

// Part says which edge of a wall section a shadow darkens.
type Part int

const (
	PartTop Part = iota
	PartBottom
	PartLeft
	PartRight
)

func (p Part) String() string {
	return [...]string{"top", "bottom", "left", "right"}[p]
}

// WallShadow is one shadow quad laid over a wall section.
type WallShadow struct {
	Seg         *world.Seg
	Part        Part
	Bottom, Top float64 // Height range of the section

	Texture    Texture
	Horizontal bool    // Texture runs along the wall height (side shadows)
	Width      float64 // Negative flips the texture horizontally
	Height     float64 // Negative flips the texture vertically
	OffsetX    float64
	OffsetY    float64
	WallLength float64
	Alpha      float64
}

// PlaneShadow is one shadow quad along a line edge of a floor or ceiling.
// Points are in drawing order. The outer points lie on the line, the inner
// points are offset into the sector and always have zero alpha.
type PlaneShadow struct {
	Line   *world.Line
	Side   int
	Plane  world.PlaneID
	Z      float64
	Points [4]world.Vec2
	Alpha  [4]float64
}

// Renderer receives the shadow polygons of a frame.
type Renderer interface {
	WallShadow(s WallShadow)
	PlaneShadow(s PlaneShadow)
}

// Recorder is a Renderer that keeps everything it is given.
type Recorder struct {
	Walls  []WallShadow
	Planes []PlaneShadow
}

func (r *Recorder) WallShadow(s WallShadow)   { r.Walls = append(r.Walls, s) }
func (r *Recorder) PlaneShadow(s PlaneShadow) { r.Planes = append(r.Planes, s) }

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.Walls = r.Walls[:0]
	r.Planes = r.Planes[:0]
}

// GeometryError reports map geometry the shadow builder cannot work with.
// It is raised with panic; the map is unusable once it happens.
type GeometryError struct {
	Line int // -1 when not known
	Msg  string
}

func (e *GeometryError) Error() string {
	if e.Line < 0 {
		return "fakeradio: " + e.Msg
	}
	return fmt.Sprintf("fakeradio: line %v: %v", e.Line, e.Msg)
}

// Frame is the shadow builder's state for one map. A new Frame is ready for
// its first frame; call Begin before each one after that.
type Frame struct {
	Config Config
	Map    *world.Map

	count int
	sides []SideConfig // By side index
}

func NewFrame(m *world.Map, cfg Config) *Frame {
	return &Frame{
		Config: cfg,
		Map:    m,
		count:  1,
		sides:  make([]SideConfig, len(m.Sides)),
	}
}

// Begin starts a new frame. Edge scans and plane shadows done during the
// previous frame become stale.
func (f *Frame) Begin() {
	f.count++
}

// Count returns the current frame number.
func (f *Frame) Count() int {
	return f.count
}

// SectorShadow holds the shadow properties derived from a sector's light.
type SectorShadow struct {
	Closed   bool // No open space, so nothing to shadow
	Size     float64
	Darkness float64
}

// Sector returns the shadow properties for walls in sec. Darker sectors get
// bigger and darker shadows. A pitch black or closed sector gets none.
func (f *Frame) Sector(sec *world.Sector) SectorShadow {
	if !f.Config.Enabled || sec.CeilingHeight() <= sec.FloorHeight() || sec.LightLevel <= 0 {
		return SectorShadow{Closed: true}
	}
	light := sec.LightLevel
	return SectorShadow{
		Size:     2 * (8 + 16 - light*16),
		Darkness: f.darkness(light) * .8,
	}
}

func (f *Frame) darkness(light float64) float64 {
	return (.6 - light*.4) * f.Config.Darkness
}

// longWallBonus is added to the shadow size of long walls.
func (f *Frame) longWallBonus(span float64) float64 {
	c := f.Config
	if c.LongWallDiv > 0 && span > c.LongWallMin {
		return min(span-c.LongWallMin, c.LongWallMax) / c.LongWallDiv
	}
	return 0
}

func isOpen(sec *world.Sector) bool {
	return sec != nil && sec.CeilingHeight() > sec.FloorHeight()
}

func isSky(p *world.Plane) bool {
	return p.Material != nil && p.Material.Sky
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
