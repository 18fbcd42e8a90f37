package specials

import "github.com/stuarthighley/doomfx/world"

// Thinker is one of the mover or light effect types of this package.
type Thinker interface {
	Sector() *world.Sector
	thinker()
}

func (d *Door) Sector() *world.Sector        { return d.Sec }
func (f *Floor) Sector() *world.Sector       { return f.Sec }
func (c *Ceiling) Sector() *world.Sector     { return c.Sec }
func (p *Plat) Sector() *world.Sector        { return p.Sec }
func (p *Pillar) Sector() *world.Sector      { return p.Sec }
func (w *Waggle) Sector() *world.Sector      { return w.Sec }
func (f *FireFlicker) Sector() *world.Sector { return f.Sec }
func (f *LightFlash) Sector() *world.Sector  { return f.Sec }
func (f *Strobe) Sector() *world.Sector      { return f.Sec }
func (g *Glow) Sector() *world.Sector        { return g.Sec }
func (l *Light) Sector() *world.Sector       { return l.Sec }
func (p *Phase) Sector() *world.Sector       { return p.Sec }

func (*Door) thinker()        {}
func (*Floor) thinker()       {}
func (*Ceiling) thinker()     {}
func (*Plat) thinker()        {}
func (*Pillar) thinker()      {}
func (*Waggle) thinker()      {}
func (*FireFlicker) thinker() {}
func (*LightFlash) thinker()  {}
func (*Strobe) thinker()      {}
func (*Glow) thinker()        {}
func (*Light) thinker()       {}
func (*Phase) thinker()       {}

// IsPlaneMover reports whether t moves a plane and so owns its sector.
func IsPlaneMover(t Thinker) bool {
	switch t.(type) {
	case *Door, *Floor, *Ceiling, *Plat, *Pillar, *Waggle:
		return true
	}
	return false
}

// Kind names the variant of a thinker.
func Kind(t Thinker) string {
	switch t.(type) {
	case *Door:
		return "door"
	case *Floor:
		return "floor"
	case *Ceiling:
		return "ceiling"
	case *Plat:
		return "plat"
	case *Pillar:
		return "pillar"
	case *Waggle:
		return "waggle"
	case *FireFlicker:
		return "fireflicker"
	case *LightFlash:
		return "lightflash"
	case *Strobe:
		return "strobe"
	case *Glow:
		return "glow"
	case *Light:
		return "light"
	case *Phase:
		return "phase"
	}
	return "unknown"
}
