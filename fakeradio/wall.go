package fakeradio

import (
	"github.com/stuarthighley/doomfx/world"
)

// WallSection emits the shadows for the part of seg between the heights
// bottom and top: along the ceiling, along the floor, and in the corners at
// either end of the line. Minisegs and sectors without shadows are skipped.
func (f *Frame) WallSection(seg *world.Seg, bottom, top float64, r Renderer) {
	if seg.Line == nil || seg.Front == nil {
		return
	}
	sh := f.Sector(seg.Front)
	if sh.Closed || sh.Size <= 0 {
		return
	}
	c := f.UpdateLine(seg.Line, seg.Side)
	if c == nil {
		return
	}

	w := wall{
		c:       c,
		seg:     seg,
		bottom:  bottom,
		top:     top,
		fFloor:  seg.Front.FloorHeight(),
		fCeil:   seg.Front.CeilingHeight(),
		back:    seg.Back,
		floorGl: seg.Front.Floor().Glowing(),
		ceilGl:  seg.Front.Ceiling().Glowing(),
	}
	emit := func(s WallShadow) {
		s.Seg = seg
		s.Bottom, s.Top = bottom, top
		s.Alpha = clamp01(s.Alpha * sh.Darkness)
		r.WallShadow(s)
	}

	if !w.ceilGl {
		size := sh.Size + f.longWallBonus(c.Spans[edgeTop].Length)
		if top > w.fCeil-size && bottom < w.fCeil {
			emit(w.topParams(size))
		}
	}
	if !w.floorGl {
		size := sh.Size + f.longWallBonus(c.Spans[edgeBottom].Length)
		if bottom < w.fFloor+size && top > w.fFloor {
			emit(w.bottomParams(size))
		}
	}

	if w.floorGl && w.ceilGl {
		return
	}
	lineLength := seg.Line.Length
	size := sh.Size + f.longWallBonus(lineLength)
	if c.SideCorners[0].Factor > 0 && seg.Offset < size {
		emit(w.sideParams(size, false))
	}
	if c.SideCorners[1].Factor > 0 && seg.Offset+seg.Length > lineLength-size {
		emit(w.sideParams(size, true))
	}
}

type wall struct {
	c               *SideConfig
	seg             *world.Seg
	bottom, top     float64
	fFloor, fCeil   float64
	back            *world.Sector
	floorGl, ceilGl bool
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// texX returns the horizontal texture offset; a negative length means the
// texture is flipped.
func texX(length, offset float64) float64 {
	if length > 0 {
		return offset
	}
	return length + offset
}

// texY returns the vertical texture offset; a negative height means the
// texture is flipped.
func (w *wall) texY(height float64) float64 {
	if height > 0 {
		return w.fCeil - w.top
	}
	return w.fFloor - w.top
}

// spanX sets the shadow width to the span's length, flipped if asked.
func (w *wall) spanX(s *WallShadow, span int, flip bool) {
	length := w.c.Spans[span].Length
	if flip {
		length = -length
	}
	s.Width = length
	s.OffsetX = texX(length, w.c.Spans[span].Shift+w.seg.Offset)
}

func (w *wall) topParams(size float64) WallShadow {
	c := w.c
	s := WallShadow{Part: PartTop, Alpha: 1, Height: size, WallLength: w.seg.Length, Texture: TextureOO}
	s.OffsetY = w.texY(s.Height)
	tc := &c.TopCorners
	w.spanX(&s, edgeTop, false)

	if c.SideCorners[0].Factor == -1 || c.SideCorners[1].Factor == -1 {
		// At least one corner faces outwards.
		switch {
		case c.SideCorners[0].Factor == -1 && c.SideCorners[1].Factor == -1,
			tc[0].Factor == -1 && tc[1].Factor == -1:
		case c.SideCorners[1].Factor == -1:
			if -tc[0].Offset < 0 && c.BottomCorners[0].Height < w.fCeil {
				w.spanX(&s, edgeTop, true)
				s.Texture = TextureOE
			}
		default:
			if -tc[1].Offset < 0 && c.BottomCorners[1].Height < w.fCeil {
				s.Texture = TextureOE
			}
		}
		return s
	}

	switch {
	case tc[0].Factor == -1 && tc[1].Factor == -1:
	case tc[1].Factor == -1 && tc[0].Factor > minOpen:
	case tc[0].Factor == -1 && tc[1].Factor > minOpen:
	case tc[0].Factor <= minOpen && tc[1].Factor <= minOpen:
		// Both edges are open.
		if tc[0].Proximity != nil && tc[1].Proximity != nil {
			if -tc[0].Offset >= 0 && -tc[1].Offset < 0 {
				s.Texture = TextureCO
				w.limitHeight(&s, size, -tc[0].Offset, -tc[0].Offset)
			} else if -tc[0].Offset < 0 && -tc[1].Offset >= 0 {
				s.Texture = TextureCO
				w.spanX(&s, edgeTop, true)
				w.limitHeight(&s, size, -tc[1].Offset, -tc[1].Offset)
			}
		} else if -tc[0].Offset < -minDiff {
			s.Texture = TextureOE
			w.spanX(&s, edgeBottom, true)
		} else if -tc[1].Offset < -minDiff {
			s.Texture = TextureOE
		}
	case tc[0].Factor <= minOpen:
		if -tc[0].Offset < 0 {
			s.Texture = TextureCO
		}
		w.spanX(&s, edgeTop, true)
	case tc[1].Factor <= minOpen:
		if -tc[1].Offset < 0 {
			s.Texture = TextureCO
		}
	}
	return s
}

func (w *wall) bottomParams(size float64) WallShadow {
	c := w.c
	s := WallShadow{Part: PartBottom, Alpha: 1, Height: -size, WallLength: w.seg.Length, Texture: TextureOO}
	s.OffsetY = w.texY(s.Height)
	bc := &c.BottomCorners
	w.spanX(&s, edgeBottom, false)

	if c.SideCorners[0].Factor == -1 || c.SideCorners[1].Factor == -1 {
		switch {
		case c.SideCorners[0].Factor == -1 && c.SideCorners[1].Factor == -1,
			bc[0].Factor == -1 && bc[1].Factor == -1:
		case c.SideCorners[1].Factor == -1:
			if bc[0].Offset < 0 && c.TopCorners[0].Height > w.fFloor {
				w.spanX(&s, edgeBottom, true)
				s.Texture = TextureOE
			}
		default:
			if bc[1].Offset < 0 && c.TopCorners[1].Height > w.fFloor {
				s.Texture = TextureOE
			}
		}
		return s
	}

	switch {
	case bc[0].Factor == -1 && bc[1].Factor == -1:
	case bc[1].Factor == -1 && bc[0].Factor > minOpen:
	case bc[0].Factor == -1 && bc[1].Factor > minOpen:
	case bc[0].Factor <= minOpen && bc[1].Factor <= minOpen:
		if bc[0].Proximity != nil && bc[1].Proximity != nil {
			if bc[0].Offset >= 0 && bc[1].Offset < 0 {
				s.Texture = TextureCO
				w.limitHeight(&s, size, bc[0].Offset, -bc[0].Offset)
			} else if bc[0].Offset < 0 && bc[1].Offset >= 0 {
				s.Texture = TextureCO
				w.spanX(&s, edgeBottom, true)
				w.limitHeight(&s, size, bc[1].Offset, -bc[1].Offset)
			}
		} else if bc[0].Offset < -minDiff {
			s.Texture = TextureOE
			w.spanX(&s, edgeBottom, true)
		} else if bc[1].Offset < -minDiff {
			s.Texture = TextureOE
		}
	case bc[0].Factor <= minOpen:
		if bc[0].Offset < 0 {
			s.Texture = TextureCO
		}
		w.spanX(&s, edgeBottom, true)
	case bc[1].Factor <= minOpen:
		if bc[1].Offset < 0 {
			s.Texture = TextureCO
		}
	}
	return s
}

// limitHeight keeps the shadow from reaching past a neighbouring plane
// that is step higher. Steps too small to matter use the edge texture.
func (w *wall) limitHeight(s *WallShadow, size, step, height float64) {
	if size <= step {
		return
	}
	if step < inDiff {
		s.Texture = TextureOE
		return
	}
	s.Height = height
	s.OffsetY = w.texY(s.Height)
}

func (w *wall) sideParams(size float64, right bool) WallShadow {
	c := w.c
	lineLength := w.seg.Line.Length
	s := WallShadow{
		Part:       PartLeft,
		Horizontal: true,
		OffsetY:    w.bottom - w.fFloor,
		Height:     w.fCeil - w.fFloor,
		WallLength: w.seg.Length,
	}
	mul := c.SideCorners[b2i(right)].Factor
	s.Alpha = mul * mul * mul

	// Keep the shadow within the line; halve it if the other end casts
	// one too.
	other := c.SideCorners[b2i(!right)].Factor
	width := size
	if size > lineLength {
		width = lineLength
		if other > minOpen {
			width = lineLength / 2
		}
	}
	if right {
		s.Part = PartRight
		s.OffsetX = -lineLength + w.seg.Offset
		s.Width = -width
	} else {
		s.OffsetX = w.seg.Offset
		s.Width = width
	}

	flipGlow := func() {
		s.OffsetY = w.bottom - w.fCeil
		s.Height = -(w.fCeil - w.fFloor)
	}
	s.Texture = TextureCC
	if w.back != nil {
		bFloor, bCeil := w.back.FloorHeight(), w.back.CeilingHeight()
		if bFloor > w.fFloor || bCeil < w.fCeil {
			switch {
			case !w.floorGl && !w.ceilGl:
			case w.floorGl:
				flipGlow()
				s.Texture = TextureCO
			default:
				s.Texture = TextureCO
			}
		}
		return s
	}
	switch {
	case w.floorGl:
		s.Height = -(w.fCeil - w.fFloor)
		s.OffsetY = w.texY(s.Height)
		s.Texture = TextureCO
	case w.ceilGl:
		s.Texture = TextureCO
	}
	return s
}
