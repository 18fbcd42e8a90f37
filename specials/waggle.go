package specials

import (
	"math"

	"github.com/stuarthighley/doomfx/thinker"
	"github.com/stuarthighley/doomfx/world"
)

// floatBob is one period of the bobbing offset used by floating things and
// waggling floors.
var floatBob [64]float64

func init() {
	for i := range floatBob {
		floatBob[i] = 8 * math.Sin(float64(i)*math.Pi/32)
	}
}

// FloatBobOffset returns the bob offset at phase i of 64.
func FloatBobOffset(i int) float64 {
	return floatBob[i&63]
}

type WaggleState int

const (
	WaggleExpand WaggleState = iota
	WaggleStable
	WaggleReduce
)

// Waggle bobs a floor up and down around its original height. The swing
// grows to full size, holds for a while, then shrinks away.
type Waggle struct {
	Sec            *world.Sector
	OriginalHeight float64
	Accumulator    float64
	AccDelta       float64
	TargetScale    float64
	Scale          float64
	ScaleDelta     float64
	Ticker         int // Ticks left at full size, -1 for ever
	State          WaggleState
}

func (s *Sim) thinkWaggle(id thinker.ID, w *Waggle) {
	sec := w.Sec
	switch w.State {
	case WaggleExpand:
		w.Scale += w.ScaleDelta
		if w.Scale >= w.TargetScale {
			w.Scale = w.TargetScale
			w.State = WaggleStable
		}
	case WaggleReduce:
		w.Scale -= w.ScaleDelta
		if w.Scale <= 0 {
			sec.Floor().Height = w.OriginalHeight
			s.validator.ChangeSector(sec, true)
			s.finish(id, sec)
			return
		}
	default:
		if w.Ticker != -1 {
			w.Ticker--
			if w.Ticker == 0 {
				w.State = WaggleReduce
			}
		}
	}

	w.Accumulator += w.AccDelta
	h := w.OriginalHeight + FloatBobOffset(int(w.Accumulator))*w.Scale
	p := sec.Floor()
	p.Height = h
	p.Target = h
	p.Speed = 0
	s.validator.ChangeSector(sec, true)
}

// StartFloorWaggle starts idle tagged floors waggling. height and speed
// are in 64ths, offset is the starting phase and timer the seconds to
// waggle at full size, zero for ever.
func (s *Sim) StartFloorWaggle(tag, height, speed, offset, timer int) bool {
	started := false
	for _, sec := range s.Map.SectorsByTag(tag) {
		if s.busy(sec) {
			continue
		}
		started = true
		w := &Waggle{
			Sec:            sec,
			OriginalHeight: sec.FloorHeight(),
			Accumulator:    float64(offset),
			AccDelta:       float64(speed) / 64,
			TargetScale:    float64(height) / 64,
			Ticker:         -1,
			State:          WaggleExpand,
		}
		w.ScaleDelta = w.TargetScale / float64(TicRate+(3*TicRate*height)/255)
		if timer != 0 {
			w.Ticker = timer * TicRate
		}
		s.occupy(sec, w)
	}
	return started
}
