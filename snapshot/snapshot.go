// Package snapshot saves and restores the mover state of a map.
//
// A snapshot file is a zstd stream holding one line of JSON header
// followed by the gob encoded state. The header can be read on its own to
// list snapshots without decoding them.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

var ErrVersion = errors.New("unsupported snapshot version")

type Header struct {
	Version int    `json:"version"`
	Map     string `json:"map"`
	Game    string `json:"game"`
	Tick    int    `json:"tick"`
	Movers  int    `json:"movers"`
}

type SnapshotV1 struct {
	Header Header

	Random  int // Index into the random table
	Sectors []SectorV1
	Movers  []MoverV1
}

// SectorV1 is the part of a sector the movers change.
type SectorV1 struct {
	Floor   PlaneV1
	Ceiling PlaneV1
	Light   float64
	Special int
}

type PlaneV1 struct {
	Height   float64
	Target   float64
	Speed    float64
	Material string
}

// MoverV1 is one thinker. Kind names the variant and exactly one of the
// variant fields is set.
type MoverV1 struct {
	Kind   string
	Sector int
	Stasis bool

	Door        *DoorV1
	Floor       *FloorV1
	Ceiling     *CeilingV1
	Plat        *PlatV1
	Pillar      *PillarV1
	Waggle      *WaggleV1
	FireFlicker *FireFlickerV1
	LightFlash  *LightFlashV1
	Strobe      *StrobeV1
	Glow        *GlowV1
	Light       *LightV1
	Phase       *PhaseV1
}

type DoorV1 struct {
	Type         int
	State        int
	TopHeight    float64
	Speed        float64
	TopWait      int
	TopCountdown int
}

type FloorV1 struct {
	Type       int
	Crush      bool
	Direction  int
	NewSpecial int
	Material   string
	Dest       float64
	Speed      float64

	DelayCount             int
	DelayTotal             int
	StairsDelayHeight      float64
	StairsDelayHeightDelta float64
	ResetHeight            float64
	ResetDelay             int
	ResetDelayCount        int
}

type CeilingV1 struct {
	Type      int
	Bottom    float64
	Top       float64
	Speed     float64
	Crush     bool
	Direction int
	OldDir    int
	Tag       int
}

type PlatV1 struct {
	Type   int
	Status int
	Speed  float64
	Low    float64
	High   float64
	Wait   int
	Count  int
	Crush  bool
	Tag    int
}

type PillarV1 struct {
	FloorSpeed   float64
	CeilingSpeed float64
	FloorDest    float64
	CeilingDest  float64
	Direction    int
	Crush        bool
}

type WaggleV1 struct {
	State          int
	OriginalHeight float64
	Accumulator    float64
	AccDelta       float64
	TargetScale    float64
	Scale          float64
	ScaleDelta     float64
	Ticker         int
}

type FireFlickerV1 struct {
	Count    int
	MaxLight float64
	MinLight float64
}

type LightFlashV1 struct {
	Count    int
	MaxLight float64
	MinLight float64
	MaxTime  int
	MinTime  int
}

type StrobeV1 struct {
	Count      int
	MinLight   float64
	MaxLight   float64
	DarkTime   int
	BrightTime int
}

type GlowV1 struct {
	MinLight  float64
	MaxLight  float64
	Direction int
}

type LightV1 struct {
	Type   int
	Value1 float64
	Value2 float64
	Delta  float64
	Dir    int
	Tics1  int
	Tics2  int
	Count  int
}

type PhaseV1 struct {
	Index int
	Base  float64
}

// ParseLevel turns a compression level name (fastest, default, better or
// best) into a zstd level. An empty name is the default.
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	if name == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return zstd.SpeedDefault, fmt.Errorf("unknown compression level %q", name)
	}
	return level, nil
}

func WriteSnapshot(path string, snap SnapshotV1, level zstd.EncoderLevel) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(level))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	snap.Header.Version = Version
	snap.Header.Movers = len(snap.Movers)
	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader returns the header of the snapshot at path without decoding
// the rest.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %v", ErrVersion, h.Version)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body carries the header too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("%w: %v", ErrVersion, snap.Header.Version)
	}
	return snap, nil
}
