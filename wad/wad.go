// Package wad provides access to Doom's data archives also known as WAD files.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
//
// Only what the map simulation needs is read: the lump directory, map lumps
// in both the Doom and the Hexen format, texture sizes and flat names.

package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// WAD is a struct that represents Doom's data archive that contains graphics, sounds, and level
// data. The data is organized as named lumps.
type WAD struct {
	header       *Header
	file         *os.File
	size         int64
	lumpInfos    []LumpInfo
	lumpNums     map[string]int
	Textures     map[string]*Texture
	TexturesList []*Texture
	Flats        map[string]*Flat
	FlatsList    []*Flat
	levels       map[string]int
}

var (
	ErrLumpNotFound = errors.New("lump not found")
	ErrCorrupt      = errors.New("corrupt wad")
)

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type Header struct {
	Magic        string // IWAD or PWAD
	NumLumps     int
	InfoTableOfs int
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

type binTextureHeader struct {
	TextureName String8
	Masked      int32
	Width       int16
	Height      int16
	Unused      int32 // ColumnDirectory
	NumPatches  int16
}

// Texture is a composite wall texture. Only its size is kept; the map
// simulation needs heights for "raise to texture" floors and middle texture
// gap checks, not pixels.
type Texture struct {
	Name          string // Texture name and index into textures map
	Index         int    // Index into TexturesList
	IsMasked      bool   // Has transparent columns
	Width, Height int    // total width and height of the map texture
}

// A flat is an image that is drawn on the floors and ceilings of sectors.
// Each flat is a named lump of 4096 bytes representing a 64x64 square. Only
// the name is needed here: it selects the sky and glowing planes.
type Flat struct {
	Name  string // Flat name and index into flats map
	Index int    // Index into flats list
}

const FlatWidth, FlatHeight = 64, 64

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Special lump names
const SkyFlatName = "F_SKY1"

// /////////////////////////////////////
// NewWAD reads WAD metadata to memory. It returns a WAD object that
// can be used to read individual levels.
// /////////////////////////////////////
func NewWAD(filename string) (*WAD, error) {
	logger.Println("Start reading WAD")

	// Open file
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	wad := &WAD{file: file}
	if err := wad.init(); err != nil {
		file.Close()
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return wad, nil
}

func (w *WAD) init() error {
	// Read header
	var binHeader binHeader
	if err := binary.Read(w.file, binary.LittleEndian, &binHeader); err != nil {
		return err
	}
	magic := string(binHeader.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return fmt.Errorf("bad magic: %s", binHeader.Magic)
	}
	w.header = &Header{magic, int(binHeader.NumLumps), int(binHeader.InfoTableOfs)}
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	w.size = info.Size()

	// Read info tables
	if err := w.readInfoTables(); err != nil {
		return err
	}

	// Read map textures
	textures, texturesList, err := w.readTextures()
	if err != nil {
		return err
	}
	w.Textures = textures
	w.TexturesList = texturesList

	// Read flat lumps. A PWAD holding only maps has none.
	flats, flatsList, err := w.readFlats()
	if err != nil && w.header.Magic == "IWAD" {
		return err
	}
	w.Flats = flats
	w.FlatsList = flatsList

	return nil
}

// Close releases the underlying file.
func (w *WAD) Close() error {
	return w.file.Close()
}

// Magic returns IWAD or PWAD.
func (w *WAD) Magic() string {
	return w.header.Magic
}

func (w *WAD) readInfoTables() error {
	if err := w.seek(int64(w.header.InfoTableOfs)); err != nil {
		return err
	}
	// Each directory entry is 16 bytes and must lie inside the file
	n, ofs := int64(w.header.NumLumps), int64(w.header.InfoTableOfs)
	if n < 0 || ofs < 0 || ofs+n*16 > w.size {
		return fmt.Errorf("%w: %v lumps at %v in %v bytes", ErrCorrupt, n, ofs, w.size)
	}
	lumpNums := map[string]int{}
	levels := map[string]int{}
	binInfos := make([]binLumpInfo, w.header.NumLumps)
	if err := binary.Read(w.file, binary.LittleEndian, binInfos); err != nil {
		return err
	}

	// Translate to canonical
	lumpInfos := make([]LumpInfo, w.header.NumLumps)
	for i, binInfo := range binInfos {
		lumpInfo := LumpInfo{binInfo.Name.String(), int(binInfo.Filepos), int(binInfo.Size)}
		if lumpInfo.Name == "THINGS" && i > 0 {
			lumpNum := i - 1
			info := lumpInfos[lumpNum]
			levels[info.Name] = lumpNum
		}
		lumpNums[lumpInfo.Name] = i
		lumpInfos[i] = lumpInfo
	}
	w.levels = levels
	w.lumpNums = lumpNums
	w.lumpInfos = lumpInfos
	logger.Printf("Read %v lumps, %v levels", len(lumpInfos), len(levels))
	return nil
}

func (w *WAD) readTextures() (map[string]*Texture, []*Texture, error) {
	logger.Println("Loading textures ...")

	textures := make(map[string]*Texture)
	texturesList := make([]*Texture, 0)
	for i := 1; i < 10; i++ {

		name := fmt.Sprintf("TEXTURE%v", i)

		lumpNum, ok := w.lumpNums[name]
		if !ok {
			continue
		}
		lumpInfo := w.lumpInfos[lumpNum]
		if err := w.seekLumpName(name); err != nil {
			continue
		}
		logger.Printf("Loading %v ...", name)

		// Read header
		var count uint32
		if err := binary.Read(w.file, binary.LittleEndian, &count); err != nil {
			return nil, nil, err
		}
		if lumpInfo.Size < 4 || int64(count) > int64(lumpInfo.Size-4)/4 {
			return nil, nil, fmt.Errorf("%w: %v holds %v textures in %v bytes", ErrCorrupt, name, count, lumpInfo.Size)
		}
		offsets := make([]int32, count)

		// Read offsets
		if err := binary.Read(w.file, binary.LittleEndian, offsets); err != nil {
			return nil, nil, err
		}

		// For each offset...
		for _, offset := range offsets {
			if err := w.seek(int64(lumpInfo.Filepos) + int64(offset)); err != nil {
				return nil, nil, err
			}

			// Read header; the patch list that follows is not needed
			var binHeader binTextureHeader
			if err := binary.Read(w.file, binary.LittleEndian, &binHeader); err != nil {
				return nil, nil, err
			}

			texture := &Texture{
				Name:     strings.ToUpper(binHeader.TextureName.String()),
				IsMasked: binHeader.Masked != 0,
				Width:    int(binHeader.Width),
				Height:   int(binHeader.Height),
				Index:    len(texturesList),
			}
			textures[texture.Name] = texture
			texturesList = append(texturesList, texture)
		}
	}
	logger.Printf("Loaded %v textures", len(textures))

	return textures, texturesList, nil
}

// readFlats
func (w *WAD) readFlats() (map[string]*Flat, []*Flat, error) {
	logger.Println("Loading flats ...")

	flats := make(map[string]*Flat)
	flatsList := make([]*Flat, 0)
	startLump, ok := w.lumpNums["F_START"]
	if !ok {
		return flats, flatsList, fmt.Errorf("F_START: %w", ErrLumpNotFound)
	}
	endLump, ok := w.lumpNums["F_END"]
	if !ok {
		return flats, flatsList, fmt.Errorf("F_END: %w", ErrLumpNotFound)
	}

	// For each flat lump
	for i := startLump; i < endLump; i++ {
		lumpInfo := w.lumpInfos[i]

		// Skip marker lumps
		if lumpInfo.Size == 0 {
			continue
		}

		flat := &Flat{Name: lumpInfo.Name, Index: len(flatsList)}
		flats[lumpInfo.Name] = flat
		flatsList = append(flatsList, flat)
	}
	logger.Printf("Loaded %v flats", len(flats))
	return flats, flatsList, nil
}

// LevelNames returns a slice of level names found in the WAD archive.
func (w *WAD) LevelNames() []string {
	result := make([]string, 0, len(w.levels))
	for name := range w.levels {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// seekLumpName
func (w *WAD) seekLumpName(name string) error {
	lumpNum, ok := w.lumpNums[name]
	if !ok {
		return fmt.Errorf("%v: %w", name, ErrLumpNotFound)
	}
	lumpInfo := w.lumpInfos[lumpNum]
	return w.seek(int64(lumpInfo.Filepos))
}

// seek
func (w *WAD) seek(offset int64) error {
	off, err := w.file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return fmt.Errorf("seek failed")
	}
	return nil
}

// readLumpInto reads a whole lump as a slice of fixed size records.
func readLumpInto[T any](w *WAD, lumpInfo *LumpInfo, recordSize int) ([]T, error) {
	if err := w.seek(int64(lumpInfo.Filepos)); err != nil {
		return nil, err
	}
	if lumpInfo.Size%recordSize != 0 {
		return nil, fmt.Errorf("%v: size %v is not a multiple of %v", lumpInfo.Name, lumpInfo.Size, recordSize)
	}
	records := make([]T, lumpInfo.Size/recordSize)
	if err := binary.Read(w.file, binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%v: %w", lumpInfo.Name, err)
	}
	return records, nil
}

// toFloat converts the fixed width integers of the map lumps.
func toFloat[T constraints.Integer](n T) float64 {
	return float64(n)
}
