// Package ldraw serializes brick layouts to the LDraw text format and
// parses unit-brick .ldr files back into layouts. The format is line
// oriented: type-1 lines place a part with a color, a position and a
// 3x3 rotation matrix.
package ldraw

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/brick"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/units"
	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// Parts maps normalized footprints (small dimension first) to LDraw
// part references.
var Parts = map[brick.Footprint]string{
	{Width: 1, Length: 1}:  "3005.dat",
	{Width: 1, Length: 2}:  "3004.dat",
	{Width: 1, Length: 3}:  "3622.dat",
	{Width: 1, Length: 4}:  "3010.dat",
	{Width: 1, Length: 6}:  "3009.dat",
	{Width: 1, Length: 8}:  "3008.dat",
	{Width: 1, Length: 10}: "6111.dat",
	{Width: 1, Length: 12}: "6112.dat",
	{Width: 1, Length: 16}: "2465.dat",
	{Width: 2, Length: 2}:  "3003.dat",
	{Width: 2, Length: 3}:  "3002.dat",
	{Width: 2, Length: 4}:  "3001.dat",
	{Width: 2, Length: 6}:  "2456.dat",
	{Width: 2, Length: 8}:  "3007.dat",
	{Width: 2, Length: 10}: "3006.dat",
}

// unitPart is the 1x1 brick used for voxel exports and as the fallback
// reference for uncataloged footprints.
const unitPart = "3005.dat"

// DefaultColor is the LDraw "main color" placeholder used for
// monochrome exports.
const DefaultColor = 16

// unknownClassColor marks classes missing from the palette so they are
// visible in a viewer.
const unknownClassColor = 24

// Palette maps classification codes to LDraw color codes.
type Palette map[voxelgrid.Class]int

// StandardPalette matches classes to the closest colors available as
// real bricks: ground brown, vegetation greens, buildings grey.
func StandardPalette() Palette {
	return Palette{
		voxelgrid.ClassUnclassified: 0,   // black
		voxelgrid.ClassGround:       6,   // brown
		voxelgrid.ClassLowVeg:       10,  // bright green
		voxelgrid.ClassMediumVeg:    2,   // green
		voxelgrid.ClassHighVeg:      288, // dark green
		voxelgrid.ClassBuilding:     7,   // light grey
		voxelgrid.ClassWater:        1,   // blue
		voxelgrid.ClassBridgeDeck:   4,   // red
		voxelgrid.ClassOverground:   14,  // yellow
		voxelgrid.ClassVirtual:      15,  // white
		voxelgrid.ClassMiscBuilt:    8,   // dark grey
	}
}

// Color resolves a class to its palette color, falling back to the
// unknown-class marker.
func (p Palette) Color(c voxelgrid.Class) int {
	if code, ok := p[c]; ok {
		return code
	}
	return unknownClassColor
}

// Writer emits LDraw files. Mono forces every part to DefaultColor
// instead of the classification palette.
type Writer struct {
	Palette Palette
	Mono    bool
}

// NewWriter creates a writer over the standard palette.
func NewWriter(mono bool) *Writer {
	return &Writer{Palette: StandardPalette(), Mono: mono}
}

func (w *Writer) color(c voxelgrid.Class) int {
	if w.Mono {
		return DefaultColor
	}
	return w.Palette.Color(c)
}

// WriteLayout emits one type-1 line per brick. Parts anchor at their
// footprint centre; bricks whose width exceeds their length are
// rotated 90 degrees around the vertical axis so the physical part
// matches the placed orientation.
func (w *Writer) WriteLayout(out io.Writer, l *brick.Layout, name string) error {
	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "0 %s\n", name)
	fmt.Fprintf(bw, "0 Name: %s\n", name)

	for _, b := range l.Bricks() {
		centerX := units.GridToLDU(b.X) + float64(b.Length)*units.LDUPerStud/2
		centerY := units.GridToLDU(b.Y) + float64(b.Width)*units.LDUPerStud/2
		height := units.LayerToLDU(b.Z)

		small, large := b.Width, b.Length
		if small > large {
			small, large = large, small
		}
		part, ok := Parts[brick.Footprint{Width: small, Length: large}]
		if !ok {
			part = unitPart
		}

		// Identity matrix for X-aligned parts; 90 degree rotation
		// around the vertical axis when the long side runs along Y.
		matrix := "1 0 0 0 1 0 0 0 1"
		if b.Width > b.Length {
			matrix = "0 0 1 0 1 0 -1 0 0"
		}

		fmt.Fprintf(bw, "1 %d %.2f %.2f %.2f %s %s\n",
			w.color(b.Class), centerX, height, centerY, matrix, part)
	}
	return bw.Flush()
}

// WriteGrid emits one 1x1 brick per voxel: the staged export used to
// inspect the model between pipeline stages.
func (w *Writer) WriteGrid(out io.Writer, g *voxelgrid.Grid, name string) error {
	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "0 %s\n", name)
	fmt.Fprintf(bw, "0 Name: %s\n", name)

	for _, z := range g.ZIndexes() {
		for _, v := range g.Layer(z).Voxels() {
			fmt.Fprintf(bw, "1 %d %.2f %.2f %.2f 1 0 0 0 1 0 0 0 1 %s\n",
				w.color(v.Class), units.GridToLDU(v.X), units.LayerToLDU(v.Z), units.GridToLDU(v.Y), unitPart)
		}
	}
	return bw.Flush()
}

// Parse reads type-1 unit-brick lines back into a layout. Lines other
// than unit-brick placements (comments, other part refs) are skipped.
// Colors are kept only as classification when they match the standard
// palette; unmatched colors map to the unclassified class.
func Parse(r io.Reader) (*brick.Layout, error) {
	classByColor := make(map[int]voxelgrid.Class)
	for class, color := range StandardPalette() {
		classByColor[color] = class
	}

	layout := brick.NewLayout()
	byLayer := make(map[int][]*brick.Brick)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 15 || fields[0] != "1" || fields[14] != unitPart {
			continue
		}
		color, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad color %q: %w", line, fields[1], err)
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad x %q: %w", line, fields[2], err)
		}
		h, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad height %q: %w", line, fields[3], err)
		}
		y, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad y %q: %w", line, fields[4], err)
		}

		class := voxelgrid.ClassUnclassified
		if c, ok := classByColor[color]; ok {
			class = c
		}
		b := brick.New(units.LDUToGrid(x), units.LDUToGrid(y), units.LDUToLayer(h), 1, 1, class)
		byLayer[b.Z] = append(byLayer[b.Z], b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ldraw stream: %w", err)
	}

	for z, bricks := range byLayer {
		layout.SetLayer(z, bricks)
	}
	return layout, nil
}
