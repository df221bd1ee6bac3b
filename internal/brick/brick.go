package brick

import (
	"sort"

	"github.com/google/uuid"

	"github.com/DanQue69/LiDAR-2-LEGO/internal/voxelgrid"
)

// Orientation records which axis a brick's long dimension follows.
// Square bricks are horizontal by convention.
type Orientation uint8

const (
	// Horizontal bricks run along X.
	Horizontal Orientation = iota
	// Vertical bricks run along Y.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "V"
	}
	return "H"
}

// Brick is a placed footprint. X, Y anchor the lower-left cell of the
// footprint in grid coordinates; Z is the layer index. Length spans X,
// Width spans Y. Class drives the export color.
type Brick struct {
	ID          string
	X           int
	Y           int
	Z           int
	Length      int
	Width       int
	Class       voxelgrid.Class
	Orientation Orientation
}

// New creates a brick with a fresh unique ID. The orientation follows
// the longer dimension; squares default to horizontal.
func New(x, y, z, length, width int, class voxelgrid.Class) *Brick {
	o := Horizontal
	if width > length {
		o = Vertical
	}
	return &Brick{
		ID:          uuid.NewString(),
		X:           x,
		Y:           y,
		Z:           z,
		Length:      length,
		Width:       width,
		Class:       class,
		Orientation: o,
	}
}

// BBox returns the half-open footprint extent (x1,y1) inclusive to
// (x2,y2) exclusive.
func (b *Brick) BBox() (x1, y1, x2, y2 int) {
	return b.X, b.Y, b.X + b.Length, b.Y + b.Width
}

// Area returns the number of cells the brick covers.
func (b *Brick) Area() int { return b.Length * b.Width }

// Footprint returns the brick's catalog footprint.
func (b *Brick) Footprint() Footprint {
	return Footprint{Width: b.Width, Length: b.Length}
}

// CellKey addresses one covered grid cell in a layout.
type CellKey struct {
	X int
	Y int
	Z int
}

// Layout is an ordered brick collection across all layers: the
// pipeline's output artifact. Layers are keyed by z index.
type Layout struct {
	byLayer map[int][]*Brick
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{byLayer: make(map[int][]*Brick)}
}

// SetLayer replaces the layer's bricks wholesale. An empty slice
// removes the layer.
func (l *Layout) SetLayer(z int, bricks []*Brick) {
	if len(bricks) == 0 {
		delete(l.byLayer, z)
		return
	}
	l.byLayer[z] = bricks
}

// Layer returns the bricks placed at z. The slice is shared; callers
// that mutate must go through SetLayer.
func (l *Layout) Layer(z int) []*Brick { return l.byLayer[z] }

// ZIndexes returns the occupied layer indexes in ascending order.
func (l *Layout) ZIndexes() []int {
	zs := make([]int, 0, len(l.byLayer))
	for z := range l.byLayer {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	return zs
}

// Bricks returns every brick ordered by layer, then (y, x) anchor.
func (l *Layout) Bricks() []*Brick {
	var out []*Brick
	for _, z := range l.ZIndexes() {
		layer := append([]*Brick(nil), l.byLayer[z]...)
		sort.Slice(layer, func(i, j int) bool {
			if layer[i].Y != layer[j].Y {
				return layer[i].Y < layer[j].Y
			}
			return layer[i].X < layer[j].X
		})
		out = append(out, layer...)
	}
	return out
}

// NumBricks returns the total brick count.
func (l *Layout) NumBricks() int {
	n := 0
	for _, bricks := range l.byLayer {
		n += len(bricks)
	}
	return n
}

// NumCells returns the total number of covered cells.
func (l *Layout) NumCells() int {
	n := 0
	for _, bricks := range l.byLayer {
		for _, b := range bricks {
			n += b.Area()
		}
	}
	return n
}

// Clone returns a layout sharing brick pointers but with independent
// layer slices, so one layer can be swapped without touching the
// original.
func (l *Layout) Clone() *Layout {
	c := NewLayout()
	for z, bricks := range l.byLayer {
		c.byLayer[z] = append([]*Brick(nil), bricks...)
	}
	return c
}

// CellIndex maps every covered cell of the requested layers to its
// brick. With no layers given, all layers are indexed. The index is
// the cost function's O(1) below/beside lookup.
func (l *Layout) CellIndex(layers ...int) map[CellKey]*Brick {
	target := l.ZIndexes()
	if len(layers) > 0 {
		target = layers
	}
	idx := make(map[CellKey]*Brick)
	for _, z := range target {
		for _, b := range l.byLayer[z] {
			for dx := 0; dx < b.Length; dx++ {
				for dy := 0; dy < b.Width; dy++ {
					idx[CellKey{b.X + dx, b.Y + dy, b.Z}] = b
				}
			}
		}
	}
	return idx
}
