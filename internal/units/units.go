// Package units provides shared constants and conversions between the
// voxel grid, real-world metres and LDraw drawing units
package units

// LDraw unit geometry. One stud pitch is 20 LDU; one brick height is
// 24 LDU, so a brick is 1.2 times taller than it is wide.
const (
	LDUPerStud        = 20.0
	LDUPerBrickHeight = 24.0
)

// LDrawRatio is the brick height to stud pitch ratio used when layer
// thickness should match LDraw brick geometry.
const LDrawRatio = LDUPerBrickHeight / LDUPerStud

// LegoRatio is the classic physical LEGO ratio of brick height to stud
// pitch (9.6mm over 8.0mm is exact; 5/3 approximates a brick plus a
// plate stack used by coarse models).
const LegoRatio = 5.0 / 3.0

// GridToLDU converts a grid cell index to the LDU coordinate of the
// cell's origin in the horizontal plane.
func GridToLDU(i int) float64 { return float64(i) * LDUPerStud }

// LayerToLDU converts a layer index to the LDU vertical coordinate.
// LDraw's Y axis points down, so higher layers are more negative.
func LayerToLDU(z int) float64 { return -float64(z) * LDUPerBrickHeight }

// LDUToGrid converts a horizontal LDU coordinate back to the nearest
// grid cell index.
func LDUToGrid(v float64) int { return int(roundHalfAway(v / LDUPerStud)) }

// LDUToLayer converts a vertical LDU coordinate back to a layer index.
func LDUToLayer(v float64) int { return int(roundHalfAway(-v / LDUPerBrickHeight)) }

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}
