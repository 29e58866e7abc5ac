package aclgad

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Vec3 is a point in the detector frame, lengths in mm.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// DistXY is the distance between two points projected on the pixel plane.
func (v Vec3) DistXY(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

type PixelIndex struct {
	I, J int
}

// DetectorGeometry describes the regular pixel grid. The core never builds
// it, it is handed over by the caller (config file or run DB).
type DetectorGeometry struct {
	PixelSize         float64 `hdf5:"pixel_size"`
	PixelSpacing      float64 `hdf5:"pixel_spacing"`
	PixelCornerOffset float64 `hdf5:"pixel_corner_offset"`
	DetSize           float64 `hdf5:"det_size"`
	NumBlocksPerSide  int     `hdf5:"num_blocks_per_side"`
	SensorThickness   float64 `hdf5:"sensor_thickness"`
}

// FirstPixelCenter is the coordinate of pixel 0 along either axis.
func (d DetectorGeometry) FirstPixelCenter() float64 {
	return -d.DetSize/2 + d.PixelCornerOffset + d.PixelSize/2
}

func (d DetectorGeometry) PixelCenter(i, j int) (float64, float64) {
	x0 := d.FirstPixelCenter()
	return x0 + float64(i)*d.PixelSpacing, x0 + float64(j)*d.PixelSpacing
}

func (d DetectorGeometry) Contains(i, j int) bool {
	return i >= 0 && i < d.NumBlocksPerSide && j >= 0 && j < d.NumBlocksPerSide
}

// Margin is the distance from the detector edge a hit must keep so that its
// pixel has a complete neighborhood of the given radius.
func (d DetectorGeometry) Margin(radius int) float64 {
	return d.PixelCornerOffset + d.PixelSize/2 + float64(radius)*d.PixelSpacing
}

func (d DetectorGeometry) derivedNumBlocks() int {
	if d.PixelSpacing <= 0 {
		return 0
	}
	usable := d.DetSize - 2*d.PixelCornerOffset - d.PixelSize
	if usable < 0 {
		return 0
	}
	return int(math.Floor(usable/d.PixelSpacing+indexRoundingEps)) + 1
}

// Validate checks the grid and that a neighborhood of the given radius fits.
func (d DetectorGeometry) Validate(radius int) error {
	if !(d.PixelSize > 0) || !(d.PixelSpacing > 0) || !(d.DetSize > 0) {
		return fmt.Errorf("%w: pixel_size, pixel_spacing and det_size must be positive", ErrInvalidConfig)
	}
	if d.PixelSpacing < d.PixelSize {
		return fmt.Errorf("%w: pixel_spacing %.4f smaller than pixel_size %.4f", ErrInvalidConfig, d.PixelSpacing, d.PixelSize)
	}
	if d.PixelCornerOffset < 0 {
		return fmt.Errorf("%w: pixel_corner_offset must be >= 0", ErrInvalidConfig)
	}
	if d.NumBlocksPerSide < 1 {
		return fmt.Errorf("%w: no pixel fits in a %.4f mm detector", ErrInvalidConfig, d.DetSize)
	}
	margin := d.Margin(radius)
	if margin >= d.DetSize/2 {
		return &ErrMarginTooLarge{Radius: radius, Margin: margin, DetSize: d.DetSize}
	}
	return nil
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
