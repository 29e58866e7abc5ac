package aclgad

import "math"

// Nudges exact half-spacing offsets over the rounding boundary so a hit on the
// midpoint between two pixels lands on the higher index despite float error.
const indexRoundingEps = 1e-9

type PixelMapping struct {
	Index  PixelIndex
	Center Vec3
	// Distance is the actual hit to pixel center distance in the pixel plane,
	// filled for every valid mapping.
	Distance        float64
	PixelTrueDeltaX float64 // x_pixel - x_true
	PixelTrueDeltaY float64 // y_pixel - y_true
	PixelHit        bool
	WithinD0        bool
	Valid           bool
}

type PixelMapper struct {
	det       DetectorGeometry
	d0        float64
	threshold float64
}

func NewPixelMapper(det DetectorGeometry, physics PhysicsParameters) *PixelMapper {
	threshold := det.PixelSize / 2
	if physics.PixelHitRule == PIXEL_HIT_D0 {
		threshold = physics.D0
	}
	return &PixelMapper{det: det, d0: physics.D0, threshold: threshold}
}

func (m *PixelMapper) Threshold() float64 {
	return m.threshold
}

func (m *PixelMapper) pixelIndex(coord float64) int {
	u := (coord - m.det.FirstPixelCenter()) / m.det.PixelSpacing
	return int(math.Floor(u + 0.5 + indexRoundingEps))
}

func (m *PixelMapper) CalcNearestPixel(pos Vec3) PixelMapping {
	i := m.pixelIndex(pos.X)
	j := m.pixelIndex(pos.Y)
	mapping := PixelMapping{Index: PixelIndex{I: i, J: j}}
	if !m.det.Contains(i, j) {
		mapping.Distance = math.NaN()
		mapping.PixelTrueDeltaX = math.NaN()
		mapping.PixelTrueDeltaY = math.NaN()
		return mapping
	}

	x, y := m.det.PixelCenter(i, j)
	mapping.Center = Vec3{X: x, Y: y}
	mapping.Distance = pos.DistXY(mapping.Center)
	mapping.PixelTrueDeltaX = x - pos.X
	mapping.PixelTrueDeltaY = y - pos.Y
	mapping.PixelHit = mapping.Distance <= m.threshold
	mapping.WithinD0 = mapping.Distance <= m.d0
	mapping.Valid = true
	return mapping
}
