package aclgad

import (
	"math"
	"testing"
)

func nearly(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// testConfig is the reference grid: 0.1 mm pixels every 0.15 mm on a 3.2 mm
// sensor, 21 pixels per side with pixel (10, 10) centered on the origin.
func testConfig() Configuration {
	config := DefaultConfiguration()
	config.NeighborhoodRadius = 4
	return config
}

func pixelCenter(t *testing.T, det DetectorGeometry, i, j int) Vec3 {
	t.Helper()
	x, y := det.PixelCenter(i, j)
	return Vec3{X: x, Y: y}
}

// atDistance is a point at distance d from the center of pixel (i, j) along
// direction angleDeg.
func atDistance(t *testing.T, det DetectorGeometry, i, j int, d, angleDeg float64) Vec3 {
	t.Helper()
	c := pixelCenter(t, det, i, j)
	rad := angleDeg * math.Pi / 180
	return Vec3{X: c.X + d*math.Cos(rad), Y: c.Y + d*math.Sin(rad), Z: -0.01}
}
