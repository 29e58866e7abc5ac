package aclgad

import (
	"math"
	"testing"
)

func TestCalcNearestPixel_Center(t *testing.T) {
	config := testConfig()
	det := config.Detector()
	mapper := NewPixelMapper(det, config.Physics())

	for _, idx := range []PixelIndex{{0, 0}, {10, 10}, {3, 17}, {20, 20}} {
		m := mapper.CalcNearestPixel(pixelCenter(t, det, idx.I, idx.J))
		if !m.Valid || m.Index != idx {
			t.Fatalf("center of %v mapped to %+v", idx, m)
		}
		if m.Distance != 0 {
			t.Fatalf("center of %v: distance %g, want 0", idx, m.Distance)
		}
		if !m.PixelHit {
			t.Fatalf("center of %v not a pixel hit", idx)
		}
	}
}

func TestCalcNearestPixel_OriginIsCentralPixel(t *testing.T) {
	config := testConfig()
	det := config.Detector()
	if det.NumBlocksPerSide != 21 {
		t.Fatalf("NumBlocksPerSide = %d, want 21", det.NumBlocksPerSide)
	}
	m := NewPixelMapper(det, config.Physics()).CalcNearestPixel(Vec3{})
	if m.Index != (PixelIndex{10, 10}) || !nearly(m.Center.X, 0, 1e-12) || !nearly(m.Center.Y, 0, 1e-12) {
		t.Fatalf("origin mapped to %+v", m)
	}
}

func TestCalcNearestPixel_Midpoint(t *testing.T) {
	config := testConfig()
	det := config.Detector()
	mapper := NewPixelMapper(det, config.Physics())
	c := pixelCenter(t, det, 10, 7)
	half := det.PixelSpacing / 2

	m := mapper.CalcNearestPixel(Vec3{X: c.X + half, Y: c.Y})
	if m.Index != (PixelIndex{11, 7}) {
		t.Fatalf("+half spacing: got %v, want {11 7}", m.Index)
	}
	m = mapper.CalcNearestPixel(Vec3{X: c.X - half, Y: c.Y})
	if m.Index != (PixelIndex{10, 7}) {
		t.Fatalf("-half spacing: got %v, want {10 7}", m.Index)
	}
	m = mapper.CalcNearestPixel(Vec3{X: c.X, Y: c.Y + half})
	if m.Index != (PixelIndex{10, 8}) {
		t.Fatalf("+half spacing in y: got %v, want {10 8}", m.Index)
	}
}

func TestCalcNearestPixel_Deltas(t *testing.T) {
	config := testConfig()
	det := config.Detector()
	pos := Vec3{X: 0.03, Y: -0.04}
	m := NewPixelMapper(det, config.Physics()).CalcNearestPixel(pos)
	if !nearly(m.PixelTrueDeltaX, -0.03, 1e-12) || !nearly(m.PixelTrueDeltaY, 0.04, 1e-12) {
		t.Fatalf("deltas = (%g, %g)", m.PixelTrueDeltaX, m.PixelTrueDeltaY)
	}
	if !nearly(m.Distance, 0.05, 1e-12) {
		t.Fatalf("distance = %g, want 0.05", m.Distance)
	}
}

func TestCalcNearestPixel_OutsideGrid(t *testing.T) {
	config := testConfig()
	mapper := NewPixelMapper(config.Detector(), config.Physics())
	for _, pos := range []Vec3{{X: 1.58}, {Y: -1.7}, {X: 10, Y: 10}} {
		m := mapper.CalcNearestPixel(pos)
		if m.Valid {
			t.Fatalf("%+v mapped inside the grid: %+v", pos, m)
		}
		if !math.IsNaN(m.Distance) || m.PixelHit {
			t.Fatalf("invalid mapping carries a distance: %+v", m)
		}
	}
}

func TestPixelMapper_Threshold(t *testing.T) {
	config := testConfig()
	config.D0 = 0.03
	if got := NewPixelMapper(config.Detector(), config.Physics()).Threshold(); got != 0.05 {
		t.Fatalf("half_pixel threshold = %g", got)
	}
	config.PixelHitRule = PIXEL_HIT_D0
	mapper := NewPixelMapper(config.Detector(), config.Physics())
	if got := mapper.Threshold(); got != 0.03 {
		t.Fatalf("d0 threshold = %g", got)
	}
	m := mapper.CalcNearestPixel(Vec3{X: 0.04})
	if m.PixelHit || m.WithinD0 {
		t.Fatalf("0.04 mm classified under a 0.03 mm D0: %+v", m)
	}
}
