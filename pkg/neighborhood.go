package aclgad

import (
	"math"
	"sort"
)

type GeometryRecord struct {
	DI, DJ   int // offset from the hit pixel
	I, J     int // absolute pixel index
	PixelX   float64
	PixelY   float64
	Angle    float64 // degrees in [0, 360)
	Distance float64 // mm
	Alpha    float64 // subtended angle, degrees
	Valid    bool
}

// GridSize is the number of pixels in a neighborhood of radius r.
func GridSize(radius int) int {
	side := 2*radius + 1
	return side * side
}

// GridIndex maps an offset to its position in the neighborhood arrays:
// row-major with DI outer and DJ inner.
func GridIndex(radius, di, dj int) int {
	return (di+radius)*(2*radius+1) + (dj + radius)
}

// NeighborhoodGeometry computes the hit to pixel relationships for a square
// grid of pixels around the hit pixel.
type NeighborhoodGeometry struct {
	det    DetectorGeometry
	radius int
}

func NewNeighborhoodGeometry(det DetectorGeometry, radius int) *NeighborhoodGeometry {
	return &NeighborhoodGeometry{det: det, radius: radius}
}

func (g *NeighborhoodGeometry) Radius() int {
	return g.radius
}

func (g *NeighborhoodGeometry) SetRadius(radius int) {
	g.radius = radius
}

// CalcPixelAlpha returns the direction from the hit to the center of pixel
// (i, j) in degrees, in [0, 360).
func (g *NeighborhoodGeometry) CalcPixelAlpha(hitPos Vec3, i, j int) float64 {
	x, y := g.det.PixelCenter(i, j)
	return directionDeg(hitPos.X, hitPos.Y, x, y)
}

func directionDeg(fromX, fromY, toX, toY float64) float64 {
	deg := math.Atan2(toY-fromY, toX-fromX) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// CalcNeighborhoodGridAngles fills one record per offset of the current radius.
// Pixels outside the detector are kept as invalid entries carrying NaN.
func (g *NeighborhoodGeometry) CalcNeighborhoodGridAngles(hitPos Vec3, hitI, hitJ int) []GeometryRecord {
	r := g.radius
	records := make([]GeometryRecord, GridSize(r))
	for di := -r; di <= r; di++ {
		for dj := -r; dj <= r; dj++ {
			i := hitI + di
			j := hitJ + dj
			rec := GeometryRecord{DI: di, DJ: dj, I: i, J: j}
			if !g.det.Contains(i, j) {
				rec.PixelX = math.NaN()
				rec.PixelY = math.NaN()
				rec.Angle = math.NaN()
				rec.Distance = math.NaN()
				rec.Alpha = math.NaN()
				records[GridIndex(r, di, dj)] = rec
				continue
			}
			rec.PixelX, rec.PixelY = g.det.PixelCenter(i, j)
			rec.Angle = g.CalcPixelAlpha(hitPos, i, j)
			rec.Distance = math.Hypot(rec.PixelX-hitPos.X, rec.PixelY-hitPos.Y)
			rec.Alpha = g.CalcPixelAlphaSubtended(hitPos.X, hitPos.Y, rec.PixelX, rec.PixelY,
				g.det.PixelSize, g.det.PixelSize)
			rec.Valid = true
			records[GridIndex(r, di, dj)] = rec
		}
	}
	return records
}

// CalcPixelAlphaSubtended returns, in degrees, the angle a rectangular pixel
// spans as seen from the hit: the narrowest arc holding all four corner
// directions. A hit inside the pixel sees the full 360 degrees.
func (g *NeighborhoodGeometry) CalcPixelAlphaSubtended(hitX, hitY, pixelCenterX, pixelCenterY,
	pixelWidth, pixelHeight float64) float64 {
	halfW := pixelWidth / 2
	halfH := pixelHeight / 2
	if math.Abs(hitX-pixelCenterX) < halfW && math.Abs(hitY-pixelCenterY) < halfH {
		return 360
	}

	corners := [4][2]float64{
		{pixelCenterX - halfW, pixelCenterY - halfH},
		{pixelCenterX + halfW, pixelCenterY - halfH},
		{pixelCenterX + halfW, pixelCenterY + halfH},
		{pixelCenterX - halfW, pixelCenterY + halfH},
	}
	angles := make([]float64, 0, len(corners))
	for _, c := range corners {
		angles = append(angles, math.Atan2(c[1]-hitY, c[0]-hitX))
	}
	sort.Float64s(angles)

	// The corners cover the circle except for the widest empty gap.
	largestGap := angles[0] + 2*math.Pi - angles[len(angles)-1]
	for k := 1; k < len(angles); k++ {
		if gap := angles[k] - angles[k-1]; gap > largestGap {
			largestGap = gap
		}
	}
	return (2*math.Pi - largestGap) * 180 / math.Pi
}
