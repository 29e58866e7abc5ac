package aclgad

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

// RunSummary collects run-level distributions. It is filled by the single
// goroutine that consumes worker results.
type RunSummary struct {
	Status        map[HitStatus]int
	Errors        int
	LowConfidence int
	Distance      *hbook.H1D
	Radius        *hbook.H1D
	Quality       *hbook.H1D
}

func NewRunSummary(det DetectorGeometry, nb NeighborhoodConfig) *RunSummary {
	maxRadius := nb.Widest()
	return &RunSummary{
		Status: make(map[HitStatus]int),
		// Nearest pixel distance cannot exceed half the cell diagonal.
		Distance: hbook.NewH1D(50, 0, det.PixelSpacing/math.Sqrt2),
		Radius:   hbook.NewH1D(maxRadius+1, -0.5, float64(maxRadius)+0.5),
		Quality:  hbook.NewH1D(50, 0, 10),
	}
}

func (s *RunSummary) Fill(result *EventResult) {
	if result.Error {
		s.Errors++
		return
	}
	s.Status[result.Status]++
	if !result.HasHit() {
		return
	}
	s.Distance.Fill(result.Pixel.Distance, 1)
	if result.Status != STATUS_NON_PIXEL_HIT {
		return
	}
	s.Radius.Fill(float64(result.Radius), 1)
	if sel := result.Selection; sel != nil {
		if sel.LowConfidence {
			s.LowConfidence++
		} else {
			s.Quality.Fill(sel.Quality, 1)
		}
	}
}

func (s *RunSummary) Events() int {
	n := s.Errors
	for _, count := range s.Status {
		n += count
	}
	return n
}

func (s *RunSummary) Log() {
	logger.Info(fmt.Sprintf("Events: %d, errors: %d", s.Events(), s.Errors), "summary")
	for _, status := range []HitStatus{STATUS_NO_HIT, STATUS_OUTSIDE_GRID, STATUS_PIXEL_HIT, STATUS_NON_PIXEL_HIT} {
		logger.Info(fmt.Sprintf("%s: %d", status, s.Status[status]), "summary")
	}
	if s.Distance.Entries() > 0 {
		message := fmt.Sprintf("Pixel distance: mean %.4f mm, rms %.4f mm",
			s.Distance.XMean(), s.Distance.XStdDev())
		logger.Info(message, "summary")
	}
	if s.Radius.Entries() > 0 {
		logger.Info(fmt.Sprintf("Radius: mean %.2f", s.Radius.XMean()), "summary")
	}
	if s.Quality.Entries() > 0 {
		message := fmt.Sprintf("Quality: mean %.3f over %d events, %d low confidence",
			s.Quality.XMean(), s.Quality.Entries(), s.LowConfidence)
		logger.Info(message, "summary")
	}
}
