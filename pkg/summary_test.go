package aclgad

import "testing"

func TestRunSummary(t *testing.T) {
	config := testConfig()
	summary := NewRunSummary(config.Detector(), config.Neighborhood())

	results := []EventResult{
		{Status: STATUS_NO_HIT},
		{Status: STATUS_OUTSIDE_GRID},
		{Status: STATUS_PIXEL_HIT, Pixel: PixelMapping{Distance: 0.02, Valid: true}, Radius: 4},
		{Status: STATUS_NON_PIXEL_HIT, Pixel: PixelMapping{Distance: 0.07, Valid: true}, Radius: 3,
			Selection: &RadiusSelection{Radius: 3, Quality: 1.5}},
		{Status: STATUS_NON_PIXEL_HIT, Pixel: PixelMapping{Distance: 0.08, Valid: true}, Radius: 1,
			Selection: &RadiusSelection{Radius: 1, LowConfidence: true}},
		{Error: true},
	}
	for k := range results {
		summary.Fill(&results[k])
	}

	if summary.Events() != len(results) || summary.Errors != 1 {
		t.Fatalf("events %d, errors %d", summary.Events(), summary.Errors)
	}
	if summary.Status[STATUS_NON_PIXEL_HIT] != 2 || summary.Status[STATUS_PIXEL_HIT] != 1 {
		t.Fatalf("status counts %v", summary.Status)
	}
	if summary.Distance.Entries() != 3 || summary.Radius.Entries() != 2 || summary.Quality.Entries() != 1 {
		t.Fatalf("entries: distance %d, radius %d, quality %d",
			summary.Distance.Entries(), summary.Radius.Entries(), summary.Quality.Entries())
	}
	if summary.LowConfidence != 1 {
		t.Fatalf("low confidence %d", summary.LowConfidence)
	}
	if !nearly(summary.Radius.XMean(), 2, 1e-12) {
		t.Fatalf("mean radius %g", summary.Radius.XMean())
	}
	summary.Log()
}
