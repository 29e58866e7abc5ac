package aclgad

import "testing"

func TestRunConditionQueries(t *testing.T) {
	want := "SELECT PixelSize, PixelSpacing, PixelCornerOffset, DetSize, NumBlocksPerSide, SensorThickness " +
		"FROM DetectorGeometry WHERE MinRun <= 1234 and MaxRun >= 1234"
	if got := geometryQuery(1234); got != want {
		t.Fatalf("geometry query:\n%s\nwant\n%s", got, want)
	}
	want = "SELECT IonizationEnergy, AmplificationFactor, D0 " +
		"FROM ChargeSharingParams WHERE MinRun <= 1234 and MaxRun >= 1234"
	if got := chargeSharingQuery(1234); got != want {
		t.Fatalf("charge sharing query:\n%s\nwant\n%s", got, want)
	}
}

func TestApplyRunConditions(t *testing.T) {
	config := testConfig()
	geometry := DetectorGeometryEntry{
		PixelSize:         0.2,
		PixelSpacing:      0.5,
		PixelCornerOffset: 0.1,
		DetSize:           10,
		NumBlocksPerSide:  19,
		SensorThickness:   0.03,
	}
	sharing := ChargeSharingEntry{IonizationEnergy: 3.62, AmplificationFactor: 20, D0: 0.015}

	got := applyRunConditions(config, geometry, sharing)
	det := got.Detector()
	if det.PixelSize != 0.2 || det.PixelSpacing != 0.5 || det.NumBlocksPerSide != 19 || det.DetSize != 10 {
		t.Fatalf("geometry not applied: %+v", det)
	}
	physics := got.Physics()
	if physics.IonizationEnergy != 3.62 || physics.AmplificationFactor != 20 || physics.D0 != 0.015 {
		t.Fatalf("charge sharing not applied: %+v", physics)
	}
	if got.ChargeModel != config.ChargeModel || got.NeighborhoodRadius != config.NeighborhoodRadius {
		t.Fatalf("unrelated fields changed")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("run conditions invalid: %v", err)
	}
}
