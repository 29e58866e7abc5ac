package aclgad

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func paramName(p ParamHDF5) string {
	return string(bytes.TrimRight(p.paramStr[:], "\x00"))
}

func TestTaggedParameters(t *testing.T) {
	config := testConfig()
	detector := taggedParameters(config.Detector())
	if len(detector) != 6 {
		t.Fatalf("%d detector parameters, want 6", len(detector))
	}
	values := make(map[string]float64)
	for _, p := range detector {
		values[paramName(p)] = p.value
	}
	if values["pixel_size"] != 0.1 || values["pixel_spacing"] != 0.15 || values["num_blocks_per_side"] != 21 {
		t.Fatalf("detector parameters %v", values)
	}

	// enum fields carry no tag and are skipped
	physics := taggedParameters(config.Physics())
	if len(physics) != 4 {
		t.Fatalf("%d physics parameters, want 4", len(physics))
	}
	if paramName(physics[2]) != "d0" || physics[2].value != config.D0 {
		t.Fatalf("third physics parameter %s = %g", paramName(physics[2]), physics[2].value)
	}
}

var errSinkFull = errors.New("sink full")

// memorySink mirrors the HDF5 offset semantics in memory and can be told to
// fail one kind of write.
type memorySink struct {
	events       []EventDataHDF5
	hits         []HitHDF5
	fits         []FitHDF5
	neighborhood [nbColumns][][]float64
	runInfo      []RunInfoHDF5
	failOn       string
	calls        []string
}

func (s *memorySink) record(call string) error {
	if call == s.failOn {
		return errSinkFull
	}
	s.calls = append(s.calls, call)
	return nil
}

func (s *memorySink) writeEvent(row EventDataHDF5, offset int) error {
	if err := s.record("event"); err != nil {
		return err
	}
	s.events = append(s.events[:offset], row)
	return nil
}

func (s *memorySink) writeHit(row HitHDF5, offset int) error {
	if err := s.record("hit"); err != nil {
		return err
	}
	s.hits = append(s.hits[:offset], row)
	return nil
}

func (s *memorySink) writeFits(rows []FitHDF5, offset int) error {
	if err := s.record("fits"); err != nil {
		return err
	}
	s.fits = append(s.fits[:offset], rows...)
	return nil
}

func (s *memorySink) writeNeighborhood(column int, data []float64, row int) error {
	if err := s.record(nbColumnNames[column]); err != nil {
		return err
	}
	s.neighborhood[column] = append(s.neighborhood[column][:row], append([]float64(nil), data...))
	return nil
}

func (s *memorySink) writeRunInfo(row RunInfoHDF5) error {
	s.runInfo = []RunInfoHDF5{row}
	return nil
}

func (s *memorySink) truncate(events, hits, fits int) error {
	s.events = s.events[:min(events, len(s.events))]
	s.hits = s.hits[:min(hits, len(s.hits))]
	s.fits = s.fits[:min(fits, len(s.fits))]
	for column := range s.neighborhood {
		s.neighborhood[column] = s.neighborhood[column][:min(hits, len(s.neighborhood[column]))]
	}
	return nil
}

func writerConfig() Configuration {
	config := testConfig()
	config.NeighborhoodRadius = 1
	config.AutoRadius = false
	config.RunNumber = 42
	config.Verbosity = 0
	return config
}

func hitEvent(id uint32, nFits int) *EventResult {
	event := &EventResult{
		EventID:       id,
		Status:        STATUS_NON_PIXEL_HIT,
		Edep:          0.02,
		NSteps:        7,
		InitialEnergy: 0.1,
		Radius:        1,
	}
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			event.Geometry = append(event.Geometry, GeometryRecord{DI: di, DJ: dj, Angle: 10, Distance: 0.1, Alpha: 5, Valid: true})
			event.Charge = append(event.Charge, ChargeRecord{Fraction: 1.0 / 9, ChargeCoulombs: 1e-15, Valid: true})
		}
	}
	for k := 0; k < nFits; k++ {
		event.Fits = append(event.Fits, FitResult{Model: FitModel(k), DOF: 1, Success: true})
	}
	return event
}

func TestWriter_EventRowCommittedLast(t *testing.T) {
	sink := &memorySink{}
	w := newWriter(sink, writerConfig())

	if err := w.WriteEvent(hitEvent(1, 2)); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	want := []string{"angle", "distance", "alpha", "charge_fraction", "charge", "hit", "fits", "event"}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls %v, want %v", sink.calls, want)
	}
	for k := range want {
		if sink.calls[k] != want[k] {
			t.Fatalf("calls %v, want %v", sink.calls, want)
		}
	}
	if w.EvtCounter != 1 || w.HitCounter != 1 || w.FitCounter != 2 {
		t.Fatalf("counters %d/%d/%d, want 1/1/2", w.EvtCounter, w.HitCounter, w.FitCounter)
	}
}

func TestWriter_FailedWriteLeavesCountersUnchanged(t *testing.T) {
	for _, failOn := range []string{"alpha", "hit", "fits", "event"} {
		t.Run(failOn, func(t *testing.T) {
			sink := &memorySink{}
			w := newWriter(sink, writerConfig())
			if err := w.WriteEvent(hitEvent(1, 1)); err != nil {
				t.Fatalf("first event: %v", err)
			}

			sink.failOn = failOn
			err := w.WriteEvent(hitEvent(2, 3))
			if !errors.Is(err, errSinkFull) {
				t.Fatalf("err = %v, want %v", err, errSinkFull)
			}
			if w.EvtCounter != 1 || w.HitCounter != 1 || w.FitCounter != 1 {
				t.Fatalf("counters %d/%d/%d after failure, want 1/1/1", w.EvtCounter, w.HitCounter, w.FitCounter)
			}
			if len(sink.events) != 1 {
				t.Fatalf("%d event rows after failure, want 1", len(sink.events))
			}

			// the next event reuses the offsets of the failed one
			sink.failOn = ""
			if err := w.WriteEvent(hitEvent(3, 2)); err != nil {
				t.Fatalf("third event: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if len(sink.events) != 2 || len(sink.hits) != 2 || len(sink.fits) != 3 {
				t.Fatalf("rows %d/%d/%d, want 2/2/3", len(sink.events), len(sink.hits), len(sink.fits))
			}
			if sink.hits[1].evt_number != 3 || sink.events[1].evt_number != 3 {
				t.Errorf("second rows belong to events %d/%d, want 3", sink.hits[1].evt_number, sink.events[1].evt_number)
			}
			for _, f := range sink.fits[1:] {
				if f.evt_number != 3 {
					t.Errorf("fit row of event %d, want 3", f.evt_number)
				}
			}
		})
	}
}

func TestWriter_CloseDropsUncommittedRows(t *testing.T) {
	sink := &memorySink{}
	w := newWriter(sink, writerConfig())
	if err := w.WriteEvent(&EventResult{EventID: 1, Status: STATUS_NO_HIT}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	sink.failOn = "event"
	if err := w.WriteEvent(hitEvent(2, 2)); err == nil {
		t.Fatal("expected a write error")
	}
	if len(sink.hits) != 1 {
		t.Fatalf("%d hit rows before Close, want the uncommitted one", len(sink.hits))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(sink.events) != 1 || len(sink.hits) != 0 || len(sink.fits) != 0 {
		t.Fatalf("rows %d/%d/%d after Close, want 1/0/0", len(sink.events), len(sink.hits), len(sink.fits))
	}
	for column, rows := range sink.neighborhood {
		if len(rows) != 0 {
			t.Errorf("%s has %d rows after Close", nbColumnNames[column], len(rows))
		}
	}
	if len(sink.runInfo) != 1 || sink.runInfo[0].n_events != 1 {
		t.Fatalf("run info %v", sink.runInfo)
	}
}

func TestWriter_RunNumberFromConfig(t *testing.T) {
	saved := GetConfiguration()
	defer SetConfiguration(saved)
	global := saved
	global.RunNumber = 7
	SetConfiguration(global)

	sink := &memorySink{}
	w := newWriter(sink, writerConfig())
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := sink.runInfo[0].run_number; got != 42 {
		t.Errorf("run_number = %d, want 42", got)
	}
}

func TestWriter_EventRowColumns(t *testing.T) {
	sink := &memorySink{}
	w := newWriter(sink, writerConfig())

	crashed := &EventResult{EventID: 1, InitialEnergy: 0.1, Error: true}
	empty := &EventResult{EventID: 2, InitialEnergy: 0.1, Status: STATUS_NO_HIT}
	for _, event := range []*EventResult{crashed, empty, hitEvent(3, 0)} {
		if err := w.WriteEvent(event); err != nil {
			t.Fatalf("event %d: %v", event.EventID, err)
		}
	}

	if row := sink.events[0]; row.error != 1 || row.status != int32(STATUS_NO_HIT) {
		t.Errorf("crashed event row %+v, want error=1", row)
	}
	if row := sink.events[1]; row.error != 0 {
		t.Errorf("no-hit event row %+v, want error=0", row)
	}
	row := sink.events[2]
	if row.error != 0 || row.n_steps != 7 || row.init_energy != 0.1 || row.edep != 0.02 {
		t.Errorf("hit event row %+v", row)
	}
	if hit := sink.hits[0]; hit.n_steps != 7 || hit.evt_number != 3 {
		t.Errorf("hit row %+v", hit)
	}
	// radius 1 fills the whole widest grid
	for column, rows := range sink.neighborhood {
		for k, v := range rows[0] {
			if math.IsNaN(v) {
				t.Errorf("%s[%d] is NaN", nbColumnNames[column], k)
			}
		}
	}
}
