package aclgad

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores reconstructed events in an HDF5 file. It is not safe for
// concurrent use; a single goroutine owns it.
type Writer struct {
	File          *hdf5.File
	Filename      string
	RunGroup      *hdf5.Group
	DetectorGroup *hdf5.Group
	HitsGroup     *hdf5.Group
	NbGroup       *hdf5.Group
	FitsGroup     *hdf5.Group
	Width         int
	MaxRadius     int
	RunNumber     int
	EvtCounter    int
	HitCounter    int
	FitCounter    int
	sink          recordSink
	compression   int
	verbosity     int
	closeDatasets []*hdf5.Dataset
	closeGroups   []*hdf5.Group
}

// Neighborhood array columns, in file order.
const (
	NB_ANGLE = iota
	NB_DISTANCE
	NB_ALPHA
	NB_CHARGE_FRACTION
	NB_CHARGE
	nbColumns
)

var nbColumnNames = [nbColumns]string{"angle", "distance", "alpha", "charge_fraction", "charge"}

// recordSink is the storage behind a Writer. Rows are addressed by offset:
// writing at an offset replaces whatever was there and drops the rows after
// it, so rows of an event that failed half way are overwritten by the next one.
type recordSink interface {
	writeEvent(row EventDataHDF5, offset int) error
	writeHit(row HitHDF5, offset int) error
	writeFits(rows []FitHDF5, offset int) error
	writeNeighborhood(column int, data []float64, row int) error
	writeRunInfo(row RunInfoHDF5) error
	truncate(events, hits, fits int) error
}

// hdf5Tables is the recordSink of a file opened by NewWriter.
type hdf5Tables struct {
	events       *hdf5.Dataset
	runInfo      *hdf5.Dataset
	params       *hdf5.Dataset
	hits         *hdf5.Dataset
	fits         *hdf5.Dataset
	neighborhood [nbColumns]*hdf5.Dataset
	width        int
}

func (t *hdf5Tables) writeEvent(row EventDataHDF5, offset int) error {
	return writeEntryToTable(t.events, row, offset)
}

func (t *hdf5Tables) writeHit(row HitHDF5, offset int) error {
	return writeEntryToTable(t.hits, row, offset)
}

func (t *hdf5Tables) writeFits(rows []FitHDF5, offset int) error {
	return writeArrayToTable(t.fits, &rows, offset)
}

func (t *hdf5Tables) writeNeighborhood(column int, data []float64, row int) error {
	return write2dArray(t.neighborhood[column], &data, row, t.width)
}

func (t *hdf5Tables) writeRunInfo(row RunInfoHDF5) error {
	return writeEntryToTable(t.runInfo, row, 0)
}

func (t *hdf5Tables) truncate(events, hits, fits int) error {
	var errs []error
	if err := truncateTable(t.events, events, 0); err != nil {
		errs = append(errs, err)
	}
	if err := truncateTable(t.hits, hits, 0); err != nil {
		errs = append(errs, err)
	}
	if err := truncateTable(t.fits, fits, 0); err != nil {
		errs = append(errs, err)
	}
	for _, dset := range t.neighborhood {
		if err := truncateTable(dset, hits, t.width); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewWriter(filename string, config Configuration) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	if config.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}

	w := newWriter(nil, config)
	w.File = file
	w.Filename = filename

	tables, err := w.createLayout()
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.writeParameters(tables.params, config); err != nil {
		w.Close()
		return nil, err
	}
	w.sink = tables
	return w, nil
}

func newWriter(sink recordSink, config Configuration) *Writer {
	w := &Writer{
		MaxRadius:   config.Neighborhood().Widest(),
		RunNumber:   config.RunNumber,
		sink:        sink,
		compression: config.CompressionLevel,
		verbosity:   config.Verbosity,
	}
	w.Width = GridSize(w.MaxRadius)
	return w
}

func (w *Writer) group(name string) (*hdf5.Group, error) {
	g, err := createGroup(w.File, name)
	if err != nil {
		return nil, err
	}
	w.closeGroups = append(w.closeGroups, g)
	return g, nil
}

func (w *Writer) table(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dset, err := createTable(group, name, datatype, w.compression)
	if err != nil {
		return nil, err
	}
	w.closeDatasets = append(w.closeDatasets, dset)
	return dset, nil
}

func (w *Writer) array(group *hdf5.Group, name string) (*hdf5.Dataset, error) {
	dset, err := create2dArray(group, name, w.Width, w.compression)
	if err != nil {
		return nil, err
	}
	w.closeDatasets = append(w.closeDatasets, dset)
	return dset, nil
}

func (w *Writer) createLayout() (*hdf5Tables, error) {
	var err error
	if w.RunGroup, err = w.group("Run"); err != nil {
		return nil, err
	}
	if w.DetectorGroup, err = w.group("Detector"); err != nil {
		return nil, err
	}
	if w.HitsGroup, err = w.group("Hits"); err != nil {
		return nil, err
	}
	if w.NbGroup, err = w.group("Neighborhood"); err != nil {
		return nil, err
	}
	if w.FitsGroup, err = w.group("Fits"); err != nil {
		return nil, err
	}

	t := &hdf5Tables{width: w.Width}
	if t.events, err = w.table(w.RunGroup, "events", EventDataHDF5{}); err != nil {
		return nil, err
	}
	if t.runInfo, err = w.table(w.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return nil, err
	}
	if t.params, err = w.table(w.DetectorGroup, "parameters", ParamHDF5{}); err != nil {
		return nil, err
	}
	if t.hits, err = w.table(w.HitsGroup, "hits", HitHDF5{}); err != nil {
		return nil, err
	}
	if t.fits, err = w.table(w.FitsGroup, "fits", FitHDF5{}); err != nil {
		return nil, err
	}
	for column, name := range nbColumnNames {
		if t.neighborhood[column], err = w.array(w.NbGroup, name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// writeParameters stores every tagged numeric field of the detector grid and
// the charge sharing physics as (name, value) rows.
func (w *Writer) writeParameters(table *hdf5.Dataset, config Configuration) error {
	entries := make([]ParamHDF5, 0)
	entries = append(entries, taggedParameters(config.Detector())...)
	entries = append(entries, taggedParameters(config.Physics())...)
	entries = append(entries,
		ParamHDF5{paramStr: convertToHdf5String("neighborhood_radius"), value: float64(config.NeighborhoodRadius)},
		ParamHDF5{paramStr: convertToHdf5String("max_radius"), value: float64(w.MaxRadius)},
	)
	return writeArrayToTable(table, &entries, 0)
}

func taggedParameters(params interface{}) []ParamHDF5 {
	t := reflect.TypeOf(params)
	v := reflect.ValueOf(params)
	entries := make([]ParamHDF5, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		paramName := f.Tag.Get("hdf5")
		if paramName == "" {
			continue
		}
		var value float64
		switch f.Type.Kind() {
		case reflect.Float64:
			value = v.Field(i).Float()
		case reflect.Int:
			value = float64(v.Field(i).Int())
		default:
			continue
		}
		entries = append(entries, ParamHDF5{
			paramStr: convertToHdf5String(paramName),
			value:    value,
		})
	}
	return entries
}

// WriteEvent stores one event record. The hit, its neighborhood arrays and
// its fits go first and the Run/events row last; counters advance only once
// every write succeeded, so a failed event leaves no committed row behind.
func (w *Writer) WriteEvent(event *EventResult) error {
	hits, fits := w.HitCounter, w.FitCounter

	if event.HasHit() {
		if err := w.writeNeighborhood(event); err != nil {
			return fmt.Errorf("error writing neighborhood of event %d: %w", event.EventID, err)
		}
		if err := w.sink.writeHit(hitEntry(event), w.HitCounter); err != nil {
			return fmt.Errorf("error writing hit of event %d: %w", event.EventID, err)
		}
		hits++

		rows := fitEntries(event)
		if len(rows) > 0 {
			if err := w.sink.writeFits(rows, w.FitCounter); err != nil {
				return fmt.Errorf("error writing fits of event %d: %w", event.EventID, err)
			}
			fits += len(rows)
		}
	}

	if err := w.sink.writeEvent(eventEntry(event), w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", event.EventID, err)
	}
	w.EvtCounter++
	w.HitCounter = hits
	w.FitCounter = fits
	return nil
}

func eventEntry(event *EventResult) EventDataHDF5 {
	return EventDataHDF5{
		evt_number:  int32(event.EventID),
		status:      int32(event.Status),
		error:       boolToInt32(event.Error),
		n_steps:     int32(event.NSteps),
		init_energy: event.InitialEnergy,
		edep:        event.Edep,
	}
}

func hitEntry(event *EventResult) HitHDF5 {
	hit := HitHDF5{
		evt_number: int32(event.EventID),
		status:     int32(event.Status),
		edep:       event.Edep,
		true_x:     event.TruePos.X,
		true_y:     event.TruePos.Y,
		true_z:     event.TruePos.Z,
		init_x:     event.InitialPos.X,
		init_y:     event.InitialPos.Y,
		init_z:     event.InitialPos.Z,
		pixel_i:    int32(event.Pixel.Index.I),
		pixel_j:    int32(event.Pixel.Index.J),
		pixel_x:    event.Pixel.Center.X,
		pixel_y:    event.Pixel.Center.Y,
		pixel_dist: event.Pixel.Distance,
		delta_x:    event.Pixel.PixelTrueDeltaX,
		delta_y:    event.Pixel.PixelTrueDeltaY,
		n_steps:    int32(event.NSteps),
		pixel_hit:  boolToInt32(event.Pixel.PixelHit),
		within_d0:  boolToInt32(event.Pixel.WithinD0),
		radius:     int32(event.Radius),
		quality:    math.NaN(),
		charge_sum: ChargeFractionSum(event.Charge),
	}
	if sel := event.Selection; sel != nil {
		hit.auto_radius = 1
		hit.quality = sel.Quality
		hit.low_confidence = boolToInt32(sel.LowConfidence)
	}
	return hit
}

func fitEntries(event *EventResult) []FitHDF5 {
	fits := make([]FitHDF5, len(event.Fits))
	for k, f := range event.Fits {
		fits[k] = FitHDF5{
			evt_number:  int32(event.EventID),
			model:       int32(f.Model),
			orientation: int32(f.Orientation),
			center:      f.Center,
			width:       f.Width,
			amplitude:   f.Amplitude,
			center_err:  f.CenterErr,
			chi2red:     f.Chi2Red,
			dof:         int32(f.DOF),
			success:     boolToInt32(f.Success),
		}
	}
	return fits
}

// writeNeighborhood lays the event's grid into the widest grid of the run so
// a given column always refers to the same pixel offset. Unused columns are NaN.
func (w *Writer) writeNeighborhood(event *EventResult) error {
	values := [nbColumns]func(k int) float64{
		NB_ANGLE:           func(k int) float64 { return event.Geometry[k].Angle },
		NB_DISTANCE:        func(k int) float64 { return event.Geometry[k].Distance },
		NB_ALPHA:           func(k int) float64 { return event.Geometry[k].Alpha },
		NB_CHARGE_FRACTION: func(k int) float64 { return event.Charge[k].Fraction },
		NB_CHARGE:          func(k int) float64 { return event.Charge[k].ChargeCoulombs },
	}
	for column, value := range values {
		data := make([]float64, w.Width)
		for k := range data {
			data[k] = math.NaN()
		}
		for k, g := range event.Geometry {
			if abs(g.DI) > w.MaxRadius || abs(g.DJ) > w.MaxRadius {
				continue
			}
			data[GridIndex(w.MaxRadius, g.DI, g.DJ)] = value(k)
		}
		if err := w.sink.writeNeighborhood(column, data, w.HitCounter); err != nil {
			return err
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (w *Writer) Close() error {
	if w.Verbose() {
		logger.Info(fmt.Sprintf("Closing file hdf writer %s", w.Filename), "writer")
	}
	var errs []error

	if w.sink != nil {
		if err := w.sink.truncate(w.EvtCounter, w.HitCounter, w.FitCounter); err != nil {
			errs = append(errs, fmt.Errorf("error dropping uncommitted rows: %w", err))
		}
		info := RunInfoHDF5{run_number: int32(w.RunNumber), n_events: int32(w.EvtCounter)}
		if err := w.sink.writeRunInfo(info); err != nil {
			errs = append(errs, fmt.Errorf("error writing run info: %w", err))
		}
		w.sink = nil
	}
	for _, dset := range w.closeDatasets {
		if err := dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing dataset: %w", err))
		}
	}
	for _, g := range w.closeGroups {
		if err := g.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}
	w.closeDatasets = nil
	w.closeGroups = nil
	w.File = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (w *Writer) Verbose() bool {
	return w.verbosity > 0
}
