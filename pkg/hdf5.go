package aclgad

import (
	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type EventDataHDF5 struct {
	evt_number  int32
	status      int32
	error       int32
	n_steps     int32
	init_energy float64
	edep        float64
}

type RunInfoHDF5 struct {
	run_number int32
	n_events   int32
}

type ParamHDF5 struct {
	paramStr [STRLEN]byte
	value    float64
}

type HitHDF5 struct {
	evt_number     int32
	status         int32
	edep           float64
	true_x         float64
	true_y         float64
	true_z         float64
	init_x         float64
	init_y         float64
	init_z         float64
	pixel_i        int32
	pixel_j        int32
	pixel_x        float64
	pixel_y        float64
	pixel_dist     float64
	delta_x        float64
	delta_y        float64
	n_steps        int32
	pixel_hit      int32
	within_d0      int32
	radius         int32
	auto_radius    int32
	quality        float64
	low_confidence int32
	charge_sum     float64
}

type FitHDF5 struct {
	evt_number  int32
	model       int32
	orientation int32
	center      float64
	width       float64
	amplitude   float64
	center_err  float64
	chi2red     float64
	dof         int32
	success     int32
}

const STRLEN = 32

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func datasetProperties(chunks []uint, compressionLevel int) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		plist.Close()
		return nil, err
	}
	if compressionLevel > 0 {
		if err := plist.SetDeflate(compressionLevel); err != nil {
			plist.Close()
			return nil, err
		}
	}
	return plist, nil
}

// create2dArray makes an (events x width) float64 array growing along the
// first axis.
func create2dArray(group *hdf5.Group, name string, width int, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0, uint(width)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), uint(width)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	chunks := []uint{1024, uint(width)}
	plist, err := datasetProperties(chunks, compressionLevel)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := datasetProperties([]uint{32768}, compressionLevel)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer dtype.Close()

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, offset int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, offset)
}

// writeArrayToTable appends data to a 1D table that already holds offset rows.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, offset int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(offset)
	if err := dataset.Resize([]uint{rowsInFile + length}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func write2dArray(dataset *hdf5.Dataset, data *[]float64, evtCounter int, width int) error {
	// extend
	if err := dataset.Resize([]uint{uint(evtCounter) + 1, uint(width)}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(evtCounter), 0}
	count := []uint{1, uint(width)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	return dataset.WriteSubset(data, dataspace, filespace)
}

// truncateTable shrinks a dataset along its first axis to rows, dropping rows
// that were extended but never committed.
func truncateTable(dataset *hdf5.Dataset, rows int, width int) error {
	dims := []uint{uint(rows)}
	if width > 0 {
		dims = append(dims, uint(width))
	}
	return dataset.Resize(dims)
}
