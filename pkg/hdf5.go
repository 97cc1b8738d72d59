package jungfrau

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type FrameIndexHDF5 struct {
	frame int32
}

// Files and groups both hold datasets
type datasetCreator interface {
	CreateDatasetWith(name string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace, dcpl *hdf5.PropList) (*hdf5.Dataset, error)
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

// create3dArray makes an extensible (frames, rows, cols) dataset with one frame per chunk.
func create3dArray(parent datasetCreator, name string, rows int, cols int, level int) (*hdf5.Dataset, error) {
	dimsArray := []uint{0, uint(rows), uint(cols)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(rows), uint(cols)}
	chunks := []uint{1, uint(rows), uint(cols)}
	return createArray(parent, name, hdf5.T_NATIVE_UINT32, dimsArray, maxDimsArray, chunks, level)
}

// create2dArray makes a fixed (rows, cols) dataset stored as a single chunk.
func create2dArray(parent datasetCreator, name string, dtype *hdf5.Datatype, rows int, cols int, level int) (*hdf5.Dataset, error) {
	dims := []uint{uint(rows), uint(cols)}
	return createArray(parent, name, dtype, dims, dims, dims, level)
}

func createArray(parent datasetCreator, name string, dtype *hdf5.Datatype, dims []uint, maxDims []uint, chunks []uint, level int) (*hdf5.Dataset, error) {
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: fmt.Errorf("property list: %w", err)}
	}
	defer plist.Close()

	if err := plist.SetChunk(chunks); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: fmt.Errorf("chunks: %w", err)}
	}
	if level > 0 {
		if err := plist.SetDeflate(level); err != nil {
			return nil, &ErrCreateTable{TableName: name, Err: fmt.Errorf("deflate: %w", err)}
		}
	}

	dset, err := parent.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(parent datasetCreator, name string, datatype interface{}, level int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	chunks := []uint{32768}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: fmt.Errorf("datatype: %w", err)}
	}
	return createArray(parent, name, dtype, dims, maxDims, chunks, level)
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, evtCounter int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, evtCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int) error {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	entriesInFile := uint(evtCounter)
	newsize := []uint{entriesInFile + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{entriesInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func write3dArray(dataset *hdf5.Dataset, data *[]uint32, evtCounter int, rows int, cols int) error {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(rows), uint(cols)}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{uint(evtCounter), 0, 0}
	count := []uint{1, uint(rows), uint(cols)}
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
