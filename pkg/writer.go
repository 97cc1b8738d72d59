package jungfrau

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores display frames in a single HDF5 file: dataset "data" with
// shape (frames, 514, 1030) and table "frames" with the index of each frame.
type Writer struct {
	File       *hdf5.File
	Filename   string
	Data       *hdf5.Dataset
	FrameTable *hdf5.Dataset
	EvtCounter int
}

func NewWriter(filename string, compressionLevel int) (*Writer, error) {
	writer := &Writer{Filename: filename}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "hdf5writer")
	}

	var err error
	writer.File, err = openFile(filename)
	if err != nil {
		return nil, err
	}
	writer.Data, err = create3dArray(writer.File, "data", DisplayRows, DisplayCols, compressionLevel)
	if err != nil {
		writer.File.Close()
		return nil, err
	}
	writer.FrameTable, err = createTable(writer.File, "frames", FrameIndexHDF5{}, compressionLevel)
	if err != nil {
		writer.Data.Close()
		writer.File.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) WriteFrame(index int, frame []uint32) error {
	if len(frame) != DisplayPixels {
		return fmt.Errorf("%w: display frame has %d pixels, want %d", ErrBufferSize, len(frame), DisplayPixels)
	}
	if err := write3dArray(w.Data, &frame, w.EvtCounter, DisplayRows, DisplayCols); err != nil {
		return &IOError{Op: fmt.Sprintf("writing frame %d", index), Filename: w.Filename, Err: err}
	}
	if err := writeEntryToTable(w.FrameTable, FrameIndexHDF5{frame: int32(index)}, w.EvtCounter); err != nil {
		return &IOError{Op: fmt.Sprintf("writing index of frame %d", index), Filename: w.Filename, Err: err}
	}
	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s after %d frames", w.Filename, w.EvtCounter), "hdf5writer")
	}
	var errs []error

	if err := w.Data.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing data: %w", err))
	}
	if err := w.FrameTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing frame table: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// WriteCalibration exports the gain maps, pedestals and mask of a run as
// (512, 1024) datasets g0, g1, g2, p0, p1, p2 and mask of group "calibration".
func WriteCalibration(filename string, state *CalibrationState, compressionLevel int) (err error) {
	file, err := openFile(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing file: %w", cerr)
		}
	}()
	group, err := createGroup(file, "calibration")
	if err != nil {
		return err
	}
	defer group.Close()

	tables := []struct {
		name string
		data []float64
	}{
		{"g0", state.gains.G0},
		{"g1", state.gains.G1},
		{"g2", state.gains.G2},
		{"p0", state.pedestals.P0},
		{"p1", state.pedestals.P1},
		{"p2", state.pedestals.P2},
	}
	for _, table := range tables {
		if err := writeCalibrationTable(group, table.name, hdf5.T_NATIVE_DOUBLE, &table.data, compressionLevel); err != nil {
			return err
		}
	}

	mask := make([]uint8, NPixels)
	for p, good := range state.pedestals.Mask {
		if good {
			mask[p] = 1
		}
	}
	if err := writeCalibrationTable(group, "mask", hdf5.T_NATIVE_UINT8, &mask, compressionLevel); err != nil {
		return err
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Calibration written to %s", filename), "hdf5writer")
	}
	return nil
}

func writeCalibrationTable(parent datasetCreator, name string, dtype *hdf5.Datatype, data interface{}, compressionLevel int) error {
	dset, err := create2dArray(parent, name, dtype, NY, NX, compressionLevel)
	if err != nil {
		return err
	}
	if err := dset.Write(data); err != nil {
		dset.Close()
		return &IOError{Op: fmt.Sprintf("writing %s", name), Err: err}
	}
	return dset.Close()
}
