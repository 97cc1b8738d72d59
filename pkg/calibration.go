package jungfrau

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// GainMaps holds the per pixel gains, in ADU/keV, for modes G0, G1 and G2.
type GainMaps struct {
	G0 []float64
	G1 []float64
	G2 []float64
}

// LoadGainMaps reads the three gain maps of a module from a binary file of
// little endian float64 values, stored as g0, g1, g2.
func LoadGainMaps(filename string) (GainMaps, error) {
	file, err := os.Open(filename)
	if err != nil {
		return GainMaps{}, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	gains, err := ReadGainMaps(bufio.NewReader(file))
	if err != nil {
		var calErr *CalibrationError
		if errors.As(err, &calErr) {
			calErr.Filename = filename
		}
		return GainMaps{}, err
	}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Gain maps read from %s", filename), "calibration")
	}
	return gains, nil
}

func ReadGainMaps(r io.Reader) (GainMaps, error) {
	gains := GainMaps{
		G0: make([]float64, NPixels),
		G1: make([]float64, NPixels),
		G2: make([]float64, NPixels),
	}
	for i, table := range [][]float64{gains.G0, gains.G1, gains.G2} {
		if err := binary.Read(r, binary.LittleEndian, table); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = fmt.Errorf("%w: gain map %d incomplete", ErrTruncatedStream, i)
			}
			return GainMaps{}, &CalibrationError{Err: err}
		}
	}
	return gains, nil
}

// ForMode returns the gain table used to correct samples in the given mode.
func (g GainMaps) ForMode(mode GainMode) []float64 {
	switch mode {
	case G2:
		return g.G2
	case G1:
		return g.G1
	default:
		return g.G0
	}
}

// Validate reports gains that would turn every corrected value into Inf or NaN.
func (g GainMaps) Validate() error {
	for _, mode := range []GainMode{G0, G1, G2} {
		table := g.ForMode(mode)
		if len(table) != NPixels {
			return &CalibrationError{Err: fmt.Errorf("%w: %v gain map has %d pixels", ErrBufferSize, mode, len(table))}
		}
		bad := 0
		first := -1
		for p, gain := range table {
			if gain == 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
				if first < 0 {
					first = p
				}
				bad++
			}
		}
		if bad > 0 {
			return &CalibrationError{
				Err: fmt.Errorf("%v gain map has %d unusable gains, first at row %d col %d",
					mode, bad, first/NX, first%NX),
			}
		}
	}
	return nil
}
