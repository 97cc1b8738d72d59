package jungfrau

import (
	"errors"
	"fmt"
	"io"
)

// Frames taken in each pedestal phase
const PedestalFrames = 1000

// Pedestals holds the dark level of every pixel in each gain mode and the
// mask of pixels that can be trusted (true = good).
type Pedestals struct {
	P0   []float64
	P1   []float64
	P2   []float64
	Mask []bool
}

func newPedestals() Pedestals {
	mask := make([]bool, NPixels)
	for p := range mask {
		mask[p] = true
	}
	return Pedestals{
		P0:   make([]float64, NPixels),
		P1:   make([]float64, NPixels),
		P2:   make([]float64, NPixels),
		Mask: mask,
	}
}

// ForMode returns the pedestal table subtracted from samples in the given mode.
func (p Pedestals) ForMode(mode GainMode) []float64 {
	switch mode {
	case G2:
		return p.P2
	case G1:
		return p.P1
	default:
		return p.P0
	}
}

// BadPixels counts the masked pixels.
func (p Pedestals) BadPixels() int {
	bad := 0
	for _, good := range p.Mask {
		if !good {
			bad++
		}
	}
	return bad
}

type pedestalPhase struct {
	mode       GainMode
	accumulate func(ped Pedestals, pixels []uint16)
}

// Low and medium gain are forced by the detector, the mode bits carry no
// information and are dropped.
func accumulateForced(table func(Pedestals) []float64) func(Pedestals, []uint16) {
	return func(ped Pedestals, pixels []uint16) {
		sum := table(ped)
		for p, sample := range pixels {
			sum[p] += float64(sample & AdcMask)
		}
	}
}

// High gain is not forced: a pixel that reports any other mode during the
// phase is masked and stays out of the sum.
func accumulateHighGain(ped Pedestals, pixels []uint16) {
	for p, sample := range pixels {
		if !ped.Mask[p] {
			continue
		}
		if sample&ModeMask != 0 {
			ped.Mask[p] = false
			ped.P0[p] = 0
			continue
		}
		ped.P0[p] += float64(sample)
	}
}

var pedestalPhases = []pedestalPhase{
	{mode: G2, accumulate: accumulateForced(func(p Pedestals) []float64 { return p.P2 })},
	{mode: G1, accumulate: accumulateForced(func(p Pedestals) []float64 { return p.P1 })},
	{mode: G0, accumulate: accumulateHighGain},
}

// EstimatePedestals consumes exactly 3*PedestalFrames frames from r: low gain,
// medium gain, then high gain, and returns the mean dark level of each pixel
// per mode together with the bad pixel mask built during the high gain phase.
func EstimatePedestals(r *FrameReader) (Pedestals, error) {
	ped := newPedestals()
	pixels := make([]uint16, NPixels)

	for _, phase := range pedestalPhases {
		for i := 0; i < PedestalFrames; i++ {
			err := r.ReadFrame(pixels)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = &IOError{
						Op:       "reading pedestal frames",
						Filename: r.Filename,
						Err:      fmt.Errorf("%w: truncated pedestal stream, %v phase ended after %d frames", ErrTruncatedStream, phase.mode, i),
					}
				}
				return Pedestals{}, err
			}
			phase.accumulate(ped, pixels)
		}

		table := ped.ForMode(phase.mode)
		for p := range table {
			table[p] /= PedestalFrames
		}
		if configuration.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Pedestal %v done after %d frames", phase.mode, r.FramesRead), "pedestal")
		}
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Masked %d pixels", ped.BadPixels()), "pedestal")
	}
	return ped, nil
}
