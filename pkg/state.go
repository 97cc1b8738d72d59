package jungfrau

import "fmt"

// CalibrationState bundles the gain maps, pedestals and mask of a run. It is
// built once and only read afterwards, so workers share it freely.
type CalibrationState struct {
	gains     GainMaps
	pedestals Pedestals
}

func NewCalibrationState(gains GainMaps, pedestals Pedestals) (*CalibrationState, error) {
	tables := map[string]int{
		"g0":   len(gains.G0),
		"g1":   len(gains.G1),
		"g2":   len(gains.G2),
		"p0":   len(pedestals.P0),
		"p1":   len(pedestals.P1),
		"p2":   len(pedestals.P2),
		"mask": len(pedestals.Mask),
	}
	for name, size := range tables {
		if size != NPixels {
			return nil, fmt.Errorf("%w: %s has %d pixels, want %d", ErrBufferSize, name, size, NPixels)
		}
	}
	return &CalibrationState{gains: gains, pedestals: pedestals}, nil
}

func (s *CalibrationState) Good(p int) bool {
	return s.pedestals.Mask[p]
}

func (s *CalibrationState) BadPixels() int {
	return s.pedestals.BadPixels()
}

// Gain returns the gain applied to pixel p in the given mode.
func (s *CalibrationState) Gain(mode GainMode, p int) float64 {
	return s.gains.ForMode(mode)[p]
}

// Pedestal returns the dark level subtracted from pixel p in the given mode.
func (s *CalibrationState) Pedestal(mode GainMode, p int) float64 {
	return s.pedestals.ForMode(mode)[p]
}
