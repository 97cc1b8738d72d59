package jungfrau

import (
	"fmt"
	"math"
)

// Corrector turns raw frames into calibrated values:
//
//	e(keV) = (I(ADU) - P(ADU)) / G(ADU/keV)
//	I(photons) = e(keV) / photon energy
type Corrector struct {
	state    *CalibrationState
	energy   float64
	encoding EncodingCode
}

// NewCorrector divides by photonEnergy (keV) when it is positive, giving
// photon counts instead of energies.
func NewCorrector(state *CalibrationState, photonEnergy float64, encoding OutputEncoding) *Corrector {
	return &Corrector{state: state, energy: photonEnergy, encoding: encoding.Code}
}

// Value returns the calibrated value of one sample of pixel p. Masked
// pixels are decoded as a zero sample so they always hit the G0 tables.
func (c *Corrector) Value(p int, sample uint16) float64 {
	if !c.state.Good(p) {
		sample = 0
	}
	mode, adc := DecodeSample(sample)
	// mode 2 is never produced by the detector and falls back to G0
	if mode != G1 && mode != G2 {
		mode = G0
	}

	gain := c.state.Gain(mode, p)
	if c.energy > 0 {
		gain *= c.energy
	}
	return (float64(adc) - c.state.Pedestal(mode, p)) / gain
}

// Correct fills out with the encoded calibrated value of every pixel of
// raw, or Sentinel for masked pixels.
func (c *Corrector) Correct(raw []uint16, out []uint32) error {
	if len(raw) != NPixels || len(out) != NPixels {
		return fmt.Errorf("%w: correcting %d pixels into %d, want %d", ErrBufferSize, len(raw), len(out), NPixels)
	}
	for p, sample := range raw {
		if !c.state.Good(p) {
			out[p] = Sentinel
			continue
		}
		out[p] = c.encode(c.Value(p, sample))
	}
	return nil
}

func (c *Corrector) encode(value float64) uint32 {
	if c.encoding == EncodeFloat {
		return math.Float32bits(float32(value))
	}
	return EncodeCount(value)
}

// EncodeCount truncates towards zero. NaN and negative values give 0, values
// that would collide with Sentinel saturate just below it.
func EncodeCount(value float64) uint32 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	if value >= float64(Sentinel) {
		return Sentinel - 1
	}
	return uint32(value)
}

// DecodeValue turns a stored word back into a float, reporting false for Sentinel.
func DecodeValue(word uint32, encoding OutputEncoding) (float64, bool) {
	if word == Sentinel {
		return 0, false
	}
	if encoding.Code == EncodeFloat {
		return float64(math.Float32frombits(word)), true
	}
	return float64(word), true
}
