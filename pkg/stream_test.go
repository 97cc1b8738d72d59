package jungfrau

import (
	"encoding/binary"
	"io"
)

// frameStream serves generated raw frames without holding the whole stream
// in memory. frame(i) must return the bytes of frame i and may share them
// between calls.
type frameStream struct {
	frames   int
	frame    func(i int) []byte
	trailing []byte
	current  []byte
	next     int
}

func (s *frameStream) Read(p []byte) (int, error) {
	for len(s.current) == 0 {
		switch {
		case s.next < s.frames:
			s.current = s.frame(s.next)
			s.next++
		case len(s.trailing) > 0:
			s.current, s.trailing = s.trailing, nil
		default:
			return 0, io.EOF
		}
	}
	n := copy(p, s.current)
	s.current = s.current[n:]
	return n, nil
}

// encodeFrame builds the bytes of a raw frame, header included.
func encodeFrame(sample func(p int) uint16) []byte {
	data := make([]byte, RawFrameLen)
	for i := 0; i < HeaderSize; i++ {
		data[i] = 0xAB
	}
	for p := 0; p < NPixels; p++ {
		binary.LittleEndian.PutUint16(data[HeaderSize+2*p:], sample(p))
	}
	return data
}

func constantFrame(sample uint16) []byte {
	return encodeFrame(func(int) uint16 { return sample })
}

// pedestalStream is the 3000 pedestal frames of a quiet module reading
// level in every mode, followed by the given data frames.
func pedestalStream(level uint16, data ...[]byte) *frameStream {
	return pedestalStreamWithBadPixels(level, nil, data...)
}

// pedestalStreamWithBadPixels is pedestalStream with the given pixels
// reporting G1 in every high gain pedestal frame.
func pedestalStreamWithBadPixels(level uint16, bad []int, data ...[]byte) *frameStream {
	g2 := constantFrame(0xC000 | level)
	g1 := constantFrame(0x4000 | level)
	switching := make(map[int]bool)
	for _, p := range bad {
		switching[p] = true
	}
	g0 := encodeFrame(func(p int) uint16 {
		if switching[p] {
			return 0x4000 | level
		}
		return level
	})
	return &frameStream{
		frames: 3*PedestalFrames + len(data),
		frame: func(i int) []byte {
			switch {
			case i < PedestalFrames:
				return g2
			case i < 2*PedestalFrames:
				return g1
			case i < 3*PedestalFrames:
				return g0
			default:
				return data[i-3*PedestalFrames]
			}
		},
	}
}

func uniformGains(g0, g1, g2 float64) GainMaps {
	gains := GainMaps{
		G0: make([]float64, NPixels),
		G1: make([]float64, NPixels),
		G2: make([]float64, NPixels),
	}
	for p := 0; p < NPixels; p++ {
		gains.G0[p] = g0
		gains.G1[p] = g1
		gains.G2[p] = g2
	}
	return gains
}

// uniformState has pedestal ped and the given gains in every mode.
func uniformState(ped float64, g0, g1, g2 float64) *CalibrationState {
	pedestals := newPedestals()
	for p := 0; p < NPixels; p++ {
		pedestals.P0[p] = ped
		pedestals.P1[p] = ped
		pedestals.P2[p] = ped
	}
	state, err := NewCalibrationState(uniformGains(g0, g1, g2), pedestals)
	if err != nil {
		panic(err)
	}
	return state
}
