package jungfrau

// FrameCensus counts the pixels of a frame by their gain bits. Bit14 and
// Bit15 count pixels with bit 14 and bit 15 set, as the gain switching
// hardware reports them.
type FrameCensus struct {
	Frame int
	Bit14 int
	Bit15 int
	Modes [4]int
}

func CensusFrame(frame int, pixels []uint16) FrameCensus {
	census := FrameCensus{Frame: frame}
	for _, sample := range pixels {
		mode := sample >> 14
		census.Modes[mode]++
		if mode&1 != 0 {
			census.Bit14++
		}
		if mode&2 != 0 {
			census.Bit15++
		}
	}
	return census
}

// Dominant returns the gain mode most pixels of the frame were read in.
func (c FrameCensus) Dominant() GainMode {
	best := 0
	for mode, count := range c.Modes {
		if count > c.Modes[best] {
			best = mode
		}
	}
	return GainMode(best)
}
