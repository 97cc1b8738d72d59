package jungfrau

import (
	"errors"
	"math"
	"sort"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PixelStats accumulates per pixel statistics of high gain frames in units of
// the G0 gain. Samples read in any other mode count as zero.
type PixelStats struct {
	Frames  int
	sum     []float64
	sumSq   []float64
	min     []float64
	inverse []float64
}

func NewPixelStats(gains GainMaps) *PixelStats {
	s := &PixelStats{
		sum:     make([]float64, NPixels),
		sumSq:   make([]float64, NPixels),
		min:     make([]float64, NPixels),
		inverse: make([]float64, NPixels),
	}
	for p, gain := range gains.G0 {
		s.inverse[p] = 1 / gain
	}
	return s
}

func (s *PixelStats) Add(pixels []uint16) {
	for p, sample := range pixels {
		if sample > AdcMask {
			sample = 0
		}
		value := float64(sample) * s.inverse[p]
		if s.Frames == 0 || value < s.min[p] {
			s.min[p] = value
		}
		s.sum[p] += value
		s.sumSq[p] += value * value
	}
	s.Frames++
}

// Mean and StdDev are per pixel, over the frames added so far.
func (s *PixelStats) Mean() []float64 {
	mean := make([]float64, NPixels)
	if s.Frames == 0 {
		return mean
	}
	floats.ScaleTo(mean, 1/float64(s.Frames), s.sum)
	return mean
}

// StdDev is the population standard deviation. Pixels without spread get 1 so
// they can be used as a divisor.
func (s *PixelStats) StdDev() []float64 {
	mean := s.Mean()
	stddev := make([]float64, NPixels)
	for p := range stddev {
		variance := 0.0
		if s.Frames > 0 {
			variance = s.sumSq[p]/float64(s.Frames) - mean[p]*mean[p]
		}
		if variance <= 0 {
			stddev[p] = 1
			continue
		}
		stddev[p] = math.Sqrt(variance)
	}
	return stddev
}

type StatsSummary struct {
	Frames         int
	MeanStdDev     float64
	MedianStdDev   float64
	MaxSigmas      float64
	MaxNegative    float64
	MaxSigmasPixel int
}

// Summarize reports the mean noise over the module and the largest drop
// below the mean, both in sigmas and in gain units.
func (s *PixelStats) Summarize() (StatsSummary, error) {
	if s.Frames == 0 {
		return StatsSummary{}, errors.New("no frames accumulated")
	}
	mean := s.Mean()
	stddev := s.StdDev()

	excursion := make([]float64, NPixels)
	floats.SubTo(excursion, mean, s.min)
	sigmas := make([]float64, NPixels)
	floats.DivTo(sigmas, excursion, stddev)

	return StatsSummary{
		Frames:         s.Frames,
		MeanStdDev:     stat.Mean(stddev, nil),
		MedianStdDev:   ApproxMedian(stddev, make([]float64, statsSamples)),
		MaxSigmas:      floats.Max(sigmas),
		MaxNegative:    floats.Max(excursion),
		MaxSigmasPixel: floats.MaxIdx(sigmas),
	}, nil
}

const statsSamples = 4096

// ApproxMedian is the median of len(samples) values drawn at random from data.
// samples is used as scratch space.
func ApproxMedian(data []float64, samples []float64) float64 {
	if len(data) == 0 || len(samples) == 0 {
		return math.NaN()
	}
	max := uint32(len(data))
	rng := fastrand.RNG{}
	for i := range samples {
		samples[i] = data[rng.Uint32n(max)]
	}
	sort.Float64s(samples)
	return stat.Quantile(0.5, stat.Empirical, samples, nil)
}
