package jungfrau

import (
	"math"
	"testing"
)

func TestCensusFrame(t *testing.T) {
	pixels := make([]uint16, 10)
	pixels[0] = 0x4000 | 5
	pixels[1] = 0x4000
	pixels[2] = 0xC000 | 7
	pixels[3] = 0x8000

	census := CensusFrame(12, pixels)
	if census.Frame != 12 || census.Bit14 != 3 || census.Bit15 != 2 {
		t.Errorf("census=%+v; want frame 12, 3 with bit 14, 2 with bit 15", census)
	}
	if census.Modes != [4]int{6, 2, 1, 1} {
		t.Errorf("Modes=%v; want [6 2 1 1]", census.Modes)
	}
	if census.Dominant() != G0 {
		t.Errorf("Dominant()=%v; want G0", census.Dominant())
	}
}

func TestPixelStats(t *testing.T) {
	stats := NewPixelStats(uniformGains(2, 1, 1))
	pixels := make([]uint16, NPixels)
	for _, level := range []uint16{10, 20, 30} {
		for p := range pixels {
			pixels[p] = level
		}
		pixels[0] = 0x4000 | level
		stats.Add(pixels)
	}

	mean := stats.Mean()
	if math.Abs(mean[1]-10) > 1e-9 || mean[0] != 0 {
		t.Errorf("mean=%v, %v; want 10, 0", mean[1], mean[0])
	}
	stddev := stats.StdDev()
	if want := math.Sqrt(50.0 / 3); math.Abs(stddev[1]-want) > 1e-9 {
		t.Errorf("stddev=%v; want %v", stddev[1], want)
	}
	if stddev[0] != 1 {
		t.Errorf("stddev without spread=%v; want 1", stddev[0])
	}

	summary, err := stats.Summarize()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Frames != 3 || math.Abs(summary.MaxNegative-5) > 1e-9 {
		t.Errorf("summary=%+v; want 3 frames and a drop of 5", summary)
	}
	if math.Abs(summary.MedianStdDev-stddev[1]) > 1e-9 {
		t.Errorf("MedianStdDev=%v; want %v", summary.MedianStdDev, stddev[1])
	}
}

func TestPixelStatsEmpty(t *testing.T) {
	if _, err := NewPixelStats(uniformGains(1, 1, 1)).Summarize(); err == nil {
		t.Error("Summarize() on no frames succeeded")
	}
}
