package jungfrau

import (
	"errors"
	"math"
	"testing"
)

var (
	countsEncoding = OutputEncoding{Name: "counts", Code: EncodeCounts}
	floatEncoding  = OutputEncoding{Name: "float", Code: EncodeFloat}
)

func TestCorrectorValue(t *testing.T) {
	state := uniformState(100, 40, -1.5, -0.1)
	state.pedestals.Mask[3] = false
	c := NewCorrector(state, 0, countsEncoding)

	tests := []struct {
		name   string
		p      int
		sample uint16
		want   float64
	}{
		{"G0", 0, 300, 5},
		{"G1", 0, 0x4000 | 40, 40},
		{"G2", 0, 0xC000 | 90, 100},
		{"mode 2 uses G0", 0, 0x8000 | 300, 5},
		{"below pedestal", 0, 50, -1.25},
		{"masked pixel reads as zero", 3, 0xC000 | 90, -2.5},
	}
	for _, tt := range tests {
		if got := c.Value(tt.p, tt.sample); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Value(%d, %#04x)=%v; want %v", tt.name, tt.p, tt.sample, got, tt.want)
		}
	}
}

func TestCorrectorPhotonEnergy(t *testing.T) {
	state := uniformState(100, 40, 1, 1)
	if got := NewCorrector(state, 2, countsEncoding).Value(0, 300); got != 2.5 {
		t.Errorf("Value=%v; want 2.5", got)
	}
	if got := NewCorrector(state, 0, countsEncoding).Value(0, 300); got != 5 {
		t.Errorf("Value without energy=%v; want 5", got)
	}
}

func TestCorrect(t *testing.T) {
	state := uniformState(100, 40, 1, 1)
	state.pedestals.Mask[1] = false
	raw := make([]uint16, NPixels)
	for p := range raw {
		raw[p] = 300
	}
	raw[2] = 50

	out := make([]uint32, NPixels)
	if err := NewCorrector(state, 2, countsEncoding).Correct(raw, out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 2 || out[1] != Sentinel || out[2] != 0 {
		t.Errorf("counts=%d %d %d; want 2 Sentinel 0", out[0], out[1], out[2])
	}

	if err := NewCorrector(state, 2, floatEncoding).Correct(raw, out); err != nil {
		t.Fatal(err)
	}
	if got := math.Float32frombits(out[0]); got != 2.5 {
		t.Errorf("float=%v; want 2.5", got)
	}
	if got := math.Float32frombits(out[2]); got != -0.625 {
		t.Errorf("float below pedestal=%v; want -0.625", got)
	}
	if out[1] != Sentinel {
		t.Errorf("masked=%#x; want Sentinel", out[1])
	}
}

func TestCorrectBufferSizes(t *testing.T) {
	c := NewCorrector(uniformState(0, 1, 1, 1), 0, countsEncoding)
	if err := c.Correct(make([]uint16, 10), make([]uint32, NPixels)); !errors.Is(err, ErrBufferSize) {
		t.Errorf("err=%v; want ErrBufferSize", err)
	}
}

func TestEncodeCount(t *testing.T) {
	tests := []struct {
		value float64
		want  uint32
	}{
		{3.99, 3},
		{0.5, 0},
		{-7, 0},
		{math.NaN(), 0},
		{math.Inf(1), Sentinel - 1},
		{1e12, Sentinel - 1},
		{float64(Sentinel), Sentinel - 1},
		{float64(Sentinel - 1), Sentinel - 1},
	}
	for _, tt := range tests {
		if got := EncodeCount(tt.value); got != tt.want {
			t.Errorf("EncodeCount(%v)=%d; want %d", tt.value, got, tt.want)
		}
	}
}

func TestDecodeValue(t *testing.T) {
	if _, ok := DecodeValue(Sentinel, countsEncoding); ok {
		t.Error("Sentinel decoded as a value")
	}
	if v, ok := DecodeValue(17, countsEncoding); !ok || v != 17 {
		t.Errorf("DecodeValue(17)=%v, %t; want 17, true", v, ok)
	}
	if v, ok := DecodeValue(math.Float32bits(-1.5), floatEncoding); !ok || v != -1.5 {
		t.Errorf("DecodeValue(float -1.5)=%v, %t; want -1.5, true", v, ok)
	}
}
