package jungfrau

import (
	"errors"
	"testing"

	"github.com/valyala/fastrand"
)

func TestEstimatePedestalsConstant(t *testing.T) {
	r := NewFrameReader(pedestalStream(100), "constant")
	ped, err := EstimatePedestals(r)
	if err != nil {
		t.Fatal(err)
	}
	for p := 0; p < NPixels; p++ {
		if ped.P0[p] != 100 || ped.P1[p] != 100 || ped.P2[p] != 100 {
			t.Fatalf("pixel %d pedestals=%v %v %v; want 100", p, ped.P0[p], ped.P1[p], ped.P2[p])
		}
	}
	if bad := ped.BadPixels(); bad != 0 {
		t.Errorf("BadPixels()=%d; want 0", bad)
	}
	if r.FramesRead != 3*PedestalFrames {
		t.Errorf("FramesRead=%d; want %d", r.FramesRead, 3*PedestalFrames)
	}
}

func TestEstimatePedestalsMasksSwitchingPixels(t *testing.T) {
	const stuck, flicker = 7, 5000
	g2 := constantFrame(0xC000 | 100)
	g1 := constantFrame(0x4000 | 100)
	g0 := encodeFrame(func(p int) uint16 {
		if p == stuck {
			return 0x4000 | 100
		}
		return 100
	})
	g0Flicker := encodeFrame(func(p int) uint16 {
		if p == flicker {
			return 0x8000 | 100
		}
		return 100
	})
	stream := &frameStream{
		frames: 3 * PedestalFrames,
		frame: func(i int) []byte {
			switch {
			case i < PedestalFrames:
				return g2
			case i < 2*PedestalFrames:
				return g1
			case i == 2*PedestalFrames+500:
				return g0Flicker
			default:
				return g0
			}
		},
	}

	ped, err := EstimatePedestals(NewFrameReader(stream, "switching"))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []int{stuck, flicker} {
		if ped.Mask[p] {
			t.Errorf("pixel %d not masked", p)
		}
		if ped.P0[p] != 0 {
			t.Errorf("pixel %d P0=%v; want 0", p, ped.P0[p])
		}
		if ped.P1[p] != 100 || ped.P2[p] != 100 {
			t.Errorf("pixel %d P1=%v P2=%v; want 100", p, ped.P1[p], ped.P2[p])
		}
	}
	if bad := ped.BadPixels(); bad != 2 {
		t.Errorf("BadPixels()=%d; want 2", bad)
	}
	if ped.P0[stuck+1] != 100 {
		t.Errorf("neighbour P0=%v; want 100", ped.P0[stuck+1])
	}
}

func TestEstimatePedestalsTruncated(t *testing.T) {
	stream := pedestalStream(100)
	stream.frames = 1500
	_, err := EstimatePedestals(NewFrameReader(stream, "short"))
	if !errors.Is(err, ErrTruncatedStream) {
		t.Fatalf("err=%v; want ErrTruncatedStream", err)
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Filename != "short" {
		t.Errorf("err=%v; want IOError naming the stream", err)
	}
}

func TestEstimatePedestalsDeterministic(t *testing.T) {
	rng := fastrand.RNG{}
	noisy := make([][]byte, 4)
	for i := range noisy {
		mode := uint16(0xC000)
		if i == 2 {
			mode = 0x4000
		} else if i == 3 {
			mode = 0
		}
		noisy[i] = encodeFrame(func(int) uint16 { return mode | uint16(90+rng.Uint32n(20)) })
	}
	newStream := func() *frameStream {
		return &frameStream{
			frames: 3 * PedestalFrames,
			frame: func(i int) []byte {
				switch {
				case i < PedestalFrames:
					return noisy[i%2]
				case i < 2*PedestalFrames:
					return noisy[2]
				default:
					return noisy[3]
				}
			},
		}
	}

	first, err := EstimatePedestals(NewFrameReader(newStream(), "first"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := EstimatePedestals(NewFrameReader(newStream(), "second"))
	if err != nil {
		t.Fatal(err)
	}
	for p := 0; p < NPixels; p++ {
		if first.P0[p] != second.P0[p] || first.P1[p] != second.P1[p] || first.P2[p] != second.P2[p] || first.Mask[p] != second.Mask[p] {
			t.Fatalf("pixel %d differs between runs", p)
		}
		if first.P2[p] < 90 || first.P2[p] >= 110 {
			t.Fatalf("pixel %d P2=%v; want within [90, 110)", p, first.P2[p])
		}
	}
}
