package jungfrau

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func encodeGains(t *testing.T, gains GainMaps) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, table := range [][]float64{gains.G0, gains.G1, gains.G2} {
		if err := binary.Write(&buf, binary.LittleEndian, table); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func TestReadGainMaps(t *testing.T) {
	gains := uniformGains(40, -1.5, -0.1)
	gains.G0[NPixels-1] = 42
	read, err := ReadGainMaps(bytes.NewReader(encodeGains(t, gains)))
	if err != nil {
		t.Fatal(err)
	}
	if read.G0[0] != 40 || read.G0[NPixels-1] != 42 || read.G1[10] != -1.5 || read.G2[NPixels-1] != -0.1 {
		t.Errorf("gains=%v %v %v %v; want 40 42 -1.5 -0.1", read.G0[0], read.G0[NPixels-1], read.G1[10], read.G2[NPixels-1])
	}
	if got := read.ForMode(GainMode(2))[0]; got != 40 {
		t.Errorf("ForMode(mode2)=%v; want the G0 table", got)
	}
}

func TestReadGainMapsTruncated(t *testing.T) {
	data := encodeGains(t, uniformGains(1, 1, 1))
	_, err := ReadGainMaps(bytes.NewReader(data[:len(data)-8]))
	var calErr *CalibrationError
	if !errors.As(err, &calErr) {
		t.Fatalf("err=%v; want CalibrationError", err)
	}
	if !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("err=%v; want it to wrap ErrTruncatedStream", err)
	}
}

func TestLoadGainMaps(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "gain.dat")
	if err := os.WriteFile(filename, encodeGains(t, uniformGains(40, 1, 0.1)), 0644); err != nil {
		t.Fatal(err)
	}
	gains, err := LoadGainMaps(filename)
	if err != nil {
		t.Fatal(err)
	}
	if gains.G1[123] != 1 {
		t.Errorf("G1[123]=%v; want 1", gains.G1[123])
	}

	_, err = LoadGainMaps(filepath.Join(dir, "missing.dat"))
	var openErr *ErrOpenFile
	if !errors.As(err, &openErr) {
		t.Errorf("err=%v; want ErrOpenFile", err)
	}

	short := filepath.Join(dir, "short.dat")
	if err := os.WriteFile(short, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadGainMaps(short)
	var calErr *CalibrationError
	if !errors.As(err, &calErr) || calErr.Filename != short {
		t.Errorf("err=%v; want CalibrationError naming %s", err, short)
	}
}

func TestValidateGains(t *testing.T) {
	if err := uniformGains(40, 1, 0.1).Validate(); err != nil {
		t.Errorf("Validate()=%v; want nil", err)
	}
	for _, bad := range []float64{0, math.NaN(), math.Inf(1)} {
		gains := uniformGains(40, 1, 0.1)
		gains.G2[1000] = bad
		var calErr *CalibrationError
		if err := gains.Validate(); !errors.As(err, &calErr) {
			t.Errorf("gain %v: err=%v; want CalibrationError", bad, err)
		}
	}
}
