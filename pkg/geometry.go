package jungfrau

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Sensor layout of a single module
const (
	NY          = 512
	NX          = 1024
	NPixels     = NY * NX
	HeaderSize  = 48
	RawFrameLen = HeaderSize + 2*NPixels
)

// Display layout, with the ASIC gaps inserted
const (
	DisplayRows    = 514
	DisplayCols    = 1030
	DisplayPixels  = DisplayRows * DisplayCols
	AsicSize       = 256
	AsicInterior   = AsicSize - 2
	AsicGap        = 2
	AsicsPerRow    = NX / AsicSize
	AsicsPerColumn = NY / AsicSize
)

// Sentinel marks a pixel without valid data: masked pixels and display gaps.
// It can not be told apart from a corrected value of 0xFFFFFFFF.
const Sentinel uint32 = 0xFFFFFFFF

const (
	ModeMask uint16 = 0xC000
	AdcMask  uint16 = 0x3FFF
)

type GainMode int

const (
	G0 GainMode = 0
	G1 GainMode = 1
	G2 GainMode = 3
)

func (g GainMode) String() string {
	switch g {
	case G0:
		return "G0"
	case G1:
		return "G1"
	case G2:
		return "G2"
	default:
		return fmt.Sprintf("mode%d", int(g))
	}
}

// DecodeSample splits a raw word into its gain mode bits and ADC value.
func DecodeSample(sample uint16) (GainMode, uint16) {
	return GainMode(sample >> 14), sample & AdcMask
}

type Number interface {
	constraints.Integer | constraints.Float
}

// Grid is a row-major 2D view over a flat slice.
type Grid[T Number] struct {
	Rows int
	Cols int
	Data []T
}

func NewGrid[T Number](rows, cols int, data []T) (Grid[T], error) {
	if len(data) != rows*cols {
		return Grid[T]{}, fmt.Errorf("%w: have %d elements, want %dx%d", ErrBufferSize, len(data), rows, cols)
	}
	return Grid[T]{Rows: rows, Cols: cols, Data: data}, nil
}

func (g Grid[T]) inside(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

func (g Grid[T]) At(row, col int) T {
	if !g.inside(row, col) {
		panic(fmt.Sprintf("grid index (%d, %d) out of range %dx%d", row, col, g.Rows, g.Cols))
	}
	return g.Data[row*g.Cols+col]
}

func (g Grid[T]) Set(row, col int, value T) {
	if !g.inside(row, col) {
		panic(fmt.Sprintf("grid index (%d, %d) out of range %dx%d", row, col, g.Rows, g.Cols))
	}
	g.Data[row*g.Cols+col] = value
}

// Row returns the cols [col, col+width) of a row, sharing storage with the grid.
func (g Grid[T]) Row(row, col, width int) []T {
	if !g.inside(row, col) || width < 0 || col+width > g.Cols {
		panic(fmt.Sprintf("grid row slice (%d, %d)+%d out of range %dx%d", row, col, width, g.Rows, g.Cols))
	}
	start := row*g.Cols + col
	return g.Data[start : start+width]
}

func (g Grid[T]) Fill(value T) {
	for i := range g.Data {
		g.Data[i] = value
	}
}

// Rect is a rectangle of Height rows and Width columns starting at (Row, Col).
type Rect struct {
	Row, Col      int
	Height, Width int
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d]", r.Row, r.Row+r.Height, r.Col, r.Col+r.Width)
}

func (g Grid[T]) contains(r Rect) bool {
	return r.Height >= 0 && r.Width >= 0 &&
		r.Row >= 0 && r.Col >= 0 &&
		r.Row+r.Height <= g.Rows && r.Col+r.Width <= g.Cols
}

// CopyRect copies the src rectangle of from into to with its top left corner at (row, col).
func CopyRect[T Number](to Grid[T], row, col int, from Grid[T], src Rect) error {
	dst := Rect{Row: row, Col: col, Height: src.Height, Width: src.Width}
	if !from.contains(src) {
		return fmt.Errorf("source rectangle %v outside %dx%d grid", src, from.Rows, from.Cols)
	}
	if !to.contains(dst) {
		return fmt.Errorf("destination rectangle %v outside %dx%d grid", dst, to.Rows, to.Cols)
	}
	for i := 0; i < src.Height; i++ {
		copy(to.Row(dst.Row+i, dst.Col, dst.Width), from.Row(src.Row+i, src.Col, src.Width))
	}
	return nil
}
