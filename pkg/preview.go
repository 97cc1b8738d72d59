package jungfrau

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"
)

// Palette endpoints of the false colour previews, blended in HCL
var (
	previewLow  = colorful.Color{R: 0.05, G: 0.03, B: 0.35}
	previewHigh = colorful.Color{R: 1.0, G: 0.92, B: 0.35}
	previewGap  = color.NRGBA{A: 255}
)

// PreviewFilename is the name of the preview of a frame.
func PreviewFilename(index int) string {
	return fmt.Sprintf("frame_%05d.tiff", index)
}

// WritePreviewToFile writes a false colour TIFF of a display frame.
func WritePreviewToFile(dir string, index int, frame []uint32, encoding OutputEncoding) error {
	filename := filepath.Join(dir, PreviewFilename(index))
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WritePreview(writer, frame, encoding); err != nil {
		return &IOError{Op: "writing preview", Filename: filename, Err: err}
	}
	if err := writer.Flush(); err != nil {
		return &IOError{Op: "writing preview", Filename: filename, Err: err}
	}
	return nil
}

// WritePreview scales the valid pixels of a display frame between their
// minimum and maximum. Sentinel pixels are black.
func WritePreview(writer io.Writer, frame []uint32, encoding OutputEncoding) error {
	grid, err := NewGrid(DisplayRows, DisplayCols, frame)
	if err != nil {
		return err
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, word := range frame {
		value, ok := DecodeValue(word, encoding)
		if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		min = math.Min(min, value)
		max = math.Max(max, value)
	}
	scale := 0.0
	if max > min {
		scale = 1 / (max - min)
	}

	img := image.NewNRGBA(image.Rect(0, 0, DisplayCols, DisplayRows))
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			value, ok := DecodeValue(grid.At(y, x), encoding)
			if !ok || math.IsNaN(value) {
				img.SetNRGBA(x, y, previewGap)
				continue
			}
			t := (value - min) * scale
			if t < 0 || math.IsNaN(t) {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			r, g, b := previewLow.BlendHcl(previewHigh, t).Clamped().RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}
