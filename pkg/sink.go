package jungfrau

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// FrameSink receives display frames in increasing index order.
type FrameSink interface {
	WriteFrame(index int, frame []uint32) error
	Close() error
}

// FrameFilename is the name of the raw dump of a frame.
func FrameFilename(index int) string {
	return fmt.Sprintf("frame_%05d.raw", index)
}

// RawFileSink writes every frame as a little endian uint32 dump in its own file.
type RawFileSink struct {
	Dir     string
	Written int
	buffer  []byte
}

func NewRawFileSink(dir string) (*RawFileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "creating output directory", Filename: dir, Err: err}
	}
	return &RawFileSink{Dir: dir, buffer: make([]byte, 4*DisplayPixels)}, nil
}

func (s *RawFileSink) WriteFrame(index int, frame []uint32) error {
	if len(frame) != DisplayPixels {
		return fmt.Errorf("%w: display frame has %d pixels, want %d", ErrBufferSize, len(frame), DisplayPixels)
	}
	for i, value := range frame {
		binary.LittleEndian.PutUint32(s.buffer[4*i:], value)
	}

	filename := filepath.Join(s.Dir, FrameFilename(index))
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(s.buffer); err != nil {
		file.Close()
		return &IOError{Op: "writing frame", Filename: filename, Err: err}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return &IOError{Op: "writing frame", Filename: filename, Err: err}
	}
	if err := file.Close(); err != nil {
		return &IOError{Op: "closing frame", Filename: filename, Err: err}
	}
	s.Written++
	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Wrote %s", filename), "sink")
	}
	return nil
}

func (s *RawFileSink) Close() error {
	return nil
}

// ReadRawFrame loads a frame written by RawFileSink.
func ReadRawFrame(filename string) ([]uint32, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	if len(data) != 4*DisplayPixels {
		return nil, &IOError{Op: "reading frame", Filename: filename,
			Err: fmt.Errorf("%w: %d bytes, want %d", ErrBufferSize, len(data), 4*DisplayPixels)}
	}
	frame := make([]uint32, DisplayPixels)
	for i := range frame {
		frame[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return frame, nil
}

// NewSink builds the sink selected by the configuration.
func NewSink(config Configuration) (FrameSink, error) {
	switch config.OutputFormat.Code {
	case FormatHDF5:
		return NewWriter(config.FileOut, config.CompressionLevel)
	case FormatRaw:
		return NewRawFileSink(config.OutputDir)
	default:
		return nil, &ConfigError{Field: "output_format", Err: fmt.Errorf("unknown format %v", config.OutputFormat)}
	}
}
