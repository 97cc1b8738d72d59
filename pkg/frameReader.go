package jungfrau

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// FrameReader reads consecutive raw frames: a 48 byte header, ignored,
// followed by NY*NX little endian words.
type FrameReader struct {
	Filename   string
	FramesRead int
	reader     io.Reader
	buffer     []byte
}

func NewFrameReader(r io.Reader, filename string) *FrameReader {
	return &FrameReader{
		Filename: filename,
		reader:   r,
		buffer:   make([]byte, RawFrameLen),
	}
}

// ReadFrame fills pixels with the next frame. It returns io.EOF when the
// stream ends on a frame boundary and an IOError wrapping ErrTruncatedStream
// when it ends inside a frame.
func (f *FrameReader) ReadFrame(pixels []uint16) error {
	if len(pixels) != NPixels {
		return fmt.Errorf("%w: frame buffer has %d pixels, want %d", ErrBufferSize, len(pixels), NPixels)
	}
	n, err := io.ReadFull(f.reader, f.buffer)
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: frame %d has %d of %d bytes", ErrTruncatedStream, f.FramesRead, n, RawFrameLen)
		}
		return &IOError{Op: "reading frame", Filename: f.Filename, Err: err}
	}
	payload := f.buffer[HeaderSize:]
	for p := range pixels {
		pixels[p] = binary.LittleEndian.Uint16(payload[2*p:])
	}
	f.FramesRead++
	return nil
}

// Skip discards n frames.
func (f *FrameReader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	size := int64(n) * RawFrameLen
	var skipped int64
	var err error
	if seeker, ok := f.reader.(io.Seeker); ok {
		skipped, err = skipBySeek(seeker, size)
	} else {
		skipped, err = io.CopyN(io.Discard, f.reader, size)
	}
	f.FramesRead += int(skipped / RawFrameLen)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: skipped %d of %d frames", ErrTruncatedStream, skipped/RawFrameLen, n)
		}
		return &IOError{Op: "skipping frames", Filename: f.Filename, Err: err}
	}
	return nil
}

func skipBySeek(seeker io.Seeker, size int64) (int64, error) {
	current, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if end-current < size {
		_, err = seeker.Seek(end, io.SeekStart)
		if err != nil {
			return 0, err
		}
		return end - current, io.EOF
	}
	_, err = seeker.Seek(current+size, io.SeekStart)
	if err != nil {
		return 0, err
	}
	return size, nil
}

// FrameFile is a FrameReader over an open data file.
type FrameFile struct {
	*FrameReader
	File   *os.File
	Frames int
}

// OpenFrameFile opens a data file and counts its complete frames from its size.
func OpenFrameFile(filename string) (*FrameFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "stat", Filename: filename, Err: err}
	}
	frames, trailing := CountFrames(info.Size())
	if trailing != 0 {
		logger.Info(fmt.Sprintf("%s has %d trailing bytes after %d frames, ignoring them", filename, trailing, frames), "frameReader")
	}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("%s -> %d frames", filename, frames), "frameReader")
	}
	// Frames are read whole, so the file is used unbuffered and Skip can seek.
	return &FrameFile{
		FrameReader: NewFrameReader(file, filename),
		File:        file,
		Frames:      frames,
	}, nil
}

func (f *FrameFile) Close() error {
	return f.File.Close()
}

// CountFrames returns the number of complete frames in size bytes and the
// number of bytes left over.
func CountFrames(size int64) (int, int64) {
	return int(size / RawFrameLen), size % RawFrameLen
}
