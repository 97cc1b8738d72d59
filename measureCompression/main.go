package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	jungfrau "github.com/jmbenlloch/jungfrau_go/pkg"
	"github.com/maruel/interrupt"
)

var logger = jungfrau.NewSlogLogger(os.Stdout, os.Stderr)

// memorySink keeps the corrected frames so every compression level writes the
// same data.
type memorySink struct {
	frames  [][]uint32
	indices []int
}

func (s *memorySink) WriteFrame(index int, frame []uint32) error {
	s.frames = append(s.frames, append([]uint32(nil), frame...))
	s.indices = append(s.indices, index)
	return nil
}

func (s *memorySink) Close() error {
	return nil
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	nFrames := flag.Int("frames", 100, "Number of frames to compress")
	repeats := flag.Int("repeat", 3, "Writes per compression level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config cfg.json] [-frames n] gain.dat data\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	configuration, err := jungfrau.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	jungfrau.SetConfiguration(configuration)
	jungfrau.SetLogger(logger)
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt.HandleCtrlC()
	go func() {
		<-interrupt.Channel
		cancel()
	}()

	start := time.Now()
	sink, err := correctFrames(ctx, configuration, flag.Arg(0), flag.Arg(1), *nFrames)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	fmt.Println("Total frames corrected: ", len(sink.frames))

	for compressionLevel := 0; compressionLevel < 10; compressionLevel++ {
		for i := 0; i < *repeats && !interrupt.IsSet(); i++ {
			duration, size, err := writeFrames(configuration.FileOut, compressionLevel, sink)
			if err != nil {
				logger.Error(fmt.Sprintf("Error writing level %d: %v", compressionLevel, err))
				continue
			}
			fmt.Printf("(hdf5, comp %d) Time: %d ms, size %d bytes\n", compressionLevel, duration.Milliseconds(), size)
		}
	}

	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

func correctFrames(ctx context.Context, configuration jungfrau.Configuration, gainFile string, dataFile string, nFrames int) (*memorySink, error) {
	state, data, err := jungfrau.Calibrate(configuration, gainFile, dataFile)
	if err != nil {
		return nil, err
	}
	defer data.Close()

	if err := data.Skip(configuration.SkipFrames); err != nil {
		return nil, err
	}
	if remaining := data.Frames - data.FramesRead; remaining < nFrames {
		nFrames = remaining
	}

	sink := &memorySink{}
	corrector := jungfrau.NewCorrector(state, configuration.PhotonEnergy, configuration.OutputEncoding)
	pipeline := jungfrau.NewPipeline(corrector, sink, configuration)
	pipeline.PreviewEvery = 0
	if _, err := pipeline.ProcessStream(ctx, data.FrameReader, nFrames, 0); err != nil {
		return nil, err
	}
	return sink, nil
}

func writeFrames(filename string, compressionLevel int, sink *memorySink) (time.Duration, int64, error) {
	start := time.Now()
	writer, err := jungfrau.NewWriter(filename, compressionLevel)
	if err != nil {
		return 0, 0, err
	}
	for i, frame := range sink.frames {
		if err := writer.WriteFrame(sink.indices[i], frame); err != nil {
			writer.Close()
			return 0, 0, err
		}
	}
	if err := writer.Close(); err != nil {
		return 0, 0, err
	}
	duration := time.Since(start)

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("Error getting file info: %w", err)
	}
	return duration, fileInfo.Size(), nil
}
