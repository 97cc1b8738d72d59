package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	jungfrau "github.com/jmbenlloch/jungfrau_go/pkg"
	"github.com/maruel/interrupt"
)

var logger = jungfrau.NewSlogLogger(os.Stdout, os.Stderr)

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	gainFile := flag.String("gains", "", "Gain map file, enables the noise statistics")
	maxFrames := flag.Int("max-frames", -1, "Stop after this many frames per file")
	quiet := flag.Bool("quiet", false, "Only print the summary")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config cfg.json] [-gains gain.dat] data0 [data1 ...]\n", os.Args[0])
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

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var stats *jungfrau.PixelStats
	if *gainFile != "" {
		gains, err := jungfrau.LoadGainMaps(*gainFile)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		stats = jungfrau.NewPixelStats(gains)
	}

	interrupt.HandleCtrlC()
	pixels := make([]uint16, jungfrau.NPixels)
	frame := 0
	for _, filename := range flag.Args() {
		n, err := scanFile(filename, pixels, frame, *maxFrames, stats, *quiet)
		frame += n
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		if interrupt.IsSet() {
			break
		}
	}

	if stats == nil {
		return
	}
	summary, err := stats.Summarize()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	printSummary(summary)
}

// scanFile prints the gain census of every frame of a file and returns the
// number of frames read.
func scanFile(filename string, pixels []uint16, first int, maxFrames int, stats *jungfrau.PixelStats, quiet bool) (int, error) {
	data, err := jungfrau.OpenFrameFile(filename)
	if err != nil {
		return 0, err
	}
	defer data.Close()

	if configuration := jungfrau.GetConfiguration(); configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("%s: %d frames", filename, data.Frames), "scanner")
	}

	n := 0
	for ; maxFrames < 0 || n < maxFrames; n++ {
		if interrupt.IsSet() {
			break
		}
		err := data.ReadFrame(pixels)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}

		census := jungfrau.CensusFrame(first+n, pixels)
		if !quiet {
			fmt.Printf("frame %6d: %7d pixels with bit 14, %7d with bit 15, mostly %s\n",
				census.Frame, census.Bit14, census.Bit15, census.Dominant())
		}
		if stats != nil {
			stats.Add(pixels)
		}
	}
	return n, nil
}

func printSummary(summary jungfrau.StatsSummary) {
	row, col := summary.MaxSigmasPixel/jungfrau.NX, summary.MaxSigmasPixel%jungfrau.NX
	fmt.Printf("Frames: %d\n", summary.Frames)
	fmt.Printf("Mean stddev: %.4f\n", summary.MeanStdDev)
	fmt.Printf("Median stddev (sampled): %.4f\n", summary.MedianStdDev)
	fmt.Printf("Largest drop below mean: %.2f sigmas at pixel (%d, %d)\n", summary.MaxSigmas, row, col)
	fmt.Printf("Largest drop below mean: %.4f\n", summary.MaxNegative)
}
