package jungfrau

import (
	"context"
	"errors"
	"fmt"
)

// Calibrate loads the gain maps and estimates the pedestals from the start
// of the first data file, which is left open and positioned after the
// pedestal frames.
func Calibrate(config Configuration, gainFile string, firstData string) (*CalibrationState, *FrameFile, error) {
	gains, err := LoadGainMaps(gainFile)
	if err != nil {
		return nil, nil, err
	}
	if config.ValidateGains {
		if err := gains.Validate(); err != nil {
			return nil, nil, err
		}
	}

	data, err := OpenFrameFile(firstData)
	if err != nil {
		return nil, nil, err
	}
	pedestals, err := EstimatePedestals(data.FrameReader)
	if err != nil {
		data.Close()
		return nil, nil, err
	}
	state, err := NewCalibrationState(gains, pedestals)
	if err != nil {
		data.Close()
		return nil, nil, err
	}

	if config.CalibrationOut != "" {
		if err := WriteCalibration(config.CalibrationOut, state, config.CompressionLevel); err != nil {
			data.Close()
			return nil, nil, err
		}
	}
	return state, data, nil
}

// CorrectFiles runs the whole correction: pedestals from the first data
// file, then every frame after the warm-up frames of the first file and every
// frame of the following files, numbered continuously. It returns the number
// of frames written.
func CorrectFiles(ctx context.Context, config Configuration, gainFile string, dataFiles []string) (written int, err error) {
	if len(dataFiles) == 0 {
		return 0, &ConfigError{Field: "data files", Err: errors.New("at least one data file is required")}
	}

	state, first, err := Calibrate(config, gainFile, dataFiles[0])
	if err != nil {
		return 0, err
	}
	defer first.Close()

	sink, err := NewSink(config)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	corrector := NewCorrector(state, config.PhotonEnergy, config.OutputEncoding)
	pipeline := NewPipeline(corrector, sink, config)
	if config.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Correcting with %d workers, %d frames in flight", pipeline.Workers, pipeline.MaxInFlight), "run")
	}

	for j, filename := range dataFiles {
		data := first
		skip := config.SkipFrames
		if j > 0 {
			data, err = OpenFrameFile(filename)
			if err != nil {
				return written, err
			}
			skip = 0
		}

		var n int
		n, err = correctFile(ctx, pipeline, data, skip, written)
		written += n
		if j > 0 {
			data.Close()
		}
		if err != nil {
			return written, err
		}
		logger.Info(fmt.Sprintf("%s -> %d frames corrected", filename, n), "run")
	}
	return written, nil
}

func correctFile(ctx context.Context, pipeline *Pipeline, data *FrameFile, skip int, offset int) (int, error) {
	if err := data.Skip(skip); err != nil {
		return 0, err
	}
	remaining := data.Frames - data.FramesRead
	if remaining <= 0 {
		return 0, nil
	}
	return pipeline.ProcessStream(ctx, data.FrameReader, remaining, offset)
}
