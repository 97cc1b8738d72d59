package jungfrau

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	Verbosity        int            `json:"verbosity"`
	PhotonEnergy     float64        `json:"photon_energy"`
	OutputEncoding   OutputEncoding `json:"output_encoding"`
	OutputFormat     OutputFormat   `json:"output_format"`
	OutputDir        string         `json:"output_dir"`
	FileOut          string         `json:"file_out"`
	CompressionLevel int            `json:"compression_level"`
	SkipFrames       int            `json:"skip_frames"`
	NumWorkers       int            `json:"num_workers"`
	MaxInFlight      int            `json:"max_in_flight"`
	ValidateGains    bool           `json:"validate_gains"`
	CalibrationOut   string         `json:"calibration_out"`
	PreviewEvery     int            `json:"preview_every"`
	UseDB            bool           `json:"use_db"`
	Host             string         `json:"host"`
	User             string         `json:"user"`
	Passwd           string         `json:"pass"`
	DBName           string         `json:"dbname"`
	Detector         string         `json:"detector"`
	Module           string         `json:"module"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Verbosity:        0,
		PhotonEnergy:     0,
		OutputEncoding:   OutputEncoding{Name: "counts", Code: EncodeCounts},
		OutputFormat:     OutputFormat{Name: "raw", Code: FormatRaw},
		OutputDir:        ".",
		FileOut:          "corrected.h5",
		CompressionLevel: 4,
		SkipFrames:       2000,
		NumWorkers:       0,
		MaxInFlight:      64,
		ValidateGains:    false,
		PreviewEvery:     0,
		UseDB:            false,
		Host:             "localhost",
		User:             "jungfrau",
		Passwd:           "readonly",
		DBName:           "calibration",
	}
}

// LoadConfiguration reads a JSON configuration on top of the defaults.
// An empty filename returns the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, &ConfigError{Field: filename, Err: err}
	}
	return config, config.Check()
}

// Check rejects values no run can work with.
func (c Configuration) Check() error {
	switch {
	case c.PhotonEnergy < 0:
		return &ConfigError{Field: "photon_energy", Err: fmt.Errorf("must not be negative, got %g", c.PhotonEnergy)}
	case c.SkipFrames < 0:
		return &ConfigError{Field: "skip_frames", Err: fmt.Errorf("must not be negative, got %d", c.SkipFrames)}
	case c.NumWorkers < 0:
		return &ConfigError{Field: "num_workers", Err: fmt.Errorf("must not be negative, got %d", c.NumWorkers)}
	case c.CompressionLevel < 0 || c.CompressionLevel > 9:
		return &ConfigError{Field: "compression_level", Err: fmt.Errorf("must be within 0-9, got %d", c.CompressionLevel)}
	case c.PreviewEvery < 0:
		return &ConfigError{Field: "preview_every", Err: fmt.Errorf("must not be negative, got %d", c.PreviewEvery)}
	case c.UseDB && (c.Detector == "" || c.Module == ""):
		return &ConfigError{Field: "use_db", Err: fmt.Errorf("detector and module are required")}
	}
	return nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Photon energy: %g keV", config.PhotonEnergy), "config")
	logger.Info(fmt.Sprintf("Output encoding: %s", config.OutputEncoding), "config")
	logger.Info(fmt.Sprintf("Output format: %s", config.OutputFormat), "config")
	logger.Info(fmt.Sprintf("Output dir: %s", config.OutputDir), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Skip frames: %d", config.SkipFrames), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Max frames in flight: %d", config.MaxInFlight), "config")
	logger.Info(fmt.Sprintf("Validate gains: %t", config.ValidateGains), "config")
	logger.Info(fmt.Sprintf("Calibration out: %s", config.CalibrationOut), "config")
	logger.Info(fmt.Sprintf("Preview every: %d", config.PreviewEvery), "config")
	logger.Info(fmt.Sprintf("Use DB: %t", config.UseDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Detector: %s", config.Detector), "config")
	logger.Info(fmt.Sprintf("Module: %s", config.Module), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
