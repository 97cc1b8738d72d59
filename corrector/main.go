package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	jungfrau "github.com/jmbenlloch/jungfrau_go/pkg"
	"github.com/maruel/interrupt"
)

var logger = jungfrau.NewSlogLogger(os.Stdout, os.Stderr)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config cfg.json] [-energy keV] gain.dat data0 [data1 ...]\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "       with use_db the gain file comes from the database: %s -config cfg.json data0 [data1 ...]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	energy := flag.Float64("energy", 0, "Photon energy in keV, overrides the configuration")
	flag.Usage = usage
	flag.Parse()

	configuration, err := jungfrau.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "energy" {
			configuration.PhotonEnergy = *energy
		}
	})
	if err := configuration.Check(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	jungfrau.SetConfiguration(configuration)
	jungfrau.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		jungfrau.PrintConfiguration(configuration, logger)
	}

	gainFile, dataFiles, err := inputFiles(configuration, flag.Args())
	if err != nil {
		logger.Error(err.Error())
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt.HandleCtrlC()
	go func() {
		select {
		case <-interrupt.Channel:
			logger.Error("interrupted, stopping after the frames in flight")
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	written, err := jungfrau.CorrectFiles(ctx, configuration, gainFile, dataFiles)
	if err != nil {
		message := fmt.Errorf("correction failed after %d frames: %w", written, err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total frames: %d, total time: %d ms", written, duration.Milliseconds()), "main")
}

// inputFiles splits the positional arguments into the gain file and the data
// files, asking the database for the gain file when use_db is set.
func inputFiles(configuration jungfrau.Configuration, args []string) (string, []string, error) {
	if !configuration.UseDB {
		if len(args) < 2 {
			return "", nil, errors.New("a gain file and at least one data file are required")
		}
		return args[0], args[1:], nil
	}

	if len(args) < 1 {
		return "", nil, errors.New("at least one data file is required")
	}
	dbConn, err := jungfrau.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return "", nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	gainFile, err := jungfrau.GetGainMapFile(dbConn, configuration.Detector, configuration.Module)
	if err != nil {
		return "", nil, err
	}
	return gainFile, args, nil
}
