package main

import (
	"encoding/json"
	"fmt"
	"os"

	aclgad "github.com/next-exp/aclgad_go/pkg"
)

// LoadConfiguration reads a JSON file on top of the default configuration.
func LoadConfiguration(filename string) (aclgad.Configuration, error) {
	config := aclgad.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config aclgad.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	if config.FileIn == "" {
		logger.Info(fmt.Sprintf("Generated events: %d", config.GenerateEvents), "config")
		logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
		logger.Info(fmt.Sprintf("Primary energy: %g MeV", config.PrimaryEnergy), "config")
	}
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")

	det := config.Detector()
	logger.Info(fmt.Sprintf("Pixel size: %g mm, spacing: %g mm, corner offset: %g mm",
		det.PixelSize, det.PixelSpacing, det.PixelCornerOffset), "config")
	logger.Info(fmt.Sprintf("Detector size: %g mm, %d pixels per side", det.DetSize, det.NumBlocksPerSide), "config")
	logger.Info(fmt.Sprintf("Neighborhood radius: %d", config.NeighborhoodRadius), "config")
	if config.AutoRadius {
		logger.Info(fmt.Sprintf("Auto radius: [%d, %d], %s is better",
			config.MinAutoRadius, config.MaxAutoRadius, config.QualityDirection), "config")
	}
	logger.Info(fmt.Sprintf("Charge model: %s, D0: %g mm", config.ChargeModel, config.D0), "config")
	logger.Info(fmt.Sprintf("Pixel hit rule: %s", config.PixelHitRule), "config")
}
