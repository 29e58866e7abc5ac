package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	aclgad "github.com/next-exp/aclgad_go/pkg"
	"gonum.org/v1/gonum/stat"
)

var logger Logger

var CLI struct {
	Config         string `name:"config" required:"" type:"existingfile" help:"Configuration file path"`
	MinRadius      int    `name:"min-radius" default:"1" help:"Smallest radius to scan"`
	MaxRadius      int    `name:"max-radius" default:"6" help:"Largest radius to scan, primaries are drawn where it fits"`
	MaxCompression int    `name:"max-compression" default:"9" help:"Highest deflate level to write"`
	Repeat         int    `name:"repeat" default:"3" help:"Writes per compression level"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("scanRadius"),
		kong.Description("Reconstruct the same sample with fixed radii and measure fit quality and output size"),
	)

	configuration, err := LoadConfiguration(CLI.Config)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	configuration.AutoRadius = false
	configuration.NeighborhoodRadius = CLI.MaxRadius
	if err := configuration.Validate(); err != nil {
		logger.Error(fmt.Errorf("invalid configuration: %w", err).Error())
		os.Exit(1)
	}
	aclgad.SetConfiguration(configuration)
	aclgad.SetLogger(logger)

	events, err := loadEvents(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Events loaded: %d", len(events)), "main")

	start := time.Now()
	evaluator := aclgad.NewGaussFitEvaluator(configuration.ChargeErrorFraction)
	for radius := CLI.MinRadius; radius <= CLI.MaxRadius; radius++ {
		config := configuration
		config.NeighborhoodRadius = radius
		if err := config.Validate(); err != nil {
			logger.Error(fmt.Sprintf("Skipping radius %d: %v", radius, err))
			continue
		}

		processStart := time.Now()
		results := processEvents(config, events)
		processTime := time.Since(processStart)

		qualities := make([]float64, 0, len(results))
		for _, result := range results {
			if result.Status != aclgad.STATUS_NON_PIXEL_HIT {
				continue
			}
			quality, err := evaluator.Evaluate(result.Radius, result.Geometry, result.Charge)
			if err != nil {
				continue
			}
			qualities = append(qualities, quality)
		}
		meanQuality := stat.Mean(qualities, nil)
		logger.Info(fmt.Sprintf("(radius %d) Time: %d ms, fitted %d/%d, mean chi2red %.4f",
			radius, processTime.Milliseconds(), len(qualities), len(results), meanQuality), "scan")

		if !config.WriteData {
			continue
		}
		for compressionLevel := 0; compressionLevel <= CLI.MaxCompression; compressionLevel++ {
			config.CompressionLevel = compressionLevel
			aclgad.SetConfiguration(config)
			for i := 0; i < CLI.Repeat; i++ {
				writeStart := time.Now()
				if err := writeResults(config, results); err != nil {
					logger.Error(err.Error())
					continue
				}
				duration := time.Since(writeStart)
				fileInfo, err := os.Stat(config.FileOut)
				if err != nil {
					logger.Error(fmt.Sprintf("Error getting file info: %v", err))
					continue
				}
				logger.Info(fmt.Sprintf("(radius %d, comp %d) Time: %d ms, size %d bytes",
					radius, compressionLevel, duration.Milliseconds(), fileInfo.Size()), "scan")
			}
		}
	}

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
}
