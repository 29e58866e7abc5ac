package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	aclgad "github.com/next-exp/aclgad_go/pkg"
)

var configuration aclgad.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

var CLI struct {
	Config    string `name:"config" required:"" type:"existingfile" help:"Configuration file path"`
	FileIn    string `name:"file-in" help:"Deposit file, overrides file_in"`
	FileOut   string `name:"file-out" help:"Output HDF5 file, overrides file_out"`
	Workers   int    `name:"workers" help:"Number of workers, overrides num_workers"`
	Verbosity int    `name:"verbosity" short:"v" type:"counter" help:"Increase verbosity"`
}

func init() {
	logger = NewLogger(os.Stdout, os.Stderr)
}

func main() {
	kong.Parse(&CLI,
		kong.Name("reco"),
		kong.Description("AC-LGAD hit reconstruction"),
	)
	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func applyFlags(config aclgad.Configuration) aclgad.Configuration {
	if CLI.FileIn != "" {
		config.FileIn = CLI.FileIn
	}
	if CLI.FileOut != "" {
		config.FileOut = CLI.FileOut
	}
	if CLI.Workers > 0 {
		config.NumWorkers = CLI.Workers
	}
	if CLI.Verbosity > config.Verbosity {
		config.Verbosity = CLI.Verbosity
	}
	return config
}

func run() error {
	var err error
	configuration, err = LoadConfiguration(CLI.Config)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	configuration = applyFlags(configuration)
	aclgad.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", CLI.Config)
		logger.Info(message, "main")
	}

	if !configuration.NoDB {
		dbConn, err := aclgad.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		configuration, err = aclgad.LoadRunConditions(dbConn, configuration, configuration.RunNumber)
		dbConn.Close()
		if err != nil {
			return err
		}
	}

	if err := configuration.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	aclgad.SetConfiguration(configuration)
	if VerbosityLevel > 0 {
		printConfiguration(configuration, logger)
	}

	source, evtsToRead, closeSource, err := openSource(configuration)
	if err != nil {
		return err
	}
	defer closeSource()
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events to process: %d", evtsToRead)
		logger.Info(message, "main")
	}

	var writer *aclgad.Writer
	if configuration.WriteData {
		writer, err = aclgad.NewWriter(configuration.FileOut, configuration)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	summary := aclgad.NewRunSummary(configuration.Detector(), configuration.Neighborhood())
	barrier := aclgad.NewRunBarrier(configuration.NumWorkers)
	jobs := make(chan aclgad.DepositEvent, 100)
	results := make(chan aclgad.EventResult, 100)

	for w := 1; w <= configuration.NumWorkers; w++ {
		go worker(w, configuration, jobs, results, barrier)
	}
	go sendEventsToWorkers(source, jobs)
	go func() {
		barrier.Wait()
		close(results)
	}()

	processWorkerResults(results, writer, summary)

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error(err.Error())
		}
	}
	summary.Log()

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
	return nil
}

// openSource returns the deposit file reader, or the toy generator when no
// input file is configured.
func openSource(config aclgad.Configuration) (EventSource, int, func(), error) {
	if config.FileIn == "" {
		generator, err := aclgad.NewPrimaryGenerator(config, uint64(config.RunNumber))
		if err != nil {
			return nil, 0, nil, err
		}
		total := numberOfEventsToProcess(config.GenerateEvents, 0, config.MaxEvents)
		return &GeneratorSource{Generator: generator, Total: total}, total, func() {}, nil
	}

	file, err := os.Open(config.FileIn)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("Error opening file: %w", err)
	}
	evtCount, err := countEvents(file)
	if err != nil {
		file.Close()
		return nil, 0, nil, err
	}
	evtsToRead := numberOfEventsToProcess(evtCount, config.Skip, config.MaxEvents)
	reader := NewFileReader(file, config.Skip, config.MaxEvents)
	return reader, evtsToRead, func() { file.Close() }, nil
}
