package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	aclgad "github.com/next-exp/aclgad_go/pkg"
)

func worker(id int, config aclgad.Configuration, jobs <-chan aclgad.DepositEvent,
	results chan<- aclgad.EventResult, barrier *aclgad.RunBarrier) {
	defer barrier.Done()

	processor := aclgad.NewEventProcessor(config, nil)
	for event := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d processing event %d", id, event.EventID)
			logger.Info(message, "worker")
		}
		results <- processEvent(id, processor, event)
	}
}

func processEvent(id int, processor *aclgad.EventProcessor, event aclgad.DepositEvent) (result aclgad.EventResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, event.EventID, r)
			logger.Error(errMessage.Error())
			result = aclgad.EventResult{
				EventID:       event.EventID,
				InitialPos:    event.InitialPos,
				InitialEnergy: event.InitialEnergy,
				Error:         true,
			}
		}
	}()
	return processor.Process(event)
}

func sendEventsToWorkers(source EventSource, jobs chan<- aclgad.DepositEvent) {
	defer close(jobs)
	for {
		event, err := source.getNextEvent()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			return
		}
		jobs <- event
	}
}

// processWorkerResults is the only consumer of results: it owns the writer
// and the run summary.
func processWorkerResults(results <-chan aclgad.EventResult, writer *aclgad.Writer, summary *aclgad.RunSummary) {
	evtsProcessed := 0
	var totalTime time.Duration
	if VerbosityLevel > 0 {
		logger.Info("Waiting for events", "writer")
	}
	for event := range results {
		summary.Fill(&event)
		evtsProcessed++

		if event.Error && DiscardErrors {
			message := fmt.Sprintf("discarding event %d", event.EventID)
			logger.Error(message)
			continue
		}
		if writer == nil {
			continue
		}

		start := time.Now()
		if err := writer.WriteEvent(&event); err != nil {
			logger.Error(err.Error())
		}
		totalTime += time.Since(start)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Events processed: %d. Total time writing: %d ms", evtsProcessed, totalTime.Milliseconds())
		logger.Info(message, "writer")
	}
}
