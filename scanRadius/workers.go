package main

import (
	"fmt"

	aclgad "github.com/next-exp/aclgad_go/pkg"
)

// processEvents runs every event with the given configuration. Each worker
// fills its own slots of the result slice.
func processEvents(config aclgad.Configuration, events []aclgad.DepositEvent) []aclgad.EventResult {
	results := make([]aclgad.EventResult, len(events))
	jobs := make(chan int, 100)
	barrier := aclgad.NewRunBarrier(config.NumWorkers)

	for w := 1; w <= config.NumWorkers; w++ {
		go worker(w, config, events, results, jobs, barrier)
	}
	for i := range events {
		jobs <- i
	}
	close(jobs)
	barrier.Wait()
	return results
}

func worker(id int, config aclgad.Configuration, events []aclgad.DepositEvent, results []aclgad.EventResult,
	jobs <-chan int, barrier *aclgad.RunBarrier) {
	defer barrier.Done()

	processor := aclgad.NewEventProcessor(config, nil)
	for i := range jobs {
		results[i] = processEvent(id, processor, events[i])
	}
}

func processEvent(id int, processor *aclgad.EventProcessor, event aclgad.DepositEvent) (result aclgad.EventResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, event.EventID, r)
			logger.Error(errMessage.Error())
			result = aclgad.EventResult{EventID: event.EventID, Error: true}
		}
	}()
	return processor.Process(event)
}

// writeResults stores the results with the configured compression level.
func writeResults(config aclgad.Configuration, results []aclgad.EventResult) error {
	writer, err := aclgad.NewWriter(config.FileOut, config)
	if err != nil {
		return err
	}
	for i := range results {
		if results[i].Error && config.Discard {
			continue
		}
		if err := writer.WriteEvent(&results[i]); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}
