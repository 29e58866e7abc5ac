package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	aclgad "github.com/next-exp/aclgad_go/pkg"
)

// EventSource hands out deposit events until io.EOF.
type EventSource interface {
	getNextEvent() (aclgad.DepositEvent, error)
}

type FileReader struct {
	File      *os.File
	EvtCount  int
	Skip      int
	MaxEvents int
}

func NewFileReader(file *os.File, skip int, maxEvents int) *FileReader {
	return &FileReader{File: file, EvtCount: -1, Skip: skip, MaxEvents: maxEvents}
}

func (f *FileReader) getNextEvent() (aclgad.DepositEvent, error) {
	for {
		event, err := aclgad.ReadEventFromFile(f.File)
		if err != nil {
			return event, err
		}
		f.EvtCount++
		if f.EvtCount >= f.Skip+f.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return aclgad.DepositEvent{}, io.EOF
		}
		if f.EvtCount < f.Skip {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, event.EventID)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, event.EventID)
			logger.Info(message, "fileReader")
		}
		return event, nil
	}
}

// countEvents walks the headers of the file and rewinds it.
func countEvents(file *os.File) (int, error) {
	evtCount := 0
	for {
		header, err := aclgad.SkipEvent(file)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return evtCount, fmt.Errorf("error reading header counting events: %w", err)
		}
		if VerbosityLevel > 2 {
			message := fmt.Sprintf("Evt id: %d. Steps %d", header.EventID, header.NSteps)
			logger.Info(message, "evtCounter")
		}
		evtCount++
	}
	// Go back to the beginning of the file
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return evtCount, err
	}
	return evtCount, nil
}

// GeneratorSource produces toy events when no deposit file is given.
type GeneratorSource struct {
	Generator *aclgad.PrimaryGenerator
	Next      uint32
	Total     int
}

func (g *GeneratorSource) getNextEvent() (aclgad.DepositEvent, error) {
	if int(g.Next) >= g.Total {
		return aclgad.DepositEvent{}, io.EOF
	}
	event := g.Generator.Event(g.Next)
	g.Next++
	return event, nil
}

func numberOfEventsToProcess(fileEvtCount int, skipEvts int, maxEvtCount int) int {
	evtsToRead := fileEvtCount - skipEvts
	if evtsToRead > maxEvtCount {
		evtsToRead = maxEvtCount
	}
	if evtsToRead < 0 {
		evtsToRead = 0
	}
	return evtsToRead
}
