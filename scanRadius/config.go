package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	aclgad "github.com/next-exp/aclgad_go/pkg"
)

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

// loadEvents keeps the whole sample in memory so every scan point sees the
// same events.
func loadEvents(config aclgad.Configuration) ([]aclgad.DepositEvent, error) {
	if config.FileIn == "" {
		generator, err := aclgad.NewPrimaryGenerator(config, uint64(config.RunNumber))
		if err != nil {
			return nil, err
		}
		events := make([]aclgad.DepositEvent, min(config.GenerateEvents, config.MaxEvents))
		for i := range events {
			events[i] = generator.Event(uint32(i))
		}
		return events, nil
	}

	file, err := os.Open(config.FileIn)
	if err != nil {
		return nil, fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	events := make([]aclgad.DepositEvent, 0)
	for evtCount := 0; len(events) < config.MaxEvents; evtCount++ {
		event, err := aclgad.ReadEventFromFile(file)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return events, fmt.Errorf("error reading event: %w", err)
		}
		if evtCount < config.Skip {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
