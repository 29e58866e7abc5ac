package aclgad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// DepositHeader precedes the steps of every event in a deposit file.
type DepositHeader struct {
	EventID uint32
	NSteps  uint32
	InitX   float64
	InitY   float64
	InitZ   float64
	InitE   float64 // MeV
}

type stepRecord struct {
	Edep float64
	X    float64
	Y    float64
	Z    float64
}

// Steps are bounded to keep a corrupted header from allocating the world.
const maxStepsPerEvent = 1 << 20

// ReadEventFromFile reads the next event. It returns io.EOF at a clean end of
// file and io.ErrUnexpectedEOF on a truncated event.
func ReadEventFromFile(r io.Reader) (DepositEvent, error) {
	var header DepositHeader
	headerBinary := make([]byte, binary.Size(header))
	if _, err := io.ReadFull(r, headerBinary); err != nil {
		return DepositEvent{}, err
	}
	headerReader := bytes.NewReader(headerBinary)
	if err := binary.Read(headerReader, binary.LittleEndian, &header); err != nil {
		return DepositEvent{}, err
	}
	if header.NSteps > maxStepsPerEvent {
		return DepositEvent{}, fmt.Errorf("event %d declares %d steps", header.EventID, header.NSteps)
	}

	payload := make([]byte, int(header.NSteps)*binary.Size(stepRecord{}))
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return DepositEvent{}, fmt.Errorf("reading steps of event %d: %w", header.EventID, err)
	}
	records := make([]stepRecord, header.NSteps)
	if err := binary.Read(bytes.NewReader(payload), binary.LittleEndian, records); err != nil {
		return DepositEvent{}, err
	}

	event := DepositEvent{
		EventID:       header.EventID,
		InitialPos:    Vec3{X: header.InitX, Y: header.InitY, Z: header.InitZ},
		InitialEnergy: header.InitE,
		Steps:         make([]Step, len(records)),
	}
	for k, rec := range records {
		event.Steps[k] = Step{Edep: rec.Edep, Position: Vec3{X: rec.X, Y: rec.Y, Z: rec.Z}}
	}
	return event, nil
}

func WriteEventToFile(w io.Writer, event DepositEvent) error {
	header := DepositHeader{
		EventID: event.EventID,
		NSteps:  uint32(len(event.Steps)),
		InitX:   event.InitialPos.X,
		InitY:   event.InitialPos.Y,
		InitZ:   event.InitialPos.Z,
		InitE:   event.InitialEnergy,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header of event %d: %w", event.EventID, err)
	}
	records := make([]stepRecord, len(event.Steps))
	for k, step := range event.Steps {
		records[k] = stepRecord{Edep: step.Edep, X: step.Position.X, Y: step.Position.Y, Z: step.Position.Z}
	}
	if err := binary.Write(w, binary.LittleEndian, records); err != nil {
		return fmt.Errorf("writing steps of event %d: %w", event.EventID, err)
	}
	return nil
}

// SkipEvent jumps over the next event, returning its header. Used to count
// events before processing.
func SkipEvent(r io.ReadSeeker) (DepositHeader, error) {
	var header DepositHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, err
	}
	payloadSize := int64(header.NSteps) * int64(binary.Size(stepRecord{}))
	if _, err := r.Seek(payloadSize, io.SeekCurrent); err != nil {
		return header, err
	}
	return header, nil
}
