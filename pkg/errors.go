package aclgad

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeEdep       = errors.New("negative energy deposit")
	ErrInsufficientPoints = errors.New("not enough valid pixels to fit")
	ErrFitDiverged        = errors.New("fit did not converge to a peaked profile")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ErrMarginTooLarge is raised before any event is processed when a full
// neighborhood of the requested radius cannot fit inside the detector.
type ErrMarginTooLarge struct {
	Radius  int
	Margin  float64
	DetSize float64
}

func (e *ErrMarginTooLarge) Error() string {
	return fmt.Sprintf("neighborhood radius %d larger than detector allows: margin %.4f mm >= half detector %.4f mm",
		e.Radius, e.Margin, e.DetSize/2)
}
