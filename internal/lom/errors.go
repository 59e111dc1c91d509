package lom

import (
	"errors"
	"fmt"
)

var (
	// ErrSensitivityNotFound indicates the sensitivity file does not exist.
	ErrSensitivityNotFound = errors.New("lom: sensitivity file not found")
	// ErrSensitivityUnreadable indicates the sensitivity file exists but cannot be read.
	ErrSensitivityUnreadable = errors.New("lom: sensitivity file unreadable")
	// ErrSensitivityCorrupt indicates the sensitivity data could not be decoded.
	ErrSensitivityCorrupt = errors.New("lom: sensitivity data is malformed")
	// ErrMissingSensitivity indicates a requested sensitivity kind is not in the store.
	ErrMissingSensitivity = errors.New("lom: sensitivity is missing")
	// ErrInvalidSensitivity indicates a sensitivity or store with inconsistent shapes.
	ErrInvalidSensitivity = errors.New("lom: invalid sensitivity")
	// ErrDofCount indicates a motion sample without the expected degrees of freedom.
	ErrDofCount = errors.New("lom: wrong number of rigid body motions")
	// ErrNotEnoughSamples indicates a statistics window longer than the series.
	ErrNotEnoughSamples = errors.New("lom: not enough samples")
	// ErrMissingColumn indicates a table without the requested column.
	ErrMissingColumn = errors.New("lom: missing table column")
	// ErrUnsupportedTransform indicates a transform the sensitivity kind cannot provide.
	ErrUnsupportedTransform = errors.New("lom: unsupported transform")
)

// SensitivityLoadError reports a failure to read or decode a sensitivity file.
// It matches one of ErrSensitivityNotFound, ErrSensitivityUnreadable or
// ErrSensitivityCorrupt, and the underlying cause.
type SensitivityLoadError struct {
	Path   string
	reason error
	Err    error
}

func (e *SensitivityLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.reason, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.reason, e.Path, e.Err)
}

func (e *SensitivityLoadError) Unwrap() []error {
	return []error{e.reason, e.Err}
}

// NotFound reports whether the file was absent rather than unreadable.
func (e *SensitivityLoadError) NotFound() bool {
	return e.reason == ErrSensitivityNotFound
}

func corrupt(path string, err error) error {
	return &SensitivityLoadError{Path: path, reason: ErrSensitivityCorrupt, Err: err}
}

// SensitivityWriteError reports a failure to persist a sensitivity store.
type SensitivityWriteError struct {
	Path string
	Err  error
}

func (e *SensitivityWriteError) Error() string {
	return fmt.Sprintf("lom: writing sensitivities to %s: %v", e.Path, e.Err)
}

func (e *SensitivityWriteError) Unwrap() error { return e.Err }

// MissingSensitivityError is the panic value of Store.Get for an absent kind.
type MissingSensitivityError struct {
	Kind Kind
}

func (e *MissingSensitivityError) Error() string {
	return fmt.Sprintf("lom: %s sensitivity is missing", e.Kind)
}

func (e *MissingSensitivityError) Is(target error) bool {
	return target == ErrMissingSensitivity
}

// DofCountError reports a motion sample of the wrong shape.
type DofCountError struct {
	Mirror Mirror
	Sample int
	// Segment is 0 when the whole mirror block has the wrong length.
	Segment int
	Got     int
	Want    int
}

func (e *DofCountError) Error() string {
	if e.Segment > 0 {
		return fmt.Sprintf("lom: %s segment %d of sample %d has %d rigid body motions, want %d",
			e.Mirror, e.Segment, e.Sample, e.Got, e.Want)
	}
	return fmt.Sprintf("lom: %s of sample %d has %d entries, want %d",
		e.Mirror, e.Sample, e.Got, e.Want)
}

func (e *DofCountError) Is(target error) bool {
	return target == ErrDofCount
}

// WindowError reports a statistics window that cannot be satisfied.
type WindowError struct {
	Requested int
	Available int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("lom: window of %d samples requested, %d available", e.Requested, e.Available)
}

func (e *WindowError) Is(target error) bool {
	return target == ErrNotEnoughSamples
}
