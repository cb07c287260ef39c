package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleCycle is returned by a refresh cycle that was superseded by a newer one.
	ErrStaleCycle = errors.New("refresh cycle superseded")

	// ErrInvalidReading rejects a submission without a 1–5 mood and a valid location.
	ErrInvalidReading = errors.New("invalid reading")

	// ErrInvalidViewport rejects a viewport with out-of-range or inverted corners.
	ErrInvalidViewport = errors.New("invalid viewport")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// CodecError reports a malformed address or a point the codec cannot encode.
type CodecError struct {
	Address CellAddress
	Err     error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec: address %q: %v", e.Address, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// FetchError reports a store or transport failure while fetching a cell.
type FetchError struct {
	Collection string
	Address    CellAddress
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s/%s: %v", e.Collection, e.Address, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError reports a failed write of a reading.
type SubmissionError struct {
	Collection string
	Address    CellAddress
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s/%s: %v", e.Collection, e.Address, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
