// Package comerr defines the error taxonomy shared by every mediakit module.
//
// Modules return (or wrap) one of the sentinels below so callers can use
// errors.Is regardless of which object produced the failure. Classify folds
// the taxonomy into the four classes a caller acts on: fix the input,
// reconfigure, retry later, or treat as an I/O failure.
package comerr

import "errors"

// Taxonomy sentinels.
var (
	// Bad input, detected before any mutation.
	ErrInvalidArgument = errors.New("mediakit: invalid argument")
	ErrInvalidRegion   = errors.New("mediakit: invalid region")
	ErrInvalidType     = errors.New("mediakit: invalid media type")
	ErrTypeMismatch    = errors.New("mediakit: attribute type mismatch")
	ErrNotFound        = errors.New("mediakit: attribute not found")

	// Allocation failure, no partial state change.
	ErrOutOfMemory = errors.New("mediakit: out of memory")

	// Well-formed request the implementation declines.
	ErrUnsupportedFormat = errors.New("mediakit: unsupported format")
	ErrNotImplemented    = errors.New("mediakit: not implemented")
	ErrNoInterface       = errors.New("mediakit: no such interface")

	// State-machine preconditions.
	ErrStackFull     = errors.New("mediakit: context stack full")
	ErrNotAccepting  = errors.New("mediakit: transform not accepting input")
	ErrNeedMoreInput = errors.New("mediakit: transform needs more input")
	ErrFail          = errors.New("mediakit: operation failed")
)

// Class represents the caller-facing classification of an error.
type Class int

const (
	// ClassBadInput means the request itself is malformed; retrying is pointless.
	ClassBadInput Class = iota
	// ClassUnsupported means the request is valid but declined; reconfigure.
	ClassUnsupported
	// ClassBusy means an object is full or not in the required state yet.
	ClassBusy
	// ClassTransient covers passthrough failures from external collaborators
	// (locks, file mapping, container parsing).
	ClassTransient
	// ClassUnknown is returned for nil errors only.
	ClassUnknown
)

// String returns a human-readable representation of the class
func (c Class) String() string {
	switch c {
	case ClassBadInput:
		return "bad-input"
	case ClassUnsupported:
		return "unsupported"
	case ClassBusy:
		return "busy"
	case ClassTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Classify maps an error onto its Class.
//
// Any non-nil error outside the taxonomy came from a collaborator and is
// reported as ClassTransient.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	switch {
	case isAny(err, ErrInvalidArgument, ErrInvalidRegion, ErrInvalidType, ErrTypeMismatch, ErrNotFound):
		return ClassBadInput
	case isAny(err, ErrUnsupportedFormat, ErrNotImplemented, ErrNoInterface):
		return ClassUnsupported
	case isAny(err, ErrStackFull, ErrNotAccepting, ErrNeedMoreInput, ErrFail, ErrOutOfMemory):
		return ClassBusy
	default:
		return ClassTransient
	}
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
