package internal

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

var (
	// ErrInvalidStreamNumber: stream id outside the declared streams.
	ErrInvalidStreamNumber = fmt.Errorf("transform: invalid stream number: %w", comerr.ErrInvalidArgument)

	// ErrTypeNotSet: no media type negotiated on the stream.
	ErrTypeNotSet = fmt.Errorf("transform: media type not set: %w", comerr.ErrFail)

	// ErrNoMoreTypes: available type index past the end.
	ErrNoMoreTypes = fmt.Errorf("transform: no more types: %w", comerr.ErrNotFound)

	// ErrTransformNotReady: processing before both types are set.
	ErrTransformNotReady = fmt.Errorf("transform: types not negotiated: %w", comerr.ErrNotAccepting)

	// ErrPendingInput: type change while an input sample is pending.
	ErrPendingInput = fmt.Errorf("transform: cannot change type with pending input: %w", comerr.ErrNotAccepting)
)
