package internal

import (
	"time"

	"github.com/google/uuid"
)

// MediaType describes the format negotiated on one stream.
//
// A zero Width/Height means "any" when the type is offered by
// InputAvailableType; a type passed to SetInputType must carry geometry.
type MediaType struct {
	Major   uuid.UUID
	Subtype uuid.UUID

	Width  uint32
	Height uint32

	// FrameRateNum/FrameRateDen is the nominal rate; 0/0 means unspecified.
	FrameRateNum uint32
	FrameRateDen uint32

	// Bitrate in bits per second, meaningful on compressed output types.
	Bitrate uint32
}

func (m *MediaType) clone() *MediaType {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Sample is a unit of media moving through a transform.
//
// IMMUTABILITY CONTRACT: the caller MUST NOT modify Data after handing the
// sample to ProcessInput; codecs read it without copying.
type Sample struct {
	Data []byte

	// Time is the presentation timestamp relative to stream start.
	Time time.Duration

	Duration time.Duration

	// Keyframe marks samples decodable without references.
	Keyframe bool
}

// StreamCaps declares what a stream accepts.
type StreamCaps struct {
	Major    uuid.UUID
	Subtypes []uuid.UUID

	// MaxWidth/MaxHeight bound the geometry; zero means unbounded.
	MaxWidth  uint32
	MaxHeight uint32
}

// StreamLimits are the fixed stream count bounds of a transform.
type StreamLimits struct {
	InputMin, InputMax   int
	OutputMin, OutputMax int
}

// State is the negotiation state of a transform.
type State int

const (
	StateUnconfigured State = iota
	StateInputTypeSet
	StateOutputTypeSet
	StateReady
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateInputTypeSet:
		return "input-type-set"
	case StateOutputTypeSet:
		return "output-type-set"
	case StateReady:
		return "ready"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// SetTypeFlags modify SetInputType/SetOutputType.
type SetTypeFlags uint32

// SetTypeTestOnly validates the type without applying it.
const SetTypeTestOnly SetTypeFlags = 0x1

// OutputStatus reports whether ProcessOutput would produce a sample.
type OutputStatus int

const (
	// NeedInput: ProcessOutput would return ErrNeedMoreInput.
	NeedInput OutputStatus = iota
	// HasOutput: a sample is pending or already produced.
	HasOutput
)

// Message is a command sent with ProcessMessage.
type Message int

const (
	MessageFlush Message = iota
	MessageDrain
	MessageSetD3DManager
	MessageNotifyBeginStreaming
	MessageNotifyEndStreaming
	MessageNotifyStartOfStream
	MessageNotifyEndOfStream
	MessageCommandMarker
)

func (m Message) String() string {
	switch m {
	case MessageFlush:
		return "flush"
	case MessageDrain:
		return "drain"
	case MessageSetD3DManager:
		return "set-d3d-manager"
	case MessageNotifyBeginStreaming:
		return "begin-streaming"
	case MessageNotifyEndStreaming:
		return "end-streaming"
	case MessageNotifyStartOfStream:
		return "start-of-stream"
	case MessageNotifyEndOfStream:
		return "end-of-stream"
	case MessageCommandMarker:
		return "command-marker"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of transform counters.
type Stats struct {
	// Accepted counts samples taken by ProcessInput.
	Accepted uint64

	// Rejected counts ProcessInput calls answered with ErrNotAccepting.
	Rejected uint64

	// Produced counts samples returned by ProcessOutput.
	Produced uint64

	// Flushed counts pending input and output samples dropped by a flush.
	Flushed uint64

	State State
}
