// Package transform implements a reference-counted media transform with
// stream type negotiation and a single-slot sample mailbox.
//
// Lifecycle:
//
//	Unconfigured → InputTypeSet / OutputTypeSet → Ready → Processing
//
// Processing alternates between NeedInput and HasOutput. ProcessOutput never
// yields a sample before every stream has a type and an input sample has been
// accepted. The actual media work is delegated to a Codec; a transform built
// without one negotiates types but answers processing with ErrNotImplemented.
package transform

import (
	"log/slog"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/transform/internal"
)

// Transform is re-exported from internal package.
// See internal/transform.go for full documentation.
type Transform = internal.Transform

type (
	Codec          = internal.Codec
	SupportChecker = internal.SupportChecker
	Descriptor     = internal.Descriptor
	MediaType      = internal.MediaType
	Sample         = internal.Sample
	StreamCaps     = internal.StreamCaps
	StreamLimits   = internal.StreamLimits
	State          = internal.State
	SetTypeFlags   = internal.SetTypeFlags
	OutputStatus   = internal.OutputStatus
	Message        = internal.Message
	Stats          = internal.Stats
)

const (
	StateUnconfigured  = internal.StateUnconfigured
	StateInputTypeSet  = internal.StateInputTypeSet
	StateOutputTypeSet = internal.StateOutputTypeSet
	StateReady         = internal.StateReady
	StateProcessing    = internal.StateProcessing

	SetTypeTestOnly = internal.SetTypeTestOnly

	NeedInput = internal.NeedInput
	HasOutput = internal.HasOutput

	MessageFlush                = internal.MessageFlush
	MessageDrain                = internal.MessageDrain
	MessageSetD3DManager        = internal.MessageSetD3DManager
	MessageNotifyBeginStreaming = internal.MessageNotifyBeginStreaming
	MessageNotifyEndStreaming   = internal.MessageNotifyEndStreaming
	MessageNotifyStartOfStream  = internal.MessageNotifyStartOfStream
	MessageNotifyEndOfStream    = internal.MessageNotifyEndOfStream
	MessageCommandMarker        = internal.MessageCommandMarker

	H264Element = internal.H264Element
)

var (
	IIDTransform = internal.IIDTransform

	MediaTypeVideo = internal.MediaTypeVideo
	SubtypeNV12    = internal.SubtypeNV12
	SubtypeI420    = internal.SubtypeI420
	SubtypeH264    = internal.SubtypeH264

	AttrEncoderSupportsConfigEvent = internal.AttrEncoderSupportsConfigEvent
)

var (
	ErrInvalidStreamNumber = internal.ErrInvalidStreamNumber
	ErrTypeNotSet          = internal.ErrTypeNotSet
	ErrNoMoreTypes         = internal.ErrNoMoreTypes
	ErrTransformNotReady   = internal.ErrTransformNotReady
	ErrPendingInput        = internal.ErrPendingInput

	ErrNotAccepting      = comerr.ErrNotAccepting
	ErrNeedMoreInput     = comerr.ErrNeedMoreInput
	ErrNotImplemented    = comerr.ErrNotImplemented
	ErrInvalidType       = comerr.ErrInvalidType
	ErrUnsupportedFormat = comerr.ErrUnsupportedFormat
	ErrInvalidArgument   = comerr.ErrInvalidArgument
)

// Option configures transform constructors.
type Option func(*config)

type config struct {
	codec         Codec
	logger        *slog.Logger
	attributeHint int
}

// WithCodec binds the codec that performs processing.
func WithCodec(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithLogger sets the logger for the transform and its attribute store.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// WithAttributeHint sets the attribute store capacity hint (New only).
func WithAttributeHint(n int) Option {
	return func(cfg *config) { cfg.attributeHint = n }
}

func apply(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// New creates a transform with the streams declared by desc.
func New(desc Descriptor, opts ...Option) (*Transform, error) {
	cfg := apply(opts)
	return internal.New(desc, internal.Options{
		Codec:         cfg.codec,
		Logger:        cfg.logger,
		AttributeHint: cfg.attributeHint,
	})
}

// NewH264Encoder creates an H.264 encoder after asking support whether the
// backend element is installed. A missing element fails with
// ErrUnsupportedFormat before any object is created.
func NewH264Encoder(support SupportChecker, opts ...Option) (*Transform, error) {
	cfg := apply(opts)
	return internal.NewH264Encoder(internal.H264Options{
		Support: support,
		Codec:   cfg.codec,
		Logger:  cfg.logger,
	})
}
