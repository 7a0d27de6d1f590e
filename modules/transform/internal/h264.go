package internal

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Media type identifiers (FOURCC-derived GUIDs).
var (
	MediaTypeVideo = uuid.MustParse("73646976-0000-0010-8000-00aa00389b71")
	SubtypeNV12    = uuid.MustParse("3231564e-0000-0010-8000-00aa00389b71")
	SubtypeI420    = uuid.MustParse("30323449-0000-0010-8000-00aa00389b71")
	SubtypeH264    = uuid.MustParse("34363248-0000-0010-8000-00aa00389b71")
)

// AttrEncoderSupportsConfigEvent marks encoders that accept configuration
// events while streaming.
var AttrEncoderSupportsConfigEvent = uuid.MustParse("86a355ae-3a77-4ec4-9f31-01149a4e92de")

// H264Element is the GStreamer element an H.264 encoder depends on.
const H264Element = "x264enc"

const (
	h264AttributeHint = 16
	h264MaxWidth      = 1920
	h264MaxHeight     = 1080
)

// SupportChecker reports whether the media backend can run an element.
type SupportChecker interface {
	CheckElement(name string) error
}

// H264Options configures NewH264Encoder.
type H264Options struct {
	Support SupportChecker
	Codec   Codec
	Logger  *slog.Logger
}

// NewH264Encoder creates a one-in/one-out H.264 encoder transform.
//
// The backend support check runs before anything is allocated. Without a
// Codec the object negotiates types but processing returns ErrNotImplemented.
func NewH264Encoder(opts H264Options) (*Transform, error) {
	if opts.Support == nil {
		return nil, fmt.Errorf("transform: h264 encoder without support checker: %w", comerr.ErrInvalidArgument)
	}
	if err := opts.Support.CheckElement(H264Element); err != nil {
		return nil, fmt.Errorf("transform: h264 encoder unavailable: %v: %w", err, comerr.ErrUnsupportedFormat)
	}

	t, err := New(Descriptor{
		Class: "h264-encoder",
		Inputs: []StreamCaps{{
			Major:     MediaTypeVideo,
			Subtypes:  []uuid.UUID{SubtypeNV12, SubtypeI420},
			MaxWidth:  h264MaxWidth,
			MaxHeight: h264MaxHeight,
		}},
		Outputs: []StreamCaps{{
			Major:     MediaTypeVideo,
			Subtypes:  []uuid.UUID{SubtypeH264},
			MaxWidth:  h264MaxWidth,
			MaxHeight: h264MaxHeight,
		}},
	}, Options{
		Codec:         opts.Codec,
		Logger:        opts.Logger,
		AttributeHint: h264AttributeHint,
	})
	if err != nil {
		return nil, err
	}

	if err := t.attrs.SetUint32(AttrEncoderSupportsConfigEvent, 1); err != nil {
		t.Release()
		return nil, fmt.Errorf("transform: h264 encoder attributes: %w", err)
	}

	t.logger.Info("transform: h264 encoder created",
		"object_id", t.ID(),
		"codec", opts.Codec != nil,
	)
	return t, nil
}
