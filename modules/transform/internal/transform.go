// Package internal implements the transform state machine.
//
// This package is INTERNAL - clients MUST use public API in parent package.
package internal

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/attributes"
	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

// IIDTransform identifies the transform facet.
var IIDTransform = uuid.MustParse("bf94c121-5b05-4e6f-8000-ba598961414d")

// Codec performs the actual media processing behind a Transform.
type Codec interface {
	// Configure is called once every stream has a type, and again after
	// any later type change.
	Configure(input, output *MediaType) error

	// Process consumes one input sample and returns zero or more outputs.
	Process(in *Sample) ([]*Sample, error)

	// Drain returns every sample still buffered inside the codec.
	Drain() ([]*Sample, error)
}

// Descriptor declares the streams of a transform.
type Descriptor struct {
	Class   string
	Inputs  []StreamCaps
	Outputs []StreamCaps
}

// Options configures New.
type Options struct {
	Codec         Codec
	Logger        *slog.Logger
	AttributeHint int
}

// Transform is a reference-counted multi-stream processing object.
//
// Thread-safety:
//   - Type negotiation and ProcessMessage: callers serialize
//   - ProcessInput/ProcessOutput: the sample mailbox is mutex-protected, so
//     one feeder and one consumer goroutine may run concurrently
//   - Stats: safe from any goroutine (atomic counters)
type Transform struct {
	comobj.Object

	desc   Descriptor
	attrs  *attributes.Store
	codec  Codec
	logger *slog.Logger

	inputTypes  []*MediaType
	outputTypes []*MediaType
	configured  bool
	streaming   bool

	// Mailbox (see inbox.go)
	inboxMu    sync.Mutex
	pending    *Sample
	outq       []*Sample
	processing bool

	accepted atomic.Uint64
	rejected atomic.Uint64
	produced atomic.Uint64
	flushed  atomic.Uint64
}

// New creates a transform with refcount 1 and an empty attribute store.
func New(desc Descriptor, opts Options) (*Transform, error) {
	if len(desc.Inputs) == 0 || len(desc.Outputs) == 0 {
		return nil, fmt.Errorf("transform: %d inputs, %d outputs: %w", len(desc.Inputs), len(desc.Outputs), comerr.ErrInvalidArgument)
	}
	if desc.Class == "" {
		desc.Class = "transform"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs, err := attributes.New(opts.AttributeHint, attributes.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("transform: create attributes: %w", err)
	}

	t := &Transform{
		desc:        desc,
		attrs:       attrs,
		codec:       opts.Codec,
		logger:      logger,
		inputTypes:  make([]*MediaType, len(desc.Inputs)),
		outputTypes: make([]*MediaType, len(desc.Outputs)),
	}
	t.Init(comobj.Config{
		Class:      desc.Class,
		Primary:    t,
		Facets:     map[comobj.IID]comobj.Unknown{IIDTransform: t},
		Destructor: t.destroy,
		Logger:     logger,
	})
	return t, nil
}

func (t *Transform) destroy() {
	t.attrs.Release()
	t.attrs = nil

	t.inboxMu.Lock()
	t.pending = nil
	t.outq = nil
	t.inboxMu.Unlock()
}

// Attributes returns the transform's attribute store with an added reference.
func (t *Transform) Attributes() *attributes.Store {
	t.attrs.AddRef()
	return t.attrs
}

// StreamLimits returns the fixed stream count bounds.
func (t *Transform) StreamLimits() StreamLimits {
	return StreamLimits{
		InputMin:  len(t.desc.Inputs),
		InputMax:  len(t.desc.Inputs),
		OutputMin: len(t.desc.Outputs),
		OutputMax: len(t.desc.Outputs),
	}
}

// StreamCount returns the current number of input and output streams.
func (t *Transform) StreamCount() (inputs, outputs int) {
	return len(t.desc.Inputs), len(t.desc.Outputs)
}

// StreamIDs returns the stream identifiers, which are consecutive from 0.
func (t *Transform) StreamIDs() (inputs, outputs []uint32) {
	inputs = make([]uint32, len(t.desc.Inputs))
	for i := range inputs {
		inputs[i] = uint32(i)
	}
	outputs = make([]uint32, len(t.desc.Outputs))
	for i := range outputs {
		outputs[i] = uint32(i)
	}
	return inputs, outputs
}

// State returns the current negotiation state.
func (t *Transform) State() State {
	inSet := allSet(t.inputTypes)
	outSet := allSet(t.outputTypes)

	switch {
	case inSet && outSet:
		t.inboxMu.Lock()
		processing := t.processing
		t.inboxMu.Unlock()
		if processing {
			return StateProcessing
		}
		return StateReady
	case inSet:
		return StateInputTypeSet
	case outSet:
		return StateOutputTypeSet
	default:
		return StateUnconfigured
	}
}

func allSet(types []*MediaType) bool {
	for _, mt := range types {
		if mt == nil {
			return false
		}
	}
	return true
}

// InputAvailableType returns the index-th type the input stream accepts.
func (t *Transform) InputAvailableType(id uint32, index int) (*MediaType, error) {
	caps, err := streamCaps(t.desc.Inputs, id)
	if err != nil {
		return nil, err
	}
	return availableType(caps, index)
}

// OutputAvailableType returns the index-th type the output stream offers.
func (t *Transform) OutputAvailableType(id uint32, index int) (*MediaType, error) {
	caps, err := streamCaps(t.desc.Outputs, id)
	if err != nil {
		return nil, err
	}
	return availableType(caps, index)
}

func streamCaps(caps []StreamCaps, id uint32) (StreamCaps, error) {
	if int(id) >= len(caps) {
		return StreamCaps{}, fmt.Errorf("stream %d of %d: %w", id, len(caps), ErrInvalidStreamNumber)
	}
	return caps[id], nil
}

func availableType(caps StreamCaps, index int) (*MediaType, error) {
	if index < 0 || index >= len(caps.Subtypes) {
		return nil, fmt.Errorf("type index %d: %w", index, ErrNoMoreTypes)
	}
	return &MediaType{Major: caps.Major, Subtype: caps.Subtypes[index]}, nil
}

// SetInputType negotiates the input stream type. A nil mt clears the slot.
//
// Errors:
//   - ErrInvalidStreamNumber: id outside the declared streams
//   - ErrInvalidArgument: unknown flags
//   - ErrInvalidType: mt does not match the stream capability
//   - ErrPendingInput: a sample is waiting in the mailbox
func (t *Transform) SetInputType(id uint32, mt *MediaType, flags SetTypeFlags) error {
	return t.setType("input", t.desc.Inputs, t.inputTypes, id, mt, flags)
}

// SetOutputType negotiates the output stream type. A nil mt clears the slot.
func (t *Transform) SetOutputType(id uint32, mt *MediaType, flags SetTypeFlags) error {
	return t.setType("output", t.desc.Outputs, t.outputTypes, id, mt, flags)
}

func (t *Transform) setType(dir string, caps []StreamCaps, slots []*MediaType, id uint32, mt *MediaType, flags SetTypeFlags) error {
	c, err := streamCaps(caps, id)
	if err != nil {
		return err
	}
	if flags&^SetTypeTestOnly != 0 {
		return fmt.Errorf("transform: set %s type flags %#x: %w", dir, uint32(flags), comerr.ErrInvalidArgument)
	}
	if mt != nil {
		if err := checkType(c, mt); err != nil {
			return fmt.Errorf("transform: set %s type: %w", dir, err)
		}
	}
	if flags&SetTypeTestOnly != 0 {
		return nil
	}

	t.inboxMu.Lock()
	busy := t.pending != nil
	t.inboxMu.Unlock()
	if busy {
		return ErrPendingInput
	}

	prev := slots[id]
	slots[id] = mt.clone()

	if err := t.configure(); err != nil {
		slots[id] = prev
		return err
	}

	t.logger.Debug("transform: type set",
		"object_id", t.ID(),
		"direction", dir,
		"stream", id,
		"cleared", mt == nil,
		"state", t.State().String(),
	)
	return nil
}

func checkType(c StreamCaps, mt *MediaType) error {
	if mt.Major != c.Major {
		return fmt.Errorf("major type %s: %w", mt.Major, comerr.ErrInvalidType)
	}

	known := false
	for _, s := range c.Subtypes {
		if s == mt.Subtype {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("subtype %s: %w", mt.Subtype, comerr.ErrInvalidType)
	}

	if mt.Width == 0 || mt.Height == 0 {
		return fmt.Errorf("frame size %dx%d: %w", mt.Width, mt.Height, comerr.ErrInvalidType)
	}
	if (c.MaxWidth != 0 && mt.Width > c.MaxWidth) || (c.MaxHeight != 0 && mt.Height > c.MaxHeight) {
		return fmt.Errorf("frame size %dx%d exceeds %dx%d: %w", mt.Width, mt.Height, c.MaxWidth, c.MaxHeight, comerr.ErrInvalidType)
	}
	if (mt.FrameRateNum == 0) != (mt.FrameRateDen == 0) {
		return fmt.Errorf("frame rate %d/%d: %w", mt.FrameRateNum, mt.FrameRateDen, comerr.ErrInvalidType)
	}
	return nil
}

// configure hands the negotiated types to the codec once every stream is set.
func (t *Transform) configure() error {
	ready := allSet(t.inputTypes) && allSet(t.outputTypes)
	if !ready {
		t.configured = false
		t.inboxMu.Lock()
		t.processing = false
		t.inboxMu.Unlock()
		return nil
	}
	if t.codec != nil {
		if err := t.codec.Configure(t.inputTypes[0], t.outputTypes[0]); err != nil {
			return fmt.Errorf("transform: configure codec: %w", err)
		}
	}
	t.configured = true
	return nil
}

// InputCurrentType returns a copy of the negotiated input type.
func (t *Transform) InputCurrentType(id uint32) (*MediaType, error) {
	return currentType(t.desc.Inputs, t.inputTypes, id)
}

// OutputCurrentType returns a copy of the negotiated output type.
func (t *Transform) OutputCurrentType(id uint32) (*MediaType, error) {
	return currentType(t.desc.Outputs, t.outputTypes, id)
}

func currentType(caps []StreamCaps, slots []*MediaType, id uint32) (*MediaType, error) {
	if _, err := streamCaps(caps, id); err != nil {
		return nil, err
	}
	if slots[id] == nil {
		return nil, fmt.Errorf("stream %d: %w", id, ErrTypeNotSet)
	}
	return slots[id].clone(), nil
}

// ProcessMessage handles stream commands.
func (t *Transform) ProcessMessage(msg Message) error {
	switch msg {
	case MessageFlush:
		t.flush()
	case MessageDrain:
		if err := t.drain(); err != nil {
			return err
		}
	case MessageNotifyBeginStreaming:
		t.streaming = true
	case MessageNotifyEndStreaming:
		t.streaming = false
	case MessageNotifyStartOfStream, MessageNotifyEndOfStream:
	default:
		return fmt.Errorf("transform: message %s: %w", msg, comerr.ErrNotImplemented)
	}

	t.logger.Debug("transform: message processed",
		"object_id", t.ID(),
		"message", msg.String(),
	)
	return nil
}

// Streaming reports whether NotifyBeginStreaming was received without a
// matching NotifyEndStreaming.
func (t *Transform) Streaming() bool {
	return t.streaming
}

// Stats returns a snapshot of the sample counters.
func (t *Transform) Stats() Stats {
	return Stats{
		Accepted: t.accepted.Load(),
		Rejected: t.rejected.Load(),
		Produced: t.produced.Load(),
		Flushed:  t.flushed.Load(),
		State:    t.State(),
	}
}

// AddInputStreams is not supported: stream counts are fixed.
func (t *Transform) AddInputStreams(ids []uint32) error {
	return fmt.Errorf("transform: add input streams: %w", comerr.ErrNotImplemented)
}

// DeleteInputStream is not supported: stream counts are fixed.
func (t *Transform) DeleteInputStream(id uint32) error {
	return fmt.Errorf("transform: delete input stream: %w", comerr.ErrNotImplemented)
}

// SetOutputBounds is not supported.
func (t *Transform) SetOutputBounds(lower, upper int64) error {
	return fmt.Errorf("transform: set output bounds: %w", comerr.ErrNotImplemented)
}

// ProcessEvent is not supported.
func (t *Transform) ProcessEvent(id uint32, event comobj.Unknown) error {
	return fmt.Errorf("transform: process event: %w", comerr.ErrNotImplemented)
}

// InputStreamInfo is not supported: buffer requirements are not modeled.
func (t *Transform) InputStreamInfo(id uint32) error {
	return fmt.Errorf("transform: input stream info: %w", comerr.ErrNotImplemented)
}

// OutputStreamInfo is not supported: buffer requirements are not modeled.
func (t *Transform) OutputStreamInfo(id uint32) error {
	return fmt.Errorf("transform: output stream info: %w", comerr.ErrNotImplemented)
}

// InputStreamAttributes is not supported: streams carry no attributes.
func (t *Transform) InputStreamAttributes(id uint32) (*attributes.Store, error) {
	return nil, fmt.Errorf("transform: input stream attributes: %w", comerr.ErrNotImplemented)
}

// OutputStreamAttributes is not supported: streams carry no attributes.
func (t *Transform) OutputStreamAttributes(id uint32) (*attributes.Store, error) {
	return nil, fmt.Errorf("transform: output stream attributes: %w", comerr.ErrNotImplemented)
}
