package transform_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
	"github.com/e7canasta/orion-mediakit/modules/transform"
)

type fakeSupport struct {
	err     error
	checked []string
}

func (f *fakeSupport) CheckElement(name string) error {
	f.checked = append(f.checked, name)
	return f.err
}

type echoCodec struct {
	configured  int
	failConfig  error
	failProcess error
	buffered    []*transform.Sample
}

func (c *echoCodec) Configure(in, out *transform.MediaType) error {
	c.configured++
	return c.failConfig
}

func (c *echoCodec) Process(in *transform.Sample) ([]*transform.Sample, error) {
	if c.failProcess != nil {
		return nil, c.failProcess
	}
	data := append([]byte("enc:"), in.Data...)
	return []*transform.Sample{{Data: data, Time: in.Time, Keyframe: true}}, nil
}

func (c *echoCodec) Drain() ([]*transform.Sample, error) {
	out := c.buffered
	c.buffered = nil
	return out, nil
}

func nv12() *transform.MediaType {
	return &transform.MediaType{
		Major:        transform.MediaTypeVideo,
		Subtype:      transform.SubtypeNV12,
		Width:        1280,
		Height:       720,
		FrameRateNum: 30,
		FrameRateDen: 1,
	}
}

func h264() *transform.MediaType {
	return &transform.MediaType{
		Major:   transform.MediaTypeVideo,
		Subtype: transform.SubtypeH264,
		Width:   1280,
		Height:  720,
		Bitrate: 4_000_000,
	}
}

func newEncoder(t *testing.T, opts ...transform.Option) *transform.Transform {
	t.Helper()
	enc, err := transform.NewH264Encoder(&fakeSupport{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !enc.Destroyed() {
			enc.Release()
		}
	})
	return enc
}

func newReady(t *testing.T, codec transform.Codec) *transform.Transform {
	t.Helper()
	var opts []transform.Option
	if codec != nil {
		opts = append(opts, transform.WithCodec(codec))
	}
	enc := newEncoder(t, opts...)
	require.NoError(t, enc.SetInputType(0, nv12(), 0))
	require.NoError(t, enc.SetOutputType(0, h264(), 0))
	require.Equal(t, transform.StateReady, enc.State())
	return enc
}

func TestH264EncoderCreate(t *testing.T) {
	support := &fakeSupport{}
	enc, err := transform.NewH264Encoder(support)
	require.NoError(t, err)
	defer enc.Release()

	assert.Equal(t, []string{transform.H264Element}, support.checked)
	assert.Equal(t, uint32(1), enc.RefCount())
	assert.Equal(t, transform.StateUnconfigured, enc.State())
	assert.Equal(t, transform.StreamLimits{InputMin: 1, InputMax: 1, OutputMin: 1, OutputMax: 1}, enc.StreamLimits())

	in, out := enc.StreamCount()
	assert.Equal(t, 1, in)
	assert.Equal(t, 1, out)

	inIDs, outIDs := enc.StreamIDs()
	assert.Equal(t, []uint32{0}, inIDs)
	assert.Equal(t, []uint32{0}, outIDs)

	attrs := enc.Attributes()
	defer attrs.Release()
	v, err := attrs.GetUint32(transform.AttrEncoderSupportsConfigEvent)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	facet, err := comobj.Query[*transform.Transform](enc, transform.IIDTransform)
	require.NoError(t, err)
	assert.Same(t, enc, facet)
	facet.Release()
}

func TestH264EncoderUnsupported(t *testing.T) {
	support := &fakeSupport{err: errors.New("no element x264enc")}

	enc, err := transform.NewH264Encoder(support)
	assert.Nil(t, enc)
	assert.ErrorIs(t, err, transform.ErrUnsupportedFormat)
	assert.Equal(t, comerr.ClassUnsupported, comerr.Classify(err))

	_, err = transform.NewH264Encoder(nil)
	assert.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestStateTransitions(t *testing.T) {
	enc := newEncoder(t)

	require.NoError(t, enc.SetInputType(0, nv12(), 0))
	assert.Equal(t, transform.StateInputTypeSet, enc.State())

	require.NoError(t, enc.SetOutputType(0, h264(), 0))
	assert.Equal(t, transform.StateReady, enc.State())

	require.NoError(t, enc.SetInputType(0, nil, 0))
	assert.Equal(t, transform.StateOutputTypeSet, enc.State())

	require.NoError(t, enc.SetOutputType(0, nil, 0))
	assert.Equal(t, transform.StateUnconfigured, enc.State())
}

func TestSetTypeRejects(t *testing.T) {
	bigger := nv12()
	bigger.Width = 3840

	wrongMajor := nv12()
	wrongMajor.Major = uuid.New()

	wrongSub := nv12()
	wrongSub.Subtype = transform.SubtypeH264

	noSize := nv12()
	noSize.Height = 0

	halfRate := nv12()
	halfRate.FrameRateDen = 0

	tests := []struct {
		name    string
		id      uint32
		mt      *transform.MediaType
		flags   transform.SetTypeFlags
		wantErr error
	}{
		{"bad stream", 1, nv12(), 0, transform.ErrInvalidStreamNumber},
		{"bad flags", 0, nv12(), 0x8, transform.ErrInvalidArgument},
		{"wrong major", 0, wrongMajor, 0, transform.ErrInvalidType},
		{"wrong subtype", 0, wrongSub, 0, transform.ErrInvalidType},
		{"too large", 0, bigger, 0, transform.ErrInvalidType},
		{"no size", 0, noSize, 0, transform.ErrInvalidType},
		{"half frame rate", 0, halfRate, 0, transform.ErrInvalidType},
		{"test only bad", 0, wrongSub, transform.SetTypeTestOnly, transform.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := newEncoder(t)
			err := enc.SetInputType(tt.id, tt.mt, tt.flags)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, transform.StateUnconfigured, enc.State())
		})
	}

	assert.ErrorIs(t, transform.ErrInvalidStreamNumber, transform.ErrInvalidArgument)
}

func TestSetTypeTestOnly(t *testing.T) {
	enc := newEncoder(t)

	require.NoError(t, enc.SetInputType(0, nv12(), transform.SetTypeTestOnly))
	assert.Equal(t, transform.StateUnconfigured, enc.State())

	_, err := enc.InputCurrentType(0)
	assert.ErrorIs(t, err, transform.ErrTypeNotSet)
}

func TestCurrentTypeIsCopy(t *testing.T) {
	enc := newEncoder(t)

	_, err := enc.OutputCurrentType(0)
	assert.ErrorIs(t, err, transform.ErrTypeNotSet)

	mt := nv12()
	require.NoError(t, enc.SetInputType(0, mt, 0))
	mt.Width = 1

	got, err := enc.InputCurrentType(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1280), got.Width)

	got.Height = 2
	again, err := enc.InputCurrentType(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(720), again.Height)

	_, err = enc.InputCurrentType(3)
	assert.ErrorIs(t, err, transform.ErrInvalidStreamNumber)
}

func TestAvailableTypes(t *testing.T) {
	enc := newEncoder(t)

	want := []uuid.UUID{transform.SubtypeNV12, transform.SubtypeI420}
	for i, sub := range want {
		mt, err := enc.InputAvailableType(0, i)
		require.NoError(t, err)
		assert.Equal(t, transform.MediaTypeVideo, mt.Major)
		assert.Equal(t, sub, mt.Subtype)
	}
	_, err := enc.InputAvailableType(0, len(want))
	assert.ErrorIs(t, err, transform.ErrNoMoreTypes)

	mt, err := enc.OutputAvailableType(0, 0)
	require.NoError(t, err)
	assert.Equal(t, transform.SubtypeH264, mt.Subtype)

	_, err = enc.OutputAvailableType(0, 1)
	assert.ErrorIs(t, err, transform.ErrNoMoreTypes)
}

func TestProcessBeforeReady(t *testing.T) {
	enc := newEncoder(t, transform.WithCodec(&echoCodec{}))
	require.NoError(t, enc.SetInputType(0, nv12(), 0))

	err := enc.ProcessInput(0, &transform.Sample{Data: []byte("f")}, 0)
	assert.ErrorIs(t, err, transform.ErrNotAccepting)

	out, err := enc.ProcessOutput(0, 1)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, transform.ErrTransformNotReady)
	assert.ErrorIs(t, err, transform.ErrNotAccepting)

	assert.Equal(t, uint64(1), enc.Stats().Rejected)
}

func TestProcessWithoutCodec(t *testing.T) {
	enc := newReady(t, nil)

	err := enc.ProcessInput(0, &transform.Sample{Data: []byte("f")}, 0)
	assert.ErrorIs(t, err, transform.ErrNotImplemented)

	_, err = enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, transform.ErrNotImplemented)
}

func TestProcessSample(t *testing.T) {
	codec := &echoCodec{}
	enc := newReady(t, codec)
	assert.Equal(t, 1, codec.configured)

	_, err := enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, transform.ErrNeedMoreInput)

	status, err := enc.OutputStatus()
	require.NoError(t, err)
	assert.Equal(t, transform.NeedInput, status)

	in := &transform.Sample{Data: []byte("frame"), Time: 40 * time.Millisecond}
	require.NoError(t, enc.ProcessInput(0, in, 0))
	assert.Equal(t, transform.StateProcessing, enc.State())

	accepting, err := enc.InputStatus(0)
	require.NoError(t, err)
	assert.False(t, accepting)

	err = enc.ProcessInput(0, in, 0)
	assert.ErrorIs(t, err, transform.ErrNotAccepting)

	status, err = enc.OutputStatus()
	require.NoError(t, err)
	assert.Equal(t, transform.HasOutput, status)

	out, err := enc.ProcessOutput(0, 4)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []byte("enc:frame"), out[0].Data)
	assert.Equal(t, 40*time.Millisecond, out[0].Time)

	_, err = enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, transform.ErrNeedMoreInput)

	stats := enc.Stats()
	assert.Equal(t, uint64(1), stats.Accepted)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Equal(t, uint64(1), stats.Produced)
	assert.Equal(t, transform.StateProcessing, stats.State)
}

func TestProcessInvalidArguments(t *testing.T) {
	enc := newReady(t, &echoCodec{})

	assert.ErrorIs(t, enc.ProcessInput(0, nil, 0), transform.ErrInvalidArgument)
	assert.ErrorIs(t, enc.ProcessInput(0, &transform.Sample{}, 1), transform.ErrInvalidArgument)
	assert.ErrorIs(t, enc.ProcessInput(2, &transform.Sample{}, 0), transform.ErrInvalidStreamNumber)

	_, err := enc.ProcessOutput(0, 0)
	assert.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestFlushDropsPending(t *testing.T) {
	enc := newReady(t, &echoCodec{})

	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("a")}, 0))
	require.NoError(t, enc.ProcessMessage(transform.MessageFlush))

	_, err := enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, transform.ErrNeedMoreInput)
	assert.Equal(t, uint64(1), enc.Stats().Flushed)

	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("b")}, 0))
}

func TestDrainCollectsBufferedOutput(t *testing.T) {
	codec := &echoCodec{buffered: []*transform.Sample{{Data: []byte("tail")}}}
	enc := newReady(t, codec)

	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("x")}, 0))
	require.NoError(t, enc.ProcessMessage(transform.MessageDrain))

	out, err := enc.ProcessOutput(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("enc:x"), out[0].Data)

	out, err = enc.ProcessOutput(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), out[0].Data)

	_, err = enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, transform.ErrNeedMoreInput)
}

func TestCodecFailureKeepsPendingSample(t *testing.T) {
	codecErr := errors.New("encoder stalled")
	codec := &echoCodec{failProcess: codecErr}
	enc := newReady(t, codec)

	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("a")}, 0))

	_, err := enc.ProcessOutput(0, 1)
	assert.ErrorIs(t, err, codecErr)
	assert.ErrorIs(t, enc.ProcessMessage(transform.MessageDrain), codecErr)

	accepting, err := enc.InputStatus(0)
	require.NoError(t, err)
	assert.False(t, accepting)

	codec.failProcess = nil
	out, err := enc.ProcessOutput(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("enc:a"), out[0].Data)

	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("b")}, 0))
	codec.failProcess = codecErr
	_, err = enc.ProcessOutput(0, 1)
	require.Error(t, err)
	require.NoError(t, enc.ProcessMessage(transform.MessageFlush))

	stats := enc.Stats()
	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(1), stats.Produced)
	assert.Equal(t, uint64(1), stats.Flushed)
}

func TestTypeChangeWithPendingInput(t *testing.T) {
	enc := newReady(t, &echoCodec{})
	require.NoError(t, enc.ProcessInput(0, &transform.Sample{Data: []byte("a")}, 0))

	err := enc.SetInputType(0, nv12(), 0)
	assert.ErrorIs(t, err, transform.ErrPendingInput)

	require.NoError(t, enc.SetInputType(0, nv12(), transform.SetTypeTestOnly))
}

func TestCodecConfigureFailureKeepsPreviousType(t *testing.T) {
	codec := &echoCodec{failConfig: errors.New("unsupported profile")}
	enc := newEncoder(t, transform.WithCodec(codec))

	require.NoError(t, enc.SetInputType(0, nv12(), 0))
	err := enc.SetOutputType(0, h264(), 0)
	require.Error(t, err)

	assert.Equal(t, transform.StateInputTypeSet, enc.State())
	_, err = enc.OutputCurrentType(0)
	assert.ErrorIs(t, err, transform.ErrTypeNotSet)
}

func TestMessages(t *testing.T) {
	enc := newReady(t, &echoCodec{})

	require.NoError(t, enc.ProcessMessage(transform.MessageNotifyBeginStreaming))
	assert.True(t, enc.Streaming())
	require.NoError(t, enc.ProcessMessage(transform.MessageNotifyStartOfStream))
	require.NoError(t, enc.ProcessMessage(transform.MessageNotifyEndOfStream))
	require.NoError(t, enc.ProcessMessage(transform.MessageNotifyEndStreaming))
	assert.False(t, enc.Streaming())

	assert.ErrorIs(t, enc.ProcessMessage(transform.MessageSetD3DManager), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.ProcessMessage(transform.MessageCommandMarker), transform.ErrNotImplemented)
}

func TestPlaceholders(t *testing.T) {
	enc := newEncoder(t)

	assert.ErrorIs(t, enc.AddInputStreams([]uint32{1}), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.DeleteInputStream(0), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.SetOutputBounds(0, 1), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.ProcessEvent(0, nil), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.InputStreamInfo(0), transform.ErrNotImplemented)
	assert.ErrorIs(t, enc.OutputStreamInfo(0), transform.ErrNotImplemented)

	_, err := enc.InputStreamAttributes(0)
	assert.ErrorIs(t, err, transform.ErrNotImplemented)
	_, err = enc.OutputStreamAttributes(0)
	assert.ErrorIs(t, err, transform.ErrNotImplemented)
}

func TestNewRejectsEmptyDescriptor(t *testing.T) {
	_, err := transform.New(transform.Descriptor{})
	assert.ErrorIs(t, err, transform.ErrInvalidArgument)
}

func TestReleaseDestroysAttributes(t *testing.T) {
	enc, err := transform.NewH264Encoder(&fakeSupport{})
	require.NoError(t, err)

	attrs := enc.Attributes()
	assert.Equal(t, uint32(2), attrs.RefCount())

	assert.Equal(t, uint32(0), enc.Release())
	assert.Equal(t, uint32(1), attrs.RefCount())
	assert.Equal(t, uint32(0), attrs.Release())
}
