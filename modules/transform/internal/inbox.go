package internal

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/metrics"
)

// ProcessInput hands one sample to the transform.
//
// Mailbox semantics: a single pending slot. Unlike a frame mailbox a pending
// sample is never overwritten; the caller must drain output first.
//
// Errors:
//   - ErrInvalidStreamNumber / ErrInvalidArgument: bad id, nil sample, flags
//   - ErrTransformNotReady: types not negotiated
//   - ErrNotImplemented: no codec bound
//   - ErrNotAccepting: a sample is already pending
func (t *Transform) ProcessInput(id uint32, s *Sample, flags uint32) error {
	if _, err := streamCaps(t.desc.Inputs, id); err != nil {
		return err
	}
	if s == nil || flags != 0 {
		return fmt.Errorf("transform: process input (sample nil=%t, flags %#x): %w", s == nil, flags, comerr.ErrInvalidArgument)
	}
	if !t.configured {
		t.reject()
		return ErrTransformNotReady
	}
	if t.codec == nil {
		return fmt.Errorf("transform: process input: %w", comerr.ErrNotImplemented)
	}

	t.inboxMu.Lock()
	if t.pending != nil {
		t.inboxMu.Unlock()
		t.reject()
		return fmt.Errorf("transform: input pending: %w", comerr.ErrNotAccepting)
	}
	t.pending = s
	t.processing = true
	t.inboxMu.Unlock()

	t.accepted.Add(1)
	metrics.TransformSamples.WithLabelValues("input", "accepted").Inc()
	return nil
}

func (t *Transform) reject() {
	t.rejected.Add(1)
	metrics.TransformSamples.WithLabelValues("input", "rejected").Inc()
}

// ProcessOutput returns up to count produced samples.
//
// Algorithm:
//  1. Return queued outputs if any
//  2. Otherwise run the codec on the pending input (consuming it; a codec
//     error leaves it pending until Flush)
//  3. ErrNeedMoreInput when neither yields a sample
func (t *Transform) ProcessOutput(flags uint32, count int) ([]*Sample, error) {
	if flags != 0 || count < 1 {
		return nil, fmt.Errorf("transform: process output (flags %#x, count %d): %w", flags, count, comerr.ErrInvalidArgument)
	}
	if !t.configured {
		return nil, ErrTransformNotReady
	}
	if t.codec == nil {
		return nil, fmt.Errorf("transform: process output: %w", comerr.ErrNotImplemented)
	}

	t.inboxMu.Lock()
	defer t.inboxMu.Unlock()

	if len(t.outq) == 0 && t.pending != nil {
		in := t.pending
		t.pending = nil

		out, err := t.codec.Process(in)
		if err != nil {
			t.pending = in
			return nil, fmt.Errorf("transform: codec process: %w", err)
		}
		t.outq = append(t.outq, out...)
	}

	if len(t.outq) == 0 {
		return nil, comerr.ErrNeedMoreInput
	}

	n := min(count, len(t.outq))
	out := make([]*Sample, n)
	copy(out, t.outq)
	t.outq = t.outq[n:]

	t.produced.Add(uint64(n))
	metrics.TransformSamples.WithLabelValues("output", "produced").Add(float64(n))
	return out, nil
}

// InputStatus reports whether ProcessInput on stream id would accept a sample.
func (t *Transform) InputStatus(id uint32) (bool, error) {
	if _, err := streamCaps(t.desc.Inputs, id); err != nil {
		return false, err
	}
	if !t.configured {
		return false, ErrTransformNotReady
	}

	t.inboxMu.Lock()
	defer t.inboxMu.Unlock()
	return t.pending == nil, nil
}

// OutputStatus reports whether ProcessOutput would produce a sample.
func (t *Transform) OutputStatus() (OutputStatus, error) {
	if !t.configured {
		return NeedInput, ErrTransformNotReady
	}

	t.inboxMu.Lock()
	defer t.inboxMu.Unlock()
	if t.pending != nil || len(t.outq) > 0 {
		return HasOutput, nil
	}
	return NeedInput, nil
}

func (t *Transform) flush() {
	t.inboxMu.Lock()
	dropped := len(t.outq)
	if t.pending != nil {
		dropped++
	}
	t.pending = nil
	t.outq = nil
	t.inboxMu.Unlock()

	if dropped > 0 {
		t.flushed.Add(uint64(dropped))
		metrics.TransformSamples.WithLabelValues("input", "flushed").Add(float64(dropped))
	}
}

// drain runs the pending input through the codec and collects everything the
// codec still buffers, so ProcessOutput can return it.
func (t *Transform) drain() error {
	if !t.configured {
		return ErrTransformNotReady
	}
	if t.codec == nil {
		return fmt.Errorf("transform: drain: %w", comerr.ErrNotImplemented)
	}

	t.inboxMu.Lock()
	defer t.inboxMu.Unlock()

	if t.pending != nil {
		in := t.pending
		t.pending = nil
		out, err := t.codec.Process(in)
		if err != nil {
			t.pending = in
			return fmt.Errorf("transform: codec process: %w", err)
		}
		t.outq = append(t.outq, out...)
	}

	out, err := t.codec.Drain()
	if err != nil {
		return fmt.Errorf("transform: codec drain: %w", err)
	}
	t.outq = append(t.outq, out...)
	return nil
}
