package comobj_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

var iidWidget = uuid.MustParse("6f2c7f3e-4b1a-4c55-9d0e-1b9a4d8e2f01")

type widget struct {
	comobj.Object
	destroyed atomic.Int32
	child     comobj.Unknown
}

func (w *widget) Poke() string { return "poked" }

type poker interface {
	comobj.Unknown
	Poke() string
}

func newWidget(child comobj.Unknown) *widget {
	w := &widget{child: child}
	w.Init(comobj.Config{
		Class:   "widget",
		Primary: w,
		Facets:  map[comobj.IID]comobj.Unknown{iidWidget: w},
		Destructor: func() {
			w.destroyed.Add(1)
			comobj.SafeRelease(w.child)
			w.child = nil
		},
	})
	return w
}

// TestCreateStartsAtOne verifies factories hand out a single reference.
func TestCreateStartsAtOne(t *testing.T) {
	w := newWidget(nil)
	assert.Equal(t, uint32(1), w.RefCount())
	assert.Equal(t, "widget", w.Class())
	assert.NotEqual(t, uuid.Nil, w.ID())
	assert.Equal(t, uint32(0), w.Release())
	assert.True(t, w.Destroyed())
}

// TestDestructorRunsExactlyOnce verifies the destructor fires only at zero.
func TestDestructorRunsExactlyOnce(t *testing.T) {
	w := newWidget(nil)

	assert.Equal(t, uint32(2), w.AddRef())
	assert.Equal(t, uint32(3), w.AddRef())
	assert.Equal(t, uint32(2), w.Release())
	assert.Equal(t, int32(0), w.destroyed.Load())
	assert.Equal(t, uint32(1), w.Release())
	assert.Equal(t, int32(0), w.destroyed.Load())
	assert.Equal(t, uint32(0), w.Release())
	assert.Equal(t, int32(1), w.destroyed.Load())
}

// TestConcurrentAddRefRelease hammers the counter from independent goroutines.
func TestConcurrentAddRefRelease(t *testing.T) {
	const goroutines = 32
	const rounds = 1000

	w := newWidget(nil)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				w.AddRef()
				w.Release()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint32(1), w.RefCount())
	require.Equal(t, int32(0), w.destroyed.Load())

	// Hand one reference to each goroutine; the last one out destroys.
	for g := 0; g < goroutines; g++ {
		w.AddRef()
	}
	w.Release()

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), w.destroyed.Load())
	assert.True(t, w.Destroyed())
}

// TestDestructorReleasesOwnedReferences verifies cascading release.
func TestDestructorReleasesOwnedReferences(t *testing.T) {
	child := newWidget(nil)
	parent := newWidget(child) // parent now owns the factory reference

	parent.Release()

	assert.Equal(t, int32(1), parent.destroyed.Load())
	assert.Equal(t, int32(1), child.destroyed.Load())
}

// TestQueryInterface covers supported, unknown and unsupported capabilities.
func TestQueryInterface(t *testing.T) {
	w := newWidget(nil)
	defer w.Release()

	facet, err := w.QueryInterface(iidWidget)
	require.NoError(t, err)
	assert.Same(t, w, facet)
	assert.Equal(t, uint32(2), w.RefCount())
	facet.Release()

	unk, err := w.QueryInterface(comobj.IIDUnknown)
	require.NoError(t, err)
	assert.Same(t, w, unk)
	unk.Release()

	before := w.RefCount()
	missing, err := w.QueryInterface(uuid.New())
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, comobj.ErrNoInterface)
	assert.ErrorIs(t, err, comerr.ErrNoInterface)
	assert.Equal(t, before, w.RefCount(), "failed query must not touch the refcount")
}

// TestTypedQuery verifies Query[T] returns typed facets and cleans up on mismatch.
func TestTypedQuery(t *testing.T) {
	w := newWidget(nil)
	defer w.Release()

	p, err := comobj.Query[poker](w, iidWidget)
	require.NoError(t, err)
	assert.Equal(t, "poked", p.Poke())
	assert.Equal(t, uint32(2), w.RefCount())
	p.Release()

	type stranger interface {
		comobj.Unknown
		Stranger()
	}
	s, err := comobj.Query[stranger](w, iidWidget)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, comobj.ErrNoInterface))
	assert.Equal(t, uint32(1), w.RefCount(), "mismatched facet must be released")

	_, err = comobj.Query[poker](nil, iidWidget)
	assert.ErrorIs(t, err, comobj.ErrNoInterface)
}

// TestContractViolationsPanic verifies over-release and double Init are loud.
func TestContractViolationsPanic(t *testing.T) {
	w := newWidget(nil)
	assert.Panics(t, func() { w.Init(comobj.Config{Class: "widget", Primary: w}) })

	w.Release()
	assert.Panics(t, func() { w.Release() })
	assert.Panics(t, func() { w.AddRef() })
}

// TestLiveObjects verifies the leak counter follows create/destroy.
func TestLiveObjects(t *testing.T) {
	before := comobj.LiveObjects()
	w := newWidget(newWidget(nil))
	assert.Equal(t, before+2, comobj.LiveObjects())
	w.Release()
	assert.Equal(t, before, comobj.LiveObjects())
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), comobj.LoggerFrom(context.Background()))

	logger := slog.New(slog.NewTextHandler(nil, nil))
	ctx := comobj.ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, comobj.LoggerFrom(ctx))
}

func TestSafeReleaseNil(t *testing.T) {
	assert.Equal(t, uint32(0), comobj.SafeRelease(nil))
}
