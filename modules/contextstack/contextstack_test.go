package contextstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-mediakit/modules/comobj"
	"github.com/e7canasta/orion-mediakit/modules/contextstack"
)

type document struct {
	comobj.Object
	destroyed int
}

func newDocument() *document {
	d := &document{}
	d.Init(comobj.Config{
		Class:      "document",
		Primary:    d,
		Destructor: func() { d.destroyed++ },
	})
	return d
}

type inspect interface {
	RefCount() uint32
	Destroyed() bool
}

func refs(c contextstack.Context) uint32 {
	return c.(inspect).RefCount()
}

func newManager(t *testing.T, opts ...contextstack.Option) *contextstack.Manager {
	t.Helper()
	m, err := contextstack.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !m.Destroyed() {
			m.Release()
		}
	})
	return m
}

func newContext(t *testing.T, m *contextstack.Manager) contextstack.Context {
	t.Helper()
	c, cookie, err := m.CreateContext(7, 0, nil)
	require.NoError(t, err)
	require.NotZero(t, cookie)
	return c
}

func TestPushShiftsTowardsBase(t *testing.T) {
	m := newManager(t)
	a := newContext(t, m)
	b := newContext(t, m)
	defer a.Release()
	defer b.Release()

	require.NoError(t, m.Push(a))
	assert.Equal(t, uint32(2), refs(a))

	top, ok := m.Top()
	require.True(t, ok)
	assert.Same(t, a, top)
	top.Release()

	_, ok = m.Base()
	assert.False(t, ok, "base slot vacant with one context")

	require.NoError(t, m.Push(b))

	top, ok = m.Top()
	require.True(t, ok)
	assert.Same(t, b, top)
	top.Release()

	base, ok := m.Base()
	require.True(t, ok)
	assert.Same(t, a, base)
	base.Release()

	assert.Equal(t, 2, m.Len())
}

func TestPushOnFullStack(t *testing.T) {
	m := newManager(t)
	a, b, c := newContext(t, m), newContext(t, m), newContext(t, m)
	defer a.Release()
	defer b.Release()
	defer c.Release()

	require.NoError(t, m.Push(a))
	require.NoError(t, m.Push(b))

	for i := 0; i < 3; i++ {
		err := m.Push(c)
		assert.ErrorIs(t, err, contextstack.ErrStackFull)
	}

	assert.Equal(t, uint32(1), refs(c), "rejected push must not retain")
	assert.Equal(t, uint32(2), refs(a))
	assert.Equal(t, uint32(2), refs(b))

	got := m.Contexts()
	require.Len(t, got, 2)
	assert.Same(t, b, got[0])
	assert.Same(t, a, got[1])
	for _, ctx := range got {
		ctx.Release()
	}
}

func TestPushInvalid(t *testing.T) {
	m := newManager(t)

	err := m.Push(nil)
	assert.ErrorIs(t, err, contextstack.ErrInvalidArgument)

	doc := newDocument()
	defer doc.Release()

	err = m.Push(doc)
	assert.ErrorIs(t, err, contextstack.ErrInvalidArgument)
	assert.Equal(t, uint32(1), doc.RefCount())
	assert.Zero(t, m.Len())
}

func TestPop(t *testing.T) {
	tests := []struct {
		name    string
		pushed  int
		flags   contextstack.PopFlags
		wantErr error
		wantLen int
	}{
		{"empty", 0, 0, contextstack.ErrFail, 0},
		{"one", 1, 0, nil, 0},
		{"two", 2, 0, nil, 1},
		{"unknown flag", 2, 0x2, contextstack.ErrInvalidArgument, 2},
		{"all on empty", 0, contextstack.PopAll, nil, 0},
		{"all on one", 1, contextstack.PopAll, nil, 0},
		{"all on full", 2, contextstack.PopAll, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t)
			var held []contextstack.Context
			for i := 0; i < tt.pushed; i++ {
				c := newContext(t, m)
				require.NoError(t, m.Push(c))
				held = append(held, c)
			}

			err := m.Pop(tt.flags)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLen, m.Len())

			for _, c := range held {
				c.Release()
			}
		})
	}
}

func TestPopReleasesTopAndShifts(t *testing.T) {
	m := newManager(t)
	a, b := newContext(t, m), newContext(t, m)
	require.NoError(t, m.Push(a))
	require.NoError(t, m.Push(b))
	b.Release()

	require.NoError(t, m.Pop(0))
	assert.True(t, b.(inspect).Destroyed())

	top, ok := m.Top()
	require.True(t, ok)
	assert.Same(t, a, top)
	top.Release()

	_, ok = m.Base()
	assert.False(t, ok)

	a.Release()
}

func TestFloor(t *testing.T) {
	m := newManager(t, contextstack.WithFloor(1))
	a := newContext(t, m)
	defer a.Release()
	require.NoError(t, m.Push(a))

	err := m.Pop(0)
	assert.ErrorIs(t, err, contextstack.ErrFail)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, uint32(2), refs(a))

	require.NoError(t, m.Pop(contextstack.PopAll))
	assert.Zero(t, m.Len())
}

func TestCapacity(t *testing.T) {
	m := newManager(t, contextstack.WithCapacity(3))
	assert.Equal(t, 3, m.Capacity())

	var held []contextstack.Context
	for i := 0; i < 3; i++ {
		c := newContext(t, m)
		require.NoError(t, m.Push(c))
		held = append(held, c)
	}
	extra := newContext(t, m)
	assert.ErrorIs(t, m.Push(extra), contextstack.ErrStackFull)
	extra.Release()

	base, ok := m.Base()
	require.True(t, ok)
	assert.Same(t, held[0], base)
	base.Release()

	for _, c := range held {
		c.Release()
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := contextstack.New(contextstack.WithCapacity(-1))
	assert.ErrorIs(t, err, contextstack.ErrInvalidArgument)

	_, err = contextstack.New(contextstack.WithFloor(3))
	assert.ErrorIs(t, err, contextstack.ErrInvalidArgument)
}

func TestDestructorReleasesSlots(t *testing.T) {
	m, err := contextstack.New()
	require.NoError(t, err)

	a, b := newContext(t, m), newContext(t, m)
	require.NoError(t, m.Push(a))
	require.NoError(t, m.Push(b))
	a.Release()
	b.Release()

	assert.False(t, a.(inspect).Destroyed())
	assert.Equal(t, uint32(0), m.Release())
	assert.True(t, a.(inspect).Destroyed())
	assert.True(t, b.(inspect).Destroyed())
}

func TestContextHoldsDocument(t *testing.T) {
	m := newManager(t)
	doc := newDocument()

	c, _, err := m.CreateContext(1, 0x4, doc)
	require.NoError(t, err)
	assert.Equal(t, contextstack.ClientID(1), c.ClientID())
	assert.Equal(t, contextstack.ContextFlags(0x4), c.Flags())
	assert.Equal(t, uint32(2), doc.RefCount())

	got := c.Document()
	require.NotNil(t, got)
	assert.Equal(t, uint32(3), doc.RefCount())
	got.Release()

	c.Release()
	assert.Equal(t, uint32(1), doc.RefCount())

	doc.Release()
	assert.Equal(t, 1, doc.destroyed)
}

func TestEditCookiesAreDistinct(t *testing.T) {
	m := newManager(t)
	a, ca, err := m.CreateContext(1, 0, nil)
	require.NoError(t, err)
	b, cb, err := m.CreateContext(1, 0, nil)
	require.NoError(t, err)
	defer a.Release()
	defer b.Release()

	assert.NotEqual(t, ca, cb)
	assert.Equal(t, ca, a.EditCookie())
	assert.Nil(t, a.Document())
}

func TestManagerFacets(t *testing.T) {
	m := newManager(t)

	mgr, err := comobj.Query[*contextstack.Manager](m, contextstack.IIDDocumentMgr)
	require.NoError(t, err)
	assert.Same(t, m, mgr)
	mgr.Release()

	_, err = m.QueryInterface(contextstack.IIDContext)
	assert.ErrorIs(t, err, comobj.ErrNoInterface)
	assert.Equal(t, uint32(1), m.RefCount())
}
