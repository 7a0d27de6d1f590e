// Package internal implements the bounded context stack.
//
// This package is INTERNAL - clients MUST use public API in parent package.
package internal

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

// IIDDocumentMgr identifies the manager facet.
var IIDDocumentMgr = uuid.MustParse("aa80e7f4-2021-11d2-93e0-0060b067b86e")

// DefaultCapacity is the number of layered contexts a Manager holds:
// one current context and one inherited base.
const DefaultCapacity = 2

// PopFlags selects Pop behavior.
type PopFlags uint32

// PopAll releases every context instead of only the top.
const PopAll PopFlags = 0x1

// Options configures a Manager.
type Options struct {
	Capacity int
	Floor    int
	Logger   *slog.Logger
}

// Manager is a bounded stack of owned context references.
//
// Layout: slots[0] is the top, slots[capacity-1] is the base. Occupied slots
// are always contiguous from the top.
//
// Thread-safety: only the refcount is synchronized; callers serialize
// Push/Pop/Top/Base on a shared Manager.
type Manager struct {
	comobj.Object

	slots []Context
	floor int
}

// NewManager creates a manager with refcount 1.
func NewManager(opts Options) (*Manager, error) {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 1 {
		return nil, fmt.Errorf("contextstack: capacity %d: %w", capacity, comerr.ErrInvalidArgument)
	}
	if opts.Floor < 0 || opts.Floor > capacity {
		return nil, fmt.Errorf("contextstack: floor %d outside [0,%d]: %w", opts.Floor, capacity, comerr.ErrInvalidArgument)
	}

	m := &Manager{
		slots: make([]Context, capacity),
		floor: opts.Floor,
	}
	m.Init(comobj.Config{
		Class:      "documentmgr",
		Primary:    m,
		Facets:     map[comobj.IID]comobj.Unknown{IIDDocumentMgr: m},
		Destructor: m.releaseAll,
		Logger:     opts.Logger,
	})
	return m, nil
}

// Capacity returns the maximum number of contexts.
func (m *Manager) Capacity() int {
	return len(m.slots)
}

// Len returns the number of occupied slots.
func (m *Manager) Len() int {
	n := 0
	for _, c := range m.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// CreateContext creates a context owned by client. doc, when non-nil, is
// held by the context until it is destroyed. The context is not pushed.
func (m *Manager) CreateContext(client ClientID, flags ContextFlags, doc comobj.Unknown) (Context, EditCookie, error) {
	c := newContext(client, flags, doc, m.Logger())

	m.Logger().Debug("contextstack: context created",
		"manager_id", m.ID(),
		"client_id", client,
		"edit_cookie", c.cookie,
	)
	return c, c.cookie, nil
}

// Push makes ctx the new top, shifting current occupants towards the base.
//
// Errors:
//   - ErrStackFull: base slot occupied (slots unchanged)
//   - ErrInvalidArgument: ctx nil or does not expose IIDContext
func (m *Manager) Push(ctx comobj.Unknown) error {
	last := len(m.slots) - 1
	if m.slots[last] != nil {
		return fmt.Errorf("contextstack: push on %d contexts: %w", len(m.slots), comerr.ErrStackFull)
	}

	if ctx == nil {
		return fmt.Errorf("contextstack: push nil context: %w", comerr.ErrInvalidArgument)
	}
	checked, err := comobj.Query[Context](ctx, IIDContext)
	if err != nil {
		return fmt.Errorf("contextstack: push object without context facet: %v: %w", err, comerr.ErrInvalidArgument)
	}

	// The base slot is empty (checked above), so the shift displaces nothing.
	copy(m.slots[1:], m.slots[:last])
	m.slots[0] = checked

	m.Logger().Debug("contextstack: context pushed",
		"manager_id", m.ID(),
		"depth", m.Len(),
	)
	return nil
}

// Pop releases the top context (flags == 0) or every context (PopAll).
//
// Errors:
//   - ErrInvalidArgument: unrecognized flags
//   - ErrFail: the stack is at its floor (top empty, or only Floor contexts left)
func (m *Manager) Pop(flags PopFlags) error {
	if flags == PopAll {
		m.releaseAll()
		m.Logger().Debug("contextstack: all contexts popped", "manager_id", m.ID())
		return nil
	}

	if flags != 0 {
		return fmt.Errorf("contextstack: pop flags %#x: %w", uint32(flags), comerr.ErrInvalidArgument)
	}

	depth := m.Len()
	if m.slots[0] == nil || depth <= m.floor {
		return fmt.Errorf("contextstack: cannot pop below floor (depth %d, floor %d): %w", depth, m.floor, comerr.ErrFail)
	}

	top := m.slots[0]
	last := len(m.slots) - 1
	copy(m.slots[:last], m.slots[1:])
	m.slots[last] = nil
	top.Release()

	m.Logger().Debug("contextstack: context popped",
		"manager_id", m.ID(),
		"depth", depth-1,
	)
	return nil
}

// Top returns the top context with an added reference, or false when empty.
func (m *Manager) Top() (Context, bool) {
	return m.slot(0)
}

// Base returns the base (highest index) slot with an added reference, or
// false when that slot is vacant.
func (m *Manager) Base() (Context, bool) {
	return m.slot(len(m.slots) - 1)
}

func (m *Manager) slot(i int) (Context, bool) {
	c := m.slots[i]
	if c == nil {
		return nil, false
	}
	c.AddRef()
	return c, true
}

// Contexts returns the occupied slots top to base, each with an added
// reference the caller must release.
func (m *Manager) Contexts() []Context {
	out := make([]Context, 0, len(m.slots))
	for _, c := range m.slots {
		if c == nil {
			break
		}
		c.AddRef()
		out = append(out, c)
	}
	return out
}

// releaseAll vacates every slot. Slots are cleared before the releases run
// so a context destructor never observes a dangling slot.
func (m *Manager) releaseAll() {
	held := make([]Context, 0, len(m.slots))
	for i, c := range m.slots {
		if c != nil {
			held = append(held, c)
			m.slots[i] = nil
		}
	}
	for _, c := range held {
		c.Release()
	}
}
