// Package contextstack provides a bounded stack of editing contexts.
//
// A Manager owns one reference per occupied slot. Slot 0 is the current
// context; the highest slot is the inherited base. Push shifts occupants
// towards the base, Pop shifts them back towards the top.
//
//	mgr, _ := contextstack.New()
//	defer mgr.Release()
//
//	ctx, _, _ := mgr.CreateContext(clientID, 0, doc)
//	_ = mgr.Push(ctx)
//	ctx.Release() // the manager holds its own reference
package contextstack

import (
	"log/slog"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/contextstack/internal"
)

// Manager is re-exported from internal package.
type Manager = internal.Manager

// Context is an editing context held by a Manager.
type Context = internal.Context

type (
	ClientID     = internal.ClientID
	EditCookie   = internal.EditCookie
	ContextFlags = internal.ContextFlags
	PopFlags     = internal.PopFlags
)

// PopAll makes Pop release every context.
const PopAll = internal.PopAll

// DefaultCapacity is the slot count used when WithCapacity is not given.
const DefaultCapacity = internal.DefaultCapacity

var (
	IIDDocumentMgr = internal.IIDDocumentMgr
	IIDContext     = internal.IIDContext
)

var (
	ErrStackFull       = comerr.ErrStackFull
	ErrFail            = comerr.ErrFail
	ErrInvalidArgument = comerr.ErrInvalidArgument
)

// Option configures New.
type Option func(*internal.Options)

// WithCapacity sets the number of slots (default 2).
func WithCapacity(n int) Option {
	return func(o *internal.Options) { o.Capacity = n }
}

// WithFloor sets the number of contexts a single Pop may not go below.
// The default 0 only rejects popping an empty stack. PopAll ignores it.
func WithFloor(n int) Option {
	return func(o *internal.Options) { o.Floor = n }
}

// WithLogger sets the logger used by the manager and the contexts it creates.
func WithLogger(l *slog.Logger) Option {
	return func(o *internal.Options) { o.Logger = l }
}

// New creates an empty Manager with refcount 1.
func New(opts ...Option) (*Manager, error) {
	var o internal.Options
	for _, opt := range opts {
		opt(&o)
	}
	return internal.NewManager(o)
}
