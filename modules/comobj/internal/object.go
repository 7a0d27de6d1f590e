// Package internal implements the reference-counted object base.
//
// This package is INTERNAL - clients MUST use public API in parent package.
package internal

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/metrics"
)

// IID identifies a capability (interface contract) an object may expose.
type IID = uuid.UUID

// IIDUnknown is answered by every object with its primary facet.
var IIDUnknown = uuid.MustParse("00000000-0000-0000-c000-000000000046")

// Unknown is the minimal contract every facet implements.
type Unknown interface {
	QueryInterface(iid IID) (Unknown, error)
	AddRef() uint32
	Release() uint32
}

// Object lifecycle states (stored in Object.state).
const (
	stateNew uint32 = iota
	stateLive
	stateDestroyed
)

// liveObjects counts initialized objects not yet destroyed (process-wide).
var liveObjects atomic.Int64

// LiveObjects returns the number of objects initialized but not yet destroyed.
func LiveObjects() int64 {
	return liveObjects.Load()
}

// Config binds an Object to its owner.
type Config struct {
	// Class names the concrete type (logs and metrics label).
	Class string

	// Primary is the facet returned for IIDUnknown. Required.
	Primary Unknown

	// Facets maps additional capability ids to facets.
	Facets map[IID]Unknown

	// Destructor runs exactly once when the refcount reaches zero.
	// It must release every reference the owner holds.
	Destructor func()

	// Logger receives lifecycle traces. Defaults to slog.Default().
	Logger *slog.Logger
}

// Object is the embeddable reference-counting base.
//
// Thread-safety:
//   - AddRef/Release are lock-free atomics, safe from any goroutine
//   - QueryInterface reads the facet table, which is immutable after Init
//   - Owner state is NOT synchronized here (callers provide exclusion)
type Object struct {
	refs  atomic.Int32
	state atomic.Uint32

	id      uuid.UUID
	class   string
	primary Unknown
	facets  map[IID]Unknown
	destroy func()
	logger  *slog.Logger
}

// Init binds facets and destructor and sets the refcount to 1.
// Calling Init twice panics: the facet table is fixed at construction.
func (o *Object) Init(cfg Config) {
	if cfg.Primary == nil {
		panic("comobj: Init without primary facet")
	}
	if !o.state.CompareAndSwap(stateNew, stateLive) {
		panic(fmt.Sprintf("comobj: %s already initialized", o.class))
	}

	o.id = uuid.New()
	o.class = cfg.Class
	o.primary = cfg.Primary
	o.destroy = cfg.Destructor
	o.logger = cfg.Logger
	if o.logger == nil {
		o.logger = slog.Default()
	}

	o.facets = make(map[IID]Unknown, len(cfg.Facets)+1)
	for iid, facet := range cfg.Facets {
		o.facets[iid] = facet
	}
	o.facets[IIDUnknown] = cfg.Primary

	o.refs.Store(1)
	liveObjects.Add(1)
	metrics.ObjectsCreated.WithLabelValues(o.class).Inc()

	o.logger.Debug("comobj: object created",
		"class", o.class,
		"object_id", o.id,
	)
}

// AddRef increments the reference count and returns the new value.
func (o *Object) AddRef() uint32 {
	if o.state.Load() != stateLive {
		panic(fmt.Sprintf("comobj: AddRef on %s object that is not live", o.class))
	}
	return uint32(o.refs.Add(1))
}

// Release decrements the reference count. The transition 1→0 runs the
// destructor synchronously, exactly once.
func (o *Object) Release() uint32 {
	n := o.refs.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("comobj: too many releases on %s object %s", o.class, o.id))
	}
	if n > 0 {
		return uint32(n)
	}

	// Single transition guard: only the goroutine that wins the CAS destroys.
	if !o.state.CompareAndSwap(stateLive, stateDestroyed) {
		return 0
	}

	o.logger.Debug("comobj: destroying object",
		"class", o.class,
		"object_id", o.id,
	)

	if o.destroy != nil {
		o.destroy()
	}

	liveObjects.Add(-1)
	metrics.ObjectsDestroyed.WithLabelValues(o.class).Inc()

	return 0
}

// QueryInterface returns the facet bound to iid with an added reference.
// Unsupported capabilities return (nil, ErrNoInterface) and leave the
// refcount untouched.
func (o *Object) QueryInterface(iid IID) (Unknown, error) {
	facet, ok := o.facets[iid]
	if !ok {
		metrics.QueryFailures.WithLabelValues(o.class).Inc()
		o.logger.Warn("comobj: unsupported interface",
			"class", o.class,
			"iid", iid,
		)
		return nil, fmt.Errorf("%s does not implement %s: %w", o.class, iid, ErrNoInterface)
	}

	o.AddRef()
	return facet, nil
}

// RefCount returns the current reference count (diagnostics only).
func (o *Object) RefCount() uint32 {
	n := o.refs.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// Destroyed reports whether the destructor has run.
func (o *Object) Destroyed() bool {
	return o.state.Load() == stateDestroyed
}

// ID returns the object id assigned at Init.
func (o *Object) ID() uuid.UUID {
	return o.id
}

// Class returns the class name given at Init.
func (o *Object) Class() string {
	return o.class
}

// Logger returns the logger bound at Init.
func (o *Object) Logger() *slog.Logger {
	return o.logger
}
