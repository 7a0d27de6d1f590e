// Package attributes implements the GUID-keyed typed attribute store owned by
// media transforms and media types.
//
// Semantics:
//   - Keys are unique; setting an existing key overwrites value and tag together
//   - Reads with the wrong expected type fail with ErrTypeMismatch, never coerce
//   - Interface-pointer values are owned: the store adds a reference on Set and
//     releases it on overwrite, delete, or destruction of the store
//   - Item order is insertion order (ItemByIndex is stable until a delete)
package attributes

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

// IIDAttributes identifies the attribute store facet.
var IIDAttributes = uuid.MustParse("2cd2d921-c447-44a7-a13c-4adabfc247e3")

// Errors re-exported from the shared taxonomy.
var (
	ErrNotFound     = comerr.ErrNotFound
	ErrTypeMismatch = comerr.ErrTypeMismatch
	ErrOutOfMemory  = comerr.ErrOutOfMemory
)

type item struct {
	key   uuid.UUID
	value Value
}

// Store is a reference-counted attribute store.
//
// Thread-safety: entries are guarded by an RWMutex so concurrent readers never
// observe a half-written entry. References released as a side effect of a
// mutation are dropped after the lock is released.
type Store struct {
	comobj.Object

	mu       sync.RWMutex
	items    []item
	index    map[uuid.UUID]int
	maxItems int
}

// Option configures a Store.
type Option func(*options)

type options struct {
	maxItems int
	logger   *slog.Logger
}

// WithMaxItems caps the number of entries; inserts beyond it fail with
// ErrOutOfMemory. Zero means unbounded.
func WithMaxItems(n int) Option {
	return func(o *options) { o.maxItems = n }
}

// WithLogger sets the logger for lifecycle traces.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates an empty store with refcount 1. capacityHint preallocates room
// for that many entries.
func New(capacityHint int, opts ...Option) (*Store, error) {
	if capacityHint < 0 {
		return nil, fmt.Errorf("attributes: negative capacity hint %d: %w", capacityHint, comerr.ErrInvalidArgument)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		items:    make([]item, 0, capacityHint),
		index:    make(map[uuid.UUID]int, capacityHint),
		maxItems: o.maxItems,
	}
	s.Init(comobj.Config{
		Class:      "attributes",
		Primary:    s,
		Facets:     map[comobj.IID]comobj.Unknown{IIDAttributes: s},
		Destructor: s.destroy,
		Logger:     o.logger,
	})
	return s, nil
}

func (s *Store) destroy() {
	s.mu.Lock()
	dropped := s.items
	s.items = nil
	s.index = nil
	s.mu.Unlock()

	releaseValues(dropped)
}

func releaseValues(items []item) {
	for _, it := range items {
		if it.value.typ == TypeUnknown {
			comobj.SafeRelease(it.value.unk)
		}
	}
}

// Set inserts or overwrites key. A previously stored interface pointer is
// released; a new one gains a reference owned by the store.
func (s *Store) Set(key uuid.UUID, v Value) error {
	if v.typ == TypeEmpty {
		return fmt.Errorf("attributes: set %s with empty value: %w", key, comerr.ErrInvalidArgument)
	}
	if v.typ == TypeUnknown && v.unk == nil {
		return fmt.Errorf("attributes: set %s with nil interface: %w", key, comerr.ErrInvalidArgument)
	}

	s.mu.Lock()
	old, err := s.setLocked(key, v)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if old.typ == TypeUnknown {
		comobj.SafeRelease(old.unk)
	}
	return nil
}

// setLocked stores v and returns the value it replaced. Caller holds s.mu.
func (s *Store) setLocked(key uuid.UUID, v Value) (Value, error) {
	if v.typ == TypeBlob {
		v.blob = append([]byte(nil), v.blob...)
	}

	if i, ok := s.index[key]; ok {
		if v.typ == TypeUnknown {
			v.unk.AddRef()
		}
		old := s.items[i].value
		s.items[i].value = v
		return old, nil
	}

	if s.maxItems > 0 && len(s.items) >= s.maxItems {
		return Value{}, fmt.Errorf("attributes: store holds %d items: %w", len(s.items), ErrOutOfMemory)
	}

	if v.typ == TypeUnknown {
		v.unk.AddRef()
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, item{key: key, value: v})
	return Value{}, nil
}

// SetUint32 stores a uint32 under key.
func (s *Store) SetUint32(key uuid.UUID, v uint32) error { return s.Set(key, Uint32Value(v)) }

// SetUint64 stores a uint64 under key.
func (s *Store) SetUint64(key uuid.UUID, v uint64) error { return s.Set(key, Uint64Value(v)) }

// SetDouble stores a float64 under key.
func (s *Store) SetDouble(key uuid.UUID, v float64) error { return s.Set(key, DoubleValue(v)) }

// SetGUID stores a GUID under key.
func (s *Store) SetGUID(key uuid.UUID, v uuid.UUID) error { return s.Set(key, GUIDValue(v)) }

// SetString stores a string under key.
func (s *Store) SetString(key uuid.UUID, v string) error { return s.Set(key, StringValue(v)) }

// SetBlob stores a copy of v under key.
func (s *Store) SetBlob(key uuid.UUID, v []byte) error { return s.Set(key, BlobValue(v)) }

// SetUnknown stores an interface pointer under key; the store adds a reference.
func (s *Store) SetUnknown(key uuid.UUID, v comobj.Unknown) error { return s.Set(key, UnknownValue(v)) }

// Item returns the raw value stored under key. Interface pointers are
// returned without an added reference; use GetUnknown to own one.
func (s *Store) Item(key uuid.UUID) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[key]
	if !ok {
		return Value{}, fmt.Errorf("attributes: key %s: %w", key, ErrNotFound)
	}
	return s.items[i].value, nil
}

// ItemType returns the tag stored under key.
func (s *Store) ItemType(key uuid.UUID) (ValueType, error) {
	v, err := s.Item(key)
	if err != nil {
		return TypeEmpty, err
	}
	return v.typ, nil
}

// ItemByIndex returns the i-th entry in insertion order.
func (s *Store) ItemByIndex(i int) (uuid.UUID, Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.items) {
		return uuid.Nil, Value{}, fmt.Errorf("attributes: index %d of %d: %w", i, len(s.items), comerr.ErrInvalidArgument)
	}
	return s.items[i].key, s.items[i].value, nil
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the value under key after checking its tag.
func (s *Store) Get(key uuid.UUID, expected ValueType) (Value, error) {
	v, err := s.Item(key)
	if err != nil {
		return Value{}, err
	}
	if v.typ != expected {
		return Value{}, fmt.Errorf("attributes: key %s: %w", key, v.mismatch(expected))
	}
	return v, nil
}

// GetUint32 returns the uint32 stored under key.
func (s *Store) GetUint32(key uuid.UUID) (uint32, error) {
	v, err := s.Get(key, TypeUint32)
	if err != nil {
		return 0, err
	}
	return v.Uint32()
}

// GetUint64 returns the uint64 stored under key.
func (s *Store) GetUint64(key uuid.UUID) (uint64, error) {
	v, err := s.Get(key, TypeUint64)
	if err != nil {
		return 0, err
	}
	return v.Uint64()
}

// GetDouble returns the float64 stored under key.
func (s *Store) GetDouble(key uuid.UUID) (float64, error) {
	v, err := s.Get(key, TypeDouble)
	if err != nil {
		return 0, err
	}
	return v.Double()
}

// GetGUID returns the GUID stored under key.
func (s *Store) GetGUID(key uuid.UUID) (uuid.UUID, error) {
	v, err := s.Get(key, TypeGUID)
	if err != nil {
		return uuid.Nil, err
	}
	return v.GUID()
}

// GetString returns the string stored under key.
func (s *Store) GetString(key uuid.UUID) (string, error) {
	v, err := s.Get(key, TypeString)
	if err != nil {
		return "", err
	}
	return v.Str()
}

// GetBlob returns a copy of the blob stored under key.
func (s *Store) GetBlob(key uuid.UUID) ([]byte, error) {
	v, err := s.Get(key, TypeBlob)
	if err != nil {
		return nil, err
	}
	return v.Blob()
}

// GetUnknown returns the interface pointer stored under key with an added
// reference owned by the caller.
func (s *Store) GetUnknown(key uuid.UUID) (comobj.Unknown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[key]
	if !ok {
		return nil, fmt.Errorf("attributes: key %s: %w", key, ErrNotFound)
	}
	v := s.items[i].value
	if v.typ != TypeUnknown {
		return nil, fmt.Errorf("attributes: key %s: %w", key, v.mismatch(TypeUnknown))
	}
	v.unk.AddRef()
	return v.unk, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key uuid.UUID) {
	s.mu.Lock()
	i, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindexLocked()
	s.mu.Unlock()

	releaseValues([]item{removed})
}

// DeleteAll removes every entry.
func (s *Store) DeleteAll() {
	s.mu.Lock()
	dropped := s.items
	s.items = make([]item, 0, cap(dropped))
	s.index = make(map[uuid.UUID]int, cap(dropped))
	s.mu.Unlock()

	releaseValues(dropped)
}

func (s *Store) reindexLocked() {
	s.index = make(map[uuid.UUID]int, len(s.items))
	for i, it := range s.items {
		s.index[it.key] = i
	}
}

// snapshot copies the entries, adding a reference to every interface value.
// Callers must release the snapshot with releaseValues.
func (s *Store) snapshot() []item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]item, len(s.items))
	copy(out, s.items)
	for _, it := range out {
		if it.value.typ == TypeUnknown {
			it.value.unk.AddRef()
		}
	}
	return out
}

// Merge copies the entries of other into s. On key collision the existing
// entry is kept (overwrite=false) or replaced with Set semantics.
//
// An ErrOutOfMemory part-way through leaves the entries merged so far.
func (s *Store) Merge(other *Store, overwrite bool) error {
	if other == nil {
		return fmt.Errorf("attributes: merge from nil store: %w", comerr.ErrInvalidArgument)
	}
	if other == s {
		return nil
	}

	src := other.snapshot()
	defer releaseValues(src)

	for _, it := range src {
		if !overwrite {
			if _, err := s.Item(it.key); err == nil {
				continue
			}
		}
		if err := s.Set(it.key, it.value); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether both stores hold the same keys with equal values.
func (s *Store) Equal(other *Store) bool {
	if other == nil {
		return false
	}
	if other == s {
		return true
	}

	mine := s.snapshot()
	defer releaseValues(mine)
	theirs := other.snapshot()
	defer releaseValues(theirs)

	if len(mine) != len(theirs) {
		return false
	}
	byKey := make(map[uuid.UUID]Value, len(theirs))
	for _, it := range theirs {
		byKey[it.key] = it.value
	}
	for _, it := range mine {
		v, ok := byKey[it.key]
		if !ok || !it.value.Equal(v) {
			return false
		}
	}
	return true
}
