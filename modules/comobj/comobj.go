// Package comobj implements reference-counted objects reached through
// capability-checked facets.
//
// Lifecycle: a factory embeds Object, calls Init (refcount = 1) and hands out
// the primary facet. Every duplicated handle is an AddRef; every handle drop
// is a Release. The 1→0 transition runs the owner's destructor exactly once.
//
// See doc.go for the full contract.
package comobj

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/e7canasta/orion-mediakit/modules/comobj/internal"
)

// IID is re-exported from internal package.
type IID = internal.IID

// Unknown is the contract every facet implements.
type Unknown = internal.Unknown

// Object is the embeddable reference-counting base.
// See internal/object.go for full documentation.
type Object = internal.Object

// Config binds an Object to its owner (see Object.Init).
type Config = internal.Config

// IIDUnknown is answered by every object with its primary facet.
var IIDUnknown = internal.IIDUnknown

// ErrNoInterface is returned for unsupported capability queries.
var ErrNoInterface = internal.ErrNoInterface

// LiveObjects returns the number of objects initialized but not yet destroyed.
// Intended for leak checks in tests and diagnostics.
func LiveObjects() int64 {
	return internal.LiveObjects()
}

// Query asks u for the facet iid and returns it typed as T.
//
// On success the caller owns one reference through the returned facet and
// must Release it. On failure the zero T is returned and no reference is
// held: a facet registered under iid that does not implement T is released
// before reporting ErrNoInterface.
func Query[T any](u Unknown, iid IID) (T, error) {
	var zero T
	if u == nil {
		return zero, fmt.Errorf("query %s on nil object: %w", iid, ErrNoInterface)
	}

	facet, err := u.QueryInterface(iid)
	if err != nil {
		return zero, err
	}

	typed, ok := facet.(T)
	if !ok {
		facet.Release()
		return zero, fmt.Errorf("facet %s has unexpected type %T: %w", iid, facet, ErrNoInterface)
	}
	return typed, nil
}

// SafeRelease releases u if it is non-nil and returns the new count.
func SafeRelease(u Unknown) uint32 {
	if u == nil {
		return 0
	}
	return u.Release()
}

// ContextWithLogger returns a copy of ctx carrying logger for pipeline calls.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return internal.ContextWithLogger(ctx, logger)
}

// LoggerFrom returns the logger carried by ctx, or slog.Default().
func LoggerFrom(ctx context.Context) *slog.Logger {
	return internal.LoggerFrom(ctx)
}
