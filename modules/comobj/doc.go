// Package comobj provides the object lifetime and interface dispatch model
// shared by every mediakit object.
//
// # Contract
//
//   - Objects are created by factories with refcount = 1
//   - AddRef/Release are lock-free atomic operations (safe from any goroutine)
//   - The destructor runs synchronously on the 1→0 transition, exactly once
//   - QueryInterface is a pure lookup in a facet table fixed at construction;
//     success adds a reference, failure returns ErrNoInterface and a nil facet
//   - Over-release and AddRef after destruction panic (caller contract broken)
//
// # Embedding
//
//	type widget struct {
//	    comobj.Object
//	    child comobj.Unknown
//	}
//
//	func newWidget() *widget {
//	    w := &widget{}
//	    w.Init(comobj.Config{
//	        Class:      "widget",
//	        Primary:    w,
//	        Facets:     map[comobj.IID]comobj.Unknown{IIDWidget: w},
//	        Destructor: func() { comobj.SafeRelease(w.child) },
//	    })
//	    return w
//	}
//
// # Typed queries
//
//	ctx, err := comobj.Query[contextstack.Context](punk, contextstack.IIDContext)
//	if err != nil {
//	    return err // errors.Is(err, comobj.ErrNoInterface)
//	}
//	defer ctx.Release()
//
// # Thread Safety
//
// Only the reference count is synchronized. State owned by embedding types
// (context stacks, transform state) must be protected by the caller when
// shared across goroutines.
package comobj
