package internal

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-mediakit/modules/comobj"
)

// IIDContext identifies the context facet accepted by Manager.Push.
var IIDContext = uuid.MustParse("aa80e7fd-2021-11d2-93e0-0060b067b86e")

// ClientID identifies the client that owns a context.
type ClientID uint32

// EditCookie identifies the edit session granted at context creation.
type EditCookie uint32

// ContextFlags are the creation flags recorded on a context.
type ContextFlags uint32

// Context is an editing context layered by a Manager.
type Context interface {
	comobj.Unknown

	// ClientID returns the owning client.
	ClientID() ClientID

	// EditCookie returns the cookie granted at creation.
	EditCookie() EditCookie

	// Flags returns the creation flags.
	Flags() ContextFlags

	// Document returns the backing document object with an added
	// reference, or nil when the context was created without one.
	Document() comobj.Unknown
}

var nextCookie atomic.Uint32

// editContext is the Context implementation returned by CreateContext.
type editContext struct {
	comobj.Object

	client ClientID
	cookie EditCookie
	flags  ContextFlags
	doc    comobj.Unknown
}

func newContext(client ClientID, flags ContextFlags, doc comobj.Unknown, logger *slog.Logger) *editContext {
	c := &editContext{
		client: client,
		cookie: EditCookie(nextCookie.Add(1)),
		flags:  flags,
		doc:    doc,
	}
	if doc != nil {
		doc.AddRef()
	}

	c.Init(comobj.Config{
		Class:      "context",
		Primary:    c,
		Facets:     map[comobj.IID]comobj.Unknown{IIDContext: c},
		Destructor: c.destroy,
		Logger:     logger,
	})
	return c
}

func (c *editContext) destroy() {
	comobj.SafeRelease(c.doc)
	c.doc = nil
}

func (c *editContext) ClientID() ClientID { return c.client }

func (c *editContext) EditCookie() EditCookie { return c.cookie }

func (c *editContext) Flags() ContextFlags { return c.flags }

func (c *editContext) Document() comobj.Unknown {
	if c.doc != nil {
		c.doc.AddRef()
	}
	return c.doc
}
