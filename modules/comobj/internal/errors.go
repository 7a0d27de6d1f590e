package internal

import "github.com/e7canasta/orion-mediakit/modules/comerr"

// ErrNoInterface is returned by QueryInterface for unsupported capabilities.
var ErrNoInterface = comerr.ErrNoInterface
