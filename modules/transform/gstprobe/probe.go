// Package gstprobe checks GStreamer element availability for transforms.
//
// A Probe implements transform.SupportChecker. Results are cached per element
// name: GStreamer plugin registration does not change while a process runs.
package gstprobe

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
)

var initOnce sync.Once

// Probe creates throwaway elements to verify plugins are installed.
type Probe struct {
	mu      sync.Mutex
	results map[string]error
	create  func(name string) error
	logger  *slog.Logger
}

// New returns a probe backed by the GStreamer registry.
func New(logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{
		results: make(map[string]error),
		create:  createElement,
		logger:  logger,
	}
}

// CheckElement returns nil when an element called name can be created.
func (p *Probe) CheckElement(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.results[name]; ok {
		return err
	}

	err := p.create(name)
	p.results[name] = err

	if err != nil {
		p.logger.Warn("gstprobe: element unavailable", "element", name, "error", err)
	} else {
		p.logger.Debug("gstprobe: element available", "element", name)
	}
	return err
}

func createElement(name string) error {
	// Safe to call multiple times, but only needed once.
	initOnce.Do(func() { gst.Init(nil) })

	elem, err := gst.NewElement(name)
	if err != nil {
		return fmt.Errorf("%s not available (install the plugin providing it): %w", name, err)
	}
	elem.SetState(gst.StateNull)
	return nil
}
