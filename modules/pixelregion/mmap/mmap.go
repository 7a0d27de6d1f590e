//go:build unix

// Package mmap maps files read-only for pixelregion.LoadFromFile.
package mmap

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Mapper implements pixelregion.FileMapper with mmap(2).
type Mapper struct{}

// New returns a Mapper.
func New() *Mapper {
	return &Mapper{}
}

// Map maps the whole file at path read-only and private.
func (m *Mapper) Map(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "mmap: open")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "mmap: stat")
	}
	size := st.Size()
	if size == 0 {
		return nil, fmt.Errorf("mmap: %s is empty: %w", path, comerr.ErrInvalidArgument)
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s too large (%d bytes): %w", path, size, comerr.ErrOutOfMemory)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: map %s", path)
	}
	return data, nil
}

// Unmap releases a mapping returned by Map.
func (m *Mapper) Unmap(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return errors.Wrap(err, "mmap: unmap")
	}
	return nil
}
