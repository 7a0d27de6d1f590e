package pixelregion

import (
	"fmt"
	"sync"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// SurfaceDesc describes a lockable surface or volume.
type SurfaceDesc struct {
	Width, Height, Depth int
	Format               Format
}

// Box returns the box covering the whole surface.
func (d SurfaceDesc) Box() Box {
	return Box{Right: d.Width, Bottom: d.Height, Back: d.Depth}
}

// LockFlags modify LockBox.
type LockFlags uint32

// LockReadOnly locks without intent to write.
const LockReadOnly LockFlags = 0x10

// LockedBox addresses locked texels. Bits starts at the locked box origin;
// rows and slices are RowPitch and SlicePitch bytes apart. For block
// formats a row is a row of blocks.
type LockedBox struct {
	Bits       []byte
	RowPitch   int
	SlicePitch int
}

// Surface is the lockable destination (or source) of a region load.
//
// A single box may be locked at a time. The box passed to LockBox must be
// aligned to the format's block grid.
type Surface interface {
	Desc() SurfaceDesc
	LockBox(box *Box, flags LockFlags) (LockedBox, error)
	UnlockBox() error
}

// ErrLocked is returned by MemoryVolume for a second lock.
var ErrLocked = fmt.Errorf("pixelregion: volume already locked: %w", comerr.ErrFail)

// ErrNotLocked is returned by MemoryVolume for an unlock without a lock.
var ErrNotLocked = fmt.Errorf("pixelregion: volume not locked: %w", comerr.ErrFail)

// MemoryVolume is a Surface backed by a byte slice.
type MemoryVolume struct {
	desc       SurfaceDesc
	format     *Descriptor
	rowPitch   int
	slicePitch int
	data       []byte

	mu     sync.Mutex
	locked bool
}

// NewMemoryVolume allocates a zeroed width x height x depth volume.
func NewMemoryVolume(width, height, depth int, format Format) (*MemoryVolume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("pixelregion: volume size %dx%dx%d: %w", width, height, depth, comerr.ErrInvalidArgument)
	}
	f, err := Lookup(format)
	if err != nil {
		return nil, err
	}

	rowPitch := f.RowBytes(width)
	slicePitch := rowPitch * f.Rows(height)
	return &MemoryVolume{
		desc:       SurfaceDesc{Width: width, Height: height, Depth: depth, Format: format},
		format:     f,
		rowPitch:   rowPitch,
		slicePitch: slicePitch,
		data:       make([]byte, slicePitch*depth),
	}, nil
}

func (v *MemoryVolume) Desc() SurfaceDesc { return v.desc }

// RowPitch returns the byte distance between block rows.
func (v *MemoryVolume) RowPitch() int { return v.rowPitch }

// SlicePitch returns the byte distance between slices.
func (v *MemoryVolume) SlicePitch() int { return v.slicePitch }

// Bytes returns the backing storage. Callers must not hold a lock while
// writing through it.
func (v *MemoryVolume) Bytes() []byte { return v.data }

// LockBox locks box (nil for the whole volume).
func (v *MemoryVolume) LockBox(box *Box, flags LockFlags) (LockedBox, error) {
	b := v.desc.Box()
	if box != nil {
		b = *box
	}
	if b.Empty() || !b.Within(v.desc.Width, v.desc.Height, v.desc.Depth) {
		return LockedBox{}, fmt.Errorf("pixelregion: lock box %s: %w", b, comerr.ErrInvalidRegion)
	}
	if !blockAligned(b, v.format, v.desc.Width, v.desc.Height) {
		return LockedBox{}, fmt.Errorf("pixelregion: lock box %s not aligned to %s blocks: %w", b, v.format.Name, comerr.ErrInvalidRegion)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locked {
		return LockedBox{}, ErrLocked
	}
	v.locked = true

	off := b.Front*v.slicePitch + b.Top/v.format.BlockHeight*v.rowPitch + b.Left/v.format.BlockWidth*v.format.BlockBytes
	return LockedBox{
		Bits:       v.data[off:],
		RowPitch:   v.rowPitch,
		SlicePitch: v.slicePitch,
	}, nil
}

// UnlockBox releases the current lock.
func (v *MemoryVolume) UnlockBox() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.locked {
		return ErrNotLocked
	}
	v.locked = false
	return nil
}

// Locked reports whether a box is currently locked.
func (v *MemoryVolume) Locked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.locked
}
