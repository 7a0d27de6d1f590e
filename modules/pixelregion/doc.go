// Package pixelregion converts 2D and 3D pixel regions between formats.
//
// The pipeline is state-free and single-shot per call:
//
//	validate → resolve formats → default box → align → lock → convert → unlock
//
// Validation failures never take a lock. Once the destination is locked it
// is unlocked on every exit path, and lock failures reach the caller
// unchanged.
//
// Filtering:
//   - None: unscaled copy, texels outside the source are transparent black
//   - Point: nearest texel centre
//   - Linear: per-axis interpolation between texel centres, clamped at edges
//   - Triangle: area-weighted average of the covered source footprint
//   - Box: plain average of the texels whose centres lie in the footprint
//
// FilterDither adds a 4x4 ordered offset of at most 15/32 of a quantization
// step, so converting a format onto itself stays exact. FilterDefault is
// Triangle | Dither.
//
// Colour keys are compared at the source's channel precision (8 bits per
// channel for palettized, luminance and block-compressed sources); matches
// become transparent black before filtering.
//
// Block-compressed (DXTn) destinations are locked on the 4x4 grid; texels of
// partially covered blocks outside the requested box are preserved by
// decoding the locked blocks first. DXT2 and DXT4 are handled as DXT3 and
// DXT5 (no premultiplication).
package pixelregion
