package pixelregion

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/comobj"
	"github.com/e7canasta/orion-mediakit/modules/metrics"
)

// Request describes one region load from memory.
//
// Src holds the source image; texel (0,0,0) is at Src[0] and SrcBox selects
// the region to read. DstBox nil targets the whole destination surface.
type Request struct {
	DstBox *Box

	Src           []byte
	SrcFormat     Format
	SrcRowPitch   int
	SrcSlicePitch int
	SrcBox        Box

	// Palette is required for FormatP8 sources.
	Palette []Color

	Filter Filter

	// ColorKey is a 0xAARRGGBB colour replaced by transparent black; 0
	// disables keying.
	ColorKey uint32
}

// LoadFromMemory converts req's source region into dst.
//
// Algorithm:
//  1. Validate boxes, pitches, formats and filter (no lock taken on failure)
//  2. Lock the destination box extended to the block grid
//  3. Resample into the requested sub-box, offset by the aligned origin
//  4. Unlock on every path; an unlock failure is joined with any conversion error
//
// Lock errors are returned unchanged.
func LoadFromMemory(ctx context.Context, dst Surface, req Request) (err error) {
	start := time.Now()
	texels := 0
	defer func() { observeLoad(err, start, texels) }()

	if dst == nil || len(req.Src) == 0 {
		return fmt.Errorf("pixelregion: nil destination or empty source: %w", comerr.ErrInvalidArgument)
	}
	if err := checkBox("source", req.SrcBox); err != nil {
		return err
	}
	if req.SrcRowPitch < 0 || req.SrcSlicePitch < 0 {
		return fmt.Errorf("pixelregion: negative source pitch: %w", comerr.ErrInvalidArgument)
	}

	srcFmt, err := Lookup(req.SrcFormat)
	if err != nil {
		return err
	}
	desc := dst.Desc()
	dstFmt, err := Lookup(desc.Format)
	if err != nil {
		return err
	}
	if dstFmt.Kind == KindIndex {
		return fmt.Errorf("pixelregion: palettized destination %s: %w", dstFmt.Name, comerr.ErrUnsupportedFormat)
	}
	if srcFmt.Kind == KindIndex && len(req.Palette) == 0 {
		return fmt.Errorf("pixelregion: %s source without palette: %w", srcFmt.Name, comerr.ErrInvalidArgument)
	}

	filter, dither, err := req.Filter.resolve()
	if err != nil {
		return err
	}

	dstBox := desc.Box()
	if req.DstBox != nil {
		dstBox = *req.DstBox
		if err := checkBox("destination", dstBox); err != nil {
			return err
		}
		if !dstBox.Within(desc.Width, desc.Height, desc.Depth) {
			return fmt.Errorf("pixelregion: destination box %s outside %dx%dx%d surface: %w",
				dstBox, desc.Width, desc.Height, desc.Depth, comerr.ErrInvalidRegion)
		}
	}

	src := view{f: srcFmt, bits: req.Src, rowPitch: req.SrcRowPitch, slicePitch: req.SrcSlicePitch}
	if err := src.check("source", req.SrcBox); err != nil {
		return err
	}

	aligned := AlignedBox(dstBox, dstFmt, desc.Width, desc.Height)
	locked, err := dst.LockBox(&aligned, 0)
	if err != nil {
		return err
	}

	job := conversion{
		src:     src,
		srcBox:  req.SrcBox,
		palette: req.Palette,
		key:     newColorKey(srcFmt, req.ColorKey),
		dst: view{
			f:          dstFmt,
			bits:       locked.Bits,
			rowPitch:   locked.RowPitch,
			slicePitch: locked.SlicePitch,
			ox:         aligned.Left,
			oy:         aligned.Top,
			oz:         aligned.Front,
		},
		dstBox:  dstBox,
		aligned: aligned,
		surface: desc,
		filter:  filter,
		dither:  dither,
	}

	var result *multierror.Error
	if cerr := job.run(ctx); cerr != nil {
		result = multierror.Append(result, cerr)
	}
	if uerr := dst.UnlockBox(); uerr != nil {
		result = multierror.Append(result, fmt.Errorf("pixelregion: unlock destination: %w", uerr))
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	texels = dstBox.Texels()
	comobj.LoggerFrom(ctx).Debug("pixelregion: region loaded",
		"src_format", srcFmt.Name,
		"dst_format", dstFmt.Name,
		"src_box", req.SrcBox.String(),
		"dst_box", dstBox.String(),
		"locked_box", aligned.String(),
		"filter", req.Filter.String(),
	)
	return nil
}

func observeLoad(err error, start time.Time, texels int) {
	result := "ok"
	if err != nil {
		result = comerr.Classify(err).String()
	}
	metrics.RegionLoads.WithLabelValues(result).Inc()
	metrics.LoadDuration.Observe(time.Since(start).Seconds())
	metrics.TexelsConverted.Add(float64(texels))
}

// conversion is one validated, locked region conversion.
type conversion struct {
	src     view
	srcBox  Box
	palette []Color
	key     *colorKey

	dst     view
	dstBox  Box
	aligned Box
	surface SurfaceDesc

	filter Filter
	dither bool
}

func (c *conversion) run(ctx context.Context) error {
	if err := c.dst.check("locked destination", c.aligned); err != nil {
		return err
	}

	if c.rawCopy() {
		copyRaw(c.dst, c.dstBox, c.src, c.srcBox)
		return nil
	}

	pix := c.src.decode(c.srcBox, c.palette, c.key)
	out, err := resample(ctx, pix,
		c.srcBox.Width(), c.srcBox.Height(), c.srcBox.Depth(),
		c.dstBox.Width(), c.dstBox.Height(), c.dstBox.Depth(),
		c.filter)
	if err != nil {
		return fmt.Errorf("pixelregion: resample: %w", err)
	}

	if !c.dst.f.Compressed() {
		c.dst.encode(c.dstBox, out, c.dither)
		return nil
	}

	// Partial blocks keep the texels outside the requested box.
	stage := c.dst.decode(c.aligned, nil, nil)
	aw, ah := c.aligned.Width(), c.aligned.Height()
	dw, dh := c.dstBox.Width(), c.dstBox.Height()
	for z := 0; z < c.dstBox.Depth(); z++ {
		for y := 0; y < dh; y++ {
			sz := z + c.dstBox.Front - c.aligned.Front
			sy := y + c.dstBox.Top - c.aligned.Top
			sx := c.dstBox.Left - c.aligned.Left
			copy(stage[(sz*ah+sy)*aw+sx:][:dw], out[(z*dh+y)*dw:][:dw])
		}
	}
	c.dst.encodeBlocks(c.aligned, stage)
	return nil
}

// rawCopy reports whether the region can be copied byte for byte: same
// format and size, no colour key, and for block formats both boxes on the
// block grid.
func (c *conversion) rawCopy() bool {
	f := c.src.f
	if f != c.dst.f || c.key != nil || f.Kind == KindIndex {
		return false
	}
	if c.srcBox.Width() != c.dstBox.Width() || c.srcBox.Height() != c.dstBox.Height() || c.srcBox.Depth() != c.dstBox.Depth() {
		return false
	}
	if !f.Compressed() {
		return true
	}
	bw, bh := f.BlockWidth, f.BlockHeight
	return c.srcBox.Left%bw == 0 && c.srcBox.Top%bh == 0 &&
		blockAligned(c.dstBox, f, c.surface.Width, c.surface.Height) &&
		(c.dstBox.Width()%bw == 0 || c.dstBox.Right == c.surface.Width) &&
		(c.dstBox.Height()%bh == 0 || c.dstBox.Bottom == c.surface.Height)
}

// LoadFromSurface loads srcBox of src (nil for all of it) into dst. The
// source is locked read-only for the duration and always unlocked.
func LoadFromSurface(ctx context.Context, dst Surface, dstBox *Box, src Surface, srcBox *Box, palette []Color, filter Filter, colorKey uint32) error {
	if src == nil || dst == nil {
		return fmt.Errorf("pixelregion: nil surface: %w", comerr.ErrInvalidArgument)
	}

	desc := src.Desc()
	sb := desc.Box()
	if srcBox != nil {
		sb = *srcBox
		if err := checkBox("source", sb); err != nil {
			return err
		}
		if !sb.Within(desc.Width, desc.Height, desc.Depth) {
			return fmt.Errorf("pixelregion: source box %s outside %dx%dx%d surface: %w",
				sb, desc.Width, desc.Height, desc.Depth, comerr.ErrInvalidRegion)
		}
	}
	srcFmt, err := Lookup(desc.Format)
	if err != nil {
		return err
	}

	lockBox := AlignedBox(sb, srcFmt, desc.Width, desc.Height)
	locked, err := src.LockBox(&lockBox, LockReadOnly)
	if err != nil {
		return err
	}

	rel := Box{
		Left:   sb.Left - lockBox.Left,
		Top:    sb.Top - lockBox.Top,
		Right:  sb.Right - lockBox.Left,
		Bottom: sb.Bottom - lockBox.Top,
		Front:  0,
		Back:   sb.Depth(),
	}

	var result *multierror.Error
	lerr := LoadFromMemory(ctx, dst, Request{
		DstBox:        dstBox,
		Src:           locked.Bits,
		SrcFormat:     desc.Format,
		SrcRowPitch:   locked.RowPitch,
		SrcSlicePitch: locked.SlicePitch,
		SrcBox:        rel,
		Palette:       palette,
		Filter:        filter,
		ColorKey:      colorKey,
	})
	if lerr != nil {
		result = multierror.Append(result, lerr)
	}
	if uerr := src.UnlockBox(); uerr != nil {
		result = multierror.Append(result, fmt.Errorf("pixelregion: unlock source: %w", uerr))
	}
	return result.ErrorOrNil()
}
