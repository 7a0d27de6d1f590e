package pixelregion

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// view addresses texels in memory. bits[0] holds texel (ox, oy, oz), which
// lies on the format's block grid.
type view struct {
	f          *Descriptor
	bits       []byte
	rowPitch   int
	slicePitch int
	ox, oy, oz int
}

// offset returns the byte offset of the block containing texel (x, y, z).
func (v view) offset(x, y, z int) int {
	f := v.f
	return (z-v.oz)*v.slicePitch +
		(y/f.BlockHeight-v.oy/f.BlockHeight)*v.rowPitch +
		(x/f.BlockWidth-v.ox/f.BlockWidth)*f.BlockBytes
}

// check verifies that every block of b is addressable.
func (v view) check(what string, b Box) error {
	f := v.f
	if v.rowPitch < f.RowBytes(b.Right-v.ox) && v.f.Rows(b.Bottom-v.oy) > 1 {
		return fmt.Errorf("pixelregion: %s row pitch %d too small for %d texels: %w", what, v.rowPitch, b.Right-v.ox, comerr.ErrInvalidArgument)
	}
	if b.Back-v.oz > 1 && v.slicePitch < v.rowPitch*f.Rows(b.Bottom-v.oy) {
		return fmt.Errorf("pixelregion: %s slice pitch %d too small: %w", what, v.slicePitch, comerr.ErrInvalidArgument)
	}
	lastBlock := (b.Right - 1) / f.BlockWidth * f.BlockWidth
	end := v.offset(lastBlock, b.Bottom-1, b.Back-1) + f.BlockBytes
	if end > len(v.bits) {
		return fmt.Errorf("pixelregion: %s holds %d bytes, box %s needs %d: %w", what, len(v.bits), b, end, comerr.ErrInvalidArgument)
	}
	return nil
}

// decode reads box b into a dense Width*Height*Depth texel slice. Texels
// matching key become transparent black.
func (v view) decode(b Box, palette []Color, key *colorKey) []vec4 {
	f := v.f
	w, h := b.Width(), b.Height()
	out := make([]vec4, b.Texels())

	if f.Compressed() {
		bw, bh := f.BlockWidth, f.BlockHeight
		for z := b.Front; z < b.Back; z++ {
			for by := b.Top / bh * bh; by < b.Bottom; by += bh {
				for bx := b.Left / bw * bw; bx < b.Right; bx += bw {
					blk := decodeBlock(f.Format, v.bits[v.offset(bx, by, z):])
					for i, t := range blk {
						x, y := bx+i%bw, by+i/bw
						if x < b.Left || x >= b.Right || y < b.Top || y >= b.Bottom {
							continue
						}
						if key != nil && key.matchDecoded(t) {
							t = vec4{}
						}
						out[((z-b.Front)*h+y-b.Top)*w+x-b.Left] = t
					}
				}
			}
		}
		return out
	}

	i := 0
	for z := b.Front; z < b.Back; z++ {
		for y := b.Top; y < b.Bottom; y++ {
			p := v.bits[v.offset(b.Left, y, z):]
			for x := 0; x < w; x++ {
				texel := p[x*f.BlockBytes:]
				switch {
				case key != nil && key.argb && key.matchRaw(f, texel):
					out[i] = vec4{}
				default:
					t := f.readTexel(texel, palette)
					if key != nil && !key.argb && key.matchDecoded(t) {
						t = vec4{}
					}
					out[i] = t
				}
				i++
			}
		}
	}
	return out
}

// encode writes pix (dense over b) into an uncompressed view.
func (v view) encode(b Box, pix []vec4, dither bool) {
	f := v.f
	w := b.Width()
	i := 0
	for z := b.Front; z < b.Back; z++ {
		for y := b.Top; y < b.Bottom; y++ {
			p := v.bits[v.offset(b.Left, y, z):]
			for x := 0; x < w; x++ {
				var d float32
				if dither {
					d = ditherOffset(b.Left+x, y)
				}
				f.writeTexel(p[x*f.BlockBytes:], pix[i], d)
				i++
			}
		}
	}
}

// encodeBlocks writes a dense staging buffer covering the block-aligned box
// a into a compressed view. Texels of edge blocks beyond a are ignored.
func (v view) encodeBlocks(a Box, stage []vec4) {
	f := v.f
	bw, bh := f.BlockWidth, f.BlockHeight
	w, h := a.Width(), a.Height()
	for z := a.Front; z < a.Back; z++ {
		for by := a.Top; by < a.Bottom; by += bh {
			for bx := a.Left; bx < a.Right; bx += bw {
				var texels [16]vec4
				var valid [16]bool
				for i := range texels {
					x, y := bx+i%bw, by+i/bw
					if x >= a.Right || y >= a.Bottom {
						continue
					}
					texels[i] = stage[((z-a.Front)*h+y-a.Top)*w+x-a.Left]
					valid[i] = true
				}
				encodeBlock(f.Format, v.bits[v.offset(bx, by, z):], &texels, &valid)
			}
		}
	}
}

// copyRaw copies b from src into dst at the same block layout. Both views
// share a format and b is block aligned in both.
func copyRaw(dst view, dstBox Box, src view, srcBox Box) {
	f := src.f
	n := f.RowBytes(srcBox.Width())
	rows := f.Rows(srcBox.Height())
	for z := 0; z < srcBox.Depth(); z++ {
		for r := 0; r < rows; r++ {
			y := r * f.BlockHeight
			s := src.bits[src.offset(srcBox.Left, srcBox.Top+y, srcBox.Front+z):]
			d := dst.bits[dst.offset(dstBox.Left, dstBox.Top+y, dstBox.Front+z):]
			copy(d[:n], s[:n])
		}
	}
}
