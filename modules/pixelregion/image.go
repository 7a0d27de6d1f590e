package pixelregion

import (
	"fmt"
	"image"
	"image/color"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Slice decodes slice z of the volume into an 8-bit NRGBA image.
func (v *MemoryVolume) Slice(z int) (*image.NRGBA, error) {
	if z < 0 || z >= v.desc.Depth {
		return nil, fmt.Errorf("pixelregion: slice %d of %d: %w", z, v.desc.Depth, comerr.ErrInvalidArgument)
	}
	if v.format.Kind == KindIndex {
		return nil, fmt.Errorf("pixelregion: %s slice without palette: %w", v.format.Name, comerr.ErrUnsupportedFormat)
	}

	b := Box{Right: v.desc.Width, Bottom: v.desc.Height, Front: z, Back: z + 1}
	src := view{f: v.format, bits: v.data, rowPitch: v.rowPitch, slicePitch: v.slicePitch}
	pix := src.decode(b, nil, nil)

	img := image.NewNRGBA(image.Rect(0, 0, v.desc.Width, v.desc.Height))
	for i, t := range pix {
		img.SetNRGBA(i%v.desc.Width, i/v.desc.Width, color.NRGBA{
			R: uint8(quantize(t[chR], 8, 0)),
			G: uint8(quantize(t[chG], 8, 0)),
			B: uint8(quantize(t[chB], 8, 0)),
			A: uint8(quantize(t[chA], 8, 0)),
		})
	}
	return img, nil
}
