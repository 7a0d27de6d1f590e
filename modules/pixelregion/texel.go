package pixelregion

import "math"

// vec4 holds normalized channels indexed by chA, chR, chG, chB.
type vec4 [4]float32

// Color is an 8-bit palette entry.
type Color struct {
	R, G, B, A uint8
}

func (c Color) vec() vec4 {
	return vec4{float32(c.A) / 255, float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

// argbVec converts a packed 0xAARRGGBB colour.
func argbVec(c uint32) vec4 {
	return vec4{
		float32(c>>24&0xff) / 255,
		float32(c>>16&0xff) / 255,
		float32(c>>8&0xff) / 255,
		float32(c&0xff) / 255,
	}
}

func channelMax(bits uint8) float64 {
	return float64(uint64(1)<<bits - 1)
}

// quantize maps v in [0,1] to an integer of the given width. dither shifts
// the rounding point and stays within (-0.5, 0.5), so exact channel values
// survive unchanged.
func quantize(v float32, bits uint8, dither float32) uint64 {
	m := channelMax(bits)
	q := math.Floor(float64(v)*m + 0.5 + float64(dither))
	if q <= 0 {
		return 0
	}
	if q >= m {
		return uint64(m)
	}
	return uint64(q)
}

func loadLE(p []byte, n int) uint64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(p[i])
	}
	return v
}

func storeLE(p []byte, n int, v uint64) {
	for i := 0; i < n; i++ {
		p[i] = byte(v)
		v >>= 8
	}
}

func (d *Descriptor) channel(raw uint64, ch int) uint64 {
	return raw >> d.Shift[ch] & (uint64(1)<<d.Bits[ch] - 1)
}

// readTexel decodes one uncompressed texel. Missing alpha reads as opaque,
// missing colour channels as zero.
func (d *Descriptor) readTexel(p []byte, palette []Color) vec4 {
	if d.Kind == KindIndex {
		i := int(p[0])
		if i >= len(palette) {
			return vec4{}
		}
		return palette[i].vec()
	}

	raw := loadLE(p, d.BlockBytes)
	var t vec4
	t[chA] = 1
	for ch := chA; ch <= chB; ch++ {
		if d.Bits[ch] == 0 {
			continue
		}
		t[ch] = float32(float64(d.channel(raw, ch)) / channelMax(d.Bits[ch]))
	}
	if d.Kind == KindLuminance {
		t[chG], t[chB] = t[chR], t[chR]
	}
	return t
}

func luminance(t vec4) float32 {
	return 0.2125*t[chR] + 0.7154*t[chG] + 0.0721*t[chB]
}

// writeTexel encodes one uncompressed texel.
func (d *Descriptor) writeTexel(p []byte, t vec4, dither float32) {
	if d.Kind == KindLuminance {
		t[chR] = luminance(t)
	}
	var raw uint64
	for ch := chA; ch <= chB; ch++ {
		if d.Bits[ch] == 0 {
			continue
		}
		raw |= quantize(t[ch], d.Bits[ch], dither) << d.Shift[ch]
	}
	storeLE(p, d.BlockBytes, raw)
}

// colorKey matches source texels against a key colour at the source's
// channel precision.
type colorKey struct {
	key  vec4
	raw  [4]uint64
	argb bool
}

func newColorKey(d *Descriptor, c uint32) *colorKey {
	if c == 0 {
		return nil
	}
	k := &colorKey{key: argbVec(c), argb: d.Kind == KindARGB}
	if k.argb {
		for ch := chA; ch <= chB; ch++ {
			if d.Bits[ch] > 0 {
				k.raw[ch] = quantize(k.key[ch], d.Bits[ch], 0)
			}
		}
	}
	return k
}

// matchRaw compares an uncompressed ARGB texel channel by channel.
func (k *colorKey) matchRaw(d *Descriptor, p []byte) bool {
	raw := loadLE(p, d.BlockBytes)
	for ch := chA; ch <= chB; ch++ {
		if d.Bits[ch] > 0 && d.channel(raw, ch) != k.raw[ch] {
			return false
		}
	}
	return true
}

// matchDecoded compares a decoded texel at 8-bit precision.
func (k *colorKey) matchDecoded(t vec4) bool {
	for ch := chA; ch <= chB; ch++ {
		if quantize(t[ch], 8, 0) != quantize(k.key[ch], 8, 0) {
			return false
		}
	}
	return true
}

// bayer4 is the 4x4 ordered dither matrix.
var bayer4 = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// ditherOffset returns the rounding offset for destination texel (x, y),
// within [-15/32, 15/32] of one quantization step.
func ditherOffset(x, y int) float32 {
	return (bayer4[y&3][x&3]+0.5)/16 - 0.5
}
