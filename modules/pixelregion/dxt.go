package pixelregion

import "encoding/binary"

// Block-compressed (DXTn) codec. A block holds 4x4 texels in row-major order.

func unpack565(c uint16) vec4 {
	return vec4{
		1,
		float32(c>>11&31) / 31,
		float32(c>>5&63) / 63,
		float32(c&31) / 31,
	}
}

func pack565(t vec4) uint16 {
	return uint16(quantize(t[chR], 5, 0)<<11 | quantize(t[chG], 6, 0)<<5 | quantize(t[chB], 5, 0))
}

func lerp(a, b vec4, t float32) vec4 {
	var out vec4
	for ch := range out {
		out[ch] = a[ch] + (b[ch]-a[ch])*t
	}
	return out
}

// colorPalette expands the two endpoints of a colour block. threeColor
// selects the mode with a transparent fourth entry.
func colorPalette(c0, c1 uint16, threeColor bool) [4]vec4 {
	p0, p1 := unpack565(c0), unpack565(c1)
	if threeColor {
		return [4]vec4{p0, p1, lerp(p0, p1, 0.5), {}}
	}
	return [4]vec4{p0, p1, lerp(p0, p1, 1.0/3), lerp(p0, p1, 2.0/3)}
}

func decodeColorBlock(b []byte, out *[16]vec4, dxt1 bool) {
	c0 := binary.LittleEndian.Uint16(b[0:])
	c1 := binary.LittleEndian.Uint16(b[2:])
	idx := binary.LittleEndian.Uint32(b[4:])
	pal := colorPalette(c0, c1, dxt1 && c0 <= c1)
	for i := 0; i < 16; i++ {
		out[i] = pal[idx>>(2*i)&3]
	}
}

func alphaPalette(a0, a1 uint8) [8]float32 {
	f0, f1 := float32(a0)/255, float32(a1)/255
	var p [8]float32
	p[0], p[1] = f0, f1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			p[i+1] = (f0*float32(7-i) + f1*float32(i)) / 7
		}
	} else {
		for i := 1; i <= 4; i++ {
			p[i+1] = (f0*float32(5-i) + f1*float32(i)) / 5
		}
		p[6], p[7] = 0, 1
	}
	return p
}

// decodeBlock decodes one block of format f.
func decodeBlock(f Format, b []byte) [16]vec4 {
	var out [16]vec4
	switch f {
	case FormatDXT1:
		decodeColorBlock(b, &out, true)
	case FormatDXT2, FormatDXT3:
		decodeColorBlock(b[8:], &out, false)
		alpha := binary.LittleEndian.Uint64(b)
		for i := 0; i < 16; i++ {
			out[i][chA] = float32(alpha>>(4*i)&15) / 15
		}
	case FormatDXT4, FormatDXT5:
		decodeColorBlock(b[8:], &out, false)
		pal := alphaPalette(b[0], b[1])
		idx := loadLE(b[2:], 6)
		for i := 0; i < 16; i++ {
			out[i][chA] = pal[idx>>(3*i)&7]
		}
	}
	return out
}

func dist2(a, b vec4) float32 {
	var d float32
	for ch := chR; ch <= chB; ch++ {
		x := a[ch] - b[ch]
		d += x * x
	}
	return d
}

// encodeColorBlock fits endpoints to the bounding box of the valid texels.
// allowTransparent enables the DXT1 three-colour mode for texels with alpha
// below one half.
func encodeColorBlock(dst []byte, texels *[16]vec4, valid *[16]bool, allowTransparent bool) {
	lo := vec4{0, 1, 1, 1}
	hi := vec4{0, 0, 0, 0}
	transparent := false
	opaque := false
	for i, t := range texels {
		if !valid[i] {
			continue
		}
		if allowTransparent && t[chA] < 0.5 {
			transparent = true
			continue
		}
		opaque = true
		for ch := chR; ch <= chB; ch++ {
			lo[ch] = min(lo[ch], t[ch])
			hi[ch] = max(hi[ch], t[ch])
		}
	}
	if !opaque {
		lo, hi = vec4{}, vec4{}
	}

	c0, c1 := pack565(hi), pack565(lo)
	threeColor := transparent
	switch {
	case threeColor && c0 > c1:
		c0, c1 = c1, c0
	case !threeColor && c0 < c1:
		c0, c1 = c1, c0
	}
	if allowTransparent && !threeColor && c0 == c1 {
		// Equal endpoints decode in three-colour mode; index 0 is still exact.
		threeColor = true
	}
	pal := colorPalette(c0, c1, threeColor)

	var idx uint32
	for i, t := range texels {
		var best uint32
		switch {
		case !valid[i]:
		case threeColor && transparent && t[chA] < 0.5:
			best = 3
		default:
			n := 4
			if threeColor {
				n = 3
			}
			bestD := float32(-1)
			for j := 0; j < n; j++ {
				if d := dist2(t, pal[j]); bestD < 0 || d < bestD {
					best, bestD = uint32(j), d
				}
			}
		}
		idx |= best << (2 * i)
	}

	binary.LittleEndian.PutUint16(dst[0:], c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)
	binary.LittleEndian.PutUint32(dst[4:], idx)
}

func encodeAlphaBlock(dst []byte, texels *[16]vec4, valid *[16]bool) {
	a0, a1 := uint8(0), uint8(255)
	for i, t := range texels {
		if !valid[i] {
			continue
		}
		a := uint8(quantize(t[chA], 8, 0))
		a0 = max(a0, a)
		a1 = min(a1, a)
	}
	if a0 < a1 {
		a0, a1 = 255, 255
	}
	pal := alphaPalette(a0, a1)

	var idx uint64
	for i, t := range texels {
		if !valid[i] || a0 == a1 {
			continue
		}
		var best uint64
		bestD := float32(-1)
		for j, p := range pal {
			d := t[chA] - p
			d *= d
			if bestD < 0 || d < bestD {
				best, bestD = uint64(j), d
			}
		}
		idx |= best << (3 * i)
	}

	dst[0], dst[1] = a0, a1
	storeLE(dst[2:], 6, idx)
}

// encodeBlock encodes one block of format f. Invalid texels (outside the
// surface) do not influence the endpoints.
func encodeBlock(f Format, dst []byte, texels *[16]vec4, valid *[16]bool) {
	switch f {
	case FormatDXT1:
		encodeColorBlock(dst, texels, valid, true)
	case FormatDXT2, FormatDXT3:
		var alpha uint64
		for i, t := range texels {
			if valid[i] {
				alpha |= quantize(t[chA], 4, 0) << (4 * i)
			}
		}
		binary.LittleEndian.PutUint64(dst, alpha)
		encodeColorBlock(dst[8:], texels, valid, false)
	case FormatDXT4, FormatDXT5:
		encodeAlphaBlock(dst, texels, valid)
		encodeColorBlock(dst[8:], texels, valid, false)
	}
}
