package pixelregion

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Format identifies a pixel layout. Values follow the Direct3D format
// numbering; block-compressed formats use their FOURCC.
type Format uint32

const (
	FormatUnknown      Format = 0
	FormatRGB888       Format = 20
	FormatARGB8888     Format = 21
	FormatXRGB8888     Format = 22
	FormatRGB565       Format = 23
	FormatXRGB1555     Format = 24
	FormatARGB1555     Format = 25
	FormatARGB4444     Format = 26
	FormatA8           Format = 28
	FormatABGR8888     Format = 32
	FormatABGR16161616 Format = 36
	FormatP8           Format = 41
	FormatL8           Format = 50
	FormatA8L8         Format = 51
	FormatL16          Format = 81
	FormatDXT1         Format = 'D' | 'X'<<8 | 'T'<<16 | '1'<<24
	FormatDXT2         Format = 'D' | 'X'<<8 | 'T'<<16 | '2'<<24
	FormatDXT3         Format = 'D' | 'X'<<8 | 'T'<<16 | '3'<<24
	FormatDXT4         Format = 'D' | 'X'<<8 | 'T'<<16 | '4'<<24
	FormatDXT5         Format = 'D' | 'X'<<8 | 'T'<<16 | '5'<<24
)

// Kind groups formats by how texels are decoded.
type Kind int

const (
	KindARGB Kind = iota
	KindLuminance
	KindIndex
	KindDXT
)

// Channel indices into Descriptor.Bits and Descriptor.Shift.
const (
	chA = iota
	chR
	chG
	chB
)

// Descriptor drives alignment and conversion for one format.
//
// BlockBytes is the size of one BlockWidth x BlockHeight block; for
// uncompressed formats blocks are single texels. Bits/Shift give the width
// and position of the A, R, G, B channels (luminance formats keep L in R).
type Descriptor struct {
	Format      Format
	Name        string
	Kind        Kind
	BlockWidth  int
	BlockHeight int
	BlockBytes  int
	Bits        [4]uint8
	Shift       [4]uint8
}

// Compressed reports whether the format is block-compressed.
func (d *Descriptor) Compressed() bool {
	return d.BlockWidth > 1 || d.BlockHeight > 1
}

// HasAlpha reports whether the format stores alpha.
func (d *Descriptor) HasAlpha() bool {
	return d.Bits[chA] > 0 || d.Kind == KindDXT || d.Kind == KindIndex
}

// RowBytes returns the minimum row pitch for width texels.
func (d *Descriptor) RowBytes(width int) int {
	return (width + d.BlockWidth - 1) / d.BlockWidth * d.BlockBytes
}

// Rows returns the number of block rows covering height texels.
func (d *Descriptor) Rows(height int) int {
	return (height + d.BlockHeight - 1) / d.BlockHeight
}

var descriptors = []Descriptor{
	{FormatARGB8888, "ARGB8888", KindARGB, 1, 1, 4, [4]uint8{8, 8, 8, 8}, [4]uint8{24, 16, 8, 0}},
	{FormatXRGB8888, "XRGB8888", KindARGB, 1, 1, 4, [4]uint8{0, 8, 8, 8}, [4]uint8{0, 16, 8, 0}},
	{FormatABGR8888, "ABGR8888", KindARGB, 1, 1, 4, [4]uint8{8, 8, 8, 8}, [4]uint8{24, 0, 8, 16}},
	{FormatRGB888, "RGB888", KindARGB, 1, 1, 3, [4]uint8{0, 8, 8, 8}, [4]uint8{0, 16, 8, 0}},
	{FormatRGB565, "RGB565", KindARGB, 1, 1, 2, [4]uint8{0, 5, 6, 5}, [4]uint8{0, 11, 5, 0}},
	{FormatXRGB1555, "XRGB1555", KindARGB, 1, 1, 2, [4]uint8{0, 5, 5, 5}, [4]uint8{0, 10, 5, 0}},
	{FormatARGB1555, "ARGB1555", KindARGB, 1, 1, 2, [4]uint8{1, 5, 5, 5}, [4]uint8{15, 10, 5, 0}},
	{FormatARGB4444, "ARGB4444", KindARGB, 1, 1, 2, [4]uint8{4, 4, 4, 4}, [4]uint8{12, 8, 4, 0}},
	{FormatA8, "A8", KindARGB, 1, 1, 1, [4]uint8{8, 0, 0, 0}, [4]uint8{0, 0, 0, 0}},
	{FormatABGR16161616, "ABGR16161616", KindARGB, 1, 1, 8, [4]uint8{16, 16, 16, 16}, [4]uint8{48, 0, 16, 32}},
	{FormatL8, "L8", KindLuminance, 1, 1, 1, [4]uint8{0, 8, 0, 0}, [4]uint8{0, 0, 0, 0}},
	{FormatA8L8, "A8L8", KindLuminance, 1, 1, 2, [4]uint8{8, 8, 0, 0}, [4]uint8{8, 0, 0, 0}},
	{FormatL16, "L16", KindLuminance, 1, 1, 2, [4]uint8{0, 16, 0, 0}, [4]uint8{0, 0, 0, 0}},
	{FormatP8, "P8", KindIndex, 1, 1, 1, [4]uint8{8, 8, 8, 8}, [4]uint8{0, 0, 0, 0}},
	{FormatDXT1, "DXT1", KindDXT, 4, 4, 8, [4]uint8{1, 5, 6, 5}, [4]uint8{}},
	{FormatDXT2, "DXT2", KindDXT, 4, 4, 16, [4]uint8{4, 5, 6, 5}, [4]uint8{}},
	{FormatDXT3, "DXT3", KindDXT, 4, 4, 16, [4]uint8{4, 5, 6, 5}, [4]uint8{}},
	{FormatDXT4, "DXT4", KindDXT, 4, 4, 16, [4]uint8{8, 5, 6, 5}, [4]uint8{}},
	{FormatDXT5, "DXT5", KindDXT, 4, 4, 16, [4]uint8{8, 5, 6, 5}, [4]uint8{}},
}

var descriptorIndex = func() map[Format]*Descriptor {
	m := make(map[Format]*Descriptor, len(descriptors))
	for i := range descriptors {
		m[descriptors[i].Format] = &descriptors[i]
	}
	return m
}()

// Lookup returns the descriptor for f, or ErrUnsupportedFormat.
func Lookup(f Format) (*Descriptor, error) {
	d, ok := descriptorIndex[f]
	if !ok {
		return nil, fmt.Errorf("pixelregion: format %s: %w", f, comerr.ErrUnsupportedFormat)
	}
	return d, nil
}

// ParseFormat resolves a format by name (as printed by Format.String).
func ParseFormat(name string) (Format, error) {
	for i := range descriptors {
		if descriptors[i].Name == name {
			return descriptors[i].Format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("pixelregion: format name %q: %w", name, comerr.ErrUnsupportedFormat)
}

func (f Format) String() string {
	if d, ok := descriptorIndex[f]; ok {
		return d.Name
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}
