package pixelregion

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Box is a half-open 3D texel region: [Left,Right) x [Top,Bottom) x [Front,Back).
type Box struct {
	Left, Top, Right, Bottom, Front, Back int
}

// Width returns Right-Left.
func (b Box) Width() int { return b.Right - b.Left }

// Height returns Bottom-Top.
func (b Box) Height() int { return b.Bottom - b.Top }

// Depth returns Back-Front.
func (b Box) Depth() int { return b.Back - b.Front }

// Texels returns the number of texels inside the box.
func (b Box) Texels() int { return b.Width() * b.Height() * b.Depth() }

// Empty reports whether the box is inverted or empty on any axis.
func (b Box) Empty() bool {
	return b.Right <= b.Left || b.Bottom <= b.Top || b.Back <= b.Front
}

// Within reports whether b lies inside a w x h x d surface.
func (b Box) Within(w, h, d int) bool {
	return b.Left >= 0 && b.Top >= 0 && b.Front >= 0 &&
		b.Right <= w && b.Bottom <= h && b.Back <= d
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d)-(%d,%d,%d)", b.Left, b.Top, b.Front, b.Right, b.Bottom, b.Back)
}

func checkBox(what string, b Box) error {
	if b.Empty() {
		return fmt.Errorf("pixelregion: %s box %s is empty or inverted: %w", what, b, comerr.ErrInvalidRegion)
	}
	if b.Left < 0 || b.Top < 0 || b.Front < 0 {
		return fmt.Errorf("pixelregion: %s box %s has negative origin: %w", what, b, comerr.ErrInvalidRegion)
	}
	return nil
}

// AlignedBox extends b outwards to f's block grid, clamped to a w x h
// surface. Depth is never aligned. The result always contains b.
func AlignedBox(b Box, f *Descriptor, w, h int) Box {
	bw, bh := f.BlockWidth, f.BlockHeight
	a := b
	a.Left = b.Left / bw * bw
	a.Top = b.Top / bh * bh
	a.Right = min((b.Right+bw-1)/bw*bw, w)
	a.Bottom = min((b.Bottom+bh-1)/bh*bh, h)
	return a
}

// blockAligned reports whether b starts on f's block grid and either ends on
// it or at the surface edge.
func blockAligned(b Box, f *Descriptor, w, h int) bool {
	bw, bh := f.BlockWidth, f.BlockHeight
	return b.Left%bw == 0 && b.Top%bh == 0 &&
		(b.Right%bw == 0 || b.Right == w) &&
		(b.Bottom%bh == 0 || b.Bottom == h)
}
