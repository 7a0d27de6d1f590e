package config

import (
	"fmt"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
	"github.com/e7canasta/orion-mediakit/modules/pixelregion"
)

// RawParser is a pixelregion.ContainerParser for headerless files whose
// geometry comes from the job's source section.
type RawParser struct {
	Source SourceConfig
}

// Parse checks that data covers the configured volume and describes it.
func (p RawParser) Parse(data []byte) (*pixelregion.Image, error) {
	src := p.Source
	want := src.SlicePitch * src.Depth
	if len(data) < want {
		return nil, fmt.Errorf("config: raw source %s has %d bytes, need %d: %w", src.Path, len(data), want, comerr.ErrInvalidArgument)
	}

	return &pixelregion.Image{
		Info: pixelregion.ImageInfo{
			Width:     src.Width,
			Height:    src.Height,
			Depth:     src.Depth,
			MipLevels: 1,
			Format:    src.ResolvedFormat,
			Kind:      pixelregion.ContainerRaw,
		},
		Pixels:     data,
		RowPitch:   src.RowPitch,
		SlicePitch: src.SlicePitch,
		Palette:    src.Colors(),
	}, nil
}
