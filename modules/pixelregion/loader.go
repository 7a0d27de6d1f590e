package pixelregion

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// ContainerKind identifies the file container an image was parsed from.
type ContainerKind int

const (
	ContainerRaw ContainerKind = iota
	ContainerDDS
	ContainerBMP
	ContainerPNG
	ContainerJPG
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerRaw:
		return "raw"
	case ContainerDDS:
		return "dds"
	case ContainerBMP:
		return "bmp"
	case ContainerPNG:
		return "png"
	case ContainerJPG:
		return "jpg"
	default:
		return "unknown"
	}
}

// ImageInfo is the header information of a parsed container.
type ImageInfo struct {
	Width, Height, Depth int
	MipLevels            int
	Format               Format
	Kind                 ContainerKind
}

// Image is a parsed container: header plus the top-level texels.
type Image struct {
	Info       ImageInfo
	Pixels     []byte
	RowPitch   int
	SlicePitch int
	Palette    []Color
}

// ContainerParser extracts image data from a file held in memory.
type ContainerParser interface {
	Parse(data []byte) (*Image, error)
}

// FileMapper maps a file into memory for the duration of a load.
type FileMapper interface {
	Map(path string) ([]byte, error)
	Unmap(data []byte) error
}

// FileRequest holds the load parameters shared by the file entry points.
type FileRequest struct {
	DstBox *Box

	// SrcBox nil selects the whole image.
	SrcBox *Box

	Filter   Filter
	ColorKey uint32
}

// LoadFromFileInMemory parses data and loads the selected region into dst.
// Only volume-capable containers (DDS and raw) are accepted.
func LoadFromFileInMemory(ctx context.Context, dst Surface, data []byte, parser ContainerParser, req FileRequest) (ImageInfo, error) {
	if dst == nil || len(data) == 0 || parser == nil {
		return ImageInfo{}, fmt.Errorf("pixelregion: load from file in memory: %w", comerr.ErrInvalidArgument)
	}

	img, err := parser.Parse(data)
	if err != nil {
		return ImageInfo{}, errors.Wrap(err, "pixelregion: parse container")
	}
	info := img.Info

	if info.Kind != ContainerDDS && info.Kind != ContainerRaw {
		return info, fmt.Errorf("pixelregion: %s container cannot hold a volume: %w", info.Kind, comerr.ErrUnsupportedFormat)
	}

	srcBox := Box{Right: info.Width, Bottom: info.Height, Back: info.Depth}
	if req.SrcBox != nil {
		srcBox = *req.SrcBox
		if err := checkBox("source", srcBox); err != nil {
			return info, err
		}
		if !srcBox.Within(info.Width, info.Height, info.Depth) {
			return info, fmt.Errorf("pixelregion: source box %s outside %dx%dx%d image: %w",
				srcBox, info.Width, info.Height, info.Depth, comerr.ErrInvalidRegion)
		}
	}

	err = LoadFromMemory(ctx, dst, Request{
		DstBox:        req.DstBox,
		Src:           img.Pixels,
		SrcFormat:     info.Format,
		SrcRowPitch:   img.RowPitch,
		SrcSlicePitch: img.SlicePitch,
		SrcBox:        srcBox,
		Palette:       img.Palette,
		Filter:        req.Filter,
		ColorKey:      req.ColorKey,
	})
	return info, err
}

// LoadFromFile maps path, loads it like LoadFromFileInMemory and unmaps it
// on every path.
func LoadFromFile(ctx context.Context, dst Surface, path string, mapper FileMapper, parser ContainerParser, req FileRequest) (ImageInfo, error) {
	if path == "" || mapper == nil {
		return ImageInfo{}, fmt.Errorf("pixelregion: load from file: %w", comerr.ErrInvalidArgument)
	}

	data, err := mapper.Map(path)
	if err != nil {
		return ImageInfo{}, errors.Wrapf(err, "pixelregion: map %s", path)
	}

	var result *multierror.Error
	info, lerr := LoadFromFileInMemory(ctx, dst, data, parser, req)
	if lerr != nil {
		result = multierror.Append(result, lerr)
	}
	if uerr := mapper.Unmap(data); uerr != nil {
		result = multierror.Append(result, errors.Wrapf(uerr, "pixelregion: unmap %s", path))
	}
	return info, result.ErrorOrNil()
}
