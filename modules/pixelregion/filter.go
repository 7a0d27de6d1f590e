package pixelregion

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

// Filter selects the resampling filter, optionally combined with FilterDither.
type Filter uint32

const (
	// FilterNone copies without scaling; texels outside the source are
	// transparent black.
	FilterNone Filter = 1
	// FilterPoint samples the nearest source texel.
	FilterPoint Filter = 2
	// FilterLinear interpolates between the nearest texel centres per axis.
	FilterLinear Filter = 3
	// FilterTriangle averages the source area covered by each destination
	// texel, weighted by overlap.
	FilterTriangle Filter = 4
	// FilterBox averages the source texels whose centres fall inside the
	// destination texel.
	FilterBox Filter = 5

	// FilterDither applies 4x4 ordered dithering when quantizing.
	FilterDither Filter = 0x80000

	// FilterDefault resolves to FilterTriangle | FilterDither.
	FilterDefault Filter = 0xffffffff

	filterMask Filter = 0xff
)

// resolve splits f into its base filter and dither flag.
func (f Filter) resolve() (Filter, bool, error) {
	if f == FilterDefault {
		f = FilterTriangle | FilterDither
	}
	base := f & filterMask
	if base < FilterNone || base > FilterBox || f&^(filterMask|FilterDither) != 0 {
		return 0, false, fmt.Errorf("pixelregion: filter %#x: %w", uint32(f), comerr.ErrInvalidArgument)
	}
	return base, f&FilterDither != 0, nil
}

func (f Filter) String() string {
	names := map[Filter]string{
		FilterNone:     "none",
		FilterPoint:    "point",
		FilterLinear:   "linear",
		FilterTriangle: "triangle",
		FilterBox:      "box",
	}
	if f == FilterDefault {
		return "default"
	}
	s, ok := names[f&filterMask]
	if !ok {
		return fmt.Sprintf("Filter(%#x)", uint32(f))
	}
	if f&FilterDither != 0 {
		s += "|dither"
	}
	return s
}

// ParseFilter resolves a filter name ("triangle", "point|dither", "default").
func ParseFilter(name string) (Filter, error) {
	for _, f := range []Filter{FilterNone, FilterPoint, FilterLinear, FilterTriangle, FilterBox, FilterDefault} {
		if f.String() == name {
			return f, nil
		}
		if f != FilterDefault && (f|FilterDither).String() == name {
			return f | FilterDither, nil
		}
	}
	return 0, fmt.Errorf("pixelregion: filter name %q: %w", name, comerr.ErrInvalidArgument)
}

type tap struct {
	idx int
	w   float32
}

// axisTaps returns, for each of d destination texels, the source texels
// (out of s) contributing to it.
func axisTaps(f Filter, s, d int) [][]tap {
	out := make([][]tap, d)
	scale := float64(s) / float64(d)
	clamp := func(k int) int { return max(0, min(k, s-1)) }

	for i := range out {
		switch f {
		case FilterNone:
			if i < s {
				out[i] = []tap{{i, 1}}
			}

		case FilterPoint:
			u := (float64(i) + 0.5) * scale
			out[i] = []tap{{clamp(int(math.Floor(u))), 1}}

		case FilterLinear:
			u := (float64(i)+0.5)*scale - 0.5
			k := math.Floor(u)
			t := float32(u - k)
			k0, k1 := clamp(int(k)), clamp(int(k)+1)
			if t == 0 || k0 == k1 {
				out[i] = []tap{{k0, 1}}
			} else {
				out[i] = []tap{{k0, 1 - t}, {k1, t}}
			}

		case FilterTriangle:
			a, b := float64(i)*scale, float64(i+1)*scale
			for k := int(math.Floor(a)); float64(k) < b; k++ {
				overlap := math.Min(b, float64(k+1)) - math.Max(a, float64(k))
				if overlap > 0 {
					out[i] = append(out[i], tap{clamp(k), float32(overlap / (b - a))})
				}
			}

		case FilterBox:
			a, b := float64(i)*scale, float64(i+1)*scale
			first := int(math.Ceil(a - 0.5))
			last := int(math.Ceil(b-0.5)) - 1
			if last < first {
				out[i] = []tap{{clamp(int(math.Floor((a + b) / 2))), 1}}
				continue
			}
			w := float32(1) / float32(last-first+1)
			for k := first; k <= last; k++ {
				out[i] = append(out[i], tap{clamp(k), w})
			}
		}
	}
	return out
}

// parallelThreshold is the destination texel count above which rows are
// resampled concurrently.
const parallelThreshold = 1 << 16

// resample maps a decoded sw x sh x sd source onto dw x dh x dd texels.
func resample(ctx context.Context, src []vec4, sw, sh, sd int, dw, dh, dd int, f Filter) ([]vec4, error) {
	xs, ys, zs := axisTaps(f, sw, dw), axisTaps(f, sh, dh), axisTaps(f, sd, dd)
	dst := make([]vec4, dw*dh*dd)

	row := func(z, y int) {
		out := dst[(z*dh+y)*dw:][:dw]
		for x := range out {
			var acc vec4
			for _, tz := range zs[z] {
				for _, ty := range ys[y] {
					base := (tz.idx*sh + ty.idx) * sw
					wzy := tz.w * ty.w
					for _, tx := range xs[x] {
						w := wzy * tx.w
						s := src[base+tx.idx]
						acc[0] += s[0] * w
						acc[1] += s[1] * w
						acc[2] += s[2] * w
						acc[3] += s[3] * w
					}
				}
			}
			out[x] = acc
		}
	}

	rows := dd * dh
	if len(dst) < parallelThreshold {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for r := 0; r < rows; r++ {
			row(r/dh, r%dh)
		}
		return dst, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := max(1, rows/(workers*4))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < rows; start += chunk {
		start, end := start, min(start+chunk, rows)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for r := start; r < end; r++ {
				row(r/dh, r%dh)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}
