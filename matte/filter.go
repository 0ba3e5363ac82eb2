// Package matte removes flat or checkerboard backgrounds from images by
// flood filling from the four corners with a chroma color and then turning
// every chroma pixel transparent.
package matte

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	// DefaultChroma is the temporary marker color painted over the background.
	DefaultChroma = color.NRGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}

	// Placeholder replaces every chroma pixel once the fills are done.
	Placeholder = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x00}
)

// Stats counts what a single Apply did.
type Stats struct {
	// Filled is the number of distinct pixels painted by the corner fills.
	Filled int
	// Cleared is the number of pixels turned transparent by the exact-match pass.
	// It includes pixels that held the chroma color before filling.
	Cleared int
}

// Filter is a four-corner flood fill chroma key.
//
// Every fill compares candidate pixels against the original color of its own
// seed, not against the neighbor it was reached from, so long gradients do not
// bleed into the foreground. Fills are 4-connected: regions touching only at a
// diagonal are separate. All four fills read the colors the image had before
// any of them ran, so the keyed region is the union of the four corner regions
// and only grows with the threshold.
type Filter struct {
	Chroma    color.NRGBA
	Threshold int
	// Metric defaults to SumDistance when nil.
	Metric Metric
}

// Validate rejects settings that would break the transform.
func (f Filter) Validate() error {
	if f.Threshold < 0 {
		return fmt.Errorf("invalid threshold: %d", f.Threshold)
	}
	if sameRGB(f.Chroma, Placeholder) {
		return errors.New("chroma color must differ from the transparent placeholder #ffffff")
	}
	return nil
}

// Apply converts img to NRGBA and keys out its background. img is left untouched;
// the returned image is a new buffer owned by the caller.
func (f Filter) Apply(img image.Image) (*image.NRGBA, Stats) {
	dst := imaging.Clone(img)
	return dst, f.ApplyInPlace(dst)
}

// ApplyInPlace keys out the background of img, modifying it directly. The caller
// must hold exclusive access to img for the duration of the call.
func (f Filter) ApplyInPlace(img *image.NRGBA) Stats {
	var stats Stats
	r := img.Rect
	if r.Empty() {
		return stats
	}
	metric := f.Metric
	if metric == nil {
		metric = SumDistance
	}
	threshold := max(f.Threshold, 0)

	size := r.Dx() * r.Dy()
	region := make([]bool, size)
	visited := make([]bool, size)
	for _, seed := range Corners(r) {
		clear(visited)
		stats.Filled += floodFill(img, seed, threshold, metric, visited, region)
	}

	fill := f.Chroma
	fill.A = 0xFF
	for i, in := range region {
		if in {
			img.SetNRGBA(r.Min.X+i%r.Dx(), r.Min.Y+i/r.Dx(), fill)
		}
	}

	stats.Cleared = clearChroma(img, f.Chroma)
	return stats
}

// Corners returns the seed points of r in the order top-left, top-right,
// bottom-left, bottom-right. An empty rectangle has no corners.
func Corners(r image.Rectangle) []image.Point {
	if r.Empty() {
		return nil
	}
	return []image.Point{
		r.Min,
		{X: r.Max.X - 1, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y - 1},
		{X: r.Max.X - 1, Y: r.Max.Y - 1},
	}
}

// floodFill marks in visited every pixel 4-connected to start whose color is
// within threshold of the start color, and adds them to region. It returns how
// many pixels were new to region. img is only read.
func floodFill(img *image.NRGBA, start image.Point, threshold int, metric Metric, visited, region []bool) int {
	r := img.Rect
	w := r.Dx()
	seed := img.NRGBAAt(start.X, start.Y)
	idx := func(x, y int) int { return (y-r.Min.Y)*w + (x - r.Min.X) }
	match := func(x, y int) bool {
		return !visited[idx(x, y)] && Within(metric, img.NRGBAAt(x, y), seed, threshold)
	}

	added := 0
	stack := make([]image.Point, 0, 64)
	stack = append(stack, start)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !match(p.X, p.Y) {
			continue
		}

		xl, xr := p.X, p.X
		for xl > r.Min.X && match(xl-1, p.Y) {
			xl--
		}
		for xr < r.Max.X-1 && match(xr+1, p.Y) {
			xr++
		}
		for x := xl; x <= xr; x++ {
			i := idx(x, p.Y)
			visited[i] = true
			if !region[i] {
				region[i] = true
				added++
			}
		}

		// one seed per matching run directly above and below the span
		for _, y := range [2]int{p.Y - 1, p.Y + 1} {
			if y < r.Min.Y || y >= r.Max.Y {
				continue
			}
			inRun := false
			for x := xl; x <= xr; x++ {
				if !match(x, y) {
					inRun = false
					continue
				}
				if !inRun {
					stack = append(stack, image.Point{X: x, Y: y})
					inRun = true
				}
			}
		}
	}
	return added
}

// clearChroma replaces every pixel whose RGB equals chroma, whatever its alpha,
// with Placeholder.
func clearChroma(img *image.NRGBA, chroma color.NRGBA) int {
	r := img.Rect
	width := r.Dx() * 4
	cleared := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		row := img.Pix[off : off+width]
		for i := 0; i < len(row); i += 4 {
			if row[i] != chroma.R || row[i+1] != chroma.G || row[i+2] != chroma.B {
				continue
			}
			row[i] = Placeholder.R
			row[i+1] = Placeholder.G
			row[i+2] = Placeholder.B
			row[i+3] = Placeholder.A
			cleared++
		}
	}
	return cleared
}

func sameRGB(a, b color.NRGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}
