// Package toothpick reduces an image's color space to a bounded palette
// and remaps the image onto it. Two strategies are provided: an exact
// per-pixel k-means for small inputs where fidelity matters most, and a
// fast histogram path that combines median-cut box splitting, weighted
// k-means refinement and a lookup-table remap for interactive use on
// large images.
package toothpick

import "math/rand"

// MaxColors is the largest palette size the engine accepts.
const MaxColors = 500

// Options control the quantization passes.
type Options struct {
	// MaxIterations caps Lloyd iteration in the exact per-pixel k-means.
	// Iteration also stops as soon as no pixel changes cluster.
	MaxIterations int
	// RefineIterations is the fixed number of weighted Lloyd passes run
	// over histogram bins when box splitting under-produces.
	RefineIterations int
	// SampleThreshold is the pixel count above which the histogram scans
	// every SampleStride-th pixel instead of all of them. The stride
	// trades statistical precision for throughput on multi-megapixel
	// inputs; results stay deterministic for a fixed configuration.
	SampleThreshold int
	// SampleStride is the pixel step used above SampleThreshold.
	SampleStride int
	// Rand drives centroid seeding. Pass a seeded source for
	// reproducible palettes; nil draws a fresh one per call.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		MaxIterations:    10,
		RefineIterations: 3,
		SampleThreshold:  500_000,
		SampleStride:     2,
	}
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

// Result is what a quantization call hands back to the caller. Both
// fields are freshly allocated and owned by the caller.
type Result struct {
	// Palette holds between 1 and k colors. It is shorter than k when
	// the image has fewer distinct colors than requested.
	Palette []Color
	// Pix is a new RGBA buffer of the input's dimensions whose every
	// pixel RGB is a Palette member and whose alpha is always 255.
	Pix []uint8
}

// QuantizeFast reduces the buffer to at most k colors using the
// histogram path: reduced-precision histogram, median-cut box splitting,
// weighted k-means refinement over the original bin set when splitting
// stalls short of k, and a LUT remap. Suited to arbitrary image sizes
// and palette sizes up to MaxColors.
func QuantizeFast(pix []uint8, w, h, k int, opt Options) Result {
	k = clampColors(k)
	if !validBuffer(pix, w, h) {
		return degenerate(pix)
	}
	bins := buildHistogram(pix, opt.SampleThreshold, opt.SampleStride)
	if len(bins) == 0 {
		return degenerate(pix)
	}

	boxes := splitBoxes(bins, k)
	var palette []Color
	if len(boxes) < min(k, len(bins)) {
		palette = refineBins(bins, k, opt.RefineIterations, opt.rng())
	} else {
		palette = make([]Color, len(boxes))
		for i, bx := range boxes {
			palette[i] = bx.color()
		}
		// Distinct boxes can still average into the same bin.
		palette, _ = mergeByBin(palette)
	}
	if len(palette) == 0 {
		return degenerate(pix)
	}
	return Result{Palette: palette, Pix: remapLUT(pix, palette, buildLUT(palette))}
}

// QuantizeExact reduces the buffer to at most k colors by running
// k-means over every pixel. Cost grows with pixels × k × iterations, so
// this path is meant for small images or small k.
func QuantizeExact(pix []uint8, w, h, k int, opt Options) Result {
	k = clampColors(k)
	if !validBuffer(pix, w, h) {
		return degenerate(pix)
	}
	colors := make([]Color, len(pix)/4)
	for i := range colors {
		off := i * 4
		colors[i] = Color{pix[off], pix[off+1], pix[off+2]}
	}
	maxIter := opt.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}
	palette, assign := kmeansPixels(colors, k, maxIter, opt.rng())
	if len(palette) == 0 {
		return degenerate(pix)
	}

	out := make([]uint8, len(pix))
	for i, a := range assign {
		c := palette[a]
		off := i * 4
		out[off] = c.R
		out[off+1] = c.G
		out[off+2] = c.B
		out[off+3] = 255
	}
	return Result{Palette: palette, Pix: out}
}

func clampColors(k int) int {
	return min(max(k, 1), MaxColors)
}

func validBuffer(pix []uint8, w, h int) bool {
	return w > 0 && h > 0 && len(pix) == w*h*4
}

// degenerate is the graceful fallback for malformed or empty input: a
// single black palette entry and an opaque black buffer of matching
// length. Quantization never panics on bad buffers.
func degenerate(pix []uint8) Result {
	out := make([]uint8, len(pix))
	for off := 3; off < len(out); off += 4 {
		out[off] = 255
	}
	return Result{Palette: []Color{{}}, Pix: out}
}
