// Package utils provides image I/O, buffer conversion and palette
// helpers around the quantization engine.
package utils

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	_ "github.com/xfmoulet/qoi"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/setanarut/toothpick"
)

// PaletteMethod selects which extraction backend ExtractPalette uses.
// These are coarse alternatives to the engine's own quantizers, handy
// for previews and comparisons.
type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ReadImage decodes an image file. PNG, JPEG, GIF, WebP and QOI inputs
// are supported.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// LoadImage reads an image and shrinks it to fit within maxW×maxH while
// keeping its aspect ratio. Non-positive bounds keep the original size.
func LoadImage(path string, maxW, maxH int) (image.Image, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return FitWithin(img, maxW, maxH), nil
}

// FitWithin scales an image down to fit the given bounds using
// Catmull-Rom resampling. Images already inside the bounds pass through
// untouched.
func FitWithin(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 || maxH <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	dw := max(int(float64(w)*scale), 1)
	dh := max(int(float64(h)*scale), 1)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// ToRGBA flattens an image into the engine's interleaved RGBA buffer.
func ToRGBA(img image.Image) (pix []uint8, w, h int) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	pix = make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*w + x) * 4
			pix[off] = uint8(r >> 8)
			pix[off+1] = uint8(g >> 8)
			pix[off+2] = uint8(bl >> 8)
			pix[off+3] = uint8(a >> 8)
		}
	}
	return pix, w, h
}

// FromRGBA wraps an interleaved RGBA buffer back into an image. The
// buffer is copied, so the caller keeps ownership of pix.
func FromRGBA(pix []uint8, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	return img
}

// CountUsage tallies, per palette entry, how many pixels of the buffer
// map to it. On an already-quantized buffer this is an exact census.
func CountUsage(pix []uint8, palette []toothpick.Color) []int {
	counts := make([]int, len(palette))
	if len(palette) == 0 {
		return counts
	}
	for off := 0; off+3 < len(pix); off += 4 {
		c := toothpick.Color{R: pix[off], G: pix[off+1], B: pix[off+2]}
		counts[toothpick.Nearest(c, palette)]++
	}
	return counts
}

// Hex formats a color as #rrggbb.
func Hex(c toothpick.Color) string {
	return toColorful(c).Hex()
}

// SortPaletteByBrightness orders colors from darkest to brightest so the
// first entry can serve as a background color.
func SortPaletteByBrightness(palette []toothpick.Color) {
	slices.SortFunc(palette, func(a, b toothpick.Color) int {
		ri, gi, bi := toColorful(a).LinearRgb()
		rj, gj, bj := toColorful(b).LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// ExtractPalette pulls k representative colors from an image with the
// chosen backend. A failing kmeans backend falls back to dominantcolor.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []toothpick.Color {
	switch method {
	case PaletteMethodKMeans:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

// ExtractDominantPalette extracts k colors via weighted dominant-color
// candidates followed by a diversity-aware selection.
func ExtractDominantPalette(img image.Image, k int) []toothpick.Color {
	if k <= 0 {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Last resort: avoid an empty palette breaking downstream code.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverseWeighted(weighted, k)
}

// ExtractKMeansPalette extracts k colors by clustering a subsample of
// the image and keeping the most diverse cluster centers.
func ExtractKMeansPalette(img image.Image, k int) []toothpick.Color {
	if k <= 0 {
		return nil
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	if workK <= 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		center := c.Center
		if len(center) < 3 {
			continue
		}
		col := colorful.Color{R: center[0], G: center[1], B: center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col, weight: w})
	}
	return selectDiverseWeighted(weighted, k)
}

// selectDiverseWeighted greedily picks k colors, scoring candidates by
// distance to the already-chosen set scaled by their weight, so strong
// but similar tones do not crowd out the palette.
func selectDiverseWeighted(cands []weightedColor, k int) []toothpick.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.col.Clamped()
		l, a, b := col.Lab()
		w := c.weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{col: col, lab: [3]float64{l, a, b}, w: w})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	// Seed with the strongest color to stay close to dominant tones.
	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				d2v := d0*d0 + d1*d1 + d2*d2
				if d2v < minD2 {
					minD2 = d2v
				}
			}
			normW := items[i].w / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]toothpick.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, fromColorful(items[idx].col))
	}
	return out
}

// SaveImage writes an image as PNG.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// SavePalette renders the palette as a strip of square tiles and writes
// it as PNG.
func SavePalette(palette []toothpick.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range palette {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := 0; y < h; y++ {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
	}
	return SaveImage(img, filename)
}

func toColorful(c toothpick.Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) toothpick.Color {
	return toothpick.Color{
		R: uint8(max(0, min(255, c.R*255))),
		G: uint8(max(0, min(255, c.G*255))),
		B: uint8(max(0, min(255, c.B*255))),
	}
}
