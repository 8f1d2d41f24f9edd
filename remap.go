package toothpick

// Remap projects every pixel of an interleaved RGBA buffer onto the
// given palette and returns the new buffer. An empty palette degrades to
// a single black entry so the output is always well formed.
func Remap(pix []uint8, palette []Color) []uint8 {
	if len(palette) == 0 {
		palette = []Color{{}}
	}
	return remapLUT(pix, palette, buildLUT(palette))
}

// buildLUT maps every reduced-precision bin id to the index of the
// nearest palette entry, measured from the bin's center reconstruction.
// Building the full table once keeps the remap pass free of per-pixel
// nearest-color searches.
func buildLUT(palette []Color) []uint16 {
	lut := make([]uint16, binCount)
	for idx := range lut {
		lut[idx] = uint16(Nearest(binCenter(idx), palette))
	}
	// A palette color can sit off-center in its own bin and lose it to a
	// neighboring entry. Pin each entry's bin so remapping an
	// already-quantized buffer leaves it untouched.
	for _, p := range palette {
		lut[binIndex(p.R, p.G, p.B)] = uint16(Nearest(p, palette))
	}
	return lut
}

// mergeByBin collapses palette entries whose colors fall into the same
// reduced-precision bin, keeping the first. Two entries in one bin would
// contend for a single LUT slot, so at most one survives. The returned
// slice translates old palette indices to merged ones.
func mergeByBin(palette []Color) ([]Color, []int) {
	merged := make([]Color, 0, len(palette))
	oldToNew := make([]int, len(palette))
	owner := make(map[int]int, len(palette))
	for i, p := range palette {
		idx := binIndex(p.R, p.G, p.B)
		if j, ok := owner[idx]; ok {
			oldToNew[i] = j
			continue
		}
		owner[idx] = len(merged)
		oldToNew[i] = len(merged)
		merged = append(merged, p)
	}
	return merged, oldToNew
}

// remapLUT writes a fresh buffer where every pixel carries the palette
// color its bin maps to, with alpha forced fully opaque. The source
// buffer is never touched.
func remapLUT(pix []uint8, palette []Color, lut []uint16) []uint8 {
	out := make([]uint8, len(pix))
	for off := 0; off+3 < len(pix); off += 4 {
		c := palette[lut[binIndex(pix[off], pix[off+1], pix[off+2])]]
		out[off] = c.R
		out[off+1] = c.G
		out[off+2] = c.B
		out[off+3] = 255
	}
	return out
}
