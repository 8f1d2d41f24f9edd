package toothpick

// Color is a single palette entry. Channels are plain 8-bit sRGB values;
// the engine works in raw RGB throughout.
type Color struct {
	R, G, B uint8
}

// dist2 returns the squared Euclidean distance between two colors.
func dist2(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Nearest returns the index of the palette entry closest to c by squared
// RGB distance, or -1 for an empty palette. Ties resolve to the lower index.
func Nearest(c Color, palette []Color) int {
	best := -1
	bestD := 0
	for i, p := range palette {
		d := dist2(c, p)
		if best < 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	return best
}
