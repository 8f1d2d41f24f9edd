// Package pattern lays out toothpick positions on a rectangular base
// board and pairs them with colors sampled from a quantized image.
package pattern

import (
	"math"

	"github.com/setanarut/toothpick"
)

// Position is a toothpick location in board coordinates.
type Position struct {
	X, Y float64
}

// Toothpick is one placed stick: board position, height midpoint,
// assigned color and angle from the surface normal in degrees.
type Toothpick struct {
	X, Y, Z float64
	Color   toothpick.Color
	Angle   float64
}

// ColorFunc resolves the color for a board position.
type ColorFunc func(x, y float64) toothpick.Color

// Generator produces placement patterns for a base board of the given
// size. All patterns are centered on the board and positions outside the
// board are dropped.
type Generator struct {
	BaseWidth, BaseHeight float64
}

func New(baseWidth, baseHeight float64) Generator {
	return Generator{BaseWidth: baseWidth, BaseHeight: baseHeight}
}

// Grid returns a regular rows×cols grid with the given spacing.
func (g Generator) Grid(rows, cols int, spacing float64) []Position {
	if rows < 1 || cols < 1 {
		return nil
	}
	offsetX := (g.BaseWidth - float64(cols-1)*spacing) / 2
	offsetY := (g.BaseHeight - float64(rows-1)*spacing) / 2

	positions := make([]Position, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			positions = append(positions, Position{
				X: offsetX + float64(col)*spacing,
				Y: offsetY + float64(row)*spacing,
			})
		}
	}
	return positions
}

// OffsetGrid returns a brick-like grid where every other row is shifted
// by half the spacing.
func (g Generator) OffsetGrid(rows, cols int, spacing float64) []Position {
	if rows < 1 || cols < 1 {
		return nil
	}
	totalWidth := float64(cols-1) * spacing
	if rows > 1 {
		totalWidth += spacing / 2
	}
	offsetX := (g.BaseWidth - totalWidth) / 2
	offsetY := (g.BaseHeight - float64(rows-1)*spacing) / 2

	var positions []Position
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := offsetX + float64(col)*spacing
			if row%2 == 1 {
				x += spacing / 2
			}
			y := offsetY + float64(row)*spacing
			if g.inBounds(x, y) {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions
}

// Hexagonal returns a hex-packed grid: rows sit spacing·√3/2 apart and
// every other row is shifted by half the spacing.
func (g Generator) Hexagonal(rows, cols int, spacing float64) []Position {
	if rows < 1 || cols < 1 {
		return nil
	}
	rowPitch := spacing * math.Sqrt(3) / 2
	totalWidth := float64(cols-1) * spacing
	if rows > 1 {
		totalWidth += spacing / 2
	}
	offsetX := (g.BaseWidth - totalWidth) / 2
	offsetY := (g.BaseHeight - float64(rows-1)*rowPitch) / 2

	var positions []Position
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := offsetX + float64(col)*spacing
			if row%2 == 1 {
				x += spacing / 2
			}
			y := offsetY + float64(row)*rowPitch
			if g.inBounds(x, y) {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions
}

// Circular returns a center point surrounded by concentric rings spaced
// by the given distance. Each ring carries at least six points, growing
// proportionally to its circumference. A nil center defaults to the
// board center.
func (g Generator) Circular(rings int, spacing float64, center *Position) []Position {
	c := Position{X: g.BaseWidth / 2, Y: g.BaseHeight / 2}
	if center != nil {
		c = *center
	}
	positions := []Position{c}
	for ring := 1; ring <= rings; ring++ {
		radius := float64(ring) * spacing
		points := max(6, int(2*math.Pi*radius/spacing))
		for i := 0; i < points; i++ {
			angle := 2 * math.Pi * float64(i) / float64(points)
			x := c.X + radius*math.Cos(angle)
			y := c.Y + radius*math.Sin(angle)
			if g.inBounds(x, y) {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions
}

func (g Generator) inBounds(x, y float64) bool {
	return x >= 0 && x <= g.BaseWidth && y >= 0 && y <= g.BaseHeight
}

// FromPositions builds toothpick records for a set of positions, asking
// colorAt for each stick's color. Sticks stand upright with their Z at
// half the toothpick height.
func FromPositions(positions []Position, colorAt ColorFunc, height float64) []Toothpick {
	picks := make([]Toothpick, len(positions))
	for i, p := range positions {
		picks[i] = Toothpick{
			X:     p.X,
			Y:     p.Y,
			Z:     height / 2,
			Color: colorAt(p.X, p.Y),
			Angle: 90,
		}
	}
	return picks
}

// PixelSampler adapts a quantized RGBA buffer into a ColorFunc over
// board coordinates, scaling the board onto the image and clamping at
// the edges.
func PixelSampler(pix []uint8, imgW, imgH int, baseW, baseH float64) ColorFunc {
	return func(x, y float64) toothpick.Color {
		if imgW < 1 || imgH < 1 || baseW <= 0 || baseH <= 0 {
			return toothpick.Color{}
		}
		px := clampInt(int(x/baseW*float64(imgW)), 0, imgW-1)
		py := clampInt(int(y/baseH*float64(imgH)), 0, imgH-1)
		off := (py*imgW + px) * 4
		if off+3 >= len(pix) {
			return toothpick.Color{}
		}
		return toothpick.Color{R: pix[off], G: pix[off+1], B: pix[off+2]}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
