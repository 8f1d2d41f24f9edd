package toothpick

import (
	"math"
	"slices"
)

// box is an axis-aligned group of histogram bins. Bounds and population
// are fixed at construction; splitting builds two new boxes instead of
// mutating the original.
type box struct {
	bins                               []bin
	minR, maxR, minG, maxG, minB, maxB uint8
	pop                                uint64
}

func newBox(bins []bin) box {
	bx := box{bins: bins, minR: 255, minG: 255, minB: 255}
	for _, b := range bins {
		c := b.color()
		bx.minR = min(bx.minR, c.R)
		bx.maxR = max(bx.maxR, c.R)
		bx.minG = min(bx.minG, c.G)
		bx.maxG = max(bx.maxG, c.G)
		bx.minB = min(bx.minB, c.B)
		bx.maxB = max(bx.maxB, c.B)
		bx.pop += uint64(b.count)
	}
	return bx
}

// score ranks boxes for splitting: color volume scaled by how many pixels
// the box covers, so large high-population boxes split first.
func (bx box) score() float64 {
	extent := int(bx.maxR-bx.minR) + int(bx.maxG-bx.minG) + int(bx.maxB-bx.minB)
	return float64(extent) * math.Log2(float64(bx.pop)+1)
}

// widestChannel picks the split axis. Ties resolve in R, G, B order.
func (bx box) widestChannel() int {
	rr := bx.maxR - bx.minR
	rg := bx.maxG - bx.minG
	rb := bx.maxB - bx.minB
	if rr >= rg && rr >= rb {
		return 0
	}
	if rg >= rb {
		return 1
	}
	return 2
}

// split cuts the box at the weighted median of its widest channel. The
// left half keeps the cut bin. A cut that would land on the first or last
// bin produces an empty side and is rejected.
func (bx box) split() (box, box, bool) {
	if len(bx.bins) < 2 {
		return box{}, box{}, false
	}
	ch := bx.widestChannel()
	sorted := slices.Clone(bx.bins)
	slices.SortStableFunc(sorted, func(a, b bin) int {
		av, bv := channelValue(a, ch), channelValue(b, ch)
		return int(av) - int(bv)
	})

	cut := -1
	var cum uint64
	for i, b := range sorted {
		cum += uint64(b.count)
		if cum*2 >= bx.pop {
			cut = i
			break
		}
	}
	if cut <= 0 || cut >= len(sorted)-1 {
		return box{}, box{}, false
	}
	return newBox(sorted[:cut+1]), newBox(sorted[cut+1:]), true
}

func channelValue(b bin, ch int) uint8 {
	c := b.color()
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	}
	return c.B
}

// color is the population-weighted mean of the box's member bins.
func (bx box) color() Color {
	var sr, sg, sb, n uint64
	for _, b := range bx.bins {
		sr += b.sumR
		sg += b.sumG
		sb += b.sumB
		n += uint64(b.count)
	}
	if n == 0 {
		return Color{}
	}
	h := n / 2
	return Color{uint8((sr + h) / n), uint8((sg + h) / n), uint8((sb + h) / n)}
}

// splitBoxes partitions the bin set into at most k boxes by repeatedly
// splitting the highest-scoring splittable box. It stops early when every
// remaining box holds a single bin or refuses to split, so the result may
// be shorter than k.
func splitBoxes(bins []bin, k int) []box {
	if len(bins) == 0 {
		return nil
	}
	boxes := []box{newBox(bins)}
	retired := make([]bool, 1, k) // boxes whose split attempt failed
	for len(boxes) < k {
		best := -1
		bestScore := 0.0
		for i, bx := range boxes {
			if retired[i] || len(bx.bins) < 2 {
				continue
			}
			if s := bx.score(); best < 0 || s > bestScore {
				best = i
				bestScore = s
			}
		}
		if best < 0 {
			break
		}
		left, right, ok := boxes[best].split()
		if !ok {
			retired[best] = true
			continue
		}
		boxes[best] = left
		boxes = append(boxes, right)
		retired = append(retired, false)
	}
	return boxes
}
