package toothpick

const (
	// reducedBits is the per-channel precision kept when bucketing colors
	// into the histogram. 5 bits gives 32 levels per channel.
	reducedBits  = 5
	channelShift = 8 - reducedBits
	binLevels    = 1 << reducedBits
	// binCount is the size of the flat histogram and remap tables.
	binCount = binLevels * binLevels * binLevels
)

// bin is one populated bucket of the reduced-precision histogram. Channel
// sums accumulate the original 8-bit samples so the bucket can report the
// true mean color of its members, not just the bucket center.
type bin struct {
	idx              int // packed reduced color, r<<10 | g<<5 | b
	count            uint32
	sumR, sumG, sumB uint64
}

// color returns the rounded mean of the samples that landed in the bin.
func (b bin) color() Color {
	h := uint64(b.count) / 2
	return Color{
		R: uint8((b.sumR + h) / uint64(b.count)),
		G: uint8((b.sumG + h) / uint64(b.count)),
		B: uint8((b.sumB + h) / uint64(b.count)),
	}
}

func binIndex(r, g, b uint8) int {
	return int(r>>channelShift)<<(2*reducedBits) |
		int(g>>channelShift)<<reducedBits |
		int(b>>channelShift)
}

// binCenter reconstructs the center color of a bucket from its packed id.
func binCenter(idx int) Color {
	return Color{
		R: uint8((idx>>(2*reducedBits)&(binLevels-1))<<channelShift) + 1<<(channelShift-1),
		G: uint8((idx>>reducedBits&(binLevels-1))<<channelShift) + 1<<(channelShift-1),
		B: uint8((idx&(binLevels-1))<<channelShift) + 1<<(channelShift-1),
	}
}

// buildHistogram buckets the opaque pixels of an interleaved RGBA buffer
// into reduced-precision bins and returns the populated ones in id order.
// Buffers above the sampling threshold are scanned with the given pixel
// stride to keep large images interactive; the counts stay representative
// because neighboring pixels are strongly correlated.
func buildHistogram(pix []uint8, sampleThreshold, sampleStride int) []bin {
	n := len(pix) / 4
	stride := 1
	if sampleThreshold > 0 && n > sampleThreshold && sampleStride > 1 {
		stride = sampleStride
	}

	counts := make([]uint32, binCount)
	sumR := make([]uint64, binCount)
	sumG := make([]uint64, binCount)
	sumB := make([]uint64, binCount)
	populated := 0
	for i := 0; i < n; i += stride {
		off := i * 4
		if pix[off+3] == 0 {
			continue
		}
		r, g, b := pix[off], pix[off+1], pix[off+2]
		idx := binIndex(r, g, b)
		if counts[idx] == 0 {
			populated++
		}
		counts[idx]++
		sumR[idx] += uint64(r)
		sumG[idx] += uint64(g)
		sumB[idx] += uint64(b)
	}

	bins := make([]bin, 0, populated)
	for idx, c := range counts {
		if c == 0 {
			continue
		}
		bins = append(bins, bin{
			idx:   idx,
			count: c,
			sumR:  sumR[idx],
			sumG:  sumG[idx],
			sumB:  sumB[idx],
		})
	}
	return bins
}
