package toothpick

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// roulette draws an index with probability proportional to its weight,
// using a cumulative-sum search. Returns -1 when all weights are zero.
func roulette(w []float64, rng *rand.Rand) int {
	if len(w) == 0 {
		return -1
	}
	cum := floats.CumSum(make([]float64, len(w)), w)
	total := cum[len(cum)-1]
	if total <= 0 {
		return -1
	}
	i := sort.SearchFloat64s(cum, rng.Float64()*total)
	for i < len(w) && w[i] == 0 {
		i++
	}
	if i >= len(w) {
		return -1
	}
	return i
}

// seedPixels picks up to k distinct starting centroids from the pixel set
// with k-means++ seeding: the first uniformly at random, each following
// one by squared distance from the nearest centroid chosen so far.
// Seeding stops short when every pixel already coincides with a centroid.
func seedPixels(colors []Color, k int, rng *rand.Rand) []Color {
	centroids := make([]Color, 0, k)
	centroids = append(centroids, colors[rng.Intn(len(colors))])

	minDist := make([]float64, len(colors))
	for i, c := range colors {
		minDist[i] = float64(dist2(c, centroids[0]))
	}
	for len(centroids) < k {
		i := roulette(minDist, rng)
		if i < 0 {
			break
		}
		centroids = append(centroids, colors[i])
		latest := centroids[len(centroids)-1]
		for j, c := range colors {
			if d := float64(dist2(c, latest)); d < minDist[j] {
				minDist[j] = d
			}
		}
	}
	return centroids
}

// kmeansPixels clusters every pixel into at most k centroids with Lloyd
// iteration. It runs until no pixel changes cluster or maxIter passes are
// done. A cluster that loses all members is reseeded from a uniformly
// random pixel rather than left degenerate. Centroids that settle in the
// same histogram bin are merged, and the returned assignment maps each
// pixel to its index in the merged palette.
func kmeansPixels(colors []Color, k, maxIter int, rng *rand.Rand) ([]Color, []int) {
	if len(colors) == 0 || k < 1 {
		return nil, nil
	}
	centroids := seedPixels(colors, k, rng)
	k = len(centroids)

	assign := make([]int, len(colors))
	for i := range assign {
		assign[i] = -1
	}
	sumR := make([]uint64, k)
	sumG := make([]uint64, k)
	sumB := make([]uint64, k)
	counts := make([]uint32, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, c := range colors {
			a := Nearest(c, centroids)
			if assign[i] != a {
				assign[i] = a
				changed = true
			}
		}
		if !changed {
			break
		}

		for j := range centroids {
			sumR[j], sumG[j], sumB[j], counts[j] = 0, 0, 0, 0
		}
		for i, a := range assign {
			c := colors[i]
			sumR[a] += uint64(c.R)
			sumG[a] += uint64(c.G)
			sumB[a] += uint64(c.B)
			counts[a]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				centroids[j] = colors[rng.Intn(len(colors))]
				continue
			}
			n := uint64(counts[j])
			h := n / 2
			centroids[j] = Color{
				R: uint8((sumR[j] + h) / n),
				G: uint8((sumG[j] + h) / n),
				B: uint8((sumB[j] + h) / n),
			}
		}
	}

	merged, oldToNew := mergeByBin(centroids)
	for i, a := range assign {
		assign[i] = oldToNew[a]
	}
	return merged, assign
}

// refineBins generates up to k representative colors from the weighted
// histogram. Seeding draws the first centroid by population and the rest
// by population times squared distance from the nearest chosen centroid,
// then a short fixed number of weighted Lloyd passes polish the result.
// Centroids that attract no weight are left where they are; centroids
// that end up sharing a histogram bin are merged.
func refineBins(bins []bin, k, iters int, rng *rand.Rand) []Color {
	if len(bins) == 0 || k < 1 {
		return nil
	}
	colors := make([]Color, len(bins))
	pops := make([]float64, len(bins))
	for i, b := range bins {
		colors[i] = b.color()
		pops[i] = float64(b.count)
	}

	centroids := make([]Color, 0, k)
	first := roulette(pops, rng)
	if first < 0 {
		return nil
	}
	centroids = append(centroids, colors[first])

	weights := make([]float64, len(bins))
	minDist := make([]float64, len(bins))
	for i, c := range colors {
		minDist[i] = float64(dist2(c, centroids[0]))
	}
	for len(centroids) < k {
		for i := range weights {
			weights[i] = pops[i] * minDist[i]
		}
		i := roulette(weights, rng)
		if i < 0 {
			break
		}
		centroids = append(centroids, colors[i])
		latest := centroids[len(centroids)-1]
		for j, c := range colors {
			if d := float64(dist2(c, latest)); d < minDist[j] {
				minDist[j] = d
			}
		}
	}

	n := len(centroids)
	sumR := make([]uint64, n)
	sumG := make([]uint64, n)
	sumB := make([]uint64, n)
	counts := make([]uint64, n)
	for it := 0; it < iters; it++ {
		for j := range centroids {
			sumR[j], sumG[j], sumB[j], counts[j] = 0, 0, 0, 0
		}
		for i, b := range bins {
			a := Nearest(colors[i], centroids)
			sumR[a] += b.sumR
			sumG[a] += b.sumG
			sumB[a] += b.sumB
			counts[a] += uint64(b.count)
		}
		for j := range centroids {
			if counts[j] == 0 {
				continue
			}
			h := counts[j] / 2
			centroids[j] = Color{
				R: uint8((sumR[j] + h) / counts[j]),
				G: uint8((sumG[j] + h) / counts[j]),
				B: uint8((sumB[j] + h) / counts[j]),
			}
		}
	}

	merged, _ := mergeByBin(centroids)
	return merged
}
