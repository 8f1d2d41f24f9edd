package toothpick

import (
	"math/rand"
	"testing"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestRoulette(t *testing.T) {
	rng := testRng()
	if i := roulette(nil, rng); i != -1 {
		t.Errorf("roulette(nil) = %d, want -1", i)
	}
	if i := roulette([]float64{0, 0, 0}, rng); i != -1 {
		t.Errorf("all-zero weights: got %d, want -1", i)
	}
	for n := 0; n < 50; n++ {
		if i := roulette([]float64{0, 0, 5}, rng); i != 2 {
			t.Fatalf("single positive weight: got index %d, want 2", i)
		}
	}
	// Every positive weight must be reachable.
	seen := map[int]bool{}
	for n := 0; n < 200; n++ {
		seen[roulette([]float64{1, 1, 1}, rng)] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("index %d never drawn from uniform weights", i)
		}
	}
}

func TestSeedPixelsStopsAtDistinct(t *testing.T) {
	colors := []Color{
		{255, 0, 0}, {255, 0, 0},
		{0, 255, 0}, {0, 255, 0},
		{0, 0, 255},
	}
	centroids := seedPixels(colors, 10, testRng())
	if len(centroids) != 3 {
		t.Fatalf("%d centroids, want 3", len(centroids))
	}
	seen := map[Color]bool{}
	for _, c := range centroids {
		if seen[c] {
			t.Errorf("duplicate centroid %v", c)
		}
		seen[c] = true
	}
}

func TestKMeansPixelsSeparatedClusters(t *testing.T) {
	var colors []Color
	for i := 0; i < 20; i++ {
		colors = append(colors, Color{uint8(10 + i), 10, 10})
		colors = append(colors, Color{uint8(230 + i%10), 240, 240})
	}
	palette, assign := kmeansPixels(colors, 2, 10, testRng())
	if len(palette) != 2 {
		t.Fatalf("%d centroids, want 2", len(palette))
	}
	if len(assign) != len(colors) {
		t.Fatalf("assignment length %d, want %d", len(assign), len(colors))
	}
	dark := Color{20, 10, 10}
	light := Color{235, 240, 240}
	for i, c := range colors {
		p := palette[assign[i]]
		wantDark := dist2(c, dark) < dist2(c, light)
		gotDark := dist2(p, dark) < dist2(p, light)
		if wantDark != gotDark {
			t.Errorf("pixel %v assigned to %v across the cluster gap", c, p)
		}
	}
}

func TestKMeansPixelsMergesSameBinCentroids(t *testing.T) {
	// Two colors in one histogram bin cannot hold separate palette slots:
	// the LUT would route both to whichever entry wins the bin.
	colors := []Color{{10, 10, 10}, {12, 12, 12}}
	centroids, assign := kmeansPixels(colors, 2, 10, testRng())
	if len(centroids) != 1 {
		t.Fatalf("%d centroids, want 1", len(centroids))
	}
	if centroids[0] != colors[0] && centroids[0] != colors[1] {
		t.Errorf("merged centroid %v is not a source color", centroids[0])
	}
	for i, a := range assign {
		if a != 0 {
			t.Errorf("assign[%d] = %d, want 0", i, a)
		}
	}
}

func TestKMeansPixelsEmptyInput(t *testing.T) {
	palette, assign := kmeansPixels(nil, 3, 10, testRng())
	if palette != nil || assign != nil {
		t.Errorf("kmeansPixels(nil) = %v, %v, want nil, nil", palette, assign)
	}
}

func TestRefineBinsBoundedByDistinct(t *testing.T) {
	pix := buffer(
		Color{255, 0, 0}, Color{255, 0, 0},
		Color{0, 255, 0},
		Color{0, 0, 255},
	)
	bins := buildHistogram(pix, 0, 1)
	centroids := refineBins(bins, 10, 3, testRng())
	if len(centroids) != 3 {
		t.Fatalf("%d centroids from 3 bins, want 3", len(centroids))
	}
	// After refinement every centroid should sit exactly on a bin mean.
	for _, c := range centroids {
		found := false
		for _, b := range bins {
			if b.color() == c {
				found = true
			}
		}
		if !found {
			t.Errorf("centroid %v not on any bin mean", c)
		}
	}
}

func TestRefineBinsWeightedSeeding(t *testing.T) {
	// With one bin holding nearly all the population, the first centroid
	// should land there essentially always.
	var colors []Color
	for n := 0; n < 100; n++ {
		colors = append(colors, Color{200, 200, 200})
	}
	colors = append(colors, Color{10, 10, 10})
	bins := buildHistogram(buffer(colors...), 0, 1)

	centroids := refineBins(bins, 1, 3, testRng())
	if len(centroids) != 1 {
		t.Fatalf("%d centroids, want 1", len(centroids))
	}
	if got, want := centroids[0], (Color{200, 200, 200}); dist2(got, want) > dist2(got, Color{10, 10, 10}) {
		t.Errorf("lone centroid %v should favor the dominant bin", got)
	}
}
