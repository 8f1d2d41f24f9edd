package plan

import (
	"bytes"
	"testing"

	"github.com/setanarut/toothpick"
	"github.com/setanarut/toothpick/pattern"
)

var testPalette = []toothpick.Color{
	{R: 10, G: 10, B: 10},
	{R: 200, G: 40, B: 40},
	{R: 240, G: 240, B: 240},
}

func testPicks() []pattern.Toothpick {
	return []pattern.Toothpick{
		{X: 10, Y: 10, Z: 15, Angle: 90, Color: toothpick.Color{R: 12, G: 8, B: 8}},
		{X: 20, Y: 10, Z: 15, Angle: 90, Color: toothpick.Color{R: 210, G: 35, B: 50}},
		{X: 30, Y: 10, Z: 15, Angle: 90, Color: toothpick.Color{R: 250, G: 250, B: 250}},
		{X: 40, Y: 10, Z: 15, Angle: 90, Color: toothpick.Color{R: 230, G: 235, B: 240}},
	}
}

func TestBuildResolvesPaletteIndices(t *testing.T) {
	p := Build(100, 100, testPicks(), testPalette)
	want := []int{0, 1, 2, 2}
	if len(p.Picks) != len(want) {
		t.Fatalf("%d picks, want %d", len(p.Picks), len(want))
	}
	for i, w := range want {
		if p.Picks[i].Color != w {
			t.Errorf("pick %d resolved to palette index %d, want %d", i, p.Picks[i].Color, w)
		}
	}
}

func TestCounts(t *testing.T) {
	p := Build(100, 100, testPicks(), testPalette)
	counts := p.Counts()
	want := []int{1, 1, 2}
	for i, w := range want {
		if counts[i] != w {
			t.Errorf("counts[%d] = %d, want %d", i, counts[i], w)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Build(120, 80, testPicks(), testPalette)
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.BaseWidth != 120 || got.BaseHeight != 80 {
		t.Errorf("board %vx%v, want 120x80", got.BaseWidth, got.BaseHeight)
	}
	if len(got.Palette) != len(testPalette) {
		t.Fatalf("palette length %d, want %d", len(got.Palette), len(testPalette))
	}
	for i := range testPalette {
		if got.Palette[i] != testPalette[i] {
			t.Errorf("palette[%d] = %v, want %v", i, got.Palette[i], testPalette[i])
		}
	}
	if len(got.Picks) != len(p.Picks) {
		t.Fatalf("%d picks, want %d", len(got.Picks), len(p.Picks))
	}
	for i := range p.Picks {
		if got.Picks[i] != p.Picks[i] {
			t.Errorf("pick %d = %+v, want %+v", i, got.Picks[i], p.Picks[i])
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("XXXX\x01junk"))); err == nil {
		t.Error("bad magic accepted")
	}
	if _, err := Decode(bytes.NewReader([]byte{'T', 'P', 'K', '1', 99})); err == nil {
		t.Error("unknown version accepted")
	}
	if _, err := Decode(bytes.NewReader(nil)); err == nil {
		t.Error("empty input accepted")
	}
}
