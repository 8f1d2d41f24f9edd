// Package plan builds and serializes assembly plans: the palette, every
// toothpick position with its palette index, and per-color counts. Plans
// are written as a small header followed by a zstd-compressed JSON body.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/setanarut/toothpick"
	"github.com/setanarut/toothpick/pattern"
)

var magic = [4]byte{'T', 'P', 'K', '1'}

const version = 1

// Pick is one toothpick placement with its color resolved to a palette
// index.
type Pick struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Angle float64 `json:"angle"`
	Color int     `json:"color"`
}

// Plan is the complete assembly recipe for one artwork.
type Plan struct {
	BaseWidth  float64           `json:"base_width"`
	BaseHeight float64           `json:"base_height"`
	Palette    []toothpick.Color `json:"palette"`
	Picks      []Pick            `json:"picks"`
}

// Build resolves each toothpick's color to its nearest palette index and
// assembles a plan for the given board.
func Build(baseWidth, baseHeight float64, picks []pattern.Toothpick, palette []toothpick.Color) *Plan {
	p := &Plan{
		BaseWidth:  baseWidth,
		BaseHeight: baseHeight,
		Palette:    palette,
		Picks:      make([]Pick, len(picks)),
	}
	for i, t := range picks {
		p.Picks[i] = Pick{
			X:     t.X,
			Y:     t.Y,
			Z:     t.Z,
			Angle: t.Angle,
			Color: toothpick.Nearest(t.Color, palette),
		}
	}
	return p
}

// Counts tallies how many toothpicks of each palette color the plan
// needs, indexed like the palette.
func (p *Plan) Counts() []int {
	counts := make([]int, len(p.Palette))
	for _, pk := range p.Picks {
		if pk.Color >= 0 && pk.Color < len(counts) {
			counts[pk.Color]++
		}
	}
	return counts
}

// Encode writes the plan: magic, version byte, then a zstd frame holding
// the JSON body.
func (p *Plan) Encode(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{version}); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(p); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a plan previously written by Encode.
func Decode(r io.Reader) (*Plan, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("plan: reading header: %w", err)
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return nil, errors.New("plan: bad magic")
	}
	if hdr[4] != version {
		return nil, fmt.Errorf("plan: unsupported version %d", hdr[4])
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	var p Plan
	if err := json.NewDecoder(dec).Decode(&p); err != nil {
		return nil, fmt.Errorf("plan: decoding body: %w", err)
	}
	return &p, nil
}
