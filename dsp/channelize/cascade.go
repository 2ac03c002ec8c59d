package channelize

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pfb/dsp/oscillator"
)

// ErrBadCascadeWidth is returned when the fine CS-PFB width is not a
// multiple of 4, which the center-half slice [M/4, 3M/4) requires to
// land on exact integer boundaries.
var ErrBadCascadeWidth = errors.New("channelize: cascade width M must be divisible by 4")

// Cascade runs a critically sampled CS-PFB on a selected subset of an
// OSPFB's coarse channels, after a shared half-bin pre-shift, keeping
// only the center half of each fine analyzer's channel axis.
type Cascade struct {
	selected []int
	analyzer []*CSPFBComplex
	shifter  *oscillator.HalfBinShifter
	m        int
}

// NewCascade builds a cascade over the given selected coarse channel
// indices (order and duplicates preserved), one independent fine
// CS-PFB analyzer of width m per selected channel, all built from the
// same prototype.
func NewCascade(selected []int, m, tap int, prototype []float64) (*Cascade, error) {
	if m%4 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadCascadeWidth, m)
	}

	analyzers := make([]*CSPFBComplex, len(selected))
	for i := range selected {
		a, err := NewCSPFBComplex(m, tap, prototype)
		if err != nil {
			return nil, fmt.Errorf("channelize: cascade channel %d: %w", i, err)
		}
		analyzers[i] = a
	}

	sel := make([]int, len(selected))
	copy(sel, selected)

	return &Cascade{
		selected: sel,
		analyzer: analyzers,
		shifter:  oscillator.NewHalfBinShifter(m, false),
		m:        m,
	}, nil
}

// OutputRows returns the cascade's total output row count, K*M/2.
func (c *Cascade) OutputRows() int {
	return len(c.selected) * c.m / 2
}

// Analyze takes the full coarse channel matrix (rows indexed by
// coarse channel number, as produced by OSPFB.Analyze) and returns the
// stacked fine-channel matrix of shape (K*M/2) x D'.
func (c *Cascade) Analyze(coarse [][]complex128) ([][]complex128, error) {
	if len(c.selected) == 0 {
		return nil, nil
	}

	d := 0
	for _, ch := range c.selected {
		if ch < 0 || ch >= len(coarse) {
			return nil, fmt.Errorf("channelize: cascade channel index %d out of range [0,%d)", ch, len(coarse))
		}
		if len(coarse[ch]) > d {
			d = len(coarse[ch])
		}
	}

	// The shift factor sequence is shared cascade-wide and advances
	// once per output column, not once per coarse channel, so it is
	// precomputed once and reused for every selected channel's row.
	factors := make([]complex128, d)
	for col := range factors {
		factors[col] = c.shifter.Next()
	}

	half := c.m / 4

	out := make([][]complex128, c.OutputRows())
	for i, ch := range c.selected {
		row := coarse[ch]

		shifted := make([]complex128, len(row))
		for col, v := range row {
			shifted[col] = v * factors[col]
		}

		spectrum, err := c.analyzer[i].Analyze(shifted)
		if err != nil {
			return nil, fmt.Errorf("channelize: cascade channel %d analyze: %w", ch, err)
		}

		shiftedRows := fftshiftRows(spectrum)
		centerHalf := shiftedRows[half : half+c.m/2]

		base := i * c.m / 2
		for j, r := range centerHalf {
			out[base+j] = r
		}
	}

	return out, nil
}

// Reset clears every per-channel analyzer's state and rewinds the
// shared shifter.
func (c *Cascade) Reset() {
	for _, a := range c.analyzer {
		a.Reset()
	}
	c.shifter.Reset()
}
