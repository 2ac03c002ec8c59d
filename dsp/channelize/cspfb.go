// Package channelize implements the two-stage polyphase channelizer:
// a critically sampled analyzer (CSPFB), an oversampled analyzer
// (OSPFB), and a cascade that runs a CSPFB on a subset of an OSPFB's
// coarse channels.
package channelize

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-pfb/dsp/polyphase"
)

// ErrPrototypeMismatch is returned by the CSPFB constructors when nch or
// tap is not positive. A prototype whose length is not nch*tap is
// rejected with polyphase.ErrBadPrototypeLength instead.
var ErrPrototypeMismatch = errors.New("channelize: prototype length must equal nch*tap")

// CSPFBComplex is the critically sampled polyphase analyzer for
// complex-valued (baseband) input, used both standalone and as the
// per-coarse-channel fine analyzer inside Cascade.
type CSPFBComplex struct {
	nch      int
	filt     *polyphase.ComplexFilter
	leftover []complex128
	plan     *algofft.Plan[complex128]
}

// NewCSPFBComplex builds a CSPFB analyzer with nch channels and the
// given prototype, which must reshape as tap rows of nch samples
// (length nch*tap).
func NewCSPFBComplex(nch, tap int, prototype []float64) (*CSPFBComplex, error) {
	if nch <= 0 || tap <= 0 {
		return nil, fmt.Errorf("%w: nch=%d tap=%d", ErrPrototypeMismatch, nch, tap)
	}

	branches, err := polyphase.ReshapeBranchMajor(prototype, nch, tap)
	if err != nil {
		return nil, err
	}

	filt, err := polyphase.NewComplexFilter(branches)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(nch)
	if err != nil {
		return nil, fmt.Errorf("channelize: failed to create CSPFB FFT plan: %w", err)
	}

	return &CSPFBComplex{nch: nch, filt: filt, plan: plan}, nil
}

// NCh returns the channel count N.
func (c *CSPFBComplex) NCh() int { return c.nch }

// Analyze buffers leftover ++ signal into N-wide stripes, filters each
// stripe through the polyphase bank, FFTs each resulting stripe
// (unnormalized forward transform), and returns the transpose:
// channels as rows, time as columns.
func (c *CSPFBComplex) Analyze(signal []complex128) ([][]complex128, error) {
	rows, cols, err := c.stripe(signal)
	if err != nil {
		return nil, err
	}

	out := make([][]complex128, c.nch)
	for k := range out {
		out[k] = make([]complex128, cols)
	}

	spectrum := make([]complex128, c.nch)
	for l, row := range rows {
		if err := c.plan.Forward(spectrum, row); err != nil {
			return nil, fmt.Errorf("channelize: CSPFB forward FFT failed: %w", err)
		}
		for k := 0; k < c.nch; k++ {
			out[k][l] = spectrum[k]
		}
	}

	return out, nil
}

// stripe buffers leftover++signal into full N-wide stripes, running
// each through the polyphase bank, and returns the L x N stripe
// matrix plus the new column count L, saving any leftover tail.
func (c *CSPFBComplex) stripe(signal []complex128) (rows [][]complex128, l int, err error) {
	total := make([]complex128, 0, len(c.leftover)+len(signal))
	total = append(total, c.leftover...)
	total = append(total, signal...)

	l = len(total) / c.nch
	consumed := l * c.nch

	rows = make([][]complex128, l)
	for i := 0; i < l; i++ {
		stripe := total[i*c.nch : (i+1)*c.nch]
		rows[i] = c.filt.Step(stripe)
	}

	c.leftover = append(c.leftover[:0], total[consumed:]...)

	return rows, l, nil
}

// Reset clears the polyphase delay line, leftover buffer, and any
// cloned state, returning the analyzer to its just-constructed state.
func (c *CSPFBComplex) Reset() {
	c.filt.Reset()
	c.leftover = c.leftover[:0]
}

// CSPFBReal is the critically sampled polyphase analyzer for
// real-valued input.
type CSPFBReal struct {
	nch      int
	filt     *polyphase.RealFilter
	leftover []float64
	plan     *algofft.Plan[complex128]
}

// NewCSPFBReal builds a real-input CSPFB analyzer with nch channels.
func NewCSPFBReal(nch, tap int, prototype []float64) (*CSPFBReal, error) {
	if nch <= 0 || tap <= 0 {
		return nil, fmt.Errorf("%w: nch=%d tap=%d", ErrPrototypeMismatch, nch, tap)
	}

	branches, err := polyphase.ReshapeBranchMajor(prototype, nch, tap)
	if err != nil {
		return nil, err
	}

	filt, err := polyphase.NewRealFilter(branches)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(nch)
	if err != nil {
		return nil, fmt.Errorf("channelize: failed to create CSPFB FFT plan: %w", err)
	}

	return &CSPFBReal{nch: nch, filt: filt, plan: plan}, nil
}

// NCh returns the channel count N.
func (c *CSPFBReal) NCh() int { return c.nch }

// Analyze is the real-input analogue of CSPFBComplex.Analyze.
func (c *CSPFBReal) Analyze(signal []float64) ([][]complex128, error) {
	total := make([]float64, 0, len(c.leftover)+len(signal))
	total = append(total, c.leftover...)
	total = append(total, signal...)

	l := len(total) / c.nch
	consumed := l * c.nch

	out := make([][]complex128, c.nch)
	for k := range out {
		out[k] = make([]complex128, l)
	}

	stripeComplex := make([]complex128, c.nch)
	spectrum := make([]complex128, c.nch)

	for i := 0; i < l; i++ {
		stripe := total[i*c.nch : (i+1)*c.nch]
		row := c.filt.Step(stripe)

		for b, v := range row {
			stripeComplex[b] = complex(v, 0)
		}

		if err := c.plan.Forward(spectrum, stripeComplex); err != nil {
			return nil, fmt.Errorf("channelize: CSPFB forward FFT failed: %w", err)
		}

		for k := 0; k < c.nch; k++ {
			out[k][i] = spectrum[k]
		}
	}

	c.leftover = append(c.leftover[:0], total[consumed:]...)

	return out, nil
}

// Reset clears the polyphase delay line and leftover buffer.
func (c *CSPFBReal) Reset() {
	c.filt.Reset()
	c.leftover = c.leftover[:0]
}
