// Package polyphase implements the shared-delay-line polyphase FIR bank
// at the core of the channelizer: one branch per channel, all branches
// fed one sample wide per step, sharing a single cyclic state matrix.
package polyphase

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pfb/internal/vecmath"
)

// ErrBadPrototypeLength is returned when a prototype's length is not
// nch*tap (or nch or tap is not positive), and when a branch table is
// empty or ragged.
var ErrBadPrototypeLength = errors.New("polyphase: prototype length must equal nch*tap")

// linearizeThreshold is the tap count at or above which a branch is worth
// linearizing into a contiguous scratch buffer for the SIMD-dispatched
// vecmath.DotProduct path rather than walking the ring directly.
const linearizeThreshold = 32

// RealFilter is the real-valued (U=float64) polyphase branch bank.
type RealFilter struct {
	coeffs  [][]float64 // nch x tap, time-reversed per branch
	state   [][]float64 // nch x tap ring buffer
	linear  []float64   // scratch, length tap
	head    int
	tap     int
	nch     int
	useVec  bool
}

// NewRealFilter builds a RealFilter from a prototype reshaped as
// C[nch][tap] (branch-major, time order within each branch). The
// internal coefficient table stores the time-reversed form described
// by the construction rule coeff[t][b] = C[b][tap-1-t].
func NewRealFilter(c [][]float64) (*RealFilter, error) {
	nch, tap, err := validateBranches(c)
	if err != nil {
		return nil, err
	}

	f := &RealFilter{
		coeffs: make([][]float64, nch),
		state:  make([][]float64, nch),
		linear: make([]float64, tap),
		tap:    tap,
		nch:    nch,
		useVec: tap >= linearizeThreshold,
	}

	for b := 0; b < nch; b++ {
		rev := make([]float64, tap)
		for t := 0; t < tap; t++ {
			rev[t] = c[b][tap-1-t]
		}
		f.coeffs[b] = rev
		f.state[b] = make([]float64, tap)
	}

	return f, nil
}

// NCh returns the number of branches (channels).
func (f *RealFilter) NCh() int { return f.nch }

// Tap returns the number of taps per branch.
func (f *RealFilter) Tap() int { return f.tap }

// Step writes one branch-wide input vector and returns the filtered
// branch-wide output vector. Panics if len(step) != NCh().
func (f *RealFilter) Step(step []float64) []float64 {
	out := make([]float64, f.nch)
	f.StepTo(out, step)
	return out
}

// StepTo is the allocation-free form of Step: dst and step must both
// have length NCh().
func (f *RealFilter) StepTo(dst, step []float64) {
	if len(step) != f.nch {
		panic(fmt.Sprintf("polyphase: Step expects %d samples, got %d", f.nch, len(step)))
	}
	if len(dst) != f.nch {
		panic(fmt.Sprintf("polyphase: Step destination expects %d samples, got %d", f.nch, len(dst)))
	}

	newIdx := (f.head + f.tap - 1) % f.tap
	for b := 0; b < f.nch; b++ {
		f.state[b][newIdx] = step[b]
	}

	for b := 0; b < f.nch; b++ {
		dst[b] = f.dot(b)
	}

	f.head = (f.head + 1) % f.tap
}

// Feed advances the delay line with step but produces no output; used
// to prime a bank with a priming stripe without reading back a result.
func (f *RealFilter) Feed(step []float64) {
	if len(step) != f.nch {
		panic(fmt.Sprintf("polyphase: Feed expects %d samples, got %d", f.nch, len(step)))
	}

	newIdx := (f.head + f.tap - 1) % f.tap
	for b := 0; b < f.nch; b++ {
		f.state[b][newIdx] = step[b]
	}

	f.head = (f.head + 1) % f.tap
}

func (f *RealFilter) dot(b int) float64 {
	s := f.state[b]
	coeff := f.coeffs[b]

	if !f.useVec {
		var acc float64
		idx := f.head
		for t := 0; t < f.tap; t++ {
			acc += s[idx] * coeff[t]
			idx++
			if idx >= f.tap {
				idx = 0
			}
		}
		return acc
	}

	n := copy(f.linear, s[f.head:])
	copy(f.linear[n:], s[:f.head])

	return vecmath.DotProduct(coeff, f.linear)
}

// Reset zeroes all branch state and rewinds the head to 0.
func (f *RealFilter) Reset() {
	for b := range f.state {
		for i := range f.state[b] {
			f.state[b][i] = 0
		}
	}
	f.head = 0
}

func validateBranches(c [][]float64) (nch, tap int, err error) {
	nch = len(c)
	if nch == 0 {
		return 0, 0, fmt.Errorf("%w: zero branches", ErrBadPrototypeLength)
	}

	tap = len(c[0])
	for b, row := range c {
		if len(row) != tap {
			return 0, 0, fmt.Errorf("%w: branch %d has %d taps, want %d", ErrBadPrototypeLength, b, len(row), tap)
		}
	}

	return nch, tap, nil
}

// ReshapeBranchMajor reshapes a flat prototype of length nch*tap into the
// branch-major C[nch][tap] form that NewRealFilter/NewComplexFilter expect,
// assuming the prototype is stored row-major as tap rows of nch samples
// (prototype[row*nch+branch]).
func ReshapeBranchMajor(prototype []float64, nch, tap int) ([][]float64, error) {
	if nch <= 0 || tap <= 0 {
		return nil, fmt.Errorf("%w: nch=%d tap=%d", ErrBadPrototypeLength, nch, tap)
	}

	if len(prototype) != nch*tap {
		return nil, fmt.Errorf("%w: got %d samples, want %d*%d=%d", ErrBadPrototypeLength, len(prototype), nch, tap, nch*tap)
	}

	c := make([][]float64, nch)
	for b := 0; b < nch; b++ {
		c[b] = make([]float64, tap)
		for t := 0; t < tap; t++ {
			c[b][t] = prototype[t*nch+b]
		}
	}

	return c, nil
}
