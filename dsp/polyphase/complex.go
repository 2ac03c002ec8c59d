package polyphase

import (
	"fmt"

	"github.com/cwbudde/algo-pfb/internal/vecmath"
)

// ComplexFilter is the complex-valued (U=Complex[T]) polyphase branch
// bank. State is kept as parallel real/imaginary float64 rings per
// branch so the same linearized vecmath.DotProduct path used by
// RealFilter applies to each part independently.
type ComplexFilter struct {
	coeffs   [][]float64 // nch x tap, time-reversed per branch
	stateRe  [][]float64
	stateIm  [][]float64
	linearRe []float64
	linearIm []float64
	head     int
	tap      int
	nch      int
	useVec   bool
}

// NewComplexFilter builds a ComplexFilter from a real-valued prototype
// reshaped as C[nch][tap], identically to NewRealFilter.
func NewComplexFilter(c [][]float64) (*ComplexFilter, error) {
	nch, tap, err := validateBranches(c)
	if err != nil {
		return nil, err
	}

	f := &ComplexFilter{
		coeffs:   make([][]float64, nch),
		stateRe:  make([][]float64, nch),
		stateIm:  make([][]float64, nch),
		linearRe: make([]float64, tap),
		linearIm: make([]float64, tap),
		tap:      tap,
		nch:      nch,
		useVec:   tap >= linearizeThreshold,
	}

	for b := 0; b < nch; b++ {
		rev := make([]float64, tap)
		for t := 0; t < tap; t++ {
			rev[t] = c[b][tap-1-t]
		}

		f.coeffs[b] = rev
		f.stateRe[b] = make([]float64, tap)
		f.stateIm[b] = make([]float64, tap)
	}

	return f, nil
}

// NCh returns the number of branches (channels).
func (f *ComplexFilter) NCh() int { return f.nch }

// Tap returns the number of taps per branch.
func (f *ComplexFilter) Tap() int { return f.tap }

// Step writes one branch-wide input vector and returns the filtered
// branch-wide output vector.
func (f *ComplexFilter) Step(step []complex128) []complex128 {
	out := make([]complex128, f.nch)
	f.StepTo(out, step)
	return out
}

// StepTo is the allocation-free form of Step.
func (f *ComplexFilter) StepTo(dst, step []complex128) {
	if len(step) != f.nch {
		panic(fmt.Sprintf("polyphase: Step expects %d samples, got %d", f.nch, len(step)))
	}
	if len(dst) != f.nch {
		panic(fmt.Sprintf("polyphase: Step destination expects %d samples, got %d", f.nch, len(dst)))
	}

	newIdx := (f.head + f.tap - 1) % f.tap
	for b := 0; b < f.nch; b++ {
		f.stateRe[b][newIdx] = real(step[b])
		f.stateIm[b][newIdx] = imag(step[b])
	}

	for b := 0; b < f.nch; b++ {
		re, im := f.dot(b)
		dst[b] = complex(re, im)
	}

	f.head = (f.head + 1) % f.tap
}

// Feed advances the delay line without producing output.
func (f *ComplexFilter) Feed(step []complex128) {
	if len(step) != f.nch {
		panic(fmt.Sprintf("polyphase: Feed expects %d samples, got %d", f.nch, len(step)))
	}

	newIdx := (f.head + f.tap - 1) % f.tap
	for b := 0; b < f.nch; b++ {
		f.stateRe[b][newIdx] = real(step[b])
		f.stateIm[b][newIdx] = imag(step[b])
	}

	f.head = (f.head + 1) % f.tap
}

func (f *ComplexFilter) dot(b int) (re, im float64) {
	sr := f.stateRe[b]
	si := f.stateIm[b]
	coeff := f.coeffs[b]

	if !f.useVec {
		idx := f.head
		for t := 0; t < f.tap; t++ {
			re += sr[idx] * coeff[t]
			im += si[idx] * coeff[t]
			idx++
			if idx >= f.tap {
				idx = 0
			}
		}
		return re, im
	}

	n := copy(f.linearRe, sr[f.head:])
	copy(f.linearRe[n:], sr[:f.head])
	n = copy(f.linearIm, si[f.head:])
	copy(f.linearIm[n:], si[:f.head])

	return vecmath.DotProduct(coeff, f.linearRe), vecmath.DotProduct(coeff, f.linearIm)
}

// Reset zeroes all branch state and rewinds the head to 0.
func (f *ComplexFilter) Reset() {
	for b := range f.stateRe {
		for i := range f.stateRe[b] {
			f.stateRe[b][i] = 0
			f.stateIm[b][i] = 0
		}
	}
	f.head = 0
}
