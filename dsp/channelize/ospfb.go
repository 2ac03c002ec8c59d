package channelize

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-pfb/dsp/oscillator"
	"github.com/cwbudde/algo-pfb/dsp/polyphase"
)

// ErrOddChannelCount is returned when OSPFB is constructed with an odd
// total channel count; the bank needs an even split into even/odd
// half-width branches.
var ErrOddChannelCount = errors.New("channelize: OSPFB requires an even total channel count")

// OSPFB is the oversampled (2x) polyphase analyzer: two half-width
// polyphase banks, one fed the raw input and one fed a half-bin
// shifted copy, whose per-bank FFT outputs interleave into a
// doubled channel count.
type OSPFB struct {
	nchTotal int
	n        int // nchTotal / 2
	even     *polyphase.ComplexFilter
	odd      *polyphase.ComplexFilter
	shifter  *oscillator.HalfBinShifter
	leftover []complex128
	plan     *algofft.Plan[complex128]
}

// NewOSPFB builds an OSPFB with nchTotal (even) output channels. The
// prototype must reshape as tap rows of (nchTotal/2) samples, i.e.
// have length (nchTotal/2)*tap.
func NewOSPFB(nchTotal, tap int, prototype []float64) (*OSPFB, error) {
	if nchTotal <= 0 || nchTotal%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddChannelCount, nchTotal)
	}

	n := nchTotal / 2

	branches, err := polyphase.ReshapeBranchMajor(prototype, n, tap)
	if err != nil {
		return nil, err
	}

	even, err := polyphase.NewComplexFilter(branches)
	if err != nil {
		return nil, err
	}

	odd, err := polyphase.NewComplexFilter(branches)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("channelize: failed to create OSPFB FFT plan: %w", err)
	}

	o := &OSPFB{
		nchTotal: nchTotal,
		n:        n,
		even:     even,
		odd:      odd,
		shifter:  oscillator.NewHalfBinShifter(n, false),
		plan:     plan,
	}

	// Prime the even bank with one zero stripe to compensate the
	// one-stripe polyphase delay introduced between the two banks.
	o.even.Feed(make([]complex128, n))

	return o, nil
}

// NChTotal returns the doubled (oversampled) channel count.
func (o *OSPFB) NChTotal() int { return o.nchTotal }

// Analyze buffers leftover ++ signal into N-wide stripes (N =
// nchTotal/2), runs the even bank on the raw stripe and the odd bank
// on the half-bin-shifted stripe, FFTs each bank's stripes, and
// interleaves the two FFT outputs into nchTotal channel rows.
func (o *OSPFB) Analyze(signal []complex128) ([][]complex128, error) {
	total := make([]complex128, 0, len(o.leftover)+len(signal))
	total = append(total, o.leftover...)
	total = append(total, signal...)

	l := len(total) / o.n
	consumed := l * o.n

	shifted := make([]complex128, consumed)
	for i := 0; i < consumed; i++ {
		shifted[i] = total[i] * o.shifter.Next()
	}

	out := make([][]complex128, o.nchTotal)
	for k := range out {
		out[k] = make([]complex128, l)
	}

	evenSpec := make([]complex128, o.n)
	oddSpec := make([]complex128, o.n)

	for i := 0; i < l; i++ {
		evenStripe := o.even.Step(total[i*o.n : (i+1)*o.n])
		oddStripe := o.odd.Step(shifted[i*o.n : (i+1)*o.n])

		if err := o.plan.Forward(evenSpec, evenStripe); err != nil {
			return nil, fmt.Errorf("channelize: OSPFB even FFT failed: %w", err)
		}
		if err := o.plan.Forward(oddSpec, oddStripe); err != nil {
			return nil, fmt.Errorf("channelize: OSPFB odd FFT failed: %w", err)
		}

		for k := 0; k < o.n; k++ {
			out[2*k][i] = evenSpec[k]
			out[2*k+1][i] = oddSpec[k]
		}
	}

	o.leftover = append(o.leftover[:0], total[consumed:]...)

	return out, nil
}

// Reset clears both banks' delay lines and the leftover buffer, then
// re-primes the even bank, returning the analyzer to its
// just-constructed state.
func (o *OSPFB) Reset() {
	o.even.Reset()
	o.odd.Reset()
	o.shifter.Reset()
	o.leftover = o.leftover[:0]
	o.even.Feed(make([]complex128, o.n))
}
