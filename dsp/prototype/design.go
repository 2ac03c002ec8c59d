// Package prototype implements the one external collaborator the
// channelizer core treats as a pure function: design_prototype, which
// turns a channel count, tap count, and bandwidth factor into a
// windowed low-pass FIR prototype of length nch*tap.
package prototype

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-pfb/dsp/window"
)

// ErrInvalidParams is returned when nch, tap, or k are out of range.
var ErrInvalidParams = errors.New("prototype: nch and tap must be > 0 and k must be > 0")

// Design returns a real low-pass prototype of length nch*tap with
// passband half-width approximately k/nch (normalised frequency, 1.0
// being the Nyquist rate). The construction mirrors a classic
// windowed-FIR design: an ideal brick-wall response is built in the
// frequency domain, transformed to the time domain with an inverse
// FFT, centered with fftshift, and tapered with a Blackman window to
// control the transition band and stopband ripple.
func Design(nch, tap int, k float64) ([]float64, error) {
	if nch <= 0 || tap <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: nch=%d tap=%d k=%v", ErrInvalidParams, nch, tap, k)
	}

	n := nch * tap

	freq := make([]complex128, n)
	cutoff := k * float64(n) / float64(2*nch)

	for i := range freq {
		dist := i
		if dist > n/2 {
			dist = n - dist
		}

		if float64(dist) <= cutoff {
			freq[i] = complex(1, 0)
		}
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("prototype: failed to create FFT plan: %w", err)
	}

	td := make([]complex128, n)
	if err := plan.Inverse(td, freq); err != nil {
		return nil, fmt.Errorf("prototype: inverse FFT failed: %w", err)
	}

	centered := fftshift1D(td)

	win, err := window.Blackman(n)
	if err != nil {
		return nil, fmt.Errorf("prototype: window generation failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(centered[i]) * win[i]
	}

	return out, nil
}

// fftshift1D performs a cyclic shift by n/2 (floor), moving the DC
// component of an IFFT output from index 0 to the center of the array
// so the resulting coefficients form a symmetric FIR kernel.
func fftshift1D(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	half := n / 2

	copy(out, x[half:])
	copy(out[n-half:], x[:half])

	return out
}
